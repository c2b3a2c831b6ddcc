package mcp

import (
	"bufio"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Serve(t *testing.T) {
	s := newTestServer(t, allTemplates())

	inReader, inWriter := io.Pipe()
	outReader, outWriter := io.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve(ctx, inReader, outWriter)
	}()

	lines := bufio.NewReader(outReader)
	send := func(msg string) string {
		t.Helper()
		_, err := io.WriteString(inWriter, msg+"\n")
		require.NoError(t, err)
		line, err := lines.ReadString('\n')
		require.NoError(t, err)
		return line
	}

	initResp := send(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`)
	assert.Contains(t, initResp, `"rta-test"`)

	listResp := send(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	for _, tool := range []string{"rta_fill", "rta_validate", "rta_template_fields", "rta_server_info"} {
		assert.Contains(t, listResp, tool)
	}

	cancel()
	_ = inWriter.Close()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
