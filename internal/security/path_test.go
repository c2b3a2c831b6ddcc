package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathValidator(t *testing.T) {
	tests := []struct {
		name      string
		dir       string
		wantError bool
	}{
		{name: "valid directory", dir: t.TempDir()},
		{name: "empty directory", dir: "", wantError: true},
		{name: "non-existent directory", dir: "/non/existent/path"},
		{name: "relative directory", dir: "assets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewPathValidator(tt.dir)
			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, v)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(v.Root()))
		})
	}
}

func TestPathValidator_Resolve(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.pdf"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.pdf"), filepath.Join(root, "link.pdf")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "rta_template_geico.pdf"), []byte("x"), 0o644))

	v, err := NewPathValidator(root)
	require.NoError(t, err)

	tests := []struct {
		name      string
		input     string
		expected  string
		wantError bool
	}{
		{name: "plain file", input: "rta_template_geico.pdf", expected: filepath.Join(root, "rta_template_geico.pdf")},
		{name: "missing file inside root", input: "later.pdf", expected: filepath.Join(root, "later.pdf")},
		{name: "nested", input: "sub/../rta_template_geico.pdf", expected: filepath.Join(root, "rta_template_geico.pdf")},
		{name: "absolute inside root", input: filepath.Join(root, "a.pdf"), expected: filepath.Join(root, "a.pdf")},
		{name: "null byte stripped", input: "rta\x00.pdf", expected: filepath.Join(root, "rta.pdf")},
		{name: "traversal", input: "../secret.pdf", wantError: true},
		{name: "absolute outside root", input: filepath.Join(outside, "secret.pdf"), wantError: true},
		{name: "symlink escaping root", input: "link.pdf", wantError: true},
		{name: "empty", input: "", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := v.Resolve(tt.input)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, path)
		})
	}
}

func TestPathValidator_EnsureDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out", "rta")
	v, err := NewPathValidator(root)
	require.NoError(t, err)

	require.NoError(t, v.EnsureDir())
	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	v, err = NewPathValidator(file)
	require.NoError(t, err)
	assert.Error(t, v.EnsureDir())
}
