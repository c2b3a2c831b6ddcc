package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autorta/rta-filler/internal/pdf/pdftest"
)

func TestValidator_Validate(t *testing.T) {
	valid := pdftest.Build(
		pdftest.Field{Name: "A", Type: pdftest.TypeText},
		pdftest.Field{Name: "B", Type: pdftest.TypeCheckbox, Page: 2},
	)

	tests := []struct {
		name        string
		maxSize     int64
		data        []byte
		expectError bool
		errorMsg    string
	}{
		{name: "valid template", maxSize: 1 << 20, data: valid},
		{name: "no size limit", maxSize: 0, data: valid},
		{name: "empty", maxSize: 1 << 20, data: nil, expectError: true, errorMsg: "file is empty"},
		{name: "too large", maxSize: 10, data: valid, expectError: true, errorMsg: "file too large"},
		{name: "not a pdf", maxSize: 1 << 20, data: []byte("hello world"), expectError: true, errorMsg: "invalid PDF file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := NewValidator(tt.maxSize).Validate(tt.data)

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, info)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 2, info.Pages)
			assert.Equal(t, 2, info.Fields)
			assert.Equal(t, int64(len(tt.data)), info.Size)
		})
	}
}
