package form

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// TemplateInfo summarizes a template that passed validation
type TemplateInfo struct {
	Size   int64 `json:"size"`
	Pages  int   `json:"pages"`
	Fields int   `json:"fields"`
}

// Validator checks that template bytes form a fillable PDF document
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new template validator with the specified size limit
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// Validate parses data as a PDF and as an interactive form. It returns the
// page and field counts when both succeed.
func (v *Validator) Validate(data []byte) (*TemplateInfo, error) {
	size := int64(len(data))
	if size == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	if v.maxFileSize > 0 && size > v.maxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)", size, v.maxFileSize)
	}

	pages, err := countPages(data)
	if err != nil {
		return nil, fmt.Errorf("invalid PDF file: %w", err)
	}
	if pages == 0 {
		return nil, fmt.Errorf("invalid PDF file: no pages")
	}

	ctx, err := readContext(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	fields, err := fieldsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	return &TemplateInfo{
		Size:   size,
		Pages:  pages,
		Fields: len(fields),
	}, nil
}

// countPages opens data with the plain reader, which panics on some truncated inputs.
func countPages(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed document: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}
