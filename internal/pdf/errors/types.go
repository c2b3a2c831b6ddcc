package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the categories of failure a fill can surface to its caller
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeResourceNotFound: the template behind a company identifier is missing from storage.
	ErrorTypeResourceNotFound
	// ErrorTypeTemplateCorrupt: the template bytes could not be parsed as an interactive PDF.
	ErrorTypeTemplateCorrupt
	// ErrorTypeFillFailed: applying a value or serializing the document failed.
	ErrorTypeFillFailed
)

// Sentinels for errors.Is matching by type
var (
	ErrResourceNotFound = &PDFError{Type: ErrorTypeResourceNotFound}
	ErrTemplateCorrupt  = &PDFError{Type: ErrorTypeTemplateCorrupt}
	ErrFillFailed       = &PDFError{Type: ErrorTypeFillFailed}
)

// PDFError is the typed error returned by the template registry and the form writer
type PDFError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Context   string    `json:"context,omitempty"`
	Template  string    `json:"template,omitempty"`
	FieldName string    `json:"field_name,omitempty"`
	Err       error     `json:"-"`
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeResourceNotFound:
		return "RESOURCE_NOT_FOUND"
	case ErrorTypeTemplateCorrupt:
		return "TEMPLATE_CORRUPT"
	case ErrorTypeFillFailed:
		return "FILL_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.FieldName != "" {
		msg += fmt.Sprintf(" (field %q)", e.FieldName)
	}
	if e.Template != "" {
		msg += fmt.Sprintf(" (template %s)", e.Template)
	}
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause
func (e *PDFError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a PDFError of the same type.
func (e *PDFError) Is(target error) bool {
	t, ok := target.(*PDFError)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// Code returns the machine-readable error code
func (e *PDFError) Code() string {
	return e.Type.String()
}

// WrapError wraps a standard error as a PDFError
func WrapError(errorType ErrorType, message string, err error) *PDFError {
	return &PDFError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
}

// ResourceNotFound reports a template missing from storage.
func ResourceNotFound(template string, err error) *PDFError {
	return &PDFError{
		Type:     ErrorTypeResourceNotFound,
		Message:  "template resource not found",
		Template: template,
		Err:      err,
	}
}

// TemplateCorrupt reports a template that cannot be loaded as an interactive PDF.
func TemplateCorrupt(template string, err error) *PDFError {
	return &PDFError{
		Type:     ErrorTypeTemplateCorrupt,
		Message:  "template is malformed or corrupt",
		Template: template,
		Err:      err,
	}
}

// FillFailed reports a failure while applying the value of fieldName.
func FillFailed(fieldName string, err error) *PDFError {
	return &PDFError{
		Type:      ErrorTypeFillFailed,
		Message:   "failed to fill form field",
		FieldName: fieldName,
		Err:       err,
	}
}

// WithContext adds context to an existing PDFError
func (e *PDFError) WithContext(context string) *PDFError {
	e.Context = context
	return e
}

// WithTemplate adds the template name or location to an existing PDFError
func (e *PDFError) WithTemplate(template string) *PDFError {
	e.Template = template
	return e
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var pe *PDFError
	if stderrors.As(err, &pe) {
		return pe.Type
	}
	return ErrorTypeUnknown
}

// FieldNameOf returns the field name attached to a FillFailed error, if any.
func FieldNameOf(err error) string {
	var pe *PDFError
	if stderrors.As(err, &pe) {
		return pe.FieldName
	}
	return ""
}
