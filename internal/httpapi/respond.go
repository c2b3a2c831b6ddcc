package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	pdferrors "github.com/autorta/rta-filler/internal/pdf/errors"
	"github.com/autorta/rta-filler/internal/trello"
)

// Error codes of JSON error bodies
const (
	codeInvalidRequest   = "INVALID_REQUEST"
	codeMissingFields    = "MISSING_FIELDS"
	codeBodyTooLarge     = "BODY_TOO_LARGE"
	codeNotFound         = "NOT_FOUND"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	codeNotConfigured    = "NOT_CONFIGURED"
	codeUpstream         = "UPSTREAM_ERROR"
	codeUnreachable      = "UPSTREAM_UNREACHABLE"
	codeInternal         = "INTERNAL"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error         string   `json:"error"`
	Code          string   `json:"code"`
	MissingFields []string `json:"missing_fields,omitempty"`
	Field         string   `json:"field,omitempty"`
	Detail        any      `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// statusFor maps a pipeline error to its status and body. Template and fill
// faults are server side; they never become client errors.
func statusFor(err error) (int, errorResponse) {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large", Code: codeBodyTooLarge}
	}

	var pdfErr *pdferrors.PDFError
	if errors.As(err, &pdfErr) {
		return http.StatusInternalServerError, errorResponse{
			Error: pdfErr.Error(),
			Code:  pdfErr.Code(),
			Field: pdfErr.FieldName,
		}
	}

	if errors.Is(err, trello.ErrNotConfigured) {
		return http.StatusInternalServerError, errorResponse{Error: err.Error(), Code: codeNotConfigured}
	}

	var upstream *trello.UpstreamError
	if errors.As(err, &upstream) {
		status := upstream.Status
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return status, errorResponse{Error: upstream.Error(), Code: codeUpstream, Detail: upstream.Detail()}
	}

	return http.StatusInternalServerError, errorResponse{Error: "internal error: " + err.Error(), Code: codeInternal}
}
