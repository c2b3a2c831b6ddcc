package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/autorta/rta-filler/internal/pdf/form"
	"github.com/autorta/rta-filler/internal/rta"
	"github.com/autorta/rta-filler/internal/templates"
	"github.com/autorta/rta-filler/internal/trello"
)

type healthResponse struct {
	Status          string   `json:"status"`
	Uptime          string   `json:"uptime"`
	TemplatesLoaded []string `json:"templates_loaded"`
}

type infoResponse struct {
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	Companies      []string `json:"companies"`
	DefaultCompany string   `json:"default_company"`
	TemplateSource string   `json:"template_source"`
	MaxBodyMB      int64    `json:"max_body_mb"`
	TaskBoard      bool     `json:"task_board"`
	Endpoints      []string `json:"endpoints"`
}

type templateFieldsResponse struct {
	Company  string       `json:"company"`
	Template string       `json:"template"`
	Total    int          `json:"total"`
	Fields   []form.Field `json:"fields"`
}

type cardResponse struct {
	OK     bool   `json:"ok"`
	CardID string `json:"card_id"`
}

type authErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Response headers of a fill that was asked to attach the document to a card
const (
	headerAttachmentID    = "X-Card-Attachment-Id"
	headerAttachmentError = "X-Card-Attachment-Error"
)

var endpoints = []string{
	"POST /api/rta",
	"POST /api/rta/validate",
	"GET /api/rta/fields",
	"GET /api/rta/templates/{company}/fields",
	"POST /api/trello",
	"GET /api/trello/auth-check",
	"GET /api/health",
	"GET /api/info",
	"GET /metrics",
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	loaded := []string{}
	for _, c := range s.templates.Loaded() {
		loaded = append(loaded, c.String())
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:          "ok",
		Uptime:          time.Since(s.started).Round(time.Second).String(),
		TemplatesLoaded: loaded,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	var companies []string
	for _, c := range templates.Companies() {
		companies = append(companies, c.String())
	}
	writeJSON(w, http.StatusOK, infoResponse{
		Name:           s.config.ServerName,
		Version:        s.config.Version,
		Companies:      companies,
		DefaultCompany: templates.DefaultCompany.String(),
		TemplateSource: s.config.TemplateSource,
		MaxBodyMB:      s.config.MaxBodyMB,
		TaskBoard:      s.board != nil && s.board.Configured(),
		Endpoints:      endpoints,
	})
}

// handleFill validates the intake record and streams the filled PDF
func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readRaw(w, r)
	if !ok {
		return
	}

	rta.ExpandLegacyAddresses(raw)

	if err := s.validator.Check(raw); err != nil {
		var reqErr *rta.RequestError
		if errors.As(err, &reqErr) {
			code := codeInvalidRequest
			if len(reqErr.MissingFields) > 0 {
				code = codeMissingFields
			}
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:         reqErr.Message,
				Code:          code,
				MissingFields: reqErr.MissingFields,
				Detail:        detailOrNil(reqErr.Details),
			})
			return
		}
		s.fail(w, r, err)
		return
	}

	doc, err := s.filler.Fill(r.Context(), rta.Decode(raw))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.Header().Set("X-Document-Id", doc.ID)
	if cardID := r.URL.Query().Get("card_id"); cardID != "" {
		s.attachToCard(r, w.Header(), cardID, doc)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Data); err != nil {
		s.logger.Warn("Failed to write document", zap.String("document_id", doc.ID), zap.Error(err))
	}
}

// attachToCard uploads doc to the task-board card. The document is returned to
// the caller either way; the outcome is reported in response headers.
func (s *Server) attachToCard(r *http.Request, h http.Header, cardID string, doc *rta.Document) {
	if s.board == nil || !s.board.Configured() {
		h.Set(headerAttachmentError, trello.ErrNotConfigured.Error())
		return
	}

	att, err := s.board.AttachFile(r.Context(), cardID, doc.FileName, doc.Data)
	if err != nil {
		s.logger.Warn("Failed to attach document to task board card",
			zap.String("document_id", doc.ID),
			zap.String("card_id", cardID),
			zap.Error(err))
		h.Set(headerAttachmentError, err.Error())
		return
	}
	h.Set(headerAttachmentID, att.ID)
}

// handleValidate reports every problem of an intake record without filling
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readRaw(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rta.Validate(raw))
}

func (s *Server) handleFields(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rta.Fields())
}

func (s *Server) handleTemplateFields(w http.ResponseWriter, r *http.Request) {
	company, ok := templates.ParseCompany(chi.URLParam(r, "company"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown insurance company", codeNotFound)
		return
	}

	fields, err := s.templates.Fields(r.Context(), company.String())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, templateFieldsResponse{
		Company:  company.String(),
		Template: company.FileName(),
		Total:    len(fields),
		Fields:   fields,
	})
}

// handleCreateCard posts a client intake to the task board
func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	if s.board == nil || !s.board.Configured() {
		writeError(w, http.StatusInternalServerError, trello.ErrNotConfigured.Error(), codeNotConfigured)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		status, resp := statusFor(err)
		writeJSON(w, status, resp)
		return
	}
	intake, err := trello.ParseIntake(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeInvalidRequest)
		return
	}

	id, err := s.board.CreateCard(r.Context(), intake.Card())
	if err != nil {
		s.failUpstream(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, cardResponse{OK: true, CardID: id})
}

// handleAuthCheck reports whether the task-board credentials work
func (s *Server) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	if s.board == nil {
		writeJSON(w, http.StatusBadRequest, authErrorResponse{Error: trello.ErrNotConfigured.Error()})
		return
	}

	status, err := s.board.AuthCheck(r.Context())
	if errors.Is(err, trello.ErrNotConfigured) {
		writeJSON(w, http.StatusBadRequest, authErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.logger.Warn("Task board auth check failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, authErrorResponse{Error: err.Error()})
		return
	}

	code := http.StatusOK
	if !status.OK {
		code = http.StatusUnauthorized
	}
	writeJSON(w, code, status)
}

// readRaw decodes a non-empty JSON object body, answering the request itself on failure
func (s *Server) readRaw(w http.ResponseWriter, r *http.Request) (rta.Raw, bool) {
	raw, err := rta.ReadRaw(r.Body)
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", codeBodyTooLarge)
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body", codeInvalidRequest)
		return nil, false
	}
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "no data provided", codeInvalidRequest)
		return nil, false
	}
	return raw, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := statusFor(err)
	s.logger.Error("Request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Int("status", status),
		zap.String("code", resp.Code),
		zap.Error(err))
	writeJSON(w, status, resp)
}

// failUpstream is fail for task-board calls, where transport errors are a bad gateway
func (s *Server) failUpstream(w http.ResponseWriter, r *http.Request, err error) {
	var upstream *trello.UpstreamError
	if errors.As(err, &upstream) || errors.Is(err, trello.ErrNotConfigured) {
		s.fail(w, r, err)
		return
	}
	s.logger.Error("Task board unreachable",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err))
	writeError(w, http.StatusBadGateway, err.Error(), codeUnreachable)
}

func detailOrNil(details []string) any {
	if len(details) == 0 {
		return nil
	}
	return details
}
