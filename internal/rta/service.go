package rta

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/autorta/rta-filler/internal/metrics"
	pdferrors "github.com/autorta/rta-filler/internal/pdf/errors"
	"github.com/autorta/rta-filler/internal/pdf/form"
	"github.com/autorta/rta-filler/internal/templates"
)

// MimeType of every filled document
const MimeType = "application/pdf"

// Document is a filled RTA. The caller owns Data.
type Document struct {
	ID       string `json:"id"`
	Company  string `json:"company"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// Resolver returns the template used for an insurance company identifier
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (*templates.Template, error)
}

// Service runs the fill pipeline: resolve the template, map the record, write the form
type Service struct {
	templates Resolver
	writer    *form.Writer
	logger    *zap.Logger
}

// NewService creates a fill service
func NewService(resolver Resolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		templates: resolver,
		writer:    form.NewWriter(logger.Named("form")),
		logger:    logger,
	}
}

// Fill produces the filled document for rec. Errors are the typed template
// and fill errors of the pdf errors package.
func (s *Service) Fill(ctx context.Context, rec Record) (*Document, error) {
	start := time.Now()
	id := uuid.NewString()

	tmpl, err := s.templates.Resolve(ctx, rec.InsuranceCompany)
	if err != nil {
		s.observe(string(templates.CompanyFor(rec.InsuranceCompany)), start, err)
		s.logger.Error("template resolution failed",
			zap.String("request_id", id),
			zap.String("company", rec.InsuranceCompany),
			zap.Error(err))
		return nil, err
	}

	buf, err := s.writer.Fill(tmpl, BuildMapping(rec))
	s.observe(tmpl.Name(), start, err)
	if err != nil {
		s.logger.Error("fill failed",
			zap.String("request_id", id),
			zap.String("company", tmpl.Name()),
			zap.String("template", tmpl.Location()),
			zap.String("field", pdferrors.FieldNameOf(err)),
			zap.Error(err))
		return nil, err
	}

	doc := &Document{
		ID:       id,
		Company:  tmpl.Name(),
		FileName: FileName(tmpl.Name(), rec.OwnerName),
		MimeType: MimeType,
		Data:     buf.Bytes(),
	}

	s.logger.Info("rta filled",
		zap.String("request_id", id),
		zap.String("company", doc.Company),
		zap.String("template", tmpl.Location()),
		zap.Int("size", len(doc.Data)),
		zap.Duration("duration", time.Since(start)))

	return doc, nil
}

func (s *Service) observe(company string, start time.Time, err error) {
	metrics.FillDuration.WithLabelValues(company).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FillsTotal.WithLabelValues(company, metrics.OutcomeError).Inc()
		metrics.FillErrors.WithLabelValues(company, pdferrors.TypeOf(err).String()).Inc()
		return
	}
	metrics.FillsTotal.WithLabelValues(company, metrics.OutcomeSuccess).Inc()
}
