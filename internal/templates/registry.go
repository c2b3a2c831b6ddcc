// Package templates resolves insurance-company identifiers to the read-only
// RTA template documents they are filled into.
package templates

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/autorta/rta-filler/internal/metrics"
	pdferrors "github.com/autorta/rta-filler/internal/pdf/errors"
	"github.com/autorta/rta-filler/internal/pdf/form"
)

// Template is an immutable, loaded template document
type Template struct {
	company  Company
	location string
	data     []byte
	info     form.TemplateInfo
}

// Name returns the company the template belongs to
func (t *Template) Name() string {
	return string(t.company)
}

// Company returns the template's company
func (t *Template) Company() Company {
	return t.company
}

// Location returns where the template was loaded from
func (t *Template) Location() string {
	return t.location
}

// Info returns the size, page and field counts found when the template was verified
func (t *Template) Info() form.TemplateInfo {
	return t.info
}

// Open returns an independent reader over the template bytes
func (t *Template) Open() io.ReadSeeker {
	return bytes.NewReader(t.data)
}

// Registry maps companies to templates. Templates are loaded from the source
// on first use and then shared read-only; failed loads are not cached.
// Concurrent first loads of one company share a single source read.
type Registry struct {
	source    Source
	validator *form.Validator
	logger    *zap.Logger
	loads     singleflight.Group

	mu    sync.Mutex
	cache map[Company]*Template
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the registry logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxTemplateSize rejects templates larger than n bytes
func WithMaxTemplateSize(n int64) Option {
	return func(r *Registry) {
		r.validator = form.NewValidator(n)
	}
}

// NewRegistry creates a registry reading from source
func NewRegistry(source Source, opts ...Option) *Registry {
	r := &Registry{
		source:    source,
		validator: form.NewValidator(0),
		logger:    zap.NewNop(),
		cache:     make(map[Company]*Template, len(companies)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CompanyFor returns the company resolved for identifier, falling back to the default.
func CompanyFor(identifier string) Company {
	if c, ok := ParseCompany(identifier); ok {
		return c
	}
	return DefaultCompany
}

// Resolve returns the template for identifier. Unknown identifiers resolve to
// the default company's template.
func (r *Registry) Resolve(ctx context.Context, identifier string) (*Template, error) {
	company, ok := ParseCompany(identifier)
	if !ok {
		company = DefaultCompany
		metrics.TemplateFallbacks.Inc()
		r.logger.Debug("unknown insurance company, using default template",
			zap.String("requested", identifier),
			zap.String("company", string(company)))
	}
	return r.load(ctx, company)
}

func (r *Registry) load(ctx context.Context, company Company) (*Template, error) {
	if t, ok := r.cached(company); ok {
		return t, nil
	}

	// The shared load outlives any single caller; each caller still stops
	// waiting when its own context is done.
	loadCtx := context.WithoutCancel(ctx)
	ch := r.loads.DoChan(string(company), func() (any, error) {
		if t, ok := r.cached(company); ok {
			return t, nil
		}
		return r.fetch(loadCtx, company)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Template), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Registry) cached(company Company) (*Template, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.cache[company]
	return t, ok
}

// fetch reads and verifies the company's template and caches it
func (r *Registry) fetch(ctx context.Context, company Company) (*Template, error) {
	name := company.FileName()
	location := r.source.Describe(name)

	data, err := r.source.Open(ctx, name)
	if isContextError(err) {
		return nil, err
	}
	if err != nil {
		metrics.TemplateLoads.WithLabelValues(string(company), metrics.OutcomeError).Inc()
		r.logger.Error("template resource unavailable",
			zap.String("company", string(company)),
			zap.String("location", location),
			zap.Error(err))
		if pdferrors.TypeOf(err) == pdferrors.ErrorTypeUnknown {
			return nil, pdferrors.ResourceNotFound(string(company), err).WithContext(location)
		}
		return nil, err
	}

	info, err := r.validator.Validate(data)
	if err != nil {
		metrics.TemplateLoads.WithLabelValues(string(company), metrics.OutcomeError).Inc()
		r.logger.Error("template resource is not a fillable PDF",
			zap.String("company", string(company)),
			zap.String("location", location),
			zap.Error(err))
		return nil, pdferrors.TemplateCorrupt(string(company), err).WithContext(location)
	}

	t := &Template{
		company:  company,
		location: location,
		data:     data,
		info:     *info,
	}
	r.mu.Lock()
	r.cache[company] = t
	r.mu.Unlock()

	metrics.TemplateLoads.WithLabelValues(string(company), metrics.OutcomeSuccess).Inc()
	r.logger.Info("template loaded",
		zap.String("company", string(company)),
		zap.String("location", location),
		zap.Int("pages", info.Pages),
		zap.Int("fields", info.Fields))

	return t, nil
}

// Preload loads every company's template concurrently and returns the failures
// by company. Failed templates are retried on their next resolution.
func (r *Registry) Preload(ctx context.Context) map[Company]error {
	var (
		mu       sync.Mutex
		failures = make(map[Company]error)
		g        errgroup.Group
	)
	for _, c := range companies {
		g.Go(func() error {
			if _, err := r.load(ctx, c); err != nil {
				mu.Lock()
				failures[c] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failures
}

// Fields lists the interactive fields of the template resolved for identifier
func (r *Registry) Fields(ctx context.Context, identifier string) ([]form.Field, error) {
	t, err := r.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	fields, err := form.ReadFields(t.Open())
	if err != nil {
		return nil, pdferrors.TemplateCorrupt(t.Name(), err).WithContext(t.Location())
	}
	return fields, nil
}

// Loaded returns the companies whose templates are currently cached
func (r *Registry) Loaded() []Company {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Company
	for _, c := range companies {
		if _, ok := r.cache[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
