// Package httpapi exposes the fill pipeline and the task-board notification over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/autorta/rta-filler/internal/config"
	"github.com/autorta/rta-filler/internal/pdf/form"
	"github.com/autorta/rta-filler/internal/rta"
	"github.com/autorta/rta-filler/internal/templates"
	"github.com/autorta/rta-filler/internal/trello"
)

const shutdownTimeout = 10 * time.Second

// Filler fills an intake record into its insurer's template
type Filler interface {
	Fill(ctx context.Context, rec rta.Record) (*rta.Document, error)
}

// TemplateCatalog lists the templates and their fields
type TemplateCatalog interface {
	Fields(ctx context.Context, identifier string) ([]form.Field, error)
	Loaded() []templates.Company
}

// Board creates task-board cards and attaches filled documents to them
type Board interface {
	Configured() bool
	CreateCard(ctx context.Context, card trello.Card) (string, error)
	AttachFile(ctx context.Context, cardID, filename string, data []byte) (*trello.Attachment, error)
	AuthCheck(ctx context.Context) (*trello.AuthStatus, error)
}

// Dependencies are the services behind the HTTP surface
type Dependencies struct {
	Filler    Filler
	Validator *rta.Validator
	Templates TemplateCatalog
	Board     Board
	Logger    *zap.Logger
}

// Server is the HTTP API server
type Server struct {
	config    *config.Config
	filler    Filler
	validator *rta.Validator
	templates TemplateCatalog
	board     Board
	logger    *zap.Logger
	router    chi.Router
	started   time.Time
}

// NewServer creates the HTTP server and its routes
func NewServer(cfg *config.Config, deps Dependencies) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if deps.Filler == nil {
		return nil, errors.New("filler cannot be nil")
	}
	if deps.Validator == nil {
		return nil, errors.New("validator cannot be nil")
	}
	if deps.Templates == nil {
		return nil, errors.New("template catalog cannot be nil")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	s := &Server{
		config:    cfg,
		filler:    deps.Filler,
		validator: deps.Validator,
		templates: deps.Templates,
		board:     deps.Board,
		logger:    deps.Logger,
		started:   time.Now(),
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(s.observe)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/info", s.handleInfo)

		r.Route("/rta", func(r chi.Router) {
			r.With(s.limitBody).Post("/", s.handleFill)
			r.With(s.limitBody).Post("/validate", s.handleValidate)
			r.Get("/fields", s.handleFields)
			r.Get("/templates/{company}/fields", s.handleTemplateFields)
		})

		r.Route("/trello", func(r chi.Router) {
			r.With(s.limitBody).Post("/", s.handleCreateCard)
			r.Get("/auth-check", s.handleAuthCheck)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found", codeNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", codeMethodNotAllowed)
	})

	return r
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("address", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrap(err, "server listen")
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	return nil
}
