package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/autorta/rta-filler/internal/config"
	"github.com/autorta/rta-filler/internal/httpapi"
	"github.com/autorta/rta-filler/internal/logging"
	"github.com/autorta/rta-filler/internal/mcp"
	"github.com/autorta/rta-filler/internal/rta"
	"github.com/autorta/rta-filler/internal/templates"
	"github.com/autorta/rta-filler/internal/trello"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	logger.Debug("Starting with configuration", zap.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	logger.Info("Server stopped successfully")
}

// run wires the pipeline and serves in the configured mode until ctx is done
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	source, err := newTemplateSource(ctx, cfg)
	if err != nil {
		return err
	}

	registry := templates.NewRegistry(source,
		templates.WithLogger(logger.Named("templates")),
		templates.WithMaxTemplateSize(cfg.MaxTemplateBytes()),
	)
	if cfg.Preload {
		preload(ctx, registry, logger)
	}

	validator, err := rta.NewValidator()
	if err != nil {
		return err
	}
	service := rta.NewService(registry, logger.Named("rta"))

	if cfg.IsStdioMode() {
		server, err := mcp.NewServer(cfg, service, validator, registry, logger.Named("mcp"))
		if err != nil {
			return fmt.Errorf("failed to create MCP server: %w", err)
		}
		return server.Run(ctx)
	}

	board := trello.NewClient(cfg.TrelloKey, cfg.TrelloToken, cfg.TrelloListID,
		trello.WithCardsURL(cfg.TrelloURL),
		trello.WithRateLimit(cfg.TrelloRate),
		trello.WithLogger(logger.Named("trello")),
	)
	if !board.Configured() {
		logger.Warn("Task board credentials not configured, /api/trello will answer with an error")
	}

	server, err := httpapi.NewServer(cfg, httpapi.Dependencies{
		Filler:    service,
		Validator: validator,
		Templates: registry,
		Board:     board,
		Logger:    logger.Named("http"),
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}
	return server.Run(ctx)
}

// newTemplateSource opens the configured template storage
func newTemplateSource(ctx context.Context, cfg *config.Config) (templates.Source, error) {
	switch cfg.TemplateSource {
	case config.SourceS3:
		source, err := templates.NewS3Source(ctx, templates.S3Config{
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		return source, nil
	case config.SourceDir:
		source, err := templates.NewDirSource(cfg.TemplatesDir)
		if err != nil {
			return nil, err
		}
		return source, nil
	default:
		return nil, fmt.Errorf("unknown template source %q", cfg.TemplateSource)
	}
}

// preload loads every template at startup. Failures are logged and resurface per request.
func preload(ctx context.Context, registry *templates.Registry, logger *zap.Logger) {
	failed := registry.Preload(ctx)
	for company, err := range failed {
		logger.Error("Template unavailable",
			zap.String("company", company.String()),
			zap.Error(err))
	}
	logger.Info("Templates preloaded",
		zap.Int("loaded", len(registry.Loaded())),
		zap.Int("failed", len(failed)))
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "RTA Filler\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
