package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"pushpulse/internal/analysis"
	"pushpulse/internal/config"
	"pushpulse/internal/dataset"
	apierrors "pushpulse/internal/errors"
	"pushpulse/internal/infrastructure"
	custommw "pushpulse/internal/middleware"
	"pushpulse/internal/services"
	handlers "pushpulse/internal/transport/http"
)

// Version is the service version reported by the health endpoint.
// Overridden at build time with -ldflags.
var Version = "dev"

// Application is the dependency container for the dashboard server.
type Application struct {
	Config   *config.Config
	Router   *chi.Mux
	Server   *http.Server
	Logger   *slog.Logger
	Metrics  *infrastructure.Metrics
	Analysis *services.AnalysisService
}

// New builds the application: configuration, logger, metrics, services
// and the HTTP router.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port),
	)

	metrics := infrastructure.NewMetrics()
	loader := dataset.NewLoader(logger)
	analyzer := analysis.NewAnalyzer(logger)
	analysisService := services.NewAnalysisService(loader, analyzer, logger, metrics)

	app := &Application{
		Config:   cfg,
		Logger:   logger,
		Metrics:  metrics,
		Analysis: analysisService,
	}
	app.Router = app.setupRouter()
	app.Server = &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// A configured report file is loaded up front so the dashboard is
	// usable without an upload. Failure here is fatal: no partial
	// dashboard over a broken report.
	if cfg.Data.ReportFile != "" {
		if err := analysisService.LoadFromFile(context.Background(), cfg.Data.ReportFile); err != nil {
			return nil, fmt.Errorf("load report %s: %w", cfg.Data.ReportFile, err)
		}
	}

	return app, nil
}

func (a *Application) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))
	r.Use(custommw.Metrics(a.Metrics))
	if a.Config.Security.RateLimit.Enabled {
		r.Use(custommw.RateLimit(a.Config.Security.RateLimit.RPS, a.Config.Security.RateLimit.Burst))
	}
	r.Use(custommw.Timeout(a.Config.Server.RequestTimeout))

	errorHandler := apierrors.NewErrorHandler(a.Logger)
	analysisHandler := handlers.NewAnalysisHandler(a.Analysis, a.Logger, errorHandler, a.Config.Server.MaxUploadBytes)
	healthHandler := handlers.NewHealthHandler(a.Analysis, Version)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/", analysisHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
	})
	r.Method(http.MethodGet, "/metrics", a.Metrics.Handler())

	return r
}

// Run starts the HTTP server and blocks until the context is cancelled
// or the server fails, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()

		a.Logger.Info("shutting down http server")
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.Logger.Info("application stopped")
	return err
}
