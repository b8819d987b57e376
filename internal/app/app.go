// Package app wires configuration, logging, observability, services and
// routes into a runnable dashboard server.
package app

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/gerardrbentley/fidelity-account-overview/internal/config"
	apierrors "github.com/gerardrbentley/fidelity-account-overview/internal/errors"
	"github.com/gerardrbentley/fidelity-account-overview/internal/infrastructure"
	customMiddleware "github.com/gerardrbentley/fidelity-account-overview/internal/middleware"
	"github.com/gerardrbentley/fidelity-account-overview/internal/services"
	handlers "github.com/gerardrbentley/fidelity-account-overview/internal/transport/http"
	ws "github.com/gerardrbentley/fidelity-account-overview/internal/websocket"
)

const Version = "1.0.0"

// Application is the composition root of the dashboard server.
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Router        chi.Router
	Server        *http.Server
	WebSocketHub  *ws.Hub

	PortfolioService *services.PortfolioService
	ChartService     *services.ChartService
	HealthService    *services.HealthService

	frontendFS fs.FS
	exampleCSV []byte
}

// NewApplication builds the application. frontendFS serves the embedded
// dashboard and may be nil; exampleCSV seeds the portfolio before the
// first upload and may be nil.
func NewApplication(frontendFS fs.FS, exampleCSV []byte) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("initialize otel: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		frontendFS:    frontendFS,
		exampleCSV:    exampleCSV,
	}

	a.initializeServices()
	a.setupRouter()
	a.createServer()
	return a, nil
}

func (a *Application) initializeServices() {
	a.WebSocketHub = ws.NewHub(a.Logger)
	a.PortfolioService = services.NewPortfolioService(a.Config.Portfolio, a.WebSocketHub, a.Logger)
	a.ChartService = services.NewChartService(a.PortfolioService, a.Logger)
	a.HealthService = services.NewHealthService(Version, a.PortfolioService, a.WebSocketHub, a.Logger)
}

// seedPortfolio installs the example dataset so the dashboard has content
// before the first upload. A configured example file wins over the
// embedded one.
func (a *Application) seedPortfolio(ctx context.Context) error {
	data := a.exampleCSV
	source := "example.csv"
	if path := a.Config.Portfolio.ExampleFile; path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read example file: %w", err)
		}
		data = fileData
		source = path
	}
	if len(data) == 0 {
		return nil
	}

	_, err := a.PortfolioService.LoadCSV(ctx, bytes.NewReader(data), source)
	return err
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware that won't interfere with the WebSocket upgrade
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	wsHandler := handlers.NewWebSocketHandler(a.WebSocketHub, a.Config.WebSocket,
		a.Config.Security.AllowedOrigins, a.Logger)
	r.HandleFunc("/ws", wsHandler.ServeHTTP)

	// Everything else runs under the full middleware chain
	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupFrontendRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Level == "debug")
	portfolioHandler := handlers.NewPortfolioHandler(a.PortfolioService,
		a.Config.Portfolio.MaxUploadBytes, a.Logger, errorHandler)
	chartHandler := handlers.NewChartHandler(a.ChartService, a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/health", healthHandler.HealthCheck)
		r.Mount("/charts", chartHandler.Routes())
		r.Mount("/", portfolioHandler.Routes())
	})
}

func (a *Application) setupFrontendRoutes(r chi.Router) {
	if a.frontendFS == nil {
		return
	}
	fileServer := http.FileServer(http.FS(a.frontendFS))
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		fileServer.ServeHTTP(w, req)
	})
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		fileServer.ServeHTTP(w, req)
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start launches the hub and the HTTP server.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.WebSocketHub.Start()

	if err := a.seedPortfolio(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Could not seed example portfolio",
			slog.String("error", err.Error()))
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry",
				slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
