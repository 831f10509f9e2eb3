// Package server exposes the two HTTP surfaces: the browser facing web UI and
// the JSON report API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-reportform/pkg/analysis"
	pagehandlers "github.com/goliatone/go-reportform/pkg/handlers/page"
	reporthandlers "github.com/goliatone/go-reportform/pkg/handlers/reports"
	pkgopenapi "github.com/goliatone/go-reportform/pkg/openapi"
	"github.com/goliatone/go-reportform/pkg/orchestrator"
	"github.com/goliatone/go-reportform/pkg/page"
	"github.com/goliatone/go-reportform/pkg/renderers/html"
	reportformmiddleware "github.com/goliatone/go-reportform/pkg/server/middleware"
)

const (
	// StaticPrefix serves the embedded stylesheet on the web UI.
	StaticPrefix = "/static"

	defaultShutdownTimeout = 10 * time.Second
)

type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// WebUIDependencies are the collaborators of the web UI. Orchestrator defaults
// to orchestrator.New(); Analyzer may be nil.
type WebUIDependencies struct {
	Orchestrator *orchestrator.Orchestrator
	Generator    page.Generator
	Analyzer     analysis.Analyzer
}

// ReportAPIDependencies are the collaborators of the report API. Analyzer may
// be nil, in which case POST /analyze answers 503.
type ReportAPIDependencies struct {
	Orchestrator *orchestrator.Orchestrator
	Generator    reporthandlers.Generator
	Analyzer     analysis.Analyzer
}

// NewWebUI serves the form page, the analysis page and the stylesheet.
func NewWebUI(logger zerolog.Logger, config Config, deps WebUIDependencies) (*WebAPI, error) {
	if deps.Generator == nil {
		return nil, errors.New("server: web UI requires a report generator")
	}
	orch := deps.Orchestrator
	if orch == nil {
		orch = orchestrator.New()
	}

	renderer, err := html.New(
		html.WithAction("/"),
		html.WithAssetsPath(StaticPrefix),
		html.WithAnalyzePath("/analyze"),
	)
	if err != nil {
		return nil, fmt.Errorf("server: html renderer: %w", err)
	}
	pageHandler := pagehandlers.NewHandler(orch, renderer, deps.Generator, deps.Analyzer)

	router := newRouter(&logger)
	router.Get("/", pageHandler.ShowForm)
	router.Post("/", pageHandler.SubmitForm)
	router.Get("/analyze", pageHandler.ShowAnalysis)
	router.Post("/analyze", pageHandler.SubmitAnalysis)
	router.Handle(StaticPrefix+"/*", http.StripPrefix(StaticPrefix+"/", http.FileServer(http.FS(html.AssetsFS()))))
	router.Get("/healthz", health)

	return newWebAPI(router, &logger, config), nil
}

// NewReportAPI serves the JSON backend described by the embedded OpenAPI
// document.
func NewReportAPI(logger zerolog.Logger, config Config, deps ReportAPIDependencies) (*WebAPI, error) {
	if deps.Generator == nil {
		return nil, errors.New("server: report API requires a report generator")
	}
	orch := deps.Orchestrator
	if orch == nil {
		orch = orchestrator.New()
	}

	reportHandler := reporthandlers.NewHandler(orch, deps.Generator, deps.Analyzer, pkgopenapi.EmbeddedDocument())

	router := newRouter(&logger)
	router.Use(reportformmiddleware.CORS)
	router.Get("/", reportHandler.Status)
	router.Post("/generate-report", reportHandler.GenerateReport)
	router.Post("/analyze", reportHandler.AnalyzeImage)
	router.Get("/openapi.yaml", reportHandler.OpenAPI)
	router.Get("/healthz", reportHandler.Health)

	return newWebAPI(router, &logger, config), nil
}

func newRouter(logger *zerolog.Logger) *chi.Mux {
	router := chi.NewRouter()
	router.Use(reportformmiddleware.Logger(logger))
	router.Use(middleware.Recoverer)
	return router
}

func newWebAPI(router *chi.Mux, logger *zerolog.Logger, config Config) *WebAPI {
	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	return &WebAPI{
		router: router,
		logger: logger,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: timeout,
	}
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

// Handler returns the router, mainly for tests.
func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Addr returns the configured listen address.
func (w *WebAPI) Addr() string {
	return w.server.Addr
}

// Start serves until the process receives SIGINT or SIGTERM.
func (w *WebAPI) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return w.Run(ctx)
}

// Run serves until ctx is done, then shuts down gracefully.
func (w *WebAPI) Run(ctx context.Context) error {
	serverErrors := make(chan error, 1)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		w.logger.Info().Msg("shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(shutdownCtx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}
		return err
	}
}
