package main

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-reportform"
	"github.com/goliatone/go-reportform/pkg/analysis"
	"github.com/goliatone/go-reportform/pkg/client"
	"github.com/goliatone/go-reportform/pkg/config"
	"github.com/goliatone/go-reportform/pkg/generator"
	pkgopenapi "github.com/goliatone/go-reportform/pkg/openapi"
	"github.com/goliatone/go-reportform/pkg/orchestrator"
	"github.com/goliatone/go-reportform/pkg/page"
	"github.com/goliatone/go-reportform/pkg/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report form web UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			gen, analyzer, err := uiBackends(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			ui, err := server.NewWebUI(logger, server.Config{
				Addr:            cfg.Server.Addr,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			}, server.WebUIDependencies{
				Orchestrator: uiOrchestrator(cfg, logger),
				Generator:    gen,
				Analyzer:     analyzer,
			})
			if err != nil {
				return err
			}
			return ui.Start()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// uiBackends picks the remote backend when backend.url is set and the in
// process generator and analyzer otherwise.
func uiBackends(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (page.Generator, analysis.Analyzer, error) {
	if cfg.Backend.URL != "" {
		c := client.New(client.WithBaseURL(cfg.Backend.URL), client.WithTimeout(cfg.Backend.Timeout))
		logger.Info().Str("backend", c.BaseURL()).Msg("using remote report backend")
		return c, c, nil
	}

	logger.Info().Msg("generating reports in process")
	analyzer, err := localAnalyzer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return generator.New(), analyzer, nil
}

// uiOrchestrator builds the form from schema.url when it is set. Nil keeps the
// server default of the embedded document.
func uiOrchestrator(cfg *config.Config, logger zerolog.Logger) *orchestrator.Orchestrator {
	if cfg.Schema.URL == "" {
		return nil
	}
	logger.Info().Str("schema", cfg.Schema.URL).Msg("loading form schema from URL")
	return orchestrator.New(
		orchestrator.WithSource(parseSource(cfg.Schema.URL)),
		orchestrator.WithLoader(reportform.NewLoader(pkgopenapi.WithHTTPFallback(cfg.Backend.Timeout))),
	)
}

func localAnalyzer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (analysis.Analyzer, error) {
	if cfg.Gemini.APIKey == "" {
		logger.Warn().Msg("no Gemini API key configured, image analysis disabled")
		return nil, nil
	}
	gemini, err := analysis.NewGemini(ctx, cfg.Gemini.APIKey, analysis.WithModel(cfg.Gemini.Model))
	if err != nil {
		return nil, err
	}
	logger.Info().Str("model", gemini.Model()).Msg("image analysis enabled")
	return gemini, nil
}
