package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-reportform/pkg/generator"
	"github.com/goliatone/go-reportform/pkg/server"
)

func newAllCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Serve the web UI and the report API together",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			analyzer, err := localAnalyzer(ctx, cfg, logger)
			if err != nil {
				return err
			}
			gen := generator.New()
			serverCfg := server.Config{ShutdownTimeout: cfg.Server.ShutdownTimeout}

			serverCfg.Addr = cfg.Server.APIAddr
			api, err := server.NewReportAPI(logger.With().Str("surface", "api").Logger(), serverCfg,
				server.ReportAPIDependencies{Generator: gen, Analyzer: analyzer})
			if err != nil {
				return err
			}

			serverCfg.Addr = cfg.Server.Addr
			ui, err := server.NewWebUI(logger.With().Str("surface", "ui").Logger(), serverCfg,
				server.WebUIDependencies{Generator: gen, Analyzer: analyzer})
			if err != nil {
				return err
			}

			group, groupCtx := errgroup.WithContext(ctx)
			group.Go(func() error { return api.Run(groupCtx) })
			group.Go(func() error { return ui.Run(groupCtx) })
			return group.Wait()
		},
	}
}
