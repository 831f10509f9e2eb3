package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-reportform/pkg/generator"
	"github.com/goliatone/go-reportform/pkg/server"
)

func newAPICmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "api",
		Short: "Serve the JSON report API (/generate-report, /analyze)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.APIAddr = addr
			}

			analyzer, err := localAnalyzer(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			api, err := server.NewReportAPI(logger, server.Config{
				Addr:            cfg.Server.APIAddr,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
			}, server.ReportAPIDependencies{
				Generator: generator.New(),
				Analyzer:  analyzer,
			})
			if err != nil {
				return err
			}
			return api.Start()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.api_addr)")
	return cmd
}
