package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-reportform/pkg/analysis"
	"github.com/goliatone/go-reportform/pkg/client"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		description string
		backend     string
		raw         bool
		width       int
	)

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Describe a lung CT scan or X-ray image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if backend != "" {
				cfg.Backend.URL = backend
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("analyze: read image: %w", err)
			}

			var analyzer analysis.Analyzer
			if cfg.Backend.URL != "" {
				analyzer = client.New(client.WithBaseURL(cfg.Backend.URL), client.WithTimeout(cfg.Backend.Timeout))
			} else {
				analyzer, err = localAnalyzer(ctx, cfg, logger)
				if err != nil {
					return err
				}
				if analyzer == nil {
					return analysis.ErrAnalyzerDisabled
				}
			}

			logger.Debug().Str("file", filepath.Base(args[0])).Int("bytes", len(data)).Msg("analyzing image")
			text, err := analyzer.AnalyzeImage(ctx, data, description)
			if err != nil {
				return err
			}

			if raw {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			}
			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return fmt.Errorf("analyze: markdown renderer: %w", err)
			}
			rendered, err := renderer.Render(text)
			if err != nil {
				return fmt.Errorf("analyze: render markdown: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), rendered)
			return err
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "image description sent with the prompt")
	cmd.Flags().StringVar(&backend, "backend", "", "report API base URL (overrides backend.url)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the markdown without terminal styling")
	cmd.Flags().IntVar(&width, "width", 80, "word wrap width")
	return cmd
}
