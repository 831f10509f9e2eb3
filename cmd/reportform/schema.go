package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	pkgopenapi "github.com/goliatone/go-reportform/pkg/openapi"
	"github.com/goliatone/go-reportform/pkg/orchestrator"
)

func newSchemaCmd(_ *rootOptions) *cobra.Command {
	var (
		source      string
		operationID string
		renderer    string
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the form model built from the OpenAPI document",
		Long: "Print the form model as JSON, or render the empty form with --renderer " +
			"(html or text). --source points at another OpenAPI document (path or URL).",
		RunE: func(cmd *cobra.Command, _ []string) error {
			orch, err := newCLIOrchestrator(cmd, false)
			if err != nil {
				return err
			}
			req := orchestrator.Request{
				Source:      parseSource(source),
				OperationID: operationID,
				Renderer:    renderer,
			}

			if renderer != "" {
				output, err := orch.Generate(cmd.Context(), req)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(output)
				return err
			}

			form, err := orch.Form(cmd.Context(), req)
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(form)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "OpenAPI document path or URL (embedded document when empty)")
	cmd.Flags().StringVar(&operationID, "operation", orchestrator.DefaultOperationID, "operation ID to build")
	cmd.Flags().StringVar(&renderer, "renderer", "", "render the form instead of printing the model")
	return cmd
}

func parseSource(raw string) pkgopenapi.Source {
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return pkgopenapi.SourceFromURL(path)
	}
	return pkgopenapi.SourceFromFile(path)
}
