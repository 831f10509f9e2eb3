package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-reportform/pkg/client"
	"github.com/goliatone/go-reportform/pkg/orchestrator"
	"github.com/goliatone/go-reportform/pkg/page"
	"github.com/goliatone/go-reportform/pkg/report"
	"github.com/goliatone/go-reportform/pkg/validation"
)

type generateOptions struct {
	input   string
	backend string
	format  string
	confirm bool
}

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	gen := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fill in the report form in the terminal and print the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts, gen)
		},
	}
	cmd.Flags().StringVarP(&gen.input, "input", "i", "", "read form data from a JSON file instead of prompting")
	cmd.Flags().StringVar(&gen.backend, "backend", "", "report API base URL (overrides backend.url)")
	cmd.Flags().StringVarP(&gen.format, "format", "f", "text", "report output: text, html or json")
	cmd.Flags().BoolVar(&gen.confirm, "confirm", true, "ask for confirmation before submitting")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *rootOptions, gen *generateOptions) error {
	ctx := cmd.Context()
	cfg, logger, err := opts.setup(cmd)
	if err != nil {
		return err
	}
	if gen.backend != "" {
		cfg.Backend.URL = gen.backend
	}

	orch, err := newCLIOrchestrator(cmd, gen.confirm)
	if err != nil {
		return err
	}

	var form report.FormData
	if gen.input != "" {
		form, err = readFormFile(gen.input)
	} else {
		form, err = promptForm(cmd, orch)
	}
	if err != nil {
		return err
	}

	model, err := orch.Form(ctx, orchestrator.Request{})
	if err != nil {
		return err
	}
	if result := validation.ValidateValues(model, flatValues(form)); !result.Valid {
		for _, issue := range result.Issues {
			logger.Error().Str("field", issue.Path).Str("type", issue.Code).Msg(issue.Message)
		}
		return fmt.Errorf("generate: %d invalid field(s)", len(result.Issues))
	}

	generator, _, err := uiBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	state := page.NewController(generator).Submit(ctx, page.State{}, form)
	if state.Failed() {
		logger.Error().Err(state.Cause).Msg("report request failed")
		return fmt.Errorf("generate: %s", client.FailureMessage)
	}

	return writeReport(cmd, orch, gen.format, *state.Report)
}

func readFormFile(path string) (report.FormData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return report.FormData{}, fmt.Errorf("generate: read input: %w", err)
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return report.FormData{}, fmt.Errorf("generate: decode input: %w", err)
	}
	return report.FormDataFromValues(values)
}

func promptForm(cmd *cobra.Command, orch *orchestrator.Orchestrator) (report.FormData, error) {
	output, err := orch.Generate(cmd.Context(), orchestrator.Request{Renderer: "tui"})
	if err != nil {
		return report.FormData{}, err
	}
	var values map[string]any
	if err := json.Unmarshal(output, &values); err != nil {
		return report.FormData{}, fmt.Errorf("generate: decode answers: %w", err)
	}
	return report.FormDataFromValues(values)
}

func writeReport(cmd *cobra.Command, orch *orchestrator.Orchestrator, format string, rep report.Report) error {
	var (
		output []byte
		err    error
	)
	switch format {
	case "json":
		output, err = json.MarshalIndent(rep, "", "  ")
		output = append(output, '\n')
	case "text", "html":
		output, err = orch.RenderReport(cmd.Context(), format, rep)
	default:
		return fmt.Errorf("generate: unknown format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(output)
	return err
}
