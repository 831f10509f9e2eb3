package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-reportform"
	pkgopenapi "github.com/goliatone/go-reportform/pkg/openapi"
	"github.com/goliatone/go-reportform/pkg/orchestrator"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/renderers/html"
	"github.com/goliatone/go-reportform/pkg/renderers/text"
	"github.com/goliatone/go-reportform/pkg/renderers/tui"
	"github.com/goliatone/go-reportform/pkg/report"
)

// newCLIOrchestrator registers the terminal renderer next to html and text and
// allows documents to be fetched over HTTP. Prompts are written to stderr.
func newCLIOrchestrator(cmd *cobra.Command, confirm bool) (*orchestrator.Orchestrator, error) {
	htmlRenderer, err := html.New()
	if err != nil {
		return nil, err
	}
	tuiRenderer, err := tui.New(
		tui.WithOutput(cmd.ErrOrStderr()),
		tui.WithOutputFormat(tui.OutputFormatJSON),
		tui.WithConfirm(confirm),
	)
	if err != nil {
		return nil, err
	}

	registry := render.NewRegistry()
	for _, renderer := range []render.Renderer{htmlRenderer, text.New(), tuiRenderer} {
		if err := registry.Register(renderer); err != nil {
			return nil, err
		}
	}
	loader := reportform.NewLoader(pkgopenapi.WithHTTPFallback(15 * time.Second))
	return orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithLoader(loader),
	), nil
}

func flatValues(form report.FormData) map[string]any {
	return render.FlattenValues(form.Values())
}
