// Package reportform turns the report API description into the cancer
// analysis report form and displays the reports the backend generates.
package reportform

import (
	"context"

	pkgopenapi "github.com/goliatone/go-reportform/pkg/openapi"
	"github.com/goliatone/go-reportform/pkg/orchestrator"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/report"
)

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// FormData is the request body of POST /generate-report.
type FormData = report.FormData

// Report is the document the backend returns.
type Report = report.Report

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// DefaultSource points at the report API document embedded in the module.
func DefaultSource() pkgopenapi.Source {
	return pkgopenapi.DefaultSource()
}

// GenerateHTML loads the OpenAPI source, builds a form model for the requested
// operation, and renders it using the named renderer. It is the simplest entry
// point for callers that just want HTML output.
func GenerateHTML(ctx context.Context, source pkgopenapi.Source, operationID, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Source:      source,
		OperationID: operationID,
		Renderer:    rendererName,
	})
}

// GenerateHTMLFromDocument renders a form using a pre-loaded document,
// bypassing the loader stage while still delegating to the orchestrator.
func GenerateHTMLFromDocument(ctx context.Context, doc pkgopenapi.Document, operationID, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Document:    &doc,
		OperationID: operationID,
		Renderer:    rendererName,
	})
}

// RenderReport parses a backend response and displays it with the named
// renderer ("html" when empty).
func RenderReport(ctx context.Context, payload []byte, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	rep, err := report.ParseReport(payload)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(options...).RenderReport(ctx, rendererName, rep)
}
