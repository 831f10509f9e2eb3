package orchestrator_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-reportform/internal/openapi/parser"
	pkgopenapi "github.com/goliatone/go-reportform/pkg/openapi"
	"github.com/goliatone/go-reportform/pkg/orchestrator"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/renderers/text"
	"github.com/goliatone/go-reportform/pkg/testsupport"
)

type countingParser struct {
	inner pkgopenapi.Parser
	calls int
}

func (c *countingParser) Operations(ctx context.Context, doc pkgopenapi.Document) (map[string]pkgopenapi.Operation, error) {
	c.calls++
	return c.inner.Operations(ctx, doc)
}

func TestOrchestrator_DefaultPipeline(t *testing.T) {
	orch := orchestrator.New()

	output, err := orch.Generate(testsupport.Context(), orchestrator.Request{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	page := string(output)
	for _, fragment := range []string{
		"<title>Generate Cancer Analysis Report</title>",
		"<legend>Patient Information</legend>",
		`name="risk_analysis.additionalProp1.follow_up"`,
	} {
		if !strings.Contains(page, fragment) {
			t.Fatalf("expected %q in default output", fragment)
		}
	}
}

func TestOrchestrator_FormMatchesFixture(t *testing.T) {
	orch := orchestrator.New()

	form, err := orch.Form(testsupport.Context(), orchestrator.Request{OperationID: "generate_report"})
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if diff := testsupport.Diff(testsupport.ReportForm(t), form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestOrchestrator_CachesForms(t *testing.T) {
	counting := &countingParser{inner: parser.New(pkgopenapi.NewParserOptions())}
	orch := orchestrator.New(orchestrator.WithParser(counting))
	ctx := testsupport.Context()

	first, err := orch.Form(ctx, orchestrator.Request{})
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	first.Title = "mutated"
	first.Fields[0].Nested[0].Label = "mutated"

	second, err := orch.Form(ctx, orchestrator.Request{})
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if counting.calls != 1 {
		t.Fatalf("expected a single parse, got %d", counting.calls)
	}
	if second.Title != "Generate Cancer Analysis Report" || second.Fields[0].Nested[0].Label == "mutated" {
		t.Fatalf("cached form was mutated through a returned copy")
	}

	uncached := &countingParser{inner: parser.New(pkgopenapi.NewParserOptions())}
	orch = orchestrator.New(orchestrator.WithParser(uncached), orchestrator.WithFormCache(false))
	for i := 0; i < 2; i++ {
		if _, err := orch.Form(ctx, orchestrator.Request{}); err != nil {
			t.Fatalf("form: %v", err)
		}
	}
	if uncached.calls != 2 {
		t.Fatalf("expected two parses without cache, got %d", uncached.calls)
	}
}

func TestOrchestrator_UnknownOperation(t *testing.T) {
	orch := orchestrator.New()
	_, err := orch.Form(testsupport.Context(), orchestrator.Request{OperationID: "missing"})
	if err == nil || !strings.Contains(err.Error(), `operation "missing" not found`) {
		t.Fatalf("expected missing operation error, got %v", err)
	}
}

func TestOrchestrator_NamedRenderers(t *testing.T) {
	orch := orchestrator.New()
	ctx := testsupport.Context()

	output, err := orch.Generate(ctx, orchestrator.Request{Renderer: text.Name})
	if err != nil {
		t.Fatalf("generate text: %v", err)
	}
	if !strings.HasPrefix(string(output), "Generate Cancer Analysis Report\n") {
		t.Fatalf("unexpected text output:\n%s", output)
	}

	if _, err := orch.Generate(ctx, orchestrator.Request{Renderer: "tui"}); err == nil {
		t.Fatalf("expected error for unregistered renderer")
	}
}

func TestOrchestrator_RenderReport(t *testing.T) {
	orch := orchestrator.New()
	ctx := testsupport.Context()
	rep := testsupport.SampleReport(t)

	htmlOut, err := orch.RenderReport(ctx, "", rep)
	if err != nil {
		t.Fatalf("render html report: %v", err)
	}
	if !strings.Contains(string(htmlOut), "<dt>RISK LEVEL</dt><dd>High</dd>") {
		t.Fatalf("unexpected html report")
	}

	textOut, err := orch.RenderReport(ctx, text.Name, rep)
	if err != nil {
		t.Fatalf("render text report: %v", err)
	}
	if !strings.Contains(string(textOut), "RISK LEVEL: High") {
		t.Fatalf("unexpected text report:\n%s", textOut)
	}

	registry := render.NewRegistry()
	registry.MustRegister(&stubRenderer{})
	orch = orchestrator.New(orchestrator.WithRegistry(registry), orchestrator.WithDefaultRenderer("stub"))
	if _, err := orch.RenderReport(ctx, "", rep); err == nil {
		t.Fatalf("expected error for renderer without report support")
	}
}
