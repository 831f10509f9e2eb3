package html_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/renderers/html"
	"github.com/goliatone/go-reportform/pkg/testsupport"
)

func newRenderer(t *testing.T, options ...html.Option) *html.Renderer {
	t.Helper()

	renderer, err := html.New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return renderer
}

func renderForm(t *testing.T, renderer *html.Renderer, options render.RenderOptions) string {
	t.Helper()

	output, err := renderer.Render(context.Background(), testsupport.ReportForm(t), options)
	if err != nil {
		t.Fatalf("render form: %v", err)
	}
	return string(output)
}

func assertContains(t *testing.T, output string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(output, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, output)
		}
	}
}

func assertOrder(t *testing.T, output string, fragments ...string) {
	t.Helper()
	last := -1
	for _, fragment := range fragments {
		idx := strings.Index(output, fragment)
		if idx < 0 {
			t.Fatalf("missing %q", fragment)
		}
		if idx < last {
			t.Fatalf("%q rendered out of order", fragment)
		}
		last = idx
	}
}

func TestRenderer_Metadata(t *testing.T) {
	renderer := newRenderer(t)
	if renderer.Name() != html.Name {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if renderer.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
}

func TestRender_FormPage(t *testing.T) {
	output := renderForm(t, newRenderer(t), render.RenderOptions{})

	assertContains(t, output,
		"<title>Generate Cancer Analysis Report</title>",
		`method="post" action="/generate-report"`,
		`name="patient_info.name"`,
		`type="number" name="patient_info.age"`,
		`<textarea id="field-patient_info.additionalProp1.medical_history" name="patient_info.additionalProp1.medical_history" rows="2"`,
		`<textarea id="field-risk_analysis.recommendations" name="risk_analysis.recommendations" rows="2"`,
		`name="risk_analysis.additionalProp1.specialist"`,
		"Generate Report",
		"<style>",
	)
	assertOrder(t, output,
		"<legend>Patient Information</legend>",
		`name="patient_info.name"`,
		`name="patient_info.age"`,
		`name="patient_info.gender"`,
		`name="patient_info.additionalProp1.occupation"`,
		"<legend>Cancer Detection Result</legend>",
		`name="cancer_result.prediction"`,
		`name="cancer_result.confidence"`,
		"<legend>Risk Analysis</legend>",
		">Risk Level",
		">Follow-up",
	)
	if strings.Contains(output, "Report ID:") {
		t.Fatalf("report viewer should not render without a report")
	}
	if strings.Contains(output, " disabled") {
		t.Fatalf("submit button should be enabled when idle")
	}
	for _, attr := range []string{" min=", " max=", " maxlength="} {
		if strings.Contains(output, attr) {
			t.Fatalf("form must not restrict inputs with %q", attr)
		}
	}
}

func TestRender_MarksRequiredInputs(t *testing.T) {
	output := renderForm(t, newRenderer(t), render.RenderOptions{})

	assertContains(t, output,
		`name="patient_info.name" value="" required`,
		`name="cancer_result.prediction" value="" required`,
	)
	if strings.Contains(output, `name="risk_analysis.risk_level" value="" required`) {
		t.Fatalf("risk level should be optional")
	}
}

func TestRender_PrefillsValuesAndErrors(t *testing.T) {
	output := renderForm(t, newRenderer(t), render.RenderOptions{
		Values: map[string]any{
			"patient_info.name":                       "<b>Ada</b>",
			"patient_info.age":                        float64(42),
			"risk_analysis.additionalProp1.follow_up": "2 weeks",
		},
		Errors: map[string][]string{
			"patient_info.age": {"value is not a valid number"},
		},
	})

	assertContains(t, output,
		`value="&lt;b&gt;Ada&lt;/b&gt;"`,
		`name="patient_info.age" value="42"`,
		`value="2 weeks"`,
		`<small class="error">value is not a valid number</small>`,
		"has-error",
	)
}

func TestRender_LoadingAndFormErrors(t *testing.T) {
	output := renderForm(t, newRenderer(t), render.RenderOptions{
		Loading:    true,
		FormErrors: []string{"Failed to generate report"},
	})

	assertContains(t, output,
		`aria-busy="true"`,
		`<button type="submit" class="button" disabled>`,
		`<div class="alert alert-error" role="alert">Failed to generate report</div>`,
	)
}

func TestRender_WithReport(t *testing.T) {
	rep := testsupport.SampleReport(t)
	output := renderForm(t, newRenderer(t, html.WithAction("/")), render.RenderOptions{Report: &rep})

	assertContains(t, output, `action="/"`)
	assertOrder(t, output, `id="report-form"`, "Lung Cancer Analysis Report")
}

func TestRenderReport_Viewer(t *testing.T) {
	renderer := newRenderer(t)
	output, err := renderer.RenderReport(context.Background(), testsupport.SampleReport(t))
	if err != nil {
		t.Fatalf("render report: %v", err)
	}
	page := string(output)

	assertContains(t, page,
		"<title>Lung Cancer Analysis Report</title>",
		"Report ID: RPT-0192f0a1-7c3e-7d11-9a52-3b1f0c2d4e5f",
		"Generated: 2025-01-02T03:04:05Z",
		"<dt>NAME</dt><dd>Ada Lovelace</dd>",
		"<dt>AGE</dt><dd>42</dd>",
		"<dt>CONFIDENCE</dt><dd>0.87</dd>",
		"<dt>RISK LEVEL</dt><dd>High</dd>",
		"<dt>URGENT</dt><dd>true</dd>",
		"<dt>MEDICAL HISTORY</dt><dd>Smoker for 10 years</dd>",
	)
	assertOrder(t, page,
		`<span class="chip">Prediction: Malignant cases</span>`,
		`<span class="chip">Confidence: 87%</span>`,
		`<span class="chip">Risk level: High</span>`,
		`data-section="patient_info"`,
		`data-section="cancer_result"`,
		`data-section="risk_analysis"`,
	)
	if got := strings.Count(page, "Additional Information"); got != 1 {
		t.Fatalf("expected one additional information block, got %d", got)
	}
	if strings.Contains(page, `id="report-form"`) {
		t.Fatalf("standalone report should not include the form")
	}
}

func TestRender_StylesheetAndNavigation(t *testing.T) {
	renderer := newRenderer(t, html.WithAssetsPath("/static/"), html.WithAnalyzePath("/analyze"))
	output := renderForm(t, renderer, render.RenderOptions{})

	assertContains(t, output,
		`<link rel="stylesheet" href="/static/reportform.css">`,
		`<a href="/analyze">Analyze a CT scan</a>`,
	)
	if strings.Contains(output, "<style>") {
		t.Fatalf("stylesheet should be linked, not inlined")
	}
}

func TestRenderAnalysis_SanitizesMarkdown(t *testing.T) {
	renderer := newRenderer(t)
	output, err := renderer.RenderAnalysis(context.Background(), html.AnalysisView{
		Action:      "/analyze",
		Description: "left lung",
		Filename:    "scan.png",
		Result:      "**Nodule** visible in the upper lobe.\n\n<script>alert(1)</script>",
	})
	if err != nil {
		t.Fatalf("render analysis: %v", err)
	}
	page := string(output)

	assertContains(t, page,
		`enctype="multipart/form-data"`,
		`name="file"`,
		">left lung</textarea>",
		"Analysis of scan.png",
		"<strong>Nodule</strong>",
	)
	if strings.Contains(page, "<script>alert") {
		t.Fatalf("analysis output was not sanitized")
	}
}

func TestRenderAnalysis_Error(t *testing.T) {
	renderer := newRenderer(t)
	output, err := renderer.RenderAnalysis(context.Background(), html.AnalysisView{
		Action: "/analyze",
		Error:  "Image analysis is not configured",
	})
	if err != nil {
		t.Fatalf("render analysis: %v", err)
	}
	assertContains(t, string(output), "Image analysis is not configured")
	if strings.Contains(string(output), "analysis-result") {
		t.Fatalf("result card should be hidden without a result")
	}
}

func TestWithTemplatesFS_Overrides(t *testing.T) {
	files := fstest.MapFS{
		"page.tpl": {Data: []byte(`<p>{{ form.title }}|{{ form.submit_label }}</p>`)},
	}
	output := renderForm(t, newRenderer(t, html.WithTemplatesFS(files)), render.RenderOptions{})
	if output != "<p>Generate Cancer Analysis Report|Generate Report</p>" {
		t.Fatalf("unexpected override output %q", output)
	}
}
