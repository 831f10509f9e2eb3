package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/render"
	rendertemplate "github.com/goliatone/go-reportform/pkg/render/template"
	"github.com/goliatone/go-reportform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-reportform/pkg/report"
)

// Name is the registry key of the HTML renderer.
const Name = "html"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	assetsPath       string
	action           string
	analyzePath      string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithAssetsPath links the stylesheet from prefix (e.g. "/static") instead of
// inlining it into every page.
func WithAssetsPath(prefix string) Option {
	return func(cfg *config) {
		cfg.assetsPath = strings.TrimRight(strings.TrimSpace(prefix), "/")
	}
}

// WithAction sets the URL the form posts to. Defaults to the form endpoint.
func WithAction(action string) Option {
	return func(cfg *config) {
		cfg.action = strings.TrimSpace(action)
	}
}

// WithAnalyzePath adds a navigation link to the image analysis page.
func WithAnalyzePath(path string) Option {
	return func(cfg *config) {
		cfg.analyzePath = strings.TrimSpace(path)
	}
}

// Renderer renders the form page, the report viewer and the image analysis
// page as complete HTML documents.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	cfg       config
}

var (
	_ render.Renderer       = (*Renderer)(nil)
	_ render.ReportRenderer = (*Renderer)(nil)
)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, cfg: cfg}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the form page, with the report viewer underneath when
// options carry a report.
func (r *Renderer) Render(_ context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	action := r.cfg.action
	if action == "" {
		action = form.Endpoint
	}
	method := form.Method
	if method == "" {
		method = "POST"
	}
	submit := form.SubmitLabel
	if submit == "" {
		submit = "Submit"
	}

	view := formView{
		Title:       form.Title,
		Description: form.Description,
		Action:      action,
		Method:      strings.ToLower(method),
		SubmitLabel: submit,
		Loading:     options.Loading,
		FormErrors:  options.FormErrors,
		Sections:    buildSections(form, options),
	}

	data := r.pageData(form.Title)
	data["form"] = view
	if options.Report != nil {
		data["report"] = newReportView(*options.Report)
	}
	return r.execute("page", data)
}

// RenderReport produces a standalone document with the report viewer only.
func (r *Renderer) RenderReport(_ context.Context, rep report.Report) ([]byte, error) {
	data := r.pageData(ReportTitle)
	data["report"] = newReportView(rep)
	return r.execute("page", data)
}

// AnalysisView carries the state of the image analysis page.
type AnalysisView struct {
	Action      string
	Description string
	Filename    string
	Result      string
	Error       string
}

// RenderAnalysis produces the image analysis page. Result is markdown and is
// sanitized before it is embedded.
func (r *Renderer) RenderAnalysis(_ context.Context, view AnalysisView) ([]byte, error) {
	data := r.pageData("CT Scan Analysis")
	data["analysis"] = analysisView{
		Action:      view.Action,
		Description: view.Description,
		Filename:    view.Filename,
		ResultHTML:  render.MarkdownHTML(view.Result),
		Error:       view.Error,
	}
	return r.execute("analysis", data)
}

func (r *Renderer) pageData(title string) map[string]any {
	data := map[string]any{
		"title":        title,
		"analyze_path": r.cfg.analyzePath,
	}
	if r.cfg.assetsPath != "" {
		data["stylesheet_url"] = r.cfg.assetsPath + "/" + StylesheetName
	} else {
		data["stylesheet"] = defaultStylesheet()
	}
	return data
}

func (r *Renderer) execute(name string, data map[string]any) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	result, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render %s: %w", name, err)
	}
	return []byte(result), nil
}
