package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	internalLoader "github.com/goliatone/go-reportform/internal/openapi/loader"
	internalParser "github.com/goliatone/go-reportform/internal/openapi/parser"
	"github.com/goliatone/go-reportform/pkg/model"
	pkgopenapi "github.com/goliatone/go-reportform/pkg/openapi"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/renderers/html"
	"github.com/goliatone/go-reportform/pkg/renderers/text"
	"github.com/goliatone/go-reportform/pkg/report"
	"github.com/goliatone/go-reportform/pkg/uischema"
)

const (
	defaultRendererName = html.Name
	// DefaultOperationID is the operation rendered when a request omits one.
	DefaultOperationID = "generate_report"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom OpenAPI loader.
func WithLoader(loader pkgopenapi.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithParser injects a custom OpenAPI parser.
func WithParser(parser pkgopenapi.Parser) Option {
	return func(o *Orchestrator) {
		o.parser = parser
	}
}

// WithModelBuilder injects a custom form model builder.
func WithModelBuilder(builder model.Builder) Option {
	return func(o *Orchestrator) {
		o.builder = builder
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithSource sets the document used when a request names neither a Source
// nor a Document. Defaults to the embedded report API.
func WithSource(source pkgopenapi.Source) Option {
	return func(o *Orchestrator) {
		o.source = source
	}
}

// WithSchemaTransformer registers a Transformer that can mutate form models
// after building but before UI schema decorators run.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithUIDecorators registers decorators that should run against the generated
// form model before rendering.
func WithUIDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithUISchemaFS supplies an fs.FS holding UI schema documents. Pass nil to
// disable the embedded defaults.
func WithUISchemaFS(fsys fs.FS) Option {
	return func(o *Orchestrator) {
		o.uiSchemaFS = fsys
		o.uiSchemaSpecified = true
	}
}

// WithFormCache keeps built form models per source and operation so repeated
// page loads skip the load/parse/build steps. Enabled by default.
func WithFormCache(enabled bool) Option {
	return func(o *Orchestrator) {
		o.cacheForms = enabled
	}
}

// Orchestrator runs the pipeline from OpenAPI document to rendered page. The
// zero configuration uses the embedded report API document, the embedded UI
// schema and the html and text renderers.
type Orchestrator struct {
	loader            pkgopenapi.Loader
	parser            pkgopenapi.Parser
	builder           model.Builder
	registry          *render.Registry
	source            pkgopenapi.Source
	defaultRenderer   string
	initialiseErr     error
	decorators        []model.Decorator
	uiSchemaFS        fs.FS
	uiSchemaSpecified bool
	transformer       Transformer
	cacheForms        bool

	mu    sync.Mutex
	forms map[string]model.FormModel
}

// New applies options and fills every missing dependency with the built-in
// implementation. Initialisation errors surface on the first Form call.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		cacheForms:      true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs required to render a form from an OpenAPI
// operation.
type Request struct {
	// Source identifies where the OpenAPI document lives. Optional; defaults to
	// the orchestrator source.
	Source pkgopenapi.Source

	// Document allows callers to bypass the loader when they already have a
	// payload. Forms built from a Document are never cached.
	Document *pkgopenapi.Document

	// OperationID selects which OpenAPI operation to render into a form.
	// Defaults to DefaultOperationID.
	OperationID string

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// RenderOptions carries prefilled values, field errors and the report to
	// display. When omitted, renderers receive the zero-value struct.
	RenderOptions render.RenderOptions
}

// Generate builds the form for req and renders it.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	form, err := o.Form(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, form, req.RenderOptions)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Form executes the loader → parser → model builder → decorator sequence and
// returns the resulting form model. Callers receive their own copy.
func (o *Orchestrator) Form(ctx context.Context, req Request) (model.FormModel, error) {
	if ctx == nil {
		return model.FormModel{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return model.FormModel{}, err
	}
	if err := o.initialiseErr; err != nil {
		return model.FormModel{}, err
	}

	operationID := req.OperationID
	if operationID == "" {
		operationID = DefaultOperationID
	}

	key := ""
	if o.cacheForms && req.Document == nil {
		key = o.cacheKey(req.Source, operationID)
		o.mu.Lock()
		cached, ok := o.forms[key]
		o.mu.Unlock()
		if ok {
			return cached.Clone(), nil
		}
	}

	doc, err := o.resolveDocument(ctx, req)
	if err != nil {
		return model.FormModel{}, err
	}

	operations, err := o.parser.Operations(ctx, doc)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("orchestrator: parse operations: %w", err)
	}

	op, ok := operations[operationID]
	if !ok {
		return model.FormModel{}, fmt.Errorf("orchestrator: operation %q not found", operationID)
	}

	form, err := o.builder.Build(op)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("orchestrator: build form model: %w", err)
	}

	if err := o.applyTransformer(ctx, &form); err != nil {
		return model.FormModel{}, err
	}
	if err := o.applyDecorators(&form); err != nil {
		return model.FormModel{}, err
	}

	if key != "" {
		o.mu.Lock()
		if o.forms == nil {
			o.forms = make(map[string]model.FormModel)
		}
		o.forms[key] = form.Clone()
		o.mu.Unlock()
	}
	return form, nil
}

// RenderReport displays rep with the named renderer, or the default one.
func (o *Orchestrator) RenderReport(ctx context.Context, rendererName string, rep report.Report) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}
	name := rendererName
	if name == "" {
		name = o.defaultRenderer
	}
	viewer, err := o.registry.Report(name)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: report renderer %q: %w", name, err)
	}
	output, err := viewer.RenderReport(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render report: %w", err)
	}
	return output, nil
}

// Renderer returns the named renderer, or the default one when name is empty.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	return o.rendererFor(name)
}

func (o *Orchestrator) cacheKey(source pkgopenapi.Source, operationID string) string {
	if source == nil {
		source = o.source
	}
	return string(source.Kind()) + ":" + source.Location() + "#" + operationID
}

func (o *Orchestrator) resolveDocument(ctx context.Context, req Request) (pkgopenapi.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	source := req.Source
	if source == nil {
		source = o.source
	}
	if source == nil {
		return pkgopenapi.Document{}, errors.New("orchestrator: source or document is required")
	}
	doc, err := o.loader.Load(ctx, source)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDecorators(form *model.FormModel) error {
	if len(o.decorators) == 0 || form == nil {
		return nil
	}
	if err := model.Decorate(form, o.decorators...); err != nil {
		return fmt.Errorf("orchestrator: decorate form: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, form *model.FormModel) error {
	if o.transformer == nil || form == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, form); err != nil {
		return fmt.Errorf("orchestrator: transform form: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = internalLoader.New(pkgopenapi.NewLoaderOptions())
	}
	if o.parser == nil {
		o.parser = internalParser.New(pkgopenapi.NewParserOptions())
	}
	if o.builder == nil {
		o.builder = model.NewBuilder()
	}
	if o.source == nil {
		o.source = pkgopenapi.DefaultSource()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := html.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
		o.registry.MustRegister(text.New())
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}

	o.addUISchemaDecorator()
}

// addUISchemaDecorator appends the overlay decorator after any decorators
// passed to New, so overlays have the last word.
func (o *Orchestrator) addUISchemaDecorator() {
	if !o.uiSchemaSpecified && o.uiSchemaFS == nil {
		o.uiSchemaFS = uischema.EmbeddedFS()
	}
	if o.uiSchemaFS == nil {
		return
	}

	store, err := uischema.LoadFS(o.uiSchemaFS)
	if err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: load ui schema: %w", err)
		return
	}
	if store.Empty() {
		return
	}

	o.decorators = append(o.decorators, uischema.NewDecorator(store))
}
