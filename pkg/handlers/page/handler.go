// Package page serves the browser facing form page and the image analysis
// page.
package page

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-reportform/pkg/analysis"
	"github.com/goliatone/go-reportform/pkg/client"
	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/orchestrator"
	formpage "github.com/goliatone/go-reportform/pkg/page"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/renderers/html"
	"github.com/goliatone/go-reportform/pkg/report"
	"github.com/goliatone/go-reportform/pkg/validation"
)

const (
	// AnalysisFailedMessage is shown when the analyzer returned an error.
	AnalysisFailedMessage = "Failed to analyze image"

	maxFormSize   = 1 << 20
	maxUploadSize = 20 << 20
)

// FormProvider returns the decorated form model for the page.
type FormProvider interface {
	Form(ctx context.Context, req orchestrator.Request) (model.FormModel, error)
}

type Handler struct {
	forms      FormProvider
	renderer   *html.Renderer
	controller *formpage.Controller
	analyzer   analysis.Analyzer
	analyzeURL string
}

// NewHandler wires the page handlers. gen produces reports, usually the
// backend client; analyzer may be nil to disable the analysis page.
func NewHandler(forms FormProvider, renderer *html.Renderer, gen formpage.Generator, analyzer analysis.Analyzer) *Handler {
	return &Handler{
		forms:      forms,
		renderer:   renderer,
		controller: formpage.NewController(gen),
		analyzer:   analyzer,
		analyzeURL: "/analyze",
	}
}

func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, render.RenderOptions{})
}

func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		logger.Warn().Err(err).Msg("failed to parse form submission")
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	form, err := h.forms.Form(ctx, orchestrator.Request{})
	if err != nil {
		logger.Error().Err(err).Msg("failed to build form model")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tree := render.DecodeSubmission(r.PostForm)
	flat := render.FlattenValues(tree)

	result := validation.ValidateValues(form, flat)
	if !result.Valid {
		h.renderModel(w, r, form, http.StatusUnprocessableEntity, render.RenderOptions{
			Values: flat,
			Errors: result.Errors(),
		})
		return
	}

	data, err := report.FormDataFromValues(tree)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read form submission")
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	state := h.controller.Submit(ctx, formpage.State{}, data)
	options := render.RenderOptions{
		Values: render.FlattenValues(state.Form.Values()),
		Report: state.Report,
	}
	status := http.StatusOK
	if state.Failed() {
		logger.Error().Err(state.Cause).Msg("report request failed")
		options.FormErrors = []string{state.Error}
		status = http.StatusBadGateway

		var statusErr *client.StatusError
		if errors.As(state.Cause, &statusErr) && statusErr.Validation() {
			mapping := render.MapErrorPayload(form, statusErr.FieldErrors())
			options.Errors = mapping.Fields
			options.FormErrors = render.MergeFormErrors(options.FormErrors, mapping.Form...)
			status = http.StatusUnprocessableEntity
		}
	} else {
		logger.Info().Str("report_id", state.Report.ReportID).Msg("report received")
	}
	h.renderModel(w, r, form, status, options)
}

func (h *Handler) ShowAnalysis(w http.ResponseWriter, r *http.Request) {
	h.renderAnalysis(w, r, http.StatusOK, html.AnalysisView{})
}

func (h *Handler) SubmitAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	if h.analyzer == nil {
		h.renderAnalysis(w, r, http.StatusServiceUnavailable, html.AnalysisView{Error: "Image analysis is not configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.renderAnalysis(w, r, http.StatusBadRequest, html.AnalysisView{Error: "Please choose an image to upload"})
		return
	}
	view := html.AnalysisView{Description: r.FormValue("description")}

	file, header, err := r.FormFile("file")
	if err != nil {
		view.Error = "Please choose an image to upload"
		h.renderAnalysis(w, r, http.StatusBadRequest, view)
		return
	}
	defer file.Close()
	view.Filename = header.Filename

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read upload")
		view.Error = "Invalid image format."
		h.renderAnalysis(w, r, http.StatusBadRequest, view)
		return
	}

	text, err := h.analyzer.AnalyzeImage(ctx, data, view.Description)
	switch {
	case errors.Is(err, analysis.ErrInvalidImage):
		view.Error = "Invalid image format."
		h.renderAnalysis(w, r, http.StatusBadRequest, view)
	case err != nil:
		logger.Error().Err(err).Str("filename", header.Filename).Msg("image analysis failed")
		view.Error = AnalysisFailedMessage
		h.renderAnalysis(w, r, http.StatusBadGateway, view)
	default:
		view.Result = text
		h.renderAnalysis(w, r, http.StatusOK, view)
	}
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, options render.RenderOptions) {
	form, err := h.forms.Form(r.Context(), orchestrator.Request{})
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to build form model")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.renderModel(w, r, form, status, options)
}

func (h *Handler) renderModel(w http.ResponseWriter, r *http.Request, form model.FormModel, status int, options render.RenderOptions) {
	output, err := h.renderer.Render(r.Context(), form, options)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to render form page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeHTML(r.Context(), w, status, output)
}

func (h *Handler) renderAnalysis(w http.ResponseWriter, r *http.Request, status int, view html.AnalysisView) {
	view.Action = h.analyzeURL
	output, err := h.renderer.RenderAnalysis(r.Context(), view)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to render analysis page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeHTML(r.Context(), w, status, output)
}

func writeHTML(ctx context.Context, w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to write response")
	}
}
