// Package reports serves the JSON report backend: report generation,
// image analysis and the OpenAPI document describing both.
package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-reportform/pkg/analysis"
	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/orchestrator"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/report"
	"github.com/goliatone/go-reportform/pkg/validation"
)

const (
	// StatusMessage is returned by GET /.
	StatusMessage = "Lung Cancer Prediction API is running."
	// InvalidImageMessage is the 400 detail for uploads that are not images.
	InvalidImageMessage = "Invalid image format."
	// AnalyzerDisabledMessage is the 503 detail when no API key is set.
	AnalyzerDisabledMessage = "Image analysis is not configured"

	maxReportBody = 1 << 20
	maxUploadSize = 20 << 20
)

// Generator produces reports from validated form data.
type Generator interface {
	Generate(ctx context.Context, form report.FormData) (report.Report, error)
}

// FormProvider returns the form model used to validate submissions.
type FormProvider interface {
	Form(ctx context.Context, req orchestrator.Request) (model.FormModel, error)
}

// DetailEntry is one element of a 422 "detail" array.
type DetailEntry struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

type Handler struct {
	forms     FormProvider
	generator Generator
	analyzer  analysis.Analyzer
	document  []byte
}

// NewHandler wires the backend handlers. analyzer may be nil, in which case
// POST /analyze answers 503.
func NewHandler(forms FormProvider, generator Generator, analyzer analysis.Analyzer, document []byte) *Handler {
	return &Handler{
		forms:     forms,
		generator: generator,
		analyzer:  analyzer,
		document:  append([]byte(nil), document...),
	}
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"msg": StatusMessage})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	if _, err := w.Write(h.document); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write openapi document")
	}
}

func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	values, detail := decodeBody(http.MaxBytesReader(w, r.Body, maxReportBody))
	if detail != nil {
		writeJSON(ctx, w, http.StatusUnprocessableEntity, map[string]any{"detail": []DetailEntry{*detail}})
		return
	}

	form, err := h.forms.Form(ctx, orchestrator.Request{})
	if err != nil {
		logger.Error().Err(err).Msg("failed to build form model")
		writeDetail(ctx, w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	result := validation.ValidateValues(form, render.FlattenValues(values))
	if !result.Valid {
		entries := make([]DetailEntry, 0, len(result.Issues))
		for _, issue := range result.Issues {
			entries = append(entries, DetailEntry{Loc: issue.Location(), Msg: issue.Message, Type: issue.Code})
		}
		logger.Debug().Int("issues", len(entries)).Msg("report request rejected")
		writeJSON(ctx, w, http.StatusUnprocessableEntity, map[string]any{"detail": entries})
		return
	}

	data, err := report.FormDataFromValues(values)
	if err != nil {
		writeJSON(ctx, w, http.StatusUnprocessableEntity, map[string]any{"detail": []DetailEntry{{
			Loc: []string{"body"}, Msg: err.Error(), Type: "type_error",
		}}})
		return
	}

	rep, err := h.generator.Generate(ctx, data)
	if err != nil {
		logger.Error().Err(err).Msg("failed to generate report")
		writeDetail(ctx, w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	logger.Info().Str("report_id", rep.ReportID).Msg("report generated")
	writeJSON(ctx, w, http.StatusOK, rep)
}

func (h *Handler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	if h.analyzer == nil {
		writeDetail(ctx, w, http.StatusServiceUnavailable, AnalyzerDisabledMessage)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(ctx, w, http.StatusUnprocessableEntity, map[string]any{"detail": []DetailEntry{{
			Loc: []string{"body", "file"}, Msg: "field required", Type: validation.CodeMissing,
		}}})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(ctx, w, http.StatusUnprocessableEntity, map[string]any{"detail": []DetailEntry{{
			Loc: []string{"body", "file"}, Msg: "field required", Type: validation.CodeMissing,
		}}})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read upload")
		writeDetail(ctx, w, http.StatusBadRequest, InvalidImageMessage)
		return
	}
	if !IsImage(header.Header.Get("Content-Type"), data) {
		writeDetail(ctx, w, http.StatusBadRequest, InvalidImageMessage)
		return
	}

	text, err := h.analyzer.AnalyzeImage(ctx, data, r.FormValue("description"))
	switch {
	case errors.Is(err, analysis.ErrAnalyzerDisabled):
		writeDetail(ctx, w, http.StatusServiceUnavailable, AnalyzerDisabledMessage)
	case errors.Is(err, analysis.ErrInvalidImage):
		writeDetail(ctx, w, http.StatusBadRequest, InvalidImageMessage)
	case err != nil:
		logger.Error().Err(err).Str("filename", header.Filename).Msg("image analysis failed")
		writeJSON(ctx, w, http.StatusOK, map[string]string{"error": err.Error()})
	default:
		logger.Info().Str("filename", header.Filename).Msg("image analyzed")
		writeJSON(ctx, w, http.StatusOK, map[string]string{"analysis": text})
	}
}

// IsImage reports whether an upload is an image, trusting the declared
// content type first and sniffing the bytes otherwise.
func IsImage(contentType string, data []byte) bool {
	declared := strings.ToLower(strings.TrimSpace(contentType))
	if strings.HasPrefix(declared, "image/") {
		return true
	}
	if declared != "" && declared != "application/octet-stream" {
		return false
	}
	if bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*")) {
		return true
	}
	return strings.HasPrefix(http.DetectContentType(data), "image/")
}

func decodeBody(body io.Reader) (map[string]any, *DetailEntry) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, &DetailEntry{Loc: []string{"body"}, Msg: "request body too large", Type: "value_error"}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &DetailEntry{Loc: []string{"body"}, Msg: "field required", Type: validation.CodeMissing}
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, &DetailEntry{Loc: []string{"body"}, Msg: "invalid JSON: " + err.Error(), Type: "value_error.jsondecode"}
	}
	values, ok := payload.(map[string]any)
	if !ok {
		return nil, &DetailEntry{Loc: []string{"body"}, Msg: "value is not a valid dict", Type: "type_error.dict"}
	}
	return values, nil
}

func writeDetail(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, map[string]string{"detail": message})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}
