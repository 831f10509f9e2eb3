// Package analysis runs medical image analysis through a Gemini model.
package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = "gemini-1.5-flash"
	// DefaultDescription is sent when the caller does not describe the image.
	DefaultDescription = "Lung X-ray or CT scan image"
	// Temperature used for every request.
	Temperature float32 = 0.4
)

const promptTemplate = `You are a medical imaging expert. Given a lung cancer image, provide:

1. Stage of abnormality (early/late/none).
2. Signs of benign or malignant features.
3. Reasoning for your diagnosis.

Image Description: %s`

var (
	// ErrAnalyzerDisabled is returned when no API key was configured.
	ErrAnalyzerDisabled = errors.New("analysis: analyzer disabled, no API key configured")
	// ErrInvalidImage marks uploads that do not decode as a supported image.
	ErrInvalidImage = errors.New("analysis: invalid image format")
	// ErrEmptyResponse is returned when the model answers without text.
	ErrEmptyResponse = errors.New("analysis: model returned no text")
)

// Analyzer describes an image and returns the model's written assessment.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, image []byte, description string) (string, error)
}

// ContentGenerator is the subset of the genai models service the analyzer
// calls. *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Option customises a Gemini analyzer.
type Option func(*Gemini)

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(g *Gemini) {
		if model = strings.TrimSpace(model); model != "" {
			g.model = model
		}
	}
}

// WithContentGenerator swaps the genai client, mainly for tests.
func WithContentGenerator(gen ContentGenerator) Option {
	return func(g *Gemini) {
		if gen != nil {
			g.models = gen
		}
	}
}

// Gemini implements Analyzer on top of google.golang.org/genai.
type Gemini struct {
	models ContentGenerator
	model  string
}

// NewGemini builds an analyzer for apiKey. An empty key without an injected
// ContentGenerator yields a disabled analyzer whose calls fail with
// ErrAnalyzerDisabled.
func NewGemini(ctx context.Context, apiKey string, options ...Option) (*Gemini, error) {
	g := &Gemini{model: DefaultModel}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	if g.models != nil || strings.TrimSpace(apiKey) == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("analysis: create genai client: %w", err)
	}
	g.models = client.Models
	return g, nil
}

// Enabled reports whether the analyzer can reach a model.
func (g *Gemini) Enabled() bool {
	return g != nil && g.models != nil
}

// Model returns the configured model name.
func (g *Gemini) Model() string {
	return g.model
}

// AnalyzeImage normalises the image to PNG and asks the model for an
// assessment.
func (g *Gemini) AnalyzeImage(ctx context.Context, img []byte, description string) (string, error) {
	if !g.Enabled() {
		return "", ErrAnalyzerDisabled
	}

	encoded, err := NormalizeImage(img)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(Prompt(description)),
			genai.NewPartFromBytes(encoded, "image/png"),
		}, genai.RoleUser),
	}
	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr(Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("analysis: generate content: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Prompt renders the analysis prompt for description.
func Prompt(description string) string {
	if description = strings.TrimSpace(description); description == "" {
		description = DefaultDescription
	}
	return fmt.Sprintf(promptTemplate, description)
}

// NormalizeImage decodes a PNG, JPEG, GIF, BMP, TIFF or WebP image and
// re-encodes it as PNG.
func NormalizeImage(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrInvalidImage)
	}
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return nil, fmt.Errorf("analysis: encode png: %w", err)
	}
	return buf.Bytes(), nil
}
