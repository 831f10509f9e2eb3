package analysis_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"google.golang.org/genai"

	"github.com/goliatone/go-reportform/pkg/analysis"
)

type fakeModels struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	text     string
	err      error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(f.text, genai.RoleModel),
		}},
	}, nil
}

func sampleJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestAnalyzeImage_SendsPromptAndPNG(t *testing.T) {
	fake := &fakeModels{text: "  **Stage:** early  "}
	analyzer, err := analysis.NewGemini(context.Background(), "", analysis.WithContentGenerator(fake))
	require.NoError(t, err)
	require.True(t, analyzer.Enabled())

	got, err := analyzer.AnalyzeImage(context.Background(), sampleJPEG(t), "")
	require.NoError(t, err)
	assert.Equal(t, "**Stage:** early", got)

	assert.Equal(t, analysis.DefaultModel, fake.model)
	require.NotNil(t, fake.config)
	require.NotNil(t, fake.config.Temperature)
	assert.InDelta(t, 0.4, float64(*fake.config.Temperature), 1e-6)

	require.Len(t, fake.contents, 1)
	parts := fake.contents[0].Parts
	require.Len(t, parts, 2)
	assert.True(t, strings.HasSuffix(parts[0].Text, "Image Description: Lung X-ray or CT scan image"))
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	_, err = png.Decode(bytes.NewReader(parts[1].InlineData.Data))
	assert.NoError(t, err)
}

func TestAnalyzeImage_CustomModelAndDescription(t *testing.T) {
	fake := &fakeModels{text: "ok"}
	analyzer, err := analysis.NewGemini(context.Background(), "",
		analysis.WithContentGenerator(fake),
		analysis.WithModel("gemini-2.0-flash"),
	)
	require.NoError(t, err)

	_, err = analyzer.AnalyzeImage(context.Background(), sampleJPEG(t), "Chest CT, axial slice")
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", fake.model)
	assert.Contains(t, fake.contents[0].Parts[0].Text, "Image Description: Chest CT, axial slice")
}

func TestAnalyzeImage_Errors(t *testing.T) {
	disabled, err := analysis.NewGemini(context.Background(), "  ")
	require.NoError(t, err)
	assert.False(t, disabled.Enabled())
	_, err = disabled.AnalyzeImage(context.Background(), sampleJPEG(t), "")
	assert.ErrorIs(t, err, analysis.ErrAnalyzerDisabled)

	fake := &fakeModels{text: "unused"}
	analyzer, err := analysis.NewGemini(context.Background(), "", analysis.WithContentGenerator(fake))
	require.NoError(t, err)

	_, err = analyzer.AnalyzeImage(context.Background(), []byte("not an image"), "")
	assert.ErrorIs(t, err, analysis.ErrInvalidImage)
	assert.Nil(t, fake.contents, "invalid images must not reach the model")

	upstream := errors.New("quota exceeded")
	fake.err = upstream
	_, err = analyzer.AnalyzeImage(context.Background(), sampleJPEG(t), "")
	assert.ErrorIs(t, err, upstream)

	fake.err = nil
	fake.text = "   "
	_, err = analyzer.AnalyzeImage(context.Background(), sampleJPEG(t), "")
	assert.ErrorIs(t, err, analysis.ErrEmptyResponse)
}

func TestPrompt(t *testing.T) {
	prompt := analysis.Prompt("PET scan")
	assert.True(t, strings.HasPrefix(prompt, "You are a medical imaging expert. Given a lung cancer image, provide:\n\n1. Stage of abnormality (early/late/none)."))
	assert.True(t, strings.HasSuffix(prompt, "\n\nImage Description: PET scan"))
}

func TestNormalizeImage(t *testing.T) {
	_, err := analysis.NormalizeImage(nil)
	assert.ErrorIs(t, err, analysis.ErrInvalidImage)

	out, err := analysis.NormalizeImage(sampleJPEG(t))
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Width)
}

func TestNormalizeImage_OtherFormats(t *testing.T) {
	src := opaqueImage(3, 2)
	src.Set(1, 1, color.RGBA{R: 200, A: 255})

	encoders := map[string]func(*bytes.Buffer) error{
		"bmp":  func(buf *bytes.Buffer) error { return bmp.Encode(buf, src) },
		"tiff": func(buf *bytes.Buffer) error { return tiff.Encode(buf, src, nil) },
	}
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, encode(&buf))

			out, err := analysis.NormalizeImage(buf.Bytes())
			require.NoError(t, err)
			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, 3, cfg.Width)
			assert.Equal(t, 2, cfg.Height)
		})
	}
}

func TestAnalyzeImage_SendsBMPAsPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, opaqueImage(2, 2)))

	fake := &fakeModels{text: "Stage: none"}
	analyzer, err := analysis.NewGemini(context.Background(), "", analysis.WithContentGenerator(fake))
	require.NoError(t, err)

	text, err := analyzer.AnalyzeImage(context.Background(), buf.Bytes(), "")
	require.NoError(t, err)
	assert.Equal(t, "Stage: none", text)
	require.Len(t, fake.contents, 1)
	parts := fake.contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
}

func opaqueImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 20, G: 20, B: 20, A: 255})
		}
	}
	return img
}
