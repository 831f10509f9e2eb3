package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-reportform/pkg/client"
	"github.com/goliatone/go-reportform/pkg/generator"
	"github.com/goliatone/go-reportform/pkg/report"
	"github.com/goliatone/go-reportform/pkg/testsupport"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, form report.FormData) (report.Report, error) {
	args := m.Called(ctx, form)
	return args.Get(0).(report.Report), args.Error(1)
}

func fixedGenerator() *generator.Generator {
	return generator.New(
		generator.WithClock(func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }),
		generator.WithIDSource(func() (string, error) { return "RPT-fixed", nil }),
	)
}

func TestReportAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	api, err := NewReportAPI(logger, Config{Addr: ":8000"}, ReportAPIDependencies{Generator: fixedGenerator()})
	require.NoError(t, err)
	testServer := httptest.NewServer(api.Handler())
	defer testServer.Close()

	form, err := json.Marshal(testsupport.SampleForm())
	require.NoError(t, err)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
		check          func(t *testing.T, body []byte)
	}{
		{
			name:           "Status",
			method:         http.MethodGet,
			path:           "/",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				assert.JSONEq(t, `{"msg":"Lung Cancer Prediction API is running."}`, string(body))
			},
		},
		{
			name:           "GenerateReport",
			method:         http.MethodPost,
			path:           "/generate-report",
			body:           string(form),
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				rep, err := report.ParseReport(body)
				require.NoError(t, err)
				assert.Equal(t, "RPT-fixed", rep.ReportID)
				assert.Equal(t, "2025-01-02T03:04:05Z", rep.GeneratedAt)
			},
		},
		{
			name:           "GenerateReport_Invalid",
			method:         http.MethodPost,
			path:           "/generate-report",
			body:           `{}`,
			expectedStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, body []byte) {
				assert.Contains(t, string(body), `"loc":["body","patient_info","name"]`)
			},
		},
		{
			name:           "AnalyzeDisabled",
			method:         http.MethodPost,
			path:           "/analyze",
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "OpenAPI",
			method:         http.MethodGet,
			path:           "/openapi.yaml",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				assert.Contains(t, string(body), "operationId: generate_report")
			},
		},
		{
			name:           "Health",
			method:         http.MethodGet,
			path:           "/healthz",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "MethodNotAllowed",
			method:         http.MethodGet,
			path:           "/generate-report",
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, testServer.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode, string(body))
			assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestReportAPI_WorksWithClient(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	api, err := NewReportAPI(logger, Config{}, ReportAPIDependencies{Generator: fixedGenerator()})
	require.NoError(t, err)
	testServer := httptest.NewServer(api.Handler())
	defer testServer.Close()

	c := client.New(client.WithBaseURL(testServer.URL))
	rep, err := c.Generate(context.Background(), testsupport.SampleForm())
	require.NoError(t, err)
	assert.Equal(t, "RPT-fixed", rep.ReportID)

	invalid := testsupport.SampleForm()
	invalid.PatientInfo.Age = "-1"
	_, err = c.Generate(context.Background(), invalid)
	var statusErr *client.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.True(t, statusErr.Validation())
	assert.Equal(t, map[string][]string{
		"body/patient_info/age": {"ensure this value is greater than or equal to 0"},
	}, statusErr.FieldErrors())
}

func TestWebUI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, testsupport.SampleForm()).Return(testsupport.SampleReport(t), nil)

	ui, err := NewWebUI(logger, Config{Addr: ":8080"}, WebUIDependencies{Generator: gen})
	require.NoError(t, err)
	testServer := httptest.NewServer(ui.Handler())
	defer testServer.Close()

	resp, err := http.Get(testServer.URL + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `<link rel="stylesheet" href="/static/reportform.css">`)

	resp, err = http.Get(testServer.URL + "/static/reportform.css")
	require.NoError(t, err)
	css, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(css), ".chip")

	values := url.Values{}
	for path, value := range flatten(testsupport.SampleForm()) {
		values.Set(path, value)
	}
	resp, err = http.PostForm(testServer.URL+"/", values)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Report ID: RPT-0192f0a1-7c3e-7d11-9a52-3b1f0c2d4e5f")

	resp, err = http.Get(testServer.URL + "/analyze")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	gen.AssertExpectations(t)
}

func TestNew_RequiresGenerator(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	_, err := NewWebUI(logger, Config{}, WebUIDependencies{})
	assert.Error(t, err)
	_, err = NewReportAPI(logger, Config{}, ReportAPIDependencies{})
	assert.Error(t, err)
}

func TestRun_ShutsDownWhenContextEnds(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	api, err := NewReportAPI(logger, Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, ReportAPIDependencies{Generator: fixedGenerator()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- api.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func flatten(form report.FormData) map[string]string {
	out := map[string]string{}
	var walk func(prefix string, tree map[string]any)
	walk = func(prefix string, tree map[string]any) {
		for key, value := range tree {
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			if nested, ok := value.(map[string]any); ok {
				walk(path, nested)
				continue
			}
			out[path] = value.(string)
		}
	}
	walk("", form.Values())
	return out
}
