package tui

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/render"
	"github.com/goliatone/go-reportform/pkg/report"
	"github.com/goliatone/go-reportform/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	textAreas    []string
	selectIdx    []int
	confirm      []bool
	useDefaults  bool
	infoMessages []string
	inputLabels  []string
	inputPos     int
	textPos      int
	selectPos    int
	confirmPos   int
	err          error
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.inputLabels = append(s.inputLabels, cfg.Message)
	if s.useDefaults {
		return cfg.Default, nil
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	if s.useDefaults {
		return cfg.Default, nil
	}
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) sawInfo(fragment string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func newTestRenderer(t *testing.T, driver PromptDriver, options ...Option) *Renderer {
	t.Helper()

	r, err := New(append([]Option{WithPromptDriver(driver)}, options...)...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRender_CollectsReportForm(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{
			"Ada Lovelace", "abc", "42", "female", "Engineer",
			"Malignant cases", "0.87", "II", "Upper left lobe",
			"High", "2 weeks", "Oncologist",
		},
		textAreas: []string{"Smoker for 10 years", "Immediate oncology referral"},
	}
	r := newTestRenderer(t, driver)

	out, err := r.Render(context.Background(), testsupport.ReportForm(t), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got report.FormData
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if diff := cmp.Diff(testsupport.SampleForm(), got); diff != "" {
		t.Fatalf("collected values mismatch (-want +got):\n%s", diff)
	}

	if !driver.sawInfo("== Patient Information") || !driver.sawInfo("== Risk Analysis") {
		t.Fatalf("expected section headings, got %v", driver.infoMessages)
	}
	if !driver.sawInfo("Invalid Age: value is not a valid number") {
		t.Fatalf("expected validation message, got %v", driver.infoMessages)
	}
	if driver.inputPos != len(driver.inputs) || driver.textPos != len(driver.textAreas) {
		t.Fatalf("prompts not consumed as expected: inputs=%d textareas=%d", driver.inputPos, driver.textPos)
	}
	if driver.inputLabels[0] != "Name" {
		t.Fatalf("expected first prompt to be Name, got %q", driver.inputLabels[0])
	}
}

func TestRender_PrefillAndErrorsPrettyOutput(t *testing.T) {
	driver := &stubDriver{useDefaults: true}
	r := newTestRenderer(t, driver, WithOutputFormat(OutputFormatPrettyText))

	out, err := r.Render(context.Background(), testsupport.ReportForm(t), render.RenderOptions{
		Values:     render.FlattenValues(testsupport.SampleForm().Values()),
		Errors:     map[string][]string{"patient_info.age": {"value is not a valid number"}},
		FormErrors: []string{"Failed to generate report"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	text := string(out)
	for _, fragment := range []string{
		"Patient Information\n  Name: Ada Lovelace\n  Age: 42\n",
		"  Medical History: Smoker for 10 years\n",
		"Risk Analysis\n  Risk Level: High\n",
		"  Follow-up: 2 weeks\n",
	} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, text)
		}
	}
	if !driver.sawInfo("! Age: value is not a valid number") {
		t.Fatalf("expected field error, got %v", driver.infoMessages)
	}
	if !driver.sawInfo("! Failed to generate report") {
		t.Fatalf("expected form error, got %v", driver.infoMessages)
	}
	if r.ContentType() != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestRender_FormEncodedOutput(t *testing.T) {
	driver := &stubDriver{useDefaults: true}
	r := newTestRenderer(t, driver, WithOutputFormat(OutputFormatFormURLEncoded))

	out, err := r.Render(context.Background(), testsupport.ReportForm(t), render.RenderOptions{
		Values: render.FlattenValues(testsupport.SampleForm().Values()),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	values, err := url.ParseQuery(string(out))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if values.Get("cancer_result.additionalProp1.location") != "Upper left lobe" {
		t.Fatalf("unexpected encoded values %v", values)
	}
	if r.ContentType() != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestRender_EnumAndConfirm(t *testing.T) {
	form := model.FormModel{
		SubmitLabel: "Generate Report",
		Fields: []model.Field{
			{Name: "risk_level", Path: "risk_level", Label: "Risk Level", Enum: []any{"Low", "High"}},
		},
	}

	driver := &stubDriver{selectIdx: []int{1}, confirm: []bool{true}}
	r := newTestRenderer(t, driver, WithConfirm(true))
	out, err := r.Render(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), `"risk_level": "High"`) {
		t.Fatalf("unexpected output %s", out)
	}

	declined := &stubDriver{selectIdx: []int{0}, confirm: []bool{false}}
	r = newTestRenderer(t, declined, WithConfirm(true))
	if _, err := r.Render(context.Background(), form, render.RenderOptions{}); !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
}

func TestRender_SubmitTransformer(t *testing.T) {
	form := model.FormModel{Fields: []model.Field{{Name: "name", Path: "name"}}}
	driver := &stubDriver{inputs: []string{" Ada "}}
	r := newTestRenderer(t, driver, WithSubmitTransformer(func(values map[string]any) (map[string]any, error) {
		values["source"] = "cli"
		return values, nil
	}))

	out, err := r.Render(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"name": "Ada", "source": "cli"}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_PropagatesAbort(t *testing.T) {
	form := model.FormModel{Fields: []model.Field{{Name: "name", Path: "name"}}}
	r := newTestRenderer(t, &stubDriver{err: ErrAborted})
	if _, err := r.Render(context.Background(), form, render.RenderOptions{}); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, err := New(WithPromptDriver(&stubDriver{}), WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestState_SetValueConflicts(t *testing.T) {
	state := NewState(map[string]any{"patient_info.name": "Ada"}, map[string][]string{"patient_info.name": {"bad"}})
	if got, ok := state.GetValue("patient_info.name"); !ok || got != "Ada" {
		t.Fatalf("unexpected prefill %v", got)
	}
	if err := state.SetValue("patient_info.name.first", "x"); err == nil {
		t.Fatalf("expected conflict error")
	}
	if err := state.SetValue("patient_info.name", "Grace"); err != nil {
		t.Fatalf("set value: %v", err)
	}
	if len(state.ErrorsFor("patient_info.name")) != 0 {
		t.Fatalf("expected errors to clear after a new value")
	}
}
