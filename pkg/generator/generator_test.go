package generator_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reportform/pkg/generator"
	"github.com/goliatone/go-reportform/pkg/report"
	"github.com/goliatone/go-reportform/pkg/testsupport"
)

func fixedClock() time.Time {
	return time.Date(2025, 1, 2, 4, 4, 5, 0, time.FixedZone("CET", 3600))
}

func TestGenerate_BuildsOrderedReport(t *testing.T) {
	gen := generator.New(
		generator.WithClock(fixedClock),
		generator.WithIDSource(func() (string, error) { return "RPT-test", nil }),
	)

	rep, err := gen.Generate(context.Background(), testsupport.SampleForm())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if rep.ReportID != "RPT-test" {
		t.Fatalf("unexpected id %q", rep.ReportID)
	}
	if rep.GeneratedAt != "2025-01-02T03:04:05Z" {
		t.Fatalf("expected UTC timestamp, got %q", rep.GeneratedAt)
	}

	wantFindings := []string{
		"Prediction: Malignant cases",
		"Confidence: 87%",
		"Stage: II",
		"Risk level: High",
	}
	if diff := cmp.Diff(wantFindings, rep.Summary.KeyFindings); diff != "" {
		t.Fatalf("findings mismatch (-want +got):\n%s", diff)
	}

	var keys, titles []string
	for _, section := range rep.Sections {
		keys = append(keys, section.Key)
		titles = append(titles, section.Title)
	}
	if diff := cmp.Diff([]string{"patient_info", "cancer_result", "risk_analysis"}, keys); diff != "" {
		t.Fatalf("section order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Patient Information", "Cancer Detection Result", "Risk Analysis"}, titles); diff != "" {
		t.Fatalf("section titles mismatch (-want +got):\n%s", diff)
	}

	patient, _ := rep.Sections.Get("patient_info")
	wantPatient := report.Fields{
		{Key: "name", Value: "Ada Lovelace"},
		{Key: "age", Value: float64(42)},
		{Key: "gender", Value: "female"},
	}
	if diff := cmp.Diff(wantPatient, patient.Data); diff != "" {
		t.Fatalf("patient data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"occupation", "medical_history"}, patient.AdditionalInfo.Keys()); diff != "" {
		t.Fatalf("additional info mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_KeepsEmptyDataAndDropsEmptyExtras(t *testing.T) {
	form := report.FormData{}
	form.PatientInfo.Name = "  Grace  "
	form.CancerResult.AdditionalProp1.Location = "   "

	rep, err := generator.New().Generate(context.Background(), form)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !strings.HasPrefix(rep.ReportID, generator.ReportIDPrefix) {
		t.Fatalf("expected %s prefix, got %q", generator.ReportIDPrefix, rep.ReportID)
	}
	if _, err := time.Parse(time.RFC3339, rep.GeneratedAt); err != nil {
		t.Fatalf("generated_at is not RFC 3339: %v", err)
	}
	if len(rep.Summary.KeyFindings) != 0 {
		t.Fatalf("expected no findings, got %v", rep.Summary.KeyFindings)
	}

	patient, _ := rep.Sections.Get("patient_info")
	if diff := cmp.Diff([]string{"name", "age", "gender"}, patient.Data.Keys()); diff != "" {
		t.Fatalf("data keys mismatch (-want +got):\n%s", diff)
	}
	if name, _ := patient.Data.Get("name"); name != "Grace" {
		t.Fatalf("expected trimmed name, got %v", name)
	}
	for _, section := range rep.Sections {
		if section.HasAdditionalInfo() {
			t.Fatalf("expected %s to have empty additional info, got %v", section.Key, section.AdditionalInfo)
		}
	}

	raw, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := report.ParseReport(raw); err != nil {
		t.Fatalf("generated report does not parse: %v", err)
	}
}

func TestGenerate_Errors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := generator.New().Generate(ctx, report.FormData{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	boom := errors.New("entropy exhausted")
	gen := generator.New(generator.WithIDSource(func() (string, error) { return "", boom }))
	if _, err := gen.Generate(context.Background(), report.FormData{}); !errors.Is(err, boom) {
		t.Fatalf("expected id error, got %v", err)
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{in: "0.87", want: 87, ok: true},
		{in: "1", want: 100, ok: true},
		{in: "0", want: 0, ok: true},
		{in: "87.25", want: 87.3, ok: true},
		{in: " 42 ", want: 42, ok: true},
		{in: "100", want: 100, ok: true},
		{in: "101", ok: false},
		{in: "-0.1", ok: false},
		{in: "high", ok: false},
		{in: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := generator.Percentage(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Percentage(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
