package report_test

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reportform/pkg/report"
)

func loadReport(t *testing.T) report.Report {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", "report.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	rep, err := report.ParseReport(data)
	if err != nil {
		t.Fatalf("parse report: %v", err)
	}
	return rep
}

func TestParseReportKeepsDocumentOrder(t *testing.T) {
	rep := loadReport(t)

	if rep.ReportID != "RPT-0192f0a1-7c3e-7d11-9a52-3b1f0c2d4e5f" {
		t.Fatalf("unexpected report id %q", rep.ReportID)
	}

	var keys []string
	for _, section := range rep.Sections {
		keys = append(keys, section.Key)
	}
	if diff := cmp.Diff([]string{"patient_info", "cancer_result", "risk_analysis"}, keys); diff != "" {
		t.Fatalf("section order mismatch (-want +got):\n%s", diff)
	}

	patient, ok := rep.Sections.Get("patient_info")
	if !ok {
		t.Fatalf("expected patient_info section")
	}
	if diff := cmp.Diff([]string{"name", "age", "gender"}, patient.Data.Keys()); diff != "" {
		t.Fatalf("data order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"occupation", "medical_history"}, patient.AdditionalInfo.Keys()); diff != "" {
		t.Fatalf("additional info order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseReportTreatsMissingAdditionalInfoAsEmpty(t *testing.T) {
	rep := loadReport(t)

	for _, key := range []string{"cancer_result", "risk_analysis"} {
		section, ok := rep.Sections.Get(key)
		if !ok {
			t.Fatalf("expected section %s", key)
		}
		if section.HasAdditionalInfo() {
			t.Fatalf("expected %s to have no additional info, got %v", key, section.AdditionalInfo)
		}
	}
}

func TestEntryDisplay(t *testing.T) {
	rep := loadReport(t)

	got := map[string]string{}
	for _, section := range rep.Sections {
		for _, entry := range section.Data {
			got[section.Key+"."+entry.Key] = entry.Display()
		}
	}

	want := map[string]string{
		"patient_info.name":             "Ada Lovelace",
		"patient_info.age":              "42",
		"patient_info.gender":           "female",
		"cancer_result.prediction":      "Malignant cases",
		"cancer_result.confidence":      "0.87",
		"risk_analysis.risk_level":      "High",
		"risk_analysis.recommendations": "Immediate oncology referral",
		"risk_analysis.urgent":          "true",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("display mismatch (-want +got):\n%s", diff)
	}
}

func TestDisplayValueNested(t *testing.T) {
	value := map[string]any{"lobe": "upper", "side": "left"}
	if got := report.DisplayValue(value); got != `{"lobe":"upper","side":"left"}` {
		t.Fatalf("unexpected nested display %q", got)
	}
	if got := report.DisplayValue(nil); got != "" {
		t.Fatalf("expected empty display for null, got %q", got)
	}
}

func TestDisplayValueNumbers(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{in: 42, want: "42"},
		{in: 0.5, want: "0.5"},
		{in: -3.25, want: "-3.25"},
		{in: 0, want: "0"},
		{in: math.Copysign(0, -1), want: "0"},
		{in: 0.000001, want: "0.000001"},
		{in: 1e20, want: "100000000000000000000"},
		{in: 1e21, want: "1e+21"},
		{in: 1.5e22, want: "1.5e+22"},
		{in: 1e-7, want: "1e-7"},
		{in: -2.5e-8, want: "-2.5e-8"},
		{in: 1e-100, want: "1e-100"},
	}
	for _, tc := range cases {
		if got := report.DisplayValue(tc.in); got != tc.want {
			t.Fatalf("DisplayValue(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormDataFromValuesFormatsLargeNumbers(t *testing.T) {
	form, err := report.FormDataFromValues(map[string]any{
		"patient_info": map[string]any{"age": 1e21},
	})
	if err != nil {
		t.Fatalf("FormDataFromValues: %v", err)
	}
	if got := form.PatientInfo.Age; got != "1e+21" {
		t.Fatalf("expected exponent notation, got %q", got)
	}
}

func TestDisplayKey(t *testing.T) {
	cases := map[string]string{
		"risk_level":      "RISK LEVEL",
		"medical_history": "MEDICAL HISTORY",
		"name":            "NAME",
		"follow_up_date":  "FOLLOW UP DATE",
	}
	for in, want := range cases {
		if got := report.DisplayKey(in); got != want {
			t.Fatalf("DisplayKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReportMarshalRoundTripPreservesOrder(t *testing.T) {
	rep := loadReport(t)

	encoded, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := report.ParseReport(encoded)
	if err != nil {
		t.Fatalf("parse encoded: %v", err)
	}

	if diff := cmp.Diff(rep, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	// Empty additional_info must stay an object so JS-style viewers can
	// enumerate it.
	section, _ := decoded.Sections.Get("risk_analysis")
	raw, err := json.Marshal(section)
	if err != nil {
		t.Fatalf("marshal section: %v", err)
	}
	if want := `{"title":"Risk Analysis","data":{"risk_level":"High","recommendations":"Immediate oncology referral","urgent":true},"additional_info":{}}`; string(raw) != want {
		t.Fatalf("unexpected section JSON\nwant: %s\n got: %s", want, raw)
	}
}

func TestParseReportRejectsIncompletePayloads(t *testing.T) {
	cases := map[string]string{
		"not json":         `{"report_id":`,
		"array":            `[]`,
		"missing id":       `{"summary":{"key_findings":[]},"sections":{}}`,
		"missing findings": `{"report_id":"r","summary":{},"sections":{}}`,
		"missing sections": `{"report_id":"r","summary":{"key_findings":[]}}`,
		"bad sections":     `{"report_id":"r","summary":{"key_findings":[]},"sections":[]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := report.ParseReport([]byte(payload))
			if !errors.Is(err, report.ErrInvalidReport) {
				t.Fatalf("expected ErrInvalidReport, got %v", err)
			}
		})
	}
}
