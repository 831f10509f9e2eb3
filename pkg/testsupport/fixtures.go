// Package testsupport holds fixtures shared by package tests: the decorated
// report form, a filled FormData and a sample Report.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-reportform/internal/openapi/parser"
	pkgmodel "github.com/goliatone/go-reportform/pkg/model"
	pkgopenapi "github.com/goliatone/go-reportform/pkg/openapi"
	"github.com/goliatone/go-reportform/pkg/report"
	"github.com/goliatone/go-reportform/pkg/uischema"
)

// GenerateReportOperation is the operation id of the report form.
const GenerateReportOperation = "generate_report"

// LoadDocument reads a fixture and builds an openapi.Document using a file
// source.
func LoadDocument(t *testing.T, path string) pkgopenapi.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T.
func LoadDocumentFromPath(path string) (pkgopenapi.Document, error) {
	if path == "" {
		return pkgopenapi.Document{}, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	return pkgopenapi.NewDocument(pkgopenapi.SourceFromFile(path), data)
}

// ReportForm builds the decorated generate_report form from the embedded
// OpenAPI document and UI schema.
func ReportForm(t *testing.T) pkgmodel.FormModel {
	t.Helper()

	doc := pkgopenapi.MustNewDocument(pkgopenapi.DefaultSource(), pkgopenapi.EmbeddedDocument())
	ops, err := parser.New(pkgopenapi.NewParserOptions()).Operations(Context(), doc)
	if err != nil {
		t.Fatalf("parse embedded document: %v", err)
	}
	form, err := pkgmodel.NewBuilder().Build(ops[GenerateReportOperation])
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	store, err := uischema.LoadFS(uischema.EmbeddedFS())
	if err != nil {
		t.Fatalf("load ui schema: %v", err)
	}
	if err := uischema.NewDecorator(store).Decorate(&form); err != nil {
		t.Fatalf("decorate form: %v", err)
	}
	return form
}

// SampleForm returns a fully populated submission.
func SampleForm() report.FormData {
	return report.FormData{
		PatientInfo: report.PatientInfo{
			Name:   "Ada Lovelace",
			Age:    "42",
			Gender: "female",
			AdditionalProp1: report.PatientExtra{
				Occupation:     "Engineer",
				MedicalHistory: "Smoker for 10 years",
			},
		},
		CancerResult: report.CancerResult{
			Prediction: "Malignant cases",
			Confidence: "0.87",
			AdditionalProp1: report.CancerExtra{
				Stage:    "II",
				Location: "Upper left lobe",
			},
		},
		RiskAnalysis: report.RiskAnalysis{
			RiskLevel:       "High",
			Recommendations: "Immediate oncology referral",
			AdditionalProp1: report.RiskExtra{
				FollowUp:   "2 weeks",
				Specialist: "Oncologist",
			},
		},
	}
}

// SampleReportJSON is a backend response with an empty and a missing
// additional_info block.
const SampleReportJSON = `{
  "report_id": "RPT-0192f0a1-7c3e-7d11-9a52-3b1f0c2d4e5f",
  "generated_at": "2025-01-02T03:04:05Z",
  "summary": {"key_findings": ["Prediction: Malignant cases", "Confidence: 87%", "Risk level: High"]},
  "sections": {
    "patient_info": {
      "title": "Patient Information",
      "data": {"name": "Ada Lovelace", "age": 42, "gender": "female"},
      "additional_info": {"occupation": "Engineer", "medical_history": "Smoker for 10 years"}
    },
    "cancer_result": {
      "title": "Cancer Detection Result",
      "data": {"prediction": "Malignant cases", "confidence": 0.87},
      "additional_info": {}
    },
    "risk_analysis": {
      "title": "Risk Analysis",
      "data": {"risk_level": "High", "recommendations": "Immediate oncology referral", "urgent": true}
    }
  }
}`

// SampleReport parses SampleReportJSON.
func SampleReport(t *testing.T) report.Report {
	t.Helper()

	rep, err := report.ParseReport([]byte(SampleReportJSON))
	if err != nil {
		t.Fatalf("parse sample report: %v", err)
	}
	return rep
}

// Diff wraps cmp.Diff so callers share the same comparison options.
func Diff(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
