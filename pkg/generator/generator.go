// Package generator builds analysis reports from submitted form data. It backs
// POST /generate-report when the service runs without an upstream backend.
package generator

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-reportform/pkg/report"
)

// ReportIDPrefix starts every generated report id.
const ReportIDPrefix = "RPT-"

// Section titles in display order.
const (
	TitlePatientInfo  = "Patient Information"
	TitleCancerResult = "Cancer Detection Result"
	TitleRiskAnalysis = "Risk Analysis"
)

// Option customises a Generator.
type Option func(*Generator)

// WithClock overrides the time source used for generated_at.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithIDSource overrides how report ids are produced.
func WithIDSource(next func() (string, error)) Option {
	return func(g *Generator) {
		if next != nil {
			g.nextID = next
		}
	}
}

// Generator turns FormData into a Report.
type Generator struct {
	now    func() time.Time
	nextID func() (string, error)
}

// New constructs a Generator using UUIDv7 ids and the wall clock.
func New(options ...Option) *Generator {
	g := &Generator{
		now:    time.Now,
		nextID: newReportID,
	}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

func newReportID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return ReportIDPrefix + id.String(), nil
}

// Generate builds the report for form.
func (g *Generator) Generate(ctx context.Context, form report.FormData) (report.Report, error) {
	if err := ctx.Err(); err != nil {
		return report.Report{}, err
	}

	id, err := g.nextID()
	if err != nil {
		return report.Report{}, fmt.Errorf("generator: report id: %w", err)
	}

	return report.Report{
		ReportID:    id,
		GeneratedAt: g.now().UTC().Format(time.RFC3339),
		Summary:     report.Summary{KeyFindings: keyFindings(form)},
		Sections: report.Sections{
			patientSection(form.PatientInfo),
			cancerSection(form.CancerResult),
			riskSection(form.RiskAnalysis),
		},
	}, nil
}

func patientSection(info report.PatientInfo) report.Section {
	return report.Section{
		Key:   report.GroupPatientInfo,
		Title: TitlePatientInfo,
		Data: report.Fields{
			{Key: "name", Value: clean(info.Name)},
			{Key: "age", Value: numberOrString(info.Age)},
			{Key: "gender", Value: clean(info.Gender)},
		},
		AdditionalInfo: nonEmpty(
			report.Entry{Key: "occupation", Value: info.AdditionalProp1.Occupation},
			report.Entry{Key: "medical_history", Value: info.AdditionalProp1.MedicalHistory},
		),
	}
}

func cancerSection(result report.CancerResult) report.Section {
	return report.Section{
		Key:   report.GroupCancerResult,
		Title: TitleCancerResult,
		Data: report.Fields{
			{Key: "prediction", Value: clean(result.Prediction)},
			{Key: "confidence", Value: numberOrString(result.Confidence)},
		},
		AdditionalInfo: nonEmpty(
			report.Entry{Key: "stage", Value: result.AdditionalProp1.Stage},
			report.Entry{Key: "location", Value: result.AdditionalProp1.Location},
		),
	}
}

func riskSection(risk report.RiskAnalysis) report.Section {
	return report.Section{
		Key:   report.GroupRiskAnalysis,
		Title: TitleRiskAnalysis,
		Data: report.Fields{
			{Key: "risk_level", Value: clean(risk.RiskLevel)},
			{Key: "recommendations", Value: clean(risk.Recommendations)},
		},
		AdditionalInfo: nonEmpty(
			report.Entry{Key: "follow_up", Value: risk.AdditionalProp1.FollowUp},
			report.Entry{Key: "specialist", Value: risk.AdditionalProp1.Specialist},
		),
	}
}

func keyFindings(form report.FormData) []string {
	findings := make([]string, 0, 4)
	if prediction := clean(form.CancerResult.Prediction); prediction != "" {
		findings = append(findings, "Prediction: "+prediction)
	}
	if pct, ok := Percentage(form.CancerResult.Confidence); ok {
		findings = append(findings, "Confidence: "+strconv.FormatFloat(pct, 'f', -1, 64)+"%")
	}
	if stage := clean(form.CancerResult.AdditionalProp1.Stage); stage != "" {
		findings = append(findings, "Stage: "+stage)
	}
	if level := clean(form.RiskAnalysis.RiskLevel); level != "" {
		findings = append(findings, "Risk level: "+level)
	}
	return findings
}

// Percentage reads a confidence value as a percentage. Values in [0,1] are
// treated as fractions, values in (1,100] as percentages already. The result
// is rounded to one decimal place.
func Percentage(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) {
		return 0, false
	}
	switch {
	case value < 0 || value > 100:
		return 0, false
	case value <= 1:
		value *= 100
	}
	return math.Round(value*10) / 10, true
}

func clean(value string) string {
	return strings.TrimSpace(value)
}

// numberOrString keeps numeric inputs as JSON numbers in the report.
func numberOrString(raw string) any {
	trimmed := clean(raw)
	if trimmed == "" {
		return ""
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return trimmed
	}
	return value
}

func nonEmpty(entries ...report.Entry) report.Fields {
	out := report.Fields{}
	for _, entry := range entries {
		text, _ := entry.Value.(string)
		if text = clean(text); text == "" {
			continue
		}
		out = append(out, report.Entry{Key: entry.Key, Value: text})
	}
	return out
}
