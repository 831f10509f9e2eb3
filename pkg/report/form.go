package report

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Group names used on the wire and as the first segment of field paths.
const (
	GroupPatientInfo  = "patient_info"
	GroupCancerResult = "cancer_result"
	GroupRiskAnalysis = "risk_analysis"

	// AdditionalKey names the nested object of extra fields carried by every
	// group. The name comes from the backend's OpenAPI document.
	AdditionalKey = "additionalProp1"
)

// Groups lists the form groups in display order.
var Groups = []string{GroupPatientInfo, GroupCancerResult, GroupRiskAnalysis}

// FormData is the request body of POST /generate-report. Every value is kept
// as the string the user typed, including numeric inputs.
type FormData struct {
	PatientInfo  PatientInfo  `json:"patient_info"`
	CancerResult CancerResult `json:"cancer_result"`
	RiskAnalysis RiskAnalysis `json:"risk_analysis"`
}

type PatientInfo struct {
	Name            string       `json:"name"`
	Age             string       `json:"age"`
	Gender          string       `json:"gender"`
	AdditionalProp1 PatientExtra `json:"additionalProp1"`
}

type PatientExtra struct {
	Occupation     string `json:"occupation"`
	MedicalHistory string `json:"medical_history"`
}

type CancerResult struct {
	Prediction      string      `json:"prediction"`
	Confidence      string      `json:"confidence"`
	AdditionalProp1 CancerExtra `json:"additionalProp1"`
}

type CancerExtra struct {
	Stage    string `json:"stage"`
	Location string `json:"location"`
}

type RiskAnalysis struct {
	RiskLevel       string    `json:"risk_level"`
	Recommendations string    `json:"recommendations"`
	AdditionalProp1 RiskExtra `json:"additionalProp1"`
}

type RiskExtra struct {
	FollowUp   string `json:"follow_up"`
	Specialist string `json:"specialist"`
}

// Values returns the nested value tree keyed by wire names. Renderers use it
// to prefill inputs by dotted path.
func (f FormData) Values() map[string]any {
	return map[string]any{
		GroupPatientInfo: map[string]any{
			"name":   f.PatientInfo.Name,
			"age":    f.PatientInfo.Age,
			"gender": f.PatientInfo.Gender,
			AdditionalKey: map[string]any{
				"occupation":      f.PatientInfo.AdditionalProp1.Occupation,
				"medical_history": f.PatientInfo.AdditionalProp1.MedicalHistory,
			},
		},
		GroupCancerResult: map[string]any{
			"prediction": f.CancerResult.Prediction,
			"confidence": f.CancerResult.Confidence,
			AdditionalKey: map[string]any{
				"stage":    f.CancerResult.AdditionalProp1.Stage,
				"location": f.CancerResult.AdditionalProp1.Location,
			},
		},
		GroupRiskAnalysis: map[string]any{
			"risk_level":      f.RiskAnalysis.RiskLevel,
			"recommendations": f.RiskAnalysis.Recommendations,
			AdditionalKey: map[string]any{
				"follow_up":  f.RiskAnalysis.AdditionalProp1.FollowUp,
				"specialist": f.RiskAnalysis.AdditionalProp1.Specialist,
			},
		},
	}
}

// FormDataFromValues builds FormData from a nested value tree such as the one
// produced by render.DecodeSubmission. Unknown keys are ignored and scalar
// leaves are stringified, so a JSON number lands in its string field.
func FormDataFromValues(values map[string]any) (FormData, error) {
	normalised, err := stringifyLeaves(values)
	if err != nil {
		return FormData{}, err
	}
	raw, err := json.Marshal(normalised)
	if err != nil {
		return FormData{}, fmt.Errorf("report: encode values: %w", err)
	}
	var out FormData
	if err := json.Unmarshal(raw, &out); err != nil {
		return FormData{}, fmt.Errorf("report: decode values: %w", err)
	}
	return out, nil
}

func stringifyLeaves(values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(values))
	for key, value := range values {
		switch v := value.(type) {
		case nil:
			out[key] = ""
		case map[string]any:
			nested, err := stringifyLeaves(v)
			if err != nil {
				return nil, err
			}
			out[key] = nested
		case string:
			out[key] = v
		case []string:
			if len(v) > 0 {
				out[key] = v[len(v)-1]
			} else {
				out[key] = ""
			}
		case bool:
			out[key] = strconv.FormatBool(v)
		case float64:
			out[key] = FormatNumber(v)
		case json.Number:
			out[key] = v.String()
		case int:
			out[key] = strconv.Itoa(v)
		case int64:
			out[key] = strconv.FormatInt(v, 10)
		default:
			return nil, fmt.Errorf("report: unsupported value %T for %q", value, key)
		}
	}
	return out, nil
}
