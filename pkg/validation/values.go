// Package validation checks submitted values against the rules a form model
// carries. The bundled report form only marks inputs required or numeric;
// min, max and maxLength apply when a document declares them.
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/report"
)

// Issue codes mirror the error types a FastAPI style backend reports in its
// 422 detail entries.
const (
	CodeMissing   = "value_error.missing"
	CodeNotNumber = "type_error.float"
	CodeTooSmall  = "value_error.number.not_ge"
	CodeTooLarge  = "value_error.number.not_le"
	CodeTooLong   = "value_error.any_str.max_length"
)

// Issue represents a validation error with its location.
type Issue struct {
	Path    string `json:"path"`
	Code    string `json:"type"`
	Message string `json:"msg"`
}

// Location splits Path into the loc array used by 422 payloads, prefixed
// with "body".
func (i Issue) Location() []string {
	out := []string{"body"}
	if i.Path == "" {
		return out
	}
	return append(out, strings.Split(i.Path, ".")...)
}

// Error implements error so a single issue can travel as one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// Result captures the outcome of ValidateValues.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// Errors groups messages by field path, the shape renderers expect.
func (r Result) Errors() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(r.Issues))
	for _, issue := range r.Issues {
		out[issue.Path] = append(out[issue.Path], issue.Message)
	}
	return out
}

// ValidateValues checks every leaf input of form against values keyed by
// dotted path. Issues follow the form's input order.
func ValidateValues(form model.FormModel, values map[string]any) Result {
	result := Result{Valid: true}
	for _, field := range form.Inputs() {
		raw := ""
		if value, ok := values[field.Path]; ok {
			raw = report.DisplayValue(value)
		}
		if issue, ok := Check(field, raw); !ok {
			result.Valid = false
			result.Issues = append(result.Issues, issue)
		}
	}
	return result
}

// Check validates a single raw input. It returns false together with the
// first failing issue.
func Check(field model.Field, raw string) (Issue, bool) {
	path := field.Path
	if path == "" {
		path = field.Name
	}
	// A browser only refuses a required input that is empty; whitespace
	// counts as a value.
	if raw == "" {
		if field.Required {
			return Issue{Path: path, Code: CodeMissing, Message: "field required"}, false
		}
		return Issue{}, true
	}
	value := strings.TrimSpace(raw)

	if rule, ok := field.Rule(model.ValidationRuleMaxLength); ok {
		if limit, err := strconv.Atoi(rule.Params["value"]); err == nil && utf8.RuneCountInString(value) > limit {
			return Issue{
				Path:    path,
				Code:    CodeTooLong,
				Message: fmt.Sprintf("ensure this value has at most %d characters", limit),
			}, false
		}
	}

	if !isNumeric(field) {
		return Issue{}, true
	}
	if value == "" && !field.Required {
		return Issue{}, true
	}
	number, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return Issue{Path: path, Code: CodeNotNumber, Message: "value is not a valid number"}, false
	}
	if bound, ok := ruleBound(field, model.ValidationRuleMin); ok && number < bound {
		return Issue{
			Path:    path,
			Code:    CodeTooSmall,
			Message: "ensure this value is greater than or equal to " + formatBound(bound),
		}, false
	}
	if bound, ok := ruleBound(field, model.ValidationRuleMax); ok && number > bound {
		return Issue{
			Path:    path,
			Code:    CodeTooLarge,
			Message: "ensure this value is less than or equal to " + formatBound(bound),
		}, false
	}
	return Issue{}, true
}

// Validator adapts Check to the func(string) error shape prompt libraries
// accept.
func Validator(field model.Field) func(string) error {
	return func(raw string) error {
		if issue, ok := Check(field, raw); !ok {
			return fmt.Errorf("%s", issue.Message)
		}
		return nil
	}
}

func isNumeric(field model.Field) bool {
	if field.Type == model.FieldTypeNumber || field.Type == model.FieldTypeInteger {
		return true
	}
	_, ok := field.Rule(model.ValidationRuleNumeric)
	return ok
}

func ruleBound(field model.Field, kind string) (float64, bool) {
	rule, ok := field.Rule(kind)
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseFloat(rule.Params["value"], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func formatBound(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
