package render

import "github.com/goliatone/go-reportform/pkg/report"

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form model pipeline.
type RenderOptions struct {
	// Values pre-populates rendered controls using dotted field paths (e.g.
	// "patient_info.additionalProp1.occupation").
	Values map[string]any
	// Errors surfaces validation feedback keyed by field path.
	Errors map[string][]string
	// FormErrors are messages that belong to the whole form, such as a failed
	// report request.
	FormErrors []string
	// Loading marks a request in flight; the submit control is disabled.
	Loading bool
	// Report is displayed below the form when set.
	Report *report.Report
}

// HasErrors reports whether any field or form level message is present.
func (o RenderOptions) HasErrors() bool {
	return len(o.FormErrors) > 0 || len(o.Errors) > 0
}
