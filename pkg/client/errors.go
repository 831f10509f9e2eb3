package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// FieldError is one entry of a 422 "detail" array.
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// Path joins Loc with "/" (e.g. "body/patient_info/age").
func (f FieldError) Path() string {
	parts := make([]string, 0, len(f.Loc))
	for _, segment := range f.Loc {
		parts = append(parts, fmt.Sprint(segment))
	}
	return strings.Join(parts, "/")
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Path       string
	StatusCode int
	Status     string
	// Message holds a string "detail" or "error" member, when present.
	Message string
	// Details holds the entries of a 422 validation response.
	Details []FieldError
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("POST %s: unexpected status %s", e.Path, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Validation reports whether the backend rejected the body itself.
func (e *StatusError) Validation() bool {
	return e.StatusCode == http.StatusUnprocessableEntity
}

// FieldErrors groups the detail messages by joined location, the payload
// shape render.MapErrorPayload accepts.
func (e *StatusError) FieldErrors() map[string][]string {
	if len(e.Details) == 0 {
		return nil
	}
	out := make(map[string][]string, len(e.Details))
	for _, detail := range e.Details {
		out[detail.Path()] = append(out[detail.Path()], detail.Msg)
	}
	return out
}

func newStatusError(path string, resp *http.Response, body []byte) *StatusError {
	out := &StatusError{
		Path:       path,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}

	var envelope struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return out
	}
	out.Message = envelope.Error
	if len(envelope.Detail) == 0 {
		return out
	}
	var details []FieldError
	if err := json.Unmarshal(envelope.Detail, &details); err == nil {
		out.Details = details
		return out
	}
	var message string
	if err := json.Unmarshal(envelope.Detail, &message); err == nil {
		out.Message = message
	}
	return out
}
