package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Title heads every rendered report.
const Title = "Lung Cancer Analysis Report"

// ErrInvalidReport marks payloads that do not have the report shape.
var ErrInvalidReport = errors.New("report: invalid report payload")

// Report is the analysis document returned by POST /generate-report.
type Report struct {
	ReportID    string   `json:"report_id"`
	GeneratedAt string   `json:"generated_at"`
	Summary     Summary  `json:"summary"`
	Sections    Sections `json:"sections"`
}

type Summary struct {
	KeyFindings []string `json:"key_findings"`
}

// Section is one named block of a report. Key is the member name under
// "sections" and is not part of the section body.
type Section struct {
	Key            string `json:"-"`
	Title          string `json:"title"`
	Data           Fields `json:"data"`
	AdditionalInfo Fields `json:"additional_info"`
}

// HasAdditionalInfo reports whether the section carries extra entries.
func (s Section) HasAdditionalInfo() bool {
	return len(s.AdditionalInfo) > 0
}

// Sections is the ordered "sections" object.
type Sections []Section

// Get returns the section stored under key.
func (s Sections) Get(key string) (Section, bool) {
	for _, section := range s {
		if section.Key == key {
			return section, true
		}
	}
	return Section{}, false
}

func (s *Sections) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("report: invalid sections JSON")
	}
	result := gjson.ParseBytes(data)
	if result.Type == gjson.Null {
		*s = nil
		return nil
	}
	if !result.IsObject() {
		return fmt.Errorf("report: sections must be an object")
	}

	var (
		out       Sections
		decodeErr error
	)
	result.ForEach(func(key, value gjson.Result) bool {
		var section Section
		if err := json.Unmarshal([]byte(value.Raw), &section); err != nil {
			decodeErr = fmt.Errorf("report: section %q: %w", key.String(), err)
			return false
		}
		section.Key = key.String()
		out = append(out, section)
		return true
	})
	if decodeErr != nil {
		return decodeErr
	}
	*s = out
	return nil
}

func (s Sections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, section := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(section.Key)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(section)
		if err != nil {
			return nil, fmt.Errorf("report: encode section %q: %w", section.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON keeps an empty additional_info as {} rather than null.
func (s Section) MarshalJSON() ([]byte, error) {
	type wire struct {
		Title          string `json:"title"`
		Data           Fields `json:"data"`
		AdditionalInfo Fields `json:"additional_info"`
	}
	out := wire{Title: s.Title, Data: s.Data, AdditionalInfo: s.AdditionalInfo}
	if out.Data == nil {
		out.Data = Fields{}
	}
	if out.AdditionalInfo == nil {
		out.AdditionalInfo = Fields{}
	}
	return json.Marshal(out)
}

// ParseReport decodes a report payload and checks the members every viewer
// relies on are present.
func ParseReport(data []byte) (Report, error) {
	if !gjson.ValidBytes(data) {
		return Report{}, fmt.Errorf("%w: malformed JSON", ErrInvalidReport)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Report{}, fmt.Errorf("%w: expected an object", ErrInvalidReport)
	}
	for _, path := range []string{"report_id", "summary.key_findings", "sections"} {
		if !root.Get(path).Exists() {
			return Report{}, fmt.Errorf("%w: missing %s", ErrInvalidReport, path)
		}
	}

	var out Report
	if err := json.Unmarshal(data, &out); err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	return out, nil
}
