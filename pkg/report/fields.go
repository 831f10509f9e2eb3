package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Entry is one key/value pair of a section block.
type Entry struct {
	Key   string
	Value any
}

// Display renders the value the way the viewer shows it.
func (e Entry) Display() string {
	return DisplayValue(e.Value)
}

// Label returns the key formatted for display.
func (e Entry) Label() string {
	return DisplayKey(e.Key)
}

// Fields is an ordered JSON object of displayable values.
type Fields []Entry

// Get returns the value stored under key.
func (f Fields) Get(key string) (any, bool) {
	for _, entry := range f {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in document order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for _, entry := range f {
		keys = append(keys, entry.Key)
	}
	return keys
}

// UnmarshalJSON decodes an object keeping member order. null decodes to an
// empty block.
func (f *Fields) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("report: invalid JSON object")
	}
	result := gjson.ParseBytes(data)
	if result.Type == gjson.Null {
		*f = nil
		return nil
	}
	if !result.IsObject() {
		return fmt.Errorf("report: expected object, got %s", result.Type)
	}

	var out Fields
	result.ForEach(func(key, value gjson.Result) bool {
		out = append(out, Entry{Key: key.String(), Value: value.Value()})
		return true
	})
	*f = out
	return nil
}

// MarshalJSON writes the entries back as an object in the same order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("report: encode %q: %w", entry.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DisplayKey converts a snake_case key into the upper-case heading used by
// the viewer: "risk_level" becomes "RISK LEVEL".
func DisplayKey(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "_", " "))
}

// DisplayValue renders a decoded JSON value as text.
func DisplayValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return FormatNumber(v)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}

// FormatNumber prints a float the way a browser prints a JSON number: plain
// decimals between 1e-6 and 1e21, exponent notation ("1e+21", "1.5e-7")
// outside that range.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	out := strconv.FormatFloat(v, 'e', -1, 64)
	// "e-07" becomes "e-7".
	if n := len(out); n >= 4 && out[n-4] == 'e' && out[n-2] == '0' {
		out = out[:n-2] + out[n-1:]
	}
	return out
}
