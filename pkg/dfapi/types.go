package dfapi

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TimestampFormat is the layout DreamFactory uses for dates.
const TimestampFormat = "2006-01-02 15:04:05"

// zeroTimestamp is what MySQL-backed instances send for unset dates.
const zeroTimestamp = "0000-00-00 00:00:00"

var timestampLayouts = []string{
	TimestampFormat,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp is a time.Time that speaks the DreamFactory date format.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// ParseTimestamp parses any of the date layouts the server is known to emit.
func ParseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == zeroTimestamp {
		return Timestamp{}, nil
	}

	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return Timestamp{Time: parsed}, nil
		}
	}

	return Timestamp{}, fmt.Errorf("parsing timestamp %q: unsupported format", value)
}

// String returns the timestamp in the DreamFactory format.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(TimestampFormat)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}

	data, err := json.Marshal(t.String())
	if err != nil {
		return nil, fmt.Errorf("marshaling timestamp: %w", err)
	}

	return data, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}

		return nil
	}

	var raw string

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("unmarshaling timestamp: %w", err)
	}

	parsed, err := ParseTimestamp(raw)
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// MarshalYAML renders the timestamp as a plain string.
func (t Timestamp) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// UnmarshalYAML accepts the same layouts as UnmarshalJSON.
func (t *Timestamp) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("unmarshaling timestamp: expected a scalar at line %d", node.Line)
	}

	if node.Tag == "!!null" {
		*t = Timestamp{}

		return nil
	}

	parsed, err := ParseTimestamp(node.Value)
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// Audit holds the bookkeeping fields every system record carries.
type Audit struct {
	CreatedDate      *Timestamp `json:"created_date,omitempty"        yaml:"created_date,omitempty"`
	CreatedByID      *int       `json:"created_by_id,omitempty"       yaml:"created_by_id,omitempty"`
	LastModifiedDate *Timestamp `json:"last_modified_date,omitempty"  yaml:"last_modified_date,omitempty"`
	LastModifiedByID *int       `json:"last_modified_by_id,omitempty" yaml:"last_modified_by_id,omitempty"`
}
