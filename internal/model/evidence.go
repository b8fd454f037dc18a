package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Correctness labels written by the classifier
const (
	NotSupported = 0
	Supported    = 1
)

// Evidence is a single dated citation offered in support of a statement
type Evidence struct {
	SourceID    string // Literature identifier (PMID)
	Year        *int   // Publication year, nil when absent or not an integer
	Text        string // Evidence sentence
	Correctness *int   // nil until labeled, then NotSupported or Supported

	extra rawObject
}

// IsValidated reports whether the evidence was judged to support its statement
func (e Evidence) IsValidated() bool {
	return e.Correctness != nil && *e.Correctness == Supported
}

// HasYear reports whether the evidence carries an integer publication year
func (e Evidence) HasYear() bool {
	return e.Year != nil
}

// WithCorrectness returns a copy of the evidence carrying the given label
func (e Evidence) WithCorrectness(label int) Evidence {
	c := e.Clone()
	c.Correctness = &label
	return c
}

// Clone returns a deep copy
func (e Evidence) Clone() Evidence {
	c := Evidence{
		SourceID: e.SourceID,
		Text:     e.Text,
		extra:    e.extra.clone(),
	}
	if e.Year != nil {
		y := *e.Year
		c.Year = &y
	}
	if e.Correctness != nil {
		v := *e.Correctness
		c.Correctness = &v
	}
	return c
}

// UnmarshalJSON decodes an evidence object, keeping unknown members
func (e *Evidence) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("decode evidence: %w", err)
	}
	*e = Evidence{
		SourceID:    raw.takeString("pmid"),
		Text:        raw.takeString("text"),
		Year:        raw.takeInt("year"),
		Correctness: raw.takeInt("correctness"),
	}
	e.extra = raw
	return nil
}

// MarshalJSON encodes the evidence with its preserved members
func (e Evidence) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if e.SourceID != "" {
		fields["pmid"] = e.SourceID
	}
	if e.Text != "" {
		fields["text"] = e.Text
	}
	if e.Year != nil {
		fields["year"] = *e.Year
	}
	if e.Correctness != nil {
		fields["correctness"] = *e.Correctness
	}
	return encodeObject(e.extra, fields)
}

// RawField returns a member that was not decoded into a typed field
func (e Evidence) RawField(key string) (json.RawMessage, bool) {
	v, ok := e.extra[key]
	return v, ok
}

// RawYear returns the year exactly as stored, integral or not. It is nil
// when the evidence carries no year.
func (e Evidence) RawYear() json.RawMessage {
	if e.Year != nil {
		return json.RawMessage(strconv.Itoa(*e.Year))
	}
	v, ok := e.extra["year"]
	if !ok || string(bytes.TrimSpace(v)) == "null" {
		return nil
	}
	return v
}

// DisplayYear renders RawYear for prose; strings lose their quotes
func (e Evidence) DisplayYear() string {
	raw := e.RawYear()
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
