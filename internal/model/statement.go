package model

import (
	"encoding/json"
	"fmt"
)

// Entity is an agent (gene, protein, compound...) taking part in a statement
type Entity struct {
	Name string

	extra rawObject
}

// UnmarshalJSON decodes an entity, keeping db_refs and other members
func (a *Entity) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("decode entity: %w", err)
	}
	*a = Entity{Name: raw.takeString("name"), extra: raw}
	return nil
}

// MarshalJSON encodes the entity with its preserved members
func (a Entity) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if a.Name != "" {
		fields["name"] = a.Name
	}
	return encodeObject(a.extra, fields)
}

// Statement is a claimed relationship between a subject and an object,
// backed by evidence
type Statement struct {
	ID       string
	Type     string // Relationship type, e.g. "Activation"
	Subj     Entity
	Obj      Entity
	Evidence []Evidence

	extra rawObject
}

// Triple returns the (subject, type, object) identity of the statement
func (s Statement) Triple() Triple {
	return Triple{Subject: s.Subj.Name, Type: s.Type, Object: s.Obj.Name}
}

// ValidatedCount returns the number of evidence items labeled Supported
func (s Statement) ValidatedCount() int {
	n := 0
	for _, ev := range s.Evidence {
		if ev.IsValidated() {
			n++
		}
	}
	return n
}

// HasValidated reports whether any evidence item is labeled Supported
func (s Statement) HasValidated() bool {
	for _, ev := range s.Evidence {
		if ev.IsValidated() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy; labeling a clone never touches the original
func (s Statement) Clone() Statement {
	c := Statement{
		ID:    s.ID,
		Type:  s.Type,
		Subj:  Entity{Name: s.Subj.Name, extra: s.Subj.extra.clone()},
		Obj:   Entity{Name: s.Obj.Name, extra: s.Obj.extra.clone()},
		extra: s.extra.clone(),
	}
	if s.Evidence != nil {
		c.Evidence = make([]Evidence, len(s.Evidence))
		for i, ev := range s.Evidence {
			c.Evidence[i] = ev.Clone()
		}
	}
	return c
}

// UnmarshalJSON decodes a statement. Members of the wrong shape are kept
// verbatim instead of failing the whole corpus.
func (s *Statement) UnmarshalJSON(data []byte) error {
	raw, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("decode statement: %w", err)
	}
	*s = Statement{
		ID:   raw.takeString("id"),
		Type: raw.takeString("type"),
	}
	if v, ok := raw["subj"]; ok && isJSONObject(v) {
		if err := json.Unmarshal(v, &s.Subj); err == nil {
			delete(raw, "subj")
		}
	}
	if v, ok := raw["obj"]; ok && isJSONObject(v) {
		if err := json.Unmarshal(v, &s.Obj); err == nil {
			delete(raw, "obj")
		}
	}
	if v, ok := raw["evidence"]; ok && isJSONArray(v) {
		var evs []Evidence
		if err := json.Unmarshal(v, &evs); err == nil {
			s.Evidence = evs
			delete(raw, "evidence")
		}
	}
	s.extra = raw
	return nil
}

// MarshalJSON encodes the statement with its preserved members
func (s Statement) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if s.ID != "" {
		fields["id"] = s.ID
	}
	if s.Type != "" {
		fields["type"] = s.Type
	}
	if s.Subj.Name != "" || len(s.Subj.extra) > 0 {
		fields["subj"] = s.Subj
	}
	if s.Obj.Name != "" || len(s.Obj.extra) > 0 {
		fields["obj"] = s.Obj
	}
	if s.Evidence != nil {
		fields["evidence"] = s.Evidence
	}
	return encodeObject(s.extra, fields)
}

// Triple identifies a relationship: subject, relationship type, object
type Triple struct {
	Subject string `json:"subject" yaml:"subject"`
	Type    string `json:"type" yaml:"type"`
	Object  string `json:"object" yaml:"object"`
}

// Valid reports whether all three parts are non-empty
func (t Triple) Valid() bool {
	return t.Subject != "" && t.Type != "" && t.Object != ""
}

func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s", t.Subject, t.Type, t.Object)
}
