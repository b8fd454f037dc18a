package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// rawObject holds the members of a JSON object that were not decoded into a
// typed field. Corpus files carry many fields we never look at (db_refs,
// source_api, text_refs, ...) and they must survive a load/save cycle.
type rawObject map[string]json.RawMessage

func decodeObject(data []byte) (rawObject, error) {
	var raw rawObject
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = rawObject{}
	}
	return raw, nil
}

// takeString removes key from the object if it holds a JSON string.
func (r rawObject) takeString(key string) string {
	v, ok := r[key]
	if !ok || string(bytes.TrimSpace(v)) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	delete(r, key)
	return s
}

// takeInt removes key from the object if it holds an integral JSON number.
// Strings, floats and null stay in the object untouched.
func (r rawObject) takeInt(key string) *int {
	v, ok := r[key]
	if !ok {
		return nil
	}
	n, ok := parseInt(v)
	if !ok {
		return nil
	}
	delete(r, key)
	return &n
}

func parseInt(v json.RawMessage) (int, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || (v[0] != '-' && (v[0] < '0' || v[0] > '9')) {
		return 0, false
	}
	n, err := strconv.Atoi(string(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

func isJSONObject(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == '{'
}

func isJSONArray(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return len(v) > 0 && v[0] == '['
}

// encodeObject merges typed fields over the preserved extras. Keys come out
// sorted, which keeps saved corpora diffable.
func encodeObject(extra rawObject, fields map[string]any) ([]byte, error) {
	out := make(map[string]json.RawMessage, len(extra)+len(fields))
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range fields {
		b, err := marshalPlain(v)
		if err != nil {
			return nil, err
		}
		out[k] = b
	}
	return marshalPlain(out)
}

// marshalPlain is json.Marshal without HTML escaping; evidence sentences
// are full of <, > and &.
func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (r rawObject) clone() rawObject {
	if r == nil {
		return nil
	}
	c := make(rawObject, len(r))
	for k, v := range r {
		c[k] = append(json.RawMessage(nil), v...)
	}
	return c
}
