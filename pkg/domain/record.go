package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Record field names shared by every work order kind.
const (
	FieldKind      = "type"
	FieldID        = "id"
	FieldClaimedBy = "claimedBy"
)

// Record is the persisted key-value form of a work order. Values are limited
// to strings, numbers and booleans so a record survives a JSON round trip.
type Record map[string]any

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Clone returns a shallow copy; record values are scalars so this is a full copy.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// SetString stores a string value.
func (r Record) SetString(key, value string) { r[key] = value }

// SetInt stores an integer value.
func (r Record) SetInt(key string, value int) { r[key] = value }

// SetBool stores a boolean value.
func (r Record) SetBool(key string, value bool) { r[key] = value }

// String returns the string stored under key. The boolean is false when the
// key is absent or holds a non-string value.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// RequireString returns the string under key or an error naming the field.
func (r Record) RequireString(key string) (string, error) {
	v, ok := r[key]
	if !ok {
		return "", fmt.Errorf("field %q missing", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, v)
	}
	return s, nil
}

// Int returns the integer under key. Whole float64 values are accepted since
// encoding/json decodes every number that way.
func (r Record) Int(key string) (int, error) {
	v, ok := r[key]
	if !ok {
		return 0, fmt.Errorf("field %q missing", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, fmt.Errorf("field %q: %v is not an integer", key, n)
		}
		return int(n), nil
	case json.Number:
		i, err := strconv.Atoi(n.String())
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", key, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("field %q: expected integer, got %T", key, v)
	}
}

// IntOr returns the integer under key, or def when the key is absent.
func (r Record) IntOr(key string, def int) (int, error) {
	if !r.Has(key) {
		return def, nil
	}
	return r.Int(key)
}

// Bool returns the boolean under key; an absent key reads as false.
func (r Record) Bool(key string) (bool, error) {
	v, ok := r[key]
	if !ok {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("field %q: expected bool, got %T", key, v)
	}
	return b, nil
}

// MarshalRecords encodes a colony's records as a JSON array.
func MarshalRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}

// UnmarshalRecords decodes a JSON array written by MarshalRecords. Numbers are
// kept as json.Number so large integers survive. Elements are decoded one at
// a time: an element that is not a JSON object comes back as a nil Record at
// its index instead of failing the whole array.
func UnmarshalRecords(raw []byte) ([]Record, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if elems == nil {
		return nil, nil
	}
	records := make([]Record, len(elems))
	for i, elem := range elems {
		dec := json.NewDecoder(bytes.NewReader(elem))
		dec.UseNumber()
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			continue
		}
		records[i] = rec
	}
	return records, nil
}
