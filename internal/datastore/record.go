package datastore

import (
	"encoding/json"
	"strconv"
)

// Record is one row of a collection. Shapes are free-form; the only structural
// expectation is an "id" field holding a number or a string.
type Record map[string]any

func (r Record) ID() any {
	return r["id"]
}

// Clone returns a top-level copy of the record. Values are shared, which is
// fine because handlers only ever replace top-level fields.
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

// Merge overlays the top-level fields of patch onto r. The id field is never
// overwritten, matching the shallow-merge update semantics of the API.
func (r Record) Merge(patch Record) {
	for k, v := range patch {
		if k == "id" {
			continue
		}
		r[k] = v
	}
}

// CoerceID turns a path segment into the value space used by record ids:
// numeric segments become numbers, everything else stays a string.
func CoerceID(segment string) any {
	if n, err := strconv.ParseFloat(segment, 64); err == nil {
		return n
	}
	return segment
}

// AsNumber reports the numeric value of v for the types a decoded JSON
// document or a handler can produce.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// IDEqual compares two id values, treating numbers of any width as equal when
// their values match and falling back to string equality otherwise.
func IDEqual(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	na, aok := AsNumber(a)
	nb, bok := AsNumber(b)
	if aok && bok {
		return na == nb
	}
	if aok != bok {
		return false
	}
	sa, saok := a.(string)
	sb, sbok := b.(string)
	return saok && sbok && sa == sb
}
