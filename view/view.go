// Package view exposes normalized payloads as read-only records with keyed and
// dotted-path access.
//
// A View owns a deep copy of the mapping it was built from, so neither later changes to
// the source nor values read out of the view can alter it. Nested mappings are returned
// as Views as well.
package view

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// View is a read-only projection of a mapping. The zero value is an empty view.
type View struct {
	m map[string]any
}

// New copies m into a View.
func New(m map[string]any) View {
	if m == nil {
		return View{}
	}
	return View{m: cloneMap(m)}
}

// wrap shares m without copying; only used for data the view already owns.
func wrap(m map[string]any) View { return View{m: m} }

// IsZero reports whether the view holds no keys.
func (v View) IsZero() bool { return len(v.m) == 0 }

// Len returns the number of keys.
func (v View) Len() int { return len(v.m) }

// Has reports whether key is present.
func (v View) Has(key string) bool {
	_, ok := v.m[key]
	return ok
}

// Keys lists the keys in sorted order.
func (v View) Keys() []string {
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value returns a copy of the raw value stored under key.
func (v View) Value(key string) (any, bool) {
	value, ok := v.m[key]
	if !ok {
		return nil, false
	}
	return cloneValue(value), true
}

// Get returns the nested mapping under key as a View, or an empty view.
func (v View) Get(key string) View {
	if m, ok := v.m[key].(map[string]any); ok {
		return wrap(m)
	}
	return View{}
}

// Path resolves a dotted path such as "a.b" or "signatories.0.signatory_id"; numeric
// segments index into lists.
func (v View) Path(path string) (any, bool) {
	value, ok := v.resolve(path)
	if !ok {
		return nil, false
	}
	return cloneValue(value), true
}

// Lookup resolves a dotted path to a nested mapping, or an empty view.
func (v View) Lookup(path string) View {
	value, ok := v.resolve(path)
	if !ok {
		return View{}
	}
	if m, ok := value.(map[string]any); ok {
		return wrap(m)
	}
	return View{}
}

func (v View) resolve(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var current any = v.m
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// String returns the string under key, or "".
func (v View) String(key string) string {
	s, _ := v.m[key].(string)
	return s
}

// Int returns the integer under key, or 0. Any Go integer type or integral float is accepted.
func (v View) Int(key string) int64 {
	n, _ := toInt64(v.m[key])
	return n
}

// Bool returns the boolean under key, or false.
func (v View) Bool(key string) bool {
	b, _ := v.m[key].(bool)
	return b
}

// Strings returns the string elements of the list under key.
func (v View) Strings(key string) []string {
	items, _ := v.m[key].([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// List returns the mapping elements of the list under key as views.
func (v View) List(key string) []View {
	items, _ := v.m[key].([]any)
	out := make([]View, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, wrap(m))
		}
	}
	return out
}

// Map returns a deep copy of the underlying mapping.
func (v View) Map() map[string]any {
	if v.m == nil {
		return map[string]any{}
	}
	return cloneMap(v.m)
}

// MarshalJSON encodes the underlying mapping.
func (v View) MarshalJSON() ([]byte, error) {
	if v.m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(v.m)
}

func toInt64(value any) (int64, bool) {
	switch n := value.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	return 0, false
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = cloneValue(v[i])
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = cloneMap(v[i])
		}
		return out
	case View:
		return v.Map()
	default:
		return v
	}
}
