package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Validate checks raw against the schema and returns the normalized record. On failure
// the record is nil and the error is a *Errors keyed by field path.
func (s *Schema) Validate(raw map[string]any) (map[string]any, error) {
	errs := newErrors(s.Name())
	if raw == nil {
		raw = map[string]any{}
	}
	out := s.validate("", raw, errs)
	if errs.Len() > 0 {
		return nil, errs
	}
	return out, nil
}

func (s *Schema) validate(prefix string, raw map[string]any, errs *Errors) map[string]any {
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		path := joinPath(prefix, f.Name)
		value, present := raw[f.Name]
		if !present {
			if f.Required {
				errs.Add(path, "missing required field")
			}
			continue
		}
		if value == nil {
			errs.Add(path, "may not be null")
			continue
		}
		if normalized, ok := f.normalize(path, value, errs); ok {
			out[f.Name] = normalized
		}
	}
	if s.keepUnknown {
		for key, value := range raw {
			if _, declared := out[key]; declared {
				continue
			}
			if _, ok := s.Field(key); ok {
				continue
			}
			out[key] = cloneValue(value)
		}
	}
	return out
}

// normalize converts value to the canonical representation of the field's kind and runs
// the field's checks. The boolean is false when the value was rejected.
func (f Field) normalize(path string, value any, errs *Errors) (any, bool) {
	before := errs.Len()
	var normalized any

	switch f.Kind {
	case String:
		s, ok := value.(string)
		if !ok {
			errs.Add(path, "must be a string")
			return nil, false
		}
		normalized = s
	case Int:
		n, ok := toInt64(value)
		if !ok {
			errs.Add(path, "must be an integer")
			return nil, false
		}
		normalized = n
	case Bool:
		b, ok := value.(bool)
		if !ok {
			errs.Add(path, "must be a boolean")
			return nil, false
		}
		normalized = b
	case Map:
		m, ok := asMap(value)
		if !ok {
			errs.Add(path, "must be a mapping")
			return nil, false
		}
		normalized = cloneMap(m)
	case Object:
		m, ok := asMap(value)
		if !ok {
			errs.Add(path, "must be a mapping")
			return nil, false
		}
		if f.Schema == nil {
			normalized = cloneMap(m)
			break
		}
		normalized = f.Schema.validate(path, m, errs)
	case List:
		items, ok := asSlice(value)
		if !ok {
			errs.Add(path, "must be a list")
			return nil, false
		}
		if len(items) < f.MinItems {
			errs.Add(path, fmt.Sprintf("must contain at least %d item(s)", f.MinItems))
		}
		elem := f.element()
		out := make([]any, 0, len(items))
		for i, item := range items {
			itemPath := joinPath(path, strconv.Itoa(i))
			if item == nil {
				errs.Add(itemPath, "may not be null")
				continue
			}
			if v, ok := elem.normalize(itemPath, item, errs); ok {
				out = append(out, v)
			}
		}
		normalized = out
	default:
		errs.Add(path, fmt.Sprintf("unsupported field kind %d", f.Kind))
		return nil, false
	}

	if errs.Len() > before {
		return nil, false
	}
	for _, check := range f.Checks {
		if check == nil {
			continue
		}
		if err := check.Check(path, normalized); err != nil {
			errs.Add(path, err.Error())
		}
	}
	return normalized, errs.Len() == before
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if name == "" {
		return prefix
	}
	return prefix + "." + name
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return uintToInt64(uint64(v))
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return uintToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case float64:
		return floatToInt64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		if f, err := v.Float64(); err == nil {
			return floatToInt64(f)
		}
		return 0, false
	default:
		return 0, false
	}
}

func uintToInt64(v uint64) (int64, bool) {
	if v > math.MaxInt64 {
		return 0, false
	}
	return int64(v), true
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// mapper is satisfied by read-only views so already-objectified records can be
// validated again without unwrapping them first.
type mapper interface {
	Map() map[string]any
}

func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, true
	case mapper:
		return v.Map(), true
	default:
		return nil, false
	}
}

func asSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
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
	default:
		return v
	}
}
