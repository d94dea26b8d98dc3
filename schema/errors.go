package schema

import (
	"encoding/json"
	"sort"
	"strings"
)

// Errors collects validation failures keyed by dotted field path.
type Errors struct {
	schema string
	fields map[string][]string
}

func newErrors(schema string) *Errors {
	return &Errors{schema: schema, fields: make(map[string][]string)}
}

// Add records a message against a field path.
func (e *Errors) Add(path, message string) {
	if e.fields == nil {
		e.fields = make(map[string][]string)
	}
	e.fields[path] = append(e.fields[path], message)
}

// Schema names the schema that produced the errors.
func (e *Errors) Schema() string {
	if e == nil {
		return ""
	}
	return e.schema
}

// Len reports how many field paths failed.
func (e *Errors) Len() int {
	if e == nil {
		return 0
	}
	return len(e.fields)
}

// Has reports whether the exact field path failed.
func (e *Errors) Has(path string) bool {
	if e == nil {
		return false
	}
	_, ok := e.fields[path]
	return ok
}

// Within reports whether the field path or any path nested under it failed.
func (e *Errors) Within(path string) bool {
	if e == nil {
		return false
	}
	for key := range e.fields {
		if key == path || strings.HasPrefix(key, path+".") {
			return true
		}
	}
	return false
}

// Get returns the messages recorded for a field path.
func (e *Errors) Get(path string) []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.fields[path]...)
}

// Fields lists the failing field paths in sorted order.
func (e *Errors) Fields() []string {
	if e == nil {
		return nil
	}
	keys := make([]string, 0, len(e.fields))
	for key := range e.fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the path to messages table.
func (e *Errors) Map() map[string][]string {
	out := make(map[string][]string, e.Len())
	for _, key := range e.Fields() {
		out[key] = e.Get(key)
	}
	return out
}

func (e *Errors) Error() string {
	var b strings.Builder
	b.WriteString("schema")
	if e.Schema() != "" {
		b.WriteString(" ")
		b.WriteString(e.schema)
	}
	b.WriteString(": ")
	for i, key := range e.Fields() {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(strings.Join(e.fields[key], ", "))
	}
	return b.String()
}

// MarshalJSON renders the errors as a path to messages object.
func (e *Errors) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Map())
}
