// Package schema describes payload shapes as plain data and validates loosely-typed
// mappings against them.
//
// A Schema is an ordered list of Field descriptions. Each Field names its primitive
// Kind, whether it is required, an optional nested Schema, and constraint predicates.
// Validate interprets that description generically: it never relies on per-field
// coercion code, and it reports every failure keyed by the dotted path of the field
// (for example "level.0.signatories" or "status").
//
// Unknown keys are dropped from the normalized record unless the schema keeps them.
// Integers are normalized to int64; every other value is preserved as given.
//
// Schemas are immutable once built and safe for concurrent use.
package schema

// Kind is the primitive type a field accepts.
type Kind int

const (
	// String accepts Go strings.
	String Kind = iota + 1
	// Int accepts any Go integer, integral floats and json.Number; normalized to int64.
	Int
	// Bool accepts Go booleans.
	Bool
	// Map accepts a free-form mapping which is copied as-is.
	Map
	// Object accepts a mapping validated against the field's nested Schema.
	Object
	// List accepts a sequence whose elements are described by the field's Elem.
	List
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "integer"
	case Bool:
		return "boolean"
	case Map:
		return "mapping"
	case Object:
		return "object"
	case List:
		return "list"
	default:
		return "unknown"
	}
}

// Field declares one key of a payload.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	// Schema describes Object fields, and List fields whose elements are objects.
	Schema *Schema
	// Elem describes List elements. When nil the elements are objects of Schema.
	Elem *Field
	// MinItems applies to List fields.
	MinItems int
	Checks   []Constraint
}

// Str declares an optional string field.
func Str(name string) Field { return Field{Name: name, Kind: String} }

// Integer declares an optional integer field.
func Integer(name string) Field { return Field{Name: name, Kind: Int} }

// Boolean declares an optional boolean field.
func Boolean(name string) Field { return Field{Name: name, Kind: Bool} }

// Dict declares an optional free-form mapping field.
func Dict(name string) Field { return Field{Name: name, Kind: Map} }

// Nested declares an optional object field validated by s.
func Nested(name string, s *Schema) Field {
	return Field{Name: name, Kind: Object, Schema: s}
}

// Many declares an optional list of objects validated by s.
func Many(name string, s *Schema) Field {
	return Field{Name: name, Kind: List, Schema: s}
}

// ListOf declares an optional list of primitive values of the given kind.
func ListOf(name string, elem Kind) Field {
	return Field{Name: name, Kind: List, Elem: &Field{Kind: elem}}
}

// Require marks the field as required.
func (f Field) Require() Field {
	f.Required = true
	return f
}

// NonEmpty requires a List field to hold at least one element.
func (f Field) NonEmpty() Field {
	f.MinItems = 1
	return f
}

// With appends constraint predicates checked after the kind is accepted.
func (f Field) With(checks ...Constraint) Field {
	f.Checks = append(append([]Constraint(nil), f.Checks...), checks...)
	return f
}

func (f Field) element() Field {
	if f.Elem != nil {
		return *f.Elem
	}
	return Field{Kind: Object, Schema: f.Schema}
}

// Schema is a named, ordered set of field declarations.
type Schema struct {
	name        string
	fields      []Field
	keepUnknown bool
}

// New builds a schema from its field declarations.
func New(name string, fields ...Field) *Schema {
	return &Schema{name: name, fields: append([]Field(nil), fields...)}
}

// Name identifies the schema in error messages.
func (s *Schema) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Fields returns a copy of the field declarations in order.
func (s *Schema) Fields() []Field {
	if s == nil {
		return nil
	}
	return append([]Field(nil), s.fields...)
}

// Field looks up a declaration by name.
func (s *Schema) Field(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Extend derives a schema holding the receiver's fields followed by the given ones.
// A field redeclared by name replaces the inherited declaration in place.
func (s *Schema) Extend(name string, fields ...Field) *Schema {
	out := &Schema{name: name, keepUnknown: s.keepUnknown}
	out.fields = append(out.fields, s.fields...)
	for _, f := range fields {
		replaced := false
		for i := range out.fields {
			if out.fields[i].Name == f.Name {
				out.fields[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			out.fields = append(out.fields, f)
		}
	}
	return out
}

// KeepUnknown returns a copy of the schema that carries undeclared keys into the
// normalized record instead of dropping them.
func (s *Schema) KeepUnknown() *Schema {
	out := &Schema{name: s.name, fields: append([]Field(nil), s.fields...), keepUnknown: true}
	return out
}
