package contract

import (
	"regexp"
)

// Kind identifies the variant of a Schema.
type Kind int

const (
	KindString Kind = iota
	KindBoolean
	KindInteger
	KindArray
	KindObject
	KindEnum
)

// String returns the declaration-syntax name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	case KindEnum:
		return "Enum"
	default:
		return "Unknown"
	}
}

// Format is a named string format: a regular expression tested against the
// fully decoded value. Decoding (e.g. percent-decoding) is a caller concern.
type Format struct {
	Name    string
	Pattern *regexp.Regexp
}

// Property is one named member of an object schema.
type Property struct {
	Name     string
	Optional bool
	Schema   *Schema
}

// EnumValue is one wire value of an enum schema.
type EnumValue struct {
	Value       string
	Description string
}

// Schema is the structural description of an allowed value, used for both
// runtime validation and documentation. Schemas are built once during
// initialization and must not be mutated after they are shared; every
// accessor is safe for concurrent use on a finished schema.
type Schema struct {
	kind        Kind
	description string
	def         any

	// String.
	format               Format
	minLength, maxLength *int

	// Integer.
	minimum, maximum *int64

	// Array.
	items *Schema

	// Object. Properties keep declaration order.
	properties []Property
	defaultKey string

	// Enum. Values keep declaration order.
	values []EnumValue
}

// String creates a string schema.
func String(description string) *Schema {
	return &Schema{kind: KindString, description: description}
}

// Boolean creates a boolean schema.
func Boolean(description string) *Schema {
	return &Schema{kind: KindBoolean, description: description}
}

// Integer creates an integer schema.
func Integer(description string) *Schema {
	return &Schema{kind: KindInteger, description: description}
}

// Array creates an array schema with the given item schema.
func Array(description string, items *Schema) *Schema {
	return &Schema{kind: KindArray, description: description, items: items}
}

// Object creates an object schema from an ordered property list.
// Property names must be unique.
func Object(description string, props []Property) (*Schema, error) {
	seen := make(map[string]struct{}, len(props))
	for _, p := range props {
		if _, dup := seen[p.Name]; dup {
			return nil, specErr(p.Name, "duplicate property %q", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return &Schema{kind: KindObject, description: description, properties: props}, nil
}

// Enum creates an enum schema from an ordered value list. The list order is
// externally observable and is preserved exactly. Wire names must be unique,
// and defaultValue, if non-empty, must name one of them.
func Enum(description string, values []EnumValue, defaultValue string) (*Schema, error) {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v.Value]; dup {
			return nil, specErr(v.Value, "duplicate enum value %q", v.Value)
		}
		seen[v.Value] = struct{}{}
	}
	s := &Schema{kind: KindEnum, description: description, values: values}
	if defaultValue != "" {
		if _, ok := seen[defaultValue]; !ok {
			return nil, specErr(defaultValue, "default %q is not one of the enum values", defaultValue)
		}
		s.def = defaultValue
	}
	return s, nil
}

// WithFormat sets a named string format. Only meaningful on string schemas.
func (s *Schema) WithFormat(f Format) *Schema {
	s.format = f
	return s
}

// WithMinLength sets the inclusive minimum length, counted in Unicode
// scalar values.
func (s *Schema) WithMinLength(n int) *Schema {
	s.minLength = &n
	return s
}

// WithMaxLength sets the inclusive maximum length, counted in Unicode
// scalar values.
func (s *Schema) WithMaxLength(n int) *Schema {
	s.maxLength = &n
	return s
}

// WithMinimum sets the inclusive lower bound of an integer schema.
func (s *Schema) WithMinimum(n int64) *Schema {
	s.minimum = &n
	return s
}

// WithMaximum sets the inclusive upper bound of an integer schema.
func (s *Schema) WithMaximum(n int64) *Schema {
	s.maximum = &n
	return s
}

// WithDefault sets the schema's default value.
func (s *Schema) WithDefault(v any) *Schema {
	s.def = v
	return s
}

// WithDefaultKey names the object property a single un-keyed value maps
// onto in property-string shorthand.
func (s *Schema) WithDefaultKey(name string) *Schema {
	s.defaultKey = name
	return s
}

// Kind returns the schema variant.
func (s *Schema) Kind() Kind { return s.kind }

// Description returns the schema's description text.
func (s *Schema) Description() string { return s.description }

// Default returns the schema's default value, or nil.
func (s *Schema) Default() any { return s.def }

// Format returns the string format, if set.
func (s *Schema) Format() Format { return s.format }

// MinLength returns the minimum length bound, if set.
func (s *Schema) MinLength() (int, bool) {
	if s.minLength == nil {
		return 0, false
	}
	return *s.minLength, true
}

// MaxLength returns the maximum length bound, if set.
func (s *Schema) MaxLength() (int, bool) {
	if s.maxLength == nil {
		return 0, false
	}
	return *s.maxLength, true
}

// Minimum returns the integer lower bound, if set.
func (s *Schema) Minimum() (int64, bool) {
	if s.minimum == nil {
		return 0, false
	}
	return *s.minimum, true
}

// Maximum returns the integer upper bound, if set.
func (s *Schema) Maximum() (int64, bool) {
	if s.maximum == nil {
		return 0, false
	}
	return *s.maximum, true
}

// Items returns an array schema's item schema.
func (s *Schema) Items() *Schema { return s.items }

// Properties returns an object schema's ordered property list.
// The returned slice is shared and must not be modified.
func (s *Schema) Properties() []Property { return s.properties }

// DefaultKey returns an object schema's default key, if declared.
func (s *Schema) DefaultKey() string { return s.defaultKey }

// Values returns an enum schema's ordered value list.
// The returned slice is shared and must not be modified.
func (s *Schema) Values() []EnumValue { return s.values }

// Property looks up an object property by name.
func (s *Schema) Property(name string) (Property, bool) {
	for _, p := range s.properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}
