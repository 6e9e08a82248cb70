package contract

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
)

// RenameRule is a container-wide rule deriving wire names from variant
// identifiers, matching the usual serialization rename conventions.
type RenameRule int

const (
	RenameNone RenameRule = iota
	RenameLowerCase
	RenameUpperCase
	RenameSnakeCase
	RenameScreamingSnakeCase
	RenameKebabCase
	RenameCamelCase
	RenamePascalCase
)

// Apply derives the wire name for a variant identifier.
func (r RenameRule) Apply(ident string) string {
	switch r {
	case RenameLowerCase:
		return strings.ToLower(ident)
	case RenameUpperCase:
		return strings.ToUpper(ident)
	case RenameSnakeCase:
		return delimit(ident, '_')
	case RenameScreamingSnakeCase:
		return strings.ToUpper(delimit(ident, '_'))
	case RenameKebabCase:
		return delimit(ident, '-')
	case RenameCamelCase:
		if ident == "" {
			return ident
		}
		return strings.ToLower(ident[:1]) + ident[1:]
	default:
		return ident
	}
}

// delimit lowercases an identifier, inserting sep before every interior
// uppercase letter ("ReadOnly" -> "read-only", "S3Refresh" -> "s3-refresh").
func delimit(ident string, sep rune) string {
	var b strings.Builder
	for i, r := range ident {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteRune(sep)
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Variant describes one enumeration variant.
type Variant struct {
	Name    string // identifier
	Doc     string // description; required, a placeholder is substituted when empty
	Rename  string // explicit wire name, overriding the container rename rule
	Default bool   // marks this variant as the default
	Value   any    // Go value bound to this variant for the wire codec; Name is used when nil
	Data    any    // payload prototype for variants carrying data; must be nil
}

// EnumSpec is the input to DeriveEnum.
type EnumSpec struct {
	Name           string     // enumeration identifier, used in errors and warnings
	Doc            string     // container documentation text
	Declaration    []byte     // optional declarative options: type, description, default
	RenameAll      RenameRule // container-wide wire name derivation
	DerivesDefault bool       // honor per-variant Default markers
	Variants       []Variant
	Registry       *Registry // nil uses DefaultRegistry
}

// EnumType is a derived enumeration: an enum schema plus the bidirectional
// text conversion between wire names and bound Go values.
type EnumType struct {
	schema *Schema
	wire   []string
	idents []string
	values []any
	byWire map[string]int
}

// DeriveEnum builds an enum schema from an enumeration's ordered variant
// list. Declaration order is preserved exactly; it is externally observable
// and never reordered.
func DeriveEnum(spec EnumSpec) (*EnumType, error) {
	desc, declDefault, err := parseEnumDeclaration(spec)
	if err != nil {
		return nil, err
	}
	if desc == "" {
		desc = strings.TrimSpace(spec.Doc)
	}

	values := make([]EnumValue, 0, len(spec.Variants))
	wire := make([]string, 0, len(spec.Variants))
	idents := make([]string, 0, len(spec.Variants))
	bound := make([]any, 0, len(spec.Variants))
	defaultValue := declDefault
	defaultVariant := ""

	for _, v := range spec.Variants {
		if v.Data != nil {
			return nil, specErr(v.Name, "enum variant %q: variants with data fields are not supported", v.Name)
		}

		doc := strings.TrimSpace(v.Doc)
		if doc == "" {
			slog.Warn("enum variant needs a description", "enum", spec.Name, "variant", v.Name)
			doc = "<missing description>"
		}

		name := v.Rename
		if name == "" {
			name = spec.RenameAll.Apply(v.Name)
		}

		if spec.DerivesDefault && v.Default {
			if defaultVariant != "" {
				return nil, specErr(v.Name,
					"multiple default values defined: %q (default previously defined by %q)",
					v.Name, defaultVariant)
			}
			if declDefault != "" {
				return nil, specErr(v.Name,
					"default marker on %q in use with 'default' declaration key", v.Name)
			}
			defaultVariant = v.Name
			defaultValue = name
		}

		values = append(values, EnumValue{Value: name, Description: doc})
		wire = append(wire, name)
		idents = append(idents, v.Name)
		bound = append(bound, v.Value)
	}

	schema, err := Enum(desc, values, defaultValue)
	if err != nil {
		return nil, err
	}

	byWire := make(map[string]int, len(wire))
	for i, w := range wire {
		byWire[w] = i
	}

	return &EnumType{schema: schema, wire: wire, idents: idents, values: bound, byWire: byWire}, nil
}

// parseEnumDeclaration reads the optional declarative options of an enum
// target. The schema type of an enum is always String; a user-supplied
// format is rejected because it is derived from the variant list.
func parseEnumDeclaration(spec EnumSpec) (desc, defaultValue string, err error) {
	if len(spec.Declaration) == 0 {
		return "", "", nil
	}

	node, err := parseDocument(spec.Declaration)
	if err != nil {
		return "", "", err
	}
	entries, err := mappingEntries(node)
	if err != nil {
		return "", "", err
	}

	for _, e := range entries {
		switch e.key {
		case "type":
			name, err := decodeString(e)
			if err != nil {
				return "", "", err
			}
			if name != "String" {
				return "", "", posErr(e.val, name, "enum schemas must have type String, not %q", name)
			}
		case "description":
			if desc, err = decodeString(e); err != nil {
				return "", "", err
			}
		case "default":
			if defaultValue, err = decodeString(e); err != nil {
				return "", "", err
			}
		case "format":
			return "", "", posErr(e.pos, e.key, "illegal key 'format', will be autogenerated")
		default:
			return "", "", posErr(e.pos, e.key, "unknown key %q", e.key)
		}
	}
	return desc, defaultValue, nil
}

// Schema returns the derived enum schema.
func (e *EnumType) Schema() *Schema { return e.schema }

// Encode converts a bound Go value (or a variant identifier, for variants
// without a bound value) to its wire name.
func (e *EnumType) Encode(v any) (string, error) {
	for i, bound := range e.values {
		if bound != nil && bound == v {
			return e.wire[i], nil
		}
		if bound == nil {
			if s, ok := v.(string); ok && s == e.idents[i] {
				return e.wire[i], nil
			}
		}
	}
	return "", fmt.Errorf("no enum variant for value %v", v)
}

// Decode converts a wire name back to the bound Go value. Variants without
// a bound value decode to their identifier.
func (e *EnumType) Decode(wire string) (any, error) {
	i, ok := e.byWire[wire]
	if !ok {
		return nil, fmt.Errorf("value %q is not defined in the enumeration", wire)
	}
	if e.values[i] == nil {
		return e.idents[i], nil
	}
	return e.values[i], nil
}
