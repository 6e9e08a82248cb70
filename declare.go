package contract

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseSchema compiles a declarative schema description into a Schema tree.
// The description is an order-preserving YAML mapping; declaration order of
// object properties is kept exactly. reg resolves `schema` and `format`
// references and may be nil to use DefaultRegistry.
//
// Any unknown key, at any nesting level, is a fatal *SpecError naming the
// key and its source position.
func ParseSchema(declaration []byte, reg *Registry) (*Schema, error) {
	node, err := parseDocument(declaration)
	if err != nil {
		return nil, err
	}
	p := &parser{reg: reg}
	return p.parseSchema(node)
}

// parseDocument unmarshals a YAML document and unwraps the document node.
func parseDocument(declaration []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(declaration, &doc); err != nil {
		return nil, fmt.Errorf("invalid declaration: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, specErr("", "empty declaration")
	}
	return doc.Content[0], nil
}

type parser struct {
	reg *Registry
}

func (p *parser) registry() *Registry {
	if p.reg == nil {
		return DefaultRegistry
	}
	return p.reg
}

// yamlEntry is one key/value pair of a mapping, in declaration order.
type yamlEntry struct {
	key string
	pos *yaml.Node // key node, for error positions
	val *yaml.Node
}

// mappingEntries returns the ordered entries of a mapping node and rejects
// duplicate keys.
func mappingEntries(node *yaml.Node) ([]yamlEntry, error) {
	if node.Kind != yaml.MappingNode {
		return nil, posErr(node, "", "expected a mapping")
	}
	entries := make([]yamlEntry, 0, len(node.Content)/2)
	seen := make(map[string]struct{})
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		var key string
		if err := keyNode.Decode(&key); err != nil {
			return nil, posErr(keyNode, "", "key must be a string")
		}
		if _, dup := seen[key]; dup {
			return nil, posErr(keyNode, key, "duplicate key %q", key)
		}
		seen[key] = struct{}{}
		entries = append(entries, yamlEntry{key: key, pos: keyNode, val: valNode})
	}
	return entries, nil
}

func posErr(n *yaml.Node, key, format string, args ...any) *SpecError {
	return &SpecError{
		Msg:    fmt.Sprintf(format, args...),
		Key:    key,
		Line:   n.Line,
		Column: n.Column,
	}
}

// parseSchema converts a schema description node into a Schema.
func (p *parser) parseSchema(node *yaml.Node) (*Schema, error) {
	entries, err := mappingEntries(node)
	if err != nil {
		return nil, err
	}
	return p.schemaFromEntries(entries, node)
}

// schemaFromEntries builds a Schema from the ordered entries of a schema
// description mapping. A `schema` reference replaces an inline definition
// and tolerates no sibling keys.
func (p *parser) schemaFromEntries(entries []yamlEntry, node *yaml.Node) (*Schema, error) {
	if ref, ok := findEntry(entries, "schema"); ok {
		if len(entries) != 1 {
			other := entries[0]
			if other.key == "schema" {
				other = entries[1]
			}
			return nil, posErr(other.pos, other.key, "unknown key %q beside a schema reference", other.key)
		}
		name, err := decodeString(ref)
		if err != nil {
			return nil, err
		}
		s, err := p.registry().Schema(name)
		if err != nil {
			return nil, posErr(ref.val, name, "%v", err)
		}
		return s, nil
	}

	kind, rest, err := p.schemaKind(entries, node)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindString:
		return p.parseString(rest)
	case KindBoolean:
		return p.parseBoolean(rest)
	case KindInteger:
		return p.parseInteger(rest)
	case KindArray:
		return p.parseArray(rest, node)
	case KindObject:
		return p.parseObject(rest, node)
	default:
		return nil, posErr(node, "", "unhandled schema kind %s", kind)
	}
}

// schemaKind resolves the `type` tag, inferring Object when a properties
// key is present, and returns the remaining entries.
func (p *parser) schemaKind(entries []yamlEntry, node *yaml.Node) (Kind, []yamlEntry, error) {
	rest := make([]yamlEntry, 0, len(entries))
	var typeEntry *yamlEntry
	hasProperties := false
	for i := range entries {
		switch entries[i].key {
		case "type":
			typeEntry = &entries[i]
		default:
			if entries[i].key == "properties" {
				hasProperties = true
			}
			rest = append(rest, entries[i])
		}
	}

	if typeEntry == nil {
		if hasProperties {
			return KindObject, rest, nil
		}
		return 0, nil, posErr(node, "type", "missing 'type' key in schema definition")
	}

	name, err := decodeString(*typeEntry)
	if err != nil {
		return 0, nil, err
	}
	switch name {
	case "String":
		return KindString, rest, nil
	case "Boolean":
		return KindBoolean, rest, nil
	case "Integer":
		return KindInteger, rest, nil
	case "Array":
		return KindArray, rest, nil
	case "Object":
		return KindObject, rest, nil
	default:
		return 0, nil, posErr(typeEntry.val, name, "unknown type name %q", name)
	}
}

func (p *parser) parseString(entries []yamlEntry) (*Schema, error) {
	s := String("")
	for _, e := range entries {
		switch e.key {
		case "description":
			desc, err := decodeString(e)
			if err != nil {
				return nil, err
			}
			s.description = desc
		case "format":
			name, err := decodeString(e)
			if err != nil {
				return nil, err
			}
			f, err := p.registry().LookupFormat(name)
			if err != nil {
				return nil, posErr(e.val, name, "%v", err)
			}
			s.WithFormat(f)
		case "min_length":
			n, err := decodeLength(e)
			if err != nil {
				return nil, err
			}
			s.WithMinLength(n)
		case "max_length":
			n, err := decodeLength(e)
			if err != nil {
				return nil, err
			}
			s.WithMaxLength(n)
		case "default":
			var v string
			if err := e.val.Decode(&v); err != nil {
				return nil, posErr(e.val, e.key, "default must be a string")
			}
			s.WithDefault(v)
		default:
			return nil, posErr(e.pos, e.key, "unknown key %q", e.key)
		}
	}
	return s, nil
}

func (p *parser) parseBoolean(entries []yamlEntry) (*Schema, error) {
	s := Boolean("")
	for _, e := range entries {
		switch e.key {
		case "description":
			desc, err := decodeString(e)
			if err != nil {
				return nil, err
			}
			s.description = desc
		case "default":
			var v bool
			if err := e.val.Decode(&v); err != nil {
				return nil, posErr(e.val, e.key, "default must be a boolean")
			}
			s.WithDefault(v)
		default:
			return nil, posErr(e.pos, e.key, "unknown key %q", e.key)
		}
	}
	return s, nil
}

func (p *parser) parseInteger(entries []yamlEntry) (*Schema, error) {
	s := Integer("")
	for _, e := range entries {
		switch e.key {
		case "description":
			desc, err := decodeString(e)
			if err != nil {
				return nil, err
			}
			s.description = desc
		case "minimum":
			n, err := decodeInt64(e)
			if err != nil {
				return nil, err
			}
			s.WithMinimum(n)
		case "maximum":
			n, err := decodeInt64(e)
			if err != nil {
				return nil, err
			}
			s.WithMaximum(n)
		case "default":
			var v int64
			if err := e.val.Decode(&v); err != nil {
				return nil, posErr(e.val, e.key, "default must be an integer")
			}
			s.WithDefault(v)
		default:
			return nil, posErr(e.pos, e.key, "unknown key %q", e.key)
		}
	}
	return s, nil
}

func (p *parser) parseArray(entries []yamlEntry, node *yaml.Node) (*Schema, error) {
	var items *Schema
	desc := ""
	for _, e := range entries {
		switch e.key {
		case "description":
			d, err := decodeString(e)
			if err != nil {
				return nil, err
			}
			desc = d
		case "items":
			s, err := p.parseSchema(e.val)
			if err != nil {
				return nil, err
			}
			items = s
		default:
			return nil, posErr(e.pos, e.key, "unknown key %q", e.key)
		}
	}
	if items == nil {
		return nil, posErr(node, "items", "missing 'items' key in array schema")
	}
	return Array(desc, items), nil
}

func (p *parser) parseObject(entries []yamlEntry, node *yaml.Node) (*Schema, error) {
	var props []Property
	desc := ""
	defaultKey := ""
	var defaultKeyPos *yaml.Node
	for _, e := range entries {
		switch e.key {
		case "description":
			d, err := decodeString(e)
			if err != nil {
				return nil, err
			}
			desc = d
		case "properties":
			propEntries, err := mappingEntries(e.val)
			if err != nil {
				return nil, err
			}
			for _, pe := range propEntries {
				prop, err := p.parseProperty(pe)
				if err != nil {
					return nil, err
				}
				props = append(props, prop)
			}
		case "default_key":
			d, err := decodeString(e)
			if err != nil {
				return nil, err
			}
			defaultKey = d
			defaultKeyPos = e.val
		default:
			return nil, posErr(e.pos, e.key, "unknown key %q", e.key)
		}
	}

	s, err := Object(desc, props)
	if err != nil {
		return nil, err
	}
	if defaultKey != "" {
		if _, ok := s.Property(defaultKey); !ok {
			return nil, posErr(defaultKeyPos, defaultKey, "default_key refers to unknown property %q", defaultKey)
		}
		s.WithDefaultKey(defaultKey)
	}
	return s, nil
}

// parseProperty converts one properties entry. The per-property `optional`
// flag lives beside the schema keys and is stripped before schema parsing.
func (p *parser) parseProperty(pe yamlEntry) (Property, error) {
	entries, err := mappingEntries(pe.val)
	if err != nil {
		return Property{}, err
	}

	optional := false
	rest := entries[:0]
	for _, e := range entries {
		if e.key == "optional" {
			if err := e.val.Decode(&optional); err != nil {
				return Property{}, posErr(e.val, e.key, "optional must be a boolean")
			}
			continue
		}
		rest = append(rest, e)
	}

	schema, err := p.schemaFromEntries(rest, pe.val)
	if err != nil {
		return Property{}, err
	}
	return Property{Name: pe.key, Optional: optional, Schema: schema}, nil
}

func findEntry(entries []yamlEntry, key string) (yamlEntry, bool) {
	for _, e := range entries {
		if e.key == key {
			return e, true
		}
	}
	return yamlEntry{}, false
}

func decodeString(e yamlEntry) (string, error) {
	var s string
	if e.val.Kind != yaml.ScalarNode {
		return "", posErr(e.val, e.key, "%s must be a string", e.key)
	}
	if err := e.val.Decode(&s); err != nil {
		return "", posErr(e.val, e.key, "%s must be a string", e.key)
	}
	return s, nil
}

func decodeLength(e yamlEntry) (int, error) {
	var n int
	if err := e.val.Decode(&n); err != nil || n < 0 {
		return 0, posErr(e.val, e.key, "%s must be a non-negative integer", e.key)
	}
	return n, nil
}

func decodeInt64(e yamlEntry) (int64, error) {
	var n int64
	if err := e.val.Decode(&n); err != nil {
		return 0, posErr(e.val, e.key, "%s must be an integer", e.key)
	}
	return n, nil
}

func decodeBool(e yamlEntry) (bool, error) {
	var b bool
	if err := e.val.Decode(&b); err != nil {
		return false, posErr(e.val, e.key, "%s must be a boolean", e.key)
	}
	return b, nil
}
