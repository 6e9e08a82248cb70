package contract

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParsePropertyString parses the compact "key=value,key2=value2" shorthand
// into a value bag and validates it against the given object schema. A
// segment without a key maps onto the schema's default key. Values are
// converted according to the matching property schema before validation.
func ParsePropertyString(input string, schema *Schema) (Value, error) {
	if schema == nil || schema.Kind() != KindObject {
		return nil, specErr("", "property strings require an object schema")
	}

	bag := Value{}
	for _, segment := range splitSegments(input) {
		if segment == "" {
			continue
		}

		key, text, keyed := strings.Cut(segment, "=")
		if !keyed {
			key = schema.DefaultKey()
			if key == "" {
				return nil, fieldErr(segment, "value without key, but schema does not define a default key")
			}
			text = segment
		}

		if _, dup := bag[key]; dup {
			return nil, fieldErr(key, "duplicate key %q", key)
		}

		raw, err := convertScalar(key, text, schema)
		if err != nil {
			return nil, err
		}
		bag[key] = raw
	}

	encoded, err := json.Marshal(bag)
	if err != nil {
		return nil, err
	}
	if err := schema.Check(encoded); err != nil {
		return nil, err
	}
	return bag, nil
}

// splitSegments splits a property string on commas, honoring backslash
// escapes so values may contain literal commas.
func splitSegments(input string) []string {
	var segments []string
	var b strings.Builder
	escaped := false
	for _, r := range input {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ',':
			segments = append(segments, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	segments = append(segments, b.String())
	return segments
}

// convertScalar converts a property-string value to the generic
// representation guided by the matching property schema. Unknown keys keep
// the textual value; the schema check rejects them afterwards with its
// additional-properties error.
func convertScalar(key, text string, object *Schema) (json.RawMessage, error) {
	prop, ok := object.Property(key)
	if !ok {
		return json.Marshal(text)
	}

	switch prop.Schema.Kind() {
	case KindString, KindEnum:
		return json.Marshal(text)
	case KindBoolean:
		v, err := parseBooleanText(text)
		if err != nil {
			return nil, fieldErr(key, "not a boolean: %q", text)
		}
		return json.Marshal(v)
	case KindInteger:
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fieldErr(key, "not an integer: %q", text)
		}
		return json.Marshal(n)
	default:
		return nil, fieldErr(key, "property %q does not have a scalar schema", key)
	}
}

// parseBooleanText accepts the usual configuration spellings of a boolean.
func parseBooleanText(text string) (bool, error) {
	switch strings.ToLower(text) {
	case "1", "on", "yes", "true":
		return true, nil
	case "0", "off", "no", "false":
		return false, nil
	}
	return false, strconv.ErrSyntax
}
