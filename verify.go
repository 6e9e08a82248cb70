package contract

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Check validates a raw JSON value against the schema. Validation failures
// are returned as *FieldError naming the offending field; the top-level
// value itself is reported without a field path.
func (s *Schema) Check(raw json.RawMessage) error {
	return s.check(raw, "")
}

func (s *Schema) check(raw json.RawMessage, path string) error {
	switch s.kind {
	case KindString:
		return s.checkString(raw, path)
	case KindBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return &FieldError{Field: path, Msg: "must be a boolean", Err: err}
		}
		return nil
	case KindInteger:
		return s.checkInteger(raw, path)
	case KindArray:
		return s.checkArray(raw, path)
	case KindObject:
		return s.checkObject(raw, path)
	case KindEnum:
		return s.checkEnum(raw, path)
	default:
		return fieldErr(path, "unhandled schema kind")
	}
}

func (s *Schema) checkString(raw json.RawMessage, path string) error {
	var val string
	if err := json.Unmarshal(raw, &val); err != nil {
		return &FieldError{Field: path, Msg: "must be a string", Err: err}
	}

	// Length bounds count Unicode scalar values, not bytes.
	length := utf8.RuneCountInString(val)
	if s.minLength != nil && length < *s.minLength {
		return fieldErr(path, "must be at least %d characters", *s.minLength)
	}
	if s.maxLength != nil && length > *s.maxLength {
		return fieldErr(path, "must be at most %d characters", *s.maxLength)
	}

	if s.format.Pattern != nil && !s.format.Pattern.MatchString(val) {
		return fieldErr(path, "does not match the format %s", s.format.Name)
	}
	return nil
}

func (s *Schema) checkInteger(raw json.RawMessage, path string) error {
	var val int64
	if err := json.Unmarshal(raw, &val); err != nil {
		return &FieldError{Field: path, Msg: "must be an integer", Err: err}
	}
	if s.minimum != nil && val < *s.minimum {
		return fieldErr(path, "must be at least %d", *s.minimum)
	}
	if s.maximum != nil && val > *s.maximum {
		return fieldErr(path, "must be at most %d", *s.maximum)
	}
	return nil
}

func (s *Schema) checkArray(raw json.RawMessage, path string) error {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return &FieldError{Field: path, Msg: "must be an array", Err: err}
	}
	for i, item := range items {
		if err := s.items.check(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) checkObject(raw json.RawMessage, path string) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return &FieldError{Field: path, Msg: "must be an object", Err: err}
	}

	for _, p := range s.properties {
		member, ok := members[p.Name]
		if !ok {
			if !p.Optional {
				return fieldErr(joinPath(path, p.Name), "missing required property")
			}
			continue
		}
		delete(members, p.Name)
		if err := p.Schema.check(member, joinPath(path, p.Name)); err != nil {
			return err
		}
	}

	for name := range members {
		return fieldErr(joinPath(path, name), "schema does not allow additional properties")
	}
	return nil
}

func (s *Schema) checkEnum(raw json.RawMessage, path string) error {
	var val string
	if err := json.Unmarshal(raw, &val); err != nil {
		return &FieldError{Field: path, Msg: "must be a string", Err: err}
	}
	for _, v := range s.values {
		if v.Value == val {
			return nil
		}
	}
	return fieldErr(path, "value %q is not defined in the enumeration", val)
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
