package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Value is the generic key/value bag that carries request data across the
// wire boundary. A handler parameter of this type is the catch-all: it
// receives whatever remains of the bag after named extraction.
type Value map[string]json.RawMessage

// Set stores a native value into the bag, encoding it to the generic
// representation.
func (v Value) Set(name string, val any) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	v[name] = raw
	return nil
}

// Get decodes a bag member into out. It reports whether the member existed.
func (v Value) Get(name string, out any) (bool, error) {
	raw, ok := v[name]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

// errNotObject rejects dispatch values that are valid JSON but not objects.
var errNotObject = errors.New("wrapper called with a non-object value")

// decodeBag decodes a raw JSON value into a bag. A missing or null body
// decodes to an empty bag, matching what routers send for parameterless
// calls. Non-object values and malformed objects fail with distinct errors.
func decodeBag(raw json.RawMessage) (Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Value{}, nil
	}
	if trimmed[0] != '{' {
		return nil, errNotObject
	}
	var bag Value
	if err := json.Unmarshal(trimmed, &bag); err != nil {
		return nil, fmt.Errorf("decoding parameter object: %w", err)
	}
	if bag == nil {
		bag = Value{}
	}
	return bag, nil
}
