package contract

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// DispatchFunc is the generated dispatch routine: it extracts and validates
// parameters from a generic value bag, invokes the wrapped handler, and
// converts the result back to the generic representation. Handler errors
// propagate unchanged.
type DispatchFunc func(body json.RawMessage, m *Method, env Environment) (json.RawMessage, error)

// nullValue is the "no value" marker returned when no return schema exists.
var nullValue = json.RawMessage("null")

// buildDispatch generates the dispatch routine for a classified parameter
// list. Named parameters are extracted in handler-declaration order, which
// determines which missing-field error surfaces first.
func buildDispatch(params []param, returns *Schema, fn reflect.Value) DispatchFunc {
	return func(body json.RawMessage, m *Method, env Environment) (json.RawMessage, error) {
		bag, err := decodeBag(body)
		if err != nil {
			return nil, err
		}

		args := make([]reflect.Value, len(params))
		catchAll := -1
		for i, p := range params {
			switch p.kind {
			case paramNamed:
				arg, err := extractNamed(bag, p)
				if err != nil {
					return nil, err
				}
				args[i] = arg
			case paramMethod:
				args[i] = reflect.ValueOf(m)
			case paramEnvironment:
				if env == nil {
					args[i] = reflect.Zero(envType)
				} else {
					args[i] = reflect.ValueOf(env)
				}
			case paramValue:
				catchAll = i
			}
		}

		// The catch-all receives whatever named extraction left behind.
		if catchAll >= 0 {
			args[catchAll] = reflect.ValueOf(bag)
		} else if len(bag) > 0 {
			return nil, fieldErr(firstKey(bag), "schema does not allow additional properties")
		}

		out := fn.Call(args)
		if errv := out[1].Interface(); errv != nil {
			return nil, errv.(error)
		}

		if returns == nil {
			return nullValue, nil
		}
		result, err := json.Marshal(out[0].Interface())
		if err != nil {
			return nil, fmt.Errorf("encoding handler result: %w", err)
		}
		return result, nil
	}
}

// extractNamed removes one named parameter from the bag, validates it
// against its schema, and decodes it to the handler's parameter type.
func extractNamed(bag Value, p param) (reflect.Value, error) {
	raw, present := bag[p.name]
	delete(bag, p.name)

	if !present {
		if !p.optional {
			return reflect.Value{}, fmt.Errorf("missing non-optional parameter: %s", p.name)
		}
		// Absent optional parameters bind to the type's zero value
		// (nil for pointer-typed parameters).
		return reflect.Zero(p.typ), nil
	}

	if err := p.schema.check(raw, p.name); err != nil {
		return reflect.Value{}, err
	}

	target := reflect.New(p.typ)
	if err := json.Unmarshal(raw, target.Interface()); err != nil {
		return reflect.Value{}, &FieldError{Field: p.name, Msg: "decode failed", Err: err}
	}
	return target.Elem(), nil
}

func firstKey(bag Value) string {
	keys := make([]string, 0, len(bag))
	for k := range bag {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}
