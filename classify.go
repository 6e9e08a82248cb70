package contract

import (
	"reflect"
)

// paramKind classifies one handler parameter.
type paramKind int

const (
	paramNamed       paramKind = iota // drawn from the value bag by name
	paramMethod                       // the ambient *Method descriptor
	paramEnvironment                  // the ambient Environment
	paramValue                        // catch-all for the leftover bag
)

// param is one classified handler parameter, in declaration order.
type param struct {
	name     string
	kind     paramKind
	optional bool
	schema   *Schema
	typ      reflect.Type
}

var (
	methodType = reflect.TypeOf((**Method)(nil)).Elem()
	envType    = reflect.TypeOf((*Environment)(nil)).Elem()
	valueType  = reflect.TypeOf((*Value)(nil)).Elem()
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// classifyParams maps a handler's ordered parameter list onto the input
// object schema and the reserved ambient roles. For each parameter the
// first matching rule wins:
//
//  1. the name is an input-schema property: extracted from the bag;
//  2. the type is *Method: the ambient method descriptor (at most one);
//  3. the type is Environment: the ambient environment (at most one);
//  4. the type is Value: the catch-all (at most one);
//  5. otherwise the parameter is an error.
func classifyParams(input *Schema, names []string, fn reflect.Type) ([]param, error) {
	if fn.Kind() != reflect.Func {
		return nil, specErr("", "handler must be a function, got %s", fn.Kind())
	}
	if fn.IsVariadic() {
		return nil, specErr("", "variadic handlers are not supported")
	}
	if fn.NumIn() != len(names) {
		return nil, specErr("", "handler declares %d parameters but %d names were given",
			fn.NumIn(), len(names))
	}
	if err := checkResults(fn); err != nil {
		return nil, err
	}

	var haveMethod, haveEnv, haveValue bool
	params := make([]param, 0, fn.NumIn())

	for i := 0; i < fn.NumIn(); i++ {
		name, typ := names[i], fn.In(i)

		if name == "self" {
			return nil, specErr(name, "methods taking a receiver are not supported")
		}

		switch {
		case hasProperty(input, name):
			prop, _ := input.Property(name)
			params = append(params, param{
				name:     name,
				kind:     paramNamed,
				optional: prop.Optional,
				schema:   prop.Schema,
				typ:      typ,
			})
		case typ == methodType:
			if haveMethod {
				return nil, specErr(name, "multiple Method parameters found")
			}
			haveMethod = true
			params = append(params, param{name: name, kind: paramMethod, typ: typ})
		case typ == envType:
			if haveEnv {
				return nil, specErr(name, "multiple Environment parameters found")
			}
			haveEnv = true
			params = append(params, param{name: name, kind: paramEnvironment, typ: typ})
		case typ == valueType:
			if haveValue {
				return nil, specErr(name, "multiple additional Value parameters found")
			}
			haveValue = true
			params = append(params, param{name: name, kind: paramValue, typ: typ})
		default:
			return nil, specErr(name, "unexpected parameter %q", name)
		}
	}

	return params, nil
}

// checkResults verifies the handler's result shape. The generated wrapper
// has no cooperative-scheduling model, so handlers yielding channels are
// rejected the same way async functions are in the declaration syntax.
func checkResults(fn reflect.Type) error {
	if fn.NumOut() != 2 || fn.Out(1) != errorType {
		return specErr("", "handler must return (result, error)")
	}
	if fn.Out(0).Kind() == reflect.Chan {
		return specErr("", "async handlers are not supported")
	}
	return nil
}

func hasProperty(input *Schema, name string) bool {
	if input == nil {
		return false
	}
	_, ok := input.Property(name)
	return ok
}
