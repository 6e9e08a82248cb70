package contract

import (
	"encoding/json"
	"reflect"
)

// Method is a compiled API contract: the input and return schemas, the
// protected flag, and the generated dispatch routine bound to the handler.
// A Method is built once during initialization and immutable thereafter;
// it may be shared freely across concurrent dispatch calls.
type Method struct {
	name      string
	input     *Schema
	returns   *Schema
	protected bool
	dispatch  DispatchFunc
}

// MethodSpec is the input to CompileMethod.
type MethodSpec struct {
	// Name identifies the method in documentation and errors.
	Name string

	// Declaration is the declarative description: a YAML mapping with a
	// required `input` object schema, an optional `returns` schema, and
	// an optional `protected` boolean.
	Declaration []byte

	// Doc is the handler's leading documentation text. Descriptions the
	// declaration leaves unset are derived from it, split on a
	// "Returns:" marker.
	Doc string

	// Handler is the wrapped function. It must return (result, error).
	Handler any

	// Params names the handler's parameters in declared order; Go
	// reflection does not expose parameter names.
	Params []string

	// Registry resolves schema and format references; nil uses
	// DefaultRegistry.
	Registry *Registry
}

// CompileMethod compiles a declarative method description into an immutable
// Method with a generated dispatch routine. All errors are fatal to the
// declaration and name the offending key or parameter.
func CompileMethod(spec MethodSpec) (*Method, error) {
	input, returns, protected, err := parseMethodDeclaration(spec.Declaration, spec.Registry)
	if err != nil {
		return nil, err
	}

	if err := deriveDescriptions(input, returns, spec.Doc); err != nil {
		return nil, err
	}

	fn := reflect.ValueOf(spec.Handler)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return nil, specErr("", "handler must be a function")
	}

	params, err := classifyParams(input, spec.Params, fn.Type())
	if err != nil {
		return nil, err
	}

	m := &Method{
		name:      spec.Name,
		input:     input,
		returns:   returns,
		protected: protected,
	}
	m.dispatch = buildDispatch(params, returns, fn)
	return m, nil
}

// parseMethodDeclaration reads the top-level keys of a method declaration.
func parseMethodDeclaration(declaration []byte, reg *Registry) (input, returns *Schema, protected bool, err error) {
	node, err := parseDocument(declaration)
	if err != nil {
		return nil, nil, false, err
	}
	entries, err := mappingEntries(node)
	if err != nil {
		return nil, nil, false, err
	}

	p := &parser{reg: reg}
	for _, e := range entries {
		switch e.key {
		case "input":
			if input, err = p.parseSchema(e.val); err != nil {
				return nil, nil, false, err
			}
			if input.Kind() != KindObject {
				return nil, nil, false, posErr(e.val, e.key, "input schema must be an object schema")
			}
		case "returns":
			if returns, err = p.parseSchema(e.val); err != nil {
				return nil, nil, false, err
			}
		case "protected":
			if protected, err = decodeBool(e); err != nil {
				return nil, nil, false, err
			}
		default:
			return nil, nil, false, posErr(e.pos, e.key, "unknown key %q", e.key)
		}
	}

	if input == nil {
		return nil, nil, false, posErr(node, "input", "missing required element 'input'")
	}
	return input, returns, protected, nil
}

// Name returns the method's identifier.
func (m *Method) Name() string { return m.name }

// Input returns the input object schema.
func (m *Method) Input() *Schema { return m.input }

// Returns returns the return schema, or nil when the handler's result is
// discarded.
func (m *Method) Returns() *Schema { return m.returns }

// Protected reports whether the method must run in a privileged
// environment.
func (m *Method) Protected() bool { return m.protected }

// Description returns the input schema's description text.
func (m *Method) Description() string { return m.input.Description() }

// ReturnsDescription returns the return schema's description text, if a
// return schema exists.
func (m *Method) ReturnsDescription() string {
	if m.returns == nil {
		return ""
	}
	return m.returns.Description()
}

// Call invokes the generated dispatch routine with this method bound as
// the ambient method descriptor.
func (m *Method) Call(body json.RawMessage, env Environment) (json.RawMessage, error) {
	return m.dispatch(body, m, env)
}

// Handler returns the generated dispatch routine.
func (m *Method) Handler() DispatchFunc { return m.dispatch }
