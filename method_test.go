package contract_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/contract"
)

const userDecl = `
input:
  type: Object
  properties:
    username:
      type: String
      description: User name.
      max_length: 8
    force:
      type: Boolean
      description: Skip safety checks.
      optional: true
returns:
  type: String
`

func TestCompileMethod_dispatch(t *testing.T) {
	t.Parallel()

	m, err := contract.CompileMethod(contract.MethodSpec{
		Name:        "greet",
		Declaration: []byte(userDecl),
		Doc:         "Greet a user.\nReturns: The greeting.",
		Handler: func(username string, force *bool) (string, error) {
			if force != nil && *force {
				return "hi " + username + "!", nil
			}
			return "hi " + username, nil
		},
		Params: []string{"username", "force"},
	})
	require.NoError(t, err)

	assert.Equal(t, "greet", m.Name())
	assert.False(t, m.Protected())

	out, err := m.Call(json.RawMessage(`{"username":"bob"}`), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `"hi bob"`, string(out))

	out, err = m.Call(json.RawMessage(`{"username":"bob","force":true}`), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `"hi bob!"`, string(out))
}

func TestCompileMethod_ambient_and_catch_all(t *testing.T) {
	t.Parallel()

	m, err := contract.CompileMethod(contract.MethodSpec{
		Name: "inspect",
		Declaration: []byte(`
input:
  type: Object
  properties:
    username:
      type: String
      description: User name.
returns:
  type: Object
  properties: {}
`),
		Doc: "Inspect the call context.",
		Handler: func(username string, m *contract.Method, env contract.Environment, extra contract.Value) (map[string]any, error) {
			out := map[string]any{
				"method":   m.Name(),
				"username": username,
				"leftover": len(extra),
			}
			if env != nil {
				out["user"] = env.AuthUser()
			}
			return out, nil
		},
		Params: []string{"username", "m", "env", "extra"},
	})
	require.NoError(t, err)

	env := &contract.MemEnvironment{Type: contract.EnvPublic}
	env.SetAuthUser("root")

	out, err := m.Call(json.RawMessage(`{"username":"bob","trailing":1,"more":2}`), env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"method":"inspect","username":"bob","leftover":2,"user":"root"}`, string(out))
}

func TestCompileMethod_dispatch_errors(t *testing.T) {
	t.Parallel()

	m, err := contract.CompileMethod(contract.MethodSpec{
		Name:        "greet",
		Declaration: []byte(userDecl),
		Doc:         "Greet a user.",
		Handler: func(username string, force *bool) (string, error) {
			return username, nil
		},
		Params: []string{"username", "force"},
	})
	require.NoError(t, err)

	tests := map[string]struct {
		body    string
		wantErr string
	}{
		"missing required": {
			body:    `{}`,
			wantErr: "missing non-optional parameter: username",
		},
		"schema violation": {
			body:    `{"username":"far-too-long-name"}`,
			wantErr: "must be at most 8 characters",
		},
		"no catch-all": {
			body:    `{"username":"bob","extra":1}`,
			wantErr: "schema does not allow additional properties",
		},
		"non-object body": {
			body:    `[1,2]`,
			wantErr: "wrapper called with a non-object value",
		},
		"malformed object body": {
			body:    `{"username":}`,
			wantErr: "decoding parameter object",
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := m.Call(json.RawMessage(tc.body), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestCompileMethod_propagates_handler_errors(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("backend gone")
	m, err := contract.CompileMethod(contract.MethodSpec{
		Name:        "fail",
		Declaration: []byte(userDecl),
		Doc:         "Always fails.",
		Handler: func(username string, force *bool) (string, error) {
			return "", sentinel
		},
		Params: []string{"username", "force"},
	})
	require.NoError(t, err)

	_, err = m.Call(json.RawMessage(`{"username":"bob"}`), nil)
	assert.ErrorIs(t, err, sentinel)
}

func TestCompileMethod_discards_result_without_returns(t *testing.T) {
	t.Parallel()

	m, err := contract.CompileMethod(contract.MethodSpec{
		Name: "fire-and-forget",
		Declaration: []byte(`
input:
  type: Object
  properties: {}
`),
		Doc:     "No return schema.",
		Handler: func() (string, error) { return "ignored", nil },
		Params:  []string{},
	})
	require.NoError(t, err)

	out, err := m.Call(json.RawMessage(`{}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	// A null body is the same as an empty parameter object.
	out, err = m.Call(json.RawMessage(`null`), nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestCompileMethod_protected_flag(t *testing.T) {
	t.Parallel()

	m, err := contract.CompileMethod(contract.MethodSpec{
		Name: "shutdown",
		Declaration: []byte(`
input:
  type: Object
  properties: {}
protected: true
`),
		Doc:     "Needs a privileged environment.",
		Handler: func() (string, error) { return "down", nil },
		Params:  []string{},
	})
	require.NoError(t, err)
	assert.True(t, m.Protected())
}

func TestCompileMethod_declaration_errors(t *testing.T) {
	t.Parallel()

	handler := func(username string, force *bool) (string, error) { return "", nil }

	tests := map[string]struct {
		decl    string
		handler any
		params  []string
		wantErr string
	}{
		"missing input": {
			decl:    "returns:\n  type: String\n",
			handler: handler,
			params:  []string{"username", "force"},
			wantErr: "missing required element 'input'",
		},
		"non-object input": {
			decl:    "input:\n  type: String\n",
			handler: handler,
			params:  []string{"username", "force"},
			wantErr: "input schema must be an object schema",
		},
		"unknown top-level key": {
			decl:    userDecl + "permissions: root\n",
			handler: handler,
			params:  []string{"username", "force"},
			wantErr: `unknown key "permissions"`,
		},
		"receiver parameter": {
			decl:    userDecl,
			handler: func(self string, force *bool) (string, error) { return "", nil },
			params:  []string{"self", "force"},
			wantErr: "methods taking a receiver are not supported",
		},
		"unexpected parameter": {
			decl:    userDecl,
			handler: func(username string, count int) (string, error) { return "", nil },
			params:  []string{"username", "count"},
			wantErr: `unexpected parameter "count"`,
		},
		"name count mismatch": {
			decl:    userDecl,
			handler: handler,
			params:  []string{"username"},
			wantErr: "handler declares 2 parameters but 1 names were given",
		},
		"variadic handler": {
			decl:    userDecl,
			handler: func(username string, rest ...string) (string, error) { return "", nil },
			params:  []string{"username", "rest"},
			wantErr: "variadic handlers are not supported",
		},
		"missing error result": {
			decl:    userDecl,
			handler: func(username string, force *bool) string { return "" },
			params:  []string{"username", "force"},
			wantErr: "handler must return (result, error)",
		},
		"channel result": {
			decl:    userDecl,
			handler: func(username string, force *bool) (chan string, error) { return nil, nil },
			params:  []string{"username", "force"},
			wantErr: "async handlers are not supported",
		},
		"duplicate environment": {
			decl:    userDecl,
			handler: func(a, b contract.Environment) (string, error) { return "", nil },
			params:  []string{"a", "b"},
			wantErr: "multiple Environment parameters found",
		},
		"not a function": {
			decl:    userDecl,
			handler: 42,
			params:  []string{},
			wantErr: "handler must be a function",
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := contract.CompileMethod(contract.MethodSpec{
				Name:        "bad",
				Declaration: []byte(tc.decl),
				Handler:     tc.handler,
				Params:      tc.params,
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
