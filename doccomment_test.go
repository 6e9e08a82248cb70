package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/contract"
)

func TestCompileMethod_derives_descriptions(t *testing.T) {
	t.Parallel()

	m, err := contract.CompileMethod(contract.MethodSpec{
		Name: "get-status",
		Declaration: []byte(`
input:
  type: Object
  properties: {}
returns:
  type: String
`),
		Doc:     "Get the current status.\nReturns: The status string.",
		Handler: func() (string, error) { return "ok", nil },
		Params:  []string{},
	})
	require.NoError(t, err)

	assert.Equal(t, "Get the current status.", m.Description())
	assert.Equal(t, "The status string.", m.ReturnsDescription())
}

func TestCompileMethod_keeps_explicit_descriptions(t *testing.T) {
	t.Parallel()

	m, err := contract.CompileMethod(contract.MethodSpec{
		Name: "get-status",
		Declaration: []byte(`
input:
  type: Object
  description: Explicit input description.
  properties: {}
returns:
  type: String
  description: Explicit return description.
`),
		Doc:     "Doc comment text.\nReturns: Doc comment return text.",
		Handler: func() (string, error) { return "ok", nil },
		Params:  []string{},
	})
	require.NoError(t, err)

	assert.Equal(t, "Explicit input description.", m.Description())
	assert.Equal(t, "Explicit return description.", m.ReturnsDescription())
}

func TestCompileMethod_rejects_multiple_returns_sections(t *testing.T) {
	t.Parallel()

	_, err := contract.CompileMethod(contract.MethodSpec{
		Name: "get-status",
		Declaration: []byte(`
input:
  type: Object
  properties: {}
`),
		Doc:     "Text.\nReturns: one.\nReturns: two.",
		Handler: func() (string, error) { return "ok", nil },
		Params:  []string{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple 'Returns:' sections found in doc comment")
}
