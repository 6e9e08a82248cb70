package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/contract"
)

func TestObject_rejects_duplicate_properties(t *testing.T) {
	t.Parallel()

	_, err := contract.Object("test", []contract.Property{
		{Name: "name", Schema: contract.String("first")},
		{Name: "name", Schema: contract.String("second")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate property "name"`)
}

func TestObject_keeps_property_order(t *testing.T) {
	t.Parallel()

	s, err := contract.Object("test", []contract.Property{
		{Name: "zeta", Schema: contract.String("")},
		{Name: "alpha", Schema: contract.String("")},
		{Name: "mid", Schema: contract.String("")},
	})
	require.NoError(t, err)

	var names []string
	for _, p := range s.Properties() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestEnum_rejects_duplicate_values(t *testing.T) {
	t.Parallel()

	_, err := contract.Enum("test", []contract.EnumValue{
		{Value: "a", Description: "first"},
		{Value: "a", Description: "again"},
	}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate enum value "a"`)
}

func TestEnum_default_must_be_a_value(t *testing.T) {
	t.Parallel()

	_, err := contract.Enum("test", []contract.EnumValue{
		{Value: "a", Description: "first"},
	}, "z")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `default "z" is not one of the enum values`)
}

func TestSchema_accessors(t *testing.T) {
	t.Parallel()

	s := contract.Integer("count").WithMinimum(1).WithMaximum(10).WithDefault(int64(5))

	assert.Equal(t, contract.KindInteger, s.Kind())
	assert.Equal(t, "count", s.Description())
	assert.Equal(t, int64(5), s.Default())

	minimum, ok := s.Minimum()
	require.True(t, ok)
	assert.Equal(t, int64(1), minimum)

	maximum, ok := s.Maximum()
	require.True(t, ok)
	assert.Equal(t, int64(10), maximum)
}

func TestKind_string(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		kind   contract.Kind
		expect string
	}{
		"string":  {kind: contract.KindString, expect: "String"},
		"boolean": {kind: contract.KindBoolean, expect: "Boolean"},
		"integer": {kind: contract.KindInteger, expect: "Integer"},
		"array":   {kind: contract.KindArray, expect: "Array"},
		"object":  {kind: contract.KindObject, expect: "Object"},
		"enum":    {kind: contract.KindEnum, expect: "Enum"},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, tc.kind.String())
		})
	}
}
