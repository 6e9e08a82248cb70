package contract_test

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/contract"
)

func TestCheck_string(t *testing.T) {
	t.Parallel()

	username := contract.String("User name.").WithMaxLength(3)

	tests := map[string]struct {
		schema  *contract.Schema
		value   string
		wantErr string
	}{
		"within bounds": {
			schema: username,
			value:  `"bob"`,
		},
		"too long": {
			schema:  username,
			value:   `"robert"`,
			wantErr: "must be at most 3 characters",
		},
		"too short": {
			schema:  contract.String("").WithMinLength(2),
			value:   `"x"`,
			wantErr: "must be at least 2 characters",
		},
		"length counts characters not bytes": {
			schema: contract.String("").WithMaxLength(3),
			value:  `"äöü"`,
		},
		"not a string": {
			schema:  username,
			value:   `5`,
			wantErr: "must be a string",
		},
		"format match": {
			schema: contract.String("").WithFormat(contract.Format{
				Name:    "lowercase",
				Pattern: regexp.MustCompile(`^[a-z]+$`),
			}),
			value: `"abc"`,
		},
		"format mismatch": {
			schema: contract.String("").WithFormat(contract.Format{
				Name:    "lowercase",
				Pattern: regexp.MustCompile(`^[a-z]+$`),
			}),
			value:   `"ABC"`,
			wantErr: "does not match the format lowercase",
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := tc.schema.Check(json.RawMessage(tc.value))
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestCheck_integer(t *testing.T) {
	t.Parallel()

	s := contract.Integer("").WithMinimum(1).WithMaximum(10)

	tests := map[string]struct {
		value   string
		wantErr string
	}{
		"in range":    {value: `5`},
		"lower bound": {value: `1`},
		"upper bound": {value: `10`},
		"too small":   {value: `0`, wantErr: "must be at least 1"},
		"too large":   {value: `11`, wantErr: "must be at most 10"},
		"fractional":  {value: `1.5`, wantErr: "must be an integer"},
		"string":      {value: `"5"`, wantErr: "must be an integer"},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := s.Check(json.RawMessage(tc.value))
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestCheck_array_reports_item_path(t *testing.T) {
	t.Parallel()

	s := contract.Array("", contract.Integer("").WithMinimum(0))

	require.NoError(t, s.Check(json.RawMessage(`[0, 1, 2]`)))

	err := s.Check(json.RawMessage(`[0, -1]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[1]")
}

func TestCheck_object(t *testing.T) {
	t.Parallel()

	s, err := contract.Object("", []contract.Property{
		{Name: "name", Schema: contract.String("")},
		{Name: "count", Optional: true, Schema: contract.Integer("")},
	})
	require.NoError(t, err)

	tests := map[string]struct {
		value   string
		wantErr string
	}{
		"complete":         {value: `{"name":"a","count":2}`},
		"optional omitted": {value: `{"name":"a"}`},
		"missing required": {value: `{"count":2}`, wantErr: "missing required property"},
		"unknown member":   {value: `{"name":"a","extra":true}`, wantErr: "schema does not allow additional properties"},
		"nested path": {
			value:   `{"name":"a","count":"two"}`,
			wantErr: "count",
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			err := s.Check(json.RawMessage(tc.value))
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestCheck_enum(t *testing.T) {
	t.Parallel()

	s, err := contract.Enum("", []contract.EnumValue{
		{Value: "a", Description: "first"},
		{Value: "b", Description: "second"},
	}, "b")
	require.NoError(t, err)

	assert.NoError(t, s.Check(json.RawMessage(`"a"`)))

	err = s.Check(json.RawMessage(`"c"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `value "c" is not defined in the enumeration`)
}
