package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/contract"
)

func propStringSchema(t *testing.T) *contract.Schema {
	t.Helper()

	s, err := contract.Object("A mount entry.", []contract.Property{
		{Name: "path", Schema: contract.String("Mount path.")},
		{Name: "size", Optional: true, Schema: contract.Integer("Size limit.")},
		{Name: "ro", Optional: true, Schema: contract.Boolean("Read-only.")},
	})
	require.NoError(t, err)
	return s.WithDefaultKey("path")
}

func TestParsePropertyString(t *testing.T) {
	t.Parallel()

	schema := propStringSchema(t)

	tests := map[string]struct {
		input   string
		expect  map[string]string
		wantErr string
	}{
		"keyed values": {
			input:  "path=/mnt/data,size=100,ro=1",
			expect: map[string]string{"path": `"/mnt/data"`, "size": "100", "ro": "true"},
		},
		"bare value uses default key": {
			input:  "/mnt/data,ro=no",
			expect: map[string]string{"path": `"/mnt/data"`, "ro": "false"},
		},
		"escaped comma": {
			input:  `path=/mnt/a\,b`,
			expect: map[string]string{"path": `"/mnt/a,b"`},
		},
		"missing required": {
			input:   "size=100",
			wantErr: "missing required property",
		},
		"unknown key": {
			input:   "path=/mnt,other=x",
			wantErr: "schema does not allow additional properties",
		},
		"bad integer": {
			input:   "path=/mnt,size=huge",
			wantErr: `not an integer: "huge"`,
		},
		"bad boolean": {
			input:   "path=/mnt,ro=maybe",
			wantErr: `not a boolean: "maybe"`,
		},
		"duplicate key": {
			input:   "path=/a,path=/b",
			wantErr: `duplicate key "path"`,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			bag, err := contract.ParsePropertyString(tc.input, schema)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, bag, len(tc.expect))
			for key, raw := range tc.expect {
				assert.JSONEq(t, raw, string(bag[key]), key)
			}
		})
	}
}

func TestParsePropertyString_without_default_key(t *testing.T) {
	t.Parallel()

	s, err := contract.Object("", []contract.Property{
		{Name: "path", Schema: contract.String("")},
	})
	require.NoError(t, err)

	_, err = contract.ParsePropertyString("/mnt/data", s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value without key, but schema does not define a default key")
}

func TestParsePropertyString_requires_object_schema(t *testing.T) {
	t.Parallel()

	_, err := contract.ParsePropertyString("a=b", contract.String(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "property strings require an object schema")
}
