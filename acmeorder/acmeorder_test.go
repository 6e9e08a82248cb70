package acmeorder_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/acme"

	"github.com/bjaus/contract/acmeorder"
)

func TestStatus_json(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		status acmeorder.Status
		wire   string
	}{
		"new":        {status: acmeorder.StatusNew, wire: "new"},
		"invalid":    {status: acmeorder.StatusInvalid, wire: "invalid"},
		"pending":    {status: acmeorder.StatusPending, wire: "pending"},
		"processing": {status: acmeorder.StatusProcessing, wire: "processing"},
		"ready":      {status: acmeorder.StatusReady, wire: "ready"},
		"valid":      {status: acmeorder.StatusValid, wire: "valid"},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, err := json.Marshal(tc.status)
			require.NoError(t, err)
			assert.Equal(t, `"`+tc.wire+`"`, string(out))

			var back acmeorder.Status
			require.NoError(t, json.Unmarshal(out, &back))
			assert.Equal(t, tc.status, back)
		})
	}
}

func TestStatus_predicates(t *testing.T) {
	t.Parallel()

	assert.True(t, acmeorder.StatusPending.IsPending())
	assert.False(t, acmeorder.StatusValid.IsPending())
	assert.True(t, acmeorder.StatusValid.IsValid())
	assert.False(t, acmeorder.StatusReady.IsValid())
}

func TestStatusSchema_defaults_to_new(t *testing.T) {
	t.Parallel()

	s := acmeorder.StatusSchema()
	assert.Equal(t, "new", s.Default())
	require.Len(t, s.Values(), 6)
	assert.Equal(t, "new", s.Values()[0].Value)
}

func TestFromACME(t *testing.T) {
	t.Parallel()

	expires := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	order, err := acmeorder.FromACME(&acme.Order{
		URI:     "https://acme.example/order/1",
		Status:  "pending",
		Expires: expires,
		Identifiers: []acme.AuthzID{
			{Type: "dns", Value: "example.com"},
		},
		AuthzURLs:   []string{"https://acme.example/authz/1"},
		FinalizeURL: "https://acme.example/finalize/1",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://acme.example/order/1", order.URL)
	assert.Equal(t, acmeorder.StatusPending, order.Data.Status)
	require.NotNil(t, order.Data.Expires)
	assert.True(t, order.Data.Expires.Equal(expires))
	require.Len(t, order.Data.Identifiers, 1)
	assert.Equal(t, "example.com", order.Data.Identifiers[0].Value)
	assert.Equal(t, "https://acme.example/finalize/1", order.Data.Finalize)
}

func TestFromACME_unknown_status(t *testing.T) {
	t.Parallel()

	_, err := acmeorder.FromACME(&acme.Order{Status: "revoked"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown order status "revoked"`)
}
