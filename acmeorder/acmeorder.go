// Package acmeorder models ACME certificate orders (RFC 8555 §7.1.3) with
// a derived status enumeration, and converts orders obtained through
// golang.org/x/crypto/acme into the wire representation.
package acmeorder

import (
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/acme"

	"github.com/bjaus/contract"
)

// Status is the lifecycle state of an ACME order.
type Status int

const (
	// StatusNew is not an RFC 8555 state: it marks an order object that
	// has not been submitted to the directory yet.
	StatusNew Status = iota
	StatusInvalid
	StatusPending
	StatusProcessing
	StatusReady
	StatusValid
)

var statusEnum = func() *contract.EnumType {
	e, err := contract.DeriveEnum(contract.EnumSpec{
		Name:           "Status",
		Doc:            "Status of an ACME order.",
		RenameAll:      contract.RenameLowerCase,
		DerivesDefault: true,
		Variants: []contract.Variant{
			{Name: "New", Doc: "The order is new and has not been submitted.", Default: true, Value: StatusNew},
			{Name: "Invalid", Doc: "The order failed or expired.", Value: StatusInvalid},
			{Name: "Pending", Doc: "The order is waiting for authorizations.", Value: StatusPending},
			{Name: "Processing", Doc: "The certificate is being issued.", Value: StatusProcessing},
			{Name: "Ready", Doc: "All authorizations are valid, the order awaits finalization.", Value: StatusReady},
			{Name: "Valid", Doc: "The certificate has been issued.", Value: StatusValid},
		},
	})
	if err != nil {
		panic(err)
	}
	return e
}()

// StatusSchema returns the derived enum schema for order states.
func StatusSchema() *contract.Schema { return statusEnum.Schema() }

// IsPending reports whether the order is waiting for authorizations.
func (s Status) IsPending() bool { return s == StatusPending }

// IsValid reports whether the certificate has been issued.
func (s Status) IsValid() bool { return s == StatusValid }

// String returns the wire name.
func (s Status) String() string {
	wire, err := statusEnum.Encode(s)
	if err != nil {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return wire
}

// MarshalJSON encodes the status as its wire name.
func (s Status) MarshalJSON() ([]byte, error) {
	wire, err := statusEnum.Encode(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes a wire name into a status.
func (s *Status) UnmarshalJSON(data []byte) error {
	var wire string
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	v, err := statusEnum.Decode(wire)
	if err != nil {
		return err
	}
	*s = v.(Status)
	return nil
}

// Identifier is one identifier an order covers.
type Identifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// OrderData is the directory's representation of an order.
type OrderData struct {
	Status         Status       `json:"status"`
	Expires        *time.Time   `json:"expires,omitempty"`
	Identifiers    []Identifier `json:"identifiers"`
	NotBefore      *time.Time   `json:"notBefore,omitempty"`
	NotAfter       *time.Time   `json:"notAfter,omitempty"`
	Error          *acme.Error  `json:"error,omitempty"`
	Authorizations []string     `json:"authorizations,omitempty"`
	Finalize       string       `json:"finalize,omitempty"`
	Certificate    string       `json:"certificate,omitempty"`
}

// Order is an order plus the URL it lives at.
type Order struct {
	URL  string    `json:"url"`
	Data OrderData `json:"data"`
}

// FromACME converts an order fetched through golang.org/x/crypto/acme.
func FromACME(o *acme.Order) (*Order, error) {
	status, err := parseStatus(o.Status)
	if err != nil {
		return nil, err
	}

	data := OrderData{
		Status:         status,
		Authorizations: o.AuthzURLs,
		Finalize:       o.FinalizeURL,
		Certificate:    o.CertURL,
	}
	if !o.Expires.IsZero() {
		expires := o.Expires
		data.Expires = &expires
	}
	for _, id := range o.Identifiers {
		data.Identifiers = append(data.Identifiers, Identifier{Type: id.Type, Value: id.Value})
	}
	if o.Error != nil {
		data.Error = o.Error
	}

	return &Order{URL: o.URI, Data: data}, nil
}

func parseStatus(wire string) (Status, error) {
	v, err := statusEnum.Decode(wire)
	if err != nil {
		return 0, fmt.Errorf("unknown order status %q", wire)
	}
	return v.(Status), nil
}
