package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

// MaintenanceType is the kind of maintenance a datastore is under.
type MaintenanceType int

const (
	MaintenanceReadOnly MaintenanceType = iota
	MaintenanceOffline
	MaintenanceDelete
	MaintenanceUnmount
	MaintenanceS3Refresh
)

// Operation classifies a datastore access for maintenance checks.
type Operation int

const (
	OpLookup Operation = iota
	OpRead
	OpWrite
)

// maintenanceEnum is derived once from the ordered variant list; the wire
// names are the kebab-case forms of the identifiers.
var maintenanceEnum = func() *EnumType {
	e, err := DeriveEnum(EnumSpec{
		Name:      "MaintenanceType",
		Doc:       "Maintenance type.",
		RenameAll: RenameKebabCase,
		Variants: []Variant{
			{Name: "ReadOnly", Doc: "Only read operations are allowed on the datastore.", Value: MaintenanceReadOnly},
			{Name: "Offline", Doc: "The datastore is completely inaccessible.", Value: MaintenanceOffline},
			{Name: "Delete", Doc: "The datastore is being deleted.", Value: MaintenanceDelete},
			{Name: "Unmount", Doc: "The removable datastore is being unmounted.", Value: MaintenanceUnmount},
			{Name: "S3Refresh", Doc: "The datastore content is being refreshed from the S3 backend.", Value: MaintenanceS3Refresh},
		},
	})
	if err != nil {
		panic(err)
	}
	return e
}()

// MaintenanceTypeSchema returns the derived enum schema for maintenance
// types.
func MaintenanceTypeSchema() *Schema { return maintenanceEnum.Schema() }

// MarshalJSON encodes the maintenance type as its wire name.
func (t MaintenanceType) MarshalJSON() ([]byte, error) {
	wire, err := maintenanceEnum.Encode(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes a wire name into a maintenance type.
func (t *MaintenanceType) UnmarshalJSON(data []byte) error {
	var wire string
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	v, err := maintenanceEnum.Decode(wire)
	if err != nil {
		return err
	}
	*t = v.(MaintenanceType)
	return nil
}

// String returns the wire name.
func (t MaintenanceType) String() string {
	wire, err := maintenanceEnum.Encode(t)
	if err != nil {
		return fmt.Sprintf("MaintenanceType(%d)", int(t))
	}
	return wire
}

// maintenanceMessageFormat rejects control characters in the free-form
// maintenance message.
var maintenanceMessageFormat = Format{
	Name:    "maintenance-message",
	Pattern: regexp.MustCompile(`^[^[:cntrl:]]*$`),
}

var maintenanceModeSchema = func() *Schema {
	s, err := Object("Maintenance mode.", []Property{
		{Name: "type", Schema: maintenanceEnum.Schema()},
		{Name: "message", Optional: true, Schema: String("Reason for maintenance.").
			WithFormat(maintenanceMessageFormat).
			WithMaxLength(64)},
	})
	if err != nil {
		panic(err)
	}
	return s.WithDefaultKey("type")
}()

// MaintenanceModeSchema returns the object schema of a maintenance mode
// declaration: a type plus an optional message, with the type as the
// property-string default key.
func MaintenanceModeSchema() *Schema { return maintenanceModeSchema }

// MaintenanceMode is the maintenance state of a datastore.
type MaintenanceMode struct {
	Type MaintenanceType `json:"type"`

	// Message is free-form and stored percent-encoded; it is decoded when
	// reported back to the caller.
	Message string `json:"message,omitempty"`
}

// ParseMaintenanceMode parses the "type[,message=...]" property-string form.
func ParseMaintenanceMode(s string) (*MaintenanceMode, error) {
	bag, err := ParsePropertyString(s, maintenanceModeSchema)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(bag)
	if err != nil {
		return nil, err
	}
	var mode MaintenanceMode
	if err := json.Unmarshal(encoded, &mode); err != nil {
		return nil, err
	}
	return &mode, nil
}

// ClearsFromCache reports whether the mode makes cached handles to the
// datastore stale and they must be dropped.
func (m *MaintenanceMode) ClearsFromCache() bool {
	switch m.Type {
	case MaintenanceOffline, MaintenanceDelete, MaintenanceUnmount:
		return true
	}
	return false
}

// message returns the decoded maintenance message.
func (m *MaintenanceMode) message() string {
	decoded, err := url.PathUnescape(m.Message)
	if err != nil {
		return m.Message
	}
	return decoded
}

// Check reports whether an operation may proceed under this maintenance
// mode. Lookups stay possible in every mode except delete.
func (m *MaintenanceMode) Check(op Operation) error {
	if m.Type == MaintenanceDelete {
		return errors.New("datastore is being deleted")
	}

	if op == OpLookup {
		return nil
	}

	switch m.Type {
	case MaintenanceUnmount:
		return errors.New("datastore is being unmounted")
	case MaintenanceOffline:
		return fmt.Errorf("offline maintenance mode: %s", m.message())
	case MaintenanceS3Refresh:
		return fmt.Errorf("S3 refresh maintenance mode: %s", m.message())
	case MaintenanceReadOnly:
		if op == OpWrite {
			return fmt.Errorf("read-only maintenance mode: %s", m.message())
		}
	}
	return nil
}
