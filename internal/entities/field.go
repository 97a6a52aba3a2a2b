package entities

import (
	"fmt"
	"time"
)

// EntityKind is the scope under which field definitions and records are partitioned
type EntityKind string

const (
	KindOfficer    EntityKind = "officer"
	KindSoldier    EntityKind = "soldier"
	KindCase       EntityKind = "case"
	KindCustomList EntityKind = "custom_list"
)

// ParseEntityKind maps a string to an EntityKind, rejecting unknown kinds
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case KindOfficer, KindSoldier, KindCase, KindCustomList:
		return EntityKind(s), nil
	default:
		return "", fmt.Errorf("unknown entity kind: %q", s)
	}
}

// FieldType is the value type of a field definition
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldEmail    FieldType = "email"
	FieldSelect   FieldType = "select"
	FieldTextarea FieldType = "textarea"
)

// Valid reports whether the field type is one of the supported types
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldDate, FieldEmail, FieldSelect, FieldTextarea:
		return true
	}
	return false
}

// FieldDefinition describes one attribute of an entity kind.
// System fields are seeded by migrations and are read-only through the API;
// custom fields are authored by actors holding manage_fields on the kind.
// Options is only meaningful for select fields; any other type must carry none.
type FieldDefinition struct {
	ID         string     `json:"id"`
	EntityKind EntityKind `json:"entity_kind"`
	Name       string     `json:"name"`
	Label      string     `json:"label"`
	Type       FieldType  `json:"type"`
	Required   bool       `json:"required"`
	Options    []string   `json:"options,omitempty"`
	System     bool       `json:"system"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Validate checks if the field definition is well-formed
func (f *FieldDefinition) Validate() error {
	if f.EntityKind == "" {
		return fmt.Errorf("entity kind is required")
	}
	if _, err := ParseEntityKind(string(f.EntityKind)); err != nil {
		return err
	}
	if f.Name == "" {
		return fmt.Errorf("field name is required")
	}
	if f.Label == "" {
		return fmt.Errorf("field label is required")
	}
	if f.Type == "" {
		return fmt.Errorf("field type is required")
	}
	if !f.Type.Valid() {
		return fmt.Errorf("unknown field type: %q", f.Type)
	}
	if f.Type != FieldSelect && len(f.Options) > 0 {
		return fmt.Errorf("options are only allowed on select fields")
	}
	return nil
}

// String returns a short representation for logs.
// Format: entity_kind.name (type)
func (f *FieldDefinition) String() string {
	return fmt.Sprintf("%s.%s (%s)", f.EntityKind, f.Name, f.Type)
}
