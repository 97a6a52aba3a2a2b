package schema

import (
	"errors"

	"github.com/garrisonhq/garrison/internal/entities"
)

var (
	// ErrForbidden is returned when the actor lacks manage_fields on the kind
	ErrForbidden = errors.New("actor may not manage fields for this entity kind")

	// ErrInvalidField is returned when a field draft fails validation.
	// Nothing is persisted and no storage call is made.
	ErrInvalidField = errors.New("invalid field definition")

	// ErrSystemField is returned when a mutation targets a system field.
	// System fields are read-only through every surface of this service.
	ErrSystemField = errors.New("system fields cannot be modified")
)

// EntitySchema is the merged, ordered field schema for one entity kind:
// system fields first, then custom fields.
type EntitySchema struct {
	EntityKind entities.EntityKind         `json:"entity_kind"`
	System     []*entities.FieldDefinition `json:"system"`
	Custom     []*entities.FieldDefinition `json:"custom"`

	// Partial lists non-fatal load failures. A failed list is empty while
	// the other still populates; failures are independent, not transactional.
	Partial []string `json:"partial,omitempty"`
}

// Merged returns the ordered concatenation of system then custom fields
func (s *EntitySchema) Merged() []*entities.FieldDefinition {
	merged := make([]*entities.FieldDefinition, 0, len(s.System)+len(s.Custom))
	merged = append(merged, s.System...)
	merged = append(merged, s.Custom...)
	return merged
}

// Find returns the first field definition with the given machine name in
// merged order, or nil
func (s *EntitySchema) Find(name string) *entities.FieldDefinition {
	for _, f := range s.Merged() {
		if f.Name == name {
			return f
		}
	}
	return nil
}
