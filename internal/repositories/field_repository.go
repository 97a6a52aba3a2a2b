package repositories

import (
	"context"

	"github.com/garrisonhq/garrison/internal/entities"
)

// FieldRepository defines the interface for field definition data access
type FieldRepository interface {
	// List retrieves all field definitions for an entity kind within one
	// partition (system or custom), ordered by creation time
	List(ctx context.Context, kind entities.EntityKind, system bool) ([]*entities.FieldDefinition, error)

	// Get retrieves a field definition by ID
	Get(ctx context.Context, id string) (*entities.FieldDefinition, error)

	// Create persists a new custom field definition and returns its ID.
	// Returns ErrDuplicateField when the machine name is already taken
	// within the same (entity kind, partition) pair.
	Create(ctx context.Context, field *entities.FieldDefinition) (string, error)

	// Update replaces all attributes of a field definition keyed by its ID
	Update(ctx context.Context, field *entities.FieldDefinition) error

	// Delete removes a field definition by ID
	Delete(ctx context.Context, id string) error
}
