package repositories

import (
	"context"

	"github.com/garrisonhq/garrison/internal/entities"
)

// RoleRepository defines the interface for user role lookups
type RoleRepository interface {
	// GetRole retrieves the role assigned to a user.
	// A user without a role row resolves to RoleUser.
	GetRole(ctx context.Context, userID string) (entities.Role, error)

	// SetRole assigns a role to a user, replacing any existing assignment
	SetRole(ctx context.Context, userID string, role entities.Role) error
}

// UserRepository defines the interface for credential storage
type UserRepository interface {
	// GetByEmail retrieves a user by email. Returns ErrNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// Create persists a new user and returns its ID
	Create(ctx context.Context, user *entities.User) (string, error)
}
