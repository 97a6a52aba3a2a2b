package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/garrisonhq/garrison/internal/entities"
	"github.com/garrisonhq/garrison/internal/repositories"
	"github.com/google/uuid"
)

// PostgresRoleRepository implements RoleRepository using PostgreSQL
type PostgresRoleRepository struct {
	db *sql.DB
}

// NewPostgresRoleRepository creates a new PostgreSQL role repository
func NewPostgresRoleRepository(db *sql.DB) repositories.RoleRepository {
	return &PostgresRoleRepository{db: db}
}

// GetRole retrieves the role assigned to a user.
// A user without a role row resolves to RoleUser.
func (r *PostgresRoleRepository) GetRole(ctx context.Context, userID string) (entities.Role, error) {
	query := `SELECT role FROM user_roles WHERE user_id = $1`
	var role string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&role)
	if err == sql.ErrNoRows {
		return entities.RoleUser, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get role: %w", err)
	}
	return entities.ParseRole(role), nil
}

// SetRole assigns a role to a user, replacing any existing assignment
func (r *PostgresRoleRepository) SetRole(ctx context.Context, userID string, role entities.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role: %q", role)
	}
	query := `
		INSERT INTO user_roles (id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET role = EXCLUDED.role
	`
	_, err := r.db.ExecContext(ctx, query, uuid.New().String(), userID, string(role), time.Now())
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	return nil
}

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db *sql.DB
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db *sql.DB) repositories.UserRepository {
	return &PostgresUserRepository{db: db}
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, created_at
		FROM users
		WHERE email = $1
	`
	var user entities.User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", email, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Create persists a new user and returns its ID
func (r *PostgresUserRepository) Create(ctx context.Context, user *entities.User) (string, error) {
	id := user.ID
	if id == "" {
		id = uuid.New().String()
	}
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		id, user.Email, user.PasswordHash, user.FirstName, user.LastName, time.Now(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}
