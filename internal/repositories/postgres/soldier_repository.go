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

// PostgresSoldierRepository implements SoldierRepository using PostgreSQL
type PostgresSoldierRepository struct {
	db *sql.DB
}

// NewPostgresSoldierRepository creates a new PostgreSQL soldier repository
func NewPostgresSoldierRepository(db *sql.DB) repositories.SoldierRepository {
	return &PostgresSoldierRepository{db: db}
}

// List retrieves soldiers matching the filter, newest first
func (r *PostgresSoldierRepository) List(ctx context.Context, filter repositories.SoldierFilter) ([]*entities.Soldier, error) {
	query := `
		SELECT id, name, rank, unit, status, custom, created_at, updated_at
		FROM soldiers
		WHERE 1=1
	`
	var args []interface{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Unit != "" {
		args = append(args, filter.Unit)
		query += fmt.Sprintf(" AND unit = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR rank ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list soldiers: %w", err)
	}
	defer rows.Close()

	var soldiers []*entities.Soldier
	for rows.Next() {
		var s entities.Soldier
		var customJSON []byte
		if err := rows.Scan(&s.ID, &s.Name, &s.Rank, &s.Unit, &s.Status, &customJSON, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan soldier: %w", err)
		}
		if err := unmarshalCustom(customJSON, &s.Custom); err != nil {
			return nil, err
		}
		soldiers = append(soldiers, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating soldiers: %w", err)
	}

	return soldiers, nil
}

// Get retrieves a soldier by ID
func (r *PostgresSoldierRepository) Get(ctx context.Context, id string) (*entities.Soldier, error) {
	query := `
		SELECT id, name, rank, unit, status, custom, created_at, updated_at
		FROM soldiers
		WHERE id = $1
	`
	var s entities.Soldier
	var customJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Rank, &s.Unit, &s.Status, &customJSON, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("soldier %s: %w", id, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get soldier: %w", err)
	}
	if err := unmarshalCustom(customJSON, &s.Custom); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persists a new soldier and returns its ID
func (r *PostgresSoldierRepository) Create(ctx context.Context, soldier *entities.Soldier) (string, error) {
	if err := soldier.Validate(); err != nil {
		return "", fmt.Errorf("invalid soldier: %w", err)
	}

	customJSON, err := marshalCustom(soldier.Custom)
	if err != nil {
		return "", err
	}

	id := soldier.ID
	if id == "" {
		id = uuid.New().String()
	}

	query := `
		INSERT INTO soldiers (id, name, rank, unit, status, custom, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	now := time.Now()
	_, err = r.db.ExecContext(ctx, query,
		id, soldier.Name, soldier.Rank, soldier.Unit, soldier.Status, customJSON, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create soldier: %w", err)
	}

	return id, nil
}

// Update replaces a soldier record keyed by its ID
func (r *PostgresSoldierRepository) Update(ctx context.Context, soldier *entities.Soldier) error {
	if err := soldier.Validate(); err != nil {
		return fmt.Errorf("invalid soldier: %w", err)
	}

	customJSON, err := marshalCustom(soldier.Custom)
	if err != nil {
		return err
	}

	query := `
		UPDATE soldiers
		SET name = $1, rank = $2, unit = $3, status = $4, custom = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		soldier.Name, soldier.Rank, soldier.Unit, soldier.Status, customJSON, time.Now(), soldier.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update soldier: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("soldier %s: %w", soldier.ID, repositories.ErrNotFound)
	}

	return nil
}

// Delete removes a soldier by ID
func (r *PostgresSoldierRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "soldiers", id)
}
