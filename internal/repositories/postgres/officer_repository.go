package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/garrisonhq/garrison/internal/entities"
	"github.com/garrisonhq/garrison/internal/repositories"
	"github.com/google/uuid"
)

// PostgresOfficerRepository implements OfficerRepository using PostgreSQL
type PostgresOfficerRepository struct {
	db *sql.DB
}

// NewPostgresOfficerRepository creates a new PostgreSQL officer repository
func NewPostgresOfficerRepository(db *sql.DB) repositories.OfficerRepository {
	return &PostgresOfficerRepository{db: db}
}

// List retrieves officers matching the filter, newest first
func (r *PostgresOfficerRepository) List(ctx context.Context, filter repositories.OfficerFilter) ([]*entities.Officer, error) {
	query := `
		SELECT id, name, rank, division, status, join_date, custom, created_at, updated_at
		FROM officers
		WHERE 1=1
	`
	var args []interface{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Division != "" {
		args = append(args, filter.Division)
		query += fmt.Sprintf(" AND division = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR rank ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list officers: %w", err)
	}
	defer rows.Close()

	var officers []*entities.Officer
	for rows.Next() {
		var o entities.Officer
		var status string
		var customJSON []byte
		if err := rows.Scan(&o.ID, &o.Name, &o.Rank, &o.Division, &status, &o.JoinDate, &customJSON, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan officer: %w", err)
		}
		o.Status = entities.OfficerStatus(status)
		if err := unmarshalCustom(customJSON, &o.Custom); err != nil {
			return nil, err
		}
		officers = append(officers, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating officers: %w", err)
	}

	return officers, nil
}

// Get retrieves an officer by ID
func (r *PostgresOfficerRepository) Get(ctx context.Context, id string) (*entities.Officer, error) {
	query := `
		SELECT id, name, rank, division, status, join_date, custom, created_at, updated_at
		FROM officers
		WHERE id = $1
	`
	var o entities.Officer
	var status string
	var customJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.Name, &o.Rank, &o.Division, &status, &o.JoinDate, &customJSON, &o.CreatedAt, &o.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("officer %s: %w", id, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get officer: %w", err)
	}
	o.Status = entities.OfficerStatus(status)
	if err := unmarshalCustom(customJSON, &o.Custom); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persists a new officer and returns its ID
func (r *PostgresOfficerRepository) Create(ctx context.Context, officer *entities.Officer) (string, error) {
	if err := officer.Validate(); err != nil {
		return "", fmt.Errorf("invalid officer: %w", err)
	}

	customJSON, err := marshalCustom(officer.Custom)
	if err != nil {
		return "", err
	}

	id := officer.ID
	if id == "" {
		id = uuid.New().String()
	}

	query := `
		INSERT INTO officers (id, name, rank, division, status, join_date, custom, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	now := time.Now()
	_, err = r.db.ExecContext(ctx, query,
		id, officer.Name, officer.Rank, officer.Division, string(officer.Status),
		officer.JoinDate, customJSON, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create officer: %w", err)
	}

	return id, nil
}

// Update replaces an officer record keyed by its ID
func (r *PostgresOfficerRepository) Update(ctx context.Context, officer *entities.Officer) error {
	if err := officer.Validate(); err != nil {
		return fmt.Errorf("invalid officer: %w", err)
	}

	customJSON, err := marshalCustom(officer.Custom)
	if err != nil {
		return err
	}

	query := `
		UPDATE officers
		SET name = $1, rank = $2, division = $3, status = $4, join_date = $5, custom = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		officer.Name, officer.Rank, officer.Division, string(officer.Status),
		officer.JoinDate, customJSON, time.Now(), officer.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update officer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("officer %s: %w", officer.ID, repositories.ErrNotFound)
	}

	return nil
}

// Delete removes an officer by ID
func (r *PostgresOfficerRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "officers", id)
}

// deleteByID removes one row from table by primary key
func deleteByID(ctx context.Context, db *sql.DB, table string, id string) error {
	result, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", table, id, repositories.ErrNotFound)
	}
	return nil
}

func marshalCustom(values entities.CustomValues) ([]byte, error) {
	if values == nil {
		values = entities.CustomValues{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal custom values: %w", err)
	}
	return data, nil
}

func unmarshalCustom(data []byte, values *entities.CustomValues) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, values); err != nil {
		return fmt.Errorf("failed to unmarshal custom values: %w", err)
	}
	return nil
}
