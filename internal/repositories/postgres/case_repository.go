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

// PostgresCaseRepository implements CaseRepository using PostgreSQL
type PostgresCaseRepository struct {
	db *sql.DB
}

// NewPostgresCaseRepository creates a new PostgreSQL case repository
func NewPostgresCaseRepository(db *sql.DB) repositories.CaseRepository {
	return &PostgresCaseRepository{db: db}
}

// List retrieves cases matching the filter, newest first
func (r *PostgresCaseRepository) List(ctx context.Context, filter repositories.CaseFilter) ([]*entities.Case, error) {
	query := `
		SELECT id, case_number, title, description, status, priority, assigned_to, created_by, custom, created_at, updated_at
		FROM cases
		WHERE 1=1
	`
	var args []interface{}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Priority != "" {
		args = append(args, string(filter.Priority))
		query += fmt.Sprintf(" AND priority = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (case_number ILIKE $%d OR title ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	var cases []*entities.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cases: %w", err)
	}

	return cases, nil
}

// Get retrieves a case by ID
func (r *PostgresCaseRepository) Get(ctx context.Context, id string) (*entities.Case, error) {
	query := `
		SELECT id, case_number, title, description, status, priority, assigned_to, created_by, custom, created_at, updated_at
		FROM cases
		WHERE id = $1
	`
	c, err := scanCase(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("case %s: %w", id, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create persists a new case and returns its ID
func (r *PostgresCaseRepository) Create(ctx context.Context, c *entities.Case) (string, error) {
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("invalid case: %w", err)
	}

	customJSON, err := marshalCustom(c.Custom)
	if err != nil {
		return "", err
	}

	id := c.ID
	if id == "" {
		id = uuid.New().String()
	}

	query := `
		INSERT INTO cases (id, case_number, title, description, status, priority, assigned_to, created_by, custom, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	now := time.Now()
	_, err = r.db.ExecContext(ctx, query,
		id, c.CaseNumber, c.Title, c.Description, string(c.Status), string(c.Priority),
		nullable(c.AssignedTo), nullable(c.CreatedBy), customJSON, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("case number %s already exists: %w", c.CaseNumber, err)
		}
		return "", fmt.Errorf("failed to create case: %w", err)
	}

	return id, nil
}

// Update replaces a case record keyed by its ID
func (r *PostgresCaseRepository) Update(ctx context.Context, c *entities.Case) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid case: %w", err)
	}

	customJSON, err := marshalCustom(c.Custom)
	if err != nil {
		return err
	}

	query := `
		UPDATE cases
		SET case_number = $1, title = $2, description = $3, status = $4, priority = $5, assigned_to = $6, custom = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := r.db.ExecContext(ctx, query,
		c.CaseNumber, c.Title, c.Description, string(c.Status), string(c.Priority),
		nullable(c.AssignedTo), customJSON, time.Now(), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update case: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("case %s: %w", c.ID, repositories.ErrNotFound)
	}

	return nil
}

// Delete removes a case by ID
func (r *PostgresCaseRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "cases", id)
}

func scanCase(s scanner) (*entities.Case, error) {
	var c entities.Case
	var status, priority string
	var assignedTo, createdBy sql.NullString
	var customJSON []byte

	err := s.Scan(
		&c.ID, &c.CaseNumber, &c.Title, &c.Description, &status, &priority,
		&assignedTo, &createdBy, &customJSON, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan case: %w", err)
	}

	c.Status = entities.CaseStatus(status)
	c.Priority = entities.CasePriority(priority)
	c.AssignedTo = assignedTo.String
	c.CreatedBy = createdBy.String
	if err := unmarshalCustom(customJSON, &c.Custom); err != nil {
		return nil, err
	}

	return &c, nil
}

// nullable converts an empty string to a SQL NULL
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
