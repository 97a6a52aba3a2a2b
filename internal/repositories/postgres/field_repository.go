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
	"github.com/lib/pq"
)

// PostgresFieldRepository implements FieldRepository using PostgreSQL
type PostgresFieldRepository struct {
	db *sql.DB
}

// NewPostgresFieldRepository creates a new PostgreSQL field repository
func NewPostgresFieldRepository(db *sql.DB) repositories.FieldRepository {
	return &PostgresFieldRepository{db: db}
}

// List retrieves all field definitions for an entity kind within one partition
func (r *PostgresFieldRepository) List(ctx context.Context, kind entities.EntityKind, system bool) ([]*entities.FieldDefinition, error) {
	query := `
		SELECT id, entity_kind, field_name, field_label, field_type, is_required, options, is_system, created_at, updated_at
		FROM fields
		WHERE entity_kind = $1 AND is_system = $2
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, string(kind), system)
	if err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}
	defer rows.Close()

	var fields []*entities.FieldDefinition
	for rows.Next() {
		field, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fields: %w", err)
	}

	return fields, nil
}

// Get retrieves a field definition by ID
func (r *PostgresFieldRepository) Get(ctx context.Context, id string) (*entities.FieldDefinition, error) {
	query := `
		SELECT id, entity_kind, field_name, field_label, field_type, is_required, options, is_system, created_at, updated_at
		FROM fields
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)
	field, err := scanField(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("field %s: %w", id, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return field, nil
}

// Create persists a new field definition and returns its ID
func (r *PostgresFieldRepository) Create(ctx context.Context, field *entities.FieldDefinition) (string, error) {
	if err := field.Validate(); err != nil {
		return "", fmt.Errorf("invalid field: %w", err)
	}

	optionsJSON, err := marshalOptions(field.Options)
	if err != nil {
		return "", err
	}

	id := field.ID
	if id == "" {
		id = uuid.New().String()
	}

	query := `
		INSERT INTO fields (id, entity_kind, field_name, field_label, field_type, is_required, options, is_system, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	now := time.Now()
	_, err = r.db.ExecContext(ctx, query,
		id, string(field.EntityKind), field.Name, field.Label, string(field.Type),
		field.Required, optionsJSON, field.System, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("field %s.%s: %w", field.EntityKind, field.Name, repositories.ErrDuplicateField)
		}
		return "", fmt.Errorf("failed to create field: %w", err)
	}

	return id, nil
}

// Update replaces all attributes of a field definition keyed by its ID
func (r *PostgresFieldRepository) Update(ctx context.Context, field *entities.FieldDefinition) error {
	if err := field.Validate(); err != nil {
		return fmt.Errorf("invalid field: %w", err)
	}

	optionsJSON, err := marshalOptions(field.Options)
	if err != nil {
		return err
	}

	query := `
		UPDATE fields
		SET field_name = $1, field_label = $2, field_type = $3, is_required = $4, options = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		field.Name, field.Label, string(field.Type), field.Required, optionsJSON, time.Now(), field.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("field %s.%s: %w", field.EntityKind, field.Name, repositories.ErrDuplicateField)
		}
		return fmt.Errorf("failed to update field: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("field %s: %w", field.ID, repositories.ErrNotFound)
	}

	return nil
}

// Delete removes a field definition by ID
func (r *PostgresFieldRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM fields WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete field: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("field %s: %w", id, repositories.ErrNotFound)
	}

	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanField(s scanner) (*entities.FieldDefinition, error) {
	var field entities.FieldDefinition
	var kind, fieldType string
	var optionsJSON []byte

	err := s.Scan(
		&field.ID, &kind, &field.Name, &field.Label, &fieldType,
		&field.Required, &optionsJSON, &field.System, &field.CreatedAt, &field.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan field: %w", err)
	}

	field.EntityKind = entities.EntityKind(kind)
	field.Type = entities.FieldType(fieldType)

	if len(optionsJSON) > 0 {
		if err := json.Unmarshal(optionsJSON, &field.Options); err != nil {
			return nil, fmt.Errorf("failed to unmarshal field options: %w", err)
		}
	}

	return &field, nil
}

func marshalOptions(options []string) ([]byte, error) {
	if options == nil {
		options = []string{}
	}
	data, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal field options: %w", err)
	}
	return data, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
