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

// PostgresAnnouncementRepository implements AnnouncementRepository using PostgreSQL
type PostgresAnnouncementRepository struct {
	db *sql.DB
}

// NewPostgresAnnouncementRepository creates a new PostgreSQL announcement repository
func NewPostgresAnnouncementRepository(db *sql.DB) repositories.AnnouncementRepository {
	return &PostgresAnnouncementRepository{db: db}
}

// List retrieves all announcements, newest first
func (r *PostgresAnnouncementRepository) List(ctx context.Context) ([]*entities.Announcement, error) {
	query := `
		SELECT id, title, content, priority, status, created_by, created_at, updated_at
		FROM announcements
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	var announcements []*entities.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating announcements: %w", err)
	}

	return announcements, nil
}

// Get retrieves an announcement by ID
func (r *PostgresAnnouncementRepository) Get(ctx context.Context, id string) (*entities.Announcement, error) {
	query := `
		SELECT id, title, content, priority, status, created_by, created_at, updated_at
		FROM announcements
		WHERE id = $1
	`
	a, err := scanAnnouncement(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("announcement %s: %w", id, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create persists a new announcement and returns its ID
func (r *PostgresAnnouncementRepository) Create(ctx context.Context, a *entities.Announcement) (string, error) {
	if err := a.Validate(); err != nil {
		return "", fmt.Errorf("invalid announcement: %w", err)
	}

	id := a.ID
	if id == "" {
		id = uuid.New().String()
	}

	query := `
		INSERT INTO announcements (id, title, content, priority, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		id, a.Title, a.Content, a.Priority, a.Status, nullable(a.CreatedBy), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create announcement: %w", err)
	}

	return id, nil
}

// Update replaces an announcement keyed by its ID
func (r *PostgresAnnouncementRepository) Update(ctx context.Context, a *entities.Announcement) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid announcement: %w", err)
	}

	query := `
		UPDATE announcements
		SET title = $1, content = $2, priority = $3, status = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		a.Title, a.Content, a.Priority, a.Status, time.Now(), a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("announcement %s: %w", a.ID, repositories.ErrNotFound)
	}

	return nil
}

// Delete removes an announcement by ID
func (r *PostgresAnnouncementRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "announcements", id)
}

func scanAnnouncement(s scanner) (*entities.Announcement, error) {
	var a entities.Announcement
	var priority, status, createdBy sql.NullString

	err := s.Scan(&a.ID, &a.Title, &a.Content, &priority, &status, &createdBy, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan announcement: %w", err)
	}

	a.Priority = priority.String
	a.Status = status.String
	a.CreatedBy = createdBy.String

	return &a, nil
}
