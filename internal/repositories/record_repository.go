package repositories

import (
	"context"

	"github.com/garrisonhq/garrison/internal/entities"
)

// OfficerFilter narrows officer listings. Zero values match everything.
type OfficerFilter struct {
	Status   entities.OfficerStatus
	Division string
	Search   string // matched against name and rank
}

// OfficerRepository defines the interface for officer record data access
type OfficerRepository interface {
	List(ctx context.Context, filter OfficerFilter) ([]*entities.Officer, error)
	Get(ctx context.Context, id string) (*entities.Officer, error)
	Create(ctx context.Context, officer *entities.Officer) (string, error)
	Update(ctx context.Context, officer *entities.Officer) error
	Delete(ctx context.Context, id string) error
}

// SoldierFilter narrows soldier listings
type SoldierFilter struct {
	Status string
	Unit   string
	Search string
}

// SoldierRepository defines the interface for soldier record data access
type SoldierRepository interface {
	List(ctx context.Context, filter SoldierFilter) ([]*entities.Soldier, error)
	Get(ctx context.Context, id string) (*entities.Soldier, error)
	Create(ctx context.Context, soldier *entities.Soldier) (string, error)
	Update(ctx context.Context, soldier *entities.Soldier) error
	Delete(ctx context.Context, id string) error
}

// CaseFilter narrows case listings
type CaseFilter struct {
	Status   entities.CaseStatus
	Priority entities.CasePriority
	Search   string // matched against case number and title
}

// CaseRepository defines the interface for case record data access
type CaseRepository interface {
	List(ctx context.Context, filter CaseFilter) ([]*entities.Case, error)
	Get(ctx context.Context, id string) (*entities.Case, error)
	Create(ctx context.Context, c *entities.Case) (string, error)
	Update(ctx context.Context, c *entities.Case) error
	Delete(ctx context.Context, id string) error
}

// AnnouncementRepository defines the interface for announcement data access
type AnnouncementRepository interface {
	List(ctx context.Context) ([]*entities.Announcement, error)
	Get(ctx context.Context, id string) (*entities.Announcement, error)
	Create(ctx context.Context, a *entities.Announcement) (string, error)
	Update(ctx context.Context, a *entities.Announcement) error
	Delete(ctx context.Context, id string) error
}
