package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/garrisonhq/garrison/internal/entities"
	"github.com/garrisonhq/garrison/internal/repositories"
)

func TestPostgresFieldRepository_CreateListDelete(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := NewPostgresFieldRepository(db)
	ctx := context.Background()

	draft := &entities.FieldDefinition{
		EntityKind: entities.KindOfficer,
		Name:       "department",
		Label:      "Department",
		Type:       entities.FieldSelect,
		Required:   true,
		Options:    []string{"Alpha", "Bravo"},
	}

	id, err := repo.Create(ctx, draft)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Round-trip: the created definition comes back verbatim in the custom list
	custom, err := repo.List(ctx, entities.KindOfficer, false)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(custom) != 1 {
		t.Fatalf("List() returned %d fields, want 1", len(custom))
	}
	got := custom[0]
	if got.ID != id || got.Name != "department" || got.Label != "Department" ||
		got.Type != entities.FieldSelect || !got.Required {
		t.Errorf("List() returned %+v, want the created draft", got)
	}
	if len(got.Options) != 2 || got.Options[0] != "Alpha" || got.Options[1] != "Bravo" {
		t.Errorf("List() options = %v, want [Alpha Bravo]", got.Options)
	}

	// Duplicate machine name in the same partition is rejected
	if _, err := repo.Create(ctx, draft); !errors.Is(err, repositories.ErrDuplicateField) {
		t.Errorf("Create() duplicate error = %v, want ErrDuplicateField", err)
	}

	// Deletion removes the field from the custom list; system list unaffected
	systemBefore, err := repo.List(ctx, entities.KindOfficer, true)
	if err != nil {
		t.Fatalf("List(system) error = %v", err)
	}
	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	custom, err = repo.List(ctx, entities.KindOfficer, false)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(custom) != 0 {
		t.Errorf("List() after delete returned %d fields, want 0", len(custom))
	}
	systemAfter, err := repo.List(ctx, entities.KindOfficer, true)
	if err != nil {
		t.Fatalf("List(system) error = %v", err)
	}
	if len(systemAfter) != len(systemBefore) {
		t.Errorf("system list changed across custom delete: %d -> %d", len(systemBefore), len(systemAfter))
	}
}

func TestPostgresFieldRepository_Update(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := NewPostgresFieldRepository(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, &entities.FieldDefinition{
		EntityKind: entities.KindCase,
		Name:       "category",
		Label:      "Category",
		Type:       entities.FieldText,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated := &entities.FieldDefinition{
		ID:         id,
		EntityKind: entities.KindCase,
		Name:       "category",
		Label:      "Case Category",
		Type:       entities.FieldSelect,
		Required:   true,
		Options:    []string{"Theft", "Damage"},
	}
	if err := repo.Update(ctx, updated); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Label != "Case Category" || got.Type != entities.FieldSelect || !got.Required {
		t.Errorf("Get() after update = %+v, want updated attributes", got)
	}

	// Unknown ID is a not-found error
	unknown := *updated
	unknown.ID = "00000000-0000-0000-0000-000000000000"
	if err := repo.Update(ctx, &unknown); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Update() unknown id error = %v, want ErrNotFound", err)
	}
}
