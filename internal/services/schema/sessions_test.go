package schema

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/garrisonhq/garrison/internal/entities"
	"github.com/garrisonhq/garrison/internal/infrastructure/cache"
	"github.com/garrisonhq/garrison/internal/services/access"
)

func TestSessions_OneManagerPerUser(t *testing.T) {
	svc, _ := newTestService(newFakeFieldRepo())
	sessions := NewSessions(svc, zerolog.Nop())

	first := sessions.For("u1")
	if sessions.For("u1") != first {
		t.Error("same user must get the same manager back")
	}
	if sessions.For("u2") == first {
		t.Error("distinct users must get distinct managers")
	}
}

func TestSessions_InvalidateRefreshesActiveKind(t *testing.T) {
	repo := newFakeFieldRepo()
	repo.seed(&entities.FieldDefinition{
		EntityKind: entities.KindOfficer, Name: "callsign", Label: "Callsign", Type: entities.FieldText,
	})
	repo.seed(&entities.FieldDefinition{
		EntityKind: entities.KindSoldier, Name: "unit", Label: "Unit", Type: entities.FieldText,
	})
	svc, _ := newTestService(repo)
	sessions := NewSessions(svc, zerolog.Nop())

	officerMgr := sessions.For("u1")
	if _, err := officerMgr.Switch(context.Background(), entities.KindOfficer); err != nil {
		t.Fatalf("Switch() error = %v", err)
	}
	soldierMgr := sessions.For("u2")
	if _, err := soldierMgr.Switch(context.Background(), entities.KindSoldier); err != nil {
		t.Fatalf("Switch() error = %v", err)
	}

	// Another instance adds an officer field; the feed delivers the kind
	repo.seed(&entities.FieldDefinition{
		EntityKind: entities.KindOfficer, Name: "division", Label: "Division", Type: entities.FieldText,
	})
	repo.seed(&entities.FieldDefinition{
		EntityKind: entities.KindSoldier, Name: "rank", Label: "Rank", Type: entities.FieldText,
	})
	sessions.Invalidate(entities.KindOfficer)

	if _, loaded, _ := officerMgr.Current(); len(loaded.Custom) != 2 {
		t.Errorf("officer session has %d custom fields after refresh, want 2", len(loaded.Custom))
	}
	if _, loaded, _ := soldierMgr.Current(); len(loaded.Custom) != 1 {
		t.Errorf("soldier session has %d custom fields, want its pre-notification 1", len(loaded.Custom))
	}
}

func TestSessions_InvalidateDropsServiceCache(t *testing.T) {
	repo := newFakeFieldRepo()
	repo.seed(&entities.FieldDefinition{
		EntityKind: entities.KindCase, Name: "category", Label: "Category", Type: entities.FieldText,
	})
	gate := access.NewGate()
	svc := NewService(repo, gate, cache.New(time.Minute, false), zerolog.Nop())
	sessions := NewSessions(svc, zerolog.Nop())

	if _, err := svc.Load(context.Background(), entities.KindCase); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	repo.seed(&entities.FieldDefinition{
		EntityKind: entities.KindCase, Name: "severity", Label: "Severity", Type: entities.FieldText,
	})

	// No session manages cases; the notification must still drop the cache
	sessions.Invalidate(entities.KindCase)

	loaded, err := svc.Load(context.Background(), entities.KindCase)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Custom) != 2 {
		t.Errorf("schema after invalidation has %d custom fields, want 2", len(loaded.Custom))
	}
}
