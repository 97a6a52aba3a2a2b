package schema

import (
	"context"
	"sync"

	"github.com/garrisonhq/garrison/internal/entities"
)

// Manager holds the per-session field management state for one entity kind
// at a time: the current schema, a loading flag, at most one field being
// edited and at most one in-progress creation draft.
//
// Loads are tagged with a generation counter. A response that resolves after
// a newer Switch has been issued is discarded instead of overwriting the
// newer kind's schema, so rapid kind switching cannot leak a stale schema
// across kinds even though in-flight fetches are never cancelled.
type Manager struct {
	svc *Service

	mu         sync.Mutex
	kind       entities.EntityKind
	schema     *EntitySchema
	loading    bool
	generation uint64
	editing    *entities.FieldDefinition
	draft      *entities.FieldDefinition
}

// NewManager creates a Manager bound to a schema Service
func NewManager(svc *Service) *Manager {
	return &Manager{svc: svc}
}

// emptyDraft returns a fresh creation draft carrying the given kind
func emptyDraft(kind entities.EntityKind) *entities.FieldDefinition {
	return &entities.FieldDefinition{
		EntityKind: kind,
		Type:       entities.FieldText,
	}
}

// Switch changes the active entity kind and loads its schema. Any in-progress
// editing or draft state is discarded without confirmation. If a newer Switch
// happens while this load is in flight, the late result is dropped and the
// newer kind's schema is returned by its own call.
func (m *Manager) Switch(ctx context.Context, kind entities.EntityKind) (*EntitySchema, error) {
	m.mu.Lock()
	m.kind = kind
	m.editing = nil
	m.draft = emptyDraft(kind)
	m.loading = true
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	loaded, err := m.svc.Load(ctx, kind)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		// A newer switch superseded this load; do not overwrite its state
		return loaded, err
	}
	m.loading = false
	if err == nil {
		m.schema = loaded
	}
	return loaded, err
}

// Invalidate re-fetches the current kind's schema. Used by the realtime
// change feed; races with Switch are resolved by the generation counter.
// Unlike Switch, editing and draft state survive an invalidation.
func (m *Manager) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	kind := m.kind
	if kind == "" {
		m.mu.Unlock()
		return nil
	}
	m.loading = true
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	m.svc.Invalidate(kind)
	loaded, err := m.svc.Load(ctx, kind)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return err
	}
	m.loading = false
	if err == nil {
		m.schema = loaded
	}
	return err
}

// Current returns the active kind and its last loaded schema
func (m *Manager) Current() (entities.EntityKind, *EntitySchema, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kind, m.schema, m.loading
}

// StartEdit places a field in the editing slot
func (m *Manager) StartEdit(field *entities.FieldDefinition) {
	m.mu.Lock()
	m.editing = field
	m.mu.Unlock()
}

// Editing returns the field currently being edited, or nil
func (m *Manager) Editing() *entities.FieldDefinition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editing
}

// Draft returns the in-progress creation draft
func (m *Manager) Draft() *entities.FieldDefinition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// SetDraft replaces the creation draft
func (m *Manager) SetDraft(draft *entities.FieldDefinition) {
	m.mu.Lock()
	m.draft = draft
	m.mu.Unlock()
}

// CreateFromDraft persists the current draft. On success the draft resets to
// an empty template carrying the same kind and the fresh schema is stored.
func (m *Manager) CreateFromDraft(ctx context.Context, actor *entities.Actor) (*EntitySchema, error) {
	m.mu.Lock()
	draft := m.draft
	kind := m.kind
	gen := m.generation
	m.mu.Unlock()
	if draft == nil {
		draft = emptyDraft(kind)
	}

	loaded, err := m.svc.CreateField(ctx, actor, draft)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen == m.generation {
		m.schema = loaded
		m.draft = emptyDraft(kind)
	}
	return loaded, nil
}

// ApplyEdit persists the editing slot's field and clears the slot.
// A no-op when nothing is being edited.
func (m *Manager) ApplyEdit(ctx context.Context, actor *entities.Actor) (*EntitySchema, error) {
	m.mu.Lock()
	editing := m.editing
	gen := m.generation
	m.mu.Unlock()
	if editing == nil {
		return nil, nil
	}

	loaded, err := m.svc.UpdateField(ctx, actor, editing)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.editing = nil
	if gen == m.generation {
		m.schema = loaded
	}
	return loaded, nil
}

// DeleteField removes a custom field and refreshes the stored schema
func (m *Manager) DeleteField(ctx context.Context, actor *entities.Actor, id string) (*EntitySchema, error) {
	m.mu.Lock()
	gen := m.generation
	m.mu.Unlock()

	loaded, err := m.svc.DeleteField(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen == m.generation {
		m.schema = loaded
	}
	return loaded, nil
}
