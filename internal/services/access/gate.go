package access

import (
	"fmt"
	"sync"

	"github.com/garrisonhq/garrison/internal/entities"
)

// Gate is the single source of truth for "can this actor do X to resource Y".
// It holds the role-to-permissions table, seeded with defaults and replaceable
// at runtime. Checks are pure and never error: absence of a grant is the only
// deny (fail closed).
type Gate struct {
	mu    sync.RWMutex
	table map[entities.Role][]entities.Permission
}

// NewGate creates a Gate seeded with the default permission table
func NewGate() *Gate {
	return &Gate{table: defaultPermissions()}
}

// defaultPermissions returns the seeded role table:
// developer gets full wildcard access including field management,
// admin gets wildcard CRUD, user gets wildcard read.
func defaultPermissions() map[entities.Role][]entities.Permission {
	return map[entities.Role][]entities.Permission{
		entities.RoleDeveloper: {
			{
				Resource: entities.ResourceWildcard,
				Actions: []entities.Action{
					entities.ActionCreate, entities.ActionRead, entities.ActionUpdate,
					entities.ActionDelete, entities.ActionManageFields,
				},
			},
		},
		entities.RoleAdmin: {
			{
				Resource: entities.ResourceWildcard,
				Actions: []entities.Action{
					entities.ActionCreate, entities.ActionRead, entities.ActionUpdate, entities.ActionDelete,
				},
			},
		},
		entities.RoleUser: {
			{
				Resource: entities.ResourceWildcard,
				Actions:  []entities.Action{entities.ActionRead},
			},
		},
	}
}

// Resolve snapshots the current permission list for role into an Actor.
// The snapshot is stable for the session: later UpdatePermissions calls do
// not alter an Actor that has already been resolved.
func (g *Gate) Resolve(userID, email string, role entities.Role) *entities.Actor {
	g.mu.RLock()
	perms := g.table[role]
	g.mu.RUnlock()

	snapshot := make([]entities.Permission, len(perms))
	copy(snapshot, perms)

	return &entities.Actor{
		ID:          userID,
		Email:       email,
		Role:        role,
		Permissions: snapshot,
	}
}

// HasPermission reports whether the actor may perform action on resource.
// A nil actor is always denied.
func (g *Gate) HasPermission(actor *entities.Actor, resource string, action entities.Action) bool {
	return actor.Can(resource, action)
}

// CanManageFields reports whether the actor may manage field definitions for
// an entity kind. Developers always may, regardless of the permission table:
// the role check short-circuits before any table lookup. This is a deliberate
// escape hatch carried over from the original product behavior.
func (g *Gate) CanManageFields(actor *entities.Actor, kind entities.EntityKind) bool {
	if actor == nil {
		return false
	}
	if actor.Role == entities.RoleDeveloper {
		return true
	}
	return actor.Can(string(kind), entities.ActionManageFields)
}

// UpdatePermissions replaces the stored permission list for a role.
// Only future Resolve calls observe the new list.
func (g *Gate) UpdatePermissions(role entities.Role, perms []entities.Permission) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role: %q", role)
	}
	for i := range perms {
		if err := perms[i].Validate(); err != nil {
			return fmt.Errorf("permission %d: %w", i, err)
		}
	}

	replacement := make([]entities.Permission, len(perms))
	copy(replacement, perms)

	g.mu.Lock()
	g.table[role] = replacement
	g.mu.Unlock()

	return nil
}

// Permissions returns a copy of the stored permission list for a role
func (g *Gate) Permissions(role entities.Role) []entities.Permission {
	g.mu.RLock()
	defer g.mu.RUnlock()

	perms := make([]entities.Permission, len(g.table[role]))
	copy(perms, g.table[role])
	return perms
}
