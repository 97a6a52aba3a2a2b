package access

import (
	"testing"

	"github.com/garrisonhq/garrison/internal/entities"
)

func TestGate_HasPermission(t *testing.T) {
	gate := NewGate()

	tests := []struct {
		name     string
		role     entities.Role
		resource string
		action   entities.Action
		want     bool
	}{
		{"user can read any resource", entities.RoleUser, "case", entities.ActionRead, true},
		{"user cannot create", entities.RoleUser, "case", entities.ActionCreate, false},
		{"user cannot manage fields", entities.RoleUser, "case", entities.ActionManageFields, false},
		{"admin can create", entities.RoleAdmin, "officer", entities.ActionCreate, true},
		{"admin can delete", entities.RoleAdmin, "soldier", entities.ActionDelete, true},
		{"admin cannot manage fields", entities.RoleAdmin, "officer", entities.ActionManageFields, false},
		{"developer can manage fields", entities.RoleDeveloper, "officer", entities.ActionManageFields, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := gate.Resolve("u1", "u1@example.com", tt.role)
			if got := gate.HasPermission(actor, tt.resource, tt.action); got != tt.want {
				t.Errorf("HasPermission(%s, %q, %q) = %v, want %v", tt.role, tt.resource, tt.action, got, tt.want)
			}
		})
	}
}

func TestGate_HasPermission_NoActor(t *testing.T) {
	gate := NewGate()
	if gate.HasPermission(nil, "case", entities.ActionRead) {
		t.Error("HasPermission(nil actor) = true, want false")
	}
}

func TestGate_HasPermission_SpecificResourceGrant(t *testing.T) {
	gate := NewGate()
	if err := gate.UpdatePermissions(entities.RoleUser, []entities.Permission{
		{Resource: "*", Actions: []entities.Action{entities.ActionRead}},
	}); err != nil {
		t.Fatalf("UpdatePermissions() error = %v", err)
	}

	actor := gate.Resolve("u1", "u1@example.com", entities.RoleUser)

	if gate.HasPermission(actor, "case", entities.ActionManageFields) {
		t.Error("wildcard read grant must not satisfy manage_fields")
	}
	if !gate.HasPermission(actor, "case", entities.ActionRead) {
		t.Error("wildcard read grant must satisfy read on case")
	}
}

// Developers bypass the permission table entirely for field management.
// Even when the table grants a developer nothing at all, CanManageFields
// returns true. This is deliberate product behavior, not a bug: the role
// name is checked before any table lookup.
func TestGate_CanManageFields_DeveloperBypass(t *testing.T) {
	gate := NewGate()
	if err := gate.UpdatePermissions(entities.RoleDeveloper, []entities.Permission{
		{Resource: "announcement", Actions: []entities.Action{entities.ActionRead}},
	}); err != nil {
		t.Fatalf("UpdatePermissions() error = %v", err)
	}

	// Resolved after the table was emptied of manage_fields grants
	dev := gate.Resolve("d1", "dev@example.com", entities.RoleDeveloper)

	if !gate.CanManageFields(dev, entities.KindOfficer) {
		t.Error("CanManageFields(developer) = false, want true regardless of the table")
	}
}

func TestGate_CanManageFields(t *testing.T) {
	gate := NewGate()

	tests := []struct {
		name  string
		actor *entities.Actor
		kind  entities.EntityKind
		want  bool
	}{
		{
			name:  "nil actor",
			actor: nil,
			kind:  entities.KindOfficer,
			want:  false,
		},
		{
			name:  "admin without manage_fields grant",
			actor: gate.Resolve("a1", "a@example.com", entities.RoleAdmin),
			kind:  entities.KindCase,
			want:  false,
		},
		{
			name: "admin with a specific manage_fields grant",
			actor: &entities.Actor{
				ID:   "a2",
				Role: entities.RoleAdmin,
				Permissions: []entities.Permission{
					{Resource: "case", Actions: []entities.Action{entities.ActionManageFields}},
				},
			},
			kind: entities.KindCase,
			want: true,
		},
		{
			name: "specific grant does not leak to other kinds",
			actor: &entities.Actor{
				ID:   "a2",
				Role: entities.RoleAdmin,
				Permissions: []entities.Permission{
					{Resource: "case", Actions: []entities.Action{entities.ActionManageFields}},
				},
			},
			kind: entities.KindOfficer,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gate.CanManageFields(tt.actor, tt.kind); got != tt.want {
				t.Errorf("CanManageFields() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGate_UpdatePermissions(t *testing.T) {
	gate := NewGate()

	// Actor resolved before the update keeps its snapshot
	before := gate.Resolve("u1", "u1@example.com", entities.RoleUser)

	err := gate.UpdatePermissions(entities.RoleUser, []entities.Permission{
		{Resource: "case", Actions: []entities.Action{entities.ActionRead, entities.ActionCreate}},
	})
	if err != nil {
		t.Fatalf("UpdatePermissions() error = %v", err)
	}

	if gate.HasPermission(before, "case", entities.ActionCreate) {
		t.Error("already-resolved actor observed the new table; snapshots must be stable")
	}

	after := gate.Resolve("u2", "u2@example.com", entities.RoleUser)
	if !gate.HasPermission(after, "case", entities.ActionCreate) {
		t.Error("newly resolved actor did not observe the updated table")
	}
	if gate.HasPermission(after, "officer", entities.ActionRead) {
		t.Error("replaced table still grants the old wildcard read")
	}
}

func TestGate_UpdatePermissions_Invalid(t *testing.T) {
	gate := NewGate()

	tests := []struct {
		name  string
		role  entities.Role
		perms []entities.Permission
	}{
		{"unknown role", "superadmin", nil},
		{"empty resource", entities.RoleUser, []entities.Permission{{Actions: []entities.Action{entities.ActionRead}}}},
		{"no actions", entities.RoleUser, []entities.Permission{{Resource: "case"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := gate.UpdatePermissions(tt.role, tt.perms); err == nil {
				t.Error("UpdatePermissions() error = nil, want error")
			}
		})
	}
}
