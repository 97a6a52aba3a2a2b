package handlers

import (
	"net/http"
	"testing"

	"github.com/garrisonhq/garrison/internal/entities"
)

func TestOfficerHandler_AnonymousDenied(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/officers", "", nil)
	assertStatus(t, rec, http.StatusForbidden)
}

func TestOfficerHandler_UserCanReadNotWrite(t *testing.T) {
	env := newTestEnv(t)
	user := token(t, "u1", "user@garrison.test", entities.RoleUser)

	rec := env.do(t, http.MethodGet, "/api/v1/officers", user, nil)
	assertStatus(t, rec, http.StatusOK)

	rec = env.do(t, http.MethodPost, "/api/v1/officers", user, map[string]interface{}{"name": "Shaw"})
	assertStatus(t, rec, http.StatusForbidden)
}

func TestOfficerHandler_CreateAndGet(t *testing.T) {
	env := newTestEnv(t)
	admin := token(t, "u1", "admin@garrison.test", entities.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/api/v1/officers", admin, map[string]interface{}{
		"name":     "Shaw",
		"rank":     "captain",
		"division": "north",
	})
	assertStatus(t, rec, http.StatusCreated)

	var created entities.Officer
	decodeBody(t, rec, &created)
	if created.ID == "" {
		t.Fatal("created officer has no id")
	}
	if created.Status != entities.OfficerActive {
		t.Errorf("status = %q, want default active", created.Status)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/officers/"+created.ID, admin, nil)
	assertStatus(t, rec, http.StatusOK)
}

func TestOfficerHandler_Create_InvalidPayload(t *testing.T) {
	env := newTestEnv(t)
	admin := token(t, "u1", "admin@garrison.test", entities.RoleAdmin)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{
			name: "missing name",
			body: map[string]interface{}{"rank": "captain"},
		},
		{
			name: "unknown status",
			body: map[string]interface{}{"name": "Shaw", "status": "retired"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/officers", admin, tt.body)
			assertStatus(t, rec, http.StatusBadRequest)
		})
	}
}

func TestOfficerHandler_CustomValuesValidated(t *testing.T) {
	env := newTestEnv(t)
	admin := token(t, "u1", "admin@garrison.test", entities.RoleAdmin)

	env.fields.seed(&entities.FieldDefinition{
		EntityKind: entities.KindOfficer, Name: "clearance", Label: "Clearance",
		Type: entities.FieldSelect, Options: []string{"secret", "top_secret"},
	})

	rec := env.do(t, http.MethodPost, "/api/v1/officers", admin, map[string]interface{}{
		"name":   "Shaw",
		"custom": map[string]interface{}{"clearance": "public"},
	})
	assertStatus(t, rec, http.StatusBadRequest)

	var resp struct {
		Violations []string `json:"violations"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Violations) != 1 {
		t.Errorf("violations = %v, want exactly one", resp.Violations)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/officers", admin, map[string]interface{}{
		"name":   "Shaw",
		"custom": map[string]interface{}{"clearance": "secret"},
	})
	assertStatus(t, rec, http.StatusCreated)
}

func TestOfficerHandler_CustomValues_UnknownKeyRejected(t *testing.T) {
	env := newTestEnv(t)
	admin := token(t, "u1", "admin@garrison.test", entities.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/api/v1/officers", admin, map[string]interface{}{
		"name":   "Shaw",
		"custom": map[string]interface{}{"ghost": "value"},
	})
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestOfficerHandler_UpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	admin := token(t, "u1", "admin@garrison.test", entities.RoleAdmin)

	env.officers.officers["o1"] = &entities.Officer{
		ID: "o1", Name: "Shaw", Status: entities.OfficerActive,
	}
	env.officers.nextID = 1

	rec := env.do(t, http.MethodPut, "/api/v1/officers/o1", admin, map[string]interface{}{
		"name":   "Shaw",
		"rank":   "major",
		"status": "active",
	})
	assertStatus(t, rec, http.StatusOK)
	if env.officers.officers["o1"].Rank != "major" {
		t.Errorf("rank = %q, want major", env.officers.officers["o1"].Rank)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/officers/o1", admin, nil)
	assertStatus(t, rec, http.StatusNoContent)

	rec = env.do(t, http.MethodGet, "/api/v1/officers/o1", admin, nil)
	assertStatus(t, rec, http.StatusNotFound)
}
