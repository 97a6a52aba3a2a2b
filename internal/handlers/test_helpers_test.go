package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/garrisonhq/garrison/internal/entities"
	"github.com/garrisonhq/garrison/internal/repositories"
	"github.com/garrisonhq/garrison/internal/services/access"
	"github.com/garrisonhq/garrison/internal/services/schema"
)

const testSecret = "test-signing-secret"

// === in-memory fakes shared by the handler tests ===

type fakeFieldRepo struct {
	fields map[string]*entities.FieldDefinition
	nextID int
}

func newFakeFieldRepo() *fakeFieldRepo {
	return &fakeFieldRepo{fields: make(map[string]*entities.FieldDefinition)}
}

func (f *fakeFieldRepo) seed(field *entities.FieldDefinition) string {
	f.nextID++
	id := fmt.Sprintf("f%d", f.nextID)
	copied := *field
	copied.ID = id
	f.fields[id] = &copied
	return id
}

func (f *fakeFieldRepo) List(ctx context.Context, kind entities.EntityKind, system bool) ([]*entities.FieldDefinition, error) {
	var out []*entities.FieldDefinition
	for i := 1; i <= f.nextID; i++ {
		field, ok := f.fields[fmt.Sprintf("f%d", i)]
		if ok && field.EntityKind == kind && field.System == system {
			out = append(out, field)
		}
	}
	return out, nil
}

func (f *fakeFieldRepo) Get(ctx context.Context, id string) (*entities.FieldDefinition, error) {
	field, ok := f.fields[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return field, nil
}

func (f *fakeFieldRepo) Create(ctx context.Context, field *entities.FieldDefinition) (string, error) {
	for _, existing := range f.fields {
		if existing.EntityKind == field.EntityKind && existing.Name == field.Name && existing.System == field.System {
			return "", repositories.ErrDuplicateField
		}
	}
	return f.seed(field), nil
}

func (f *fakeFieldRepo) Update(ctx context.Context, field *entities.FieldDefinition) error {
	if _, ok := f.fields[field.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *field
	f.fields[field.ID] = &copied
	return nil
}

func (f *fakeFieldRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.fields[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.fields, id)
	return nil
}

type fakeUserRepo struct {
	users map[string]*entities.User // keyed by email
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entities.User) (string, error) {
	f.users[user.Email] = user
	return user.ID, nil
}

type fakeRoleRepo struct {
	roles map[string]entities.Role // keyed by user id
}

func (f *fakeRoleRepo) GetRole(ctx context.Context, userID string) (entities.Role, error) {
	role, ok := f.roles[userID]
	if !ok {
		return entities.RoleUser, nil
	}
	return role, nil
}

func (f *fakeRoleRepo) SetRole(ctx context.Context, userID string, role entities.Role) error {
	f.roles[userID] = role
	return nil
}

type fakeOfficerRepo struct {
	officers map[string]*entities.Officer
	nextID   int
}

func (f *fakeOfficerRepo) List(ctx context.Context, filter repositories.OfficerFilter) ([]*entities.Officer, error) {
	var out []*entities.Officer
	for _, o := range f.officers {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOfficerRepo) Get(ctx context.Context, id string) (*entities.Officer, error) {
	o, ok := f.officers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return o, nil
}

func (f *fakeOfficerRepo) Create(ctx context.Context, officer *entities.Officer) (string, error) {
	f.nextID++
	id := fmt.Sprintf("o%d", f.nextID)
	copied := *officer
	copied.ID = id
	f.officers[id] = &copied
	return id, nil
}

func (f *fakeOfficerRepo) Update(ctx context.Context, officer *entities.Officer) error {
	if _, ok := f.officers[officer.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *officer
	f.officers[officer.ID] = &copied
	return nil
}

func (f *fakeOfficerRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.officers[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.officers, id)
	return nil
}

type fakeSoldierRepo struct{}

func (fakeSoldierRepo) List(ctx context.Context, filter repositories.SoldierFilter) ([]*entities.Soldier, error) {
	return nil, nil
}
func (fakeSoldierRepo) Get(ctx context.Context, id string) (*entities.Soldier, error) {
	return nil, repositories.ErrNotFound
}
func (fakeSoldierRepo) Create(ctx context.Context, soldier *entities.Soldier) (string, error) {
	return "s1", nil
}
func (fakeSoldierRepo) Update(ctx context.Context, soldier *entities.Soldier) error { return nil }
func (fakeSoldierRepo) Delete(ctx context.Context, id string) error                 { return nil }

type fakeCaseRepo struct{}

func (fakeCaseRepo) List(ctx context.Context, filter repositories.CaseFilter) ([]*entities.Case, error) {
	return nil, nil
}
func (fakeCaseRepo) Get(ctx context.Context, id string) (*entities.Case, error) {
	return nil, repositories.ErrNotFound
}
func (fakeCaseRepo) Create(ctx context.Context, c *entities.Case) (string, error) { return "c1", nil }
func (fakeCaseRepo) Update(ctx context.Context, c *entities.Case) error           { return nil }
func (fakeCaseRepo) Delete(ctx context.Context, id string) error                  { return nil }

type fakeAnnouncementRepo struct {
	announcements map[string]*entities.Announcement
	nextID        int
}

func (f *fakeAnnouncementRepo) List(ctx context.Context) ([]*entities.Announcement, error) {
	var out []*entities.Announcement
	for _, a := range f.announcements {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAnnouncementRepo) Get(ctx context.Context, id string) (*entities.Announcement, error) {
	a, ok := f.announcements[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return a, nil
}

func (f *fakeAnnouncementRepo) Create(ctx context.Context, a *entities.Announcement) (string, error) {
	f.nextID++
	id := fmt.Sprintf("a%d", f.nextID)
	copied := *a
	copied.ID = id
	f.announcements[id] = &copied
	return id, nil
}

func (f *fakeAnnouncementRepo) Update(ctx context.Context, a *entities.Announcement) error {
	if _, ok := f.announcements[a.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *a
	f.announcements[a.ID] = &copied
	return nil
}

func (f *fakeAnnouncementRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.announcements[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.announcements, id)
	return nil
}

// === test environment ===

type testEnv struct {
	router   *gin.Engine
	gate     *access.Gate
	fields   *fakeFieldRepo
	sessions *schema.Sessions
	users    *fakeUserRepo
	roles    *fakeRoleRepo
	officers *fakeOfficerRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gate := access.NewGate()
	fields := newFakeFieldRepo()
	fields.seed(&entities.FieldDefinition{
		EntityKind: entities.KindOfficer, Name: "name", Label: "Name",
		Type: entities.FieldText, Required: true, System: true,
	})
	fields.seed(&entities.FieldDefinition{
		EntityKind: entities.KindOfficer, Name: "rank", Label: "Rank",
		Type: entities.FieldText, System: true,
	})

	users := &fakeUserRepo{users: make(map[string]*entities.User)}
	roles := &fakeRoleRepo{roles: make(map[string]entities.Role)}
	officers := &fakeOfficerRepo{officers: make(map[string]*entities.Officer)}

	schemas := schema.NewService(fields, gate, nil, zerolog.Nop())
	sessions := schema.NewSessions(schemas, zerolog.Nop())

	router := NewRouter(RouterConfig{
		Gate:          gate,
		Schemas:       schemas,
		Sessions:      sessions,
		Users:         users,
		Roles:         roles,
		Officers:      officers,
		Soldiers:      fakeSoldierRepo{},
		Cases:         fakeCaseRepo{},
		Announcements: &fakeAnnouncementRepo{announcements: make(map[string]*entities.Announcement)},
		JWTSecret:     testSecret,
		TokenTTL:      time.Hour,
		Logger:        zerolog.Nop(),
	})

	return &testEnv{
		router:   router,
		gate:     gate,
		fields:   fields,
		sessions: sessions,
		users:    users,
		roles:    roles,
		officers: officers,
	}
}

// token signs a session token the way the login handler does
func token(t *testing.T, userID, email string, role entities.Role) string {
	t.Helper()
	now := time.Now()
	claims := sessionClaims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

// do performs a request against the test router and returns the recorder
func (e *testEnv) do(t *testing.T, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}
