package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/ristora/fronthouse/internal/cache"
	"github.com/ristora/fronthouse/internal/errors"
	"github.com/ristora/fronthouse/internal/logging"
	"github.com/ristora/fronthouse/internal/middleware"
	"github.com/ristora/fronthouse/services/floor"
	"github.com/ristora/fronthouse/services/staff"
	"github.com/ristora/fronthouse/supabase/client"
)

// =============================================================================
// Test Helpers
// =============================================================================

type floorStore struct {
	tables map[int64]*floor.Table
	nextID int64
}

func (s *floorStore) ListTables(ctx context.Context) ([]floor.Table, error) {
	out := make([]floor.Table, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, *t)
	}
	return out, nil
}

func (s *floorStore) GetTable(ctx context.Context, id int64) (*floor.Table, error) {
	t, ok := s.tables[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("tables %d not found", id))
	}
	copy := *t
	return &copy, nil
}

func (s *floorStore) CreateTable(ctx context.Context, fields map[string]any) (*floor.Table, error) {
	t := &floor.Table{
		ID:       s.nextID,
		Number:   fields["number"].(int),
		Capacity: fields["capacity"].(int),
		Status:   fields["status"].(floor.TableStatus),
	}
	s.nextID++
	s.tables[t.ID] = t
	copy := *t
	return &copy, nil
}

func (s *floorStore) UpdateTable(ctx context.Context, id int64, fields map[string]any) (*floor.Table, error) {
	t, ok := s.tables[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("tables %d not found", id))
	}
	if v, ok := fields["status"]; ok {
		t.Status = v.(floor.TableStatus)
	}
	copy := *t
	return &copy, nil
}

func (s *floorStore) DeleteTable(ctx context.Context, id int64) error {
	delete(s.tables, id)
	return nil
}

type profileStore struct {
	profiles map[string]*staff.Profile
}

func (s *profileStore) GetProfile(ctx context.Context, id string) (*staff.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, errors.NotFound("profile " + id + " not found")
	}
	copy := *p
	return &copy, nil
}

func (s *profileStore) ListByRole(ctx context.Context, role staff.Role) ([]staff.Profile, error) {
	var out []staff.Profile
	for _, p := range s.profiles {
		if p.Role == role {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *profileStore) InsertProfile(ctx context.Context, fields map[string]any) (*staff.Profile, error) {
	p := &staff.Profile{ID: fields["id"].(string), Role: fields["role"].(staff.Role)}
	s.profiles[p.ID] = p
	copy := *p
	return &copy, nil
}

func (s *profileStore) UpdateProfile(ctx context.Context, id string, fields map[string]any) (*staff.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, errors.NotFound("profile " + id + " not found")
	}
	if v, ok := fields["role"]; ok {
		p.Role = v.(staff.Role)
	}
	copy := *p
	return &copy, nil
}

func (s *profileStore) DeleteProfile(ctx context.Context, id string) error {
	delete(s.profiles, id)
	return nil
}

type stubAuth struct {
	signIns  int
	signOuts int
	fail     bool
}

func (a *stubAuth) SignIn(ctx context.Context, email, password string) (*client.AuthResponse, error) {
	a.signIns++
	if a.fail {
		return nil, fmt.Errorf("invalid login credentials")
	}
	return &client.AuthResponse{AccessToken: "token", User: &client.User{ID: "user-1", Email: email}}, nil
}

func (a *stubAuth) SignOut(ctx context.Context, accessToken string) error {
	a.signOuts++
	return nil
}

type fixture struct {
	router   *mux.Router
	auth     *stubAuth
	profiles *profileStore
	tables   *floorStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logging.Nop()

	tables := &floorStore{tables: make(map[int64]*floor.Table), nextID: 1}
	profiles := &profileStore{profiles: map[string]*staff.Profile{
		"admin-1":  {ID: "admin-1", Role: staff.RoleAdmin},
		"waiter-1": {ID: "waiter-1", Role: staff.RoleWaiter},
	}}
	auth := &stubAuth{}

	services := Services{
		Floor: floor.NewWithStore(tables, logger),
		Staff: staff.NewWithStore(profiles, nil, logger),
	}

	h := NewHandler(services, auth, cache.New(), logger)
	router := mux.NewRouter()
	h.Routes(router)
	return &fixture{router: router, auth: auth, profiles: profiles, tables: tables}
}

func (f *fixture) do(method, path, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req = req.WithContext(middleware.WithUser(req.Context(), &middleware.AuthUser{ID: userID}))
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// =============================================================================
// Tests
// =============================================================================

func TestAnonymousRequestsRejected(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/tables", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestListTables(t *testing.T) {
	f := newFixture(t)
	f.tables.tables[1] = &floor.Table{ID: 1, Number: 1, Capacity: 4, Status: floor.TableStatusFree}

	rec := f.do(http.MethodGet, "/tables", "waiter-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var tables []floor.Table
	if err := json.Unmarshal(rec.Body.Bytes(), &tables); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("tables = %d, want 1", len(tables))
	}
}

func TestCreateTable(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/tables", "waiter-1", map[string]any{
		"number":   5,
		"capacity": 4,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSetTableStatusValidationSurfaced(t *testing.T) {
	f := newFixture(t)
	f.tables.tables[1] = &floor.Table{ID: 1, Status: floor.TableStatusFree}

	rec := f.do(http.MethodPut, "/tables/1/status", "waiter-1", map[string]any{"status": "flooded"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStaffAdminGating(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/staff/waiters", "waiter-1", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("waiter status = %d, want 403", rec.Code)
	}

	rec = f.do(http.MethodGet, "/staff/waiters", "admin-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}
}

func TestFirstLoginCreatesProfile(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/me", "new-user", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var profile staff.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile.Role != staff.RoleWaiter {
		t.Fatalf("role = %s, want waiter", profile.Role)
	}
}

func TestSignIn(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/auth/signin", "", map[string]string{
		"email":    "w@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	f.auth.fail = true
	rec = f.do(http.MethodPost, "/auth/signin", "", map[string]string{
		"email":    "w@example.com",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
