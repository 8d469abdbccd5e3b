package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/botgpt/botgpt/internal/log"
	"github.com/botgpt/botgpt/internal/store"
)

// mockUserStore implements UserStore.
type mockUserStore struct {
	createErr error
	listErr   error
	users     []*store.User
}

func (m *mockUserStore) CreateUser(_ context.Context, name, email string) (*store.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &store.User{ID: "u1", Name: name, Email: email}, nil
}

func (m *mockUserStore) ListUsers(context.Context) ([]*store.User, error) {
	return m.users, m.listErr
}

func newUserMux(st UserStore) *http.ServeMux {
	mux := http.NewServeMux()
	NewUserHandler(st, log.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		store      *mockUserStore
		wantStatus int
	}{
		{
			name:       "created",
			body:       `{"name":"Ann","email":"ann@example.com"}`,
			store:      &mockUserStore{},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed json",
			body:       `{"name":`,
			store:      &mockUserStore{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing name",
			body:       `{"email":"ann@example.com"}`,
			store:      &mockUserStore{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid email",
			body:       `{"name":"Ann","email":"not-an-email"}`,
			store:      &mockUserStore{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate email",
			body:       `{"name":"Ann","email":"ann@example.com"}`,
			store:      &mockUserStore{createErr: store.ErrEmailTaken},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newUserMux(tt.store)
			req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantStatus == http.StatusCreated {
				var u store.User
				if err := json.NewDecoder(rec.Body).Decode(&u); err != nil {
					t.Fatalf("decoding response: %v", err)
				}
				if u.ID == "" || u.Email != "ann@example.com" {
					t.Errorf("unexpected user payload: %+v", u)
				}
			}
		})
	}
}

func TestListUsers(t *testing.T) {
	mux := newUserMux(&mockUserStore{users: []*store.User{
		{ID: "u1", Name: "Ann", Email: "ann@example.com"},
	}})
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Users []*store.User `json:"users"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Users) != 1 || resp.Users[0].ID != "u1" {
		t.Errorf("unexpected users payload: %+v", resp.Users)
	}
}

func TestListUsersEmpty(t *testing.T) {
	mux := newUserMux(&mockUserStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"users":[]`) {
		t.Errorf("empty list should encode as [], got %s", rec.Body)
	}
}
