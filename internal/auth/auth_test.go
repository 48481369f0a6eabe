package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/DheerG/LogicPull/internal/models"
	"github.com/DheerG/LogicPull/pkg/fault"
)

type userSourceFunc func(ctx context.Context, hash string) (*models.User, error)

func (f userSourceFunc) GetByTokenHash(ctx context.Context, hash string) (*models.User, error) {
	return f(ctx, hash)
}

type interviewSourceFunc func(ctx context.Context, id int) (*models.Interview, error)

func (f interviewSourceFunc) GetByID(ctx context.Context, id int) (*models.Interview, error) {
	return f(ctx, id)
}

func TestHashToken(t *testing.T) {
	a := HashToken("tok", "salt")
	if a != HashToken("tok", "salt") {
		t.Error("hashing must be deterministic")
	}
	if a == HashToken("tok", "other-salt") {
		t.Error("different salts must produce different hashes")
	}
	if a == HashToken("other-tok", "salt") {
		t.Error("different tokens must produce different hashes")
	}
	if len(a) != 64 {
		t.Errorf("expected a hex sha256 digest, got %d chars", len(a))
	}
}

func TestValidated(t *testing.T) {
	account := &models.User{ID: 1, Group: 2}
	wantHash := HashToken("good-token", "salt")

	users := userSourceFunc(func(_ context.Context, hash string) (*models.User, error) {
		if hash == wantHash {
			return account, nil
		}
		return nil, fault.NotFound("user")
	})
	chain := NewChain(users, nil, "salt")

	var seen *models.User
	handler := chain.Validated(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFrom(r.Context())
	}))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer wrong", http.StatusUnauthorized},
		{"valid token", "Bearer good-token", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/manager", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if tc.status == http.StatusOK && seen != account {
				t.Error("expected the resolved user in context")
			}
			if tc.status != http.StatusOK && seen != nil {
				t.Error("handler must not run without authentication")
			}
		})
	}
}

func TestValidateInterview(t *testing.T) {
	user := &models.User{ID: 1, Group: 2}
	interviews := interviewSourceFunc(func(_ context.Context, id int) (*models.Interview, error) {
		switch id {
		case 7:
			return &models.Interview{ID: 7, Group: 2}, nil
		case 8:
			return &models.Interview{ID: 8, Group: 3}, nil
		}
		return nil, fault.NotFound("interview")
	})
	chain := NewChain(nil, interviews, "salt")

	var seen *models.Interview
	handler := chain.ValidateInterview(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = InterviewFrom(r.Context())
	}))

	serve := func(id string) *httptest.ResponseRecorder {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/manager/interview/0", nil)
		req = req.WithContext(WithUser(req.Context(), user))

		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := serve("7"); rec.Code != http.StatusOK || seen == nil || seen.ID != 7 {
		t.Errorf("own-group interview should pass through, got %d", rec.Code)
	}

	var missing, foreign *httptest.ResponseRecorder
	for name, id := range map[string]string{
		"missing": "999", "foreign group": "8", "malformed id": "7abc",
	} {
		rec := serve(id)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s interview should 404, got %d", name, rec.Code)
		}
		if seen != nil {
			t.Errorf("%s interview must not reach the handler", name)
		}
		switch name {
		case "missing":
			missing = rec
		case "foreign group":
			foreign = rec
		}
	}
	if missing.Body.String() != foreign.Body.String() {
		t.Error("missing and foreign-group responses must be identical")
	}
}

func TestPrivileges(t *testing.T) {
	handler := Privileges("clone_interview")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(u *models.User) int {
		req := httptest.NewRequest(http.MethodPost, "/manager/interviews/clone/7", nil)
		if u != nil {
			req = req.WithContext(WithUser(req.Context(), u))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := serve(&models.User{Privileges: []string{"clone_interview"}}); code != http.StatusNoContent {
		t.Errorf("privileged user should pass, got %d", code)
	}
	if code := serve(&models.User{Privileges: []string{"add_interview"}}); code != http.StatusForbidden {
		t.Errorf("unprivileged user should 403, got %d", code)
	}
	if code := serve(nil); code != http.StatusForbidden {
		t.Errorf("missing user should 403, got %d", code)
	}
}
