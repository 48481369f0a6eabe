// Package auth implements the manager's authorization chain: bearer
// token validation, interview/group scoping, and per-privilege guards.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/DheerG/LogicPull/internal/middleware"
	"github.com/DheerG/LogicPull/internal/models"
	"github.com/DheerG/LogicPull/internal/validate"
	"github.com/DheerG/LogicPull/pkg/fault"
)

type contextKey int

const (
	userKey contextKey = iota
	interviewKey
)

// UserSource resolves bearer tokens to manager accounts.
type UserSource interface {
	GetByTokenHash(ctx context.Context, hash string) (*models.User, error)
}

// InterviewSource loads interviews for the group-scoping check.
type InterviewSource interface {
	GetByID(ctx context.Context, id int) (*models.Interview, error)
}

// HashToken derives the stored lookup hash for a bearer token.
// HMAC keyed by a server-side salt, so a leaked users table alone
// cannot be replayed as tokens.
func HashToken(token, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

// Chain bundles the middleware stack every manager route runs through.
type Chain struct {
	users      UserSource
	interviews InterviewSource
	salt       string
}

func NewChain(users UserSource, interviews InterviewSource, salt string) *Chain {
	return &Chain{users: users, interviews: interviews, salt: salt}
}

// Validated requires a valid bearer token and stores the resolved user
// in the request context.
func (c *Chain) Validated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "authentication required")
			return
		}

		user, err := c.users.GetByTokenHash(r.Context(), HashToken(token, c.salt))
		if err != nil {
			if fault.IsNotFound(err) {
				middleware.ErrorResponse(w, http.StatusUnauthorized, "authentication required")
				return
			}
			middleware.WriteFault(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ValidateInterview loads the {id} interview and checks it belongs to
// the caller's group. A missing interview and a foreign-group interview
// answer identically.
func (c *Chain) ValidateInterview(next http.Handler) http.Handler {
	return c.ValidateInterviewParam("id")(next)
}

// ValidateInterviewParam is ValidateInterview for routes where the
// interview id sits under a different URL parameter name, like the
// download path.
func (c *Chain) ValidateInterviewParam(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return c.validateInterview(param, next)
	}
}

func (c *Chain) validateInterview(param string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, param)
		if !validate.Integer(validate.Clean(raw)) {
			middleware.NotFound(w)
			return
		}
		id, _ := strconv.Atoi(raw)

		iv, err := c.interviews.GetByID(r.Context(), id)
		if err != nil {
			middleware.WriteFault(w, r, err)
			return
		}

		user := UserFrom(r.Context())
		if user == nil || iv.Group != user.Group {
			middleware.NotFound(w)
			return
		}

		ctx := context.WithValue(r.Context(), interviewKey, iv)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Privileges gates a route on one named capability.
func Privileges(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFrom(r.Context())
			if user == nil || !user.HasPrivilege(name) {
				middleware.ErrorResponse(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFrom returns the authenticated user, or nil outside the chain.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// InterviewFrom returns the interview loaded by ValidateInterview.
func InterviewFrom(ctx context.Context) *models.Interview {
	iv, _ := ctx.Value(interviewKey).(*models.Interview)
	return iv
}

// WithUser and WithInterview exist for handler tests that bypass the
// middleware chain.

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func WithInterview(ctx context.Context, iv *models.Interview) context.Context {
	return context.WithValue(ctx, interviewKey, iv)
}
