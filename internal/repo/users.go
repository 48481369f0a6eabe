package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/DheerG/LogicPull/internal/models"
	"github.com/DheerG/LogicPull/internal/pkg/store"
	"github.com/DheerG/LogicPull/pkg/fault"
)

const userColumns = "id, name, email, group_id, privileges, token_hash"

// Users backs the auth middleware with manager account lookups.
type Users struct {
	store store.Datastorer[models.User]
}

func NewUsers(db *sqlx.DB) *Users {
	return &Users{store: store.NewDataStore[models.User](db, "users")}
}

// GetByTokenHash resolves a bearer token (already hashed) to a user.
func (r *Users) GetByTokenHash(ctx context.Context, hash string) (*models.User, error) {
	u, err := r.store.Get(ctx, "SELECT "+userColumns+" FROM users WHERE token_hash = $1", hash)
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFound("user")
		}
		return nil, fault.Store("loading user", err)
	}
	return u, nil
}
