package models

import "github.com/lib/pq"

// A User is a manager account. Privileges gate individual operations;
// Group scopes which interviews and outputs the user can see.
type User struct {
	ID         int            `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	Email      string         `db:"email" json:"email"`
	Group      int            `db:"group_id" json:"group"`
	Privileges pq.StringArray `db:"privileges" json:"privileges"`
	TokenHash  string         `db:"token_hash" json:"-"`
}

// HasPrivilege reports whether the user carries the named privilege.
func (u *User) HasPrivilege(name string) bool {
	for _, p := range u.Privileges {
		if p == name {
			return true
		}
	}
	return false
}
