// Package models defines the server-side records persisted in PostgreSQL.
package models

import (
	"slices"
	"time"
)

// Role is a user's authorization level.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleUser          Role = "user"
)

// User is an account that can sign in to the CMS.
//
// Password holds the argon2id encoded hash. Token is the single live
// access token; nil means no session. Neither is ever serialised.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	Token     *string   `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasRole reports whether u's role is one of roles. An empty roles list
// matches every user.
func (u *User) HasRole(roles []Role) bool {
	if len(roles) == 0 {
		return true
	}
	return slices.Contains(roles, u.Role)
}
