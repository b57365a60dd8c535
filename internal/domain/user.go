package domain

import "time"

// Role enumerates the roles a helpdesk account can hold.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleITSupport Role = "it_support"
	RoleManager   Role = "manager"
)

// Roles lists every known role.
var Roles = []Role{RoleUser, RoleAdmin, RoleITSupport, RoleManager}

// IsPrivileged reports whether the role grants broad access to tickets the holder does not own.
func (r Role) IsPrivileged() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleITSupport:
		return true
	default:
		return false
	}
}

// CanPostInternalComment reports whether the role may write internal-visibility comments.
func (r Role) CanPostInternalComment() bool {
	return r == RoleAdmin || r == RoleITSupport
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User is an account that can open or work tickets.
type User struct {
	ID           string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     *string   `json:"full_name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
