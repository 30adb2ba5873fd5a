package domain

import "time"

// Role distinguishes portal users from the administrator.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// UserProfile holds per-identity display and contact attributes. Created
// lazily on the first authenticated call; the identity provider owns the
// credentials, this record only mirrors display data.
type UserProfile struct {
	ID        string
	Name      string
	Email     string
	Mobile    *string
	Education string
	College   *string
	Role      Role
	Onboarded bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the profile carries the administrator role.
func (p *UserProfile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
