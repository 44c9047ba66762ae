package domain

import "time"

// Role distinguishes regular employees from IT-support staff.
type Role string

const (
	RoleEmployee  Role = "EMPLOYEE"
	RoleITSupport Role = "IT_SUPPORT"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleITSupport:
		return true
	}
	return false
}

// User is an account that can file or triage tickets.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// IsSupport reports whether the user holds the privileged triage role.
func (u *User) IsSupport() bool {
	return u != nil && u.Role == RoleITSupport
}
