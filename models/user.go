package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role assigned to a user
type Role string

const (
	RoleDrafter       Role = "drafter"
	RoleAdministrator Role = "administrator"
	RoleDeveloper     Role = "developer"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleDrafter, RoleAdministrator, RoleDeveloper:
		return true
	}
	return false
}

// User represents a user entity
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Actor is the already-authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
}

// IsAdministrator reports whether the actor may act on other users' petitions
func (a Actor) IsAdministrator() bool {
	return a.Role == RoleAdministrator || a.Role == RoleDeveloper
}

// CanAccess reports whether the actor owns the petition or administers the firm
func (a Actor) CanAccess(p *GeneratedPetition) bool {
	if p == nil {
		return false
	}
	return p.UserID == a.UserID || a.IsAdministrator()
}
