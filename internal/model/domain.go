package model

import (
	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "ADMIN"
	UserRoleViewer UserRole = "VIEWER"
)

// Principal is the authenticated identity attached to admin requests.
type Principal struct {
	UserID uuid.UUID
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

func (p Principal) IsViewer() bool {
	return p.Role == UserRoleViewer || p.Role == UserRoleAdmin
}
