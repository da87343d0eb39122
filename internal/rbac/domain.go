package rbac

import (
	"time"

	"github.com/google/uuid"
)

// UserRole links a user to one of the portal roles.
type UserRole struct {
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleCount reports how many users carry a role.
type RoleCount struct {
	Role  string `json:"role"`
	Users int    `json:"users"`
}
