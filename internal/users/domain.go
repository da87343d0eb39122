package users

import (
	"time"

	"github.com/google/uuid"
)

// User represents a portal account joined with its profile and role.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateInput carries the fields accepted by the create functions.
type CreateInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"omitempty,max=40"`
	Role     string `json:"role"`
	// IsActive is honoured by admin-create-user only.
	IsActive *bool `json:"is_active,omitempty"`
}

// UpdateInput carries optional changes; nil fields are left untouched.
type UpdateInput struct {
	UserID   uuid.UUID `json:"user_id" validate:"required"`
	Email    *string   `json:"email,omitempty" validate:"omitempty,email"`
	Password *string   `json:"password,omitempty"`
	FullName *string   `json:"full_name,omitempty" validate:"omitempty,max=200"`
	Phone    *string   `json:"phone,omitempty" validate:"omitempty,max=40"`
	Role     *string   `json:"role,omitempty"`
	IsActive *bool     `json:"is_active,omitempty"`
}

// DeleteInput identifies the account to remove.
type DeleteInput struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// Profile is the row upserted into user_profiles.
type Profile struct {
	UserID   uuid.UUID
	FullName string
	Phone    string
	Email    string
}

// Mode distinguishes the gestor-level functions from the admin-only ones.
type Mode int

const (
	// ModeManager backs create-user / update-user / delete-user.
	ModeManager Mode = iota
	// ModeAdmin backs admin-create-user / admin-update-user.
	ModeAdmin
)
