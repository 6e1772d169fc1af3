package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination mocks/mock_user_repository.go -package mocks github.com/Planora/planora/internal/domain UserRepository

// Key for storing the authenticated user in request context
type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	AuthUserKey contextKey = "auth_user"
)

// User mirrors an identity-provider user. The ID is the provider's
// immutable identifier; rows are only written by the identity sync,
// never by domain API calls.
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name,omitempty" db:"name"`
	ImageURL  string    `json:"image,omitempty" db:"image_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type UserRepository interface {
	// Create inserts a new user; returns ConflictError if the ID exists
	Create(ctx context.Context, user *User) error

	// Update updates an existing user; returns ErrNotFound if absent
	Update(ctx context.Context, user *User) error

	// Delete removes a user by ID; memberships cascade at the database level
	Delete(ctx context.Context, id string) error

	// GetByID retrieves a user by the provider's identifier
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email address
	GetByEmail(ctx context.Context, email string) (*User, error)
}
