// Package auth issues and verifies storefront sessions.
//
// A user registers or logs in with an email and password and receives a
// signed session token. The token carries the user id, email and admin flag
// and is verified without any server-side lookup.
package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrDuplicateEmail is returned when registering an email that is taken.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrInvalidCredentials is returned by Login for an unknown email and
	// for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned when a session token is missing,
	// malformed, badly signed or expired.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when a valid session lacks admin rights.
	ErrForbidden = errors.New("admin privileges required")
	// ErrUserNotFound is returned by repositories when no user matches.
	ErrUserNotFound = errors.New("user not found")
)

// User is a registered storefront account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// AdminDecision decides the admin flag of a new user given the number of
// users that already exist.
type AdminDecision func(existingUsers int64) bool

// Repository persists users.
type Repository interface {
	// Create stores u. decide is evaluated in the same transaction that
	// inserts the row, with registrations serialized, and its result is
	// written to u.IsAdmin. Returns ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, u *User, decide AdminDecision) error
	// FindByEmail looks a user up by email, ignoring case.
	FindByEmail(ctx context.Context, email string) (*User, error)
}
