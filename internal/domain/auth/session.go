package auth

import "time"

// Session is the verified identity behind a request. It is derived from a
// token and passed explicitly to the operations that need it.
type Session struct {
	UserID    string
	Email     string
	IsAdmin   bool
	ExpiresAt time.Time
}

// RequireAdmin returns ErrUnauthenticated for a nil session and ErrForbidden
// for a session without the admin flag.
func RequireAdmin(s *Session) error {
	if s == nil {
		return ErrUnauthenticated
	}
	if !s.IsAdmin {
		return ErrForbidden
	}
	return nil
}
