package domain

import "time"

// User represents an authenticated user account.
// Users are created at registration and never mutated by the board core.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Timestamps
}

// Session is a revocable login session. The session ID is embedded in the
// bearer token's jti claim; deleting the row invalidates the token.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
