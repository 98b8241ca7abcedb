package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is an authenticated dashboard session issued after a password login
type Session struct {
	ID        uuid.UUID `json:"id"`
	Subject   string    `json:"subject"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the session has passed its expiry
func (s *Session) IsExpired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}
