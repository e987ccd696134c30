package domain

import (
	"time"
)

// Session is the per-browser auth state. Authenticated and Credential are
// tracked independently: a credential alone never grants access.
type Session struct {
	ID            string      `json:"id"`
	UserID        int64       `json:"user_id,omitempty"`
	Authenticated bool        `json:"authenticated"`
	Credential    *Credential `json:"credential,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	ExpiresAt     time.Time   `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// HasCredential reports whether a usable credential is attached.
func (s *Session) HasCredential() bool {
	return s != nil && s.Credential.Usable()
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Credential = s.Credential.Clone()
	return &c
}
