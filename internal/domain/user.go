package domain

import (
	"time"
)

// User owns business profiles and, once linked, a listing-API credential.
type User struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	GoogleTokens *Credential `json:"-"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// Credential is the OAuth token material used to call the listing API.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

// Usable reports whether the credential can authorize a request, either
// directly or by refreshing.
func (c *Credential) Usable() bool {
	return c != nil && (c.AccessToken != "" || c.RefreshToken != "")
}

// Clone returns a copy of the credential.
func (c *Credential) Clone() *Credential {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
