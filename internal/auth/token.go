package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer        = "profilepulse"
	audienceSess  = "session"
	audienceState = "oauth-state"
)

// ErrStateMismatch is returned when an OAuth state was issued for another session.
var ErrStateMismatch = errors.New("oauth state does not match session")

// TokenSigner signs the session cookie value and the OAuth state parameter
// as HS256 JWTs whose subject is the session id.
type TokenSigner struct {
	secret []byte
	now    func() time.Time
}

// NewTokenSigner creates a signer keyed by secret.
func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), now: time.Now}
}

// SignSession returns the cookie value for sessionID, valid for ttl.
func (s *TokenSigner) SignSession(sessionID string, ttl time.Duration) (string, error) {
	return s.sign(sessionID, audienceSess, ttl)
}

// ParseSession validates a cookie value and returns the session id.
func (s *TokenSigner) ParseSession(token string) (string, error) {
	return s.parse(token, audienceSess)
}

// SignState returns an OAuth state bound to sessionID.
func (s *TokenSigner) SignState(sessionID string, ttl time.Duration) (string, error) {
	return s.sign(sessionID, audienceState, ttl)
}

// VerifyState checks that state was issued by SignState for sessionID.
func (s *TokenSigner) VerifyState(state, sessionID string) error {
	sub, err := s.parse(state, audienceState)
	if err != nil {
		return err
	}
	if sub != sessionID {
		return ErrStateMismatch
	}
	return nil
}

func (s *TokenSigner) sign(subject, audience string, ttl time.Duration) (string, error) {
	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", audience, err)
	}
	return signed, nil
}

func (s *TokenSigner) parse(token, audience string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("parse %s token: %w", audience, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("parse %s token: missing subject", audience)
	}
	return claims.Subject, nil
}
