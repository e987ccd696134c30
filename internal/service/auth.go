package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	"github.com/r4nb1r/ProfilePulse/internal/repository"
	apperrors "github.com/r4nb1r/ProfilePulse/pkg/errors"
	"github.com/r4nb1r/ProfilePulse/pkg/logger"
)

// stateTTL bounds how long a consent redirect stays valid.
const stateTTL = 10 * time.Minute

// OAuthExchanger builds consent URLs and trades authorization codes for credentials.
type OAuthExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*domain.Credential, error)
}

// StateSigner signs and verifies the OAuth state parameter.
type StateSigner interface {
	SignState(sessionID string, ttl time.Duration) (string, error)
	VerifyState(state, sessionID string) error
}

// AuthStatus reports whether a session has completed the consent flow.
type AuthStatus struct {
	IsAuthenticated bool `json:"isAuthenticated"`
}

// AuthServiceConfig holds session and account binding settings.
type AuthServiceConfig struct {
	SessionTTL   time.Duration
	DemoUsername string
}

// AuthService owns sessions and the OAuth consent flow.
type AuthService struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	oauth    OAuthExchanger
	states   StateSigner
	cfg      AuthServiceConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service.
func NewAuthService(
	sessions repository.SessionRepository,
	users repository.UserRepository,
	oauth OAuthExchanger,
	states StateSigner,
	cfg AuthServiceConfig,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		sessions: sessions,
		users:    users,
		oauth:    oauth,
		states:   states,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// StartSession creates and stores an unauthenticated session.
func (s *AuthService) StartSession(ctx context.Context) (*domain.Session, error) {
	now := s.now().UTC()
	sess := &domain.Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// LoadSession returns a stored session or ErrNotFound.
func (s *AuthService) LoadSession(ctx context.Context, id string) (*domain.Session, error) {
	return s.sessions.Get(ctx, id)
}

// BeginAuth returns the consent URL for the session.
func (s *AuthService) BeginAuth(ctx context.Context, sess *domain.Session) (string, error) {
	state, err := s.states.SignState(sess.ID, stateTTL)
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}

	logger.WithContext(ctx, s.logger).DebugContext(ctx, "consent url issued")
	return s.oauth.AuthCodeURL(state), nil
}

// CompleteAuth exchanges the authorization code, binds the demo account
// and stores the credential. An empty state is accepted; a non-empty one
// must belong to this session. On success the session is replaced by a new
// one under a fresh id, which the caller must hand back to the client.
func (s *AuthService) CompleteAuth(ctx context.Context, sess *domain.Session, code, state string) (*domain.Session, error) {
	log := logger.WithContext(ctx, s.logger)

	if state != "" {
		if err := s.states.VerifyState(state, sess.ID); err != nil {
			log.WarnContext(ctx, "oauth state rejected", slog.String("error", err.Error()))
			return nil, apperrors.Unauthorized("invalid oauth state")
		}
	}

	cred, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		log.WarnContext(ctx, "oauth code exchange failed", slog.String("error", err.Error()))
		return nil, apperrors.ExchangeFailed(err)
	}

	user, err := s.users.GetByUsername(ctx, s.cfg.DemoUsername)
	if err != nil {
		return nil, fmt.Errorf("load account %q: %w", s.cfg.DemoUsername, err)
	}

	if err := s.users.UpdateGoogleTokens(ctx, user.ID, cred); err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}

	now := s.now().UTC()
	rotated := &domain.Session{
		ID:            uuid.New().String(),
		UserID:        user.ID,
		Authenticated: true,
		Credential:    cred,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Save(ctx, rotated); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		log.WarnContext(ctx, "failed to drop pre-auth session", slog.String("error", err.Error()))
	}

	log.InfoContext(ctx, "oauth flow completed",
		slog.Int64("user_id", user.ID),
		slog.String("new_session_id", rotated.ID),
	)
	return rotated, nil
}

// Status reports the session's authentication state without side effects.
func (s *AuthService) Status(sess *domain.Session) AuthStatus {
	return AuthStatus{IsAuthenticated: sess != nil && sess.Authenticated}
}

// Logout destroys the session. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, sess *domain.Session) error {
	if sess == nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	logger.WithContext(ctx, s.logger).InfoContext(ctx, "session destroyed")
	return nil
}

// RequireAuth rejects sessions that have not completed the consent flow.
func (s *AuthService) RequireAuth(sess *domain.Session) error {
	if sess == nil || !sess.Authenticated {
		return apperrors.Unauthorized("not authenticated")
	}
	return nil
}
