package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	apperrors "github.com/r4nb1r/ProfilePulse/pkg/errors"
)

// SessionRepository keeps sessions in memory. Expired sessions are invisible
// to Get and removed by Prune.
type SessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	now      func() time.Time
}

// NewSessionRepository creates an empty session store.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]*domain.Session),
		now:      time.Now,
	}
}

func (r *SessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.NotFound("session", id)
	}
	if s.Expired(r.now()) {
		delete(r.sessions, id)
		return nil, apperrors.NotFound("session", id)
	}
	return s.Clone(), nil
}

func (r *SessionRepository) Save(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	r.sessions[s.ID] = s.Clone()
	r.mu.Unlock()
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

// Prune drops expired sessions and returns how many were removed.
func (r *SessionRepository) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run prunes expired sessions every interval until ctx is canceled.
func (r *SessionRepository) Run(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Prune(); n > 0 {
				logger.Debug("pruned expired sessions", slog.Int("count", n))
			}
		}
	}
}
