package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	apperrors "github.com/r4nb1r/ProfilePulse/pkg/errors"
)

// UserRepository keeps users in memory.
type UserRepository struct {
	mu         sync.RWMutex
	nextID     int64
	users      map[int64]*domain.User
	byUsername map[string]int64
}

// NewUserRepository creates an empty user store.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:      make(map[int64]*domain.User),
		byUsername: make(map[string]int64),
	}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.GoogleTokens = u.GoogleTokens.Clone()
	return &c
}

// Create inserts u, assigning its id.
func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[u.Username]; exists {
		return apperrors.AlreadyExists("user", "username", u.Username)
	}

	r.nextID++
	u.ID = r.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.users[u.ID] = cloneUser(u)
	r.byUsername[u.Username] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", strconv.FormatInt(id, 10))
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, apperrors.NotFound("user", username)
	}
	return cloneUser(r.users[id]), nil
}

// UpdateGoogleTokens replaces the stored credential.
func (r *UserRepository) UpdateGoogleTokens(_ context.Context, userID int64, cred *domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return apperrors.NotFound("user", strconv.FormatInt(userID, 10))
	}
	u.GoogleTokens = cred.Clone()
	return nil
}
