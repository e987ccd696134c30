package repository

import (
	"context"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
)

// ProfileRepository defines the Profile Store contract.
type ProfileRepository interface {
	// Create assigns a fresh id, resets status to pending, clears the location
	// and stamps CreatedAt. The passed profile is updated in place.
	Create(ctx context.Context, profile *domain.BusinessProfile) error

	// GetByID returns the profile or an ErrNotFound error.
	GetByID(ctx context.Context, id int64) (*domain.BusinessProfile, error)

	// ListByUser returns the user's profiles in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]*domain.BusinessProfile, error)

	// UpdateStatus advances the status and, when locationID is non-nil, sets the
	// location. Backward transitions are ignored without error. Unknown ids
	// return ErrNotFound; a claimed/optimized status without any location
	// returns ErrInvalidInput.
	UpdateStatus(ctx context.Context, id int64, status domain.ProfileStatus, locationID *string) error

	// SetError records a note explaining why orchestration stopped.
	SetError(ctx context.Context, id int64, note string) error

	// Stats aggregates the user's profiles by status.
	Stats(ctx context.Context, userID int64) (domain.Stats, error)
}

// UserRepository defines persistence for profile owners.
type UserRepository interface {
	// Create inserts the user and assigns its id. Duplicate usernames return ErrAlreadyExists.
	Create(ctx context.Context, user *domain.User) error

	GetByID(ctx context.Context, id int64) (*domain.User, error)

	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// UpdateGoogleTokens replaces the user's stored listing-API credential.
	UpdateGoogleTokens(ctx context.Context, userID int64, cred *domain.Credential) error
}

// SessionRepository stores auth sessions until they expire.
type SessionRepository interface {
	// Get returns the session or ErrNotFound when missing or expired.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Save creates or replaces the session.
	Save(ctx context.Context, session *domain.Session) error

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}
