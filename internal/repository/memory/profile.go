package memory

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	apperrors "github.com/r4nb1r/ProfilePulse/pkg/errors"
)

// ProfileRepository is the in-process Profile Store. Records are lost on restart.
type ProfileRepository struct {
	mu       sync.RWMutex
	nextID   atomic.Int64
	profiles map[int64]*domain.BusinessProfile
	order    []int64
	now      func() time.Time
}

// NewProfileRepository creates an empty store.
func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{
		profiles: make(map[int64]*domain.BusinessProfile),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a copy of p as a new pending profile.
func (r *ProfileRepository) Create(_ context.Context, p *domain.BusinessProfile) error {
	id := r.nextID.Add(1)

	p.ID = id
	p.Status = domain.StatusPending
	p.LocationID = nil
	p.LastError = ""
	p.CreatedAt = r.now()

	r.mu.Lock()
	r.profiles[id] = p.Clone()
	r.order = append(r.order, id)
	r.mu.Unlock()
	return nil
}

// GetByID returns a copy of the stored profile.
func (r *ProfileRepository) GetByID(_ context.Context, id int64) (*domain.BusinessProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, apperrors.NotFound("profile", strconv.FormatInt(id, 10))
	}
	return p.Clone(), nil
}

// ListByUser returns copies of the user's profiles in insertion order.
func (r *ProfileRepository) ListByUser(_ context.Context, userID int64) ([]*domain.BusinessProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.BusinessProfile, 0)
	for _, id := range r.order {
		if p := r.profiles[id]; p.UserID == userID {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

// UpdateStatus advances the profile status.
func (r *ProfileRepository) UpdateStatus(_ context.Context, id int64, status domain.ProfileStatus, locationID *string) error {
	if !status.IsValid() {
		return apperrors.InvalidInput("unknown profile status " + strconv.Quote(string(status)))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		return apperrors.NotFound("profile", strconv.FormatInt(id, 10))
	}
	if !p.Status.CanAdvanceTo(status) {
		return nil
	}

	hasLocation := p.HasLocation() || (locationID != nil && *locationID != "")
	if status.RequiresLocation() && !hasLocation {
		return apperrors.InvalidInput("status " + string(status) + " requires a location id")
	}

	p.Status = status
	if locationID != nil && *locationID != "" {
		loc := *locationID
		p.LocationID = &loc
	}
	return nil
}

// SetError attaches an orchestration failure note.
func (r *ProfileRepository) SetError(_ context.Context, id int64, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[id]
	if !ok {
		return apperrors.NotFound("profile", strconv.FormatInt(id, 10))
	}
	p.LastError = note
	return nil
}

// Stats aggregates over ListByUser.
func (r *ProfileRepository) Stats(ctx context.Context, userID int64) (domain.Stats, error) {
	profiles, err := r.ListByUser(ctx, userID)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.ComputeStats(profiles), nil
}
