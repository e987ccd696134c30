package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	apperrors "github.com/r4nb1r/ProfilePulse/pkg/errors"
)

func strPtr(s string) *string { return &s }

func newProfile(userID int64, name string) *domain.BusinessProfile {
	return &domain.BusinessProfile{
		UserID:       userID,
		BusinessName: name,
		Address:      "1 Main St, Springfield",
	}
}

func TestProfileRepository_CreateResetsLifecycleFields(t *testing.T) {
	repo := NewProfileRepository()
	ctx := context.Background()

	p := newProfile(1, "Acme Corp")
	p.Status = domain.StatusOptimized
	p.LocationID = strPtr("locations/forged")

	require.NoError(t, repo.Create(ctx, p))
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Nil(t, p.LocationID)
	assert.False(t, p.CreatedAt.IsZero())

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, stored)
}

func TestProfileRepository_ConcurrentCreateIssuesUniqueIDs(t *testing.T) {
	repo := NewProfileRepository()
	ctx := context.Background()

	const n = 200
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := newProfile(1, "Acme Corp")
			assert.NoError(t, repo.Create(ctx, p))
			ids <- p.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	list, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, n)
}

func TestProfileRepository_GetByIDNotFound(t *testing.T) {
	_, err := NewProfileRepository().GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProfileRepository_ListByUserKeepsInsertionOrder(t *testing.T) {
	repo := NewProfileRepository()
	ctx := context.Background()

	for _, name := range []string{"First", "Second", "Third"} {
		require.NoError(t, repo.Create(ctx, newProfile(1, name)))
	}
	require.NoError(t, repo.Create(ctx, newProfile(2, "Other")))

	list, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "First", list[0].BusinessName)
	assert.Equal(t, "Third", list[2].BusinessName)

	empty, err := repo.ListByUser(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestProfileRepository_ReturnedRecordsAreCopies(t *testing.T) {
	repo := NewProfileRepository()
	ctx := context.Background()
	p := newProfile(1, "Acme Corp")
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	got.BusinessName = "mutated"

	again, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", again.BusinessName)
}

func TestProfileRepository_UpdateStatusNeverRegresses(t *testing.T) {
	repo := NewProfileRepository()
	ctx := context.Background()
	p := newProfile(1, "Acme Corp")
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, repo.UpdateStatus(ctx, p.ID, domain.StatusClaimed, strPtr("locations/1")))
	require.NoError(t, repo.UpdateStatus(ctx, p.ID, domain.StatusOptimized, nil))
	require.NoError(t, repo.UpdateStatus(ctx, p.ID, domain.StatusPending, nil))
	require.NoError(t, repo.UpdateStatus(ctx, p.ID, domain.StatusClaimed, strPtr("locations/2")))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOptimized, got.Status)
	require.NotNil(t, got.LocationID)
	assert.Equal(t, "locations/1", *got.LocationID)
}

func TestProfileRepository_UpdateStatusRequiresLocation(t *testing.T) {
	repo := NewProfileRepository()
	ctx := context.Background()
	p := newProfile(1, "Acme Corp")
	require.NoError(t, repo.Create(ctx, p))

	err := repo.UpdateStatus(ctx, p.ID, domain.StatusClaimed, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	err = repo.UpdateStatus(ctx, p.ID, domain.StatusOptimized, strPtr(""))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	got, _ := repo.GetByID(ctx, p.ID)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestProfileRepository_UpdateStatusUnknownID(t *testing.T) {
	err := NewProfileRepository().UpdateStatus(context.Background(), 404, domain.StatusClaimed, strPtr("locations/1"))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProfileRepository_UpdateStatusRejectsUnknownStatus(t *testing.T) {
	repo := NewProfileRepository()
	ctx := context.Background()
	p := newProfile(1, "Acme Corp")
	require.NoError(t, repo.Create(ctx, p))

	err := repo.UpdateStatus(ctx, p.ID, domain.ProfileStatus("archived"), nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestProfileRepository_SetError(t *testing.T) {
	repo := NewProfileRepository()
	ctx := context.Background()
	p := newProfile(1, "Acme Corp")
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, repo.SetError(ctx, p.ID, "claim failed"))
	got, _ := repo.GetByID(ctx, p.ID)
	assert.Equal(t, "claim failed", got.LastError)
	assert.Equal(t, domain.StatusPending, got.Status)

	assert.ErrorIs(t, repo.SetError(ctx, 99, "x"), apperrors.ErrNotFound)
}

func TestProfileRepository_Stats(t *testing.T) {
	repo := NewProfileRepository()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, repo.Create(ctx, newProfile(1, "Acme Corp")))
	}
	require.NoError(t, repo.UpdateStatus(ctx, 2, domain.StatusClaimed, strPtr("locations/2")))
	require.NoError(t, repo.UpdateStatus(ctx, 3, domain.StatusOptimized, strPtr("locations/3")))

	st, err := repo.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{Total: 4, Pending: 2, Claimed: 1, Optimized: 1}, st)
	assert.Equal(t, st.Total, st.Pending+st.Claimed+st.Optimized)
}
