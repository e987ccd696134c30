package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	"github.com/r4nb1r/ProfilePulse/internal/gateway"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock Profile Repository ---

type mockProfileRepository struct {
	mock.Mock
}

func (m *mockProfileRepository) Create(ctx context.Context, profile *domain.BusinessProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockProfileRepository) GetByID(ctx context.Context, id int64) (*domain.BusinessProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BusinessProfile), args.Error(1)
}

func (m *mockProfileRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.BusinessProfile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*domain.BusinessProfile), args.Error(1)
}

func (m *mockProfileRepository) UpdateStatus(ctx context.Context, id int64, status domain.ProfileStatus, locationID *string) error {
	args := m.Called(ctx, id, status, locationID)
	return args.Error(0)
}

func (m *mockProfileRepository) SetError(ctx context.Context, id int64, note string) error {
	args := m.Called(ctx, id, note)
	return args.Error(0)
}

func (m *mockProfileRepository) Stats(ctx context.Context, userID int64) (domain.Stats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.Stats), args.Error(1)
}

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) UpdateGoogleTokens(ctx context.Context, userID int64, cred *domain.Credential) error {
	args := m.Called(ctx, userID, cred)
	return args.Error(0)
}

// --- Mock Session Repository ---

type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Gateway ---

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Claim(ctx context.Context, cred *domain.Credential, businessName, address string) (*gateway.ClaimResult, error) {
	args := m.Called(ctx, cred, businessName, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.ClaimResult), args.Error(1)
}

func (m *mockGateway) Optimize(ctx context.Context, cred *domain.Credential, locationID string, profile *domain.BusinessProfile) (*gateway.OptimizeResult, error) {
	args := m.Called(ctx, cred, locationID, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.OptimizeResult), args.Error(1)
}

// --- Mock Event Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishProfileCreated(ctx context.Context, profile *domain.BusinessProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockPublisher) PublishStatusChanged(ctx context.Context, profile *domain.BusinessProfile, from domain.ProfileStatus, fallback bool) error {
	args := m.Called(ctx, profile, from, fallback)
	return args.Error(0)
}

// --- Mock OAuth ---

type mockOAuth struct {
	mock.Mock
}

func (m *mockOAuth) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *mockOAuth) Exchange(ctx context.Context, code string) (*domain.Credential, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credential), args.Error(1)
}

// --- Mock State Signer ---

type mockStates struct {
	mock.Mock
}

func (m *mockStates) SignState(sessionID string, ttl time.Duration) (string, error) {
	args := m.Called(sessionID, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockStates) VerifyState(state, sessionID string) error {
	args := m.Called(state, sessionID)
	return args.Error(0)
}
