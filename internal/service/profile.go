package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	"github.com/r4nb1r/ProfilePulse/internal/gateway"
	"github.com/r4nb1r/ProfilePulse/internal/repository"
	apperrors "github.com/r4nb1r/ProfilePulse/pkg/errors"
	"github.com/r4nb1r/ProfilePulse/pkg/logger"
	"github.com/r4nb1r/ProfilePulse/pkg/tracing"
	"github.com/r4nb1r/ProfilePulse/pkg/validator"
)

var tracer = tracing.Tracer("github.com/r4nb1r/ProfilePulse/internal/service")

// Business name and address used by the connectivity check.
const (
	TestBusinessName    = "Test Business"
	TestBusinessAddress = "123 Main St"
)

// EventPublisher publishes profile lifecycle events.
type EventPublisher interface {
	PublishProfileCreated(ctx context.Context, profile *domain.BusinessProfile) error
	PublishStatusChanged(ctx context.Context, profile *domain.BusinessProfile, from domain.ProfileStatus, fallback bool) error
}

// SubmitInput is a business profile submission.
type SubmitInput struct {
	BusinessName string `json:"businessName" validate:"required,min=2,max=200"`
	Address      string `json:"address" validate:"required,min=5,max=500"`
	Phone        string `json:"phone" validate:"omitempty,max=50"`
	Website      string `json:"website" validate:"omitempty,url"`
	Category     string `json:"category" validate:"omitempty,max=100"`
	MondayOpen   string `json:"mondayOpen" validate:"omitempty,clock"`
	MondayClose  string `json:"mondayClose" validate:"omitempty,clock"`
	TuesdayOpen  string `json:"tuesdayOpen" validate:"omitempty,clock"`
	TuesdayClose string `json:"tuesdayClose" validate:"omitempty,clock"`
}

// ProfileServiceConfig controls when the claim/optimize sequence runs.
type ProfileServiceConfig struct {
	// Async runs orchestration after Submit returns.
	Async bool
	// Timeout bounds an async orchestration. Zero means no bound.
	Timeout time.Duration
}

// ProfileService creates profiles and drives them through claim and optimize.
type ProfileService struct {
	profiles repository.ProfileRepository
	gateway  gateway.Gateway
	events   EventPublisher
	cfg      ProfileServiceConfig
	logger   *slog.Logger

	wg sync.WaitGroup
}

// NewProfileService creates a new profile service.
func NewProfileService(
	profiles repository.ProfileRepository,
	gw gateway.Gateway,
	events EventPublisher,
	cfg ProfileServiceConfig,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		gateway:  gw,
		events:   events,
		cfg:      cfg,
		logger:   logger,
	}
}

// Submit validates input, stores a pending profile owned by userID and, when
// cred is usable, runs claim then optimize. The returned profile is the
// record as it stood right after creation.
func (s *ProfileService) Submit(ctx context.Context, userID int64, cred *domain.Credential, input SubmitInput) (*domain.BusinessProfile, error) {
	ctx, span := tracer.Start(ctx, "profile.submit")
	defer span.End()

	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	profile := &domain.BusinessProfile{
		UserID:       userID,
		BusinessName: input.BusinessName,
		Address:      input.Address,
		Phone:        input.Phone,
		Website:      input.Website,
		Category:     input.Category,
		MondayOpen:   input.MondayOpen,
		MondayClose:  input.MondayClose,
		TuesdayOpen:  input.TuesdayOpen,
		TuesdayClose: input.TuesdayClose,
	}
	profile.ApplyDefaults()

	if err := s.profiles.Create(ctx, profile); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, apperrors.Wrap(err, "create profile")
	}
	span.SetAttributes(attribute.Int64("profile.id", profile.ID))

	log := logger.WithContext(ctx, s.logger)
	log.InfoContext(ctx, "profile created",
		slog.Int64("profile_id", profile.ID),
		slog.String("status", string(profile.Status)),
	)

	if err := s.events.PublishProfileCreated(ctx, profile); err != nil {
		log.WarnContext(ctx, "failed to publish profile created event",
			slog.Int64("profile_id", profile.ID),
			slog.String("error", err.Error()),
		)
	}

	created := profile.Clone()

	if !cred.Usable() {
		log.InfoContext(ctx, "no listing credential, profile stays pending",
			slog.Int64("profile_id", profile.ID),
		)
		return created, nil
	}

	if s.cfg.Async {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			bg := context.WithoutCancel(ctx)
			if s.cfg.Timeout > 0 {
				var cancel context.CancelFunc
				bg, cancel = context.WithTimeout(bg, s.cfg.Timeout)
				defer cancel()
			}
			s.orchestrate(bg, profile, cred.Clone())
		}()
		return created, nil
	}

	// Runs to completion even if the caller goes away; each gateway call
	// is bounded by the gateway's own timeout.
	s.orchestrate(context.WithoutCancel(ctx), profile, cred)
	return created, nil
}

// Wait blocks until background orchestrations finish.
func (s *ProfileService) Wait() {
	s.wg.Wait()
}

// orchestrate advances profile pending -> claimed -> optimized. A gateway
// error stops the sequence and is recorded on the profile, never returned.
func (s *ProfileService) orchestrate(ctx context.Context, profile *domain.BusinessProfile, cred *domain.Credential) {
	ctx, span := tracer.Start(ctx, "profile.orchestrate")
	span.SetAttributes(attribute.Int64("profile.id", profile.ID))
	defer span.End()

	log := logger.WithContext(ctx, s.logger).With(slog.Int64("profile_id", profile.ID))

	claim, err := s.gateway.Claim(ctx, cred, profile.BusinessName, profile.Address)
	if err != nil {
		span.RecordError(err)
		s.stop(ctx, log, profile, gateway.OpClaim, err)
		return
	}

	locationID := claim.LocationID
	if !s.advance(ctx, log, profile, domain.StatusClaimed, &locationID, claim.Fallback) {
		return
	}

	opt, err := s.gateway.Optimize(ctx, cred, locationID, profile)
	if err != nil {
		span.RecordError(err)
		s.stop(ctx, log, profile, gateway.OpOptimize, err)
		return
	}

	s.advance(ctx, log, profile, domain.StatusOptimized, nil, opt.Fallback)
}

func (s *ProfileService) advance(
	ctx context.Context,
	log *slog.Logger,
	profile *domain.BusinessProfile,
	to domain.ProfileStatus,
	locationID *string,
	fallback bool,
) bool {
	from := profile.Status
	if err := s.profiles.UpdateStatus(ctx, profile.ID, to, locationID); err != nil {
		log.ErrorContext(ctx, "failed to update profile status",
			slog.String("status", string(to)),
			slog.String("error", err.Error()),
		)
		return false
	}

	profile.Status = to
	if locationID != nil {
		loc := *locationID
		profile.LocationID = &loc
	}

	attrs := []any{slog.String("status", string(to)), slog.Bool("fallback", fallback)}
	if profile.LocationID != nil {
		attrs = append(attrs, slog.String("location_id", *profile.LocationID))
	}
	log.InfoContext(ctx, "profile status advanced", attrs...)

	if err := s.events.PublishStatusChanged(ctx, profile, from, fallback); err != nil {
		log.WarnContext(ctx, "failed to publish status changed event", slog.String("error", err.Error()))
	}
	return true
}

func (s *ProfileService) stop(ctx context.Context, log *slog.Logger, profile *domain.BusinessProfile, op string, cause error) {
	note := op + " failed: " + cause.Error()
	log.WarnContext(ctx, "orchestration stopped",
		slog.String("operation", op),
		slog.String("status", string(profile.Status)),
		slog.String("error", cause.Error()),
	)
	if err := s.profiles.SetError(ctx, profile.ID, note); err != nil {
		log.ErrorContext(ctx, "failed to record orchestration error", slog.String("error", err.Error()))
	}
}

// Get returns a profile owned by userID.
func (s *ProfileService) Get(ctx context.Context, userID, id int64) (*domain.BusinessProfile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.UserID != userID {
		return nil, apperrors.NotFound("profile", idString(id))
	}
	return profile, nil
}

// List returns the user's profiles in insertion order.
func (s *ProfileService) List(ctx context.Context, userID int64) ([]*domain.BusinessProfile, error) {
	return s.profiles.ListByUser(ctx, userID)
}

// Stats aggregates the user's profiles by status.
func (s *ProfileService) Stats(ctx context.Context, userID int64) (domain.Stats, error) {
	return s.profiles.Stats(ctx, userID)
}

// TestClaim runs a claim for a fixed test business to check connectivity.
// Strict-mode gateway failures surface as a 502.
func (s *ProfileService) TestClaim(ctx context.Context, cred *domain.Credential) (*gateway.ClaimResult, error) {
	if !cred.Usable() {
		return nil, apperrors.Unauthorized("listing account not connected")
	}

	res, err := s.gateway.Claim(ctx, cred, TestBusinessName, TestBusinessAddress)
	if err != nil {
		var gwErr *gateway.Error
		if errors.As(err, &gwErr) {
			return nil, apperrors.GatewayUnavailable(gwErr.Op, gwErr.Err)
		}
		return nil, apperrors.GatewayUnavailable(gateway.OpClaim, err)
	}
	return res, nil
}
