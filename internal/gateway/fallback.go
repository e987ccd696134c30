package gateway

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	"github.com/r4nb1r/ProfilePulse/pkg/slug"
)

// Resilient wraps a Gateway with a per-call timeout, outcome metrics and the
// configured failure mode.
type Resilient struct {
	next    Gateway
	mode    Mode
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewResilient decorates next. A zero timeout leaves deadlines to the caller.
func NewResilient(next Gateway, mode Mode, timeout time.Duration, logger *slog.Logger) *Resilient {
	return &Resilient{
		next:    next,
		mode:    mode,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// Mode returns the configured failure mode.
func (g *Resilient) Mode() Mode { return g.mode }

// Claim calls the wrapped gateway. In legacy-fallback mode a failure yields a
// synthesized location id of the form locations/<slug>-<unix millis>.
func (g *Resilient) Claim(ctx context.Context, cred *domain.Credential, businessName, address string) (*ClaimResult, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	res, err := g.next.Claim(ctx, cred, businessName, address)
	gatewayCallDuration.WithLabelValues(OpClaim).Observe(time.Since(start).Seconds())

	if err == nil {
		gatewayCallsTotal.WithLabelValues(OpClaim, outcomeSuccess).Inc()
		return res, nil
	}

	if g.mode == ModeStrict {
		gatewayCallsTotal.WithLabelValues(OpClaim, outcomeError).Inc()
		g.logger.ErrorContext(ctx, "listing claim failed",
			slog.String("business_name", businessName),
			slog.String("error", err.Error()),
		)
		return nil, &Error{Op: OpClaim, Err: err}
	}

	gatewayCallsTotal.WithLabelValues(OpClaim, outcomeFallback).Inc()
	locationID := "locations/" + slug.WithSuffix(businessName, strconv.FormatInt(g.now().UnixMilli(), 10))
	g.logger.WarnContext(ctx, "listing claim failed, using fallback location",
		slog.String("business_name", businessName),
		slog.String("location_id", locationID),
		slog.String("error", err.Error()),
	)
	return &ClaimResult{LocationID: locationID, Fallback: true}, nil
}

// Optimize calls the wrapped gateway. In legacy-fallback mode a failure is
// reported as success.
func (g *Resilient) Optimize(ctx context.Context, cred *domain.Credential, locationID string, profile *domain.BusinessProfile) (*OptimizeResult, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	res, err := g.next.Optimize(ctx, cred, locationID, profile)
	gatewayCallDuration.WithLabelValues(OpOptimize).Observe(time.Since(start).Seconds())

	if err == nil {
		gatewayCallsTotal.WithLabelValues(OpOptimize, outcomeSuccess).Inc()
		return res, nil
	}

	if g.mode == ModeStrict {
		gatewayCallsTotal.WithLabelValues(OpOptimize, outcomeError).Inc()
		g.logger.ErrorContext(ctx, "listing optimize failed",
			slog.String("location_id", locationID),
			slog.String("error", err.Error()),
		)
		return nil, &Error{Op: OpOptimize, Err: err}
	}

	gatewayCallsTotal.WithLabelValues(OpOptimize, outcomeFallback).Inc()
	g.logger.WarnContext(ctx, "listing optimize failed, reporting success",
		slog.String("location_id", locationID),
		slog.String("error", err.Error()),
	)
	return &OptimizeResult{Success: true, Fallback: true}, nil
}

func (g *Resilient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}
