package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	apperrors "github.com/r4nb1r/ProfilePulse/pkg/errors"
)

// Operation names used in errors, logs and metrics.
const (
	OpClaim    = "claim"
	OpOptimize = "optimize"
)

// ErrGatewayUnavailable marks every failure surfaced by the gateway in strict mode.
var ErrGatewayUnavailable = apperrors.ErrGateway

// ErrNoCredential is returned when a call is attempted without a usable credential.
var ErrNoCredential = errors.New("listing credential is missing")

// ClaimResult is the outcome of a claim. Fallback is set when the location id
// was synthesized locally instead of returned by the listing API.
type ClaimResult struct {
	LocationID string
	Fallback   bool
}

// OptimizeResult is the outcome of an optimize call.
type OptimizeResult struct {
	Success  bool
	Fallback bool
}

// Gateway claims and updates listings on the external platform.
type Gateway interface {
	Claim(ctx context.Context, cred *domain.Credential, businessName, address string) (*ClaimResult, error)
	Optimize(ctx context.Context, cred *domain.Credential, locationID string, profile *domain.BusinessProfile) (*OptimizeResult, error)
}

// Error reports a failed listing operation. It matches both
// ErrGatewayUnavailable and the underlying cause with errors.Is.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("listing %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{ErrGatewayUnavailable, e.Err}
}

// Mode selects how gateway failures are reported.
type Mode string

const (
	// ModeLegacyFallback logs failures and synthesizes a successful result.
	ModeLegacyFallback Mode = "legacy-fallback"
	// ModeStrict returns failures to the caller as *Error.
	ModeStrict Mode = "strict"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLegacyFallback, ModeStrict:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid gateway mode %q: must be %q or %q", s, ModeLegacyFallback, ModeStrict)
	}
}
