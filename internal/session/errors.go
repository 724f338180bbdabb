package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/erpdesk/sessiond/internal/identity"
)

var (
	// ErrInvalidTokenFormat is returned when a stored or issued token is not a compact JWS.
	ErrInvalidTokenFormat = errors.New("invalid token format")
	// ErrNoToken marks the expected absence of a stored token.
	ErrNoToken = errors.New("no token")
	// ErrAuthRejected is returned when the identity API answered 401 or 403.
	ErrAuthRejected = errors.New("authentication rejected")
	// ErrOrganizationContextMissing is returned for a non super-admin identity without organization.
	ErrOrganizationContextMissing = identity.ErrOrganizationContextMissing
	// ErrNetworkOrServer is returned after retryable failures exhausted every attempt.
	ErrNetworkOrServer = errors.New("network or server error")
	// ErrTimeout is returned when the bootstrap guard fired first.
	ErrTimeout = errors.New("session bootstrap timed out")
	// ErrNoIdentity is returned by operations that need an authenticated identity.
	ErrNoIdentity = errors.New("no authenticated identity")

	errStale = errors.New("result superseded")
)

// classify maps a final fetch error onto the failure taxonomy.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrOrganizationContextMissing):
		return err
	case identity.IsAuthRejected(err), errors.Is(err, identity.ErrNoRefreshToken):
		return fmt.Errorf("%w: %w", ErrAuthRejected, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %w", ErrNetworkOrServer, err)
	}
}
