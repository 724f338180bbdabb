package identity

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrOrganizationContextMissing is returned for a non super-admin without organization.
	ErrOrganizationContextMissing = errors.New("organization context missing")
	// ErrMissingAccessToken is returned when a login or refresh response carries no access token.
	ErrMissingAccessToken = errors.New("response carries no access token")
	// ErrNoRefreshToken is returned when a refresh is requested without a refresh token.
	ErrNoRefreshToken = errors.New("no refresh token available")
	// ErrTransport wraps failures below HTTP: dial, TLS, timeouts, undecodable bodies.
	ErrTransport = errors.New("identity api transport failure")
	// ErrInvalidCredentials is returned when login credentials fail validation.
	ErrInvalidCredentials = errors.New("invalid login credentials")
)

// StatusError is a non 2xx answer of the identity API.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}

// IsAuthRejected reports whether err is a 401 or 403 answer.
func IsAuthRejected(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}

	return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
}

// StatusCode returns the HTTP status carried by err, 0 if none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}

	return 0
}
