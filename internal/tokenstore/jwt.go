package tokenstore

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// WellFormed reports whether token has the three-segment compact JWS shape.
// It performs no decoding and no signature check.
func WellFormed(token string) bool {
	if token == "" || token == "null" || token == "undefined" {
		return false
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 { //nolint:mnd
		return false
	}

	for _, p := range parts {
		if p == "" {
			return false
		}
	}

	return true
}

// Expiry reads the exp claim without verifying the signature.
// ok is false when the token cannot be decoded or carries no exp.
func Expiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}
