package access

import "errors"

var (
	// ErrPermissionFetchFailed marks a permission computation that fell back to the role defaults.
	ErrPermissionFetchFailed = errors.New("permission fetch failed")
	// ErrNoAuthenticator is returned by credential logins without a login API.
	ErrNoAuthenticator = errors.New("no authenticator configured")
	// ErrNoIdentity is returned when permissions are refreshed without a signed-in identity.
	ErrNoIdentity = errors.New("no identity to compute permissions for")
)
