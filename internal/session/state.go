package session

// State is the lifecycle state of the session.
type State int32

// Session states.
const (
	StateIdle State = iota
	StateBootstrapping
	StateRefreshingToken
	StateAuthenticated
	StateUnauthenticated
	StateLoggingOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBootstrapping:
		return "bootstrapping"
	case StateRefreshingToken:
		return "refreshing_token"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateLoggingOut:
		return "logging_out"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// busy reports whether the state guards an in-flight identity fetch.
func (s State) busy() bool {
	return s == StateBootstrapping || s == StateRefreshingToken
}
