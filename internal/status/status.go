package status

import "errors"

var (
	ErrEventNotFound      = errors.New("event: event not found")
	ErrEventSoldOut       = errors.New("event: event is sold out")
	ErrInvalidFilter      = errors.New("filter: invalid filter")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrUnauthenticated    = errors.New("auth: not authenticated")
	ErrSessionNotFound    = errors.New("session: session not found")
	ErrSimulatedFailure   = errors.New("backend: simulated failure")
)

// Message maps an error to the text shown to users. fallback is used for
// anything without a dedicated message.
func Message(err error, fallback string) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEventNotFound):
		return "Event not found"
	case errors.Is(err, ErrEventSoldOut):
		return "Event is sold out"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrEmailTaken):
		return "User with this email already exists"
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrSessionNotFound):
		return "Please log in to continue"
	default:
		return fallback
	}
}
