package security

import (
	"context"
	"net/http"
	"strings"

	"github.com/foaademad/event-test/internal/status"
	"github.com/foaademad/event-test/models"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

const sessionKey = "session"

type SessionResolver interface {
	Authenticate(ctx context.Context, token string) (models.Session, error)
}

// Guard attaches the caller's session to the request and rejects callers
// that lack the required role.
type Guard struct {
	sessions SessionResolver
}

func NewGuard(sessions SessionResolver) *Guard {
	return &Guard{sessions: sessions}
}

// BearerToken extracts the token of an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// LoadSession resolves the token if one is sent. Anonymous or stale callers
// pass through without a session.
func (g *Guard) LoadSession(e *core.RequestEvent) error {
	if token := BearerToken(e.Request); token != "" {
		if session, err := g.sessions.Authenticate(e.Request.Context(), token); err == nil {
			e.Set(sessionKey, session)
		}
	}
	return e.Next()
}

func (g *Guard) RequireUser(e *core.RequestEvent) error {
	if _, err := g.authenticate(e); err != nil {
		return err
	}
	return e.Next()
}

func (g *Guard) RequireAdmin(e *core.RequestEvent) error {
	session, err := g.authenticate(e)
	if err != nil {
		return err
	}
	if !session.User.IsAdmin {
		return apis.NewForbiddenError("Admin access required", nil)
	}
	return e.Next()
}

func (g *Guard) authenticate(e *core.RequestEvent) (models.Session, error) {
	if session, ok := SessionFrom(e); ok {
		return session, nil
	}

	token := BearerToken(e.Request)
	if token == "" {
		return models.Session{}, apis.NewUnauthorizedError("Please log in to continue", nil)
	}

	session, err := g.sessions.Authenticate(e.Request.Context(), token)
	if err != nil {
		return models.Session{}, apis.NewUnauthorizedError(status.Message(err, "Please log in to continue"), nil)
	}
	e.Set(sessionKey, session)
	return session, nil
}

// SessionFrom returns the session a guard attached to the request.
func SessionFrom(e *core.RequestEvent) (models.Session, bool) {
	session, ok := e.Get(sessionKey).(models.Session)
	return session, ok
}
