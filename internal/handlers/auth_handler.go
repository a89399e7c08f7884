package handlers

import (
	"net/http"

	"github.com/foaademad/event-test/internal/services"
	"github.com/foaademad/event-test/models"
	"github.com/foaademad/event-test/security"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type AuthHandler struct {
	auth *services.AuthStore
}

func NewAuthHandler(auth *services.AuthStore) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func sessionResponse(session models.Session) map[string]any {
	return map[string]any{
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"user":      session.User,
	}
}

// Login - exchange the demo credentials for a bearer token
func (h *AuthHandler) Login(e *core.RequestEvent) error {
	var req models.LoginRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if err := validate(req, "Invalid login details"); err != nil {
		return err
	}

	session, err := h.auth.Login(e.Request.Context(), req.Email, req.Password)
	if err != nil {
		return apiError(err, "Login failed")
	}

	return e.JSON(http.StatusOK, sessionResponse(session))
}

// Signup - create a regular account and sign it in
func (h *AuthHandler) Signup(e *core.RequestEvent) error {
	var req models.SignupRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if err := validate(req, "Invalid signup details"); err != nil {
		return err
	}

	session, err := h.auth.Signup(e.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return apiError(err, "Signup failed")
	}

	return e.JSON(http.StatusCreated, sessionResponse(session))
}

// Logout - revoke the bearer token
func (h *AuthHandler) Logout(e *core.RequestEvent) error {
	if err := h.auth.Logout(e.Request.Context(), security.BearerToken(e.Request)); err != nil {
		return apiError(err, "Logout failed")
	}
	return e.NoContent(http.StatusNoContent)
}

// Me - auth state for the header
func (h *AuthHandler) Me(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, h.auth.State(e.Request.Context(), security.BearerToken(e.Request)))
}
