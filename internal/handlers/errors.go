package handlers

import (
	"errors"
	"net/http"

	"github.com/foaademad/event-test/internal/status"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/tools/router"
)

// apiError translates a store error into the HTTP error returned to the
// client. fallback is the message for anything without a dedicated one.
func apiError(err error, fallback string) *router.ApiError {
	msg := status.Message(err, fallback)

	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return apis.NewBadRequestError(fallback, verrs)
	case errors.Is(err, status.ErrInvalidFilter):
		return apis.NewBadRequestError(err.Error(), nil)
	case errors.Is(err, status.ErrEventNotFound):
		return apis.NewNotFoundError(msg, nil)
	case errors.Is(err, status.ErrEventSoldOut), errors.Is(err, status.ErrEmailTaken):
		return apis.NewApiError(http.StatusConflict, msg, nil)
	case errors.Is(err, status.ErrInvalidCredentials),
		errors.Is(err, status.ErrUnauthenticated),
		errors.Is(err, status.ErrSessionNotFound):
		return apis.NewUnauthorizedError(msg, nil)
	case errors.Is(err, status.ErrSimulatedFailure):
		return apis.NewApiError(http.StatusServiceUnavailable, msg, nil)
	default:
		return apis.NewInternalServerError(msg, nil)
	}
}

// validate runs the payload's own rules and reports field errors as 400.
func validate(v validation.Validatable, message string) error {
	if err := v.Validate(); err != nil {
		return apis.NewBadRequestError(message, err)
	}
	return nil
}
