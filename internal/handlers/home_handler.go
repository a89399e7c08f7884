package handlers

import (
	"context"
	"net/http"

	"github.com/foaademad/event-test/data"
	"github.com/foaademad/event-test/internal/services"
	"github.com/foaademad/event-test/models"
	"github.com/foaademad/event-test/security"
	"github.com/pocketbase/pocketbase/core"
)

const featuredEventCount = 3

type HomeHandler struct {
	events     *services.EventStore
	auth       *services.AuthStore
	categories []data.FeaturedCategory
}

func NewHomeHandler(events *services.EventStore, auth *services.AuthStore, categories []data.FeaturedCategory) *HomeHandler {
	return &HomeHandler{events: events, auth: auth, categories: categories}
}

// Home - featured events, categories and the caller's auth state
func (h *HomeHandler) Home(e *core.RequestEvent) error {
	ctx := e.Request.Context()
	token := security.BearerToken(e.Request)

	authState := services.Go(ctx, func(ctx context.Context) (models.AuthState, error) {
		return h.auth.State(ctx, token), nil
	})

	featured := h.events.Events()
	if len(featured) > featuredEventCount {
		featured = featured[:featuredEventCount]
	}

	state, err := authState.Await(ctx)
	if err != nil {
		return err
	}

	return e.JSON(http.StatusOK, map[string]any{
		"featuredEvents": featured,
		"categories":     h.categories,
		"auth":           state,
	})
}
