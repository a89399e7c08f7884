package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/foaademad/event-test/internal/services"
	"github.com/foaademad/event-test/models"
	"github.com/foaademad/event-test/security"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type AdminHandler struct {
	store    *services.EventStore
	pageSize int
}

func NewAdminHandler(store *services.EventStore, pageSize int) *AdminHandler {
	return &AdminHandler{store: store, pageSize: pageSize}
}

// ListEvents - admin event table, searched and paginated
func (h *AdminHandler) ListEvents(e *core.RequestEvent) error {
	query := e.Request.URL.Query()

	page := 1
	if raw := query.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return apis.NewBadRequestError("Page must be a number", nil)
		}
		page = n
	}

	matches := services.AdminSearch(h.store.Events(), query.Get("search"))
	return e.JSON(http.StatusOK, services.Paginate(matches, page, h.pageSize))
}

// CreateEvent - add a new event to the catalog
func (h *AdminHandler) CreateEvent(e *core.RequestEvent) error {
	var input models.EventInput
	if err := e.BindBody(&input); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	event, err := h.store.CreateEvent(e.Request.Context(), input)
	if err != nil {
		return apiError(err, "Failed to create event")
	}

	h.audit("Event created", event.ID, e)
	return e.JSON(http.StatusCreated, event)
}

// UpdateEvent - partial edit of an event
func (h *AdminHandler) UpdateEvent(e *core.RequestEvent) error {
	var patch models.EventPatch
	if err := e.BindBody(&patch); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if patch.IsEmpty() {
		return apis.NewBadRequestError("No fields to update", nil)
	}

	event, err := h.store.UpdateEvent(e.Request.Context(), e.Request.PathValue("id"), patch)
	if err != nil {
		return apiError(err, "Failed to update event")
	}

	h.audit("Event updated", event.ID, e)
	return e.JSON(http.StatusOK, event)
}

// DeleteEvent - remove an event from the catalog
func (h *AdminHandler) DeleteEvent(e *core.RequestEvent) error {
	id := e.Request.PathValue("id")
	if err := h.store.DeleteEvent(e.Request.Context(), id); err != nil {
		return apiError(err, "Failed to delete event")
	}

	h.audit("Event deleted", id, e)
	return e.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) audit(msg, eventID string, e *core.RequestEvent) {
	adminID := ""
	if session, ok := security.SessionFrom(e); ok {
		adminID = session.User.ID
	}
	slog.Info(msg, "event_id", eventID, "admin_id", adminID)
}
