package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/foaademad/event-test/internal/services"
	"github.com/foaademad/event-test/models"
	"github.com/foaademad/event-test/security"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type EventsHandler struct {
	store *services.EventStore
	loc   *time.Location
	now   func() time.Time
}

func NewEventsHandler(store *services.EventStore, loc *time.Location) *EventsHandler {
	return &EventsHandler{store: store, loc: loc, now: time.Now}
}

// eventView adds the derived fields the detail page shows.
type eventView struct {
	models.Event
	SoldOut         bool `json:"soldOut"`
	CapacityPercent int  `json:"capacityPercent"`
}

func newEventView(e models.Event) eventView {
	return eventView{Event: e, SoldOut: e.SoldOut(), CapacityPercent: e.CapacityPercent()}
}

// ListEvents - filtered and searched event list
func (h *EventsHandler) ListEvents(e *core.RequestEvent) error {
	filter, search, err := models.ParseFilter(e.Request.URL.Query())
	if err != nil {
		return apiError(err, "Invalid filter")
	}

	events := h.store.FilterEvents(filter, search)

	return e.JSON(http.StatusOK, map[string]any{
		"events":  events,
		"total":   len(events),
		"filter":  filter,
		"search":  search,
		"query":   filter.Encode(search),
		"isEmpty": len(events) == 0,
	})
}

// GetEvent - event detail
func (h *EventsHandler) GetEvent(e *core.RequestEvent) error {
	event, err := h.store.FetchEventByID(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return apiError(err, "Failed to fetch event")
	}
	return e.JSON(http.StatusOK, newEventView(event))
}

// ExportCalendar - single event as an .ics download
func (h *EventsHandler) ExportCalendar(e *core.RequestEvent) error {
	event, err := h.store.FetchEventByID(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return apiError(err, "Failed to fetch event")
	}

	ics, err := services.ExportCalendar([]models.Event{event}, h.loc, h.now())
	if err != nil {
		slog.Error("Calendar export failed", "event_id", event.ID, "error", err)
		return apis.NewInternalServerError("Failed to export event", nil)
	}

	e.Response.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "event-"+event.ID+".ics"))
	return e.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

// Register - book the signed-in user onto an event
func (h *EventsHandler) Register(e *core.RequestEvent) error {
	session, ok := security.SessionFrom(e)
	if !ok {
		return apis.NewUnauthorizedError("Please log in to continue", nil)
	}

	event, err := h.store.RegisterAttendee(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return apiError(err, "Failed to register for event")
	}

	slog.Info("Attendee registered", "event_id", event.ID, "user_id", session.User.ID)

	return e.JSON(http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Congratulations! You have successfully registered for %s", event.Title),
		"event":   newEventView(event),
	})
}
