package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/foaademad/event-test/internal/status"
	"github.com/foaademad/event-test/models"
)

// Tracker receives the outcome of every store operation.
type Tracker interface {
	TrackOperation(operation string, err error, elapsed time.Duration)
}

type nopTracker struct{}

func (nopTracker) TrackOperation(string, error, time.Duration) {}

// EventStore owns the event list, the filtered view and the selected event.
// State only changes through its methods.
type EventStore struct {
	backend   Backend
	notifier  Notifier
	tracker   Tracker
	clock     func() time.Time
	weekStart time.Weekday

	mu       sync.RWMutex
	events   []models.Event
	filtered []models.Event
	selected *models.Event
	inflight int
	errMsg   string
}

type EventStoreOption func(*EventStore)

func WithNotifier(n Notifier) EventStoreOption {
	return func(s *EventStore) { s.notifier = n }
}

func WithTracker(t Tracker) EventStoreOption {
	return func(s *EventStore) { s.tracker = t }
}

// WithClock sets the time source date buckets are resolved against.
func WithClock(clock func() time.Time) EventStoreOption {
	return func(s *EventStore) { s.clock = clock }
}

func WithWeekStart(day time.Weekday) EventStoreOption {
	return func(s *EventStore) { s.weekStart = day }
}

func NewEventStore(backend Backend, opts ...EventStoreOption) *EventStore {
	s := &EventStore{
		backend:   backend,
		notifier:  NopNotifier{},
		tracker:   nopTracker{},
		clock:     time.Now,
		weekStart: time.Sunday,
		events:    []models.Event{},
		filtered:  []models.Event{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *EventStore) begin() time.Time {
	s.mu.Lock()
	s.inflight++
	s.errMsg = ""
	s.mu.Unlock()
	return time.Now()
}

// finish must not be called with s.mu held.
func (s *EventStore) finish(op Operation, started time.Time, err error, fallback string) {
	s.mu.Lock()
	s.inflight--
	if err != nil {
		s.errMsg = status.Message(err, fallback)
	}
	s.mu.Unlock()

	if err != nil {
		slog.Warn("Event store operation failed", "operation", op, "error", err)
	}
	s.tracker.TrackOperation(string(op), err, time.Since(started))
}

// FetchEvents loads the full catalog into the store.
func (s *EventStore) FetchEvents(ctx context.Context) ([]models.Event, error) {
	started := s.begin()

	events, err := s.backend.ListEvents(ctx)
	if err == nil {
		s.mu.Lock()
		s.events = events
		s.mu.Unlock()
	}

	s.finish(OpListEvents, started, err, "Failed to fetch events")
	if err != nil {
		return nil, err
	}
	return append([]models.Event{}, events...), nil
}

// FetchEventByID selects the event with the given id.
func (s *EventStore) FetchEventByID(ctx context.Context, id string) (models.Event, error) {
	started := s.begin()

	event, err := s.backend.GetEvent(ctx, id)
	if err == nil {
		s.mu.Lock()
		selected := event
		s.selected = &selected
		s.mu.Unlock()
	}

	s.finish(OpGetEvent, started, err, "Failed to fetch event")
	return event, err
}

func (s *EventStore) CreateEvent(ctx context.Context, input models.EventInput) (models.Event, error) {
	started := s.begin()

	var created models.Event
	err := input.Validate()
	if err == nil {
		created, err = s.backend.CreateEvent(ctx, input.ToEvent())
	}
	if err == nil {
		s.mu.Lock()
		s.events = append(s.events, created)
		s.mu.Unlock()
		s.notify(ctx, "event_created", created)
	}

	s.finish(OpCreateEvent, started, err, "Failed to create event")
	return created, err
}

// UpdateEvent merges patch into the event and refreshes every copy the
// store holds of it.
func (s *EventStore) UpdateEvent(ctx context.Context, id string, patch models.EventPatch) (models.Event, error) {
	started := s.begin()

	var updated models.Event
	err := patch.Validate()
	if err == nil {
		updated, err = s.backend.UpdateEvent(ctx, id, patch)
	}
	if err == nil {
		s.replace(updated)
		s.notify(ctx, "event_updated", updated)
	}

	s.finish(OpUpdateEvent, started, err, "Failed to update event")
	return updated, err
}

// DeleteEvent removes the event from the full and filtered lists. An unknown
// id leaves both untouched.
func (s *EventStore) DeleteEvent(ctx context.Context, id string) error {
	started := s.begin()

	err := s.backend.DeleteEvent(ctx, id)
	if err == nil {
		s.mu.Lock()
		s.events = withoutEvent(s.events, id)
		s.filtered = withoutEvent(s.filtered, id)
		if s.selected != nil && s.selected.ID == id {
			s.selected = nil
		}
		s.mu.Unlock()
		s.notify(ctx, "event_deleted", map[string]string{"id": id})
	}

	s.finish(OpDeleteEvent, started, err, "Failed to delete event")
	return err
}

// RegisterAttendee takes one seat for the caller.
func (s *EventStore) RegisterAttendee(ctx context.Context, id string) (models.Event, error) {
	started := s.begin()

	event, err := s.backend.RegisterAttendee(ctx, id)
	if err == nil {
		s.replace(event)
		s.notify(ctx, "event_registered", event)
	}

	s.finish(OpRegisterEvent, started, err, "Failed to register for event")
	return event, err
}

// FilterEvents recomputes the filtered view from the full list and returns
// it.
func (s *EventStore) FilterEvents(f models.Filter, search string) []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filtered = FilterEvents(s.events, f, search, s.clock(), s.weekStart)
	return append([]models.Event{}, s.filtered...)
}

// Events returns a copy of the full list.
func (s *EventStore) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Event{}, s.events...)
}

func (s *EventStore) State() models.EventsState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := models.EventsState{
		Events:         append([]models.Event{}, s.events...),
		FilteredEvents: append([]models.Event{}, s.filtered...),
		IsLoading:      s.inflight > 0,
	}
	if s.selected != nil {
		selected := *s.selected
		state.SelectedEvent = &selected
	}
	if s.errMsg != "" {
		msg := s.errMsg
		state.Error = &msg
	}
	return state
}

func (s *EventStore) replace(event models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID == event.ID {
			s.events[i] = event
		}
	}
	for i := range s.filtered {
		if s.filtered[i].ID == event.ID {
			s.filtered[i] = event
		}
	}
	if s.selected != nil && s.selected.ID == event.ID {
		selected := event
		s.selected = &selected
	}
}

func (s *EventStore) notify(ctx context.Context, kind string, payload any) {
	if err := s.notifier.Publish(ctx, kind, payload); err != nil {
		slog.Warn("Failed to publish event change", "type", kind, "error", err)
	}
}

func withoutEvent(events []models.Event, id string) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
