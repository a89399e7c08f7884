package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/foaademad/event-test/internal/status"
	"github.com/foaademad/event-test/models"
)

// Backend is the event data service the store talks to.
type Backend interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (models.Event, error)
	CreateEvent(ctx context.Context, event models.Event) (models.Event, error)
	UpdateEvent(ctx context.Context, id string, patch models.EventPatch) (models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	RegisterAttendee(ctx context.Context, id string) (models.Event, error)
}

// MockBackend keeps the catalog in memory and waits on its Latency before
// every call resolves.
type MockBackend struct {
	latency Latency

	mu     sync.RWMutex
	events []models.Event
}

func NewMockBackend(seed []models.Event, latency Latency) *MockBackend {
	if latency == nil {
		latency = NoLatency{}
	}
	return &MockBackend{
		latency: latency,
		events:  append([]models.Event{}, seed...),
	}
}

func (b *MockBackend) ListEvents(ctx context.Context) ([]models.Event, error) {
	if err := b.latency.Wait(ctx, OpListEvents); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]models.Event{}, b.events...), nil
}

func (b *MockBackend) GetEvent(ctx context.Context, id string) (models.Event, error) {
	if err := b.latency.Wait(ctx, OpGetEvent); err != nil {
		return models.Event{}, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	i := b.indexOf(id)
	if i < 0 {
		return models.Event{}, fmt.Errorf("get event %s: %w", id, status.ErrEventNotFound)
	}
	return b.events[i], nil
}

// CreateEvent assigns the next identifier (count + 1, skipping ids in use)
// and resets attendance.
func (b *MockBackend) CreateEvent(ctx context.Context, event models.Event) (models.Event, error) {
	if err := b.latency.Wait(ctx, OpCreateEvent); err != nil {
		return models.Event{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	event.ID = b.nextID()
	event.Attendees = 0
	b.events = append(b.events, event)

	slog.Info("Event created", "event_id", event.ID, "title", event.Title)
	return event, nil
}

func (b *MockBackend) UpdateEvent(ctx context.Context, id string, patch models.EventPatch) (models.Event, error) {
	if err := b.latency.Wait(ctx, OpUpdateEvent); err != nil {
		return models.Event{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return models.Event{}, fmt.Errorf("update event %s: %w", id, status.ErrEventNotFound)
	}
	patch.Apply(&b.events[i])
	return b.events[i], nil
}

func (b *MockBackend) DeleteEvent(ctx context.Context, id string) error {
	if err := b.latency.Wait(ctx, OpDeleteEvent); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete event %s: %w", id, status.ErrEventNotFound)
	}
	b.events = append(b.events[:i], b.events[i+1:]...)
	return nil
}

func (b *MockBackend) RegisterAttendee(ctx context.Context, id string) (models.Event, error) {
	if err := b.latency.Wait(ctx, OpRegisterEvent); err != nil {
		return models.Event{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return models.Event{}, fmt.Errorf("register for event %s: %w", id, status.ErrEventNotFound)
	}
	if b.events[i].SoldOut() {
		return models.Event{}, fmt.Errorf("register for event %s: %w", id, status.ErrEventSoldOut)
	}
	b.events[i].Attendees++
	return b.events[i], nil
}

// indexOf must be called with b.mu held.
func (b *MockBackend) indexOf(id string) int {
	for i := range b.events {
		if b.events[i].ID == id {
			return i
		}
	}
	return -1
}

// nextID must be called with b.mu held.
func (b *MockBackend) nextID() string {
	n := len(b.events) + 1
	for b.indexOf(strconv.Itoa(n)) >= 0 {
		n++
	}
	return strconv.Itoa(n)
}
