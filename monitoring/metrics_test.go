package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foaademad/event-test/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type catalogStub []models.Event

func (c catalogStub) Events() []models.Event { return c }

type usersStub []models.User

func (u usersStub) Users() []models.User { return u }

type sessionsStub struct {
	count int
	err   error
}

func (s sessionsStub) Count(context.Context) (int, error) { return s.count, s.err }

func TestMonitor_Collect(t *testing.T) {
	catalog := catalogStub{
		{ID: "1", Category: models.CategoryMusic, Attendees: 10, Capacity: 10},
		{ID: "2", Category: models.CategoryMusic, Attendees: 3, Capacity: 10},
		{ID: "3", Category: models.CategoryFood, Attendees: 1, Capacity: 5},
	}
	m := NewMonitor(catalog, usersStub{{ID: "1"}, {ID: "2"}}, sessionsStub{count: 4})

	m.Collect(context.Background())

	assert.Equal(t, 2.0, testutil.ToFloat64(eventsTotal.WithLabelValues("music")))
	assert.Equal(t, 1.0, testutil.ToFloat64(eventsTotal.WithLabelValues("food")))
	assert.Equal(t, 0.0, testutil.ToFloat64(eventsTotal.WithLabelValues("health")))
	assert.Equal(t, 1.0, testutil.ToFloat64(soldOutEvents))
	assert.Equal(t, 14.0, testutil.ToFloat64(attendeesTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(registeredUsers))
	assert.Equal(t, 4.0, testutil.ToFloat64(activeSessions))
}

func TestMonitor_CollectKeepsSessionGaugeOnError(t *testing.T) {
	m := NewMonitor(catalogStub{}, usersStub{}, sessionsStub{count: 7})
	m.Collect(context.Background())

	m = NewMonitor(catalogStub{}, usersStub{}, sessionsStub{err: errors.New("redis down")})
	m.Collect(context.Background())

	assert.Equal(t, 7.0, testutil.ToFloat64(activeSessions))
}

func TestMonitor_TrackOperation(t *testing.T) {
	m := NewMonitor(catalogStub{}, usersStub{}, sessionsStub{})

	before := testutil.ToFloat64(storeOperations.WithLabelValues("create_event", "error"))
	m.TrackOperation("create_event", errors.New("boom"), 10*time.Millisecond)
	m.TrackOperation("create_event", nil, 10*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(storeOperations.WithLabelValues("create_event", "error")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(storeOperations.WithLabelValues("create_event", "success")), 1.0)
}
