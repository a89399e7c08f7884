package monitoring

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/foaademad/event-test/models"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "events_total",
			Help: "Current number of events per category",
		},
		[]string{"category"},
	)

	soldOutEvents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "events_sold_out_total",
			Help: "Current number of sold out events",
		},
	)

	attendeesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "event_attendees_total",
			Help: "Seats taken across all events",
		},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions_total",
			Help: "Current number of live sessions",
		},
	)

	registeredUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "registered_users_total",
			Help: "Users in the directory",
		},
	)

	storeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total store operations",
		},
		[]string{"operation", "status"},
	)

	storeOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of store operations including simulated latency",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
		},
		[]string{"operation"},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"method", "route", "code"},
	)
)

type CatalogSource interface {
	Events() []models.Event
}

type UserSource interface {
	Users() []models.User
}

type SessionCounter interface {
	Count(ctx context.Context) (int, error)
}

// OperationTracker feeds store call outcomes into the operation metrics. It
// carries no state so stores can be given one before the Monitor exists.
type OperationTracker struct{}

// TrackOperation records a store call.
func (OperationTracker) TrackOperation(operation string, err error, elapsed time.Duration) {
	result := "success"
	if err != nil {
		result = "error"
	}
	storeOperations.WithLabelValues(operation, result).Inc()
	storeOperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

type Monitor struct {
	OperationTracker

	catalog  CatalogSource
	users    UserSource
	sessions SessionCounter
}

func NewMonitor(catalog CatalogSource, users UserSource, sessions SessionCounter) *Monitor {
	return &Monitor{
		catalog:  catalog,
		users:    users,
		sessions: sessions,
	}
}

// Collect refreshes every gauge. It is run on the metrics schedule.
func (m *Monitor) Collect(ctx context.Context) {
	m.collectCatalogMetrics()
	registeredUsers.Set(float64(len(m.users.Users())))

	count, err := m.sessions.Count(ctx)
	if err != nil {
		slog.Warn("Failed to count sessions", "error", err)
		return
	}
	activeSessions.Set(float64(count))
}

func (m *Monitor) collectCatalogMetrics() {
	perCategory := make(map[models.Category]int, len(models.Categories))
	for _, c := range models.Categories {
		perCategory[c] = 0
	}

	soldOut, attendees := 0, 0
	for _, e := range m.catalog.Events() {
		perCategory[e.Category]++
		attendees += e.Attendees
		if e.SoldOut() {
			soldOut++
		}
	}

	for c, n := range perCategory {
		eventsTotal.WithLabelValues(string(c)).Set(float64(n))
	}
	soldOutEvents.Set(float64(soldOut))
	attendeesTotal.Set(float64(attendees))
}

// RequestMetrics counts every request by its route pattern.
func RequestMetrics(e *core.RequestEvent) error {
	err := e.Next()

	code := e.Status()
	var apiErr *router.ApiError
	if errors.As(err, &apiErr) {
		code = apiErr.Status
	} else if err != nil {
		code = 500
	}
	if code == 0 {
		code = 200
	}

	route := e.Request.Pattern
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(e.Request.Method, route, strconv.Itoa(code)).Inc()
	return err
}
