package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foaademad/event-test/data"
	"github.com/foaademad/event-test/internal/services"
	"github.com/foaademad/event-test/models"
	"github.com/foaademad/event-test/security"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var handlerNow = time.Date(2025, time.May, 14, 15, 30, 0, 0, time.UTC)

type fixture struct {
	seed   *data.Seed
	events *services.EventStore
	auth   *services.AuthStore
	guard  *security.Guard
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	seed, err := data.LoadSeed("")
	require.NoError(t, err)

	events := services.NewEventStore(
		services.NewMockBackend(seed.Events, nil),
		services.WithClock(func() time.Time { return handlerNow }),
	)
	_, err = events.FetchEvents(context.Background())
	require.NoError(t, err)

	auth := services.NewAuthStore(seed.Users, services.NewMemorySessionStore(), nil, services.AuthConfig{
		Secret: []byte("handler-test"),
	})

	return fixture{seed: seed, events: events, auth: auth, guard: security.NewGuard(auth)}
}

func (f fixture) token(t *testing.T, email string) string {
	t.Helper()
	session, err := f.auth.Login(context.Background(), email, services.DefaultDemoPassword)
	require.NoError(t, err)
	return session.Token
}

// newRequestEvent builds a request event without an app. body may be a
// string sent verbatim or any value encoded as JSON.
func newRequestEvent(method, target string, body any) (*core.RequestEvent, *httptest.ResponseRecorder) {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()

	e := &core.RequestEvent{}
	e.Request = req
	e.Response = rec
	return e, rec
}

func withToken(e *core.RequestEvent, token string) *core.RequestEvent {
	e.Request.Header.Set("Authorization", "Bearer "+token)
	return e
}

func withPath(e *core.RequestEvent, name, value string) *core.RequestEvent {
	e.Request.SetPathValue(name, value)
	return e
}

func requireAPIStatus(t *testing.T, err error, code int) *router.ApiError {
	t.Helper()
	var apiErr *router.ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, code, apiErr.Status)
	return apiErr
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

type listResponse struct {
	Events  []models.Event `json:"events"`
	Total   int            `json:"total"`
	Query   string         `json:"query"`
	IsEmpty bool           `json:"isEmpty"`
}

func eventIDs(events []models.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestEventsHandler_ListEvents(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantIDs   []string
		wantQuery string
	}{
		{"no filter", "", []string{"1", "2", "3", "4", "5", "6"}, ""},
		{"category", "category=music", []string{"2"}, "category=music"},
		{"free", "price=free", []string{"5"}, "price=free"},
		{"search", "search=MARATHON", []string{"6"}, "search=MARATHON"},
		{"this month", "date=this-month", []string{"1", "4"}, "date=this-month"},
		{"no match", "category=health", []string{}, "category=health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			h := NewEventsHandler(f.events, time.UTC)
			e, rec := newRequestEvent(http.MethodGet, "/api/v1/events?"+tt.query, nil)

			require.NoError(t, h.ListEvents(e))

			assert.Equal(t, http.StatusOK, rec.Code)
			got := decode[listResponse](t, rec)
			assert.Equal(t, tt.wantIDs, eventIDs(got.Events))
			assert.Equal(t, len(tt.wantIDs), got.Total)
			assert.Equal(t, tt.wantQuery, got.Query)
			assert.Equal(t, len(tt.wantIDs) == 0, got.IsEmpty)
		})
	}
}

func TestEventsHandler_ListEventsRejectsUnknownBucket(t *testing.T) {
	f := newFixture(t)
	h := NewEventsHandler(f.events, time.UTC)
	e, _ := newRequestEvent(http.MethodGet, "/api/v1/events?date=someday", nil)

	requireAPIStatus(t, h.ListEvents(e), http.StatusBadRequest)
}

func TestEventsHandler_GetEvent(t *testing.T) {
	f := newFixture(t)
	h := NewEventsHandler(f.events, time.UTC)

	e, rec := newRequestEvent(http.MethodGet, "/api/v1/events/2", nil)
	require.NoError(t, h.GetEvent(withPath(e, "id", "2")))

	got := decode[map[string]any](t, rec)
	assert.Equal(t, "Summer Music Festival", got["title"])
	assert.Equal(t, true, got["soldOut"])
	assert.Equal(t, float64(100), got["capacityPercent"])

	e, _ = newRequestEvent(http.MethodGet, "/api/v1/events/99", nil)
	requireAPIStatus(t, h.GetEvent(withPath(e, "id", "99")), http.StatusNotFound)
}

func TestEventsHandler_ExportCalendar(t *testing.T) {
	f := newFixture(t)
	h := NewEventsHandler(f.events, time.UTC)
	h.now = func() time.Time { return handlerNow }

	e, rec := newRequestEvent(http.MethodGet, "/api/v1/events/4/calendar.ics", nil)
	require.NoError(t, h.ExportCalendar(withPath(e, "id", "4")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "event-4.ics")
	assert.Contains(t, rec.Body.String(), "SUMMARY:Culinary Masterclass")
	assert.Contains(t, rec.Body.String(), "DTSTART:20250520T180000Z")
}

func TestEventsHandler_Register(t *testing.T) {
	f := newFixture(t)
	h := NewEventsHandler(f.events, time.UTC)
	token := f.token(t, "user@example.com")

	e, rec := newRequestEvent(http.MethodPost, "/api/v1/events/4/register", nil)
	withPath(withToken(e, token), "id", "4")
	require.NoError(t, f.guard.RequireUser(e))
	require.NoError(t, h.Register(e))

	got := decode[map[string]any](t, rec)
	assert.Equal(t, "Congratulations! You have successfully registered for Culinary Masterclass", got["message"])
	assert.Equal(t, 19, f.events.State().Events[3].Attendees)
}

func TestEventsHandler_RegisterFailures(t *testing.T) {
	f := newFixture(t)
	h := NewEventsHandler(f.events, time.UTC)
	token := f.token(t, "user@example.com")

	soldOut, _ := newRequestEvent(http.MethodPost, "/api/v1/events/2/register", nil)
	withPath(withToken(soldOut, token), "id", "2")
	require.NoError(t, f.guard.RequireUser(soldOut))
	requireAPIStatus(t, h.Register(soldOut), http.StatusConflict)

	anonymous, _ := newRequestEvent(http.MethodPost, "/api/v1/events/4/register", nil)
	requireAPIStatus(t, h.Register(withPath(anonymous, "id", "4")), http.StatusUnauthorized)
}

func TestAuthHandler_Login(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler(f.auth)

	e, rec := newRequestEvent(http.MethodPost, "/api/v1/auth/login", models.LoginRequest{
		Email:    "admin@example.com",
		Password: "password",
	})
	require.NoError(t, h.Login(e))

	assert.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}](t, rec)
	assert.NotEmpty(t, got.Token)
	assert.True(t, got.User.IsAdmin)
}

func TestAuthHandler_LoginFailures(t *testing.T) {
	tests := []struct {
		name string
		body any
		code int
	}{
		{"malformed body", `{"email":`, http.StatusBadRequest},
		{"invalid email", models.LoginRequest{Email: "nope", Password: "password"}, http.StatusBadRequest},
		{"wrong password", models.LoginRequest{Email: "admin@example.com", Password: "wrong"}, http.StatusUnauthorized},
		{"unknown user", models.LoginRequest{Email: "ghost@example.com", Password: "password"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			e, _ := newRequestEvent(http.MethodPost, "/api/v1/auth/login", tt.body)

			requireAPIStatus(t, NewAuthHandler(f.auth).Login(e), tt.code)
		})
	}
}

func TestAuthHandler_Signup(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler(f.auth)

	e, rec := newRequestEvent(http.MethodPost, "/api/v1/auth/signup", models.SignupRequest{
		Name:            "New Person",
		Email:           "new@example.com",
		Password:        "longenough",
		ConfirmPassword: "longenough",
	})
	require.NoError(t, h.Signup(e))
	assert.Equal(t, http.StatusCreated, rec.Code)

	taken, _ := newRequestEvent(http.MethodPost, "/api/v1/auth/signup", models.SignupRequest{
		Name:            "Copy",
		Email:           "new@example.com",
		Password:        "longenough",
		ConfirmPassword: "longenough",
	})
	requireAPIStatus(t, h.Signup(taken), http.StatusConflict)

	mismatch, _ := newRequestEvent(http.MethodPost, "/api/v1/auth/signup", models.SignupRequest{
		Name:            "Other",
		Email:           "other@example.com",
		Password:        "longenough",
		ConfirmPassword: "different",
	})
	apiErr := requireAPIStatus(t, h.Signup(mismatch), http.StatusBadRequest)
	assert.Contains(t, apiErr.Data, "confirmPassword")
}

func TestAuthHandler_LogoutAndMe(t *testing.T) {
	f := newFixture(t)
	h := NewAuthHandler(f.auth)
	token := f.token(t, "user@example.com")

	me, rec := newRequestEvent(http.MethodGet, "/api/v1/auth/me", nil)
	require.NoError(t, h.Me(withToken(me, token)))
	state := decode[models.AuthState](t, rec)
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, "Regular User", state.User.Name)

	logout, rec := newRequestEvent(http.MethodPost, "/api/v1/auth/logout", nil)
	require.NoError(t, h.Logout(withToken(logout, token)))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	me, rec = newRequestEvent(http.MethodGet, "/api/v1/auth/me", nil)
	require.NoError(t, h.Me(withToken(me, token)))
	state = decode[models.AuthState](t, rec)
	assert.False(t, state.IsAuthenticated)
	assert.Nil(t, state.User)

	again, _ := newRequestEvent(http.MethodPost, "/api/v1/auth/logout", nil)
	requireAPIStatus(t, h.Logout(withToken(again, token)), http.StatusUnauthorized)
}

func TestAdminHandler_ListEvents(t *testing.T) {
	f := newFixture(t)
	h := NewAdminHandler(f.events, 4)

	e, rec := newRequestEvent(http.MethodGet, "/api/v1/admin/events?page=2", nil)
	require.NoError(t, h.ListEvents(e))

	page := decode[services.Page](t, rec)
	assert.Equal(t, []string{"5", "6"}, eventIDs(page.Events))
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 6, page.Total)

	e, rec = newRequestEvent(http.MethodGet, "/api/v1/admin/events?search=san+francisco", nil)
	require.NoError(t, h.ListEvents(e))
	assert.Equal(t, []string{"1", "2"}, eventIDs(decode[services.Page](t, rec).Events))

	e, _ = newRequestEvent(http.MethodGet, "/api/v1/admin/events?page=two", nil)
	requireAPIStatus(t, h.ListEvents(e), http.StatusBadRequest)
}

func TestAdminHandler_CreateEvent(t *testing.T) {
	f := newFixture(t)
	h := NewAdminHandler(f.events, 10)

	e, rec := newRequestEvent(http.MethodPost, "/api/v1/admin/events", `{
		"title": "Yoga in the Park",
		"description": "Morning session",
		"date": "2025-05-17",
		"time": "08:00",
		"location": "Dolores Park",
		"organizer": "Bay Yoga",
		"price": 0,
		"category": "health",
		"imageUrl": "https://example.com/yoga.jpg",
		"capacity": 40
	}`)
	require.NoError(t, h.CreateEvent(e))

	assert.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.Event](t, rec)
	assert.Equal(t, "7", created.ID)
	assert.True(t, created.Price.IsZero())
	assert.Len(t, f.events.Events(), 7)

	invalid, _ := newRequestEvent(http.MethodPost, "/api/v1/admin/events", `{"title": "", "capacity": -1}`)
	apiErr := requireAPIStatus(t, h.CreateEvent(invalid), http.StatusBadRequest)
	assert.Contains(t, apiErr.Data, "title")
	assert.Contains(t, apiErr.Data, "capacity")
	assert.Len(t, f.events.Events(), 7)
}

func TestAdminHandler_UpdateEvent(t *testing.T) {
	f := newFixture(t)
	h := NewAdminHandler(f.events, 10)

	e, rec := newRequestEvent(http.MethodPatch, "/api/v1/admin/events/3", `{"price": "149.99", "capacity": 60}`)
	require.NoError(t, h.UpdateEvent(withPath(e, "id", "3")))

	updated := decode[models.Event](t, rec)
	assert.Equal(t, "149.99", updated.Price.String())
	assert.Equal(t, 60, updated.Capacity)
	assert.Equal(t, "Business Leadership Workshop", updated.Title)

	empty, _ := newRequestEvent(http.MethodPatch, "/api/v1/admin/events/3", `{}`)
	requireAPIStatus(t, h.UpdateEvent(withPath(empty, "id", "3")), http.StatusBadRequest)

	missing, _ := newRequestEvent(http.MethodPatch, "/api/v1/admin/events/99", `{"title": "x"}`)
	requireAPIStatus(t, h.UpdateEvent(withPath(missing, "id", "99")), http.StatusNotFound)

	invalid, _ := newRequestEvent(http.MethodPatch, "/api/v1/admin/events/3", `{"category": "cooking"}`)
	requireAPIStatus(t, h.UpdateEvent(withPath(invalid, "id", "3")), http.StatusBadRequest)
}

func TestAdminHandler_DeleteEvent(t *testing.T) {
	f := newFixture(t)
	h := NewAdminHandler(f.events, 10)

	e, rec := newRequestEvent(http.MethodDelete, "/api/v1/admin/events/5", nil)
	require.NoError(t, h.DeleteEvent(withPath(e, "id", "5")))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, eventIDs(f.events.Events()), "5")

	again, _ := newRequestEvent(http.MethodDelete, "/api/v1/admin/events/5", nil)
	requireAPIStatus(t, h.DeleteEvent(withPath(again, "id", "5")), http.StatusNotFound)
	assert.Len(t, f.events.Events(), 5)
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	f := newFixture(t)

	e, _ := newRequestEvent(http.MethodDelete, "/api/v1/admin/events/1", nil)
	requireAPIStatus(t, f.guard.RequireAdmin(withToken(e, f.token(t, "user@example.com"))), http.StatusForbidden)

	e, _ = newRequestEvent(http.MethodDelete, "/api/v1/admin/events/1", nil)
	assert.NoError(t, f.guard.RequireAdmin(withToken(e, f.token(t, "admin@example.com"))))
}

func TestPagesHandler(t *testing.T) {
	pages, err := data.LoadPages()
	require.NoError(t, err)
	h := NewPagesHandler(pages)

	e, rec := newRequestEvent(http.MethodGet, "/api/v1/pages/about", nil)
	require.NoError(t, h.GetPage(withPath(e, "slug", "about")))
	page := decode[data.Page](t, rec)
	assert.Equal(t, "about", page.Slug)
	assert.Equal(t, "About Us", page.Title)

	e, _ = newRequestEvent(http.MethodGet, "/api/v1/pages/careers", nil)
	requireAPIStatus(t, h.GetPage(withPath(e, "slug", "careers")), http.StatusNotFound)
}

func TestPagesHandler_Contact(t *testing.T) {
	h := NewPagesHandler(nil)

	e, rec := newRequestEvent(http.MethodPost, "/api/v1/contact", models.ContactRequest{
		Name:    "Ann",
		Email:   "ann@example.com",
		Message: "Hello",
	})
	require.NoError(t, h.Contact(e))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	got := decode[map[string]string](t, rec)
	assert.Regexp(t, `^MSG-[0-9A-F]{6}$`, got["reference"])

	invalid, _ := newRequestEvent(http.MethodPost, "/api/v1/contact", models.ContactRequest{Email: "bad"})
	apiErr := requireAPIStatus(t, h.Contact(invalid), http.StatusBadRequest)
	assert.Contains(t, apiErr.Data, "email")
}

func TestHomeHandler(t *testing.T) {
	f := newFixture(t)
	h := NewHomeHandler(f.events, f.auth, f.seed.FeaturedCategories)

	e, rec := newRequestEvent(http.MethodGet, "/api/v1/home", nil)
	require.NoError(t, h.Home(withToken(e, f.token(t, "admin@example.com"))))

	got := decode[struct {
		FeaturedEvents []models.Event           `json:"featuredEvents"`
		Categories     []data.FeaturedCategory `json:"categories"`
		Auth           models.AuthState        `json:"auth"`
	}](t, rec)
	assert.Equal(t, []string{"1", "2", "3"}, eventIDs(got.FeaturedEvents))
	assert.Len(t, got.Categories, 6)
	assert.True(t, got.Auth.IsAuthenticated)

	anon, rec := newRequestEvent(http.MethodGet, "/api/v1/home", nil)
	require.NoError(t, h.Home(anon))
	assert.False(t, decode[struct {
		Auth models.AuthState `json:"auth"`
	}](t, rec).Auth.IsAuthenticated)
}
