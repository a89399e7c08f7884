package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/foaademad/event-test/internal/status"
	"github.com/foaademad/event-test/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultDemoPassword = "password"

// SessionClaims is the payload of a session token. The registered ID (jti)
// names the session in the SessionStore.
type SessionClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

type AuthConfig struct {
	DemoPassword string
	Secret       []byte
	SessionTTL   time.Duration
}

// AuthStore is the mock user directory. Every known user logs in with the
// shared demo password.
type AuthStore struct {
	sessions SessionStore
	latency  Latency
	tracker  Tracker
	password string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	users    []models.User
	inflight int
}

func NewAuthStore(users []models.User, sessions SessionStore, latency Latency, cfg AuthConfig) *AuthStore {
	if latency == nil {
		latency = NoLatency{}
	}
	if cfg.DemoPassword == "" {
		cfg.DemoPassword = DefaultDemoPassword
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &AuthStore{
		sessions: sessions,
		latency:  latency,
		tracker:  nopTracker{},
		password: cfg.DemoPassword,
		secret:   cfg.Secret,
		ttl:      cfg.SessionTTL,
		now:      time.Now,
		users:    append([]models.User{}, users...),
	}
}

func (a *AuthStore) SetTracker(t Tracker) {
	a.tracker = t
}

func (a *AuthStore) begin() time.Time {
	a.mu.Lock()
	a.inflight++
	a.mu.Unlock()
	return time.Now()
}

func (a *AuthStore) finish(op Operation, started time.Time, err error) {
	a.mu.Lock()
	a.inflight--
	a.mu.Unlock()
	a.tracker.TrackOperation(string(op), err, time.Since(started))
}

// Login succeeds when the email is in the directory and password matches the
// demo password.
func (a *AuthStore) Login(ctx context.Context, email, password string) (models.Session, error) {
	started := a.begin()
	session, err := a.login(ctx, email, password)
	a.finish(OpLogin, started, err)
	return session, err
}

func (a *AuthStore) login(ctx context.Context, email, password string) (models.Session, error) {
	if err := a.latency.Wait(ctx, OpLogin); err != nil {
		return models.Session{}, err
	}

	user, ok := a.lookup(email)
	if !ok || subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		return models.Session{}, fmt.Errorf("login %s: %w", email, status.ErrInvalidCredentials)
	}

	session, err := a.issue(ctx, user)
	if err != nil {
		return models.Session{}, err
	}
	slog.Info("User logged in", "user_id", user.ID, "session_id", session.ID)
	return session, nil
}

// Signup adds a regular user to the directory and logs them in. password is
// not stored; later logins use the demo password like everyone else.
func (a *AuthStore) Signup(ctx context.Context, name, email, _ string) (models.Session, error) {
	started := a.begin()
	session, err := a.signup(ctx, name, email)
	a.finish(OpSignup, started, err)
	return session, err
}

func (a *AuthStore) signup(ctx context.Context, name, email string) (models.Session, error) {
	if err := a.latency.Wait(ctx, OpSignup); err != nil {
		return models.Session{}, err
	}

	a.mu.Lock()
	key := models.NormalizeEmail(email)
	for _, u := range a.users {
		if models.NormalizeEmail(u.Email) == key {
			a.mu.Unlock()
			return models.Session{}, fmt.Errorf("signup %s: %w", email, status.ErrEmailTaken)
		}
	}
	user := models.User{
		ID:    strconv.Itoa(len(a.users) + 1),
		Name:  name,
		Email: key,
	}
	a.users = append(a.users, user)
	a.mu.Unlock()

	session, err := a.issue(ctx, user)
	if err != nil {
		return models.Session{}, err
	}
	slog.Info("User signed up", "user_id", user.ID, "email", user.Email)
	return session, nil
}

// Logout revokes the session behind token. An expired token can still be
// logged out.
func (a *AuthStore) Logout(ctx context.Context, token string) error {
	claims, err := a.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return err
	}
	if err := a.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	slog.Info("User logged out", "user_id", claims.Subject, "session_id", claims.ID)
	return nil
}

// Authenticate resolves a bearer token to its live session.
func (a *AuthStore) Authenticate(ctx context.Context, token string) (models.Session, error) {
	claims, err := a.parse(token)
	if err != nil {
		return models.Session{}, err
	}

	session, err := a.sessions.Get(ctx, claims.ID)
	if err != nil {
		return models.Session{}, fmt.Errorf("authenticate: %w", err)
	}
	if session.Expired(a.now()) {
		return models.Session{}, fmt.Errorf("authenticate: session expired: %w", status.ErrUnauthenticated)
	}
	return session, nil
}

// State describes the caller holding token. An empty token is an anonymous
// caller, not an error.
func (a *AuthStore) State(ctx context.Context, token string) models.AuthState {
	a.mu.RLock()
	state := models.AuthState{IsLoading: a.inflight > 0}
	a.mu.RUnlock()

	if token == "" {
		return state
	}

	session, err := a.Authenticate(ctx, token)
	if err != nil {
		msg := status.Message(err, "Please log in to continue")
		state.Error = &msg
		return state
	}

	user := session.User
	state.User = &user
	state.IsAuthenticated = true
	return state
}

func (a *AuthStore) Users() []models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]models.User{}, a.users...)
}

// PurgeSessions drops sessions that have outlived their expiry.
func (a *AuthStore) PurgeSessions(ctx context.Context) (int, error) {
	return a.sessions.Purge(ctx, a.now())
}

func (a *AuthStore) lookup(email string) (models.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	key := models.NormalizeEmail(email)
	for _, u := range a.users {
		if models.NormalizeEmail(u.Email) == key {
			return u, true
		}
	}
	return models.User{}, false
}

func (a *AuthStore) issue(ctx context.Context, user models.User) (models.Session, error) {
	now := a.now()
	session := models.Session{
		ID:        uuid.NewString(),
		User:      user,
		IssuedAt:  now,
		ExpiresAt: now.Add(a.ttl),
	}

	claims := SessionClaims{
		Name:  user.Name,
		Email: user.Email,
		Admin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return models.Session{}, fmt.Errorf("sign session token: %w", err)
	}
	session.Token = token

	if err := a.sessions.Save(ctx, session); err != nil {
		return models.Session{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

func (a *AuthStore) parse(token string, opts ...jwt.ParserOption) (*SessionClaims, error) {
	if token == "" {
		return nil, status.ErrUnauthenticated
	}

	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("parse token: session expired: %w", status.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("parse token: %v: %w", err, status.ErrUnauthenticated)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("parse token: missing session id: %w", status.ErrUnauthenticated)
	}
	return claims, nil
}
