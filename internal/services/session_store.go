package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/foaademad/event-test/internal/status"
	"github.com/foaademad/event-test/models"
	"github.com/redis/go-redis/v9"
)

// SessionStore is the registry of live sessions. A token is only honoured
// while its session is present here.
type SessionStore interface {
	Save(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, id string) error
	// Purge drops sessions expired at now and reports how many went.
	Purge(ctx context.Context, now time.Time) (int, error)
	Count(ctx context.Context) (int, error)
}

type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]models.Session)}
}

func (m *MemorySessionStore) Save(_ context.Context, session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return models.Session{}, fmt.Errorf("get session %s: %w", id, status.ErrSessionNotFound)
	}
	return session, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("delete session %s: %w", id, status.ErrSessionNotFound)
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessionStore) Purge(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	purged := 0
	for id, session := range m.sessions {
		if session.Expired(now) {
			delete(m.sessions, id)
			purged++
		}
	}
	return purged, nil
}

func (m *MemorySessionStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions), nil
}

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps each session in a hash that expires with the
// session itself.
type RedisSessionStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client, now: time.Now}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *RedisSessionStore) Save(ctx context.Context, session models.Session) error {
	key := sessionKey(session.ID)

	err := r.client.HSet(ctx, key,
		"token", session.Token,
		"user_id", session.User.ID,
		"name", session.User.Name,
		"email", session.User.Email,
		"is_admin", strconv.FormatBool(session.User.IsAdmin),
		"issued_at", session.IssuedAt.UTC().Format(time.RFC3339Nano),
		"expires_at", session.ExpiresAt.UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}

	if session.ExpiresAt.IsZero() {
		return nil
	}
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("expire session %s: %w", session.ID, err)
	}
	return nil
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (models.Session, error) {
	fields, err := r.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return models.Session{}, fmt.Errorf("get session %s: %w", id, err)
	}
	if len(fields) == 0 {
		return models.Session{}, fmt.Errorf("get session %s: %w", id, status.ErrSessionNotFound)
	}

	isAdmin, _ := strconv.ParseBool(fields["is_admin"])
	issuedAt, _ := time.Parse(time.RFC3339Nano, fields["issued_at"])
	expiresAt, _ := time.Parse(time.RFC3339Nano, fields["expires_at"])

	return models.Session{
		ID:    id,
		Token: fields["token"],
		User: models.User{
			ID:      fields["user_id"],
			Name:    fields["name"],
			Email:   fields["email"],
			IsAdmin: isAdmin,
		},
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete session %s: %w", id, status.ErrSessionNotFound)
	}
	return nil
}

// Purge is a no-op: Redis drops session hashes once their TTL lapses.
func (r *RedisSessionStore) Purge(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (r *RedisSessionStore) Count(ctx context.Context) (int, error) {
	keys, err := r.client.Keys(ctx, sessionKeyPrefix+"*").Result()
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return len(keys), nil
}
