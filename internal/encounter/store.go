package encounter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dengue-triage/internal/triage"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps live sessions between requests.
type SessionStore interface {
	Get(ctx context.Context, id string) (*triage.Session, error)
	Save(ctx context.Context, s *triage.Session) error
}

type memoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore keeps sessions in process. Sessions are stored encoded so
// callers never share a *triage.Session.
func NewMemoryStore() SessionStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, id string) (*triage.Session, error) {
	m.mu.RLock()
	raw, ok := m.data[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return decodeSession(raw)
}

func (m *memoryStore) Save(_ context.Context, s *triage.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	m.mu.Lock()
	m.data[s.ID()] = raw
	m.mu.Unlock()
	return nil
}

const sessionKeyPrefix = "triage:session:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore keeps sessions in Redis; every save refreshes the TTL.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	return &redisStore{client: client, ttl: ttl}
}

func (r *redisStore) Get(ctx context.Context, id string) (*triage.Session, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return decodeSession(raw)
}

func (r *redisStore) Save(ctx context.Context, s *triage.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+s.ID(), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID(), err)
	}
	return nil
}

func decodeSession(raw []byte) (*triage.Session, error) {
	var s triage.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}
