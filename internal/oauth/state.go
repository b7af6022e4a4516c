package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStateNotFound is returned for a state that was never issued, has
// expired, or was already consumed.
var ErrStateNotFound = errors.New("oauth state not found")

// StateStore remembers which provider a pending state belongs to.  Each
// state can be consumed once.
type StateStore interface {
	Save(ctx context.Context, state, provider string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (string, error)
}

// NewState returns a random URL-safe state value.
func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

const stateKeyPrefix = "oauth_state:"

// RedisStateStore keeps states in Redis so that any instance can finish a
// handshake.
type RedisStateStore struct {
	client *redis.Client
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

func (s *RedisStateStore) Save(ctx context.Context, state, provider string, ttl time.Duration) error {
	return s.client.Set(ctx, stateKeyPrefix+state, provider, ttl).Err()
}

// Consume reads and deletes the state atomically.
func (s *RedisStateStore) Consume(ctx context.Context, state string) (string, error) {
	provider, err := s.client.GetDel(ctx, stateKeyPrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrStateNotFound
	}
	if err != nil {
		return "", err
	}
	return provider, nil
}

type memoryState struct {
	provider string
	expires  time.Time
}

// MemoryStateStore is the single-instance fallback used when Redis is not
// available.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]memoryState
	now    func() time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]memoryState), now: time.Now}
}

func (s *MemoryStateStore) Save(_ context.Context, state, provider string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	// sweep expired entries so abandoned logins do not accumulate
	for k, v := range s.states {
		if now.After(v.expires) {
			delete(s.states, k)
		}
	}
	s.states[state] = memoryState{provider: provider, expires: now.Add(ttl)}
	return nil
}

func (s *MemoryStateStore) Consume(_ context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.states[state]
	if !ok {
		return "", ErrStateNotFound
	}
	delete(s.states, state)
	if s.now().After(v.expires) {
		return "", ErrStateNotFound
	}
	return v.provider, nil
}

var (
	_ StateStore = (*RedisStateStore)(nil)
	_ StateStore = (*MemoryStateStore)(nil)
)
