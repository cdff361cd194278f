package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"arcana-be/internal/apperr"

	"github.com/redis/go-redis/v9"
)

// stateTTL bounds how long a pending consent redirect stays valid.
const stateTTL = 10 * time.Minute

// StatePayload travels through the consent round trip so the callback
// can locate the workspace that initiated it.
type StatePayload struct {
	WorkspaceID string `json:"workspace_id"`
	UserID      string `json:"user_id"`
	Provider    string `json:"provider"`
}

// StateStore issues single-use anti-forgery states for OAuth consent
// flows.
type StateStore interface {
	Issue(ctx context.Context, payload StatePayload) (string, error)
	// Consume validates and burns a state. Unknown or expired states
	// fail with VALIDATION.
	Consume(ctx context.Context, state string) (*StatePayload, error)
}

func newStateToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// NewStateStore picks Redis when a URL is configured, otherwise the
// in-process store. Single-instance deployments need no Redis.
func NewStateStore(redisURL string) (StateStore, error) {
	if redisURL == "" {
		return NewMemoryStateStore(), nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return NewRedisStateStore(redis.NewClient(opts)), nil
}

type memoryStateEntry struct {
	payload   StatePayload
	expiresAt time.Time
}

// MemoryStateStore keeps pending states in process memory.
type MemoryStateStore struct {
	mu      sync.Mutex
	entries map[string]memoryStateEntry
	now     func() time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		entries: make(map[string]memoryStateEntry),
		now:     time.Now,
	}
}

func (s *MemoryStateStore) Issue(_ context.Context, payload StatePayload) (string, error) {
	token, err := newStateToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Opportunistic sweep keeps the map from growing unbounded.
	now := s.now()
	for k, e := range s.entries {
		if e.expiresAt.Before(now) {
			delete(s.entries, k)
		}
	}

	s.entries[token] = memoryStateEntry{payload: payload, expiresAt: now.Add(stateTTL)}
	return token, nil
}

func (s *MemoryStateStore) Consume(_ context.Context, state string) (*StatePayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[state]
	if !ok {
		return nil, apperr.New(apperr.KindValidation, "unknown oauth state")
	}
	delete(s.entries, state)

	if entry.expiresAt.Before(s.now()) {
		return nil, apperr.New(apperr.KindValidation, "oauth state expired")
	}
	payload := entry.payload
	return &payload, nil
}

// RedisStateStore shares pending states across instances.
type RedisStateStore struct {
	client *redis.Client
}

func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client}
}

func stateKey(state string) string {
	return "oauth:state:" + state
}

func (s *RedisStateStore) Issue(ctx context.Context, payload StatePayload) (string, error) {
	token, err := newStateToken()
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, stateKey(token), raw, stateTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) (*StatePayload, error) {
	raw, err := s.client.GetDel(ctx, stateKey(state)).Result()
	if err == redis.Nil {
		return nil, apperr.New(apperr.KindValidation, "unknown or expired oauth state")
	}
	if err != nil {
		return nil, err
	}
	var payload StatePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, apperr.Wrap(apperr.KindParsingFailed, "oauth state payload", err)
	}
	return &payload, nil
}
