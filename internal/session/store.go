package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the token and the auth object under separate keys that
// share one expiry.
type RedisStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) tokenKey(chatID int64) string {
	return fmt.Sprintf("%s:session:%d:token", s.prefix, chatID)
}

func (s *RedisStore) authKey(chatID int64) string {
	return fmt.Sprintf("%s:session:%d:auth", s.prefix, chatID)
}

func (s *RedisStore) Token(ctx context.Context, chatID int64) (string, error) {
	token, err := s.client.Get(ctx, s.tokenKey(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return token, err
}

func (s *RedisStore) Auth(ctx context.Context, chatID int64) (*Auth, error) {
	data, err := s.client.Get(ctx, s.authKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var auth Auth
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &auth, nil
}

func (s *RedisStore) Save(ctx context.Context, chatID int64, auth *Auth) error {
	data, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	var ttl time.Duration
	if !auth.ExpiresAt.IsZero() {
		ttl = auth.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.Clear(ctx, chatID)
		}
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(chatID), auth.Token, ttl)
		pipe.Set(ctx, s.authKey(chatID), data, ttl)
		return nil
	})
	return err
}

func (s *RedisStore) Clear(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, s.tokenKey(chatID), s.authKey(chatID)).Err()
}

// MemoryStore is the fallback used when Redis is not configured or down.
// Sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Auth
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]Auth), now: time.Now}
}

func (s *MemoryStore) get(chatID int64) (Auth, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	auth, ok := s.sessions[chatID]
	if ok && auth.Expired(s.now()) {
		return Auth{}, false
	}
	return auth, ok
}

func (s *MemoryStore) Token(_ context.Context, chatID int64) (string, error) {
	auth, _ := s.get(chatID)
	return auth.Token, nil
}

func (s *MemoryStore) Auth(_ context.Context, chatID int64) (*Auth, error) {
	auth, ok := s.get(chatID)
	if !ok {
		return nil, nil
	}
	return &auth, nil
}

func (s *MemoryStore) Save(_ context.Context, chatID int64, auth *Auth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = *auth
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
	return nil
}
