package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/areahoodnigeria/client-app-sub001/internal/domain"
	"github.com/redis/go-redis/v9"
)

// StateTTL drops forms that were abandoned halfway.
const StateTTL = 24 * time.Hour

type RedisStateRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisStateRepository(client *redis.Client, prefix string) *RedisStateRepository {
	return &RedisStateRepository{client: client, prefix: prefix}
}

func (r *RedisStateRepository) key(userID int64) string {
	return fmt.Sprintf("%s:state:%d", r.prefix, userID)
}

func (r *RedisStateRepository) GetState(ctx context.Context, userID int64) (*domain.UserState, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state domain.UserState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state for %d: %w", userID, err)
	}
	return &state, nil
}

func (r *RedisStateRepository) SetState(ctx context.Context, state *domain.UserState) error {
	state.UpdatedAt = time.Now()
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(state.UserID), data, StateTTL).Err()
}

func (r *RedisStateRepository) ClearState(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}

// MemoryStateRepository keeps states in process memory.
type MemoryStateRepository struct {
	mu     sync.RWMutex
	states map[int64]domain.UserState
}

func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{states: make(map[int64]domain.UserState)}
}

func (r *MemoryStateRepository) GetState(_ context.Context, userID int64) (*domain.UserState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.states[userID]
	if !ok || time.Since(state.UpdatedAt) > StateTTL {
		return nil, nil
	}
	// copy so callers cannot mutate the stored map
	data := make(map[string]string, len(state.TempData))
	for k, v := range state.TempData {
		data[k] = v
	}
	state.TempData = data
	return &state, nil
}

func (r *MemoryStateRepository) SetState(_ context.Context, state *domain.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *state
	stored.UpdatedAt = time.Now()
	stored.TempData = make(map[string]string, len(state.TempData))
	for k, v := range state.TempData {
		stored.TempData[k] = v
	}
	r.states[state.UserID] = stored
	return nil
}

func (r *MemoryStateRepository) ClearState(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, userID)
	return nil
}
