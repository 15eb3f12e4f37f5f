package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisCheckoutRepository remembers checkouts opened from the bot until the
// widget calls back.
type RedisCheckoutRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisCheckoutRepository(client *redis.Client, prefix string) *RedisCheckoutRepository {
	return &RedisCheckoutRepository{client: client, prefix: prefix}
}

func (r *RedisCheckoutRepository) key(reference string) string {
	return fmt.Sprintf("%s:checkout:%s", r.prefix, reference)
}

func (r *RedisCheckoutRepository) Put(ctx context.Context, c *models.Checkout, ttl time.Duration) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(c.Reference), data, ttl).Err()
}

func (r *RedisCheckoutRepository) Get(ctx context.Context, reference string) (*models.Checkout, error) {
	data, err := r.client.Get(ctx, r.key(reference)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c models.Checkout
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode checkout %s: %w", reference, err)
	}
	return &c, nil
}

func (r *RedisCheckoutRepository) Delete(ctx context.Context, reference string) error {
	return r.client.Del(ctx, r.key(reference)).Err()
}

type memoryCheckout struct {
	checkout  models.Checkout
	expiresAt time.Time
}

type MemoryCheckoutRepository struct {
	mu        sync.Mutex
	checkouts map[string]memoryCheckout
}

func NewMemoryCheckoutRepository() *MemoryCheckoutRepository {
	return &MemoryCheckoutRepository{checkouts: make(map[string]memoryCheckout)}
}

func (r *MemoryCheckoutRepository) Put(_ context.Context, c *models.Checkout, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkouts[c.Reference] = memoryCheckout{checkout: *c, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (r *MemoryCheckoutRepository) Get(_ context.Context, reference string) (*models.Checkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.checkouts[reference]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(r.checkouts, reference)
		return nil, nil
	}
	c := entry.checkout
	return &c, nil
}

func (r *MemoryCheckoutRepository) Delete(_ context.Context, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkouts, reference)
	return nil
}
