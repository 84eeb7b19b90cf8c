package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"clubapi/internal/model"
)

// RoleCache remembers the club role resolved for a user id.
// Get reports ok=false on a miss.
type RoleCache interface {
	Get(ctx context.Context, userID string) (model.Role, bool, error)
	Set(ctx context.Context, userID string, role model.Role) error
	Delete(ctx context.Context, userID string) error
}

type RedisRoleCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisRoleCache(client redis.UniversalClient, ttl time.Duration) *RedisRoleCache {
	return &RedisRoleCache{client: client, ttl: ttl}
}

func roleKey(userID string) string { return "role:" + userID }

func (c *RedisRoleCache) Get(ctx context.Context, userID string) (model.Role, bool, error) {
	v, err := c.client.Get(ctx, roleKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get role: %w", err)
	}
	role := model.Role(v)
	if !role.Valid() {
		return "", false, nil
	}
	return role, true, nil
}

func (c *RedisRoleCache) Set(ctx context.Context, userID string, role model.Role) error {
	if err := c.client.Set(ctx, roleKey(userID), string(role), c.ttl).Err(); err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return nil
}

func (c *RedisRoleCache) Delete(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, roleKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}

// MemoryRoleCache is the in-process fallback used without Redis.
type MemoryRoleCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryRole
	clock   func() time.Time
}

type memoryRole struct {
	role    model.Role
	expires time.Time
}

func NewMemoryRoleCache(ttl time.Duration) *MemoryRoleCache {
	return &MemoryRoleCache{ttl: ttl, entries: map[string]memoryRole{}, clock: time.Now}
}

func (c *MemoryRoleCache) Get(_ context.Context, userID string) (model.Role, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[userID]
	if !ok || !c.clock().Before(e.expires) {
		return "", false, nil
	}
	return e.role, true, nil
}

func (c *MemoryRoleCache) Set(_ context.Context, userID string, role model.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = memoryRole{role: role, expires: c.clock().Add(c.ttl)}
	return nil
}

func (c *MemoryRoleCache) Delete(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}
