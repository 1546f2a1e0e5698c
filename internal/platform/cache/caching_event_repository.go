// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"event_backend/internal/feature/events/domain/entity"
	"event_backend/internal/feature/events/usecase"
)

// CachingEventRepository decorates an EventRepository with Redis caching of
// the public listing queries. Every write through the decorator, and every
// InvalidateEvents call, drops all cached listings.
type CachingEventRepository struct {
	inner     usecase.EventRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.EventRepository = (*CachingEventRepository)(nil)

// NewCachingEventRepository decorates an EventRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "events".
// A nil rdb disables caching.
func NewCachingEventRepository(rdb *redis.Client, ttl time.Duration, inner usecase.EventRepository, namespace string) *CachingEventRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "events"
	}
	return &CachingEventRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create persists the event and invalidates cached listings.
func (c *CachingEventRepository) Create(ctx context.Context, e *entity.Event) error {
	if err := c.inner.Create(ctx, e); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// UpdateDetails updates the event and invalidates cached listings.
func (c *CachingEventRepository) UpdateDetails(ctx context.Context, e *entity.Event) error {
	if err := c.inner.UpdateDetails(ctx, e); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Deactivate soft-deletes the event and invalidates cached listings.
func (c *CachingEventRepository) Deactivate(ctx context.Context, id uint) error {
	if err := c.inner.Deactivate(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// FindByID is never cached; callers use it to read the live counter.
func (c *CachingEventRepository) FindByID(ctx context.Context, id uint) (*entity.Event, error) {
	return c.inner.FindByID(ctx, id)
}

// FindUpcoming depends on the current time and is not cached.
func (c *CachingEventRepository) FindUpcoming(ctx context.Context, now time.Time) ([]entity.Event, error) {
	return c.inner.FindUpcoming(ctx, now)
}

// FindByOwner is not cached.
func (c *CachingEventRepository) FindByOwner(ctx context.Context, ownerID uint) ([]entity.Event, error) {
	return c.inner.FindByOwner(ctx, ownerID)
}

// FindActive returns the active events, checking the cache first.
func (c *CachingEventRepository) FindActive(ctx context.Context) ([]entity.Event, error) {
	return c.cached(ctx, c.cacheKey("active", ""), func() ([]entity.Event, error) {
		return c.inner.FindActive(ctx)
	})
}

// Search returns matching events, checking the cache first.
func (c *CachingEventRepository) Search(ctx context.Context, term string) ([]entity.Event, error) {
	return c.cached(ctx, c.cacheKey("search", strings.ToLower(term)), func() ([]entity.Event, error) {
		return c.inner.Search(ctx, term)
	})
}

// FindByCategory returns the events of a category, checking the cache first.
func (c *CachingEventRepository) FindByCategory(ctx context.Context, category string) ([]entity.Event, error) {
	return c.cached(ctx, c.cacheKey("category", strings.ToLower(category)), func() ([]entity.Event, error) {
		return c.inner.FindByCategory(ctx, category)
	})
}

// InvalidateEvents drops every cached listing. The registration engine calls
// it after changing an event's registered count.
func (c *CachingEventRepository) InvalidateEvents(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.namespace+":*")
}

func (c *CachingEventRepository) cached(ctx context.Context, key string, load func() ([]entity.Event, error)) ([]entity.Event, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return load()
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Event
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := load()
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// invalidate drops cached listings, logging instead of failing the write.
func (c *CachingEventRepository) invalidate(ctx context.Context) {
	if err := c.InvalidateEvents(ctx); err != nil {
		slog.Warn("event cache invalidation failed", "namespace", c.namespace, "error", err)
	}
}

// cacheKey generates a cache key for a specific query.
func (c *CachingEventRepository) cacheKey(kind, arg string) string {
	if arg == "" {
		return fmt.Sprintf("%s:%s", c.namespace, kind)
	}
	return fmt.Sprintf("%s:%s:%s", c.namespace, kind, safe(arg))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingEventRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe encodes user input for use inside a Redis key. The encoding is
// injective, so distinct inputs never share a key.
func safe(s string) string {
	return url.QueryEscape(s)
}
