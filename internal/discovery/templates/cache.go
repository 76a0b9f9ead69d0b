// internal/discovery/templates/cache.go
package templates

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"contact-discovery/internal/models"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "discovery:templates:"

// Cache is a read-through Redis cache for active-template lookups. Cache
// failures are reported but never block a lookup.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key builds a deterministic cache key from the criteria dimensions.
func (c *Cache) Key(criteria models.SearchCriteria) string {
	dims := criteria.Dimensions()
	names := make([]string, 0, len(dims))
	for name := range dims {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		values := append([]string(nil), dims[name]...)
		sort.Strings(values)
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(strings.Join(values, ","))
		sb.WriteString(";")
	}

	sum := sha1.Sum([]byte(sb.String()))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached template list for the criteria, or (nil, false) on
// miss or decode failure.
func (c *Cache) Get(ctx context.Context, criteria models.SearchCriteria) ([]models.QueryTemplate, bool, error) {
	raw, err := c.client.Get(ctx, c.Key(criteria)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("template cache get: %w", err)
	}

	var templates []models.QueryTemplate
	if err := json.Unmarshal([]byte(raw), &templates); err != nil {
		return nil, false, nil
	}
	return templates, true, nil
}

// Set stores the template list under the criteria key.
func (c *Cache) Set(ctx context.Context, criteria models.SearchCriteria, templates []models.QueryTemplate) error {
	payload, err := json.Marshal(templates)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.Key(criteria), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("template cache set: %w", err)
	}
	return nil
}

// Invalidate drops all cached template lists. Called after counter flushes so
// stale confidence values do not linger past the TTL.
func (c *Cache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("template cache scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
