package rbac

import (
	"context"
	"fmt"
)

// Cache memoizes permission check results for the lifetime of a single
// inbound request. It is created fresh by the auth middleware, carried in
// the request context, and discarded when the call ends. It is never shared
// between concurrent requests, so no locking is needed.
type Cache struct {
	entries map[string]bool
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]bool)}
}

func cacheKey(userID int64, perm PermissionName) string {
	return fmt.Sprintf("user_%d_perm_%s", userID, perm)
}

func (c *Cache) get(userID int64, perm PermissionName) (bool, bool) {
	if c == nil {
		return false, false
	}
	v, ok := c.entries[cacheKey(userID, perm)]
	return v, ok
}

func (c *Cache) put(userID int64, perm PermissionName, allowed bool) {
	if c == nil {
		return
	}
	c.entries[cacheKey(userID, perm)] = allowed
}

type cacheCtxKey struct{}

// ContextWithCache attaches a request-scoped permission cache to ctx.
func ContextWithCache(ctx context.Context, cache *Cache) context.Context {
	return context.WithValue(ctx, cacheCtxKey{}, cache)
}

// CacheFromContext returns the cache carried by ctx, or nil when the call
// has none (checks then go straight to the repository every time).
func CacheFromContext(ctx context.Context) *Cache {
	if cache, ok := ctx.Value(cacheCtxKey{}).(*Cache); ok {
		return cache
	}
	return nil
}
