package address

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jmehdipour/email-dispatch/internal/util"
)

const (
	blacklistKeyPrefix = "emaild:bl:"
	shadyKeyPrefix     = "emaild:shady:"
)

// Cache is the subset of *redis.Client used to memoize lookups.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Evictor is the subset of *redis.Client used to drop cached verdicts.
type Evictor interface {
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// BlacklistCacheKey is the Redis key holding the cached verdict for addr.
func BlacklistCacheKey(addr string) string {
	return blacklistKeyPrefix + util.NormalizeAddress(addr)
}

// InvalidateBlacklisted drops the cached verdict for addr. Call it after
// every change to the deny-list so the next lookup reads the store.
func InvalidateBlacklisted(ctx context.Context, rdb Evictor, addr string) error {
	return rdb.Del(ctx, BlacklistCacheKey(addr)).Err()
}

type lookupCache struct {
	rdb Cache
	ttl time.Duration
	log *zap.Logger
}

// lookup serves from the cache when it can. Cache errors are logged and
// fall through to fn; they never fail the lookup.
func (c lookupCache) lookup(ctx context.Context, key string, fn func() (bool, error)) (bool, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return v == "1", nil
	case !errors.Is(err, redis.Nil):
		c.log.Warn("lookup cache read failed", zap.String("key", key), zap.Error(err))
	}

	hit, err := fn()
	if err != nil {
		return false, err
	}

	val := "0"
	if hit {
		val = "1"
	}
	if err := c.rdb.Set(ctx, key, val, c.ttl).Err(); err != nil {
		c.log.Warn("lookup cache write failed", zap.String("key", key), zap.Error(err))
	}
	return hit, nil
}

// CachedClassifier memoizes domain classifications in Redis.
type CachedClassifier struct {
	next  Classifier
	cache lookupCache
}

func NewCachedClassifier(next Classifier, rdb Cache, ttl time.Duration, log *zap.Logger) *CachedClassifier {
	return &CachedClassifier{next: next, cache: newLookupCache(rdb, ttl, log)}
}

func (c *CachedClassifier) IsShadyProvider(ctx context.Context, domain string) (bool, error) {
	return c.cache.lookup(ctx, shadyKeyPrefix+domain, func() (bool, error) {
		return c.next.IsShadyProvider(ctx, domain)
	})
}

// CachedBlacklist memoizes blacklist membership in Redis.
type CachedBlacklist struct {
	next  Blacklist
	cache lookupCache
}

func NewCachedBlacklist(next Blacklist, rdb Cache, ttl time.Duration, log *zap.Logger) *CachedBlacklist {
	return &CachedBlacklist{next: next, cache: newLookupCache(rdb, ttl, log)}
}

func (c *CachedBlacklist) IsBlacklisted(ctx context.Context, addr string) (bool, error) {
	return c.cache.lookup(ctx, BlacklistCacheKey(addr), func() (bool, error) {
		return c.next.IsBlacklisted(ctx, addr)
	})
}

func newLookupCache(rdb Cache, ttl time.Duration, log *zap.Logger) lookupCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return lookupCache{rdb: rdb, ttl: ttl, log: log}
}
