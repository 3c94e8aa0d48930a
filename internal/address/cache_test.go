package address

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	data    map[string]string
	getErr  error
	setErr  error
	lastTTL time.Duration
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string]string{}} }

func (f *fakeCache) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = value.(string)
	f.lastTTL = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCache) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

type countingBlacklist struct {
	listed map[string]bool
	err    error
	calls  int
}

func (c *countingBlacklist) IsBlacklisted(_ context.Context, addr string) (bool, error) {
	c.calls++
	return c.listed[addr], c.err
}

func TestCachedBlacklist(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeCache()
	next := &countingBlacklist{listed: map[string]bool{"Bad@Example.com": true}}
	bl := NewCachedBlacklist(next, rdb, time.Minute, nil)

	hit, err := bl.IsBlacklisted(ctx, "Bad@Example.com")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "1", rdb.data["emaild:bl:bad@example.com"])
	assert.Equal(t, time.Minute, rdb.lastTTL)

	hit, err = bl.IsBlacklisted(ctx, "Bad@Example.com")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, next.calls)

	hit, err = bl.IsBlacklisted(ctx, "ok@example.com")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "0", rdb.data["emaild:bl:ok@example.com"])
}

func TestCachedBlacklist_CacheDownFallsThrough(t *testing.T) {
	rdb := newFakeCache()
	rdb.getErr = errors.New("connection refused")
	rdb.setErr = errors.New("connection refused")
	next := &countingBlacklist{listed: map[string]bool{"bad@example.com": true}}

	hit, err := NewCachedBlacklist(next, rdb, 0, nil).IsBlacklisted(context.Background(), "bad@example.com")
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestCachedBlacklist_LookupErrorNotCached(t *testing.T) {
	rdb := newFakeCache()
	boom := errors.New("db down")
	next := &countingBlacklist{err: boom}

	_, err := NewCachedBlacklist(next, rdb, 0, nil).IsBlacklisted(context.Background(), "x@example.com")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, rdb.data)
}

func TestCachedClassifier(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeCache()
	r := &fakeResolver{}
	c := NewCachedClassifier(NewDomainClassifier(nil, r, time.Second), rdb, time.Minute, nil)

	shady, err := c.IsShadyProvider(ctx, "nowhere.test")
	require.NoError(t, err)
	assert.True(t, shady)

	shady, err = c.IsShadyProvider(ctx, "nowhere.test")
	require.NoError(t, err)
	assert.True(t, shady)
	assert.Equal(t, 1, r.calls)
	assert.Equal(t, "1", rdb.data["emaild:shady:nowhere.test"])
}

func TestCachedBlacklist_InvalidateAfterAdd(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeCache()
	store := memStore{}
	bl := NewCachedBlacklist(NewStoreBlacklist(store), rdb, 10*time.Minute, nil)
	v := NewValidator(nil, bl)

	verdict, err := v.Check(ctx, "victim@example.com")
	require.NoError(t, err)
	require.Equal(t, VerdictEligible, verdict)
	require.Equal(t, "0", rdb.data["emaild:bl:victim@example.com"])

	// listed after the negative verdict was cached
	store["victim@example.com"] = true
	require.NoError(t, InvalidateBlacklisted(ctx, rdb, "Victim@Example.com"))

	verdict, err = v.Check(ctx, "victim@example.com")
	require.NoError(t, err)
	assert.Equal(t, VerdictBlacklisted, verdict)

	// and back again on removal
	delete(store, "victim@example.com")
	require.NoError(t, InvalidateBlacklisted(ctx, rdb, "victim@example.com"))

	verdict, err = v.Check(ctx, "victim@example.com")
	require.NoError(t, err)
	assert.Equal(t, VerdictEligible, verdict)
}

func TestBlacklistCacheKey(t *testing.T) {
	assert.Equal(t, "emaild:bl:user@example.com", BlacklistCacheKey(" User@Example.com "))
}
