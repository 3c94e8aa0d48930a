package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmehdipour/email-dispatch/internal/repository"
)

type memBlacklist struct {
	rows   map[string]string
	addErr error
}

func (m *memBlacklist) Exists(_ context.Context, email string) (bool, error) {
	_, ok := m.rows[email]
	return ok, nil
}

func (m *memBlacklist) Add(_ context.Context, email, reason string) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.rows[email] = reason
	return nil
}

func (m *memBlacklist) Remove(_ context.Context, email string) (bool, error) {
	_, ok := m.rows[email]
	delete(m.rows, email)
	return ok, nil
}

func (m *memBlacklist) List(context.Context, int, int) ([]repository.BlacklistEntry, error) {
	return nil, nil
}

type recordingEvictor struct {
	deleted []string
}

func (r *recordingEvictor) Del(_ context.Context, keys ...string) *redis.IntCmd {
	r.deleted = append(r.deleted, keys...)
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestEvictingBlacklist_EvictsOnWrite(t *testing.T) {
	ctx := context.Background()
	store := &memBlacklist{rows: map[string]string{}}
	ev := &recordingEvictor{}
	repo := evictingBlacklist{BlacklistRepository: store, cache: ev}

	require.NoError(t, repo.Add(ctx, "victim@example.com", "complaint"))
	assert.Equal(t, []string{"emaild:bl:victim@example.com"}, ev.deleted)

	removed, err := repo.Remove(ctx, "victim@example.com")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Len(t, ev.deleted, 2)

	hit, err := repo.Exists(ctx, "victim@example.com")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, ev.deleted, 2, "reads do not evict")
}

func TestEvictingBlacklist_FailedWriteKeepsCache(t *testing.T) {
	boom := errors.New("mysql: gone away")
	ev := &recordingEvictor{}
	repo := evictingBlacklist{BlacklistRepository: &memBlacklist{rows: map[string]string{}, addErr: boom}, cache: ev}

	err := repo.Add(context.Background(), "victim@example.com", "")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, ev.deleted)
}
