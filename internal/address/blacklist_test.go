package address

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore map[string]bool

func (m memStore) Exists(_ context.Context, email string) (bool, error) { return m[email], nil }

func TestStoreBlacklist_Normalizes(t *testing.T) {
	bl := NewStoreBlacklist(memStore{"blocked@example.com": true})

	hit, err := bl.IsBlacklisted(context.Background(), "  Blocked@Example.COM ")
	require.NoError(t, err)
	assert.True(t, hit)

	hit, err = bl.IsBlacklisted(context.Background(), "other@example.com")
	require.NoError(t, err)
	assert.False(t, hit)
}
