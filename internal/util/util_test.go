package util

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomain(t *testing.T) {
	assert.Equal(t, "example.com", Domain("user@Example.COM"))
	assert.Equal(t, "b.com", Domain(`"a@x"@b.com`))
	assert.Empty(t, Domain("no-at-sign"))
	assert.Empty(t, Domain("user@"))
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "user@example.com", NormalizeAddress("  User@Example.com "))
}

func TestNewEventID_Monotonic(t *testing.T) {
	a := NewEventID()
	b := NewEventID()

	_, err := ulid.ParseStrict(a)
	require.NoError(t, err)
	assert.Less(t, a, b)
}
