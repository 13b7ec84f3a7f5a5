package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyCache_GetSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewIdempotencyCache(10, time.Hour)

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k1", []byte(`{"id":"txn-1"}`), 0))

	got, ok, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"id":"txn-1"}`, string(got))
}

func TestIdempotencyCache_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewIdempotencyCache(10, time.Hour)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k1", []byte("v"), time.Minute))

	now = now.Add(30 * time.Second)
	_, ok, _ := c.Get(ctx, "k1")
	assert.True(t, ok)

	now = now.Add(31 * time.Second)
	_, ok, _ = c.Get(ctx, "k1")
	assert.False(t, ok, "entry past its TTL must miss")
}

func TestIdempotencyCache_CapacityBound(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewIdempotencyCache(5, time.Hour)

	for i := 0; i < 50; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Hour))
	}

	assert.LessOrEqual(t, c.Len(), 5)
}

func TestIdempotencyCache_OverwriteExistingKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewIdempotencyCache(2, time.Hour)

	require.NoError(t, c.Set(ctx, "k", []byte("v1"), time.Hour))
	require.NoError(t, c.Set(ctx, "k", []byte("v2"), time.Hour))

	got, ok, _ := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v2", string(got))
	assert.Equal(t, 1, c.Len())
}
