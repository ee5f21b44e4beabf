package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSetExpire(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "novels:list:1", []string{"a", "b"}, time.Minute))

	var got []string
	found, err := c.Get(ctx, "novels:list:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, got)

	now = now.Add(2 * time.Minute)
	found, err = c.Get(ctx, "novels:list:1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.Set(ctx, "novels:list:a", 1, 0))
	require.NoError(t, c.Set(ctx, "novels:list:b", 1, 0))
	require.NoError(t, c.Set(ctx, "tags:all", 1, 0))

	require.NoError(t, c.DeletePattern(ctx, "novels:list:*"))

	ok, _ := c.Exists(ctx, "novels:list:a")
	assert.False(t, ok)
	ok, _ = c.Exists(ctx, "tags:all")
	assert.True(t, ok)
}

func TestMemoryCache_Counters(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	for i := 0; i < 3; i++ {
		_, err := c.Increment(ctx, "views:novel:n1")
		require.NoError(t, err)
	}
	_, err := c.IncrementBy(ctx, "views:novel:n2", 5)
	require.NoError(t, err)

	counters, err := c.GetAndDeleteCounters(ctx, "views:novel:*")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"views:novel:n1": 3, "views:novel:n2": 5}, counters)

	counters, err = c.GetAndDeleteCounters(ctx, "views:novel:*")
	require.NoError(t, err)
	assert.Empty(t, counters)
}
