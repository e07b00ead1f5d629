package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCacheJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	type payload struct {
		Name  string `json:"name"`
		Stock int    `json:"stock"`
	}
	require.NoError(t, SetJSON(ctx, c, "product:1", payload{Name: "Bamboo Brush", Stock: 4}, time.Minute))

	var got payload
	require.NoError(t, GetJSON(ctx, c, "product:1", &got))
	assert.Equal(t, "Bamboo Brush", got.Name)
	assert.Equal(t, 4, got.Stock)
}

func TestInMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}
