package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digibook/digibook/internal/model"
)

func countingFetcher(categories []model.Category, err error) (Fetcher, *int) {
	calls := new(int)
	return func(ctx context.Context) ([]model.Category, error) {
		*calls++
		return categories, err
	}, calls
}

func TestCategoryCacheGet(t *testing.T) {
	ctx := context.Background()
	categories := []model.Category{{ID: 1, Name: "Housing"}}

	t.Run("fresh value served without refetch", func(t *testing.T) {
		c := NewCategoryCache(time.Minute)
		fetch, calls := countingFetcher(categories, nil)

		got, err := c.Get(ctx, fetch)
		require.NoError(t, err)
		assert.Equal(t, categories, got)

		got, err = c.Get(ctx, fetch)
		require.NoError(t, err)
		assert.Equal(t, categories, got)
		assert.Equal(t, 1, *calls)
	})

	t.Run("expired entry refetched", func(t *testing.T) {
		c := NewCategoryCache(time.Nanosecond)
		fetch, calls := countingFetcher(categories, nil)

		_, err := c.Get(ctx, fetch)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
		_, err = c.Get(ctx, fetch)
		require.NoError(t, err)
		assert.Equal(t, 2, *calls)
	})

	t.Run("stale value served when fetch fails", func(t *testing.T) {
		c := NewCategoryCache(time.Nanosecond)
		good, _ := countingFetcher(categories, nil)
		bad, _ := countingFetcher(nil, errors.New("db locked"))

		_, err := c.Get(ctx, good)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)

		got, err := c.Get(ctx, bad)
		require.NoError(t, err)
		assert.Equal(t, categories, got)
	})

	t.Run("fetch failure with empty cache surfaces", func(t *testing.T) {
		c := NewCategoryCache(time.Minute)
		bad, _ := countingFetcher(nil, errors.New("db locked"))

		_, err := c.Get(ctx, bad)
		assert.Error(t, err)
	})
}

func TestCategoryCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewCategoryCache(time.Minute)
	fetch, calls := countingFetcher([]model.Category{{ID: 1, Name: "Housing"}}, nil)

	var changes []ChangeKind
	c.Subscribe(func(kind ChangeKind) { changes = append(changes, kind) })

	_, err := c.Get(ctx, fetch)
	require.NoError(t, err)

	c.Invalidate()

	_, err = c.Get(ctx, fetch)
	require.NoError(t, err)

	assert.Equal(t, 2, *calls)
	// Listeners see every transition in order, synchronously.
	assert.Equal(t, []ChangeKind{ChangeSet, ChangeInvalidate, ChangeSet}, changes)
}
