package calendar_date

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nichecal/nichecal/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cacheNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setupCache(t *testing.T) (*QueryCache, *MemoryResultStore, *utils.MockClock) {
	fetcher := setupFetcher(t)
	clock := &utils.MockClock{FixedNow: cacheNow}
	results := NewMemoryResultStore(clock, 5*time.Minute)
	return NewQueryCache(fetcher.FetchDatesForNiches, results, time.Second), results, clock
}

var cacheRows = []Row{
	{Id: 1, Data: "2025-06-07", Descricao: "Dia do Pet", Tipo: "commemorative", Niches: []string{"pets"}},
	{Id: 2, Data: "2025-09-07", Descricao: "Independência", Tipo: "holiday", Niches: []string{"pets", "finance"}},
}

func TestQueryCache_Get(t *testing.T) {
	t.Run("should fetch once per distinct niche list", func(t *testing.T) {
		cache, _, _ := setupCache(t)
		storeStub.SetRows(cacheRows)

		first, err := cache.Get(context.Background(), []string{"pets", "finance"})
		require.NoError(t, err)
		second, err := cache.Get(context.Background(), []string{"finance", "pets"})
		require.NoError(t, err)
		_, err = cache.Get(context.Background(), []string{"pets"})
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Len(t, first, 2)
		assert.Equal(t, 2, storeStub.Calls())
	})

	t.Run("should fetch separately for niches containing commas", func(t *testing.T) {
		cache, _, _ := setupCache(t)
		storeStub.SetRows(append(cacheRows, Row{Id: 3, Data: "2025-10-12", Descricao: "Dia A,B", Tipo: "optional", Niches: []string{"a,b"}}))

		_, err := cache.Get(context.Background(), []string{"a", "b"})
		require.NoError(t, err)
		entries, err := cache.Get(context.Background(), []string{"a,b"})
		require.NoError(t, err)

		assert.Equal(t, 2, storeStub.Calls())
		require.Len(t, entries, 1)
		assert.Equal(t, "Dia A,B", entries[0].Title)
	})

	t.Run("should not call store for empty niche list", func(t *testing.T) {
		cache, _, _ := setupCache(t)

		_, err := cache.Get(context.Background(), []string{})

		require.ErrorIs(t, err, ErrNoNicheSelected)
		assert.Equal(t, 0, storeStub.Calls())
	})

	t.Run("should refetch after ttl expires", func(t *testing.T) {
		cache, _, clock := setupCache(t)
		storeStub.SetRows(cacheRows)

		_, err := cache.Get(context.Background(), []string{"pets"})
		require.NoError(t, err)
		clock.Advance(5 * time.Minute)
		_, err = cache.Get(context.Background(), []string{"pets"})
		require.NoError(t, err)

		assert.Equal(t, 2, storeStub.Calls())
	})

	t.Run("should deduplicate concurrent identical requests", func(t *testing.T) {
		cache, _, _ := setupCache(t)
		storeStub.SetRows(cacheRows)
		release := storeStub.Block()

		var wg sync.WaitGroup
		results := make([][]Entry, 5)
		errs := make([]error, 5)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = cache.Get(context.Background(), []string{"pets"})
			}(i)
		}
		require.Eventually(t, func() bool { return cache.Pending([]string{"pets"}) }, time.Second, time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		release()
		wg.Wait()

		for i := range results {
			require.NoError(t, errs[i])
			assert.Len(t, results[i], 2)
		}
		assert.Equal(t, 1, storeStub.Calls())
		assert.False(t, cache.Pending([]string{"pets"}))
	})

	t.Run("should report still loading and keep fetching in background", func(t *testing.T) {
		cache, results, _ := setupCache(t)
		storeStub.SetRows(cacheRows)
		release := storeStub.Block()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := cache.Get(ctx, []string{"pets"})
		require.ErrorIs(t, err, ErrStillLoading)

		release()
		require.Eventually(t, func() bool { return results.Len() == 1 }, time.Second, time.Millisecond)
		entries, err := cache.Get(context.Background(), []string{"pets"})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, 1, storeStub.Calls())
	})

	t.Run("should not cache failures and notify once per failed fetch", func(t *testing.T) {
		cache, _, _ := setupCache(t)
		boom := errors.New("connection refused")
		storeStub.SetError(boom)

		_, err := cache.Get(context.Background(), []string{"pets"})
		require.ErrorIs(t, err, boom)
		assert.Len(t, notifierStub.Calls(), 1)

		storeStub.SetError(nil)
		storeStub.SetRows(cacheRows)
		entries, err := cache.Get(context.Background(), []string{"pets"})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, 2, storeStub.Calls())
		assert.Len(t, notifierStub.Calls(), 1)
	})

	t.Run("should hand a failure nobody waited for to the next caller once", func(t *testing.T) {
		cache, _, _ := setupCache(t)
		boom := errors.New("timeout")
		storeStub.SetError(boom)
		release := storeStub.Block()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := cache.Get(ctx, []string{"pets"})
		require.ErrorIs(t, err, ErrStillLoading)
		release()
		require.Eventually(t, func() bool { return !cache.Pending([]string{"pets"}) }, time.Second, time.Millisecond)

		_, err = cache.Get(context.Background(), []string{"pets"})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, storeStub.Calls())
		assert.Len(t, notifierStub.Calls(), 1)
	})
}

func TestMemoryResultStore_PurgeExpired(t *testing.T) {
	clock := &utils.MockClock{FixedNow: cacheNow}
	store := NewMemoryResultStore(clock, time.Minute)
	store.Save(context.Background(), "a", []Entry{})
	clock.Advance(30 * time.Second)
	store.Save(context.Background(), "b", []Entry{})
	clock.Advance(45 * time.Second)

	purged := store.PurgeExpired()

	assert.Equal(t, 1, purged)
	assert.Equal(t, 1, store.Len())
	_, ok := store.Load(context.Background(), "b")
	assert.True(t, ok)
}
