package calendar_date

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nichecal/nichecal/internal/utils"
	"github.com/nichecal/nichecal/pkg/niche"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ErrStillLoading is returned by QueryCache.Get when the caller stopped
// waiting before the fetch finished. The fetch keeps running.
var ErrStillLoading = errors.New("calendar dates are still loading")

type FetchFunc func(ctx context.Context, niches []string) ([]Entry, error)

// ResultStore keeps successful fetch results by cache key.
type ResultStore interface {
	Load(ctx context.Context, key string) ([]Entry, bool)
	Save(ctx context.Context, key string, entries []Entry)
}

// QueryCache deduplicates and caches fetches keyed by the sorted niche list.
// Failures are not cached: an error is handed to the callers waiting for that
// fetch, or to the next caller if nobody was waiting, and then forgotten.
type QueryCache struct {
	fetch        FetchFunc
	results      ResultStore
	fetchTimeout time.Duration
	group        singleflight.Group

	mu       sync.Mutex
	inFlight map[string]struct{}
	failures map[string]error
}

func NewQueryCache(fetch FetchFunc, results ResultStore, fetchTimeout time.Duration) *QueryCache {
	return &QueryCache{
		fetch:        fetch,
		results:      results,
		fetchTimeout: fetchTimeout,
		inFlight:     make(map[string]struct{}),
		failures:     make(map[string]error),
	}
}

// Get returns the entries for niches, fetching them at most once per key while
// cached. If ctx ends before the fetch completes, ErrStillLoading is returned.
func (c *QueryCache) Get(ctx context.Context, niches []string) ([]Entry, error) {
	if len(niches) == 0 {
		return c.fetch(ctx, niches)
	}
	key := niche.CacheKey(niches)

	if err := c.takeFailure(key); err != nil {
		return nil, err
	}
	if entries, ok := c.results.Load(ctx, key); ok {
		log.Tracef("query cache hit for %q", key)
		return entries, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.doFetch(ctx, key, niches)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			c.takeFailure(key)
			return nil, res.Err
		}
		return res.Val.([]Entry), nil
	case <-ctx.Done():
		log.Debugf("stopped waiting for %q: %v", key, ctx.Err())
		return nil, ErrStillLoading
	}
}

// Pending reports whether a fetch for niches is in flight.
func (c *QueryCache) Pending(niches []string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inFlight[niche.CacheKey(niches)]
	return ok
}

func (c *QueryCache) doFetch(ctx context.Context, key string, niches []string) ([]Entry, error) {
	c.mu.Lock()
	c.inFlight[key] = struct{}{}
	delete(c.failures, key)
	c.mu.Unlock()

	// Detached from the caller so an abandoned request still fills the cache.
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
	defer cancel()

	entries, err := c.fetch(fetchCtx, niches)

	c.mu.Lock()
	delete(c.inFlight, key)
	if err != nil {
		c.failures[key] = err
	}
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	c.results.Save(fetchCtx, key, entries)
	return entries, nil
}

func (c *QueryCache) takeFailure(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err, ok := c.failures[key]
	if ok {
		delete(c.failures, key)
	}
	return err
}

type memoryEntry struct {
	entries   []Entry
	expiresAt time.Time
}

// MemoryResultStore is the default in-process ResultStore.
type MemoryResultStore struct {
	mu      sync.RWMutex
	clock   utils.Clock
	ttl     time.Duration
	entries map[string]memoryEntry
}

func NewMemoryResultStore(clock utils.Clock, ttl time.Duration) *MemoryResultStore {
	return &MemoryResultStore{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryResultStore) Load(ctx context.Context, key string) ([]Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || !s.clock.Now().Before(e.expiresAt) {
		return nil, false
	}
	return e.entries, true
}

func (s *MemoryResultStore) Save(ctx context.Context, key string, entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{entries: entries, expiresAt: s.clock.Now().Add(s.ttl)}
}

// PurgeExpired drops expired entries and returns how many were removed.
func (s *MemoryResultStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	purged := 0
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
			purged++
		}
	}
	return purged
}

func (s *MemoryResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
