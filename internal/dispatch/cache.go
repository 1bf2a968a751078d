package dispatch

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/funvibe/hostlink/internal/types"
)

// ArgumentLimit is the hard ceiling on a call's argument count.
// Resolution and cache keys use fixed-size arrays of this bound.
const ArgumentLimit = 12

// cacheKey identifies one resolved call shape. Equality is the same
// equality resolution itself depends on: owning set identity, argument
// count, per-position descriptor identity, and per-position insight
// value. The fixed arrays copy the caller's transient slices by value,
// so the cache owns its key data independently of any call frame.
type cacheKey struct {
	set      uuid.UUID
	nargs    int
	args     [ArgumentLimit]*types.Descriptor
	insights [ArgumentLimit]types.Insight
}

func makeCacheKey(set uuid.UUID, args []*types.Descriptor, insights []types.Insight) cacheKey {
	key := cacheKey{set: set, nargs: len(args)}
	copy(key.args[:], args)
	copy(key.insights[:], insights)
	return key
}

// ResolutionCache memoizes which alternative index won resolution for a
// given call shape. It only shortcuts the search over alternatives;
// conversion routing for the winner is still recomputed on every hit.
// Shared process-wide across sets (keys carry the set identity), so one
// Flush clears everything. Safe for concurrent use.
type ResolutionCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]int
	hits    atomic.Uint64
	misses  atomic.Uint64
}

func NewResolutionCache() *ResolutionCache {
	return &ResolutionCache{entries: make(map[cacheKey]int)}
}

// Recall looks up the alternative index chosen for this shape, if any.
func (c *ResolutionCache) Recall(set uuid.UUID, args []*types.Descriptor, insights []types.Insight) (int, bool) {
	key := makeCacheKey(set, args, insights)
	c.mu.RLock()
	index, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return index, ok
}

// Remember stores the chosen alternative index for this shape.
func (c *ResolutionCache) Remember(set uuid.UUID, args []*types.Descriptor, insights []types.Insight, alternative int) {
	key := makeCacheKey(set, args, insights)
	c.mu.Lock()
	c.entries[key] = alternative
	c.mu.Unlock()
}

// Flush discards all entries across all sets.
func (c *ResolutionCache) Flush() {
	c.mu.Lock()
	c.entries = make(map[cacheKey]int)
	c.mu.Unlock()
}

// Len returns the number of cached shapes.
func (c *ResolutionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns cumulative hit and miss counts. Flush does not reset them.
func (c *ResolutionCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

var (
	sharedOnce  sync.Once
	sharedCache *ResolutionCache
)

// SharedCache returns the lazily-created process-wide cache used by sets
// constructed without an explicit one.
func SharedCache() *ResolutionCache {
	sharedOnce.Do(func() {
		sharedCache = NewResolutionCache()
	})
	return sharedCache
}
