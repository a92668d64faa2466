package metadata

import (
	"errors"

	"github.com/puzpuzpuz/xsync/v3"
)

var errFillAborted = errors.New("metadata set fill aborted")

// Cache holds metadata sets by name. Each set is filled at most once at a
// time: concurrent callers for the same set wait for the first fill instead
// of issuing their own. A failed fill stores nothing, and callers that were
// waiting on it receive the same error.
//
// Fills run outside the map's locks, so a slow fill for one set never blocks
// lookups or fills of another.
//
// Returned maps are shared between callers and must be treated as read-only.
type Cache struct {
	sets *xsync.MapOf[string, *cacheEntry]
}

type cacheEntry struct {
	done  chan struct{}
	value map[string]Metadata
	err   error
}

func (e *cacheEntry) ready() bool {
	select {
	case <-e.done:
		return e.err == nil
	default:
		return false
	}
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{sets: xsync.NewMapOf[string, *cacheEntry]()}
}

// Load returns the cached set, if any. A fill still in flight is a miss.
func (c *Cache) Load(set string) (map[string]Metadata, bool) {
	e, ok := c.sets.Load(set)
	if !ok || !e.ready() {
		return nil, false
	}
	return e.value, true
}

// LoadOrFill returns the cached set, calling fill to produce it on a miss.
// fill must not call back into the cache for the same set.
func (c *Cache) LoadOrFill(set string, fill func() (map[string]Metadata, error)) (map[string]Metadata, error) {
	e, loaded := c.sets.LoadOrStore(set, &cacheEntry{done: make(chan struct{})})
	if loaded {
		<-e.done
		return e.value, e.err
	}

	c.fill(set, e, fill)
	return e.value, e.err
}

func (c *Cache) fill(set string, e *cacheEntry, fill func() (map[string]Metadata, error)) {
	failed := true
	defer func() {
		if failed {
			if e.err == nil {
				e.err = errFillAborted
			}
			c.sets.Compute(set, func(old *cacheEntry, loaded bool) (*cacheEntry, bool) {
				return old, loaded && old == e
			})
		}
		close(e.done)
	}()

	v, err := fill()
	if err != nil {
		e.err = err
		return
	}
	if v == nil {
		v = map[string]Metadata{}
	}
	e.value = v
	failed = false
}

// Len returns the number of cached sets, not counting fills in flight.
func (c *Cache) Len() int {
	n := 0
	c.sets.Range(func(_ string, e *cacheEntry) bool {
		if e.ready() {
			n++
		}
		return true
	})
	return n
}
