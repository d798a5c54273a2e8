package cache

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"fintrack/internal/core"
)

// RecordCache keeps each user's transaction list between reads. Writes for a
// user invalidate that user's entry.
//
// Readers take a Generation before loading from the store and pass it to Set;
// a list loaded before an Invalidate is never stored.
type RecordCache struct {
	store *ristretto.Cache
	ttl   time.Duration

	// ristretto has no key enumeration; track keys so Clear can drop them.
	mu   sync.Mutex
	keys map[string]struct{}

	// seq only grows. gens holds the seq of each key's last invalidation,
	// cleared the seq of the last Clear.
	seq     uint64
	gens    map[string]uint64
	cleared uint64
}

// NewRecordCache builds a cache admitting up to maxCost records in total.
func NewRecordCache(maxCost int64, ttl time.Duration) (*RecordCache, error) {
	if maxCost <= 0 {
		maxCost = 10000
	}
	// Cost is counted in records, not bytes.
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        maxCost * 10,
		MaxCost:            maxCost,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize record cache: %w", err)
	}
	return &RecordCache{
		store: store,
		ttl:   ttl,
		keys:  make(map[string]struct{}),
		gens:  make(map[string]uint64),
	}, nil
}

func recordKey(userID string) string { return "records:" + userID }

// Get returns a copy of the cached list for userID.
func (c *RecordCache) Get(userID string) ([]core.Transaction, bool) {
	v, ok := c.store.Get(recordKey(userID))
	if !ok {
		return nil, false
	}
	txs, ok := v.([]core.Transaction)
	if !ok {
		return nil, false
	}
	return slices.Clone(txs), true
}

// Generation returns the current invalidation generation of userID's entry.
func (c *RecordCache) Generation(userID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation(recordKey(userID))
}

func (c *RecordCache) generation(key string) uint64 {
	return max(c.gens[key], c.cleared)
}

// Set caches txs for userID when no invalidation happened since gen was
// taken, and reports whether it did. The cost is the number of records, so
// very large lists may still be rejected by admission.
func (c *RecordCache) Set(userID string, gen uint64, txs []core.Transaction) bool {
	key := recordKey(userID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation(key) != gen {
		return false
	}
	c.keys[key] = struct{}{}

	cost := int64(max(len(txs), 1))
	if c.ttl > 0 {
		c.store.SetWithTTL(key, slices.Clone(txs), cost, c.ttl)
	} else {
		c.store.Set(key, slices.Clone(txs), cost)
	}
	c.store.Wait()
	return true
}

func (c *RecordCache) Invalidate(userID string) {
	key := recordKey(userID)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.gens[key] = c.seq
	delete(c.keys, key)
	c.store.Del(key)
}

func (c *RecordCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.keys {
		c.store.Del(key)
	}
	c.keys = make(map[string]struct{})
	c.seq++
	c.cleared = c.seq
	c.gens = make(map[string]uint64)
}

func (c *RecordCache) Close() {
	c.store.Close()
}
