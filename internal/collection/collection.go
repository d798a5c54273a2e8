// Package collection holds a session's working set of transactions: the
// records loaded from the store, keyed by id and kept in load order.
package collection

import (
	"slices"

	"fintrack/internal/core"
)

// Collection maps record id to record and remembers insertion order.
// It is not safe for concurrent writers; each session owns one.
type Collection struct {
	order   []string
	byID    map[string]core.Transaction
	version uint64
}

// New returns a collection seeded with txs. Records without an id are
// skipped and later duplicates replace earlier ones in place.
func New(txs ...core.Transaction) *Collection {
	c := &Collection{byID: make(map[string]core.Transaction, len(txs))}
	c.load(txs)
	return c
}

func (c *Collection) load(txs []core.Transaction) {
	for _, t := range txs {
		if t.ID == "" {
			continue
		}
		if _, ok := c.byID[t.ID]; !ok {
			c.order = append(c.order, t.ID)
		}
		c.byID[t.ID] = t
	}
}

// Replace swaps the whole working set, as after a full re-fetch.
func (c *Collection) Replace(txs []core.Transaction) {
	c.order = c.order[:0]
	c.byID = make(map[string]core.Transaction, len(txs))
	c.load(txs)
	c.version++
}

// Put inserts t at the end, or replaces the record with the same id in
// place. It reports false when t has no id.
func (c *Collection) Put(t core.Transaction) bool {
	if t.ID == "" {
		return false
	}
	if _, ok := c.byID[t.ID]; !ok {
		c.order = append(c.order, t.ID)
	}
	c.byID[t.ID] = t
	c.version++
	return true
}

// Remove deletes id and reports whether it was present.
func (c *Collection) Remove(id string) bool {
	if _, ok := c.byID[id]; !ok {
		return false
	}
	delete(c.byID, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
	c.version++
	return true
}

func (c *Collection) Get(id string) (core.Transaction, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// All returns the records in insertion order. The slice is a copy.
func (c *Collection) All() []core.Transaction {
	out := make([]core.Transaction, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Collection) Len() int { return len(c.order) }

// Version increases on every change. Derived views use it as a cache key.
func (c *Collection) Version() uint64 { return c.version }
