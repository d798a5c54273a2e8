package cache

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing")
	}
	c.Set("c", 3)
	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %v %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("size %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }
	c.Set("a", "x")
	c.Set("b", "y")

	now = now.Add(30 * time.Second)
	c.Set("b", "z")
	now = now.Add(45 * time.Second)

	if _, ok := c.Get("a"); ok {
		t.Fatal("a should be expired")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Fatalf("cleaned %d, a was already removed by Get", n)
	}
	now = now.Add(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("cleaned %d", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size %d", c.Size())
	}
}

func TestLRUDeleteAndPurge(t *testing.T) {
	c := NewLRUCache[int](5, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("a not deleted")
	}
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("size %d after purge", c.Size())
	}
}

func TestManagerCleanAll(t *testing.T) {
	now := time.Now()
	c := NewLRUCache[int](5, time.Second)
	c.now = func() time.Time { return now }
	c.Set("a", 1)
	now = now.Add(2 * time.Second)

	m := NewManager(nil)
	m.Register(c)
	if n := m.CleanAll(); n != 1 {
		t.Fatalf("cleaned %d", n)
	}
	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}

func TestManagerStopWithoutStart(t *testing.T) {
	done := make(chan struct{})
	go func() {
		NewManager(nil).Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked")
	}
}

func TestRecordCache(t *testing.T) {
	c, err := NewRecordCache(100, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	txs := []core.Transaction{{ID: "1", UserID: "u1", Type: core.Income, Amount: 10}}
	c.Set("u1", c.Generation("u1"), txs)
	got, ok := c.Get("u1")
	if !ok || len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("got %v %v", got, ok)
	}
	got[0].ID = "changed"
	again, _ := c.Get("u1")
	if again[0].ID != "1" {
		t.Fatal("cached list shares memory with callers")
	}

	c.Invalidate("u1")
	if _, ok := c.Get("u1"); ok {
		t.Fatal("entry survived invalidation")
	}

	c.Set("u2", c.Generation("u2"), txs)
	c.Clear()
	if _, ok := c.Get("u2"); ok {
		t.Fatal("entry survived Clear")
	}
}

func TestRecordCacheSkipsListLoadedBeforeInvalidate(t *testing.T) {
	c, err := NewRecordCache(100, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	txs := []core.Transaction{{ID: "1", UserID: "u1"}}

	gen := c.Generation("u1")
	c.Invalidate("u1")
	if c.Set("u1", gen, txs) {
		t.Error("Set() stored a list loaded before Invalidate")
	}
	if _, ok := c.Get("u1"); ok {
		t.Fatal("stale list cached")
	}

	gen = c.Generation("u2")
	c.Clear()
	if c.Set("u2", gen, txs) {
		t.Error("Set() stored a list loaded before Clear")
	}

	// other users are unaffected by an invalidation
	gen = c.Generation("u3")
	c.Invalidate("u1")
	if !c.Set("u3", gen, txs) {
		t.Error("Set() rejected a current generation")
	}
	if _, ok := c.Get("u3"); !ok {
		t.Error("current list not cached")
	}
}
