package network

import (
	"testing"
	"time"

	"github.com/chrisuehlinger/swipekit/imageload"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(10)
	c.Set(Entry{URL: "a.png", Status: imageload.Loaded, Width: 4})

	e, ok := c.Get("a.png")
	if !ok {
		t.Fatal("Expected entry")
	}
	if e.Status != imageload.Loaded || e.Width != 4 || e.CachedAt.IsZero() {
		t.Errorf("Unexpected entry %+v", e)
	}
	if _, ok := c.Get("b.png"); ok {
		t.Error("Expected miss for unknown URL")
	}
}

func TestCacheMarkPending(t *testing.T) {
	c := NewCache(10)
	if !c.MarkPending("a.png") {
		t.Fatal("Expected first MarkPending to claim the load")
	}
	if c.MarkPending("a.png") {
		t.Error("Expected second MarkPending not to claim the load")
	}
	e, _ := c.Get("a.png")
	if e.Status != imageload.Pending {
		t.Errorf("Expected pending, got %v", e.Status)
	}
}

func TestCacheEvictsOldestSettled(t *testing.T) {
	c := NewCache(2)
	c.MarkPending("pending.png")
	c.Set(Entry{URL: "old.png", Status: imageload.Loaded})
	time.Sleep(time.Millisecond)
	c.Set(Entry{URL: "new.png", Status: imageload.Loaded})

	if _, ok := c.Get("pending.png"); !ok {
		t.Error("Expected pending entry to survive eviction")
	}
	if _, ok := c.Get("old.png"); ok {
		t.Error("Expected old entry to be evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Expected size 2, got %d", c.Size())
	}

	c.Delete("new.png")
	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Expected empty cache, got %d", c.Size())
	}
}
