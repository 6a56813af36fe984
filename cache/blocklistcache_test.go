package cache

import (
	"testing"

	"github.com/flashts-io/flashts/blocklist"
	"github.com/flashts-io/flashts/schema"
	"github.com/flashts-io/flashts/tstime"
)

func TestBlockListCacheGetMiss(t *testing.T) {
	c := NewBlockListCache()
	if _, ok := c.Get("cpu.load"); ok {
		t.Fatal("expected a miss on an empty cache")
	}
}

func TestBlockListCachePutGetInvalidate(t *testing.T) {
	c := NewBlockListCache()
	bl := blocklist.New("cpu.load", tstime.Now(), nil)

	c.Put("cpu.load", bl)
	got, ok := c.Get("cpu.load")
	if !ok || got != bl {
		t.Fatal("expected the stored block list back")
	}

	c.Invalidate("cpu.load")
	if _, ok := c.Get("cpu.load"); ok {
		t.Fatal("expected a miss after invalidation")
	}
}

func TestBlockListCacheIsPerMetric(t *testing.T) {
	c := NewBlockListCache()
	a := blocklist.New(schema.Metric("cpu.load"), tstime.Now(), nil)
	b := blocklist.New(schema.Metric("mem.used"), tstime.Now(), nil)
	c.Put("cpu.load", a)
	c.Put("mem.used", b)

	got, ok := c.Get("mem.used")
	if !ok || got != b {
		t.Fatal("expected mem.used's own block list")
	}
}
