package cache

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func TestSimpleCache_SetGet_NoTTL(t *testing.T) {
	c := NewSimpleCache[string, int](Options{})
	c.Set("a", 1, 0)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit with value 1, got ok=%v v=%v", ok, v)
	}
	if c.Len() != 1 {
		t.Fatalf("expected Len=1, got %d", c.Len())
	}
}

func TestSimpleCache_TTL_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewSimpleCache[string, string](Options{ConcurrencySafe: true, Clock: clock.Now})

	c.Set("k", "v", time.Second)
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("expected hit before expiry")
	}

	clock.t = clock.t.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected miss after expiry")
	}
	c.PurgeExpired()
	if c.Len() != 0 {
		t.Fatalf("expected Len=0 after purge, got %d", c.Len())
	}
}

func TestSimpleCache_Upsert_KeepsExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewSimpleCache[string, int](Options{Clock: clock.Now})
	incr := func(old int, found bool) int {
		if !found {
			return 1
		}
		return old + 1
	}

	v, exp := c.Upsert("k", time.Minute, incr)
	if v != 1 || !exp.Equal(clock.t.Add(time.Minute)) {
		t.Fatalf("unexpected first upsert v=%d exp=%v", v, exp)
	}

	clock.t = clock.t.Add(30 * time.Second)
	v, exp2 := c.Upsert("k", time.Minute, incr)
	if v != 2 || !exp2.Equal(exp) {
		t.Fatalf("expected v=2 with unchanged expiry, got v=%d exp=%v", v, exp2)
	}

	clock.t = clock.t.Add(31 * time.Second)
	v, _ = c.Upsert("k", time.Minute, incr)
	if v != 1 {
		t.Fatalf("expected counter reset after expiry, got %d", v)
	}
}

func TestSimpleCache_Delete(t *testing.T) {
	c := NewSimpleCache[int, int](Options{ConcurrencySafe: true})
	c.Set(1, 10, 0)
	c.Set(2, 20, 0)
	c.Delete(1)
	if _, ok := c.Get(1); ok {
		t.Fatalf("expected key 1 to be deleted")
	}
	if c.Len() != 1 {
		t.Fatalf("expected Len=1, got %d", c.Len())
	}
}

func TestSimpleCache_ConcurrentUpsert(t *testing.T) {
	c := NewSimpleCache[string, int](Options{ConcurrencySafe: true})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < 100; r++ {
				c.Upsert("hits", 0, func(old int, _ bool) int { return old + 1 })
			}
		}()
	}
	wg.Wait()
	if v, _ := c.Get("hits"); v != 5000 {
		t.Fatalf("expected 5000 hits, got %d", v)
	}
}
