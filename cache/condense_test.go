package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andozai/retrieval/schema"
)

func TestLRUSetGet(t *testing.T) {
	c := NewLRU(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("get a = %q, %v", v, ok)
	}
	// "b" is now the oldest; adding "c" evicts it
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b evicted")
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
}

func TestLRUTTLExpiry(t *testing.T) {
	c := NewLRU(10, 20*time.Millisecond)
	c.Set("k", "v")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("fresh entry missing")
	}
	time.Sleep(40 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry served")
	}
}

func TestGetOrComputeSingleFlight(t *testing.T) {
	c := NewCondenseCache(16, time.Minute)
	key := Key(schema.LangRussian, "какая ставка ндс")

	var calls int32
	var wg sync.WaitGroup
	const workers = 16
	results := make([]string, workers)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			v, _, err := c.GetOrCompute(context.Background(), key, func(context.Context) (string, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(10 * time.Millisecond)
				return "rewritten", nil
			})
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
			}
			results[i] = v
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("compute ran %d times, want 1", got)
	}
	for i, v := range results {
		if v != "rewritten" {
			t.Fatalf("worker %d got %q", i, v)
		}
	}

	// Now cached: no further computes.
	v, hit, err := c.GetOrCompute(context.Background(), key, func(context.Context) (string, error) {
		t.Fatal("compute must not run on a hit")
		return "", nil
	})
	if err != nil || !hit || v != "rewritten" {
		t.Fatalf("hit = %v, v = %q, err = %v", hit, v, err)
	}
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	c := NewCondenseCache(16, time.Minute)
	key := Key(schema.LangTajik, "меъёри ааи")

	boom := errors.New("backend down")
	_, _, err := c.GetOrCompute(context.Background(), key, func(context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if c.Len() != 0 {
		t.Fatalf("failed compute left %d entries", c.Len())
	}

	// Next call recomputes and succeeds.
	v, hit, err := c.GetOrCompute(context.Background(), key, func(context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil || hit || v != "ok" {
		t.Fatalf("recompute: v=%q hit=%v err=%v", v, hit, err)
	}
}

func TestKeySeparatesLanguages(t *testing.T) {
	if Key(schema.LangRussian, "налог") == Key(schema.LangTajik, "налог") {
		t.Fatal("keys for different languages collide")
	}
}
