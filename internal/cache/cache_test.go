package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func counter(n *int32, value string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		atomic.AddInt32(n, 1)
		return value, nil
	}
}

func fresh(c *Cache, key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	return ok && !e.stale
}

func TestQueryCachesResult(t *testing.T) {
	c := New(nil)
	var calls int32
	key := Key{"department", 1, 10, "", "", ""}

	for i := 0; i < 3; i++ {
		v, err := Query(context.Background(), c, key, counter(&calls, "page1"))
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if v != "page1" {
			t.Errorf("value = %q, want page1", v)
		}
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
	if s := c.Stats(); s.Hits != 2 || s.Misses != 1 {
		t.Errorf("stats = %+v, want 2 hits 1 miss", s)
	}
}

func TestQueryDistinctKeys(t *testing.T) {
	c := New(nil)
	var calls int32

	_, _ = Query(context.Background(), c, Key{"role", 1}, counter(&calls, "a"))
	_, _ = Query(context.Background(), c, Key{"role", 2}, counter(&calls, "b"))

	if calls != 2 {
		t.Errorf("fetch called %d times, want 2", calls)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestQueryErrorNotCached(t *testing.T) {
	c := New(nil)
	boom := errors.New("boom")
	key := Key{"system", 1}

	_, err := Query(context.Background(), c, key, func(context.Context) (int, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Errorf("failed fetch stored an entry")
	}

	v, err := Query(context.Background(), c, key, func(context.Context) (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("retry = %d, %v; want 7, nil", v, err)
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c := New(nil)
	var calls int32
	ctx := context.Background()

	_, _ = Query(ctx, c, Key{"department", 1, 10}, counter(&calls, "d1"))
	_, _ = Query(ctx, c, Key{"department", 2, 10}, counter(&calls, "d2"))
	_, _ = Query(ctx, c, Key{"departments-tree"}, counter(&calls, "t"))
	_, _ = Query(ctx, c, Key{"contact", 1, 10}, counter(&calls, "c1"))

	if n := c.Invalidate(Key{"department"}); n != 2 {
		t.Errorf("Invalidate = %d, want 2", n)
	}
	if fresh(c, Key{"department", 1, 10}) {
		t.Error("department page 1 still fresh")
	}
	if !fresh(c, Key{"departments-tree"}) {
		t.Error("prefix matched a different resource name")
	}
	if !fresh(c, Key{"contact", 1, 10}) {
		t.Error("contact entry invalidated")
	}

	before := calls
	_, _ = Query(ctx, c, Key{"department", 1, 10}, counter(&calls, "d1'"))
	if calls != before+1 {
		t.Errorf("stale entry was not refetched")
	}

	if n := c.Invalidate(Key{"department"}); n != 1 {
		t.Errorf("second Invalidate = %d, want 1 (only the refetched entry)", n)
	}
}

func TestInvalidateEmptyPrefixMatchesAll(t *testing.T) {
	c := New(nil)
	var calls int32
	_, _ = Query(context.Background(), c, Key{"a"}, counter(&calls, "a"))
	_, _ = Query(context.Background(), c, Key{"b"}, counter(&calls, "b"))

	if n := c.Invalidate(nil); n != 2 {
		t.Errorf("Invalidate(nil) = %d, want 2", n)
	}
}

func TestQueryCoalescesConcurrentMisses(t *testing.T) {
	c := New(nil)
	var calls int32
	release := make(chan struct{})
	fetch := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := Query(context.Background(), c, Key{"log", 1}, fetch); err != nil || v != "v" {
				t.Errorf("Query = %q, %v", v, err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
}

func TestInvalidateDuringFetch(t *testing.T) {
	c := New(nil)
	ctx := context.Background()
	key := Key{"department", 1, 10}

	var (
		mu     sync.Mutex
		server = "before"
		calls  int32
	)
	started := make(chan struct{})
	release := make(chan struct{})
	slow := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		mu.Lock()
		v := server
		mu.Unlock()
		close(started)
		<-release
		return v, nil
	}
	read := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		mu.Lock()
		defer mu.Unlock()
		return server, nil
	}

	first := make(chan string, 1)
	go func() {
		v, _ := Query(ctx, c, key, slow)
		first <- v
	}()
	<-started

	mu.Lock()
	server = "after"
	mu.Unlock()
	c.Invalidate(Key{"department"})

	second := make(chan string, 1)
	go func() {
		v, _ := Query(ctx, c, key, read)
		second <- v
	}()
	select {
	case v := <-second:
		if v != "after" {
			t.Errorf("read after invalidation = %q, want after", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("read after invalidation joined the earlier fetch")
	}

	close(release)
	if v := <-first; v != "before" {
		t.Errorf("first read = %q, want before", v)
	}

	v, err := Query(ctx, c, key, read)
	if err != nil || v != "after" {
		t.Errorf("cached value = %q, %v; want after", v, err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("fetches = %d, want 2", n)
	}
	if !fresh(c, key) {
		t.Error("refetched entry is not fresh")
	}
}

func TestInvalidateDuringFetchOtherPrefix(t *testing.T) {
	c := New(nil)
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Query(ctx, c, Key{"contact", 1}, func(context.Context) (string, error) {
			close(started)
			<-release
			return "c", nil
		})
	}()
	<-started
	c.Invalidate(Key{"department"})
	close(release)
	<-done

	if !fresh(c, Key{"contact", 1}) {
		t.Error("unrelated invalidation dropped an in-flight result")
	}
}

func TestKeyHasPrefix(t *testing.T) {
	tests := []struct {
		key, prefix Key
		want        bool
	}{
		{Key{"role", 1, 10}, Key{"role"}, true},
		{Key{"role", 1, 10}, Key{"role", 1}, true},
		{Key{"role", 1, 10}, Key{"role", 2}, false},
		{Key{"role"}, Key{"role", 1}, false},
		{Key{"role"}, nil, true},
	}
	for _, tt := range tests {
		if got := tt.key.HasPrefix(tt.prefix); got != tt.want {
			t.Errorf("%v.HasPrefix(%v) = %v, want %v", tt.key, tt.prefix, got, tt.want)
		}
	}
}
