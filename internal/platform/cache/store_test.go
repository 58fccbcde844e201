package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_SetGetDelete(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute)
	ctx := context.Background()

	if _, ok := s.Get(ctx, "roster:s-1"); ok {
		t.Fatalf("expected miss before set")
	}

	s.Set(ctx, "roster:s-1", []string{"u-1", "u-2"})
	value, ok := s.Get(ctx, "roster:s-1")
	if !ok {
		t.Fatalf("expected hit after set")
	}
	rows, ok := value.([]string)
	if !ok || len(rows) != 2 {
		t.Fatalf("unexpected cached value: %#v", value)
	}

	s.Delete(ctx, "roster:s-1")
	if _, ok := s.Get(ctx, "roster:s-1"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestStore_EmptyKeyIsNoop(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute)
	ctx := context.Background()

	s.Set(ctx, "", "value")
	if _, ok := s.Get(ctx, ""); ok {
		t.Fatalf("expected miss for empty key")
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	s := NewStore(10 * time.Millisecond)
	ctx := context.Background()

	s.Set(ctx, "roster:s-1", "rows")
	time.Sleep(25 * time.Millisecond)

	if _, ok := s.Get(ctx, "roster:s-1"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute)
	ctx := context.Background()

	s.Set(ctx, "roster:s-1", 1)
	s.Set(ctx, "roster:s-2", 2)
	s.Set(ctx, "league:gold", 3)

	s.DeletePrefix(ctx, "roster:")

	if _, ok := s.Get(ctx, "roster:s-1"); ok {
		t.Fatalf("expected roster:s-1 deleted")
	}
	if _, ok := s.Get(ctx, "roster:s-2"); ok {
		t.Fatalf("expected roster:s-2 deleted")
	}
	if _, ok := s.Get(ctx, "league:gold"); !ok {
		t.Fatalf("expected league:gold kept")
	}
}

func TestStore_GetOrLoad(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute)
	ctx := context.Background()

	var loads atomic.Int32
	loader := func(context.Context) (any, error) {
		loads.Add(1)
		return "rows", nil
	}

	for i := 0; i < 3; i++ {
		value, err := s.GetOrLoad(ctx, "roster:s-1", loader)
		if err != nil {
			t.Fatalf("get or load: %v", err)
		}
		if value != "rows" {
			t.Fatalf("unexpected value: %#v", value)
		}
	}

	if got := loads.Load(); got != 1 {
		t.Fatalf("expected single load, got %d", got)
	}
}

func TestStore_GetOrLoadError(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute)
	ctx := context.Background()

	wantErr := errors.New("load failed")
	if _, err := s.GetOrLoad(ctx, "roster:s-1", func(context.Context) (any, error) {
		return nil, wantErr
	}); !errors.Is(err, wantErr) {
		t.Fatalf("expected loader error, got %v", err)
	}

	// A failed load must not poison the key.
	value, err := s.GetOrLoad(ctx, "roster:s-1", func(context.Context) (any, error) {
		return "rows", nil
	})
	if err != nil {
		t.Fatalf("get or load after failure: %v", err)
	}
	if value != "rows" {
		t.Fatalf("unexpected value: %#v", value)
	}
}

func TestStore_GetOrLoadConcurrent(t *testing.T) {
	t.Parallel()

	s := NewStore(time.Minute)
	ctx := context.Background()

	var loads atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.GetOrLoad(ctx, "roster:s-1", func(context.Context) (any, error) {
				loads.Add(1)
				time.Sleep(5 * time.Millisecond)
				return "rows", nil
			})
			if err != nil {
				t.Errorf("get or load: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := loads.Load(); got < 1 || got > 2 {
		t.Fatalf("expected deduplicated loads, got %d", got)
	}
}
