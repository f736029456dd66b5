package router

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// countingLoader counts invocations and returns artifact.
type countingLoader struct {
	mu       sync.Mutex
	calls    int
	artifact any
}

func (l *countingLoader) load(ctx context.Context, _ Params) (any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.artifact, nil
}

func (l *countingLoader) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func TestPrefetchWarmsRoute(t *testing.T) {
	loader := &countingLoader{artifact: "page:/heavy"}
	f := newFixture(t, Config{Routes: []Def{
		staticDef("/"),
		{Path: "/heavy", Load: loader.load},
	}})
	if err := f.router.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := f.router.Prefetch(context.Background(), "/heavy"); err != nil {
		t.Fatalf("Prefetch failed: %v", err)
	}
	if got := loader.Calls(); got != 1 {
		t.Fatalf("loader calls after prefetch = %d, want 1", got)
	}
	if got := len(f.mounter.Mounts()); got != 1 {
		t.Errorf("prefetch mounted a page: %d mounts, want 1", got)
	}

	if err := f.router.Navigate(context.Background(), "/heavy"); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}
	if got := loader.Calls(); got != 1 {
		t.Errorf("loader calls after navigation = %d, want still 1", got)
	}
	if got := f.router.Current().Path; got != "/heavy" {
		t.Errorf("current path = %q, want /heavy", got)
	}
}

func TestPrefetchNoopCases(t *testing.T) {
	f := newFixture(t, Config{Routes: []Def{staticDef("/")}})
	if err := f.router.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := f.router.Prefetch(context.Background(), "/unmatched"); err != nil {
		t.Errorf("Prefetch of unmatched path = %v, want nil", err)
	}
	if err := f.router.Prefetch(context.Background(), "/"); err != nil {
		t.Errorf("Prefetch of already-loaded route = %v, want nil", err)
	}
}

func TestPrefetchRateLimited(t *testing.T) {
	l1 := &countingLoader{artifact: "p1"}
	l2 := &countingLoader{artifact: "p2"}
	f := newFixture(t, Config{
		Routes: []Def{
			staticDef("/"),
			{Path: "/p1", Load: l1.load},
			{Path: "/p2", Load: l2.load},
		},
		Prefetch: &PrefetchConfig{RateLimit: 1, Concurrency: 4},
	})

	if err := f.router.Prefetch(context.Background(), "/p1"); err != nil {
		t.Fatalf("first Prefetch failed: %v", err)
	}
	if err := f.router.Prefetch(context.Background(), "/p2"); !errors.Is(err, ErrPrefetchThrottled) {
		t.Errorf("second Prefetch error = %v, want ErrPrefetchThrottled", err)
	}
	if got := l2.Calls(); got != 0 {
		t.Errorf("throttled prefetch still called loader %d times", got)
	}
}

func TestPrefetchConcurrencyLimit(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	other := &countingLoader{artifact: "other"}
	f := newFixture(t, Config{
		Routes: []Def{
			staticDef("/"),
			{Path: "/slow", Load: func(ctx context.Context, _ Params) (any, error) {
				close(started)
				<-release
				return "slow", nil
			}},
			{Path: "/other", Load: other.load},
		},
		Prefetch: &PrefetchConfig{RateLimit: 0, Concurrency: 1},
	})

	errCh := make(chan error, 1)
	go func() { errCh <- f.router.Prefetch(context.Background(), "/slow") }()
	<-started

	if err := f.router.Prefetch(context.Background(), "/other"); !errors.Is(err, ErrPrefetchThrottled) {
		t.Errorf("over-concurrency Prefetch error = %v, want ErrPrefetchThrottled", err)
	}

	close(release)
	if err := <-errCh; err != nil {
		t.Fatalf("slow Prefetch failed: %v", err)
	}
	if got := other.Calls(); got != 0 {
		t.Errorf("dropped prefetch still called loader %d times", got)
	}
}

func TestPrefetchSharesInflightLoad(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	f := newFixture(t, Config{
		Routes: []Def{
			staticDef("/"),
			{Path: "/slow", Load: func(ctx context.Context, _ Params) (any, error) {
				mu.Lock()
				calls++
				mu.Unlock()
				close(started)
				<-release
				return "slow", nil
			}},
		},
		Prefetch: &PrefetchConfig{RateLimit: 0, Concurrency: 4},
	})

	first := make(chan error, 1)
	go func() { first <- f.router.Prefetch(context.Background(), "/slow") }()
	<-started

	second := make(chan error, 1)
	go func() { second <- f.router.Prefetch(context.Background(), "/slow") }()

	close(release)
	if err := <-first; err != nil {
		t.Errorf("first Prefetch failed: %v", err)
	}
	if err := <-second; err != nil {
		t.Errorf("joined Prefetch failed: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("loader ran %d times for concurrent prefetches, want 1", calls)
	}
}

func TestPrefetchTimeout(t *testing.T) {
	f := newFixture(t, Config{
		Routes: []Def{
			staticDef("/"),
			{Path: "/hang", Load: func(ctx context.Context, _ Params) (any, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}},
		},
		Prefetch: &PrefetchConfig{Timeout: 20 * time.Millisecond, RateLimit: 0, Concurrency: 4},
	})

	err := f.router.Prefetch(context.Background(), "/hang")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Prefetch error = %v, want DeadlineExceeded", err)
	}
}

func TestPrefetchAfterDestroy(t *testing.T) {
	f := newFixture(t, Config{Routes: []Def{staticDef("/")}})
	f.router.Destroy()

	if err := f.router.Prefetch(context.Background(), "/"); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Prefetch after Destroy error = %v, want ErrDestroyed", err)
	}
}
