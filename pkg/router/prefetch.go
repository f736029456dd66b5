package router

import (
	"context"
	"sync"
	"time"
)

// PrefetchConfig tunes the prefetch budgets. Prefetching is best
// effort: work beyond a budget is dropped, never queued.
type PrefetchConfig struct {
	// Timeout is the maximum time one prefetch load may take.
	// Default: 10s.
	Timeout time.Duration

	// RateLimit is the maximum prefetch requests per second. Excess
	// requests are dropped with ErrPrefetchThrottled. Zero disables
	// rate limiting. Default: 5.
	RateLimit float64

	// Concurrency is the maximum simultaneous prefetch loads.
	// Default: 4.
	Concurrency int
}

// DefaultPrefetchConfig returns the default prefetch budgets.
func DefaultPrefetchConfig() *PrefetchConfig {
	return &PrefetchConfig{
		Timeout:     10 * time.Second,
		RateLimit:   5.0,
		Concurrency: 4,
	}
}

// prefetcher coordinates prefetch loads: a token bucket caps request
// rate, a semaphore caps concurrency, and in-flight loads for the same
// route are shared rather than repeated.
type prefetcher struct {
	config  *PrefetchConfig
	limiter *rateLimiter
	sem     *semaphore

	mu       sync.Mutex
	inflight map[int]*prefetchCall
}

// prefetchCall is one in-flight load, shared by every caller that asks
// for the same route while it runs.
type prefetchCall struct {
	done chan struct{}
	err  error
}

func newPrefetcher(config *PrefetchConfig) *prefetcher {
	if config == nil {
		config = DefaultPrefetchConfig()
	}
	cfg := *config
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	p := &prefetcher{
		config:   &cfg,
		sem:      newSemaphore(cfg.Concurrency),
		inflight: make(map[int]*prefetchCall),
	}
	if cfg.RateLimit > 0 {
		p.limiter = newRateLimiter(cfg.RateLimit)
	}
	return p
}

// load runs one prefetch for the route keyed by key. Joiners of an
// in-flight load share its result and consume no budget.
func (p *prefetcher) load(ctx context.Context, key int, page *PageRef, params Params) error {
	p.mu.Lock()
	if call, ok := p.inflight[key]; ok {
		p.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if p.limiter != nil && !p.limiter.Allow() {
		p.mu.Unlock()
		return ErrPrefetchThrottled
	}
	if !p.sem.Acquire() {
		p.mu.Unlock()
		return ErrPrefetchThrottled
	}

	call := &prefetchCall{done: make(chan struct{})}
	p.inflight[key] = call
	p.mu.Unlock()

	loadCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	_, err := page.Load(loadCtx, params)
	cancel()

	p.mu.Lock()
	delete(p.inflight, key)
	p.mu.Unlock()
	p.sem.Release()

	call.err = err
	close(call.done)
	return err
}

// rateLimiter is a token bucket. The bucket starts full and refills
// continuously at ratePerSecond, capped at one second's worth.
type rateLimiter struct {
	mu            sync.Mutex
	ratePerSecond float64
	tokens        float64
	lastRefill    time.Time
}

func newRateLimiter(ratePerSecond float64) *rateLimiter {
	return &rateLimiter{
		ratePerSecond: ratePerSecond,
		tokens:        ratePerSecond,
		lastRefill:    time.Now(),
	}
}

// Allow consumes one token if available.
func (r *rateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.tokens += elapsed * r.ratePerSecond
	if r.tokens > r.ratePerSecond {
		r.tokens = r.ratePerSecond
	}
	r.lastRefill = now

	if r.tokens >= 1.0 {
		r.tokens -= 1.0
		return true
	}
	return false
}

// semaphore limits concurrent prefetch loads. Acquire is non-blocking;
// a full semaphore means the caller should drop the work.
type semaphore struct {
	ch chan struct{}
}

func newSemaphore(limit int) *semaphore {
	return &semaphore{ch: make(chan struct{}, limit)}
}

func (s *semaphore) Acquire() bool {
	select {
	case s.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *semaphore) Release() {
	select {
	case <-s.ch:
	default:
	}
}
