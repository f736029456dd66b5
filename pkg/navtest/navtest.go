package navtest

import (
	"io"
	"log/slog"
	"testing"

	"github.com/zenith-dev/zenith/pkg/history"
	"github.com/zenith-dev/zenith/pkg/router"
)

// Builder allows fluent construction of test routers.
type Builder struct {
	routes    []router.Def
	mode      router.MatchMode
	guards    []router.Guard
	hooks     []router.Hook
	observers []router.Observer
	entries   []string
	prefetch  *router.PrefetchConfig
	onFailure router.FailureHandler
	logger    *slog.Logger
}

// NewHarness creates a new harness builder.
//
// Example:
//
//	h := navtest.NewHarness().
//	    WithRoute("/", "home").
//	    WithRoute("/users/:id", "user").
//	    Build(t)
//	h.Start()
//	h.MustNavigate("/users/7")
//	h.AssertParam("id", "7")
func NewHarness() *Builder {
	return &Builder{}
}

// WithRoute adds a route whose page artifact is already available.
func (b *Builder) WithRoute(path string, artifact any) *Builder {
	b.routes = append(b.routes, router.Def{Path: path, Page: artifact})
	return b
}

// WithLoader adds a route backed by a loader function.
func (b *Builder) WithLoader(path string, load router.LoadFunc) *Builder {
	b.routes = append(b.routes, router.Def{Path: path, Load: load})
	return b
}

// WithRoutes adds fully specified route definitions.
func (b *Builder) WithRoutes(defs ...router.Def) *Builder {
	b.routes = append(b.routes, defs...)
	return b
}

// WithRanking switches matching from declaration order to specificity
// ranking.
func (b *Builder) WithRanking() *Builder {
	b.mode = router.MatchSpecificity
	return b
}

// WithGuard adds a navigation guard.
func (b *Builder) WithGuard(g router.Guard) *Builder {
	b.guards = append(b.guards, g)
	return b
}

// WithHook adds a post-navigation hook.
func (b *Builder) WithHook(h router.Hook) *Builder {
	b.hooks = append(b.hooks, h)
	return b
}

// WithObserver adds a navigation observer.
func (b *Builder) WithObserver(o router.Observer) *Builder {
	b.observers = append(b.observers, o)
	return b
}

// WithHistory seeds the history stack. The last entry is the current
// location. Default: a single "/" entry.
func (b *Builder) WithHistory(entries ...string) *Builder {
	b.entries = entries
	return b
}

// WithPrefetch enables prefetching with the given config.
func (b *Builder) WithPrefetch(cfg *router.PrefetchConfig) *Builder {
	b.prefetch = cfg
	return b
}

// WithFailureHandler replaces the default navigation failure handler.
func (b *Builder) WithFailureHandler(fn router.FailureHandler) *Builder {
	b.onFailure = fn
	return b
}

// WithLogger sets the router logger. Default: a discarding logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build constructs the harness. Construction errors fail the test
// immediately, and the router is destroyed when the test ends.
func (b *Builder) Build(tb testing.TB) *Harness {
	tb.Helper()

	bridge, backend := history.NewMemory(b.entries...)
	mounter := &RecordingMounter{}
	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r, err := router.New(&router.Config{
		Routes:    b.routes,
		Mode:      b.mode,
		History:   bridge,
		Mounter:   mounter,
		Container: "test-root",
		Guards:    b.guards,
		Hooks:     b.hooks,
		Observers: b.observers,
		Prefetch:  b.prefetch,
		OnFailure: b.onFailure,
		Logger:    logger,
	})
	if err != nil {
		tb.Fatalf("navtest: building router: %v", err)
	}
	tb.Cleanup(r.Destroy)

	h := &Harness{
		tb:      tb,
		Router:  r,
		Mounter: mounter,
		Bridge:  bridge,
		Backend: backend,
	}
	h.unsubscribe = r.Subscribe(h.record)
	return h
}
