package router

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/zenith-dev/zenith/pkg/events"
	"github.com/zenith-dev/zenith/pkg/history"
	"github.com/zenith-dev/zenith/pkg/manifest"
	"github.com/zenith-dev/zenith/pkg/routepath"
)

// Router is the navigation state machine. It resolves pathnames
// against the manifest, loads and mounts pages, keeps history in sync,
// and notifies listeners of route changes.
//
// Overlapping navigations are resolved by token: every navigation
// increments a monotonic token, and a navigation re-checks that its
// token is still the latest before every side effect. A navigation
// that lost the race stops silently with ErrSuperseded; the last
// navigation issued always wins, regardless of which load finished
// first.
type Router struct {
	manifest  *manifest.Manifest
	pages     map[int]*PageRef
	hist      history.History
	mounter   Mounter
	container any
	logger    *slog.Logger
	bus       *events.Bus[Change]
	observers []Observer
	onFailure FailureHandler
	prefetch  *prefetcher

	noCanon      bool
	maxRedirects int

	mu        sync.Mutex
	token     uint64
	state     *RouteState
	phase     Phase
	teardown  Teardown
	started   bool
	destroyed bool
	unlisten  func()
	guards    []*guardEntry
	hooks     []*hookEntry
}

// navSettings distinguishes the navigation surfaces: Navigate writes
// history, Start and history traversal do not.
type navSettings struct {
	replace       bool
	updateHistory bool
	queryParams   map[string]any
}

// New validates cfg and builds a router. The router is inert until
// Start; construction touches neither history nor the container.
func New(cfg *Config) (*Router, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Mounter == nil {
		return nil, ErrNilMounter
	}
	if cfg.Container == nil {
		return nil, ErrNilContainer
	}
	if len(cfg.Routes) == 0 {
		return nil, ErrEmptyRoutes
	}

	for i, d := range cfg.Routes {
		if d.Load == nil && d.Page == nil {
			return nil, fmt.Errorf("router: route %q (index %d): neither Load nor Page is set", d.Path, i)
		}
	}

	m := cfg.Manifest
	if m == nil {
		defs := make([]manifest.Def, len(cfg.Routes))
		for i, d := range cfg.Routes {
			defs[i] = manifest.Def{Path: d.Path}
		}
		var mopts []manifest.BuildOption
		if cfg.Mode == MatchSpecificity {
			mopts = append(mopts, manifest.WithRanking())
		}
		built, err := manifest.Build(defs, mopts...)
		if err != nil {
			return nil, fmt.Errorf("router: %w", err)
		}
		m = built
	} else if m.Len() != len(cfg.Routes) {
		return nil, fmt.Errorf("router: manifest has %d routes but Config.Routes has %d", m.Len(), len(cfg.Routes))
	}

	pages := make(map[int]*PageRef, len(cfg.Routes))
	for i, d := range cfg.Routes {
		if d.Page != nil {
			pages[i] = NewLoaded(d.Page)
		} else {
			pages[i] = NewUnloaded(d.Load)
		}
	}

	hist := cfg.History
	if hist == nil {
		hist, _ = history.NewMemory()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "router")
	}

	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = defaultMaxRedirects
	}

	pathname, rawQuery := routepath.SplitPathAndQuery(hist.Current())
	if pathname == "" {
		pathname = "/"
	}

	r := &Router{
		manifest:     m,
		pages:        pages,
		hist:         hist,
		mounter:      cfg.Mounter,
		container:    cfg.Container,
		logger:       logger,
		bus:          events.New[Change]().WithLogger(logger),
		observers:    append([]Observer(nil), cfg.Observers...),
		onFailure:    cfg.OnFailure,
		prefetch:     newPrefetcher(cfg.Prefetch),
		noCanon:      cfg.DisableCanonicalization,
		maxRedirects: maxRedirects,
		state: &RouteState{
			Path:   pathname,
			Params: Params{},
			Query:  ParseQuery(rawQuery),
		},
	}
	for _, g := range cfg.Guards {
		r.guards = append(r.guards, &guardEntry{fn: g})
	}
	for _, h := range cfg.Hooks {
		r.hooks = append(r.hooks, &hookEntry{fn: h})
	}
	return r, nil
}

// Start attaches the router to history and resolves the current
// location. The initial resolution runs like any navigation except
// that it never writes a history entry. Start is idempotent; calls
// after the first return nil without re-resolving.
func (r *Router) Start() error {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return ErrDestroyed
	}
	if r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = true
	r.mu.Unlock()

	unlisten := r.hist.Listen(r.onHistoryChange)
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		unlisten()
		return ErrDestroyed
	}
	r.unlisten = unlisten
	r.mu.Unlock()

	return r.navigate(context.Background(), r.hist.Current(), navSettings{})
}

// Destroy detaches the router from history and invalidates all
// in-flight navigations. The mounted page, if any, is left in place;
// the host owns the container's final cleanup. Destroy is idempotent.
func (r *Router) Destroy() {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.destroyed = true
	r.token++
	unlisten := r.unlisten
	r.unlisten = nil
	r.mu.Unlock()

	if unlisten != nil {
		unlisten()
	}
	r.logger.Debug("router destroyed")
}

// Navigate moves the application to target, writing a history entry.
// It blocks until the navigation settles and returns nil on a mount or
// a no-match, ErrSuperseded when a newer navigation won, ErrDestroyed
// after Destroy, ErrVetoed when a guard rejected it, or a
// *NavigationError when a step failed.
func (r *Router) Navigate(ctx context.Context, target string, opts ...NavigateOption) error {
	var o navOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return r.navigate(ctx, target, navSettings{
		replace:       o.replace,
		updateHistory: true,
		queryParams:   o.params,
	})
}

// Back moves one entry back in history. The traversal event drives
// re-resolution asynchronously through the history listener.
func (r *Router) Back() { r.hist.Back() }

// Forward moves one entry forward in history.
func (r *Router) Forward() { r.hist.Forward() }

// Go moves by delta entries in history.
func (r *Router) Go(delta int) { r.hist.Go(delta) }

// Subscribe registers a route-change listener and returns its remover.
// Listeners are invoked synchronously, in registration order, with the
// new state and the one it replaced. There is no replay: a listener
// only sees changes committed after it subscribed.
func (r *Router) Subscribe(fn func(Change)) func() {
	return r.bus.Subscribe(fn)
}

// BeforeEach registers a guard after construction and returns its
// remover.
func (r *Router) BeforeEach(g Guard) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := &guardEntry{fn: g}
	r.guards = append(r.guards, entry)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if entry.removed {
			return
		}
		entry.removed = true
		for i, e := range r.guards {
			if e == entry {
				r.guards = append(r.guards[:i], r.guards[i+1:]...)
				break
			}
		}
	}
}

// AfterEach registers a post-navigation hook after construction and
// returns its remover.
func (r *Router) AfterEach(h Hook) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := &hookEntry{fn: h}
	r.hooks = append(r.hooks, entry)
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if entry.removed {
			return
		}
		entry.removed = true
		for i, e := range r.hooks {
			if e == entry {
				r.hooks = append(r.hooks[:i], r.hooks[i+1:]...)
				break
			}
		}
	}
}

// Current returns the route state of the last committed navigation.
func (r *Router) Current() *RouteState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Phase returns the machine's coarse state.
func (r *Router) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Token returns the most recently allocated navigation token.
func (r *Router) Token() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

// Listeners returns the number of subscribed route-change listeners.
func (r *Router) Listeners() int {
	return r.bus.Len()
}

// Manifest returns the compiled manifest the router resolves against.
func (r *Router) Manifest() *manifest.Manifest {
	return r.manifest
}

// Resolve resolves target against the manifest without navigating. The
// returned state has a nil Route when nothing matched.
func (r *Router) Resolve(target string) (*RouteState, error) {
	_, pathname, rawQuery, err := r.prepareTarget(target)
	if err != nil {
		return nil, &NavigationError{Op: "canonicalize", Path: target, Err: err}
	}
	return r.resolveState(pathname, ParseQuery(rawQuery)), nil
}

// Prefetch warms the page behind target without navigating. It is a
// no-op when the target does not resolve or is already loaded. A
// successful prefetch transitions the route's PageRef to loaded, so
// the eventual navigation skips the load step.
func (r *Router) Prefetch(ctx context.Context, target string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	r.mu.Lock()
	destroyed := r.destroyed
	r.mu.Unlock()
	if destroyed {
		return ErrDestroyed
	}

	_, pathname, _, err := r.prepareTarget(target)
	if err != nil {
		return &NavigationError{Op: "canonicalize", Path: target, Err: err}
	}
	match, ok := Resolve(r.manifest, pathname)
	if !ok {
		r.logger.Debug("prefetch target unmatched", "path", pathname)
		return nil
	}
	page := r.pages[match.Route.SourceIndex]
	if page.Loaded() {
		return nil
	}
	return r.prefetch.load(ctx, match.Route.SourceIndex, page, match.Params)
}

// navigate runs one navigation attempt end to end.
func (r *Router) navigate(ctx context.Context, target string, s navSettings) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if len(s.queryParams) > 0 {
		built, err := buildTarget(target, s.queryParams)
		if err != nil {
			return &NavigationError{Op: "canonicalize", Path: target, Err: err}
		}
		target = built
	}

	canonical, pathname, rawQuery, err := r.prepareTarget(target)
	if err != nil {
		r.logger.Warn("navigation target rejected", "path", target, "error", err)
		return &NavigationError{Op: "canonicalize", Path: target, Err: err}
	}
	query := ParseQuery(rawQuery)

	// Pre-navigation guards. Only the final, guard-approved target is
	// carried forward; intermediate redirect hops never touch history.
	if guards := r.guardsSnapshot(); len(guards) > 0 {
		from := r.Current()
		for depth := 0; ; depth++ {
			redirect, vetoed := runGuardChain(ctx, guards, from, r.resolveState(pathname, query), r.logger)
			if vetoed {
				r.logger.Debug("navigation vetoed", "path", pathname)
				return ErrVetoed
			}
			if redirect == "" {
				break
			}
			if depth >= r.maxRedirects {
				r.logger.Error("guard redirect limit exceeded", "path", pathname, "redirect", redirect)
				return &NavigationError{Op: "guard", Path: pathname, Err: ErrTooManyRedirects}
			}
			canonical, pathname, rawQuery, err = r.prepareTarget(redirect)
			if err != nil {
				return &NavigationError{Op: "canonicalize", Path: redirect, Err: err}
			}
			query = ParseQuery(rawQuery)
		}
	}

	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		// History may still change after destroy; the page may not.
		if s.updateHistory {
			r.writeHistory(canonical, s.replace)
		}
		return ErrDestroyed
	}
	if s.updateHistory {
		r.writeHistory(canonical, s.replace)
	}
	r.token++
	token := r.token
	r.phase = PhaseResolving
	r.mu.Unlock()

	r.logger.Debug("navigating", "path", pathname, "token", token)

	start := time.Now()
	ctx = r.observeStart(ctx, pathname, token)
	outcome, err := r.run(ctx, token, pathname, query)
	r.observeComplete(ctx, pathname, token, outcome, time.Since(start))
	return err
}

// run executes the side-effect steps of one navigation: teardown,
// load, mount, commit, notify. Each step re-checks the token first, so
// a superseded navigation stops at the next step boundary.
func (r *Router) run(ctx context.Context, token uint64, pathname string, query Params) (Outcome, error) {
	next := &RouteState{Path: pathname, Params: Params{}, Query: query}
	var page *PageRef
	if match, ok := Resolve(r.manifest, pathname); ok {
		next.Params = match.Params
		next.Route = match.Route
		page = r.pages[match.Route.SourceIndex]
	}

	// Tear down the previous page before the load starts, never after
	// a newer token has taken over.
	td, ok := r.claimTeardown(token)
	if !ok {
		return OutcomeSuperseded, r.staleErr()
	}
	if td != nil {
		r.runTeardown(td)
	}

	if page == nil {
		if !r.commitState(token, next, nil, PhaseIdle) {
			return OutcomeSuperseded, r.staleErr()
		}
		r.logger.Debug("no route matched", "path", pathname, "token", token)
		return OutcomeUnmatched, nil
	}

	artifact, err := page.Load(ctx, next.Params)
	if err != nil {
		if !r.stillCurrent(token) {
			return OutcomeSuperseded, r.staleErr()
		}
		nerr := &NavigationError{Op: "load", Path: pathname, Token: token, Err: err}
		r.fail(nerr)
		return OutcomeFailed, nerr
	}

	if !r.stillCurrent(token) {
		return OutcomeSuperseded, r.staleErr()
	}
	teardown, err := r.mount(artifact)
	if err != nil {
		if !r.stillCurrent(token) {
			return OutcomeSuperseded, r.staleErr()
		}
		nerr := &NavigationError{Op: "mount", Path: pathname, Token: token, Err: err}
		r.fail(nerr)
		return OutcomeFailed, nerr
	}

	if !r.commitState(token, next, teardown, PhaseMounted) {
		// A newer token landed while mounting. The fresh mount must
		// not stay on screen; undo it and let the winner take over.
		if teardown != nil {
			r.runTeardown(teardown)
		}
		return OutcomeSuperseded, r.staleErr()
	}
	r.logger.Debug("navigation committed", "path", pathname, "token", token)
	return OutcomeMounted, nil
}

// claimTeardown atomically takes ownership of the current teardown.
// The claim fails when token is no longer the latest, which guarantees
// each mounted page is torn down exactly once.
func (r *Router) claimTeardown(token uint64) (Teardown, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.token != token || r.destroyed {
		return nil, false
	}
	td := r.teardown
	r.teardown = nil
	return td, true
}

// commitState publishes next as the current route state if token is
// still the latest, then notifies hooks and listeners. Notification is
// skipped entirely when the commit loses the token race.
func (r *Router) commitState(token uint64, next *RouteState, td Teardown, phase Phase) bool {
	r.mu.Lock()
	if r.token != token || r.destroyed {
		r.mu.Unlock()
		return false
	}
	prev := r.state
	r.state = next
	r.teardown = td
	r.phase = phase
	hooks := make([]Hook, 0, len(r.hooks))
	for _, h := range r.hooks {
		hooks = append(hooks, h.fn)
	}
	r.mu.Unlock()

	change := Change{New: next, Prev: prev}
	for _, h := range hooks {
		callHook(h, change, r.logger)
	}
	r.bus.Publish(change)
	return true
}

func (r *Router) stillCurrent(token uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token == token && !r.destroyed
}

// staleErr distinguishes why a navigation went stale.
func (r *Router) staleErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return ErrDestroyed
	}
	return ErrSuperseded
}

// mount invokes the host mounter with panic capture.
func (r *Router) mount(artifact any) (td Teardown, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			td = nil
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()
	return r.mounter.Mount(r.container, artifact)
}

// runTeardown invokes a teardown with panic capture. A failing
// teardown never blocks the navigation that triggered it.
func (r *Router) runTeardown(td Teardown) {
	defer func() {
		if rec := recover(); rec != nil {
			stack := debug.Stack()
			r.logger.Error("teardown panic", "panic", rec, "stack", string(stack))
		}
	}()
	td()
}

// fail reports a navigation failure exactly once: log, reset phase,
// then hand off to the failure handler. The default handler asks the
// history backend for a full-page reload, abandoning the SPA session
// rather than leaving a half-navigated page up.
func (r *Router) fail(nerr *NavigationError) {
	r.mu.Lock()
	if r.token == nerr.Token {
		r.phase = PhaseIdle
	}
	handler := r.onFailure
	r.mu.Unlock()

	r.logger.Error("navigation failed",
		"op", nerr.Op,
		"path", nerr.Path,
		"token", nerr.Token,
		"error", nerr.Err)

	if handler != nil {
		defer func() {
			if rec := recover(); rec != nil {
				stack := debug.Stack()
				r.logger.Error("failure handler panic", "panic", rec, "stack", string(stack))
			}
		}()
		handler(nerr)
		return
	}
	if rel, ok := r.hist.(history.Reloader); ok {
		rel.ForceReload(nerr.Path)
	}
}

// onHistoryChange handles traversal events (back, forward, go). The
// location already changed, so the navigation re-resolves without
// writing history.
func (r *Router) onHistoryChange(path string) {
	if err := r.navigate(context.Background(), path, navSettings{}); err != nil {
		r.logger.Debug("history navigation settled with error", "path", path, "error", err)
	}
}

// writeHistory is called with r.mu held; Push and Replace never
// dispatch traversal events, so no listener re-enters the router here.
func (r *Router) writeHistory(target string, replace bool) {
	if replace {
		r.hist.Replace(target)
	} else {
		r.hist.Push(target)
	}
}

// prepareTarget validates and canonicalizes a navigation target,
// returning the canonical full target (path plus query), the bare
// pathname, and the raw query.
func (r *Router) prepareTarget(target string) (canonical, pathname, rawQuery string, err error) {
	if target == "" {
		target = "/"
	}
	if r.noCanon {
		pathname, rawQuery = routepath.SplitPathAndQuery(target)
		if pathname == "" {
			pathname = "/"
		}
		return target, pathname, rawQuery, nil
	}

	// SECURITY: absolute and protocol-relative URLs are rejected so a
	// crafted target cannot turn Navigate into an open redirect.
	if strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "//") {
		return "", "", "", routepath.ErrInvalidPath
	}
	if !strings.HasPrefix(target, "/") {
		return "", "", "", routepath.ErrInvalidPath
	}

	res, err := routepath.CanonicalizePath(target)
	if err != nil {
		return "", "", "", err
	}
	canonical = res.Path
	if res.Query != "" {
		canonical += "?" + res.Query
	}
	return canonical, res.Path, res.Query, nil
}

// resolveState resolves pathname into a RouteState.
func (r *Router) resolveState(pathname string, query Params) *RouteState {
	state := &RouteState{Path: pathname, Params: Params{}, Query: query}
	if match, ok := Resolve(r.manifest, pathname); ok {
		state.Params = match.Params
		state.Route = match.Route
	}
	return state
}

func (r *Router) guardsSnapshot() []Guard {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.guards) == 0 {
		return nil
	}
	guards := make([]Guard, 0, len(r.guards))
	for _, e := range r.guards {
		guards = append(guards, e.fn)
	}
	return guards
}
