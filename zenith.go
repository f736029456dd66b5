// Package zenith provides the public API for the Zenith router.
//
// This is the recommended import for most applications:
//
//	import "github.com/zenith-dev/zenith"
//
// Usage:
//
//	rt, err := zenith.New(&zenith.Config{
//	    Routes: []zenith.Def{
//	        {Path: "/", Load: loadHome},
//	        {Path: "/users/:id", Load: loadUser},
//	    },
//	    Mode:      zenith.MatchSpecificity,
//	    Mounter:   mounter,
//	    Container: container,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := rt.Start(); err != nil {
//	    return err
//	}
//	defer rt.Destroy()
//
//	rt.Navigate(ctx, "/users/42")
package zenith

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/zenith-dev/zenith/pkg/history"
	"github.com/zenith-dev/zenith/pkg/manifest"
	"github.com/zenith-dev/zenith/pkg/metrics"
	"github.com/zenith-dev/zenith/pkg/router"
	"github.com/zenith-dev/zenith/pkg/tracing"
)

// =============================================================================
// Router (re-export from pkg/router)
// =============================================================================

// Router is the navigation state machine. Build one with New, attach it
// with Start, and drive it with Navigate, Back and Forward.
type Router = router.Router

// Config configures a Router. Routes, Mounter and Container are
// required; everything else has a working default.
type Config = router.Config

// Def declares a single route: a path pattern plus the page behind it.
type Def = router.Def

// Params holds route or query parameters, always as strings.
type Params = router.Params

// LoadFunc produces the page artifact for a route.
type LoadFunc = router.LoadFunc

// Mounter attaches a loaded page artifact to the host container.
type Mounter = router.Mounter

// MounterFunc adapts a function to the Mounter interface.
type MounterFunc = router.MounterFunc

// Teardown undoes a mount.
type Teardown = router.Teardown

// RouteState is the result of resolving a pathname against the
// manifest.
type RouteState = router.RouteState

// Change describes one completed transition between route states.
type Change = router.Change

// Phase is the navigation machine's coarse state.
type Phase = router.Phase

// MatchMode selects how the manifest is ordered for first-match-wins
// resolution.
type MatchMode = router.MatchMode

const (
	// MatchDeclarationOrder resolves routes in declaration order.
	MatchDeclarationOrder = router.MatchDeclarationOrder

	// MatchSpecificity ranks routes by specificity score, so
	// /users/new beats /users/:id regardless of declaration order.
	MatchSpecificity = router.MatchSpecificity
)

const (
	PhaseIdle      = router.PhaseIdle
	PhaseResolving = router.PhaseResolving
	PhaseMounted   = router.PhaseMounted
)

// New validates cfg and builds a Router. The router is inert until
// Start.
func New(cfg *Config) (*Router, error) {
	return router.New(cfg)
}

// =============================================================================
// Navigation options (re-export from pkg/router)
// =============================================================================

// NavigateOption configures a single Navigate call.
type NavigateOption = router.NavigateOption

// WithReplace replaces the current history entry instead of pushing.
var WithReplace = router.WithReplace

// WithParams appends query parameters to the navigation target.
var WithParams = router.WithParams

// =============================================================================
// Guards and hooks (re-export from pkg/router)
// =============================================================================

// Guard runs before a navigation commits and decides whether it may
// proceed.
type Guard = router.Guard

// GuardDecision is a guard's verdict: Allow, Veto or Redirect.
type GuardDecision = router.GuardDecision

// Hook runs after a navigation commits.
type Hook = router.Hook

var (
	// Allow lets the navigation proceed.
	Allow = router.Allow

	// Veto rejects the navigation; history and mount state stay
	// untouched.
	Veto = router.Veto

	// Redirect rejects the navigation and starts a new one to path.
	Redirect = router.Redirect
)

// =============================================================================
// Observability (re-export from pkg/router)
// =============================================================================

// Observer is notified around each navigation attempt. pkg/metrics and
// pkg/tracing provide Prometheus and OpenTelemetry implementations.
type Observer = router.Observer

// NewMetricsObserver builds a Prometheus navigation observer
// (pkg/metrics). Register it via Config.Observers.
var NewMetricsObserver = metrics.New

// NewTracingObserver builds an OpenTelemetry navigation observer
// (pkg/tracing) that wraps each navigation in a span.
var NewTracingObserver = tracing.New

// Outcome classifies how a navigation attempt ended.
type Outcome = router.Outcome

const (
	OutcomeMounted    = router.OutcomeMounted
	OutcomeUnmatched  = router.OutcomeUnmatched
	OutcomeSuperseded = router.OutcomeSuperseded
	OutcomeFailed     = router.OutcomeFailed
)

// FailureHandler receives navigation failures after the built-in
// fallback has been skipped or exhausted.
type FailureHandler = router.FailureHandler

// =============================================================================
// Prefetch (re-export from pkg/router)
// =============================================================================

// PrefetchConfig bounds prefetch rate and concurrency.
type PrefetchConfig = router.PrefetchConfig

// DefaultPrefetchConfig returns the prefetch limits used when Config
// leaves Prefetch nil.
var DefaultPrefetchConfig = router.DefaultPrefetchConfig

// =============================================================================
// Errors (re-export from pkg/router)
// =============================================================================

var (
	ErrNilConfig         = router.ErrNilConfig
	ErrNilMounter        = router.ErrNilMounter
	ErrNilContainer      = router.ErrNilContainer
	ErrEmptyRoutes       = router.ErrEmptyRoutes
	ErrSuperseded        = router.ErrSuperseded
	ErrDestroyed         = router.ErrDestroyed
	ErrVetoed            = router.ErrVetoed
	ErrTooManyRedirects  = router.ErrTooManyRedirects
	ErrPrefetchThrottled = router.ErrPrefetchThrottled
)

// NavigationError describes a failed navigation attempt.
type NavigationError = router.NavigationError

// PanicError wraps a panic recovered from host code.
type PanicError = router.PanicError

// =============================================================================
// History (re-export from pkg/history)
// =============================================================================

// History is the navigation history surface the router drives.
type History = history.History

// Backend is the low-level history store a Bridge adapts.
type Backend = history.Backend

// Bridge adapts a Backend into a History with listener fan-out.
type Bridge = history.Bridge

// NewBridge wraps backend in a Bridge.
var NewBridge = history.NewBridge

// NewMemoryHistory returns an in-memory history seeded with the given
// entries (or "/" when none are given). Tests and server-side rendering
// use it in place of a browser backend.
func NewMemoryHistory(initial ...string) (*Bridge, *history.MemoryBackend) {
	return history.NewMemory(initial...)
}

// =============================================================================
// Manifest (re-export from pkg/manifest)
// =============================================================================

// PageExt is the file extension the scanner treats as a page file.
const PageExt = manifest.PageExt

// Manifest is a compiled, resolvable route table.
type Manifest = manifest.Manifest

// GenerateManifest scans pagesDir for page files and builds the ranked
// manifest, the same way the zenith CLI does.
var GenerateManifest = manifest.Generate

// ReadManifest loads a manifest from its JSON form on disk.
var ReadManifest = manifest.ReadFile

// FilePathToRoutePath converts a page file path relative to the pages
// dir into its route pattern.
var FilePathToRoutePath = manifest.FilePathToRoutePath

// =============================================================================
// Active router
// =============================================================================

// ErrNoActiveRouter is returned by the package-level navigation helpers
// when no router has been registered with SetActive.
var ErrNoActiveRouter = errors.New("zenith: no active router")

var active atomic.Pointer[Router]

// SetActive registers r as the process-wide router used by the
// package-level helpers Navigate, Current, Back and Forward. Passing
// nil clears it. The previously active router, if any, is returned.
//
// An application with a single router typically calls SetActive once
// right after Start; libraries should take a *Router instead of relying
// on the active one.
func SetActive(r *Router) *Router {
	return active.Swap(r)
}

// Active returns the router registered with SetActive, or nil.
func Active() *Router {
	return active.Load()
}

// Navigate navigates the active router to target.
func Navigate(ctx context.Context, target string, opts ...NavigateOption) error {
	r := active.Load()
	if r == nil {
		return ErrNoActiveRouter
	}
	return r.Navigate(ctx, target, opts...)
}

// Current returns the active router's committed route state, or nil
// when no router is active.
func Current() *RouteState {
	r := active.Load()
	if r == nil {
		return nil
	}
	return r.Current()
}

// Back moves the active router one history entry back. It is a no-op
// when no router is active.
func Back() {
	if r := active.Load(); r != nil {
		r.Back()
	}
}

// Forward moves the active router one history entry forward. It is a
// no-op when no router is active.
func Forward() {
	if r := active.Load(); r != nil {
		r.Forward()
	}
}
