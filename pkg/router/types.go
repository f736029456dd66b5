package router

import (
	"context"

	"github.com/zenith-dev/zenith/pkg/manifest"
)

// Params holds route parameters or query parameters. All values are
// strings exactly as they appeared in the path; no type coercion is
// applied.
type Params map[string]string

// Get returns the value for key, or "" if absent.
func (p Params) Get(key string) string {
	return p[key]
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// LoadFunc produces the page artifact for a route. It is called at most
// once per route in the happy path; the result is cached on the route's
// PageRef. Implementations typically fetch a code-split bundle or build
// a component tree.
type LoadFunc func(ctx context.Context, params Params) (any, error)

// Def declares a single route: a path pattern plus the page behind it.
// Exactly one of Load or Page should be set. A Def with Page set is
// born loaded and never invokes a loader.
type Def struct {
	// Path is the route pattern, e.g. "/users/:id" or "/docs/*rest".
	Path string

	// Load produces the page artifact on first navigation or prefetch.
	Load LoadFunc

	// Page is a pre-built artifact for routes that need no loading.
	Page any
}

// Teardown undoes a mount. A nil Teardown is valid and means the page
// has nothing to clean up.
type Teardown func()

// Mounter attaches a loaded page artifact to the host container.
// Implementations are host-specific: a DOM renderer, a terminal UI, or
// a test recorder.
type Mounter interface {
	// Mount attaches artifact to container and returns the teardown to
	// run when the page is replaced.
	Mount(container, artifact any) (Teardown, error)
}

// MounterFunc adapts a function to the Mounter interface.
type MounterFunc func(container, artifact any) (Teardown, error)

func (f MounterFunc) Mount(container, artifact any) (Teardown, error) {
	return f(container, artifact)
}

// RouteState is the result of resolving a pathname against the
// manifest. It is immutable once published; treat it as read-only.
type RouteState struct {
	// Path is the resolved pathname without the query string.
	Path string

	// Params holds the extracted route parameters. Empty but non-nil
	// when the route has no parameters or nothing matched.
	Params Params

	// Query holds the parsed query parameters.
	Query Params

	// Route is the matched manifest entry, or nil when no route
	// matched.
	Route *manifest.CompiledRoute
}

// Matched reports whether a route matched.
func (s *RouteState) Matched() bool {
	return s != nil && s.Route != nil
}

// Change describes one completed transition between route states.
type Change struct {
	New  *RouteState
	Prev *RouteState
}

// MatchMode selects how the manifest is ordered for first-match-wins
// resolution.
type MatchMode int

const (
	// MatchDeclarationOrder resolves against routes in the order they
	// were declared. Hand-written route tables expect this.
	MatchDeclarationOrder MatchMode = iota

	// MatchSpecificity ranks routes by specificity score before
	// resolution, so /users/new beats /users/:id regardless of
	// declaration order. Generated manifests use this.
	MatchSpecificity
)

// Phase is the navigation machine's coarse state, exposed for
// observability and tests.
type Phase int

const (
	// PhaseIdle means no navigation is in flight and the last one did
	// not commit a mount.
	PhaseIdle Phase = iota

	// PhaseResolving means the latest navigation is between token
	// allocation and commit.
	PhaseResolving

	// PhaseMounted means the latest navigation committed a mount.
	PhaseMounted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseResolving:
		return "resolving"
	case PhaseMounted:
		return "mounted"
	default:
		return "unknown"
	}
}
