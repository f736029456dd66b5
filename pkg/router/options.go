package router

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/zenith-dev/zenith/pkg/history"
	"github.com/zenith-dev/zenith/pkg/manifest"
)

// FailureHandler is invoked once per failed navigation. See
// Config.OnFailure.
type FailureHandler func(err *NavigationError)

// Config configures a Router. Routes, Mounter and Container are
// required; everything else has a usable zero value.
type Config struct {
	// Routes declares the routable pages. Order matters in
	// MatchDeclarationOrder mode and breaks specificity ties in
	// MatchSpecificity mode.
	Routes []Def

	// Mode selects the manifest ordering policy. Ignored when Manifest
	// is set.
	Mode MatchMode

	// Manifest supplies a pre-built route table, e.g. one loaded from
	// the generated manifest JSON. When set, the table is consumed
	// as-is and Routes supplies the page behind each entry: Routes[i]
	// pairs with the manifest route whose source index is i.
	Manifest *manifest.Manifest

	// History is the location store the router reads from and writes
	// to. When nil, an in-memory history starting at "/" is used.
	History history.History

	// Mounter attaches loaded artifacts to Container.
	Mounter Mounter

	// Container is the host mount target, passed through to Mounter.
	Container any

	// Guards run in order before each navigation and may veto or
	// redirect it.
	Guards []Guard

	// Hooks run in order after each committed navigation.
	Hooks []Hook

	// Observers are notified around each navigation attempt, after
	// guards have settled. Used for metrics and tracing.
	Observers []Observer

	// Logger receives router diagnostics. Defaults to
	// slog.Default().With("component", "router").
	Logger *slog.Logger

	// OnFailure replaces the default failure behavior. The default
	// asks the history backend for a full-page reload of the requested
	// path, which recovers by leaving the SPA entirely. Failed
	// navigations are never retried.
	OnFailure FailureHandler

	// Prefetch tunes the prefetch budgets. Nil means defaults.
	Prefetch *PrefetchConfig

	// DisableCanonicalization resolves navigation targets exactly as
	// given: no slash collapsing, no dot-segment handling, and no
	// rejection of absolute URLs. The host owns target hygiene when
	// this is set.
	DisableCanonicalization bool

	// MaxRedirects caps chained guard redirects. Zero means 10.
	MaxRedirects int
}

const defaultMaxRedirects = 10

// navOptions collects per-navigation settings.
type navOptions struct {
	replace bool
	params  map[string]any
}

// NavigateOption is a functional option for Navigate.
type NavigateOption func(*navOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *navOptions) {
		o.replace = true
	}
}

// WithParams adds query parameters to the navigation target. Values
// are formatted with fmt.Sprint and merged into any query string the
// target already carries.
func WithParams(params map[string]any) NavigateOption {
	return func(o *navOptions) {
		o.params = params
	}
}

// buildTarget merges query params into a navigation target.
func buildTarget(path string, params map[string]any) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, fmt.Sprint(v))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
