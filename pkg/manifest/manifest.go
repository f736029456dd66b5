package manifest

import (
	"errors"
	"time"

	"github.com/zenith-dev/zenith/pkg/routepath"
)

// ErrNoRoutes is returned when a manifest would contain no routes at
// all. An empty manifest can never resolve anything, so it is rejected
// at build time rather than discovered at the first navigation.
var ErrNoRoutes = errors.New("manifest: no routes")

// Def declares one route before compilation. Defs are consumed in
// declaration order; that order is the tie-break for every later
// ranking decision.
type Def struct {
	// Path is the route path pattern ("/users/:id").
	Path string

	// FilePath is the page file the route came from, when the def was
	// produced by the scanner. Empty for hand-declared routes.
	FilePath string
}

// CompiledRoute is one route of a manifest: the original pattern, its
// parsed segments, the compiled matcher, and the specificity score.
// Compiled routes are built once and read-only thereafter.
type CompiledRoute struct {
	// Path is the original route path pattern.
	Path string

	// Segments is the parsed segment sequence.
	Segments []routepath.Segment

	// ParamNames lists the parameter names in declaration order.
	// Duplicates are preserved; a route with duplicate names compiles
	// to a matcher that never matches.
	ParamNames []string

	// Matcher tests pathnames and extracts parameters.
	Matcher *routepath.Matcher

	// Score is the specificity score used by ranked manifests.
	Score int

	// SourceIndex is the route's original declaration position. It
	// survives ranking and breaks score ties.
	SourceIndex int

	// FilePath is the originating page file, if any.
	FilePath string

	// Pattern is the portable regex rendering of the route, emitted
	// into generated manifest files for consumers that match with a
	// regex engine. Matching here never uses it.
	Pattern string
}

// Match tests pathname against the route and returns the captured
// parameters. All parameter values are strings.
func (r *CompiledRoute) Match(pathname string) (map[string]string, bool) {
	return r.Matcher.Match(pathname)
}

// Manifest is an ordered, read-only collection of compiled routes. The
// order is the matching policy: declaration order as built, or
// specificity order when built with WithRanking (score descending,
// declaration order for exact ties).
type Manifest struct {
	// Routes in resolution order.
	Routes []*CompiledRoute

	// GeneratedAt records when the manifest was built.
	GeneratedAt time.Time
}

// Len returns the number of routes.
func (m *Manifest) Len() int {
	return len(m.Routes)
}

// Lookup returns the route declared with the given path pattern, or nil.
func (m *Manifest) Lookup(path string) *CompiledRoute {
	for _, r := range m.Routes {
		if r.Path == path {
			return r
		}
	}
	return nil
}

// buildConfig holds Build options.
type buildConfig struct {
	ranked bool
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

// WithRanking orders the manifest by specificity instead of declaration
// order. Declaration order remains the tie-break for equal scores.
func WithRanking() BuildOption {
	return func(c *buildConfig) {
		c.ranked = true
	}
}

// Build compiles route defs into a manifest.
//
// The defs are compiled in order; with WithRanking the result is
// stably re-ordered by descending specificity. Build never rejects
// individual routes: a def with duplicate or malformed parameter names
// compiles to a permanently non-matching route (see Unmatchable for
// surfacing those). An empty def list returns ErrNoRoutes.
func Build(defs []Def, opts ...BuildOption) (*Manifest, error) {
	if len(defs) == 0 {
		return nil, ErrNoRoutes
	}

	var cfg buildConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	routes := make([]*CompiledRoute, 0, len(defs))
	for i, d := range defs {
		routes = append(routes, compileDef(d, i))
	}

	if cfg.ranked {
		Rank(routes)
	}

	return &Manifest{
		Routes:      routes,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// compileDef compiles a single def at its declaration position.
func compileDef(d Def, index int) *CompiledRoute {
	segs := routepath.ParseSegments(d.Path)
	return &CompiledRoute{
		Path:        d.Path,
		Segments:    segs,
		ParamNames:  routepath.ParamNames(segs),
		Matcher:     routepath.Compile(segs),
		Score:       routepath.Score(segs),
		SourceIndex: index,
		FilePath:    d.FilePath,
		Pattern:     routepath.RegexPattern(segs),
	}
}
