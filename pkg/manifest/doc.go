// Package manifest builds, ranks, and serializes route manifests.
//
// A manifest is an ordered collection of compiled routes. The order is
// the matching policy: Build keeps declaration order (first-match-wins
// as written), while Build with WithRanking orders by specificity score
// descending, stably, with declaration order breaking exact ties.
// Either way the resolver walks the manifest top to bottom and stops at
// the first match.
//
//	m, err := manifest.Build([]manifest.Def{
//	    {Path: "/users/new"},
//	    {Path: "/users/:id"},
//	}, manifest.WithRanking())
//
// # Page discovery
//
// Scanner walks a pages directory for .zen files and maps file paths to
// route paths:
//
//	pages/
//	├── index.zen            → /
//	├── about.zen            → /about
//	└── users/
//	    ├── index.zen        → /users
//	    ├── new.zen          → /users/new
//	    └── [id].zen         → /users/:id
//
// Generate combines scanning, duplicate validation, and ranked building
// into a single call for hosts that want the default pipeline.
//
// # Portable format
//
// Encode/Decode read and write the portable JSON manifest consumed by
// non-Go runtimes: one record per route with the path, a regex
// rendering, parameter names, and the score, plus a generation
// timestamp. Matching in Go always goes through the compiled matcher;
// the regex field is for the other side of the wire.
package manifest
