// Package routepath parses, compiles, and scores route path patterns.
//
// A route path is a "/"-delimited pattern made of four segment kinds:
//
//	/about            static literals
//	/users/:id        :name  dynamic, captures one token
//	/docs/*rest       *name  catch-all, captures one or more tokens
//	/files/*path?     *name? optional catch-all, captures zero or more
//
// # Parsing and matching
//
// ParseSegments tokenizes a pattern; Compile turns the segments into a
// Matcher that tests concrete pathnames and extracts parameters:
//
//	segs := routepath.ParseSegments("/users/:id")
//	m := routepath.Compile(segs)
//	params, ok := m.Match("/users/42")
//	// ok == true, params["id"] == "42"
//
// Parsing never fails. Routes that can never match safely (duplicate or
// malformed parameter names, a catch-all before the final segment)
// compile to a matcher that rejects every input instead of erroring.
//
// # Specificity
//
// Score ranks overlapping patterns so static-heavy routes win over
// parameterized ones and catch-alls lose to both. The root pattern "/"
// scores a sentinel maximum. Manifest ordering is built on these scores
// by the manifest package.
//
// # Canonicalization
//
// CanonicalizePath and CanonicalizeAndValidateNavPath normalize and
// harden pathnames before resolution: collapsing slashes, resolving dot
// segments, and rejecting backslashes, NUL bytes, malformed escapes,
// and paths that escape the root.
package routepath
