package routepath

import "strings"

// Matcher tests candidate pathnames against one route's segment
// sequence and extracts parameter values. It is compiled once from the
// parsed segments and is safe for concurrent use; all state is set at
// compile time.
type Matcher struct {
	segments   []Segment
	paramNames []string

	// valid is false when the route can never match: duplicate or
	// malformed parameter names, or a catch-all in non-final position.
	// An invalid matcher reports no match for every input.
	valid bool
}

// Compile builds a matcher from a parsed segment sequence.
//
// Compilation itself never fails. Routes with duplicate parameter
// names, malformed parameter names, or a catch-all segment anywhere but
// the final position produce a matcher that reports no match for every
// input. Failing closed here keeps an ambiguous capture from silently
// binding the wrong value.
func Compile(segments []Segment) *Matcher {
	m := &Matcher{
		segments:   segments,
		paramNames: ParamNames(segments),
		valid:      true,
	}

	seen := make(map[string]bool, len(m.paramNames))
	for _, name := range m.paramNames {
		if !validParamName(name) || seen[name] {
			m.valid = false
			break
		}
		seen[name] = true
	}

	// A catch-all consumes the trailing tokens, so it is only
	// meaningful as the final segment.
	for i, s := range segments {
		if (s.Kind == SegmentCatchAll || s.Kind == SegmentOptionalCatchAll) && i != len(segments)-1 {
			m.valid = false
		}
	}

	return m
}

// ParamNames returns the ordered parameter names the matcher captures.
// The returned slice is shared; callers must not modify it.
func (m *Matcher) ParamNames() []string {
	return m.paramNames
}

// Valid reports whether the matcher can match anything at all. Routes
// with duplicate or malformed parameter names are permanently
// non-matching and report false here.
func (m *Matcher) Valid() bool {
	return m.valid
}

// Match tests pathname against the compiled route.
//
// The pathname is split into non-empty slash-delimited tokens and
// walked against the segment sequence: static segments compare
// literally, dynamic segments capture exactly one token, a trailing
// catch-all captures one or more remaining tokens joined by "/", and a
// trailing optional catch-all captures zero or more (when it captures
// zero, its parameter is absent from the result). Token and segment
// counts must otherwise agree exactly.
//
// On success the returned map holds every captured parameter as a
// string; it is non-nil even when empty. On failure the map is nil.
func (m *Matcher) Match(pathname string) (map[string]string, bool) {
	if !m.valid {
		return nil, false
	}

	tokens := SplitPathname(pathname)

	// Root matches only the empty token list.
	if len(m.segments) == 0 {
		if len(tokens) == 0 {
			return map[string]string{}, true
		}
		return nil, false
	}

	params := make(map[string]string, len(m.paramNames))
	ti := 0
	for _, seg := range m.segments {
		switch seg.Kind {
		case SegmentStatic:
			if ti >= len(tokens) || tokens[ti] != seg.Raw {
				return nil, false
			}
			ti++
		case SegmentDynamic:
			if ti >= len(tokens) {
				return nil, false
			}
			params[seg.Name] = tokens[ti]
			ti++
		case SegmentCatchAll:
			if ti >= len(tokens) {
				return nil, false
			}
			params[seg.Name] = strings.Join(tokens[ti:], "/")
			return params, true
		case SegmentOptionalCatchAll:
			if ti < len(tokens) {
				params[seg.Name] = strings.Join(tokens[ti:], "/")
			}
			return params, true
		}
	}

	if ti != len(tokens) {
		return nil, false
	}
	return params, true
}
