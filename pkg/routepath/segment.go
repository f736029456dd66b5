package routepath

import "strings"

// SegmentKind classifies one slash-delimited token of a route path.
type SegmentKind int

const (
	// SegmentStatic matches its literal text exactly.
	SegmentStatic SegmentKind = iota

	// SegmentDynamic (":name") matches any single token and captures it.
	SegmentDynamic

	// SegmentCatchAll ("*name") matches one or more trailing tokens.
	SegmentCatchAll

	// SegmentOptionalCatchAll ("*name?") matches zero or more trailing tokens.
	SegmentOptionalCatchAll
)

// String returns the kind name for diagnostics.
func (k SegmentKind) String() string {
	switch k {
	case SegmentStatic:
		return "static"
	case SegmentDynamic:
		return "dynamic"
	case SegmentCatchAll:
		return "catch-all"
	case SegmentOptionalCatchAll:
		return "optional-catch-all"
	default:
		return "unknown"
	}
}

// Segment is one token of a route path. A static segment carries its
// literal text in Raw; parameter segments carry the parameter name in
// Name. Segments are immutable once parsed.
type Segment struct {
	// Raw is the token exactly as written in the route path.
	Raw string

	// Name is the parameter name for dynamic and catch-all segments,
	// empty for static segments.
	Name string

	// Kind classifies the segment.
	Kind SegmentKind
}

// ParseSegments tokenizes a route path into typed segments.
//
// "/" parses to an empty slice (the root route). Every non-empty
// slash-delimited token maps to exactly one segment:
//
//	:name   → dynamic
//	*name   → catch-all
//	*name?  → optional catch-all
//	other   → static literal
//
// There is no escaping and no nested syntax; parsing never fails.
// Malformed parameter names pass through the parser untouched and are
// rejected by the compiled matcher instead, so a bad route definition
// fails closed rather than matching the wrong thing.
func ParseSegments(routePath string) []Segment {
	tokens := SplitPathname(routePath)
	if len(tokens) == 0 {
		return nil
	}

	segments := make([]Segment, 0, len(tokens))
	for _, tok := range tokens {
		segments = append(segments, parseSegment(tok))
	}
	return segments
}

// parseSegment classifies a single non-empty token.
func parseSegment(tok string) Segment {
	switch {
	case strings.HasPrefix(tok, ":"):
		return Segment{Raw: tok, Name: tok[1:], Kind: SegmentDynamic}
	case strings.HasPrefix(tok, "*"):
		if strings.HasSuffix(tok, "?") {
			return Segment{Raw: tok, Name: tok[1 : len(tok)-1], Kind: SegmentOptionalCatchAll}
		}
		return Segment{Raw: tok, Name: tok[1:], Kind: SegmentCatchAll}
	default:
		return Segment{Raw: tok, Kind: SegmentStatic}
	}
}

// SplitPathname splits a pathname or route path into its non-empty
// slash-delimited tokens. "/" and "" both yield nil. Repeated slashes
// produce no empty tokens, so "/a//b/" splits the same as "/a/b".
func SplitPathname(path string) []string {
	if path == "" || path == "/" {
		return nil
	}

	parts := strings.Split(path, "/")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// ParamNames returns the ordered parameter names declared by segments.
// Static segments contribute nothing. Duplicates are preserved here;
// the matcher is where duplicates turn the route non-matching.
func ParamNames(segments []Segment) []string {
	var names []string
	for _, s := range segments {
		if s.Kind != SegmentStatic {
			names = append(names, s.Name)
		}
	}
	return names
}

// validParamName reports whether name is a well-formed parameter
// identifier: a letter or underscore followed by letters, digits, or
// underscores.
func validParamName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
