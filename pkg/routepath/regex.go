package routepath

import (
	"regexp"
	"strings"
)

// RegexPattern renders the anchored regex string for a segment sequence
// in the portable manifest format. The pattern is emitted for manifest
// consumers that match with a regex engine; matching in this package
// always goes through Matcher, never through the pattern.
//
// Root produces `^\/$`. Every other route produces one group per
// segment, anchored and tolerating a single trailing slash:
//
//	static   \/literal        (literal regex-escaped)
//	:name    \/([^/]+)
//	*name    \/(.+)
//	*name?   (?:\/(.*))?
func RegexPattern(segments []Segment) string {
	if len(segments) == 0 {
		return `^\/$`
	}

	var b strings.Builder
	b.WriteString("^")
	for _, s := range segments {
		switch s.Kind {
		case SegmentDynamic:
			b.WriteString(`\/([^/]+)`)
		case SegmentCatchAll:
			b.WriteString(`\/(.+)`)
		case SegmentOptionalCatchAll:
			b.WriteString(`(?:\/(.*))?`)
		default:
			b.WriteString(`\/`)
			b.WriteString(regexp.QuoteMeta(s.Raw))
		}
	}
	b.WriteString(`\/?$`)
	return b.String()
}
