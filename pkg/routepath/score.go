package routepath

// Specificity weights. The values are fixed by the portable manifest
// format, so every generator scores a given route identically; only the
// relative ordering is contractual.
const (
	staticScore           = 10
	dynamicScore          = 5
	catchAllScore         = 1
	optionalCatchAllScore = 0

	// staticBonus rewards each literal segment so that, at equal
	// length, static-heavy routes outrank parameterized ones.
	staticBonus = 2

	// rootScore is the sentinel for the empty segment sequence. The
	// root route is always the most specific match for a zero-segment
	// pathname, so it scores above any composable sum.
	rootScore = 100
)

// Score computes the specificity score for a segment sequence.
//
// The empty sequence (root) scores a sentinel high constant. Otherwise
// the score is the sum of per-segment weights, strictly decreasing from
// static through dynamic and catch-all to optional catch-all, plus a
// bonus per static segment. Higher scores rank earlier in a
// specificity-ordered manifest.
func Score(segments []Segment) int {
	if len(segments) == 0 {
		return rootScore
	}

	score := 0
	statics := 0
	for _, s := range segments {
		switch s.Kind {
		case SegmentStatic:
			score += staticScore
			statics++
		case SegmentDynamic:
			score += dynamicScore
		case SegmentCatchAll:
			score += catchAllScore
		case SegmentOptionalCatchAll:
			score += optionalCatchAllScore
		}
	}
	return score + statics*staticBonus
}
