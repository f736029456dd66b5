package routepath

import "testing"

func TestScoreRoot(t *testing.T) {
	if got := Score(nil); got != rootScore {
		t.Errorf("Score(root) = %d, want %d", got, rootScore)
	}
	if got := Score(ParseSegments("/")); got != rootScore {
		t.Errorf("Score(ParseSegments(%q)) = %d, want %d", "/", got, rootScore)
	}
}

// TestScoreOrdering checks the contractual ordering property: at equal
// segment count, static beats dynamic beats catch-all beats optional
// catch-all.
func TestScoreOrdering(t *testing.T) {
	tests := []struct {
		higher string
		lower  string
	}{
		{higher: "/users/new", lower: "/users/:id"},
		{higher: "/users/:id", lower: "/users/*rest"},
		{higher: "/users/*rest", lower: "/users/*rest?"},
		{higher: "/a/b/c", lower: "/a/:x/c"},
		{higher: "/a/:x/c", lower: "/a/:x/:y"},
		{higher: "/blog/posts/:slug", lower: "/blog/:section/:slug"},
	}

	for _, tc := range tests {
		t.Run(tc.higher+" beats "+tc.lower, func(t *testing.T) {
			hi := Score(ParseSegments(tc.higher))
			lo := Score(ParseSegments(tc.lower))
			if hi <= lo {
				t.Errorf("Score(%q) = %d, Score(%q) = %d, want strictly greater", tc.higher, hi, tc.lower, lo)
			}
		})
	}
}

func TestScoreValues(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{path: "/about", want: 12},
		{path: "/users/new", want: 24},
		{path: "/users/:id", want: 17},
		{path: "/users/*rest", want: 13},
		{path: "/users/*rest?", want: 12},
		{path: "/:a/:b", want: 10},
		{path: "/*all", want: 1},
		{path: "/*all?", want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			if got := Score(ParseSegments(tc.path)); got != tc.want {
				t.Errorf("Score(%q) = %d, want %d", tc.path, got, tc.want)
			}
		})
	}
}
