package routepath

import (
	"regexp"
	"testing"
)

func TestRegexPattern(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/", want: `^\/$`},
		{path: "/about", want: `^\/about\/?$`},
		{path: "/users/:id", want: `^\/users\/([^/]+)\/?$`},
		{path: "/docs/*rest", want: `^\/docs\/(.+)\/?$`},
		{path: "/files/*path?", want: `^\/files(?:\/(.*))?\/?$`},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got := RegexPattern(ParseSegments(tc.path))
			if got != tc.want {
				t.Errorf("RegexPattern(%q) = %q, want %q", tc.path, got, tc.want)
			}
		})
	}
}

// TestRegexPatternAgreesWithMatcher cross-checks the emitted pattern
// against the structural matcher on a grid of routes and pathnames. The
// pattern exists for manifest consumers with a regex engine, so the two
// must accept the same pathnames.
func TestRegexPatternAgreesWithMatcher(t *testing.T) {
	routes := []string{"/", "/about", "/users/:id", "/users/new", "/docs/*rest"}
	pathnames := []string{"/", "/about", "/about/", "/users/42", "/users/new", "/docs/a", "/docs/a/b", "/docs", "/nope"}

	for _, route := range routes {
		segs := ParseSegments(route)
		re := regexp.MustCompile(RegexPattern(segs))
		m := Compile(segs)
		for _, pathname := range pathnames {
			_, structural := m.Match(pathname)
			compiled := re.MatchString(pathname)
			if structural != compiled {
				t.Errorf("route %q pathname %q: matcher says %v, regex says %v", route, pathname, structural, compiled)
			}
		}
	}
}
