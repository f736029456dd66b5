package router

import (
	"strings"

	"github.com/zenith-dev/zenith/pkg/manifest"
)

// Match is the result of a successful resolution: the winning route and
// its extracted parameters.
type Match struct {
	Route  *manifest.CompiledRoute
	Params Params
}

// Resolve finds the first route in m that matches pathname. Routes are
// tried in manifest order, so the manifest's ordering policy (declared
// or ranked) decides which route wins when several match.
//
// An empty pathname is treated as "/". A miss is an ordinary result,
// not an error: the second return is false and the caller decides what
// an unmatched location means.
func Resolve(m *manifest.Manifest, pathname string) (Match, bool) {
	if pathname == "" {
		pathname = "/"
	}
	for _, route := range m.Routes {
		if params, ok := route.Match(pathname); ok {
			return Match{Route: route, Params: params}, true
		}
	}
	return Match{}, false
}

// ParseQuery parses a raw query string ("a=1&b=2", no leading "?") into
// a Params map. Pairs are split on "&", then on the first "=". Pairs
// with an empty key are skipped. A key without "=" maps to "". When a
// key repeats, the last value wins. Values are kept as raw text; no
// percent-decoding is applied.
func ParseQuery(raw string) Params {
	query := Params{}
	if raw == "" {
		return query
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		query[key] = value
	}
	return query
}
