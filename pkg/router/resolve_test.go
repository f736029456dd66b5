package router

import (
	"reflect"
	"testing"

	"github.com/zenith-dev/zenith/pkg/manifest"
)

func buildManifest(t *testing.T, ranked bool, paths ...string) *manifest.Manifest {
	t.Helper()
	defs := make([]manifest.Def, len(paths))
	for i, p := range paths {
		defs[i] = manifest.Def{Path: p}
	}
	var opts []manifest.BuildOption
	if ranked {
		opts = append(opts, manifest.WithRanking())
	}
	m, err := manifest.Build(defs, opts...)
	if err != nil {
		t.Fatalf("Build(%v) failed: %v", paths, err)
	}
	return m
}

func TestResolveDeclarationOrderWins(t *testing.T) {
	// In declaration order the earlier dynamic route shadows the later
	// static one.
	m := buildManifest(t, false, "/users/:id", "/users/new")

	match, ok := Resolve(m, "/users/new")
	if !ok {
		t.Fatal("Resolve(/users/new) found no match")
	}
	if match.Route.Path != "/users/:id" {
		t.Errorf("matched %q, want /users/:id", match.Route.Path)
	}
	if got := match.Params["id"]; got != "new" {
		t.Errorf("params[id] = %q, want %q", got, "new")
	}
}

func TestResolveRankedOrderWins(t *testing.T) {
	m := buildManifest(t, true, "/users/:id", "/users/new")

	match, ok := Resolve(m, "/users/new")
	if !ok {
		t.Fatal("Resolve(/users/new) found no match")
	}
	if match.Route.Path != "/users/new" {
		t.Errorf("matched %q, want /users/new", match.Route.Path)
	}
	if len(match.Params) != 0 {
		t.Errorf("params = %v, want empty", match.Params)
	}
}

func TestResolveEmptyPathnameIsRoot(t *testing.T) {
	m := buildManifest(t, false, "/", "/about")

	match, ok := Resolve(m, "")
	if !ok {
		t.Fatal("Resolve(\"\") found no match")
	}
	if match.Route.Path != "/" {
		t.Errorf("matched %q, want /", match.Route.Path)
	}
}

func TestResolveNoMatch(t *testing.T) {
	m := buildManifest(t, false, "/about")

	if _, ok := Resolve(m, "/missing"); ok {
		t.Error("Resolve(/missing) matched, want no match")
	}
}

func TestResolveParamsAreStrings(t *testing.T) {
	m := buildManifest(t, false, "/orders/:num")

	match, ok := Resolve(m, "/orders/00421")
	if !ok {
		t.Fatal("no match")
	}
	if got := match.Params["num"]; got != "00421" {
		t.Errorf("params[num] = %q, want literal %q", got, "00421")
	}
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		raw  string
		want Params
	}{
		{"", Params{}},
		{"a=1", Params{"a": "1"}},
		{"a=1&b=2", Params{"a": "1", "b": "2"}},
		{"flag", Params{"flag": ""}},
		{"a=", Params{"a": ""}},
		{"=broken", Params{}},
		{"&&a=1&&", Params{"a": "1"}},
		{"a=1&a=2", Params{"a": "2"}},
		{"a=b=c", Params{"a": "b=c"}},
		{"q=%20raw", Params{"q": "%20raw"}},
	}
	for _, tt := range tests {
		if got := ParseQuery(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseQuery(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
