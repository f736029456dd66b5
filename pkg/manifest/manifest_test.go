package manifest

import (
	"errors"
	"testing"
)

func TestBuildDeclarationOrder(t *testing.T) {
	m, err := Build([]Def{
		{Path: "/users/:id"},
		{Path: "/users/new"},
	})
	if err != nil {
		t.Fatalf("Build() unexpected error = %v", err)
	}

	if got := m.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	if m.Routes[0].Path != "/users/:id" || m.Routes[1].Path != "/users/new" {
		t.Errorf("declaration order not preserved: got [%s, %s]", m.Routes[0].Path, m.Routes[1].Path)
	}
	for i, r := range m.Routes {
		if r.SourceIndex != i {
			t.Errorf("Routes[%d].SourceIndex = %d, want %d", i, r.SourceIndex, i)
		}
	}
}

func TestBuildRanked(t *testing.T) {
	m, err := Build([]Def{
		{Path: "/users/:id"},
		{Path: "/users/new"},
		{Path: "/docs/*rest"},
		{Path: "/"},
	}, WithRanking())
	if err != nil {
		t.Fatalf("Build() unexpected error = %v", err)
	}

	want := []string{"/", "/users/new", "/users/:id", "/docs/*rest"}
	for i, r := range m.Routes {
		if r.Path != want[i] {
			t.Errorf("Routes[%d].Path = %s, want %s", i, r.Path, want[i])
		}
	}

	// Ranking must not disturb SourceIndex.
	if got := m.Routes[1].SourceIndex; got != 1 {
		t.Errorf("ranked route %s SourceIndex = %d, want 1", m.Routes[1].Path, got)
	}
}

func TestBuildEmpty(t *testing.T) {
	if _, err := Build(nil); !errors.Is(err, ErrNoRoutes) {
		t.Errorf("Build(nil) error = %v, want ErrNoRoutes", err)
	}
	if _, err := Build([]Def{}); !errors.Is(err, ErrNoRoutes) {
		t.Errorf("Build([]) error = %v, want ErrNoRoutes", err)
	}
}

func TestBuildCompilesRoutes(t *testing.T) {
	m, err := Build([]Def{{Path: "/users/:id", FilePath: "pages/users/[id].zen"}})
	if err != nil {
		t.Fatalf("Build() unexpected error = %v", err)
	}

	r := m.Routes[0]
	if got := len(r.Segments); got != 2 {
		t.Errorf("len(Segments) = %d, want 2", got)
	}
	if len(r.ParamNames) != 1 || r.ParamNames[0] != "id" {
		t.Errorf("ParamNames = %v, want [id]", r.ParamNames)
	}
	if r.Score != 17 {
		t.Errorf("Score = %d, want 17", r.Score)
	}
	if r.FilePath != "pages/users/[id].zen" {
		t.Errorf("FilePath = %q, want the def's file path", r.FilePath)
	}
	if r.Pattern == "" {
		t.Error("Pattern is empty, want the portable regex rendering")
	}

	params, ok := r.Match("/users/42")
	if !ok || params["id"] != "42" {
		t.Errorf("Match(/users/42) = %v, %v, want id=42, true", params, ok)
	}
}

func TestManifestLookup(t *testing.T) {
	m, err := Build([]Def{{Path: "/"}, {Path: "/about"}})
	if err != nil {
		t.Fatalf("Build() unexpected error = %v", err)
	}

	if r := m.Lookup("/about"); r == nil || r.Path != "/about" {
		t.Errorf("Lookup(/about) = %v, want the /about route", r)
	}
	if r := m.Lookup("/missing"); r != nil {
		t.Errorf("Lookup(/missing) = %v, want nil", r)
	}
}
