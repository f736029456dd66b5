package zenith

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// Facade wiring
// =============================================================================

type recordingMounter struct {
	mounts    []string
	teardowns int
}

func (m *recordingMounter) Mount(container, artifact any) (Teardown, error) {
	m.mounts = append(m.mounts, artifact.(string))
	return func() { m.teardowns++ }, nil
}

func newTestRouter(t *testing.T, defs ...Def) (*Router, *recordingMounter) {
	t.Helper()
	hist, _ := NewMemoryHistory()
	mounter := &recordingMounter{}
	rt, err := New(&Config{
		Routes:    defs,
		Mode:      MatchSpecificity,
		History:   hist,
		Mounter:   mounter,
		Container: "root",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(rt.Destroy)
	if err := rt.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return rt, mounter
}

func TestFacadeBuildsAndNavigates(t *testing.T) {
	rt, mounter := newTestRouter(t,
		Def{Path: "/", Page: "home"},
		Def{Path: "/users/:id", Page: "user"},
	)

	if err := rt.Navigate(context.Background(), "/users/7"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	state := rt.Current()
	if state.Path != "/users/7" {
		t.Errorf("Current().Path = %q, want %q", state.Path, "/users/7")
	}
	if got := state.Params.Get("id"); got != "7" {
		t.Errorf("param id = %q, want %q", got, "7")
	}
	if len(mounter.mounts) == 0 || mounter.mounts[len(mounter.mounts)-1] != "user" {
		t.Errorf("mounts = %v, want last mount %q", mounter.mounts, "user")
	}
}

func TestConfigErrorsAreFacadeSentinels(t *testing.T) {
	_, err := New(&Config{Routes: []Def{{Path: "/", Page: "home"}}, Container: "root"})
	if !errors.Is(err, ErrNilMounter) {
		t.Errorf("New without mounter = %v, want ErrNilMounter", err)
	}

	_, err = New(nil)
	if !errors.Is(err, ErrNilConfig) {
		t.Errorf("New(nil) = %v, want ErrNilConfig", err)
	}
}

func TestGuardDecisionsThroughFacade(t *testing.T) {
	blocked := true
	hist, _ := NewMemoryHistory()
	rt, err := New(&Config{
		Routes: []Def{
			{Path: "/", Page: "home"},
			{Path: "/admin", Page: "admin"},
			{Path: "/login", Page: "login"},
		},
		History:   hist,
		Mounter:   &recordingMounter{},
		Container: "root",
		Guards: []Guard{
			func(ctx context.Context, from, to *RouteState) GuardDecision {
				if blocked && to.Path == "/admin" {
					return Redirect("/login")
				}
				return Allow()
			},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(rt.Destroy)
	if err := rt.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := rt.Navigate(context.Background(), "/admin"); err != nil {
		t.Fatalf("Navigate(/admin): %v", err)
	}
	if got := rt.Current().Path; got != "/login" {
		t.Errorf("after redirect, path = %q, want %q", got, "/login")
	}

	blocked = false
	if err := rt.Navigate(context.Background(), "/admin"); err != nil {
		t.Fatalf("Navigate(/admin) unblocked: %v", err)
	}
	if got := rt.Current().Path; got != "/admin" {
		t.Errorf("path = %q, want %q", got, "/admin")
	}
}

// =============================================================================
// Active router handle
// =============================================================================

func TestActiveRouterHelpers(t *testing.T) {
	rt, _ := newTestRouter(t,
		Def{Path: "/", Page: "home"},
		Def{Path: "/about", Page: "about"},
	)

	prev := SetActive(rt)
	if prev != nil {
		t.Errorf("SetActive returned %v, want nil previous", prev)
	}
	t.Cleanup(func() { SetActive(nil) })

	if Active() != rt {
		t.Fatal("Active() did not return the registered router")
	}

	if err := Navigate(context.Background(), "/about"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if got := Current().Path; got != "/about" {
		t.Errorf("Current().Path = %q, want %q", got, "/about")
	}

	Back()
	if got := rt.Current().Path; got != "/" {
		t.Errorf("after Back, path = %q, want %q", got, "/")
	}
	Forward()
	if got := rt.Current().Path; got != "/about" {
		t.Errorf("after Forward, path = %q, want %q", got, "/about")
	}
}

func TestSetActiveReturnsPrevious(t *testing.T) {
	first, _ := newTestRouter(t, Def{Path: "/", Page: "home"})
	second, _ := newTestRouter(t, Def{Path: "/", Page: "home"})
	t.Cleanup(func() { SetActive(nil) })

	SetActive(first)
	if prev := SetActive(second); prev != first {
		t.Errorf("SetActive returned %v, want the first router", prev)
	}
	if Active() != second {
		t.Error("Active() did not switch to the second router")
	}
	if prev := SetActive(nil); prev != second {
		t.Errorf("SetActive(nil) returned %v, want the second router", prev)
	}
	if Active() != nil {
		t.Error("Active() = non-nil after clearing")
	}
}

func TestHelpersWithoutActiveRouter(t *testing.T) {
	SetActive(nil)

	if err := Navigate(context.Background(), "/anywhere"); !errors.Is(err, ErrNoActiveRouter) {
		t.Errorf("Navigate = %v, want ErrNoActiveRouter", err)
	}
	if Current() != nil {
		t.Error("Current() = non-nil without an active router")
	}

	// Must not panic.
	Back()
	Forward()
}

// =============================================================================
// Manifest re-exports
// =============================================================================

func TestGenerateManifestFromPages(t *testing.T) {
	dir := t.TempDir()
	pages := map[string]string{
		"index" + PageExt:      "<main>home</main>",
		"about" + PageExt:      "<main>about</main>",
		"users/[id]" + PageExt: "<main>user</main>",
	}
	for name, content := range pages {
		full := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	m, err := GenerateManifest(dir)
	if err != nil {
		t.Fatalf("GenerateManifest: %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
	if m.Lookup("/users/:id") == nil {
		t.Error("Lookup(/users/:id) = nil, want the scanned route")
	}

	if got := FilePathToRoutePath("users/[id]" + PageExt); got != "/users/:id" {
		t.Errorf("FilePathToRoutePath = %q, want %q", got, "/users/:id")
	}
}
