package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFilePathToRoutePath(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{file: "index.zen", want: "/"},
		{file: "about.zen", want: "/about"},
		{file: "users/index.zen", want: "/users"},
		{file: "users/new.zen", want: "/users/new"},
		{file: "users/[id].zen", want: "/users/:id"},
		{file: "users/[id]/posts/[post].zen", want: "/users/:id/posts/:post"},
		{file: "docs/[...rest].zen", want: "/docs/*rest"},
		{file: "files/[[...path]].zen", want: "/files/*path?"},
		{file: "blog/[slug]/index.zen", want: "/blog/:slug"},
	}

	for _, tc := range tests {
		t.Run(tc.file, func(t *testing.T) {
			if got := FilePathToRoutePath(tc.file); got != tc.want {
				t.Errorf("FilePathToRoutePath(%q) = %q, want %q", tc.file, got, tc.want)
			}
		})
	}
}

// writePage creates an empty page file, making parent directories as
// needed.
func writePage(t *testing.T, dir, rel string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte("<page/>\n"), 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestScannerScan(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "index.zen")
	writePage(t, dir, "about.zen")
	writePage(t, dir, "users/[id].zen")
	writePage(t, dir, "users/new.zen")

	// Must all be ignored.
	writePage(t, dir, "_drafts/wip.zen")
	writePage(t, dir, "users/_helper.zen")
	writePage(t, dir, "notes.txt")
	writePage(t, dir, ".hidden.zen")

	defs, err := NewScanner(dir).Scan()
	if err != nil {
		t.Fatalf("Scan() unexpected error = %v", err)
	}

	got := make(map[string]string, len(defs))
	for _, d := range defs {
		got[d.Path] = d.FilePath
	}

	want := map[string]string{
		"/":          "index.zen",
		"/about":     "about.zen",
		"/users/:id": "users/[id].zen",
		"/users/new": "users/new.zen",
	}
	if len(got) != len(want) {
		t.Fatalf("Scan() found %d routes %v, want %d", len(got), got, len(want))
	}
	for path, file := range want {
		if got[path] != file {
			t.Errorf("route %s came from %q, want %q", path, got[path], file)
		}
	}
}

func TestScannerMissingDir(t *testing.T) {
	if _, err := NewScanner(filepath.Join(t.TempDir(), "nope")).Scan(); err == nil {
		t.Error("Scan() on a missing directory returned nil error")
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "index.zen")
	writePage(t, dir, "users/[id].zen")
	writePage(t, dir, "users/new.zen")

	m, err := Generate(dir)
	if err != nil {
		t.Fatalf("Generate() unexpected error = %v", err)
	}

	// Ranked: root first, then the static, then the dynamic.
	want := []string{"/", "/users/new", "/users/:id"}
	for i, r := range m.Routes {
		if r.Path != want[i] {
			t.Errorf("Routes[%d].Path = %s, want %s", i, r.Path, want[i])
		}
	}
	if m.GeneratedAt.IsZero() {
		t.Error("GeneratedAt is zero, want a build timestamp")
	}
}

func TestGenerateEmptyDir(t *testing.T) {
	if _, err := Generate(t.TempDir()); !errors.Is(err, ErrNoRoutes) {
		t.Errorf("Generate(empty dir) error = %v, want ErrNoRoutes", err)
	}
}
