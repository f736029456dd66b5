package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// PageExt is the extension of page files the scanner picks up.
const PageExt = ".zen"

// Scanner discovers page files under a pages directory and maps them to
// route defs.
type Scanner struct {
	pagesDir string
}

// NewScanner creates a scanner rooted at pagesDir.
func NewScanner(pagesDir string) *Scanner {
	return &Scanner{pagesDir: pagesDir}
}

// Scan walks the pages directory and returns one def per page file, in
// deterministic (lexical walk) order.
//
// Files and directories whose names start with "." or "_" are skipped,
// so editor droppings and private helpers never become routes.
func (s *Scanner) Scan() ([]Def, error) {
	info, err := os.Stat(s.pagesDir)
	if err != nil {
		return nil, fmt.Errorf("manifest: pages directory %q: %w", s.pagesDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("manifest: pages path %q is not a directory", s.pagesDir)
	}

	var defs []Def
	err = filepath.WalkDir(s.pagesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path != s.pagesDir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(name, PageExt) {
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return nil
		}

		rel, err := filepath.Rel(s.pagesDir, path)
		if err != nil {
			return fmt.Errorf("manifest: relativizing %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		defs = append(defs, Def{
			Path:     FilePathToRoutePath(rel),
			FilePath: rel,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return defs, nil
}

// FilePathToRoutePath converts a pages-relative file path to its route
// path pattern:
//
//	index.zen                → /
//	about.zen                → /about
//	users/index.zen          → /users
//	users/[id].zen           → /users/:id
//	docs/[...rest].zen       → /docs/*rest
//	files/[[...path]].zen    → /files/*path?
//
// The extension is stripped, a trailing "index" segment is dropped, and
// bracket segments convert to the parameter syntax.
func FilePathToRoutePath(rel string) string {
	p := strings.TrimSuffix(filepath.ToSlash(rel), PageExt)

	parts := strings.Split(p, "/")
	if len(parts) > 0 && parts[len(parts)-1] == "index" {
		parts = parts[:len(parts)-1]
	}

	segs := make([]string, 0, len(parts))
	for _, seg := range parts {
		if seg == "" {
			continue
		}
		segs = append(segs, convertSegment(seg))
	}

	if len(segs) == 0 {
		return "/"
	}
	return "/" + strings.Join(segs, "/")
}

// convertSegment maps one file-name segment to route-path syntax. The
// double-bracket form must be checked before the single-bracket forms.
func convertSegment(seg string) string {
	switch {
	case strings.HasPrefix(seg, "[[...") && strings.HasSuffix(seg, "]]"):
		return "*" + seg[5:len(seg)-2] + "?"
	case strings.HasPrefix(seg, "[...") && strings.HasSuffix(seg, "]"):
		return "*" + seg[4:len(seg)-1]
	case strings.HasPrefix(seg, "[") && strings.HasSuffix(seg, "]"):
		return ":" + seg[1:len(seg)-1]
	default:
		return seg
	}
}

// Generate scans pagesDir, validates the discovered defs, and builds
// the specificity-ranked manifest. This is the build-tool entry point;
// runtime consumers construct manifests from explicit defs instead.
func Generate(pagesDir string) (*Manifest, error) {
	defs, err := NewScanner(pagesDir).Scan()
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("manifest: no %s pages under %s: %w", PageExt, pagesDir, ErrNoRoutes)
	}
	if err := ValidateDefs(defs); err != nil {
		return nil, err
	}
	return Build(defs, WithRanking())
}
