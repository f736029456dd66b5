package dev

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zenith-dev/zenith/internal/config"
	"github.com/zenith-dev/zenith/pkg/manifest"
)

// ChangeType classifies a detected file change.
type ChangeType int

const (
	// ChangePage is a page file (.zen) change.
	ChangePage ChangeType = iota

	// ChangeCSS is a stylesheet change.
	ChangeCSS

	// ChangeConfig is a change to zenith.json.
	ChangeConfig

	// ChangeAsset is any other watched file change.
	ChangeAsset
)

func (t ChangeType) String() string {
	switch t {
	case ChangePage:
		return "page"
	case ChangeCSS:
		return "css"
	case ChangeConfig:
		return "config"
	default:
		return "asset"
	}
}

// Change is one detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files and directories to watch.
	Paths []string

	// Ignore lists patterns to skip. Glob patterns match the base
	// name; patterns containing slashes match a run of path segments;
	// anything else matches a single path segment exactly.
	Ignore []string

	// Interval is how often the watched paths are polled.
	Interval time.Duration
}

// DefaultIgnore contains the patterns skipped by default.
var DefaultIgnore = []string{
	".git",
	".zenith",
	"node_modules",
	"dist",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher polls a set of paths for changes. Polling keeps the watcher
// dependency-free and behaves identically across platforms and network
// mounts, at the cost of latency bounded by the poll interval.
type Watcher struct {
	cfg      WatcherConfig
	mu       sync.Mutex
	onChange func(Change)
	running  bool
	primed   bool
	stopCh   chan struct{}
	modtimes map[string]time.Time
}

// NewWatcher creates a watcher for the configured paths.
func NewWatcher(cfg WatcherConfig) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = config.DefaultPollInterval
	}
	if len(cfg.Ignore) == 0 {
		cfg.Ignore = DefaultIgnore
	}
	return &Watcher{
		cfg:      cfg,
		modtimes: make(map[string]time.Time),
	}
}

// OnChange sets the callback invoked for each detected change.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start polls until ctx is canceled or Stop is called. The first poll
// only primes the modification-time map, so files that existed before
// Start never fire.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()

	w.poll()

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			w.emit(w.poll())
		}
	}
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning reports whether the watcher is polling.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// poll takes a fresh snapshot, swaps it in, and returns the diff
// against the previous snapshot. New and modified files show up from
// the mod-time comparison; deleted files fall out of the snapshot.
func (w *Watcher) poll() []Change {
	snap := w.snapshot()

	w.mu.Lock()
	prev := w.modtimes
	primed := w.primed
	w.modtimes = snap
	w.primed = true
	w.mu.Unlock()

	if !primed {
		return nil
	}

	var changes []Change
	for p, mod := range snap {
		last, seen := prev[p]
		if !seen || mod.After(last) {
			changes = append(changes, Change{Path: p, Type: classifyChange(p)})
		}
	}
	for p := range prev {
		if _, still := snap[p]; !still {
			changes = append(changes, Change{Path: p, Type: classifyChange(p)})
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

// snapshot walks every watched path and records file modification
// times. Overlapping roots collapse naturally since the map is keyed
// by path.
func (w *Watcher) snapshot() map[string]time.Time {
	snap := make(map[string]time.Time, len(w.modtimes))
	for _, root := range w.cfg.Paths {
		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if p != root && w.shouldIgnore(p) {
					return filepath.SkipDir
				}
				return nil
			}
			if w.shouldIgnore(p) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			snap[p] = info.ModTime()
			return nil
		})
	}
	return snap
}

// emit reports the first change of each type through the callback.
// Finer-grained coalescing happens downstream in the server.
func (w *Watcher) emit(changes []Change) {
	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()

	if callback == nil || len(changes) == 0 {
		return
	}

	seen := make(map[ChangeType]bool, 4)
	for _, c := range changes {
		if seen[c.Type] {
			continue
		}
		seen[c.Type] = true
		callback(c)
	}
}

// shouldIgnore reports whether a path matches any ignore pattern.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	base := filepath.Base(fullPath)
	segments := splitSegments(filepath.ToSlash(fullPath))

	for _, pattern := range w.cfg.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if strings.ContainsAny(pattern, "*?[") {
			if ok, _ := filepath.Match(pattern, base); ok {
				return true
			}
			continue
		}

		if strings.ContainsRune(pattern, '/') {
			if containsRun(segments, splitSegments(pattern)) {
				return true
			}
			continue
		}

		for _, seg := range segments {
			if seg == pattern {
				return true
			}
		}
	}
	return false
}

// containsRun reports whether needle occurs as a consecutive run
// inside haystack.
func containsRun(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, want := range needle {
			if haystack[i+j] != want {
				continue outer
			}
		}
		return true
	}
	return false
}

func splitSegments(p string) []string {
	var segs []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" && seg != "." {
			segs = append(segs, seg)
		}
	}
	return segs
}

// classifyChange maps a file path to its change type. The project file
// is recognized by name; everything else classifies by extension.
func classifyChange(path string) ChangeType {
	if filepath.Base(path) == config.ConfigFileName {
		return ChangeConfig
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case manifest.PageExt:
		return ChangePage
	case ".css", ".scss", ".sass", ".less":
		return ChangeCSS
	default:
		return ChangeAsset
	}
}
