package dev

import (
	"path/filepath"

	"github.com/zenith-dev/zenith/internal/config"
)

// CollectWatchPaths returns the deduplicated set of paths the dev
// server watches: the pages directory, the static directory, the
// project file itself, and any extra dev.watch entries.
func CollectWatchPaths(cfg *config.Config) []string {
	projectDir := cfg.Dir()

	paths := []string{
		cfg.RoutesPath(),
		cfg.PublicPath(),
		cfg.Path(),
	}
	for _, extra := range cfg.Dev.Watch {
		paths = append(paths, resolvePath(projectDir, extra))
	}

	seen := make(map[string]struct{}, len(paths))
	unique := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		clean := filepath.Clean(p)
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}
	return unique
}

func resolvePath(projectDir, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, path)
}
