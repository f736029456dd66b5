// Package dev provides the development server and live reload.
//
// This package implements:
//   - Polling file watcher for page, CSS, and asset changes
//   - Route manifest regeneration on page file changes
//   - WebSocket-based browser refresh with an error overlay
//   - SPA shell serving with deep-link fallback
//
// # Architecture
//
// The development server consists of several components:
//
//   - Watcher: polls the watched paths for changes
//   - Server: serves the shell, the manifest, and static files
//   - ReloadServer: pushes change notifications over WebSocket
//
// # Usage
//
//	srv := dev.NewServer(dev.ServerOptions{Config: cfg})
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration
//
// Live reload can be disabled via zenith.json (dev.hotReload=false).
// Watch paths are derived from project config (routes and static
// directories plus any entries in dev.watch), and the poll interval
// from dev.pollInterval.
//
// # Live Reload Protocol
//
// The browser connects to /_zenith/reload via WebSocket. Messages are
// JSON-encoded:
//
//	{"type": "reload"}                // full page reload
//	{"type": "css", "file": "..."}    // CSS-only refresh
//	{"type": "manifest"}              // route manifest changed, refetch it
//	{"type": "error", "error": "..."} // show error overlay
//	{"type": "clear"}                 // clear error overlay
package dev
