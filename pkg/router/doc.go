// Package router is the client-side navigation core: it resolves
// pathnames against a compiled route manifest, loads and mounts the
// matching page, keeps session history in sync, and notifies
// subscribers of every route change.
//
// # Navigation model
//
// Every navigation allocates a monotonically increasing token. Side
// effects (teardown of the previous page, mounting the next one,
// history writes, listener notification) only happen while the
// navigation's token is still the latest. When navigations overlap,
// the last one issued wins and the earlier ones settle with
// ErrSuperseded having produced no further effects. This makes rapid
// successive navigations safe: a slow page load can never clobber the
// page the user actually asked for.
//
// A navigation that matches no route is not an error. The unmatched
// state is committed and published like any other, and the host
// decides what to show for it.
//
// # Loading and mounting
//
// Each route's page starts unloaded and transitions to loaded exactly
// once, on its first successful load or prefetch. The host supplies a
// Mounter that attaches loaded artifacts to its container and returns
// a teardown; the router guarantees teardown of each mounted page runs
// exactly once, before the next page mounts.
//
// # Extension points
//
// Guards run before each navigation and may veto or redirect it.
// Hooks and subscribers observe committed changes. Observers bracket
// each attempt for metrics and tracing. All extension failures are
// isolated: a panicking callback is logged and skipped, never breaking
// the navigation or its peers.
package router
