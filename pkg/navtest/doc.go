// Package navtest provides testing helpers for router hosts.
//
// The navtest package reduces boilerplate when testing navigation
// behavior by bundling a router with a recording mounter and an
// in-memory history stack, behind a fluent builder and assertion
// helpers.
//
// # Quick Start
//
//	func TestUserPage(t *testing.T) {
//	    h := navtest.NewHarness().
//	        WithRoute("/", "home").
//	        WithRoute("/users/:id", "user").
//	        Build(t)
//	    h.Start()
//
//	    h.MustNavigate("/users/7")
//	    h.AssertPath("/users/7")
//	    h.AssertParam("id", "7")
//	    h.AssertMounted("home", "user")
//	}
//
// # Driving History
//
// The harness exposes the memory backend directly, so tests can
// simulate back/forward buttons and external history movement:
//
//	h.Back()
//	h.AssertPath("/")
//	h.Backend.Travel(1) // as if the browser moved on its own
//
// # Overlapping Navigations
//
// GatedLoader blocks a load until the test releases it, which makes
// last-writer-wins scenarios deterministic:
//
//	gate := navtest.NewGatedLoader("slow")
//	h := navtest.NewHarness().
//	    WithRoute("/", "home").
//	    WithLoader("/slow", gate.Load).
//	    Build(t)
//	h.Start()
//
//	done := make(chan error, 1)
//	go func() { done <- h.Navigate("/slow") }()
//	<-gate.Started()
//	h.MustNavigate("/") // supersedes the slow navigation
//	gate.Release()
//	if err := <-done; !errors.Is(err, router.ErrSuperseded) {
//	    t.Fatalf("stale navigation error = %v", err)
//	}
package navtest
