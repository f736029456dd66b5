package router

import (
	"errors"
	"fmt"
)

// Configuration errors returned by New. These indicate programmer error
// and are reported before the router touches history or the DOM.
var (
	ErrNilConfig    = errors.New("router: nil config")
	ErrNilMounter   = errors.New("router: nil mounter")
	ErrNilContainer = errors.New("router: nil mount container")
	ErrEmptyRoutes  = errors.New("router: no routes configured")
)

// Navigation outcome errors.
var (
	// ErrSuperseded is returned when a navigation was overtaken by a newer
	// one before it could finish. The superseded navigation performed no
	// side effects past the point where it was overtaken.
	ErrSuperseded = errors.New("router: navigation superseded")

	// ErrDestroyed is returned for navigations issued after Destroy.
	// The history entry may still be written, but nothing is mounted.
	ErrDestroyed = errors.New("router: router destroyed")

	// ErrVetoed is returned when a pre-navigation guard rejected the
	// navigation. History and mount state are untouched.
	ErrVetoed = errors.New("router: navigation vetoed")

	// ErrTooManyRedirects is returned when guard redirects exceed the
	// configured limit, which usually means two guards redirect at each
	// other.
	ErrTooManyRedirects = errors.New("router: too many guard redirects")

	// ErrPrefetchThrottled is returned when a prefetch was dropped
	// because the rate or concurrency budget was exhausted. Callers can
	// safely ignore it; prefetching is best effort.
	ErrPrefetchThrottled = errors.New("router: prefetch throttled")
)

// NavigationError describes a failed navigation attempt. Op names the
// step that failed: "canonicalize", "guard", "load" or "mount".
type NavigationError struct {
	Op    string
	Path  string
	Token uint64
	Err   error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("router: %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic recovered from host code (a loader, mounter,
// guard or listener) so it can travel the normal error path.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
