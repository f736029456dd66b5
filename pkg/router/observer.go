package router

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"
)

// Outcome classifies how a navigation attempt ended.
type Outcome int

const (
	// OutcomeMounted means the navigation committed a mount.
	OutcomeMounted Outcome = iota

	// OutcomeUnmatched means no route matched; the unmatched state was
	// still committed and listeners notified.
	OutcomeUnmatched

	// OutcomeSuperseded means a newer navigation or Destroy overtook
	// this one before it finished.
	OutcomeSuperseded

	// OutcomeFailed means a loader or mounter failed; the failure
	// handler ran.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMounted:
		return "mounted"
	case OutcomeUnmatched:
		return "unmatched"
	case OutcomeSuperseded:
		return "superseded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Observer is notified around each navigation attempt. Implementations
// record metrics or spans; they must not navigate. A panicking
// observer is logged and skipped.
type Observer interface {
	// NavigationStarted runs after guards settle and the token is
	// allocated. The returned context is threaded through the
	// navigation and into NavigationCompleted, so tracing observers
	// can attach a span.
	NavigationStarted(ctx context.Context, path string, token uint64) context.Context

	// NavigationCompleted runs when the attempt settles, whatever the
	// outcome.
	NavigationCompleted(ctx context.Context, path string, token uint64, outcome Outcome, elapsed time.Duration)
}

func (r *Router) observeStart(ctx context.Context, path string, token uint64) context.Context {
	for _, o := range r.observers {
		ctx = callObserverStart(ctx, o, path, token, r.logger)
	}
	return ctx
}

func (r *Router) observeComplete(ctx context.Context, path string, token uint64, outcome Outcome, elapsed time.Duration) {
	for _, o := range r.observers {
		callObserverComplete(ctx, o, path, token, outcome, elapsed, r.logger)
	}
}

func callObserverStart(ctx context.Context, o Observer, path string, token uint64, logger *slog.Logger) (out context.Context) {
	out = ctx
	defer func() {
		if rec := recover(); rec != nil {
			stack := debug.Stack()
			logger.Error("observer panic", "panic", rec, "stack", string(stack))
		}
	}()
	if next := o.NavigationStarted(ctx, path, token); next != nil {
		out = next
	}
	return out
}

func callObserverComplete(ctx context.Context, o Observer, path string, token uint64, outcome Outcome, elapsed time.Duration, logger *slog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			stack := debug.Stack()
			logger.Error("observer panic", "panic", rec, "stack", string(stack))
		}
	}()
	o.NavigationCompleted(ctx, path, token, outcome, elapsed)
}
