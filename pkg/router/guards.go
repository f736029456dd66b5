package router

import (
	"context"
	"log/slog"
	"runtime/debug"
)

// Guard inspects a pending navigation before any state changes and
// decides whether it proceeds. from is the current route state, to the
// prospective one (already resolved, so guards can inspect the matched
// route and params). Guards run in registration order; the first veto
// or redirect stops the chain.
//
// A guard that panics is logged and treated as allowing, and the rest
// of the chain still runs. Guards that must fail closed should return
// Veto explicitly instead of panicking.
type Guard func(ctx context.Context, from, to *RouteState) GuardDecision

// Hook observes a committed navigation. Hooks run in registration
// order after the route state is published and before bus listeners.
// They cannot alter the navigation. A panicking hook is logged and
// skipped; the remaining hooks still run.
type Hook func(change Change)

type guardAction int

const (
	guardAllow guardAction = iota
	guardVeto
	guardRedirect
)

// GuardDecision is the outcome of one guard. The zero value allows.
type GuardDecision struct {
	action   guardAction
	redirect string
}

// Allow lets the navigation proceed to the next guard.
func Allow() GuardDecision {
	return GuardDecision{action: guardAllow}
}

// Veto rejects the navigation. Navigate returns ErrVetoed and neither
// history nor mount state changes.
func Veto() GuardDecision {
	return GuardDecision{action: guardVeto}
}

// Redirect abandons the requested target and restarts the guard chain
// against path. Only the final target is written to history.
func Redirect(path string) GuardDecision {
	return GuardDecision{action: guardRedirect, redirect: path}
}

// guardEntry wraps a registered guard so unregistration can splice by
// identity.
type guardEntry struct {
	fn      Guard
	removed bool
}

type hookEntry struct {
	fn      Hook
	removed bool
}

// runGuardChain runs guards in order until one vetoes or redirects.
func runGuardChain(ctx context.Context, guards []Guard, from, to *RouteState, logger *slog.Logger) (redirect string, vetoed bool) {
	for _, g := range guards {
		switch d := callGuard(ctx, g, from, to, logger); d.action {
		case guardVeto:
			return "", true
		case guardRedirect:
			return d.redirect, false
		}
	}
	return "", false
}

func callGuard(ctx context.Context, g Guard, from, to *RouteState, logger *slog.Logger) (d GuardDecision) {
	defer func() {
		if rec := recover(); rec != nil {
			stack := debug.Stack()
			logger.Error("guard panic", "panic", rec, "stack", string(stack))
			d = Allow()
		}
	}()
	return g(ctx, from, to)
}

func callHook(h Hook, change Change, logger *slog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			stack := debug.Stack()
			logger.Error("hook panic", "panic", rec, "stack", string(stack))
		}
	}()
	h(change)
}
