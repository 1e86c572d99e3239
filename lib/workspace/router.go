// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package workspace confines navigation to the screen graph of the
// resolved role.
//
// Each role owns a disjoint, static [Graph] ([ScreensFor]); the
// unauthenticated [Auth] workspace is the seventh. A [Router] mounts
// exactly one workspace at a time. Entering a workspace always starts
// at its landing screen, navigation outside the mounted graph is
// refused with [ErrCrossWorkspace], and [Router.Reset] discards all
// history so no back navigation can return to a previous workspace.
//
// The router observes session changes ([Router.OnSessionChange]) and may
// be reset before it is mounted: the reset is queued and applied by
// [Router.Mount].
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/bureau-foundation/outpass/lib/session"
)

var (
	// ErrNotMounted is returned by navigation before Mount.
	ErrNotMounted = errors.New("workspace: router not mounted")

	// ErrCrossWorkspace is returned for a screen outside the mounted
	// workspace.
	ErrCrossWorkspace = errors.New("workspace: screen belongs to another workspace")

	// ErrUnknownTab is returned by SwitchTab for a tab the mounted
	// workspace does not have.
	ErrUnknownTab = errors.New("workspace: unknown tab")
)

// Guard may refuse entry to a screen. A refusal leaves the router
// untouched.
type Guard func(Screen) error

// Router holds the navigation state of the single mounted workspace.
type Router struct {
	logger *slog.Logger

	mu        sync.Mutex
	mounted   bool
	pending   *Workspace
	graph     Graph
	stacks    map[TabName][]Screen
	activeTab TabName
	guard     Guard
	listeners []func(Screen)
}

// flatStack keys the single stack of an untabbed workspace.
const flatStack TabName = ""

// NewRouter returns an unmounted router. A nil logger discards.
func NewRouter(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Router{logger: logger}
}

// Mount enters initial. A Reset requested before Mount takes precedence,
// since it happened after initial was resolved.
func (r *Router) Mount(initial Workspace) {
	r.mu.Lock()
	target := initial
	if r.pending != nil {
		target = *r.pending
		r.pending = nil
	}
	r.mounted = true
	r.enter(target)
	current := r.current()
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	r.notify(listeners, current)
}

// Mounted reports whether Mount has run.
func (r *Router) Mounted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mounted
}

// Reset replaces all navigation state with the landing screen of w.
// Before Mount the reset is queued (last one wins).
func (r *Router) Reset(w Workspace) {
	r.mu.Lock()
	if !r.mounted {
		r.pending = &w
		r.mu.Unlock()
		r.logger.Debug("router reset queued until mount", "workspace", w)
		return
	}
	r.enter(w)
	current := r.current()
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	r.notify(listeners, current)
}

// OnSessionChange resets to the workspace of the new session. It has the
// session.Observer signature.
func (r *Router) OnSessionChange(change session.Change) {
	r.Reset(For(change.Session))
}

// SetGuard installs the guard consulted by Navigate and SwitchTab.
func (r *Router) SetGuard(guard Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guard = guard
}

// OnNavigate registers a listener called with the current screen after
// every mount, reset and navigation.
func (r *Router) OnNavigate(listener func(Screen)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, listener)
}

// Navigate moves to screen. A screen already on the active stack pops
// back to it; otherwise it is pushed. In the student workspace the tab
// owning screen becomes active.
func (r *Router) Navigate(screen Screen) error {
	r.mu.Lock()
	if !r.mounted {
		r.mu.Unlock()
		return ErrNotMounted
	}
	if !r.graph.Contains(screen) {
		workspace := r.graph.Workspace
		r.mu.Unlock()
		return fmt.Errorf("%w: %s is not in %s", ErrCrossWorkspace, screen, workspace)
	}
	if r.guard != nil {
		if err := r.guard(screen); err != nil {
			r.mu.Unlock()
			return err
		}
	}

	stackKey := flatStack
	if r.graph.Tabbed() {
		tab, _ := r.graph.TabOf(screen)
		stackKey = tab.Name
		r.activeTab = tab.Name
	}
	stack := r.stacks[stackKey]
	if index := slices.Index(stack, screen); index >= 0 {
		r.stacks[stackKey] = stack[:index+1]
	} else {
		r.stacks[stackKey] = append(stack, screen)
	}
	current := r.current()
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	r.notify(listeners, current)
	return nil
}

// SwitchTab activates a tab of the student workspace, keeping the tab's
// own stack. The guard sees the tab's root screen.
func (r *Router) SwitchTab(name TabName) error {
	r.mu.Lock()
	if !r.mounted {
		r.mu.Unlock()
		return ErrNotMounted
	}
	tab, ok := r.graph.Tab(name)
	if !ok {
		workspace := r.graph.Workspace
		r.mu.Unlock()
		return fmt.Errorf("%w: %s in %s", ErrUnknownTab, name, workspace)
	}
	if r.guard != nil {
		if err := r.guard(tab.Root); err != nil {
			r.mu.Unlock()
			return err
		}
	}
	r.activeTab = name
	current := r.current()
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	r.notify(listeners, current)
	return nil
}

// Back pops the active stack. It returns false at the bottom of the
// stack or before Mount.
func (r *Router) Back() bool {
	r.mu.Lock()
	if !r.mounted {
		r.mu.Unlock()
		return false
	}
	key := r.stackKey()
	stack := r.stacks[key]
	if len(stack) <= 1 {
		r.mu.Unlock()
		return false
	}
	r.stacks[key] = stack[:len(stack)-1]
	current := r.current()
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	r.notify(listeners, current)
	return true
}

// Current returns the visible screen, or "" before Mount.
func (r *Router) Current() Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.mounted {
		return ""
	}
	return r.current()
}

// History returns the active stack, bottom first.
func (r *Router) History() []Screen {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.mounted {
		return nil
	}
	return slices.Clone(r.stacks[r.stackKey()])
}

// Workspace returns the mounted workspace, or "" before Mount.
func (r *Router) Workspace() Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.mounted {
		return ""
	}
	return r.graph.Workspace
}

// Graph returns the mounted graph.
func (r *Router) Graph() Graph {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.graph
}

// ActiveTab returns the active tab of a tabbed workspace, or "".
func (r *Router) ActiveTab() TabName {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeTab
}

func (r *Router) enter(w Workspace) {
	graph := ScreensFor(w)
	r.graph = graph
	r.stacks = make(map[TabName][]Screen)
	r.activeTab = flatStack
	if graph.Tabbed() {
		for _, tab := range graph.Tabs {
			r.stacks[tab.Name] = []Screen{tab.Root}
		}
		landingTab, _ := graph.TabOf(graph.Landing)
		r.activeTab = landingTab.Name
	} else {
		r.stacks[flatStack] = []Screen{graph.Landing}
	}
	r.logger.Debug("workspace entered", "workspace", w, "landing", graph.Landing)
}

func (r *Router) stackKey() TabName {
	if r.graph.Tabbed() {
		return r.activeTab
	}
	return flatStack
}

func (r *Router) current() Screen {
	stack := r.stacks[r.stackKey()]
	return stack[len(stack)-1]
}

func (r *Router) notify(listeners []func(Screen), current Screen) {
	for _, listener := range listeners {
		listener(current)
	}
}
