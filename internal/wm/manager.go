// Package wm is the window manager core: the single source of truth for
// window identity, the workspace set, and global focus. All mutation entry
// points and the periodic re-layout task serialize on one mutex; events
// are published only after the lock is released.
package wm

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/latticewm/lattice/internal/backend"
	"github.com/latticewm/lattice/internal/bus"
	"github.com/latticewm/lattice/internal/geometry"
	"github.com/latticewm/lattice/internal/layout"
)

// Settings are the manager's recognized configuration options.
type Settings struct {
	Gap               int
	Border            int
	SnapThreshold     int
	AutoBalance       bool
	SmartGaps         bool
	FocusFollowsMouse bool
	ClickToFocus      bool
	AutoRaise         bool
	AnimationDuration time.Duration
	RelayoutInterval  time.Duration
	DefaultPolicy     layout.Policy
	Workspaces        []WorkspaceSpec
}

// WorkspaceSpec predeclares a workspace from config.
type WorkspaceSpec struct {
	UUID   string
	Name   string
	Policy layout.Policy
}

func (s Settings) withDefaults() Settings {
	if s.RelayoutInterval <= 0 {
		s.RelayoutInterval = 16 * time.Millisecond
	}
	if s.DefaultPolicy == "" {
		s.DefaultPolicy = layout.PolicyTiled
	}
	return s
}

const (
	defaultWindowWidth  = 800
	defaultWindowHeight = 600
	placementStagger    = 30
	placementOrigin     = 100
)

// Manager owns every Window and Workspace. Workspaces and layouts hold
// ids only; there is exactly one owner for each record. The single mutex
// serializes every mutation entry point and the periodic re-layout tick;
// nothing blocks on I/O while holding it (events are published after
// unlock, backend pushes are fire-and-forget).
type Manager struct {
	mu sync.Mutex

	backend  backend.Backend
	settings Settings

	windows         map[WindowID]*Window
	workspaces      []*Workspace
	active          WorkspaceID
	focused         WindowID
	nextWindowID    WindowID
	nextWorkspaceID WorkspaceID
}

// NewManager builds the workspace set from settings (one default workspace
// always exists) and sizes every workspace from the backend's first
// output.
func NewManager(b backend.Backend, settings Settings) *Manager {
	settings = settings.withDefaults()
	m := &Manager{
		backend:         b,
		settings:        settings,
		windows:         make(map[WindowID]*Window),
		nextWindowID:    1,
		nextWorkspaceID: 1,
	}

	bounds := m.outputBounds()
	specs := settings.Workspaces
	if len(specs) == 0 {
		specs = []WorkspaceSpec{{Name: "main", Policy: settings.DefaultPolicy}}
	}
	for _, spec := range specs {
		policy := spec.Policy
		if policy == "" {
			policy = settings.DefaultPolicy
		}
		ws := newWorkspace(m.nextWorkspaceID, spec.Name, policy, bounds, m.layoutOptions())
		ws.UUID = spec.UUID
		m.nextWorkspaceID++
		m.workspaces = append(m.workspaces, ws)
	}

	first := m.workspaces[0]
	first.Active = true
	first.Visible = true
	m.active = first.ID
	return m
}

func (m *Manager) layoutOptions() layout.Options {
	return layout.Options{
		Gap:         m.settings.Gap,
		Border:      m.settings.Border,
		AutoBalance: m.settings.AutoBalance,
		SmartGaps:   m.settings.SmartGaps,
	}
}

// outputBounds reads the first output, degrading to a zero rect when the
// backend has nothing to offer (the layout math tolerates it).
func (m *Manager) outputBounds() geometry.Rect {
	outputs, err := m.backend.Outputs()
	if err != nil || len(outputs) == 0 {
		if err != nil {
			slog.Warn("Failed to read outputs", "error", err)
		}
		return geometry.Rect{}
	}
	return outputs[0].Bounds
}

// CreateWindow allocates an id, records the window, places it in the
// active workspace and re-arranges. Windows that do not request floating
// or fullscreen are tiled. Returns the new id.
func (m *Manager) CreateWindow(info WindowInfo) WindowID {
	m.mu.Lock()
	id := m.nextWindowID
	m.nextWindowID++

	bounds := info.Bounds
	if bounds.Empty() {
		bounds = m.defaultPlacement(len(m.windows))
	}

	win := &Window{
		ID:         id,
		Handle:     info.Handle,
		Title:      info.Title,
		Bounds:     bounds,
		Visible:    true,
		Fullscreen: info.Fullscreen,
		Floating:   info.Floating,
	}
	m.windows[id] = win

	mode := layout.ModeTiled
	if info.Fullscreen {
		mode = layout.ModeFullscreen
	} else if info.Floating {
		mode = layout.ModeFloating
	}

	ws := m.activeWorkspace()
	ws.addWindow(id, mode)
	m.pushBounds(win, bounds)

	events := []any{EventWindowCreated{Window: win.snapshot()}}
	events = append(events, m.syncFocusLocked()...)
	events = append(events, m.arrangeLocked(ws)...)
	m.mu.Unlock()

	publish(events)
	return id
}

// defaultPlacement staggers new floating-capable windows so they do not
// pile up exactly on top of each other.
func (m *Manager) defaultPlacement(existing int) geometry.Rect {
	off := placementOrigin + placementStagger*(existing%10)
	return geometry.NewRect(off, off, defaultWindowWidth, defaultWindowHeight)
}

// DestroyWindow removes id from whichever workspace holds it and deletes
// the record. Unknown ids report false.
func (m *Manager) DestroyWindow(id WindowID) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}

	var events []any
	for _, ws := range m.workspaces {
		if ws.removeWindow(id) {
			events = append(events, m.arrangeLocked(ws)...)
			break
		}
	}
	delete(m.windows, id)
	_ = m.backend.HideWindow(win.Handle)

	events = append([]any{EventWindowDestroyed{ID: id}}, events...)
	events = append(events, m.syncFocusLocked()...)
	m.mu.Unlock()

	publish(events)
	return true
}

// MoveWindow repositions a floating window. Tiled and fullscreen windows
// are rejected: their geometry is policy-derived, detach to floating
// first.
func (m *Manager) MoveWindow(id WindowID, x, y int) bool {
	return m.setBounds(id, func(r geometry.Rect) geometry.Rect {
		return geometry.Rect{X: x, Y: y, Width: r.Width, Height: r.Height}
	}, true)
}

// ResizeWindow resizes a floating window; same rejection rule as
// MoveWindow.
func (m *Manager) ResizeWindow(id WindowID, w, h int) bool {
	return m.setBounds(id, func(r geometry.Rect) geometry.Rect {
		return geometry.NewRect(r.X, r.Y, w, h)
	}, false)
}

// SetWindowBounds sets a floating window's full rectangle.
func (m *Manager) SetWindowBounds(id WindowID, r geometry.Rect) bool {
	return m.setBounds(id, func(geometry.Rect) geometry.Rect {
		return geometry.NewRect(r.X, r.Y, r.Width, r.Height)
	}, false)
}

func (m *Manager) setBounds(id WindowID, update func(geometry.Rect) geometry.Rect, moved bool) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok || m.modeOf(id) != layout.ModeFloating {
		m.mu.Unlock()
		return false
	}
	bounds := update(win.Bounds)
	m.pushBounds(win, bounds)
	m.mu.Unlock()

	if moved {
		publish([]any{EventWindowMoved{ID: id, Bounds: bounds}})
	} else {
		publish([]any{EventWindowResized{ID: id, Bounds: bounds}})
	}
	return true
}

// SetFloating detaches id to the floating list (or back to tiling) and
// re-arranges its workspace.
func (m *Manager) SetFloating(id WindowID, floating bool) bool {
	mode := layout.ModeTiled
	if floating {
		mode = layout.ModeFloating
	}
	return m.setMode(id, mode, func(w *Window) { w.Floating = floating })
}

// SetFullscreen moves id between the fullscreen list and tiling.
func (m *Manager) SetFullscreen(id WindowID, fullscreen bool) bool {
	mode := layout.ModeTiled
	if fullscreen {
		mode = layout.ModeFullscreen
	}
	return m.setMode(id, mode, func(w *Window) { w.Fullscreen = fullscreen })
}

func (m *Manager) setMode(id WindowID, mode layout.Mode, mark func(*Window)) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	ws := m.workspaceOf(id)
	if ws == nil || !ws.Layout.SetMode(id, mode) {
		m.mu.Unlock()
		return false
	}
	mark(win)
	events := m.arrangeLocked(ws)
	m.mu.Unlock()

	publish(events)
	return true
}

// Minimize hides the window without removing it from its containers; the
// next arrange still computes its slot so restore is geometry-stable.
func (m *Manager) Minimize(id WindowID) bool {
	return m.setVisibility(id, true)
}

func (m *Manager) Restore(id WindowID) bool {
	return m.setVisibility(id, false)
}

func (m *Manager) setVisibility(id WindowID, minimized bool) bool {
	m.mu.Lock()
	win, ok := m.windows[id]
	if !ok || win.Minimized == minimized {
		m.mu.Unlock()
		return false
	}
	win.Minimized = minimized
	win.Visible = !minimized
	if minimized {
		_ = m.backend.HideWindow(win.Handle)
	} else {
		_ = m.backend.ShowWindow(win.Handle)
	}
	m.mu.Unlock()
	return true
}

// FocusWindow focuses a window of the active workspace. Windows on other
// workspaces (and unknown ids) report false.
func (m *Manager) FocusWindow(id WindowID) bool {
	m.mu.Lock()
	events, ok := m.focusLocked(id)
	m.mu.Unlock()

	publish(events)
	return ok
}

func (m *Manager) focusLocked(id WindowID) ([]any, bool) {
	win, ok := m.windows[id]
	if !ok {
		return nil, false
	}
	ws := m.activeWorkspace()
	if !ws.focusWindow(id) {
		return nil, false
	}
	m.focused = id
	if m.settings.AutoRaise {
		_ = m.backend.RaiseWindow(win.Handle)
	}
	return []any{EventWindowFocused{ID: id}}, true
}

// FocusNext cycles focus forward through the active workspace's window
// order (tree pre-order, then floating, then fullscreen), wrapping.
func (m *Manager) FocusNext() bool { return m.cycleFocus(1) }

// FocusPrevious cycles focus backward, wrapping.
func (m *Manager) FocusPrevious() bool { return m.cycleFocus(-1) }

func (m *Manager) cycleFocus(delta int) bool {
	m.mu.Lock()
	ws := m.activeWorkspace()
	order := ws.Layout.Windows()
	if len(order) == 0 {
		m.mu.Unlock()
		return false
	}

	idx := 0
	for i, id := range order {
		if id == ws.Focused() {
			idx = (i + delta + len(order)) % len(order)
			break
		}
	}
	events, ok := m.focusLocked(order[idx])
	m.mu.Unlock()

	publish(events)
	return ok
}

// CreateWorkspace adds a workspace with the given policy ("" means the
// configured default) and returns its id.
func (m *Manager) CreateWorkspace(name string, policy layout.Policy) WorkspaceID {
	m.mu.Lock()
	if policy == "" {
		policy = m.settings.DefaultPolicy
	}
	ws := newWorkspace(m.nextWorkspaceID, name, policy, m.outputBounds(), m.layoutOptions())
	m.nextWorkspaceID++
	m.workspaces = append(m.workspaces, ws)
	id := ws.ID
	m.mu.Unlock()
	return id
}

// DestroyWorkspace removes a workspace, reassigning its windows to the
// first remaining workspace; windows are never silently dropped. The
// last workspace cannot disappear: a fresh default is created first so
// the active workspace is always defined.
func (m *Manager) DestroyWorkspace(id WorkspaceID) bool {
	m.mu.Lock()
	idx := -1
	for i, ws := range m.workspaces {
		if ws.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		m.mu.Unlock()
		return false
	}

	if len(m.workspaces) == 1 {
		fresh := newWorkspace(m.nextWorkspaceID, "main", m.settings.DefaultPolicy, m.outputBounds(), m.layoutOptions())
		m.nextWorkspaceID++
		m.workspaces = append(m.workspaces, fresh)
	}

	doomed := m.workspaces[idx]
	m.workspaces = append(m.workspaces[:idx], m.workspaces[idx+1:]...)

	target := m.workspaces[0]
	for _, wid := range doomed.Windows() {
		mode := layout.ModeTiled
		if win, ok := m.windows[wid]; ok {
			if win.Fullscreen {
				mode = layout.ModeFullscreen
			} else if win.Floating {
				mode = layout.ModeFloating
			}
		}
		target.addWindow(wid, mode)
	}

	var events []any
	if m.active == id {
		events = append(events, m.switchLocked(target)...)
	}
	events = append(events, m.arrangeLocked(target)...)
	m.mu.Unlock()

	publish(events)
	return true
}

// SwitchToWorkspace deactivates the current workspace (hiding its
// windows) and activates the target (showing its non-minimized windows).
func (m *Manager) SwitchToWorkspace(id WorkspaceID) bool {
	m.mu.Lock()
	target := m.workspaceByID(id)
	if target == nil || target.ID == m.active {
		m.mu.Unlock()
		return target != nil
	}
	events := m.switchLocked(target)
	events = append(events, m.arrangeLocked(target)...)
	m.mu.Unlock()

	publish(events)
	return true
}

func (m *Manager) switchLocked(target *Workspace) []any {
	from := m.active
	current := m.activeWorkspace()
	if current != nil && current != target {
		current.Active = false
		current.Visible = false
		for _, wid := range current.Windows() {
			if win, ok := m.windows[wid]; ok {
				win.Visible = false
				_ = m.backend.HideWindow(win.Handle)
			}
		}
	}

	target.Active = true
	target.Visible = true
	for _, wid := range target.Windows() {
		win, ok := m.windows[wid]
		if !ok || win.Minimized {
			continue
		}
		win.Visible = true
		_ = m.backend.ShowWindow(win.Handle)
	}

	m.active = target.ID
	events := []any{EventWorkspaceSwitched{From: from, To: target.ID}}
	events = append(events, m.syncFocusLocked()...)
	return events
}

// SetPolicy switches the active workspace's arrangement policy; the
// layout is rebuilt, not patched.
func (m *Manager) SetPolicy(policy layout.Policy) bool {
	if _, err := layout.ParsePolicy(string(policy)); err != nil {
		return false
	}
	m.mu.Lock()
	ws := m.activeWorkspace()
	ws.setPolicy(policy)
	events := []any{EventLayoutChanged{Workspace: ws.ID, Policy: string(policy)}}
	events = append(events, m.arrangeLocked(ws)...)
	m.mu.Unlock()

	publish(events)
	return true
}

// ArrangeWindows re-runs the active workspace's arrangement against the
// current output bounds. Idempotent; safe to invoke redundantly. This is
// what the periodic task calls to absorb output changes.
func (m *Manager) ArrangeWindows() {
	m.mu.Lock()
	ws := m.activeWorkspace()
	ws.Layout.SetBounds(m.outputBounds())
	events := m.arrangeLocked(ws)
	m.mu.Unlock()

	publish(events)
}

// arrangeLocked recomputes rectangles for ws and pushes changes to the
// backend. Only windows whose bounds actually changed produce pushes.
func (m *Manager) arrangeLocked(ws *Workspace) []any {
	if ws == nil {
		return nil
	}
	rects := ws.Layout.Arrange()
	for id, r := range rects {
		win, ok := m.windows[id]
		if !ok || win.Bounds == r {
			continue
		}
		m.pushBounds(win, r)
	}
	return nil
}

func (m *Manager) pushBounds(win *Window, r geometry.Rect) {
	win.Bounds = r
	if err := m.backend.SetWindowBounds(win.Handle, r); err != nil {
		slog.Warn("Failed to push window bounds", "window", win.ID, "error", err)
	}
}

// syncFocusLocked mirrors the active workspace's focus pointer into the
// manager's global focus, emitting a focus event on change.
func (m *Manager) syncFocusLocked() []any {
	ws := m.activeWorkspace()
	want := layout.None
	if ws != nil {
		want = ws.Focused()
	}
	if m.focused == want {
		return nil
	}
	m.focused = want
	if want == layout.None {
		return nil
	}
	return []any{EventWindowFocused{ID: want}}
}

func (m *Manager) activeWorkspace() *Workspace {
	return m.workspaceByID(m.active)
}

func (m *Manager) workspaceByID(id WorkspaceID) *Workspace {
	for _, ws := range m.workspaces {
		if ws.ID == id {
			return ws
		}
	}
	return nil
}

func (m *Manager) workspaceOf(id WindowID) *Workspace {
	for _, ws := range m.workspaces {
		if ws.contains(id) {
			return ws
		}
	}
	return nil
}

func (m *Manager) modeOf(id WindowID) layout.Mode {
	if ws := m.workspaceOf(id); ws != nil {
		return ws.Layout.Mode(id)
	}
	return layout.ModeNone
}

// Focused returns the globally focused window id (None when nothing is
// focused).
func (m *Manager) Focused() WindowID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focused
}

// ActiveWorkspace returns the active workspace id.
func (m *Manager) ActiveWorkspace() WorkspaceID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Windows returns snapshots of every managed window, ordered by id.
func (m *Manager) Windows() []WindowSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WindowSnapshot, 0, len(m.windows))
	for _, win := range m.windows {
		out = append(out, win.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Window returns a snapshot of one window.
func (m *Manager) Window(id WindowID) (WindowSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	win, ok := m.windows[id]
	if !ok {
		return WindowSnapshot{}, false
	}
	return win.snapshot(), true
}

// Workspaces returns snapshots of every workspace in creation order.
func (m *Manager) Workspaces() []WorkspaceSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WorkspaceSnapshot, 0, len(m.workspaces))
	for _, ws := range m.workspaces {
		out = append(out, ws.snapshot())
	}
	return out
}

// Workspace returns a snapshot of one workspace.
func (m *Manager) Workspace(id WorkspaceID) (WorkspaceSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws := m.workspaceByID(id)
	if ws == nil {
		return WorkspaceSnapshot{}, false
	}
	return ws.snapshot(), true
}

func (m *Manager) String() string { return "wm.Manager" }

// Serve runs the periodic re-layout loop until ctx is cancelled. It is
// the only background task; every tick takes the same lock as the
// mutation API, so shutdown (context cancellation through the
// supervisor) cannot race a reader.
func (m *Manager) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.settings.RelayoutInterval)
	defer ticker.Stop()

	slog.Info("Re-layout loop started", "interval", m.settings.RelayoutInterval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Re-layout loop stopped")
			return ctx.Err()
		case <-ticker.C:
			m.ArrangeWindows()
		}
	}
}

// publish flushes events collected under the lock. Delivery order matches
// mutation order because every mutation publishes before returning. Each
// event also goes out wrapped in the uniform Event envelope.
func publish(events []any) {
	for _, ev := range events {
		switch e := ev.(type) {
		case EventWindowCreated:
			bus.Publish(e)
		case EventWindowDestroyed:
			bus.Publish(e)
		case EventWindowFocused:
			bus.Publish(e)
		case EventWindowMoved:
			bus.Publish(e)
		case EventWindowResized:
			bus.Publish(e)
		case EventWorkspaceSwitched:
			bus.Publish(e)
		case EventLayoutChanged:
			bus.Publish(e)
		default:
			continue
		}
		bus.Publish(Event{Type: eventName(ev), Payload: ev})
	}
}
