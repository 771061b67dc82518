package wm

import (
	"github.com/latticewm/lattice/internal/backend"
	"github.com/latticewm/lattice/internal/geometry"
	"github.com/latticewm/lattice/internal/layout"
)

// WindowID re-exports the engine id type; the manager is the sole
// allocator.
type WindowID = layout.WindowID

// Window is the manager's record of one managed window. The manager owns
// these; workspaces and layouts refer to them by id only.
type Window struct {
	ID         WindowID
	Handle     backend.Handle
	Title      string
	Bounds     geometry.Rect
	Visible    bool
	Minimized  bool
	Maximized  bool
	Fullscreen bool
	Floating   bool
}

// WindowInfo describes a window being attached to the manager.
type WindowInfo struct {
	Handle backend.Handle
	Title  string

	// Bounds is the requested initial geometry. Zero means "let the
	// manager pick" via its staggered default placement.
	Bounds geometry.Rect

	Floating   bool
	Fullscreen bool
}

func (w *Window) snapshot() WindowSnapshot {
	return WindowSnapshot{
		ID:         w.ID,
		Title:      w.Title,
		Bounds:     w.Bounds,
		Visible:    w.Visible,
		Minimized:  w.Minimized,
		Maximized:  w.Maximized,
		Fullscreen: w.Fullscreen,
		Floating:   w.Floating,
	}
}

// WindowSnapshot is the copy handed out to observers (control API, tests).
type WindowSnapshot struct {
	ID         WindowID      `json:"id"`
	Title      string        `json:"title"`
	Bounds     geometry.Rect `json:"bounds"`
	Visible    bool          `json:"visible"`
	Minimized  bool          `json:"minimized"`
	Maximized  bool          `json:"maximized"`
	Fullscreen bool          `json:"fullscreen"`
	Floating   bool          `json:"floating"`
}
