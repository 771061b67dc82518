// Package backend is the seam between the layout engine and the windowing
// system. The engine only ever pushes rectangles and visibility at a
// backend; it never reads pixels or GPU state back.
package backend

import "github.com/latticewm/lattice/internal/geometry"

// Handle is the windowing system's identifier for a window (an X window
// id for the X11 backend). It is distinct from the engine's WindowID.
type Handle uint32

// Output is one usable display rectangle.
type Output struct {
	ID     int
	Name   string
	Bounds geometry.Rect
}

type Backend interface {
	// Outputs reports the current display rectangles. Output changes are
	// picked up by the periodic re-layout task, not pushed into the
	// engine.
	Outputs() ([]Output, error)

	// SetWindowBounds moves and resizes the window.
	SetWindowBounds(h Handle, r geometry.Rect) error

	// ShowWindow and HideWindow toggle visibility.
	ShowWindow(h Handle) error
	HideWindow(h Handle) error

	// RaiseWindow brings the window to the top of the stacking order.
	RaiseWindow(h Handle) error

	Close() error
}
