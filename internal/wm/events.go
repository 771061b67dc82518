package wm

import "github.com/latticewm/lattice/internal/geometry"

// Events published on the bus after each mutation commits. Consumers (UI
// chrome, animation layers, the control API feed) subscribe by type; the
// manager does not depend on any of them succeeding.

type EventWindowCreated struct {
	Window WindowSnapshot
}

type EventWindowDestroyed struct {
	ID WindowID
}

type EventWindowFocused struct {
	ID WindowID
}

type EventWindowMoved struct {
	ID     WindowID
	Bounds geometry.Rect
}

type EventWindowResized struct {
	ID     WindowID
	Bounds geometry.Rect
}

type EventWorkspaceSwitched struct {
	From WorkspaceID
	To   WorkspaceID
}

type EventLayoutChanged struct {
	Workspace WorkspaceID
	Policy    string
}

// Event is the uniform envelope published alongside every typed event,
// for consumers that want the whole stream (the control API feed).
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func eventName(ev any) string {
	switch ev.(type) {
	case EventWindowCreated:
		return "window_created"
	case EventWindowDestroyed:
		return "window_destroyed"
	case EventWindowFocused:
		return "window_focused"
	case EventWindowMoved:
		return "window_moved"
	case EventWindowResized:
		return "window_resized"
	case EventWorkspaceSwitched:
		return "workspace_switched"
	case EventLayoutChanged:
		return "layout_changed"
	default:
		return "unknown"
	}
}
