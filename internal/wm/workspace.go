package wm

import (
	"github.com/latticewm/lattice/internal/geometry"
	"github.com/latticewm/lattice/internal/layout"
)

// WorkspaceID identifies a workspace; allocated by the manager.
type WorkspaceID uint64

// NoOutput marks a workspace not pinned to any display.
const NoOutput = -1

// Workspace binds one Layout to the authoritative membership list. The
// focus pointer is always None or a member of windows; the layout only
// ever places ids drawn from windows.
type Workspace struct {
	ID      WorkspaceID
	UUID    string
	Name    string
	Layout  *layout.Layout
	Output  int
	Active  bool
	Visible bool

	windows []WindowID
	focused WindowID
}

func newWorkspace(id WorkspaceID, name string, policy layout.Policy, bounds geometry.Rect, opts layout.Options) *Workspace {
	return &Workspace{
		ID:     id,
		Name:   name,
		Layout: layout.New(policy, bounds, opts),
		Output: NoOutput,
	}
}

func (ws *Workspace) Windows() []WindowID {
	out := make([]WindowID, len(ws.windows))
	copy(out, ws.windows)
	return out
}

func (ws *Workspace) Focused() WindowID { return ws.focused }

func (ws *Workspace) contains(id WindowID) bool {
	for _, w := range ws.windows {
		if w == id {
			return true
		}
	}
	return false
}

// addWindow appends id to the membership and inserts it into the layout
// under the given mode. The first window of an unfocused workspace grabs
// focus; later additions do not steal it.
func (ws *Workspace) addWindow(id WindowID, mode layout.Mode) {
	if id == layout.None || ws.contains(id) {
		return
	}
	ws.windows = append(ws.windows, id)
	switch mode {
	case layout.ModeFloating:
		ws.Layout.AddFloating(id)
	case layout.ModeFullscreen:
		ws.Layout.AddFullscreen(id)
	default:
		ws.Layout.Add(id)
	}
	if ws.focused == layout.None {
		ws.focusWindow(id)
	}
}

// removeWindow drops id from the membership and the layout. When it was
// focused, focus falls back to the last remaining window.
func (ws *Workspace) removeWindow(id WindowID) bool {
	if !ws.contains(id) {
		return false
	}
	for i, w := range ws.windows {
		if w == id {
			ws.windows = append(ws.windows[:i], ws.windows[i+1:]...)
			break
		}
	}
	ws.Layout.Remove(id)
	if ws.focused == id {
		ws.focused = layout.None
		if n := len(ws.windows); n > 0 {
			ws.focusWindow(ws.windows[n-1])
		}
	}
	return true
}

// focusWindow points focus at id; ids outside the membership are ignored.
// The layout is told so tiled insertion targets the focused leaf.
func (ws *Workspace) focusWindow(id WindowID) bool {
	if !ws.contains(id) {
		return false
	}
	ws.focused = id
	ws.Layout.Focus(id)
	return true
}

// setPolicy swaps the arrangement policy, rebuilding the layout from the
// membership order so no stale geometry survives.
func (ws *Workspace) setPolicy(policy layout.Policy) {
	ws.Layout.SetPolicy(policy, ws.windows)
	if ws.focused != layout.None {
		ws.Layout.Focus(ws.focused)
	}
}

func (ws *Workspace) snapshot() WorkspaceSnapshot {
	return WorkspaceSnapshot{
		ID:      ws.ID,
		UUID:    ws.UUID,
		Name:    ws.Name,
		Policy:  string(ws.Layout.Policy()),
		Windows: ws.Windows(),
		Focused: ws.focused,
		Active:  ws.Active,
		Visible: ws.Visible,
		Bounds:  ws.Layout.Bounds(),
	}
}

// WorkspaceSnapshot is the copy handed out to observers.
type WorkspaceSnapshot struct {
	ID      WorkspaceID   `json:"id"`
	UUID    string        `json:"uuid,omitempty"`
	Name    string        `json:"name"`
	Policy  string        `json:"policy"`
	Windows []WindowID    `json:"windows"`
	Focused WindowID      `json:"focused,omitempty"`
	Active  bool          `json:"active"`
	Visible bool          `json:"visible"`
	Bounds  geometry.Rect `json:"bounds"`
}
