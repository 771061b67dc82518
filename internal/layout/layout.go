// Package layout implements the tiling engine: a binary partition tree,
// a registry of pure arrangement policies, and the Layout container that
// keeps tiled, floating and fullscreen windows mutually exclusive.
package layout

import "github.com/latticewm/lattice/internal/geometry"

// Mode says which container of a Layout holds a window.
type Mode int

const (
	ModeNone Mode = iota
	ModeTiled
	ModeFloating
	ModeFullscreen
)

func (m Mode) String() string {
	switch m {
	case ModeTiled:
		return "tiled"
	case ModeFloating:
		return "floating"
	case ModeFullscreen:
		return "fullscreen"
	default:
		return "none"
	}
}

// Options are the arrangement knobs a Layout carries.
type Options struct {
	Gap         int
	Border      int
	AutoBalance bool
	SmartGaps   bool
}

// Layout owns one partition tree plus the flat floating and fullscreen
// lists. A window id lives in exactly one of the three at a time; every
// mutation below preserves that.
type Layout struct {
	policy     Policy
	tree       *Node
	floating   []WindowID
	fullscreen []WindowID
	focused    WindowID
	bounds     geometry.Rect
	opts       Options
}

func New(policy Policy, bounds geometry.Rect, opts Options) *Layout {
	return &Layout{policy: policy, bounds: bounds, opts: opts}
}

func (l *Layout) Policy() Policy          { return l.policy }
func (l *Layout) Bounds() geometry.Rect   { return l.bounds }
func (l *Layout) Options() Options        { return l.opts }
func (l *Layout) Focused() WindowID       { return l.focused }
func (l *Layout) Tree() *Node             { return l.tree }
func (l *Layout) Floating() []WindowID    { return l.floating }
func (l *Layout) Fullscreen() []WindowID  { return l.fullscreen }
func (l *Layout) SetOptions(opts Options) { l.opts = opts }

func (l *Layout) SetBounds(bounds geometry.Rect) {
	l.bounds = bounds
}

// Add inserts id into the tiling tree at the focused leaf. Ids already
// present anywhere in the layout are left where they are.
func (l *Layout) Add(id WindowID) {
	if id == None || l.Mode(id) != ModeNone {
		return
	}
	l.tree = l.tree.Insert(id, l.focused)
}

// AddFloating inserts id as a floating window.
func (l *Layout) AddFloating(id WindowID) {
	if id == None || l.Mode(id) != ModeNone {
		return
	}
	l.floating = append(l.floating, id)
}

// AddFullscreen inserts id as a fullscreen window.
func (l *Layout) AddFullscreen(id WindowID) {
	if id == None || l.Mode(id) != ModeNone {
		return
	}
	l.fullscreen = append(l.fullscreen, id)
}

// Remove deletes id from whichever container holds it. Unknown ids are a
// no-op. The focus pointer is left to the owning Workspace to repair.
func (l *Layout) Remove(id WindowID) {
	switch l.Mode(id) {
	case ModeTiled:
		l.tree = l.tree.Remove(id)
	case ModeFloating:
		l.floating = removeID(l.floating, id)
	case ModeFullscreen:
		l.fullscreen = removeID(l.fullscreen, id)
	}
	if l.focused == id {
		l.focused = None
	}
}

// SetMode moves id between the tiled tree and the flat lists. Moving to
// the mode it is already in, or moving an unknown id, is a no-op.
func (l *Layout) SetMode(id WindowID, mode Mode) bool {
	current := l.Mode(id)
	if current == ModeNone || current == mode || mode == ModeNone {
		return false
	}
	l.Remove(id)
	switch mode {
	case ModeTiled:
		l.Add(id)
	case ModeFloating:
		l.AddFloating(id)
	case ModeFullscreen:
		l.AddFullscreen(id)
	}
	return true
}

// Mode reports which container holds id.
func (l *Layout) Mode(id WindowID) Mode {
	if id == None {
		return ModeNone
	}
	if l.tree.Find(id) != nil {
		return ModeTiled
	}
	for _, w := range l.floating {
		if w == id {
			return ModeFloating
		}
	}
	for _, w := range l.fullscreen {
		if w == id {
			return ModeFullscreen
		}
	}
	return ModeNone
}

// Focus records id as focused so tiled insertion targets its leaf.
// Unknown ids are ignored.
func (l *Layout) Focus(id WindowID) {
	if l.Mode(id) == ModeNone {
		return
	}
	l.focused = id
}

// Windows enumerates every window: tree pre-order first (the focus-cycle
// contract), then floating, then fullscreen in list order.
func (l *Layout) Windows() []WindowID {
	out := l.tree.Windows()
	out = append(out, l.floating...)
	out = append(out, l.fullscreen...)
	return out
}

// SetPolicy switches the arrangement policy and rebuilds the tree from the
// given membership order so no stale geometry survives the switch.
func (l *Layout) SetPolicy(policy Policy, members []WindowID) {
	l.policy = policy
	l.Rebuild(members)
}

// Rebuild re-populates the tiling tree from scratch. Members currently
// floating or fullscreen keep their mode; everything else is re-inserted
// in the given order, each insertion targeting the previous one so the
// tree's pre-order matches the membership order. The previously focused
// window stays focused when still present.
func (l *Layout) Rebuild(members []WindowID) {
	focused := l.focused
	l.tree = nil
	cursor := None
	for _, id := range members {
		switch l.modeFlat(id) {
		case ModeFloating, ModeFullscreen:
		default:
			l.tree = l.tree.Insert(id, cursor)
			cursor = id
		}
	}
	l.focused = None
	l.Focus(focused)
}

// modeFlat is Mode without consulting the tree (used mid-rebuild).
func (l *Layout) modeFlat(id WindowID) Mode {
	for _, w := range l.floating {
		if w == id {
			return ModeFloating
		}
	}
	for _, w := range l.fullscreen {
		if w == id {
			return ModeFullscreen
		}
	}
	return ModeNone
}

// Arrange computes a rectangle for every window whose geometry this layout
// owns: tiled windows through the active policy and fullscreen windows at
// the full workspace bounds. Floating windows are absent from the result;
// their geometry is set directly by the caller. Arranging over empty
// bounds degrades to zero-area rectangles.
func (l *Layout) Arrange() map[WindowID]geometry.Rect {
	gap := l.opts.Gap
	tiled := l.tree.Windows()
	if l.opts.SmartGaps && len(tiled) == 1 {
		gap = 0
	}

	if l.opts.AutoBalance {
		l.tree.Balance()
	}
	l.tree.CalculateBounds(l.bounds)

	out := Arrange(l.policy, tiled, l.bounds, Params{Gap: gap, Tree: l.tree})
	for _, id := range l.fullscreen {
		out[id] = l.bounds
	}
	return out
}

func removeID(ids []WindowID, id WindowID) []WindowID {
	for i, w := range ids {
		if w == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
