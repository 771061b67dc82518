package layout

import (
	"fmt"
	"math"

	"github.com/latticewm/lattice/internal/geometry"
)

// Policy names one arrangement recipe. Every policy is a pure function of
// the ordered membership and the workspace bounds; re-running one on
// unchanged input yields bit-identical rectangles.
type Policy string

const (
	PolicyTiled       Policy = "tiled"
	PolicyGrid        Policy = "grid"
	PolicyStacking    Policy = "stacking"
	PolicySpiral      Policy = "spiral"
	PolicyGoldenRatio Policy = "golden-ratio"
	PolicyCentered    Policy = "centered"
)

// ParsePolicy validates a policy name from config or the control API.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(s)
	if _, ok := policies[p]; !ok {
		return "", fmt.Errorf("unknown layout policy %q", s)
	}
	return p, nil
}

func Policies() []Policy {
	return []Policy{
		PolicyTiled,
		PolicyGrid,
		PolicyStacking,
		PolicySpiral,
		PolicyGoldenRatio,
		PolicyCentered,
	}
}

// Params carries the inputs an arrange function may consult besides the
// window order and bounds. Tree is only read by the tiled policy.
type Params struct {
	Gap  int
	Tree *Node
}

// ArrangeFunc computes a rectangle for every window id. Implementations
// must be deterministic and must not retain state between calls.
type ArrangeFunc func(ids []WindowID, bounds geometry.Rect, p Params) map[WindowID]geometry.Rect

var policies = map[Policy]ArrangeFunc{
	PolicyTiled:       arrangeTiled,
	PolicyGrid:        arrangeGrid,
	PolicyStacking:    arrangeStacking,
	PolicySpiral:      arrangeSpiral,
	PolicyGoldenRatio: arrangeGolden,
	PolicyCentered:    arrangeCentered,
}

// Arrange dispatches to the registered policy. Unknown policies fall back
// to tiled rather than failing; a wrong-but-visible arrangement beats none.
func Arrange(policy Policy, ids []WindowID, bounds geometry.Rect, p Params) map[WindowID]geometry.Rect {
	fn, ok := policies[policy]
	if !ok {
		fn = arrangeTiled
	}
	return fn(ids, bounds, p)
}

// arrangeTiled reads the partition tree's leaf bounds and deflates each by
// half the gap on every side. The tree's CalculateBounds must have run
// against the same bounds beforehand; the Layout container guarantees it.
func arrangeTiled(ids []WindowID, bounds geometry.Rect, p Params) map[WindowID]geometry.Rect {
	out := make(map[WindowID]geometry.Rect, len(ids))
	if p.Tree == nil {
		return out
	}
	for _, leaf := range p.Tree.Leaves() {
		r := leaf.Bounds.Deflate(p.Gap / 2)
		if leaf.Primary != None {
			out[leaf.Primary] = r
		}
		for _, w := range leaf.Stacked {
			out[w] = r
		}
	}
	return out
}

// GridDimensions returns the cell grid for n windows: columns are the
// ceiling of the square root, rows whatever is needed to hold the rest.
func GridDimensions(n int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = int(math.Ceil(float64(n) / float64(cols)))
	return cols, rows
}

func arrangeGrid(ids []WindowID, bounds geometry.Rect, p Params) map[WindowID]geometry.Rect {
	out := make(map[WindowID]geometry.Rect, len(ids))
	cols, rows := GridDimensions(len(ids))
	if cols == 0 {
		return out
	}
	cellW := bounds.Width / cols
	cellH := bounds.Height / rows
	for i, id := range ids {
		col := i % cols
		row := i / cols
		cell := geometry.Rect{
			X:      bounds.X + col*cellW,
			Y:      bounds.Y + row*cellH,
			Width:  cellW,
			Height: cellH,
		}
		out[id] = cell.Deflate(p.Gap / 2)
	}
	return out
}

// arrangeStacking gives every window the full bounds, cascaded by 20px per
// index so each window's edge stays grabbable. Highest index is topmost.
func arrangeStacking(ids []WindowID, bounds geometry.Rect, _ Params) map[WindowID]geometry.Rect {
	const step = 20
	out := make(map[WindowID]geometry.Rect, len(ids))
	for i, id := range ids {
		out[id] = bounds.Offset(step*i, step*i)
	}
	return out
}

func arrangeSpiral(ids []WindowID, bounds geometry.Rect, _ Params) map[WindowID]geometry.Rect {
	out := make(map[WindowID]geometry.Rect, len(ids))
	n := len(ids)
	if n == 0 {
		return out
	}
	center := bounds.Center()
	rMax := 0.4 * float64(min(bounds.Width, bounds.Height))
	for i, id := range ids {
		theta := 2 * math.Pi * float64(i) / float64(n)
		radius := rMax * float64(i) / float64(n)
		size := 300
		if n > 1 {
			size = 300 - 100*i/(n-1)
		}
		cx := center.X + int(radius*math.Cos(theta))
		cy := center.Y + int(radius*math.Sin(theta))
		out[id] = geometry.Rect{X: cx - size/2, Y: cy - size/2, Width: size, Height: size}
	}
	return out
}

const phi = 1.618033988749

// arrangeGolden nests progressively smaller rectangles, window i centered
// at scale phi^-i.
func arrangeGolden(ids []WindowID, bounds geometry.Rect, _ Params) map[WindowID]geometry.Rect {
	out := make(map[WindowID]geometry.Rect, len(ids))
	for i, id := range ids {
		scale := math.Pow(phi, -float64(i))
		out[id] = centeredScale(bounds, scale)
	}
	return out
}

// arrangeCentered shrinks windows toward the middle of the workspace,
// window i centered at scale 0.9^i.
func arrangeCentered(ids []WindowID, bounds geometry.Rect, _ Params) map[WindowID]geometry.Rect {
	out := make(map[WindowID]geometry.Rect, len(ids))
	for i, id := range ids {
		scale := math.Pow(0.9, float64(i))
		out[id] = centeredScale(bounds, scale)
	}
	return out
}

func centeredScale(bounds geometry.Rect, scale float64) geometry.Rect {
	w := int(float64(bounds.Width) * scale)
	h := int(float64(bounds.Height) * scale)
	return geometry.Rect{
		X:      bounds.X + (bounds.Width-w)/2,
		Y:      bounds.Y + (bounds.Height-h)/2,
		Width:  w,
		Height: h,
	}
}
