// Package geometry holds the integer screen-space value types shared by the
// layout engine. Rectangles are axis-aligned with non-negative extents.
package geometry

type Point struct {
	X int
	Y int
}

type Size struct {
	Width  int
	Height int
}

// Rect is an axis-aligned rectangle in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func NewRect(x, y, w, h int) Rect {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return Rect{X: x, Y: y, Width: w, Height: h}
}

func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

func (r Rect) Area() int {
	return r.Width * r.Height
}

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the midpoint, rounded toward the origin.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// SplitH divides r into left and right parts at the given ratio of its
// width. The left part gets floor(ratio*width); the right part takes the
// remainder so the two exactly tile r.
func (r Rect) SplitH(ratio float32) (left, right Rect) {
	lw := int(float32(r.Width) * ratio)
	if lw < 0 {
		lw = 0
	}
	if lw > r.Width {
		lw = r.Width
	}
	left = Rect{X: r.X, Y: r.Y, Width: lw, Height: r.Height}
	right = Rect{X: r.X + lw, Y: r.Y, Width: r.Width - lw, Height: r.Height}
	return left, right
}

// SplitV divides r into top and bottom parts at the given ratio of its
// height, remainder rows going to the bottom part.
func (r Rect) SplitV(ratio float32) (top, bottom Rect) {
	th := int(float32(r.Height) * ratio)
	if th < 0 {
		th = 0
	}
	if th > r.Height {
		th = r.Height
	}
	top = Rect{X: r.X, Y: r.Y, Width: r.Width, Height: th}
	bottom = Rect{X: r.X, Y: r.Y + th, Width: r.Width, Height: r.Height - th}
	return top, bottom
}

// Deflate shrinks r by margin on every side, clamping extents at zero.
// The origin never moves past the center.
func (r Rect) Deflate(margin int) Rect {
	if margin <= 0 {
		return r
	}
	out := Rect{
		X:      r.X + margin,
		Y:      r.Y + margin,
		Width:  r.Width - 2*margin,
		Height: r.Height - 2*margin,
	}
	if out.Width < 0 {
		out.X = r.X + r.Width/2
		out.Width = 0
	}
	if out.Height < 0 {
		out.Y = r.Y + r.Height/2
		out.Height = 0
	}
	return out
}

// Offset translates r by (dx, dy).
func (r Rect) Offset(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func (r Rect) Overlaps(o Rect) bool {
	return !r.Intersect(o).Empty()
}
