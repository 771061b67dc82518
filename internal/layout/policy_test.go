package layout

import (
	"maps"
	"testing"

	"github.com/latticewm/lattice/internal/geometry"
)

func ids(n int) []WindowID {
	out := make([]WindowID, n)
	for i := range out {
		out[i] = WindowID(i + 1)
	}
	return out
}

func TestGridDimensions(t *testing.T) {
	cases := []struct {
		n, cols, rows int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{2, 2, 1},
		{4, 2, 2},
		{5, 3, 2},
		{9, 3, 3},
		{10, 4, 3},
	}
	for _, tc := range cases {
		cols, rows := GridDimensions(tc.n)
		if cols != tc.cols || rows != tc.rows {
			t.Errorf("GridDimensions(%d) = %d,%d want %d,%d", tc.n, cols, rows, tc.cols, tc.rows)
		}
	}
}

func TestGridFiveWindows(t *testing.T) {
	bounds := geometry.NewRect(0, 0, 1000, 1000)
	rects := Arrange(PolicyGrid, ids(5), bounds, Params{})

	// cols=3 rows=2, cell 333x500; the fifth window sits at cell (1,1).
	want := geometry.Rect{X: 333, Y: 500, Width: 333, Height: 500}
	if got := rects[5]; got != want {
		t.Fatalf("window 5 at %+v, want %+v", got, want)
	}
	if got := rects[1]; got != (geometry.Rect{X: 0, Y: 0, Width: 333, Height: 500}) {
		t.Fatalf("window 1 at %+v", got)
	}
}

func TestGridGapDeflation(t *testing.T) {
	bounds := geometry.NewRect(0, 0, 1000, 1000)
	rects := Arrange(PolicyGrid, ids(4), bounds, Params{Gap: 10})

	want := geometry.Rect{X: 5, Y: 5, Width: 490, Height: 490}
	if got := rects[1]; got != want {
		t.Fatalf("window 1 at %+v, want %+v", got, want)
	}
}

func TestStackingCascade(t *testing.T) {
	bounds := geometry.NewRect(0, 0, 1920, 1080)
	rects := Arrange(PolicyStacking, ids(3), bounds, Params{})

	for i, id := range ids(3) {
		got := rects[id]
		if got.Width != bounds.Width || got.Height != bounds.Height {
			t.Fatalf("window %d size %dx%d, want full bounds", id, got.Width, got.Height)
		}
		if got.X != 20*i || got.Y != 20*i {
			t.Fatalf("window %d offset (%d,%d), want (%d,%d)", id, got.X, got.Y, 20*i, 20*i)
		}
	}
}

func TestSpiralSizesShrinkLinearly(t *testing.T) {
	bounds := geometry.NewRect(0, 0, 1920, 1080)
	windows := ids(5)
	rects := Arrange(PolicySpiral, windows, bounds, Params{})

	if got := rects[1]; got.Width != 300 || got.Height != 300 {
		t.Fatalf("first window %dx%d, want 300x300", got.Width, got.Height)
	}
	if got := rects[5]; got.Width != 200 || got.Height != 200 {
		t.Fatalf("last window %dx%d, want 200x200", got.Width, got.Height)
	}
	// The first window is radius 0, centered.
	center := bounds.Center()
	if got := rects[1]; got.X != center.X-150 || got.Y != center.Y-150 {
		t.Fatalf("first window not centered: %+v", got)
	}
}

func TestGoldenRatioNests(t *testing.T) {
	bounds := geometry.NewRect(0, 0, 1000, 1000)
	rects := Arrange(PolicyGoldenRatio, ids(3), bounds, Params{})

	if got := rects[1]; got != bounds {
		t.Fatalf("first window %+v, want full bounds", got)
	}
	prev := rects[1]
	for _, id := range []WindowID{2, 3} {
		got := rects[id]
		if got.Width >= prev.Width || got.Height >= prev.Height {
			t.Fatalf("window %d (%+v) not smaller than predecessor (%+v)", id, got, prev)
		}
		if got.Intersect(prev) != got {
			t.Fatalf("window %d (%+v) not nested in predecessor (%+v)", id, got, prev)
		}
		prev = got
	}
}

func TestPoliciesAreIdempotent(t *testing.T) {
	bounds := geometry.NewRect(0, 0, 1280, 720)
	tree := buildTree(1, ids(6)...)
	tree.CalculateBounds(bounds)
	params := Params{Gap: 8, Tree: tree}

	for _, policy := range Policies() {
		first := Arrange(policy, ids(6), bounds, params)
		second := Arrange(policy, ids(6), bounds, params)
		if !maps.Equal(first, second) {
			t.Errorf("%s: repeated arrangement differs", policy)
		}
		if len(first) != 6 {
			t.Errorf("%s: %d rects for 6 windows", policy, len(first))
		}
	}
}

func TestParsePolicy(t *testing.T) {
	if _, err := ParsePolicy("grid"); err != nil {
		t.Fatalf("grid must parse: %v", err)
	}
	if _, err := ParsePolicy("quantum"); err == nil {
		t.Fatal("unknown policy must not parse")
	}
}

func TestArrangeEmptyBounds(t *testing.T) {
	tree := buildTree(1, 1, 2)
	tree.CalculateBounds(geometry.Rect{})
	rects := Arrange(PolicyTiled, ids(2), geometry.Rect{}, Params{Tree: tree})
	for id, r := range rects {
		if r.Area() != 0 {
			t.Fatalf("window %d got non-zero area %+v over empty bounds", id, r)
		}
	}
}
