package layout

import (
	"testing"

	"github.com/latticewm/lattice/internal/geometry"
)

// buildTree inserts ids in order, every insertion targeting the leaf of
// the given focused window.
func buildTree(focused WindowID, ids ...WindowID) *Node {
	var root *Node
	for _, id := range ids {
		root = root.Insert(id, focused)
	}
	return root
}

func TestInsertFourWindowsProducesThreeSplits(t *testing.T) {
	root := buildTree(1, 1, 2, 3, 4)

	if got := root.SplitCount(); got != 3 {
		t.Fatalf("expected 3 splits, got %d", got)
	}
	if got := root.WindowCount(); got != 4 {
		t.Fatalf("expected 4 windows, got %d", got)
	}

	bounds := geometry.NewRect(0, 0, 1920, 1080)
	root.CalculateBounds(bounds)

	leaves := root.Leaves()
	if len(leaves) != 4 {
		t.Fatalf("expected 4 leaves, got %d", len(leaves))
	}

	total := 0
	for i, a := range leaves {
		total += a.Bounds.Area()
		for _, b := range leaves[i+1:] {
			if a.Bounds.Overlaps(b.Bounds) {
				t.Fatalf("leaf bounds overlap: %+v and %+v", a.Bounds, b.Bounds)
			}
		}
	}
	if total != bounds.Area() {
		t.Fatalf("leaf areas sum to %d, want %d", total, bounds.Area())
	}
}

func TestInsertAlternatesSplitAxisByDepth(t *testing.T) {
	root := buildTree(1, 1, 2, 3)

	// Depth 0 split is horizontal, the nested one vertical.
	if root.IsLeaf() || !root.Horizontal {
		t.Fatalf("expected horizontal root split, got %+v", root)
	}
	inner := root.Left
	if inner.IsLeaf() || inner.Horizontal {
		t.Fatalf("expected vertical split at depth 1, got %+v", inner)
	}
}

func TestRemoveCollapsesSplitIntoSibling(t *testing.T) {
	root := buildTree(1, 1, 2, 3, 4)

	root = root.Remove(2)
	if root == nil {
		t.Fatal("tree must survive removal")
	}
	if got := root.WindowCount(); got != 3 {
		t.Fatalf("expected 3 windows, got %d", got)
	}
	if got := root.SplitCount(); got != 2 {
		t.Fatalf("expected 2 splits after collapse, got %d", got)
	}
	if root.Find(2) != nil {
		t.Fatal("window 2 still present")
	}
	for _, leaf := range root.Leaves() {
		if leaf.Primary == None && len(leaf.Stacked) == 0 {
			t.Fatal("dangling empty leaf after removal")
		}
	}
}

func TestRemoveLastWindowEmptiesTree(t *testing.T) {
	root := buildTree(1, 1)
	root = root.Remove(1)
	if root != nil {
		t.Fatalf("expected nil tree, got %+v", root)
	}
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	root := buildTree(1, 1, 2)
	root = root.Remove(99)
	if got := root.WindowCount(); got != 2 {
		t.Fatalf("expected 2 windows, got %d", got)
	}
}

func TestInsertDuplicateIsNoop(t *testing.T) {
	root := buildTree(1, 1, 2)
	root = root.Insert(2, 1)
	if got := root.WindowCount(); got != 2 {
		t.Fatalf("expected 2 windows, got %d", got)
	}
}

func TestStackedPromotionOnPrimaryRemoval(t *testing.T) {
	root := buildTree(1, 1, 2)
	if !root.Stack(3, 1) {
		t.Fatal("stack onto window 1 failed")
	}
	if !root.Stack(4, 1) {
		t.Fatal("stack onto window 1 failed")
	}

	leaf := root.Find(1)
	if leaf == nil || len(leaf.Stacked) != 2 {
		t.Fatalf("expected 2 stacked windows, got %+v", leaf)
	}

	// Removing the primary promotes the last stacked window.
	root = root.Remove(1)
	leaf = root.Find(4)
	if leaf == nil || leaf.Primary != 4 {
		t.Fatalf("expected window 4 promoted to primary, got %+v", leaf)
	}
	if len(leaf.Stacked) != 1 || leaf.Stacked[0] != 3 {
		t.Fatalf("expected window 3 to remain stacked, got %+v", leaf.Stacked)
	}
}

func TestWindowsPreOrderPrimaryBeforeStacked(t *testing.T) {
	root := buildTree(1, 1, 2)
	root.Stack(3, 1)

	got := root.Windows()
	want := []WindowID{1, 3, 2}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestBalanceClampsRatio(t *testing.T) {
	// One window left, seven stacked right: raw ratio 1/8 clamps to 0.2.
	root := buildTree(1, 1, 2)
	for id := WindowID(3); id <= 8; id++ {
		root.Stack(id, 2)
	}

	root.Balance()

	var check func(n *Node)
	check = func(n *Node) {
		if n == nil || n.IsLeaf() {
			return
		}
		if n.Ratio < minRatio || n.Ratio > maxRatio {
			t.Fatalf("ratio %v out of [%v, %v]", n.Ratio, minRatio, maxRatio)
		}
		check(n.Left)
		check(n.Right)
	}
	check(root)

	if root.Ratio != minRatio {
		t.Fatalf("expected clamped ratio %v, got %v", minRatio, root.Ratio)
	}
}

func TestCalculateBoundsZeroAreaDegrades(t *testing.T) {
	root := buildTree(1, 1, 2, 3)
	root.CalculateBounds(geometry.Rect{})
	for _, leaf := range root.Leaves() {
		if leaf.Bounds.Area() != 0 {
			t.Fatalf("expected zero-area leaf, got %+v", leaf.Bounds)
		}
	}
}

func TestTilingCompletenessUnderChurn(t *testing.T) {
	bounds := geometry.NewRect(0, 0, 1366, 768)
	var root *Node
	live := map[WindowID]bool{}

	ops := []struct {
		insert bool
		id     WindowID
	}{
		{true, 1}, {true, 2}, {true, 3}, {false, 2}, {true, 4},
		{true, 5}, {false, 1}, {true, 6}, {false, 4}, {true, 7},
	}
	for _, op := range ops {
		if op.insert {
			root = root.Insert(op.id, 0)
			live[op.id] = true
		} else {
			root = root.Remove(op.id)
			delete(live, op.id)
		}

		if root == nil {
			if len(live) != 0 {
				t.Fatalf("tree empty but %d windows live", len(live))
			}
			continue
		}
		root.CalculateBounds(bounds)

		total := 0
		leaves := root.Leaves()
		for i, a := range leaves {
			total += a.Bounds.Area()
			for _, b := range leaves[i+1:] {
				if a.Bounds.Overlaps(b.Bounds) {
					t.Fatalf("overlap after op %+v", op)
				}
			}
		}
		if total != bounds.Area() {
			t.Fatalf("after op %+v: leaf areas sum to %d, want %d", op, total, bounds.Area())
		}
		if root.WindowCount() != len(live) {
			t.Fatalf("after op %+v: %d windows in tree, want %d", op, root.WindowCount(), len(live))
		}
	}
}
