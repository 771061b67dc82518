package layout

import "github.com/latticewm/lattice/internal/geometry"

// WindowID identifies a managed window. IDs are allocated by the window
// manager and are never reused while it is alive; 0 is never a valid id.
type WindowID uint64

// None is the absent window id.
const None WindowID = 0

const (
	minRatio = 0.2
	maxRatio = 0.8
)

// Node is one node of the binary partition tree. A node with children is a
// split; a node without children is a leaf holding at most one primary
// window plus any number of stacked windows sharing the leaf's region.
// Bounds is a cache written by CalculateBounds, never an input.
type Node struct {
	Horizontal bool
	Ratio      float32
	Left       *Node
	Right      *Node

	Primary WindowID
	Stacked []WindowID

	Bounds geometry.Rect
}

func newLeaf(id WindowID) *Node {
	return &Node{Primary: id}
}

func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Insert places id into the tree and returns the new root. The target leaf
// is the one holding focused, falling back to the first leaf. A leaf with a
// free primary slot takes the window directly; otherwise the leaf is
// demoted into a split whose axis alternates with tree depth (even depth
// splits horizontally). Inserting into a nil tree yields a single leaf.
// Inserting an id already present is a no-op.
func (n *Node) Insert(id WindowID, focused WindowID) *Node {
	if id == None {
		return n
	}
	if n == nil {
		return newLeaf(id)
	}
	if n.Find(id) != nil {
		return n
	}

	target := n.Find(focused)
	if target == nil || !target.IsLeaf() {
		target = n.firstLeaf()
	}
	if target == nil {
		// Degenerate tree with no leaves; rebuild as a single leaf.
		return newLeaf(id)
	}

	if target.Primary == None {
		target.Primary = id
		return n
	}

	depth := n.depthOf(target, 0)
	old := target.Primary
	stacked := target.Stacked

	// Demote the leaf into a split: the old primary keeps one child, the
	// inserted window becomes primary of the new sibling leaf.
	target.Horizontal = depth%2 == 0
	target.Ratio = 0.5
	target.Left = &Node{Primary: old, Stacked: stacked}
	target.Right = newLeaf(id)
	target.Primary = None
	target.Stacked = nil
	return n
}

// Remove deletes id from the tree and returns the new root (nil when the
// tree becomes empty). Removing a stacked window pops it; removing a
// primary promotes the last stacked window, and an emptied leaf collapses
// its parent split into the sibling subtree. Unknown ids are a no-op.
func (n *Node) Remove(id WindowID) *Node {
	if n == nil || id == None {
		return n
	}
	if n.IsLeaf() {
		if !n.take(id) {
			return n
		}
		if n.Primary == None && len(n.Stacked) == 0 {
			return nil
		}
		return n
	}

	n.Left = n.Left.Remove(id)
	n.Right = n.Right.Remove(id)
	if n.Left == nil {
		return n.Right
	}
	if n.Right == nil {
		return n.Left
	}
	return n
}

// take removes id from this leaf, promoting the last stacked window when
// the primary goes away. Reports whether the leaf held id.
func (n *Node) take(id WindowID) bool {
	if n.Primary == id {
		if k := len(n.Stacked); k > 0 {
			n.Primary = n.Stacked[k-1]
			n.Stacked = n.Stacked[:k-1]
		} else {
			n.Primary = None
		}
		return true
	}
	for i, w := range n.Stacked {
		if w == id {
			n.Stacked = append(n.Stacked[:i], n.Stacked[i+1:]...)
			return true
		}
	}
	return false
}

// Stack appends id to the leaf currently holding target, sharing that
// leaf's region instead of splitting it. Reports whether target was found.
func (n *Node) Stack(id WindowID, target WindowID) bool {
	leaf := n.Find(target)
	if leaf == nil || !leaf.IsLeaf() || id == None {
		return false
	}
	if n.Find(id) != nil {
		return false
	}
	if leaf.Primary == None {
		leaf.Primary = id
	} else {
		leaf.Stacked = append(leaf.Stacked, id)
	}
	return true
}

// CalculateBounds assigns bounds top-down: a split divides its rectangle at
// Ratio along its axis, remainder pixels going to the second child, so the
// children exactly tile the parent. A zero-area input degrades to
// zero-area leaves without error.
func (n *Node) CalculateBounds(r geometry.Rect) {
	if n == nil {
		return
	}
	n.Bounds = r
	if n.IsLeaf() {
		return
	}
	var first, second geometry.Rect
	if n.Horizontal {
		first, second = r.SplitH(n.Ratio)
	} else {
		first, second = r.SplitV(n.Ratio)
	}
	n.Left.CalculateBounds(first)
	n.Right.CalculateBounds(second)
}

// Balance recomputes every split's ratio bottom-up from the window counts
// of its subtrees, clamped to [0.2, 0.8].
func (n *Node) Balance() {
	if n == nil || n.IsLeaf() {
		return
	}
	n.Left.Balance()
	n.Right.Balance()

	l := n.Left.WindowCount()
	r := n.Right.WindowCount()
	if l+r == 0 {
		n.Ratio = 0.5
		return
	}
	n.Ratio = clampRatio(float32(l) / float32(l+r))
}

func clampRatio(r float32) float32 {
	if r < minRatio {
		return minRatio
	}
	if r > maxRatio {
		return maxRatio
	}
	return r
}

// Find returns the leaf holding id, or nil.
func (n *Node) Find(id WindowID) *Node {
	if n == nil || id == None {
		return nil
	}
	if n.IsLeaf() {
		if n.Primary == id {
			return n
		}
		for _, w := range n.Stacked {
			if w == id {
				return n
			}
		}
		return nil
	}
	if f := n.Left.Find(id); f != nil {
		return f
	}
	return n.Right.Find(id)
}

// Windows enumerates every window pre-order, primary before stacked within
// a leaf. This order is the focus-cycling contract.
func (n *Node) Windows() []WindowID {
	if n == nil {
		return nil
	}
	var out []WindowID
	n.walk(func(leaf *Node) {
		if leaf.Primary != None {
			out = append(out, leaf.Primary)
		}
		out = append(out, leaf.Stacked...)
	})
	return out
}

// Leaves enumerates every leaf pre-order.
func (n *Node) Leaves() []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	n.walk(func(leaf *Node) { out = append(out, leaf) })
	return out
}

func (n *Node) walk(fn func(leaf *Node)) {
	if n.IsLeaf() {
		fn(n)
		return
	}
	n.Left.walk(fn)
	n.Right.walk(fn)
}

func (n *Node) WindowCount() int {
	count := 0
	n.walkCount(&count)
	return count
}

func (n *Node) walkCount(count *int) {
	if n == nil {
		return
	}
	if n.IsLeaf() {
		if n.Primary != None {
			*count++
		}
		*count += len(n.Stacked)
		return
	}
	n.Left.walkCount(count)
	n.Right.walkCount(count)
}

// SplitCount returns the number of split nodes in the tree.
func (n *Node) SplitCount() int {
	if n == nil || n.IsLeaf() {
		return 0
	}
	return 1 + n.Left.SplitCount() + n.Right.SplitCount()
}

func (n *Node) firstLeaf() *Node {
	if n == nil {
		return nil
	}
	if n.IsLeaf() {
		return n
	}
	return n.Left.firstLeaf()
}

// depthOf returns the depth of target below n, or -1 when absent.
func (n *Node) depthOf(target *Node, depth int) int {
	if n == nil {
		return -1
	}
	if n == target {
		return depth
	}
	if d := n.Left.depthOf(target, depth+1); d >= 0 {
		return d
	}
	return n.Right.depthOf(target, depth+1)
}
