// Package binpack implements Lightmaps-style binary-tree rectangle
// packing over a fixed canvas.
//
// The tree lives in a flat node arena indexed by integer handles, so
// repacking is a single arena reset and insertion never recurses,
// keeping pathological inputs from growing the call stack.
package binpack

// Rect is a placed rectangle inside the canvas.
type Rect struct {
	X, Y          int
	Width, Height int
}

// node is one region of the canvas. A node is either a leaf (children
// are -1) that may hold one placed rectangle, or it is split into two
// child regions.
type node struct {
	children [2]int32
	rect     Rect
	occupied bool
}

// Tree packs rectangles into a fixed-size canvas.
//
// Invariant: the occupied leaves' rectangles are pairwise non-overlapping
// and each lies fully inside the canvas.
type Tree struct {
	nodes  []node
	width  int
	height int
	fit    int
}

// New creates an empty tree over a width x height canvas. fit is the
// placement tolerance: a leaf whose slack in both dimensions is at most
// fit accepts the rectangle instead of splitting further.
func New(width, height, fit int) *Tree {
	if fit < 0 {
		fit = 0
	}
	t := &Tree{width: width, height: height, fit: fit}
	t.Reset()
	return t
}

// Reset discards all placements, making the whole canvas available.
// Repacking the same set is just Reset plus re-insertion.
func (t *Tree) Reset() {
	t.nodes = t.nodes[:0]
	t.nodes = append(t.nodes, node{
		children: [2]int32{-1, -1},
		rect:     Rect{Width: t.width, Height: t.height},
	})
}

// Insert finds room for a width x height rectangle and marks it
// occupied. The boolean is false when no free region can hold it.
//
// The walk distinguishes internally between "this leaf is taken, try
// the sibling" and "nothing fits anywhere"; callers only see whether a
// placement was found.
func (t *Tree) Insert(width, height int) (Rect, bool) {
	if width <= 0 || height <= 0 || width > t.width || height > t.height {
		return Rect{}, false
	}

	stack := make([]int32, 0, 32)
	stack = append(stack, 0)

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[i]

		if n.children[0] >= 0 {
			// Internal node: try the first child before the second.
			stack = append(stack, n.children[1], n.children[0])
			continue
		}
		if n.occupied {
			continue
		}
		if width > n.rect.Width || height > n.rect.Height {
			continue
		}

		dw := n.rect.Width - width
		dh := n.rect.Height - height
		if dw <= t.fit && dh <= t.fit {
			n.occupied = true
			return n.rect, true
		}

		// Split along the larger-slack axis so children stay as square
		// as possible, then keep descending into the first child.
		var first, second Rect
		if dw > dh {
			first = Rect{X: n.rect.X, Y: n.rect.Y, Width: width, Height: n.rect.Height}
			second = Rect{X: n.rect.X + width, Y: n.rect.Y, Width: dw, Height: n.rect.Height}
		} else {
			first = Rect{X: n.rect.X, Y: n.rect.Y, Width: n.rect.Width, Height: height}
			second = Rect{X: n.rect.X, Y: n.rect.Y + height, Width: n.rect.Width, Height: dh}
		}

		ci := int32(len(t.nodes))
		t.nodes = append(t.nodes,
			node{children: [2]int32{-1, -1}, rect: first},
			node{children: [2]int32{-1, -1}, rect: second},
		)
		// The append may have moved the arena; re-take the parent.
		t.nodes[i].children = [2]int32{ci, ci + 1}

		stack = append(stack, ci)
	}

	return Rect{}, false
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }
