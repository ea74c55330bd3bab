package logtree

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxRoots is how many root-level entries the log keeps before the
// oldest root (and its subtree) is evicted.
const DefaultMaxRoots = 50

// TimestampLayout renders Node.Timestamp as hours:minutes:seconds.
const TimestampLayout = "15:04:05"

// Node is one logged action.
type Node struct {
	ID        string
	Label     string
	Timestamp time.Time

	// HistoryRef is the id of the history entry appended by the same action.
	// Empty for actions that did not append one (saves).
	HistoryRef string

	Expanded bool

	children []*Node
	parent   *Node
}

func (n *Node) Children() []*Node { return slices.Clone(n.children) }
func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) HasChildren() bool { return len(n.children) > 0 }

func (n *Node) TimestampText() string { return n.Timestamp.Format(TimestampLayout) }

// Tree is a forest of log nodes. Not safe for concurrent use.
type Tree struct {
	roots    []*Node
	maxRoots int
	now      func() time.Time
}

type Option func(*Tree)

// WithMaxRoots overrides DefaultMaxRoots. n <= 0 keeps the default.
func WithMaxRoots(n int) Option {
	return func(t *Tree) {
		if n > 0 {
			t.maxRoots = n
		}
	}
}

// WithClock sets the time source for new node timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tree) {
		if now != nil {
			t.now = now
		}
	}
}

func New(opts ...Option) *Tree {
	t := &Tree{maxRoots: DefaultMaxRoots, now: time.Now}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Tree) MaxRoots() int { return t.maxRoots }

func (t *Tree) Roots() []*Node { return slices.Clone(t.roots) }

// Log records a new action. When parent is non-nil and still part of the
// tree the node is appended as its last child and the parent is expanded;
// otherwise it becomes the newest root. Roots evicted by the capacity bound
// are returned oldest first.
func (t *Tree) Log(label, historyRef string, parent *Node) (*Node, []*Node) {
	n := &Node{
		ID:         uuid.NewString(),
		Label:      label,
		Timestamp:  t.now(),
		HistoryRef: historyRef,
	}

	if parent != nil && t.Contains(parent) {
		n.parent = parent
		parent.children = append(parent.children, n)
		parent.Expanded = true
	} else {
		t.roots = append(t.roots, n)
	}

	var evicted []*Node
	for len(t.roots) > t.maxRoots {
		old := t.roots[0]
		t.roots = slices.Delete(t.roots, 0, 1)
		evicted = append(evicted, old)
	}
	return n, evicted
}

// Rename replaces the label in place. An empty label is ignored; any other
// text, whitespace included, is kept as given.
func (t *Tree) Rename(n *Node, label string) bool {
	if n == nil || label == "" {
		return false
	}
	if !t.Contains(n) {
		return false
	}
	n.Label = label
	return true
}

// Remove detaches n (and its subtree) from the forest.
func (t *Tree) Remove(n *Node) bool {
	if n == nil || !t.Contains(n) {
		return false
	}
	if p := n.parent; p != nil {
		i := slices.Index(p.children, n)
		if i < 0 {
			return false
		}
		p.children = slices.Delete(p.children, i, i+1)
		n.parent = nil
		return true
	}
	i := slices.Index(t.roots, n)
	if i < 0 {
		return false
	}
	t.roots = slices.Delete(t.roots, i, i+1)
	return true
}

func (t *Tree) SetExpanded(n *Node, expanded bool) {
	if n != nil {
		n.Expanded = expanded
	}
}

// Walk visits nodes in pre-order (parent first, siblings left to right).
// Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	var walk func(n *Node, depth int) bool
	walk = func(n *Node, depth int) bool {
		if !fn(n, depth) {
			return false
		}
		for _, ch := range n.children {
			if !walk(ch, depth+1) {
				return false
			}
		}
		return true
	}
	for _, r := range t.roots {
		if !walk(r, 0) {
			return
		}
	}
}

func (t *Tree) PreOrder() []*Node {
	var out []*Node
	t.Walk(func(n *Node, _ int) bool {
		out = append(out, n)
		return true
	})
	return out
}

// PreOrderIndex returns n's zero-based position in a pre-order traversal of
// the whole forest, or -1 when n is not in the tree.
func (t *Tree) PreOrderIndex(n *Node) int {
	if n == nil {
		return -1
	}
	idx, i := -1, 0
	t.Walk(func(x *Node, _ int) bool {
		if x == n {
			idx = i
			return false
		}
		i++
		return true
	})
	return idx
}

func (t *Tree) Find(id string) *Node {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	var found *Node
	t.Walk(func(n *Node, _ int) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Contains reports whether n is reachable from one of the current roots.
func (t *Tree) Contains(n *Node) bool {
	if n == nil {
		return false
	}
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return slices.Contains(t.roots, root)
}

// Len is the total number of nodes in the forest.
func (t *Tree) Len() int {
	c := 0
	t.Walk(func(*Node, int) bool {
		c++
		return true
	})
	return c
}

func (t *Tree) Reset() { t.roots = nil }
