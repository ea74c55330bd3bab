package logtree

import "time"

// NodeView is a detached, serializable copy of a node and its subtree.
type NodeView struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Timestamp  time.Time  `json:"timestamp"`
	Time       string     `json:"time"`
	HistoryRef string     `json:"historyRef,omitempty"`
	Expanded   bool       `json:"expanded"`
	Children   []NodeView `json:"children,omitempty"`
}

// Snapshot copies the forest so it can be handed to code that must not
// mutate the live tree.
func (t *Tree) Snapshot() []NodeView {
	var conv func(n *Node) NodeView
	conv = func(n *Node) NodeView {
		v := NodeView{
			ID:         n.ID,
			Label:      n.Label,
			Timestamp:  n.Timestamp,
			Time:       n.TimestampText(),
			HistoryRef: n.HistoryRef,
			Expanded:   n.Expanded,
		}
		for _, ch := range n.children {
			v.Children = append(v.Children, conv(ch))
		}
		return v
	}
	out := make([]NodeView, 0, len(t.roots))
	for _, r := range t.roots {
		out = append(out, conv(r))
	}
	return out
}

// Row is one visible line of a flattened forest.
type Row struct {
	Node        NodeView
	Depth       int
	HasChildren bool
	Collapsed   bool
	// Index is the node's pre-order position in the full forest, including
	// nodes hidden under collapsed parents.
	Index int
}

// Flatten turns a snapshot into display rows. Children of collapsed nodes
// are skipped but still counted towards Index.
func Flatten(views []NodeView) []Row {
	var out []Row
	idx := 0
	var walk func(v NodeView, depth int, hidden bool)
	walk = func(v NodeView, depth int, hidden bool) {
		if !hidden {
			out = append(out, Row{
				Node:        v,
				Depth:       depth,
				HasChildren: len(v.Children) > 0,
				Collapsed:   len(v.Children) > 0 && !v.Expanded,
				Index:       idx,
			})
		}
		idx++
		for _, ch := range v.Children {
			walk(ch, depth+1, hidden || !v.Expanded)
		}
	}
	for _, r := range views {
		walk(r, 0, false)
	}
	return out
}
