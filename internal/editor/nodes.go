package editor

import (
	"strings"

	"imgedit/internal/journal"
	"imgedit/internal/logtree"
)

func (e *Editor) findNode(id string) (*logtree.Node, error) {
	n := e.log.Find(id)
	if n == nil {
		return nil, NotFoundError{Kind: "log node", ID: id}
	}
	return n, nil
}

// SelectNode marks id as the parent of the next logged action, replacing
// any previous mark.
func (e *Editor) SelectNode(id string) error {
	n, err := e.findNode(id)
	if err != nil {
		return err
	}
	e.selected = n
	return nil
}

func (e *Editor) ClearSelection() { e.selected = nil }

// RenameNode changes a node's label. Empty text is ignored.
func (e *Editor) RenameNode(id, text string) (bool, error) {
	n, err := e.findNode(id)
	if err != nil {
		return false, err
	}
	old := n.Label
	if !e.log.Rename(n, text) {
		return false, nil
	}
	e.record(journal.TypeLogRenamed, n.ID, text, map[string]any{"from": old})
	e.notifyLog()
	return true, nil
}

// SetExpanded toggles whether a node's children are shown.
func (e *Editor) SetExpanded(id string, expanded bool) error {
	n, err := e.findNode(id)
	if err != nil {
		return err
	}
	e.log.SetExpanded(n, expanded)
	e.notifyLog()
	return nil
}

// DeleteNode removes a node (and its subtree) from the log and drops one
// history entry for it.
//
// In positional mode the dropped entry is the one whose index equals the
// node's pre-order position. That correspondence only holds while every
// history entry has exactly one log node in the same order; undo followed
// by new actions, saves, and earlier deletions all break it. Linked mode
// drops the entry the node was logged against instead.
func (e *Editor) DeleteNode(id string) error {
	n, err := e.findNode(id)
	if err != nil {
		return err
	}
	pos := e.log.PreOrderIndex(n)
	e.log.Remove(n)
	if e.selected != nil && !e.log.Contains(e.selected) {
		e.selected = nil
	}

	var target int
	switch e.deleteMode {
	case DeleteLinked:
		target = e.history.IndexOf(n.HistoryRef)
	default:
		target = pos
	}
	removed, ok := e.history.RemoveAt(target)
	e.syncCurrent()

	e.logger.Info("deleted action", "label", n.Label, "position", pos, "historyIndex", target, "historyRemoved", ok)
	payload := map[string]any{"position": pos, "mode": string(e.deleteMode)}
	if ok {
		payload["historyIndex"] = target
		payload["historyEntry"] = removed.ID
	}
	e.record(journal.TypeLogDeleted, n.ID, n.Label, payload)
	if ok {
		e.record(journal.TypeHistoryRemoved, "", "", map[string]any{"index": target, "entry": removed.ID, "cursor": e.history.Cursor()})
	}

	e.notifyLog()
	e.notifyHistory()
	return nil
}

// NodeByPosition returns the id of the node at pre-order position p.
func (e *Editor) NodeByPosition(p int) (string, bool) {
	nodes := e.log.PreOrder()
	if p < 0 || p >= len(nodes) {
		return "", false
	}
	return nodes[p].ID, true
}

// FindByLabel returns the id of the first node (pre-order) labelled label.
func (e *Editor) FindByLabel(label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, n := range e.log.PreOrder() {
		if strings.EqualFold(n.Label, label) {
			return n.ID, true
		}
	}
	return "", false
}
