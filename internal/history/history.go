package history

import (
	"slices"

	"github.com/google/uuid"
)

// Entry is one retained snapshot plus the opaque id it was appended under.
type Entry[S any] struct {
	ID       string
	Snapshot S
}

// Stack is a linear undo/redo history.
//
// Appending after an undo drops the redo branch. The stack is not safe for
// concurrent use; callers serialize access on their event loop.
type Stack[S any] struct {
	entries []Entry[S]
	cursor  int
	limit   int
}

// New returns an empty stack. limit <= 0 means unbounded.
func New[S any](limit int) *Stack[S] {
	if limit < 0 {
		limit = 0
	}
	return &Stack[S]{cursor: -1, limit: limit}
}

// Len is the number of retained entries.
func (h *Stack[S]) Len() int { return len(h.entries) }

// Cursor is the index of the current entry, -1 when the stack is empty.
func (h *Stack[S]) Cursor() int { return h.cursor }

// Limit is the retention bound; 0 means unbounded.
func (h *Stack[S]) Limit() int { return h.limit }

func (h *Stack[S]) CanUndo() bool { return h.cursor > 0 }
func (h *Stack[S]) CanRedo() bool { return h.cursor < len(h.entries)-1 }

// Append pushes s as the new current entry.
func (h *Stack[S]) Append(s S) Entry[S] {
	if h.cursor < len(h.entries)-1 {
		// Clear the tail so dropped snapshots can be collected.
		clear(h.entries[h.cursor+1:])
		h.entries = h.entries[:h.cursor+1]
	}
	e := Entry[S]{ID: uuid.NewString(), Snapshot: s}
	h.entries = append(h.entries, e)
	h.cursor = len(h.entries) - 1

	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = slices.Delete(h.entries, 0, drop)
		h.cursor -= drop
	}
	return e
}

// Undo moves the cursor back one entry and returns it. It reports false,
// leaving the cursor alone, when the cursor is already on the first entry.
func (h *Stack[S]) Undo() (Entry[S], bool) {
	if h.cursor <= 0 {
		return Entry[S]{}, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Redo moves the cursor forward one entry and returns it. It reports false
// when the cursor is already on the newest entry.
func (h *Stack[S]) Redo() (Entry[S], bool) {
	if h.cursor >= len(h.entries)-1 {
		return Entry[S]{}, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// RemoveAt deletes the entry at position p. The cursor follows the entry it
// pointed at; when the current entry itself is removed the cursor moves to
// the previous one (or the new first entry).
func (h *Stack[S]) RemoveAt(p int) (Entry[S], bool) {
	if p < 0 || p >= len(h.entries) {
		return Entry[S]{}, false
	}
	removed := h.entries[p]
	h.entries = slices.Delete(h.entries, p, p+1)

	if p <= h.cursor {
		h.cursor--
	}
	if len(h.entries) == 0 {
		h.cursor = -1
	} else if h.cursor < 0 {
		h.cursor = 0
	}
	return removed, true
}

// IndexOf returns the position of the entry with the given id, or -1.
func (h *Stack[S]) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, e := range h.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (h *Stack[S]) Current() (Entry[S], bool) {
	if h.cursor < 0 || h.cursor >= len(h.entries) {
		return Entry[S]{}, false
	}
	return h.entries[h.cursor], true
}

// At returns the entry at position p.
func (h *Stack[S]) At(p int) (Entry[S], bool) {
	if p < 0 || p >= len(h.entries) {
		return Entry[S]{}, false
	}
	return h.entries[p], true
}

// Entries returns a copy of the retained entries, oldest first.
func (h *Stack[S]) Entries() []Entry[S] {
	out := make([]Entry[S], len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *Stack[S]) Reset() {
	clear(h.entries)
	h.entries = h.entries[:0]
	h.cursor = -1
}
