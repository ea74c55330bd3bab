package history

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// op codes: 0 append, 1 undo, 2 redo, 3 remove at (op/4)%len.
func applyOps(h *Stack[int], ops []int) bool {
	for i, op := range ops {
		switch op % 4 {
		case 0:
			h.Append(i)
		case 1:
			h.Undo()
		case 2:
			h.Redo()
		case 3:
			if h.Len() > 0 {
				h.RemoveAt((op / 4) % h.Len())
			}
		}
		if !cursorInvariantHolds(h) {
			return false
		}
	}
	return true
}

func cursorInvariantHolds(h *Stack[int]) bool {
	if h.Len() == 0 {
		return h.Cursor() == -1
	}
	if h.Limit() > 0 && h.Len() > h.Limit() {
		return false
	}
	return h.Cursor() >= 0 && h.Cursor() < h.Len()
}

func TestStack_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("cursor stays within [-1, len-1]", prop.ForAll(
		func(ops []int) bool {
			return applyOps(New[int](0), ops)
		},
		gen.SliceOf(gen.IntRange(0, 400)),
	))

	properties.Property("bounded stacks never exceed their limit", prop.ForAll(
		func(limit int, ops []int) bool {
			return applyOps(New[int](limit), ops)
		},
		gen.IntRange(1, 8),
		gen.SliceOf(gen.IntRange(0, 400)),
	))

	properties.Property("undo then redo restores cursor and current entry", prop.ForAll(
		func(ops []int) bool {
			h := New[int](0)
			applyOps(h, ops)
			if !h.CanUndo() {
				return true
			}
			before, _ := h.Current()
			cursor := h.Cursor()
			if _, ok := h.Undo(); !ok {
				return false
			}
			after, ok := h.Redo()
			return ok && after.ID == before.ID && h.Cursor() == cursor
		},
		gen.SliceOf(gen.IntRange(0, 400)),
	))

	properties.Property("append after undo leaves nothing to redo", prop.ForAll(
		func(ops []int) bool {
			h := New[int](0)
			applyOps(h, ops)
			h.Undo()
			h.Append(-1)
			cur, _ := h.Current()
			return !h.CanRedo() && cur.Snapshot == -1 && h.Cursor() == h.Len()-1
		},
		gen.SliceOf(gen.IntRange(0, 400)),
	))

	properties.TestingRun(t)
}
