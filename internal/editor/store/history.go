package store

import (
	"mjcf-editor/internal/editor/models"
)

// DefaultHistoryLimit bounds both the undo and the redo stack.
const DefaultHistoryLimit = 100

// Entry is one undo or redo step. Entries never share memory with the live
// scene or with each other.
type Entry struct {
	Nodes     []models.BodyNode
	Selection models.Selection
	XML       string
}

func (e Entry) clone() Entry {
	return Entry{
		Nodes:     models.CloneNodes(e.Nodes),
		Selection: e.Selection.Clone(),
		XML:       e.XML,
	}
}

// HistoryManager keeps linear undo/redo history as two bounded stacks.
type HistoryManager struct {
	limit int
	undo  []Entry
	redo  []Entry
}

func NewHistoryManager(limit int) *HistoryManager {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryManager{limit: limit}
}

// RecordBefore stores the state preceding a mutation and drops any redo
// entries. The oldest entry is evicted once the limit is reached.
func (h *HistoryManager) RecordBefore(before Entry) {
	h.undo = push(h.undo, before.clone(), h.limit)
	h.redo = nil
}

// Undo pops the latest entry and parks current on the redo stack.
func (h *HistoryManager) Undo(current Entry) (Entry, bool) {
	if len(h.undo) == 0 {
		return Entry{}, false
	}
	last := len(h.undo) - 1
	prev := h.undo[last]
	h.undo = h.undo[:last]
	h.redo = push(h.redo, current.clone(), h.limit)
	return prev.clone(), true
}

// Redo is the mirror of Undo.
func (h *HistoryManager) Redo(current Entry) (Entry, bool) {
	if len(h.redo) == 0 {
		return Entry{}, false
	}
	last := len(h.redo) - 1
	next := h.redo[last]
	h.redo = h.redo[:last]
	h.undo = push(h.undo, current.clone(), h.limit)
	return next.clone(), true
}

func (h *HistoryManager) CanUndo() bool { return len(h.undo) > 0 }
func (h *HistoryManager) CanRedo() bool { return len(h.redo) > 0 }

// Depth returns the sizes of the undo and redo stacks.
func (h *HistoryManager) Depth() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

func push(stack []Entry, s Entry, limit int) []Entry {
	stack = append(stack, s)
	if over := len(stack) - limit; over > 0 {
		copy(stack, stack[over:])
		for i := len(stack) - over; i < len(stack); i++ {
			stack[i] = Entry{}
		}
		stack = stack[:len(stack)-over]
	}
	return stack
}
