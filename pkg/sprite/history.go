package sprite

// History is the version timeline of one frame: an append-only undo list
// whose last entry is the frame's content, and a redo stack holding the
// entries removed by Undo. Entries are independent copies and are never
// mutated once stored.
type History struct {
	undo  []*Buffer
	redo  []*Buffer
	limit int // maximum number of undo steps, 0 = unlimited
}

// NewHistory creates a history holding a single blank buffer.
func NewHistory(size int) (*History, error) {
	b, err := NewBuffer(size)
	if err != nil {
		return nil, err
	}
	return &History{undo: []*Buffer{b}}, nil
}

// newHistoryFrom creates a history whose only entry is a copy of b.
func newHistoryFrom(b *Buffer) *History {
	return &History{undo: []*Buffer{b.Clone()}}
}

// SetLimit caps the number of undo steps kept. Older entries are dropped on
// the next commit. Zero means unlimited.
func (h *History) SetLimit(n int) {
	if n < 0 {
		n = 0
	}
	h.limit = n
	h.trim()
}

// Size returns the canvas size of the frame.
func (h *History) Size() int {
	return h.head().Size()
}

// Current returns a copy of the frame's latest committed content.
func (h *History) Current() *Buffer {
	return h.head().Clone()
}

func (h *History) head() *Buffer {
	return h.undo[len(h.undo)-1]
}

// Commit appends a copy of b as the new current content and discards the
// redo stack.
func (h *History) Commit(b *Buffer) {
	h.undo = append(h.undo, b.Clone())
	h.redo = nil
	h.trim()
}

func (h *History) trim() {
	if h.limit == 0 {
		return
	}
	for len(h.undo) > h.limit+1 {
		h.undo[0] = nil
		h.undo = h.undo[1:]
	}
}

// Undo moves the current entry to the redo stack. It reports false, and
// does nothing, when only the initial entry is left.
func (h *History) Undo() bool {
	if len(h.undo) <= 1 {
		return false
	}
	last := h.undo[len(h.undo)-1]
	h.undo[len(h.undo)-1] = nil
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, last)
	return true
}

// Redo re-appends the most recently undone entry. It reports false, and
// does nothing, when the redo stack is empty.
func (h *History) Redo() bool {
	if len(h.redo) == 0 {
		return false
	}
	last := h.redo[len(h.redo)-1]
	h.redo[len(h.redo)-1] = nil
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, last)
	return true
}

// CanUndo reports whether Undo would change the frame.
func (h *History) CanUndo() bool {
	return len(h.undo) > 1
}

// CanRedo reports whether Redo would change the frame.
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// Len returns the number of entries in the undo list, the initial entry
// included.
func (h *History) Len() int {
	return len(h.undo)
}

// RedoLen returns the number of entries on the redo stack.
func (h *History) RedoLen() int {
	return len(h.redo)
}
