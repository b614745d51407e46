package sprite

import (
	"image"
	"image/color"
	"math/rand"
	"testing"
)

func dotBuffer(t *testing.T, size int, p image.Point, c color.NRGBA) *Buffer {
	t.Helper()
	b := mustBuffer(t, size)
	b.DrawLine(p, p, c, 1)
	return b
}

func TestHistoryUndoRedoCycle(t *testing.T) {
	h, err := NewHistory(4)
	if err != nil {
		t.Fatal(err)
	}
	h.Commit(dotBuffer(t, 4, image.Pt(0, 0), red))

	if !h.Undo() {
		t.Fatal("Undo reported no change")
	}
	if !h.Current().IsBlank() {
		t.Error("after undo: frame is not blank")
	}
	if h.RedoLen() != 1 {
		t.Errorf("redo stack size = %d, want 1", h.RedoLen())
	}

	if !h.Redo() {
		t.Fatal("Redo reported no change")
	}
	if c := h.Current().Pixel(0, 0); c != red {
		t.Errorf("after redo: pixel (0, 0) = %v, want %v", c, red)
	}
	if h.Len() != 2 {
		t.Errorf("undo list size = %d, want 2", h.Len())
	}
}

func TestHistoryUndoNeverUnderflows(t *testing.T) {
	h, err := NewHistory(4)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if h.Undo() {
			t.Fatalf("undo %d on initial entry reported a change", i)
		}
	}
	if h.Len() != 1 {
		t.Errorf("undo list size = %d, want 1", h.Len())
	}
	if h.CanRedo() {
		t.Error("redo available after no-op undos")
	}
	if h.Redo() {
		t.Error("redo on empty stack reported a change")
	}
}

func TestHistoryCommitClearsRedo(t *testing.T) {
	h, err := NewHistory(4)
	if err != nil {
		t.Fatal(err)
	}
	h.Commit(dotBuffer(t, 4, image.Pt(0, 0), red))
	h.Commit(dotBuffer(t, 4, image.Pt(1, 1), red))
	h.Undo()
	h.Undo()
	h.Redo()

	// The redo itself keeps the remaining redo entry.
	if h.RedoLen() != 1 {
		t.Fatalf("redo stack size = %d, want 1", h.RedoLen())
	}

	h.Commit(dotBuffer(t, 4, image.Pt(2, 2), blue))
	if h.CanRedo() {
		t.Error("redo stack not cleared by commit")
	}
	if c := h.Current().Pixel(2, 2); c != blue {
		t.Errorf("current pixel (2, 2) = %v, want %v", c, blue)
	}
}

func TestHistoryEntriesAreCopies(t *testing.T) {
	h, err := NewHistory(4)
	if err != nil {
		t.Fatal(err)
	}
	b := dotBuffer(t, 4, image.Pt(0, 0), red)
	h.Commit(b)

	b.Fill(blue)
	cur := h.Current()
	if c := cur.Pixel(1, 1); c != Transparent {
		t.Errorf("committed entry changed with caller's buffer: %v", c)
	}

	cur.Fill(blue)
	if c := h.Current().Pixel(1, 1); c != Transparent {
		t.Errorf("entry changed through Current(): %v", c)
	}
}

func TestHistoryLimit(t *testing.T) {
	h, err := NewHistory(4)
	if err != nil {
		t.Fatal(err)
	}
	h.SetLimit(3)
	for i := 0; i < 4; i++ {
		h.Commit(dotBuffer(t, 4, image.Pt(i, 0), red))
	}
	if h.Len() != 4 {
		t.Fatalf("undo list size = %d, want 4", h.Len())
	}

	undone := 0
	for h.Undo() {
		undone++
	}
	if undone != 3 {
		t.Errorf("undo steps = %d, want 3", undone)
	}
	// The oldest kept entry is the first commit.
	if c := h.Current().Pixel(0, 0); c != red {
		t.Errorf("oldest entry pixel (0, 0) = %v, want %v", c, red)
	}
}

// TestHistoryMatchesModel drives a history with random operations and checks
// it against a plain two-stack model.
func TestHistoryMatchesModel(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	h, err := NewHistory(4)
	if err != nil {
		t.Fatal(err)
	}

	// The model tracks commit ids instead of buffers.
	undo := []int{0}
	var redo []int
	content := map[int]*Buffer{0: mustBuffer(t, 4)}
	next := 1

	for step := 0; step < 500; step++ {
		switch rng.Intn(3) {
		case 0:
			b := mustBuffer(t, 4)
			b.DrawLine(image.Pt(rng.Intn(4), rng.Intn(4)), image.Pt(rng.Intn(4), rng.Intn(4)),
				color.NRGBA{uint8(rng.Intn(256)), 0, 0, 255}, 1)
			content[next] = b
			h.Commit(b)
			undo = append(undo, next)
			redo = nil
			next++
		case 1:
			changed := h.Undo()
			if changed != (len(undo) > 1) {
				t.Fatalf("step %d: Undo reported %v with %d entries", step, changed, len(undo))
			}
			if len(undo) > 1 {
				redo = append(redo, undo[len(undo)-1])
				undo = undo[:len(undo)-1]
			}
		case 2:
			changed := h.Redo()
			if changed != (len(redo) > 0) {
				t.Fatalf("step %d: Redo reported %v with %d entries", step, changed, len(redo))
			}
			if len(redo) > 0 {
				undo = append(undo, redo[len(redo)-1])
				redo = redo[:len(redo)-1]
			}
		}

		if h.Len() != len(undo) || h.RedoLen() != len(redo) {
			t.Fatalf("step %d: sizes %d/%d, want %d/%d", step, h.Len(), h.RedoLen(), len(undo), len(redo))
		}
		if !h.Current().Equal(content[undo[len(undo)-1]]) {
			t.Fatalf("step %d: current content differs from model", step)
		}
	}
}
