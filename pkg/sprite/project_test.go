package sprite

import (
	"errors"
	"image"
	"testing"
)

func mustProject(t *testing.T, size int) *Project {
	t.Helper()
	p, err := New(size)
	if err != nil {
		t.Fatalf("New(%d): %v", size, err)
	}
	return p
}

// tap draws a single dab at pixel px of the selected frame.
func tap(t *testing.T, p *Project, px image.Point, tool Tool) {
	t.Helper()
	screen := PixelToScreen(px, p.Size())
	if err := p.BeginStroke(screen, tool); err != nil {
		t.Fatalf("BeginStroke: %v", err)
	}
	if _, err := p.ContinueStroke(screen); err != nil {
		t.Fatalf("ContinueStroke: %v", err)
	}
	if err := p.EndStroke(); err != nil {
		t.Fatalf("EndStroke: %v", err)
	}
}

func TestNewProjectDefaults(t *testing.T) {
	p := mustProject(t, 8)
	if p.FrameCount() != 1 {
		t.Errorf("frame count = %d, want 1", p.FrameCount())
	}
	if p.FPS() != DefaultFPS {
		t.Errorf("fps = %d, want %d", p.FPS(), DefaultFPS)
	}
	if p.Selected() != 0 {
		t.Errorf("selected = %d, want 0", p.Selected())
	}
	if p.Path() != "" {
		t.Errorf("path = %q, want empty", p.Path())
	}

	if _, err := New(MaxSize + 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("New(%d): got %v, want ErrOutOfRange", MaxSize+1, err)
	}
}

func TestUndoRedoDotScenario(t *testing.T) {
	p := mustProject(t, 4)
	tool := DefaultTool().WithColor(red)
	tap(t, p, image.Pt(0, 0), tool)

	cur, _ := p.Current(0)
	if c := cur.Pixel(0, 0); c != red {
		t.Fatalf("after stroke: pixel (0, 0) = %v, want %v", c, red)
	}
	if len(painted(cur)) != 1 {
		t.Errorf("after stroke: %d pixels painted, want 1", len(painted(cur)))
	}

	if changed, err := p.Undo(); err != nil || !changed {
		t.Fatalf("Undo: changed=%v err=%v", changed, err)
	}
	cur, _ = p.Current(0)
	if !cur.IsBlank() {
		t.Error("after undo: frame is not fully transparent")
	}

	if changed, err := p.Redo(); err != nil || !changed {
		t.Fatalf("Redo: changed=%v err=%v", changed, err)
	}
	cur, _ = p.Current(0)
	if c := cur.Pixel(0, 0); c != red {
		t.Errorf("after redo: pixel (0, 0) = %v, want %v", c, red)
	}
}

func TestUndoRedoRestoresExactContent(t *testing.T) {
	p := mustProject(t, 16)
	tool, _ := DefaultTool().WithColor(red).WithWidth(3)

	strokes := [][]image.Point{
		{{10, 10}, {300, 40}, {580, 590}},
		{{0, 599}, {599, 0}},
		{{123, 456}},
	}
	for _, s := range strokes {
		if err := p.BeginStroke(s[0], tool); err != nil {
			t.Fatal(err)
		}
		for _, pt := range s[1:] {
			if _, err := p.ContinueStroke(pt); err != nil {
				t.Fatal(err)
			}
		}
		if err := p.EndStroke(); err != nil {
			t.Fatal(err)
		}
		tool = tool.WithEraser()
	}

	before, _ := p.Current(0)
	p.Undo()
	p.Redo()
	after, _ := p.Current(0)
	if !after.Equal(before) {
		t.Error("undo/redo pair did not restore identical content")
	}
}

func TestUndoIsPerFrame(t *testing.T) {
	p := mustProject(t, 4)
	tool := DefaultTool().WithColor(red)
	tap(t, p, image.Pt(1, 1), tool)

	if err := p.AddFrame(0); err != nil {
		t.Fatal(err)
	}
	tap(t, p, image.Pt(2, 2), tool)

	// Undo twice on frame 1: the second undo hits its initial entry.
	p.Undo()
	if changed, _ := p.Undo(); changed {
		t.Error("second undo on frame 1 reported a change")
	}

	frame0, _ := p.Current(0)
	if c := frame0.Pixel(1, 1); c != red {
		t.Errorf("frame 0 affected by undo on frame 1: %v", c)
	}

	if err := p.SelectFrame(0); err != nil {
		t.Fatal(err)
	}
	if changed, _ := p.Redo(); changed {
		t.Error("redo on frame 0 used frame 1's redo stack")
	}
}

func TestAddRemoveFrameScenario(t *testing.T) {
	p := mustProject(t, 4)
	if err := p.SetFPS(2); err != nil {
		t.Fatal(err)
	}
	if err := p.AddFrame(0); err != nil {
		t.Fatal(err)
	}

	bufs := p.LatestBuffers()
	if len(bufs) != 2 {
		t.Fatalf("LatestBuffers returned %d entries, want 2", len(bufs))
	}
	for i, b := range bufs {
		if !b.IsBlank() {
			t.Errorf("frame %d not blank", i)
		}
	}
	if p.Selected() != 1 {
		t.Errorf("selected = %d, want new frame 1", p.Selected())
	}

	// Mark frame 1 so it can be recognised after renumbering.
	tap(t, p, image.Pt(3, 3), DefaultTool())

	if err := p.RemoveFrame(0); err != nil {
		t.Fatal(err)
	}
	if p.FrameCount() != 1 {
		t.Fatalf("frame count = %d, want 1", p.FrameCount())
	}
	if p.Selected() != 0 {
		t.Errorf("selected = %d, want 0", p.Selected())
	}
	cur, _ := p.Current(0)
	if c := cur.Pixel(3, 3); c.A == 0 {
		t.Error("remaining frame is not the former frame 1")
	}
}

func TestAddFrameInsertsAfter(t *testing.T) {
	p := mustProject(t, 4)
	tap(t, p, image.Pt(0, 0), DefaultTool())
	p.AddFrame(0)
	tap(t, p, image.Pt(1, 1), DefaultTool())

	// Insert between frame 0 and the marked frame 1.
	if err := p.AddFrame(0); err != nil {
		t.Fatal(err)
	}
	if p.Selected() != 1 {
		t.Errorf("selected = %d, want 1", p.Selected())
	}

	bufs := p.LatestBuffers()
	if len(bufs) != 3 {
		t.Fatalf("frame count = %d, want 3", len(bufs))
	}
	if bufs[0].Pixel(0, 0).A == 0 || !bufs[1].IsBlank() || bufs[2].Pixel(1, 1).A == 0 {
		t.Error("frames not in expected order after insert")
	}

	if err := p.AddFrame(3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("AddFrame(3): got %v, want ErrOutOfRange", err)
	}
}

func TestRemoveLastFrameFails(t *testing.T) {
	p := mustProject(t, 4)
	tap(t, p, image.Pt(2, 1), DefaultTool())
	before, _ := p.Current(0)

	err := p.RemoveFrame(0)
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("RemoveFrame on only frame: got %v, want ErrInvalidOperation", err)
	}
	if p.FrameCount() != 1 {
		t.Errorf("frame count = %d, want 1", p.FrameCount())
	}
	after, _ := p.Current(0)
	if !after.Equal(before) {
		t.Error("content changed by failed remove")
	}
}

func TestRemoveFrameSelection(t *testing.T) {
	tests := []struct {
		remove       int
		wantSelected int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
	}

	for _, tt := range tests {
		p := mustProject(t, 4)
		for i := 0; i < 3; i++ {
			p.AddFrame(i)
		}
		if err := p.RemoveFrame(tt.remove); err != nil {
			t.Fatalf("RemoveFrame(%d): %v", tt.remove, err)
		}
		if p.Selected() != tt.wantSelected {
			t.Errorf("RemoveFrame(%d): selected = %d, want %d", tt.remove, p.Selected(), tt.wantSelected)
		}
		if p.FrameCount() != 3 {
			t.Errorf("RemoveFrame(%d): frame count = %d, want 3", tt.remove, p.FrameCount())
		}
	}
}

func TestSelectFrameOutOfRange(t *testing.T) {
	p := mustProject(t, 4)
	for _, i := range []int{-1, 1, 5} {
		if err := p.SelectFrame(i); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SelectFrame(%d): got %v, want ErrOutOfRange", i, err)
		}
	}
	if p.Selected() != 0 {
		t.Errorf("selected = %d after failed selects, want 0", p.Selected())
	}
}

func TestSetFPSRange(t *testing.T) {
	p := mustProject(t, 4)
	for _, fps := range []int{0, -1, MaxFPS + 1} {
		if err := p.SetFPS(fps); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SetFPS(%d): got %v, want ErrOutOfRange", fps, err)
		}
	}
	if p.FPS() != DefaultFPS {
		t.Errorf("fps = %d after failed sets, want %d", p.FPS(), DefaultFPS)
	}
}

func TestLatestBuffersAreSnapshots(t *testing.T) {
	p := mustProject(t, 4)
	bufs := p.LatestBuffers()
	bufs[0].Fill(red)

	cur, _ := p.Current(0)
	if !cur.IsBlank() {
		t.Error("mutating LatestBuffers result changed the project")
	}
}

func TestFromBuffers(t *testing.T) {
	a := dotBuffer(t, 4, image.Pt(0, 0), red)
	b := dotBuffer(t, 4, image.Pt(3, 3), blue)

	p, err := FromBuffers(4, 5, []*Buffer{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if p.FrameCount() != 2 || p.FPS() != 5 {
		t.Errorf("got %d frames at %d fps, want 2 at 5", p.FrameCount(), p.FPS())
	}
	for i := 0; i < 2; i++ {
		h, _ := p.History(i)
		if h.Len() != 1 || h.CanRedo() {
			t.Errorf("frame %d history has %d entries, want exactly 1", i, h.Len())
		}
	}

	tests := []struct {
		name   string
		size   int
		fps    int
		frames []*Buffer
		want   error
	}{
		{"no frames", 4, 2, nil, ErrInvalidOperation},
		{"bad fps", 4, 0, []*Buffer{a}, ErrOutOfRange},
		{"bad size", 64, 2, []*Buffer{a}, ErrOutOfRange},
		{"size mismatch", 5, 2, []*Buffer{a}, ErrOutOfRange},
		{"nil frame", 4, 2, []*Buffer{a, nil}, ErrOutOfRange},
	}
	for _, tt := range tests {
		if _, err := FromBuffers(tt.size, tt.fps, tt.frames); !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestUndoLimitAppliesToNewFrames(t *testing.T) {
	p := mustProject(t, 4)
	p.SetUndoLimit(1)
	p.AddFrame(0)
	tap(t, p, image.Pt(0, 0), DefaultTool())
	tap(t, p, image.Pt(1, 0), DefaultTool())

	h, _ := p.History(1)
	if h.Len() != 2 {
		t.Errorf("undo list size = %d, want 2", h.Len())
	}
}
