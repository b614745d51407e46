package sprite

import (
	"fmt"
	"image"
)

// Frame rate limits, in frames per second.
const (
	DefaultFPS = 2
	MaxFPS     = 60
)

// Project is an ordered sequence of frames sharing one canvas size, with a
// playback rate and a selected frame. It always holds at least one frame.
type Project struct {
	size     int
	fps      int
	frames   []*History
	selected int
	path     string
	limit    int
	stroke   *StrokeSession
}

// New creates a project with one blank frame.
func New(size int) (*Project, error) {
	h, err := NewHistory(size)
	if err != nil {
		return nil, err
	}
	return &Project{
		size:   size,
		fps:    DefaultFPS,
		frames: []*History{h},
	}, nil
}

// FromBuffers creates a project whose frames hold exactly the given buffers,
// each as the only entry of its history.
func FromBuffers(size, fps int, frames []*Buffer) (*Project, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: canvas size %d not in [%d, %d]", ErrOutOfRange, size, MinSize, MaxSize)
	}
	if fps < 1 || fps > MaxFPS {
		return nil, fmt.Errorf("%w: fps %d not in [1, %d]", ErrOutOfRange, fps, MaxFPS)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: project needs at least one frame", ErrInvalidOperation)
	}

	p := &Project{size: size, fps: fps}
	for i, b := range frames {
		if b == nil || b.Size() != size {
			return nil, fmt.Errorf("%w: frame %d does not match canvas size %d", ErrOutOfRange, i, size)
		}
		p.frames = append(p.frames, newHistoryFrom(b))
	}
	return p, nil
}

// Size returns the canvas size N shared by every frame.
func (p *Project) Size() int {
	return p.size
}

// FPS returns the playback rate.
func (p *Project) FPS() int {
	return p.fps
}

// SetFPS changes the playback rate.
func (p *Project) SetFPS(fps int) error {
	if fps < 1 || fps > MaxFPS {
		return fmt.Errorf("%w: fps %d not in [1, %d]", ErrOutOfRange, fps, MaxFPS)
	}
	p.fps = fps
	return nil
}

// Path returns the file the project was last saved to or loaded from.
func (p *Project) Path() string {
	return p.path
}

// SetPath associates the project with a file.
func (p *Project) SetPath(path string) {
	p.path = path
}

// SetUndoLimit caps the undo depth of every frame, present and future.
// Zero means unlimited.
func (p *Project) SetUndoLimit(n int) {
	if n < 0 {
		n = 0
	}
	p.limit = n
	for _, h := range p.frames {
		h.SetLimit(n)
	}
}

// FrameCount returns the number of frames.
func (p *Project) FrameCount() int {
	return len(p.frames)
}

// Selected returns the index of the frame edits apply to.
func (p *Project) Selected() int {
	return p.selected
}

func (p *Project) checkIndex(i int) error {
	if i < 0 || i >= len(p.frames) {
		return fmt.Errorf("%w: frame %d not in [0, %d)", ErrOutOfRange, i, len(p.frames))
	}
	return nil
}

func (p *Project) checkIdle(op string) error {
	if p.stroke != nil {
		return fmt.Errorf("%w: %s during an active stroke", ErrInvalidSequence, op)
	}
	return nil
}

// SelectFrame switches the frame strokes and undo/redo apply to.
func (p *Project) SelectFrame(i int) error {
	if err := p.checkIdle("select frame"); err != nil {
		return err
	}
	if err := p.checkIndex(i); err != nil {
		return err
	}
	p.selected = i
	return nil
}

// AddFrame inserts a blank frame right after frame `after` and selects it.
func (p *Project) AddFrame(after int) error {
	if err := p.checkIdle("add frame"); err != nil {
		return err
	}
	if err := p.checkIndex(after); err != nil {
		return err
	}
	h, err := NewHistory(p.size)
	if err != nil {
		return err
	}
	h.SetLimit(p.limit)

	at := after + 1
	p.frames = append(p.frames, nil)
	copy(p.frames[at+1:], p.frames[at:])
	p.frames[at] = h
	p.selected = at
	return nil
}

// RemoveFrame deletes frame i and selects the frame before it. The last
// remaining frame cannot be removed.
func (p *Project) RemoveFrame(i int) error {
	if err := p.checkIdle("remove frame"); err != nil {
		return err
	}
	if err := p.checkIndex(i); err != nil {
		return err
	}
	if len(p.frames) == 1 {
		return fmt.Errorf("%w: cannot remove the only frame", ErrInvalidOperation)
	}

	copy(p.frames[i:], p.frames[i+1:])
	p.frames[len(p.frames)-1] = nil
	p.frames = p.frames[:len(p.frames)-1]

	p.selected = i - 1
	if p.selected < 0 {
		p.selected = 0
	}
	return nil
}

// History returns the history of frame i.
func (p *Project) History(i int) (*History, error) {
	if err := p.checkIndex(i); err != nil {
		return nil, err
	}
	return p.frames[i], nil
}

// Current returns a copy of the latest committed content of frame i.
func (p *Project) Current(i int) (*Buffer, error) {
	if err := p.checkIndex(i); err != nil {
		return nil, err
	}
	return p.frames[i].Current(), nil
}

// LatestBuffers returns a copy of every frame's current content, in order.
func (p *Project) LatestBuffers() []*Buffer {
	out := make([]*Buffer, len(p.frames))
	for i, h := range p.frames {
		out[i] = h.Current()
	}
	return out
}

// Undo reverts the last commit of the selected frame.
func (p *Project) Undo() (bool, error) {
	return p.UndoFrame(p.selected)
}

// Redo restores the last undone commit of the selected frame.
func (p *Project) Redo() (bool, error) {
	return p.RedoFrame(p.selected)
}

// UndoFrame reverts the last commit of frame i. It reports whether the
// frame changed; undo at the initial entry is a silent no-op.
func (p *Project) UndoFrame(i int) (bool, error) {
	if err := p.checkIdle("undo"); err != nil {
		return false, err
	}
	if err := p.checkIndex(i); err != nil {
		return false, err
	}
	return p.frames[i].Undo(), nil
}

// RedoFrame restores the last undone commit of frame i. It reports whether
// the frame changed; redo with nothing undone is a silent no-op.
func (p *Project) RedoFrame(i int) (bool, error) {
	if err := p.checkIdle("redo"); err != nil {
		return false, err
	}
	if err := p.checkIndex(i); err != nil {
		return false, err
	}
	return p.frames[i].Redo(), nil
}

// BeginStroke starts a gesture on the selected frame at a screen space
// point. The tool is fixed for the whole gesture.
func (p *Project) BeginStroke(screen image.Point, t Tool) error {
	if p.stroke != nil {
		return fmt.Errorf("%w: stroke already in progress", ErrInvalidSequence)
	}
	base := p.frames[p.selected].head()
	p.stroke = newStrokeSession(p.selected, base, ScreenToPixel(screen, p.size), t)
	return nil
}

// ContinueStroke draws from the last point of the gesture to a new screen
// space point and returns a copy of the live buffer for display.
func (p *Project) ContinueStroke(screen image.Point) (*Buffer, error) {
	if p.stroke == nil {
		return nil, fmt.Errorf("%w: continue without begin", ErrInvalidSequence)
	}
	p.stroke.moveTo(ScreenToPixel(screen, p.size))
	return p.stroke.live.Clone(), nil
}

// EndStroke commits the gesture to its frame's history, discarding that
// frame's redo stack.
func (p *Project) EndStroke() error {
	if p.stroke == nil {
		return fmt.Errorf("%w: end without begin", ErrInvalidSequence)
	}
	s := p.stroke
	p.stroke = nil
	p.frames[s.frame].Commit(s.finish())
	return nil
}

// Stroke returns the active gesture, or nil.
func (p *Project) Stroke() *StrokeSession {
	return p.stroke
}

// Stroking reports whether a gesture is in progress.
func (p *Project) Stroking() bool {
	return p.stroke != nil
}

// Live returns a copy of what the selected frame shows right now: the
// working copy during a stroke, otherwise the committed content.
func (p *Project) Live() *Buffer {
	if p.stroke != nil {
		return p.stroke.live.Clone()
	}
	return p.frames[p.selected].Current()
}
