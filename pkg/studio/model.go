// Package studio connects a sprite project to an interactive front end. A
// Model turns UI gestures and commands into project operations and reports
// every visible change through an Observer.
package studio

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/ha1tch/sprite-toolkit/pkg/sprite"
	"github.com/ha1tch/sprite-toolkit/pkg/spritefile"
)

// Observer receives display updates from a Model. Buffers passed to an
// observer are copies and may be kept.
type Observer interface {
	// BufferChanged reports new content for the canvas showing frame.
	BufferChanged(frame int, buf *sprite.Buffer)
	// FrameCountChanged reports that frames were added or removed.
	FrameCountChanged(n int)
	// ThumbnailsChanged reports the committed content of every frame.
	ThumbnailsChanged(bufs []*sprite.Buffer)
	// PlaybackFrameChanged reports the frame the preview should show.
	PlaybackFrameChanged(buf *sprite.Buffer)
}

// NopObserver ignores all updates. Embed it to implement part of Observer.
type NopObserver struct{}

func (NopObserver) BufferChanged(int, *sprite.Buffer)   {}
func (NopObserver) FrameCountChanged(int)               {}
func (NopObserver) ThumbnailsChanged([]*sprite.Buffer)  {}
func (NopObserver) PlaybackFrameChanged(*sprite.Buffer) {}

// Model is the editing state behind a front end: an optional project, the
// current tool and preview playback. It is not safe for concurrent use;
// front ends drive it from their event loop.
type Model struct {
	project  *sprite.Project
	tool     sprite.Tool
	observer Observer

	player  *sprite.Player
	playing bool

	modified  bool
	undoLimit int
}

// NewModel creates a model with no project and the default tool. A nil
// observer discards updates.
func NewModel(obs Observer) *Model {
	m := &Model{
		tool:   sprite.DefaultTool(),
		player: sprite.NewPlayer(nil),
	}
	m.SetObserver(obs)
	return m
}

// SetObserver replaces the observer.
func (m *Model) SetObserver(obs Observer) {
	if obs == nil {
		obs = NopObserver{}
	}
	m.observer = obs
}

// SetUndoLimit bounds the history of every frame of current and future
// projects. Zero means unlimited.
func (m *Model) SetUndoLimit(n int) {
	if n < 0 {
		n = 0
	}
	m.undoLimit = n
	if m.project != nil {
		m.project.SetUndoLimit(n)
	}
}

// Project returns the open project, or nil.
func (m *Model) Project() *sprite.Project {
	return m.project
}

// Tool returns the current tool.
func (m *Model) Tool() sprite.Tool {
	return m.tool
}

// Playing reports whether preview playback is running.
func (m *Model) Playing() bool {
	return m.playing
}

// Modified reports whether the project has edits that were not saved.
func (m *Model) Modified() bool {
	return m.modified
}

// Interval returns the time between playback ticks.
func (m *Model) Interval() time.Duration {
	if m.project == nil {
		return sprite.Interval(sprite.DefaultFPS)
	}
	return sprite.Interval(m.project.FPS())
}

func (m *Model) requireProject(op string) error {
	if m.project == nil {
		err := fmt.Errorf("%w: %s with no project open", sprite.ErrInvalidOperation, op)
		Logger().Debug("command rejected", "op", op, "err", err)
		return err
	}
	return nil
}

// rejected logs a command the project refused and passes the error on.
func rejected(op string, err error) error {
	Logger().Debug("command rejected", "op", op, "err", err)
	return err
}

// requireIdle rejects commands that would discard an active stroke.
func (m *Model) requireIdle(op string) error {
	if m.project != nil && m.project.Stroking() {
		return rejected(op, fmt.Errorf("%w: %s during an active stroke", sprite.ErrInvalidSequence, op))
	}
	return nil
}

// open installs p as the project and refreshes every view.
func (m *Model) open(p *sprite.Project) {
	p.SetUndoLimit(m.undoLimit)
	m.project = p
	m.modified = false
	m.emitFrameCount()
	m.emitSelected()
	m.emitThumbnails()
	m.restartPlayback()
}

func (m *Model) emitSelected() {
	m.observer.BufferChanged(m.project.Selected(), m.project.Live())
}

func (m *Model) emitFrameCount() {
	m.observer.FrameCountChanged(m.project.FrameCount())
}

func (m *Model) emitThumbnails() {
	m.observer.ThumbnailsChanged(m.project.LatestBuffers())
}

// edited records a committed change and refreshes the views showing it.
func (m *Model) edited() {
	m.modified = true
	m.emitSelected()
	m.emitThumbnails()
	m.restartPlayback()
}

// restartPlayback rewinds a running preview onto fresh buffers.
func (m *Model) restartPlayback() {
	if !m.playing {
		return
	}
	m.player.Reset(m.project.LatestBuffers())
	m.Tick()
}

// NewProject replaces any open project with a blank one-frame project.
func (m *Model) NewProject(size int) error {
	if err := m.requireIdle("new"); err != nil {
		return err
	}
	p, err := sprite.New(size)
	if err != nil {
		return rejected("new", err)
	}
	m.open(p)
	Logger().Info("new project", "size", size)
	return nil
}

// BeginStroke starts a gesture with the current tool at a screen point.
func (m *Model) BeginStroke(screen image.Point) error {
	if err := m.requireProject("begin stroke"); err != nil {
		return err
	}
	if err := m.project.BeginStroke(screen, m.tool); err != nil {
		return rejected("begin stroke", err)
	}
	return nil
}

// ContinueStroke extends the gesture and shows the live buffer.
func (m *Model) ContinueStroke(screen image.Point) error {
	if err := m.requireProject("continue stroke"); err != nil {
		return err
	}
	live, err := m.project.ContinueStroke(screen)
	if err != nil {
		return rejected("continue stroke", err)
	}
	m.observer.BufferChanged(m.project.Stroke().Frame(), live)
	return nil
}

// EndStroke commits the gesture.
func (m *Model) EndStroke() error {
	if err := m.requireProject("end stroke"); err != nil {
		return err
	}
	if err := m.project.EndStroke(); err != nil {
		return rejected("end stroke", err)
	}
	m.edited()
	return nil
}

// SetBrush switches to the brush with colour c.
func (m *Model) SetBrush(c color.NRGBA) {
	m.tool = m.tool.WithColor(c)
}

// SetEraser switches to the eraser, keeping the brush colour.
func (m *Model) SetEraser() {
	m.tool = m.tool.WithEraser()
}

// SetWidth sets the pen width for later strokes.
func (m *Model) SetWidth(w int) error {
	t, err := m.tool.WithWidth(w)
	if err != nil {
		return rejected("set width", err)
	}
	m.tool = t
	return nil
}

// AddFrame inserts a blank frame after the selected one and selects it.
func (m *Model) AddFrame() error {
	if err := m.requireProject("add frame"); err != nil {
		return err
	}
	if err := m.project.AddFrame(m.project.Selected()); err != nil {
		return rejected("add frame", err)
	}
	Logger().Info("frame added", "frame", m.project.Selected(), "count", m.project.FrameCount())
	m.emitFrameCount()
	m.edited()
	return nil
}

// RemoveFrame deletes the selected frame. The last frame cannot be removed.
func (m *Model) RemoveFrame() error {
	if err := m.requireProject("remove frame"); err != nil {
		return err
	}
	i := m.project.Selected()
	if err := m.project.RemoveFrame(i); err != nil {
		return rejected("remove frame", err)
	}
	Logger().Info("frame removed", "frame", i, "count", m.project.FrameCount())
	m.emitFrameCount()
	m.edited()
	return nil
}

// SelectFrame shows frame i on the canvas.
func (m *Model) SelectFrame(i int) error {
	if err := m.requireProject("select frame"); err != nil {
		return err
	}
	if err := m.project.SelectFrame(i); err != nil {
		return rejected("select frame", err)
	}
	m.emitSelected()
	return nil
}

// ClearFrame commits a blank buffer to the selected frame. It can be
// undone like a stroke.
func (m *Model) ClearFrame() error {
	if err := m.requireProject("clear frame"); err != nil {
		return err
	}
	if err := m.requireIdle("clear frame"); err != nil {
		return err
	}
	p := m.project
	h, err := p.History(p.Selected())
	if err != nil {
		return rejected("clear frame", err)
	}
	if h.Current().IsBlank() {
		return nil
	}
	blank, err := sprite.NewBuffer(p.Size())
	if err != nil {
		return err
	}
	h.Commit(blank)
	m.edited()
	return nil
}

// Undo steps the selected frame back. It reports whether anything changed.
func (m *Model) Undo() (bool, error) {
	if err := m.requireProject("undo"); err != nil {
		return false, err
	}
	ok, err := m.project.Undo()
	if err != nil {
		return false, rejected("undo", err)
	}
	if ok {
		m.edited()
	}
	return ok, nil
}

// Redo steps the selected frame forward. It reports whether anything
// changed.
func (m *Model) Redo() (bool, error) {
	if err := m.requireProject("redo"); err != nil {
		return false, err
	}
	ok, err := m.project.Redo()
	if err != nil {
		return false, rejected("redo", err)
	}
	if ok {
		m.edited()
	}
	return ok, nil
}

// Save writes the project to the file it was loaded from or last saved to.
func (m *Model) Save() error {
	if err := m.requireProject("save"); err != nil {
		return err
	}
	path := m.project.Path()
	if path == "" {
		return rejected("save", fmt.Errorf("%w: project has no file yet", sprite.ErrInvalidOperation))
	}
	return m.SaveAs(path)
}

// SaveAs writes the project to path, which becomes its file.
func (m *Model) SaveAs(path string) error {
	if err := m.requireProject("save"); err != nil {
		return err
	}
	if err := m.requireIdle("save"); err != nil {
		return err
	}
	if err := spritefile.WriteFile(path, m.project); err != nil {
		Logger().Warn("save failed", "path", path, "err", err)
		return err
	}
	m.modified = false
	Logger().Info("project saved", "path", path, "frames", m.project.FrameCount())
	return nil
}

// Load opens the project at path. The current project is kept if loading
// fails.
func (m *Model) Load(path string) error {
	if err := m.requireIdle("load"); err != nil {
		return err
	}
	p, err := spritefile.ReadFile(path)
	if err != nil {
		Logger().Warn("load failed", "path", path, "err", err)
		return err
	}
	m.open(p)
	Logger().Info("project loaded", "path", path, "size", p.Size(), "frames", p.FrameCount())
	return nil
}

// SetFPS changes the playback rate. A running preview keeps its position.
func (m *Model) SetFPS(fps int) error {
	if err := m.requireProject("set fps"); err != nil {
		return err
	}
	if fps == m.project.FPS() {
		return nil
	}
	if err := m.project.SetFPS(fps); err != nil {
		return rejected("set fps", err)
	}
	m.modified = true
	return nil
}

// Play starts preview playback from the first frame. The caller drives it
// by calling Tick every Interval.
func (m *Model) Play() error {
	if err := m.requireProject("play"); err != nil {
		return err
	}
	m.playing = true
	m.restartPlayback()
	return nil
}

// Pause stops preview playback.
func (m *Model) Pause() {
	m.playing = false
}

// Tick advances a running preview by one frame. It reports whether a frame
// was shown.
func (m *Model) Tick() bool {
	if !m.playing {
		return false
	}
	b := m.player.Tick()
	if b == nil {
		return false
	}
	m.observer.PlaybackFrameChanged(b.Clone())
	return true
}

// PlaybackFrame returns the index of the frame the next Tick shows.
func (m *Model) PlaybackFrame() int {
	return m.player.Cursor()
}
