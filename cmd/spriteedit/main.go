// Command spriteedit is a TUI editor for sprite animations.
package main

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/sprite-toolkit/pkg/sprite"
	"github.com/ha1tch/sprite-toolkit/pkg/spritefile"
	"github.com/ha1tch/sprite-toolkit/pkg/studio"
)

// Editor holds all editor state. The model always has a project open:
// newEditor creates one and the model only ever replaces it.
type Editor struct {
	screen      tcell.Screen
	model       *studio.Model
	mode        Mode
	message     string
	messageType MessageType
	config      Config
	configPath  string // empty keeps settings in memory only
	palette     []color.NRGBA

	// Views fed by the model
	canvas      *sprite.Buffer
	canvasFrame int
	thumbs      []*sprite.Buffer
	frameCount  int
	preview     *sprite.Buffer

	// Keyboard cursor in pixel coordinates
	cursorX int
	cursorY int

	// Mouse stroke state
	drawing   bool
	lastPixel image.Point

	// Layout from the last draw, used for mouse hit testing
	sidebarX    int
	paletteY    int
	framesY     int
	framesFirst int // first frame listed
	framesRows  int

	// Menu state
	menuItems    []string
	menuSelected int

	// Input state
	inputBuffer string
	inputPrompt string
	inputAction func(string)

	// Quit confirmation with unsaved changes
	quitArmed bool

	// Playback ticker control
	rate chan time.Duration
	stop chan struct{}

	// Message flash state
	messageFlashStart int64 // Unix milliseconds when message was shown
}

// Mode represents editor mode
type Mode int

const (
	ModeMenu Mode = iota
	ModeCanvas
	ModeInput
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo    MessageType = iota // Informative, no flash
	MsgError                      // Errors, flash
	MsgSuccess                    // State changes, flash
)

// tickEvent is posted by the playback ticker.
type tickEvent struct{}

// Canvas geometry: each pixel is cellW columns wide inside a one cell border.
const (
	canvasX = 1
	canvasY = 1
	cellW   = 2
)

func main() {
	cfg := LoadConfig()

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file %s: %v\n", cfg.LogFile, err)
			os.Exit(1)
		}
		defer f.Close()
		studio.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	// Initialize screen
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.Clear()

	ed, err := newEditor(screen, cfg)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Error creating sprite: %v\n", err)
		os.Exit(1)
	}
	ed.configPath = ConfigPath()

	// Check command line
	if len(os.Args) > 1 {
		if err := ed.model.Load(os.Args[1]); err != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", os.Args[1], err)
			os.Exit(1)
		}
		ed.mode = ModeCanvas
	}

	// Main loop
	ed.run()

	screen.Fini()
}

// newEditor creates an editor on screen with a blank project of the
// configured size.
func newEditor(screen tcell.Screen, cfg Config) (*Editor, error) {
	ed := &Editor{
		screen:  screen,
		config:  cfg,
		palette: cfg.Colors(),
		rate:    make(chan time.Duration, 1),
		stop:    make(chan struct{}),
	}
	ed.model = studio.NewModel(ed)
	ed.model.SetUndoLimit(cfg.UndoLevels)
	ed.model.SetBrush(ed.palette[0])
	if err := ed.model.NewProject(cfg.CanvasSize); err != nil {
		return nil, err
	}
	if err := ed.model.Project().SetFPS(cfg.FPS); err != nil {
		return nil, err
	}
	ed.updateMenuItems()
	ed.mode = ModeMenu
	return ed, nil
}

// Observer implementation: the model pushes copies of what changed.

func (ed *Editor) BufferChanged(frame int, buf *sprite.Buffer) {
	ed.canvasFrame = frame
	ed.canvas = buf
	if ed.cursorX >= buf.Size() || ed.cursorY >= buf.Size() {
		ed.cursorX, ed.cursorY = 0, 0
	}
}

func (ed *Editor) FrameCountChanged(n int) {
	ed.frameCount = n
}

func (ed *Editor) ThumbnailsChanged(bufs []*sprite.Buffer) {
	ed.thumbs = bufs
}

func (ed *Editor) PlaybackFrameChanged(buf *sprite.Buffer) {
	ed.preview = buf
}

func (ed *Editor) updateMenuItems() {
	ed.menuItems = []string{
		"New Sprite",
		"Open File",
		"Save",
		"Save As",
		"Edit Canvas",
		"Export GIF",
		"Export Sheet",
		"Export PDF",
		"Quit",
	}
}

// runTicker posts a tick at the current playback interval until stop is
// closed. New intervals arrive on rate.
func runTicker(screen tcell.Screen, interval time.Duration, rate <-chan time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case d := <-rate:
			ticker.Reset(d)
		case <-ticker.C:
			screen.PostEvent(tcell.NewEventInterrupt(tickEvent{}))
		case <-stop:
			return
		}
	}
}

// setRate passes the model's playback interval to the ticker.
func (ed *Editor) setRate() {
	select {
	case <-ed.rate:
	default:
	}
	ed.rate <- ed.model.Interval()
}

func (ed *Editor) run() {
	go runTicker(ed.screen, ed.model.Interval(), ed.rate, ed.stop)
	defer close(ed.stop)

	for {
		ed.draw()
		ed.screen.Show()

		ev := ed.screen.PollEvent()
		if ev == nil {
			return
		}
		if ed.handleEvent(ev) {
			return
		}
	}
}

// handleEvent processes one event and reports whether to quit.
func (ed *Editor) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		ed.screen.Sync()
	case *tcell.EventKey:
		return ed.handleKey(ev)
	case *tcell.EventMouse:
		ed.handleMouse(ev)
	case *tcell.EventInterrupt:
		if _, ok := ev.Data().(tickEvent); ok {
			ed.model.Tick()
		}
	}
	return false
}

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	// Global shortcuts (Ctrl or Cmd on macOS)
	mod := ev.Modifiers()
	isCtrlOrCmd := func(key tcell.Key, r rune) bool {
		if ev.Key() == key {
			return true
		}
		if mod&(tcell.ModMeta|tcell.ModAlt) != 0 && ev.Rune() == r {
			return true
		}
		return false
	}

	quitKey := ev.Key() == tcell.KeyCtrlQ || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q')
	if !quitKey || ed.mode == ModeInput {
		ed.quitArmed = false
	}

	if ed.mode != ModeInput {
		if isCtrlOrCmd(tcell.KeyCtrlQ, 'q') {
			return ed.quit()
		}
		if isCtrlOrCmd(tcell.KeyCtrlS, 's') {
			ed.save()
			return false
		}
		if isCtrlOrCmd(tcell.KeyCtrlO, 'o') {
			ed.promptOpen()
			return false
		}
		if isCtrlOrCmd(tcell.KeyCtrlZ, 'z') {
			ed.undo()
			return false
		}
		if isCtrlOrCmd(tcell.KeyCtrlY, 'y') {
			ed.redo()
			return false
		}
	}

	switch ed.mode {
	case ModeMenu:
		return ed.handleMenuKey(ev)
	case ModeCanvas:
		return ed.handleCanvasKey(ev)
	case ModeInput:
		return ed.handleInputKey(ev)
	}
	return false
}

func (ed *Editor) handleMenuKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		if ed.menuSelected > 0 {
			ed.menuSelected--
		}
	case tcell.KeyDown:
		if ed.menuSelected < len(ed.menuItems)-1 {
			ed.menuSelected++
		}
	case tcell.KeyEnter:
		return ed.executeMenuItem()
	case tcell.KeyEscape:
		ed.mode = ModeCanvas
	case tcell.KeyRune:
		if ev.Rune() == 'q' {
			return ed.quit()
		}
	}
	return false
}

func (ed *Editor) executeMenuItem() bool {
	switch ed.menuItems[ed.menuSelected] {
	case "New Sprite":
		ed.promptNew()
	case "Open File":
		ed.promptOpen()
	case "Save":
		ed.save()
	case "Save As":
		ed.promptSaveAs()
	case "Edit Canvas":
		ed.mode = ModeCanvas
	case "Export GIF":
		ed.promptExport(".gif", func(p *sprite.Project, f *os.File) error {
			return spritefile.RenderGIF(p, f, 8)
		})
	case "Export Sheet":
		ed.promptExport("_sheet.png", func(p *sprite.Project, f *os.File) error {
			return spritefile.RenderSheet(p, f, spritefile.DefaultSheetOptions())
		})
	case "Export PDF":
		ed.promptExport(".pdf", func(p *sprite.Project, f *os.File) error {
			return spritefile.RenderPDF(p, f, spritefile.DefaultPDFOptions())
		})
	case "Quit":
		return ed.quit()
	}
	return false
}

// quit reports whether the editor may exit. With unsaved changes the
// first request only warns.
func (ed *Editor) quit() bool {
	if ed.model.Modified() && !ed.quitArmed {
		ed.quitArmed = true
		ed.showMessage("Unsaved changes, quit again to discard", MsgError)
		return false
	}
	return true
}

func (ed *Editor) handleCanvasKey(ev *tcell.EventKey) bool {
	n := ed.model.Project().Size()

	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeMenu
		return false
	case tcell.KeyLeft:
		ed.selectFrame(ed.model.Project().Selected() - 1)
		return false
	case tcell.KeyRight:
		ed.selectFrame(ed.model.Project().Selected() + 1)
		return false
	case tcell.KeyDelete:
		ed.report(ed.model.RemoveFrame(), "Frame removed")
		return false
	case tcell.KeyTab:
		ed.cyclePalette(1)
		return false
	case tcell.KeyBacktab:
		ed.cyclePalette(-1)
		return false
	case tcell.KeyEnter:
		ed.dabAtCursor()
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	switch r := ev.Rune(); r {
	case 'b':
		ed.model.SetBrush(ed.model.Tool().Color)
		ed.showMessage("Brush", MsgInfo)
	case 'e':
		ed.model.SetEraser()
		ed.showMessage("Eraser", MsgInfo)
	case '1', '2', '3':
		ed.setWidth(int(r - '0'))
	case '[':
		ed.setWidth(ed.model.Tool().Width - 1)
	case ']':
		ed.setWidth(ed.model.Tool().Width + 1)
	case 'n':
		ed.report(ed.model.AddFrame(), "Frame added")
	case 'x':
		ed.report(ed.model.RemoveFrame(), "Frame removed")
	case 'c':
		ed.report(ed.model.ClearFrame(), "Frame cleared")
	case ',':
		ed.selectFrame(ed.model.Project().Selected() - 1)
	case '.':
		ed.selectFrame(ed.model.Project().Selected() + 1)
	case 'h':
		if ed.cursorX > 0 {
			ed.cursorX--
		}
	case 'l':
		if ed.cursorX < n-1 {
			ed.cursorX++
		}
	case 'k':
		if ed.cursorY > 0 {
			ed.cursorY--
		}
	case 'j':
		if ed.cursorY < n-1 {
			ed.cursorY++
		}
	case ' ':
		ed.dabAtCursor()
	case 'p':
		ed.togglePlayback()
	case '+', '=':
		ed.setFPS(ed.model.Project().FPS() + 1)
	case '-':
		ed.setFPS(ed.model.Project().FPS() - 1)
	case 'q':
		return ed.quit()
	}
	return false
}

func (ed *Editor) handleInputKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeCanvas
	case tcell.KeyEnter:
		ed.mode = ModeCanvas
		if ed.inputAction != nil {
			ed.inputAction(ed.inputBuffer)
		}
		ed.inputBuffer = ""
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(ed.inputBuffer) > 0 {
			ed.inputBuffer = ed.inputBuffer[:len(ed.inputBuffer)-1]
		}
	case tcell.KeyRune:
		ed.inputBuffer += string(ev.Rune())
	}
	return false
}

// canvasPixel maps a terminal cell to a canvas pixel.
func canvasPixel(x, y int) image.Point {
	return image.Pt(floorDiv(x-canvasX, cellW), y-canvasY)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	p := ed.model.Project()
	if p == nil {
		return
	}
	n := p.Size()
	px := canvasPixel(x, y)
	inCanvas := px.In(image.Rect(0, 0, n, n))

	// Finish a stroke once the button is released, wherever that happens
	if ed.drawing {
		if buttons&tcell.Button1 == 0 {
			ed.drawing = false
			ed.report(ed.model.EndStroke(), "")
			return
		}
		if px != ed.lastPixel {
			ed.lastPixel = px
			ed.report(ed.model.ContinueStroke(sprite.PixelToScreen(px, n)), "")
		}
		return
	}

	if ed.mode != ModeCanvas {
		if buttons&tcell.Button1 != 0 && ed.mode == ModeMenu {
			ed.mode = ModeCanvas
		}
		return
	}

	switch {
	case buttons&tcell.Button1 != 0 && inCanvas:
		if err := ed.model.BeginStroke(sprite.PixelToScreen(px, n)); err != nil {
			ed.report(err, "")
			return
		}
		ed.drawing = true
		ed.lastPixel = px
		ed.cursorX, ed.cursorY = px.X, px.Y
	case buttons&tcell.Button3 != 0 && inCanvas:
		// Eyedropper
		if c := ed.canvas.Pixel(px.X, px.Y); c.A != 0 {
			ed.model.SetBrush(c)
			ed.showMessage("Colour "+sprite.FormatColor(c), MsgInfo)
		}
	case buttons&tcell.Button1 != 0 && x >= ed.sidebarX:
		ed.clickSidebar(x, y)
	}
}

// clickSidebar handles a click on a palette swatch or a frame entry.
func (ed *Editor) clickSidebar(x, y int) {
	if y >= ed.paletteY && y < ed.paletteY+paletteRows(len(ed.palette)) {
		col := (x - ed.sidebarX) / swatchW
		i := (y-ed.paletteY)*swatchesPerRow + col
		if col < swatchesPerRow && i >= 0 && i < len(ed.palette) {
			ed.model.SetBrush(ed.palette[i])
		}
		return
	}
	if y >= ed.framesY && y < ed.framesY+ed.framesRows {
		if i := ed.framesFirst + y - ed.framesY; i < ed.frameCount {
			ed.selectFrame(i)
		}
	}
}

func (ed *Editor) dabAtCursor() {
	n := ed.model.Project().Size()
	pt := sprite.PixelToScreen(image.Pt(ed.cursorX, ed.cursorY), n)
	if err := ed.model.BeginStroke(pt); err != nil {
		ed.report(err, "")
		return
	}
	ed.report(ed.model.EndStroke(), "")
}

func (ed *Editor) selectFrame(i int) {
	if i < 0 || i >= ed.frameCount {
		return
	}
	ed.report(ed.model.SelectFrame(i), "")
}

func (ed *Editor) setWidth(w int) {
	if err := ed.model.SetWidth(w); err != nil {
		ed.showMessage(fmt.Sprintf("Width must be 1-%d", sprite.MaxWidth), MsgError)
		return
	}
	ed.showMessage(fmt.Sprintf("Width %d", w), MsgInfo)
}

func (ed *Editor) setFPS(fps int) {
	if err := ed.model.SetFPS(fps); err != nil {
		ed.showMessage(fmt.Sprintf("FPS must be 1-%d", sprite.MaxFPS), MsgError)
		return
	}
	ed.setRate()
	ed.showMessage(fmt.Sprintf("%d fps", fps), MsgInfo)
}

func (ed *Editor) cyclePalette(step int) {
	cur := ed.model.Tool().Color
	idx := -1
	for i, c := range ed.palette {
		if c == cur {
			idx = i
			break
		}
	}
	idx = (idx + step + len(ed.palette)) % len(ed.palette)
	ed.model.SetBrush(ed.palette[idx])
}

func (ed *Editor) togglePlayback() {
	if ed.model.Playing() {
		ed.model.Pause()
		ed.preview = nil
		ed.showMessage("Paused", MsgInfo)
		return
	}
	if err := ed.model.Play(); err != nil {
		ed.report(err, "")
		return
	}
	ed.setRate()
	ed.showMessage("Playing", MsgInfo)
}

func (ed *Editor) undo() {
	ok, err := ed.model.Undo()
	if err != nil {
		ed.report(err, "")
		return
	}
	if !ok {
		ed.showMessage("Nothing to undo", MsgInfo)
		return
	}
	ed.showMessage("Undo", MsgSuccess)
}

func (ed *Editor) redo() {
	ok, err := ed.model.Redo()
	if err != nil {
		ed.report(err, "")
		return
	}
	if !ok {
		ed.showMessage("Nothing to redo", MsgInfo)
		return
	}
	ed.showMessage("Redo", MsgSuccess)
}

// report shows err, or success when it is non-empty.
func (ed *Editor) report(err error, success string) {
	if err != nil {
		ed.showMessage("Error: "+err.Error(), MsgError)
		return
	}
	if success != "" {
		ed.showMessage(success, MsgSuccess)
	}
}

// prompt switches to input mode with an initial value.
func (ed *Editor) prompt(label, initial string, action func(string)) {
	ed.inputPrompt = label
	ed.inputBuffer = initial
	ed.inputAction = action
	ed.mode = ModeInput
}

// defaultPath suggests a file name next to the current project.
func (ed *Editor) defaultPath(ext string) string {
	if path := ed.model.Project().Path(); path != "" {
		return strings.TrimSuffix(path, filepath.Ext(path)) + ext
	}
	return filepath.Join(ed.config.LastDir, "sprite"+ext)
}

func (ed *Editor) promptNew() {
	ed.prompt(fmt.Sprintf("Size (%d-%d): ", sprite.MinSize, sprite.MaxSize), strconv.Itoa(ed.config.CanvasSize), func(s string) {
		size, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			ed.showMessage("Not a number: "+s, MsgError)
			return
		}
		ed.newSprite(size)
	})
}

func (ed *Editor) newSprite(size int) {
	if err := ed.model.NewProject(size); err != nil {
		ed.report(err, "")
		return
	}
	if err := ed.model.Project().SetFPS(ed.config.FPS); err != nil {
		ed.report(err, "")
	}
	ed.setRate()
	ed.config.CanvasSize = size
	ed.saveConfig()
	ed.showMessage(fmt.Sprintf("New %dx%d sprite", size, size), MsgSuccess)
}

func (ed *Editor) promptOpen() {
	ed.prompt("Open: ", ed.config.LastDir+string(filepath.Separator), ed.open)
}

func (ed *Editor) open(path string) {
	if err := ed.model.Load(path); err != nil {
		ed.report(err, "")
		return
	}
	ed.setRate()
	ed.config.LastDir = filepath.Dir(path)
	ed.saveConfig()
	ed.showMessage("Loaded: "+path, MsgSuccess)
}

func (ed *Editor) save() {
	if ed.model.Project().Path() == "" {
		ed.promptSaveAs()
		return
	}
	ed.report(ed.model.Save(), "Saved: "+ed.model.Project().Path())
}

func (ed *Editor) promptSaveAs() {
	ed.prompt("Save as: ", ed.defaultPath(".json"), ed.saveAs)
}

func (ed *Editor) saveAs(path string) {
	if err := ed.model.SaveAs(path); err != nil {
		ed.report(err, "")
		return
	}
	ed.config.LastDir = filepath.Dir(path)
	ed.saveConfig()
	ed.showMessage("Saved: "+path, MsgSuccess)
}

func (ed *Editor) promptExport(ext string, render func(*sprite.Project, *os.File) error) {
	ed.prompt("Export to: ", ed.defaultPath(ext), func(path string) {
		ed.report(exportTo(path, ed.model.Project(), render), "Exported: "+path)
	})
}

func exportTo(path string, p *sprite.Project, render func(*sprite.Project, *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(p, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (ed *Editor) saveConfig() {
	if ed.configPath == "" {
		return
	}
	if err := saveConfigTo(ed.configPath, ed.config); err != nil {
		studio.Logger().Warn("saving config", "path", ed.configPath, "err", err)
	}
}

func (ed *Editor) showMessage(msg string, msgType MessageType) {
	ed.message = msg
	ed.messageType = msgType
	ed.messageFlashStart = time.Now().UnixMilli()
}
