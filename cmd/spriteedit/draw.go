package main

import (
	"fmt"
	"image/color"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ha1tch/sprite-toolkit/pkg/sprite"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleMenu       = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleMenuSel    = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleSidebar    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSidebarH   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleInput      = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// Transparency checkerboard shades
var (
	checkerLight = colorful.Color{R: 0.8, G: 0.8, B: 0.8}
	checkerDark  = colorful.Color{R: 0.6, G: 0.6, B: 0.6}
)

// Sidebar palette layout
const (
	swatchW        = 3 // two cells of colour and a gap
	swatchesPerRow = 8
)

func paletteRows(n int) int {
	return (n + swatchesPerRow - 1) / swatchesPerRow
}

// cellColor returns the terminal colour showing c over the checkerboard
// square at (x, y).
func cellColor(c color.NRGBA, x, y int) tcell.Color {
	bg := checkerLight
	if (x+y)%2 == 1 {
		bg = checkerDark
	}
	fg := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	r, g, b := bg.BlendRgb(fg, float64(c.A)/255).Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// opaqueColor converts c ignoring alpha.
func opaqueColor(c color.NRGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()

	ed.drawCanvas()
	ed.drawSidebar(h)

	switch ed.mode {
	case ModeMenu:
		ed.drawMenuOverlay(w, h)
	case ModeInput:
		ed.drawInputBox(w, h)
	}

	ed.drawStatusBar(w, h)
}

func (ed *Editor) drawCanvas() {
	if ed.canvas == nil {
		return
	}
	n := ed.canvas.Size()
	ed.drawBox(canvasX-1, canvasY-1, n*cellW+2, n+2, styleDefault)
	title := fmt.Sprintf(" Frame %d/%d ", ed.canvasFrame+1, ed.frameCount)
	ed.drawString(canvasX+1, canvasY-1, title, styleSidebarH)

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			style := tcell.StyleDefault.Background(cellColor(ed.canvas.Pixel(x, y), x, y))
			left, right := ' ', ' '
			if ed.mode == ModeCanvas && x == ed.cursorX && y == ed.cursorY && !ed.drawing {
				left, right = '[', ']'
				style = style.Foreground(tcell.ColorFuchsia)
			}
			ed.screen.SetContent(canvasX+x*cellW, canvasY+y, left, nil, style)
			ed.screen.SetContent(canvasX+x*cellW+1, canvasY+y, right, nil, style)
		}
	}
}

func (ed *Editor) drawSidebar(h int) {
	p := ed.model.Project()
	n := p.Size()
	x := canvasX + n*cellW + 3
	y := 0
	ed.sidebarX = x

	ed.drawString(x, y, fmt.Sprintf("Sprite %dx%d  %d fps", n, n, p.FPS()), styleSidebarH)
	y += 2

	// Tool
	t := ed.model.Tool()
	ed.drawString(x, y, fmt.Sprintf("Tool:   %s %dpx", t.Mode, t.Width), styleSidebar)
	y++
	ed.drawString(x, y, "Colour: "+sprite.FormatColor(t.Color)+" ", styleSidebar)
	swatch := tcell.StyleDefault.Background(opaqueColor(t.Color))
	ed.drawString(x+17, y, "  ", swatch)
	y += 2

	// Palette
	ed.drawString(x, y, "Palette:", styleSidebarH)
	y++
	ed.paletteY = y
	for i, c := range ed.palette {
		sx := x + (i%swatchesPerRow)*swatchW
		sy := y + i/swatchesPerRow
		style := tcell.StyleDefault.Background(opaqueColor(c))
		mark := "  "
		if c == t.Color && t.Mode == sprite.ModeBrush {
			mark = "<>"
			style = style.Foreground(tcell.ColorGray)
		}
		ed.drawString(sx, sy, mark, style)
	}
	y += paletteRows(len(ed.palette)) + 1

	// Preview takes n/2 rows under the frame list while playing
	previewRows := 0
	if ed.model.Playing() {
		previewRows = (n+1)/2 + 2
	}

	// Frames
	ed.drawString(x, y, fmt.Sprintf("Frames (%d):", ed.frameCount), styleSidebarH)
	y++
	ed.framesY = y
	ed.framesRows = h - 3 - y - previewRows
	if ed.framesRows < 1 {
		ed.framesRows = 1
	}
	ed.framesFirst = scrollStart(ed.canvasFrame, ed.frameCount, ed.framesRows)
	for i := ed.framesFirst; i < ed.frameCount && i < ed.framesFirst+ed.framesRows; i++ {
		style := styleSidebar
		if i == ed.canvasFrame {
			style = styleMenuSel
		}
		label := fmt.Sprintf(" Frame %-3d", i+1)
		if i < len(ed.thumbs) && ed.thumbs[i].IsBlank() {
			label += " (blank)"
		}
		ed.drawString(x, y, label, style)
		y++
	}
	y++

	if previewRows > 0 && ed.preview != nil {
		ed.drawString(x, y, fmt.Sprintf("Preview %d/%d", ed.model.PlaybackFrame()+1, ed.frameCount), styleSidebarH)
		ed.drawPreview(x, y+1, ed.preview)
	}
}

// scrollStart returns the first row to list so that selected is visible.
func scrollStart(selected, count, rows int) int {
	if count <= rows || selected < rows/2 {
		return 0
	}
	first := selected - rows/2
	if first > count-rows {
		first = count - rows
	}
	return first
}

// drawPreview renders b at one cell per two pixels using half blocks.
func (ed *Editor) drawPreview(x, y int, b *sprite.Buffer) {
	n := b.Size()
	for py := 0; py < n; py += 2 {
		for px := 0; px < n; px++ {
			top := cellColor(b.Pixel(px, py), px, py)
			bottom := cellColor(b.Pixel(px, py+1), px, py+1)
			if py+1 >= n {
				bottom = tcell.ColorDefault
			}
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			ed.screen.SetContent(x+px, y+py/2, '▀', nil, style)
		}
	}
}

func (ed *Editor) drawMenuOverlay(w, h int) {
	menuWidth := 40
	menuHeight := len(ed.menuItems) + 4

	// Centre on screen
	startX := (w - menuWidth) / 2
	startY := (h - menuHeight) / 2
	if startX < 0 {
		startX = 0
	}
	if startY < 0 {
		startY = 0
	}

	ed.drawBox(startX, startY, menuWidth, menuHeight, styleDefault)
	ed.drawString(startX+(menuWidth-12)/2, startY, " spriteedit ", styleSidebarH)

	for i, item := range ed.menuItems {
		style := styleMenu
		if i == ed.menuSelected {
			style = styleMenuSel
		}
		// Pad item to the inside width of the box
		ed.drawString(startX+1, startY+2+i, fmt.Sprintf(" %-*s", menuWidth-3, item), style)
	}
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1

	// Background
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	// File info
	fileInfo := "[New]"
	if path := ed.model.Project().Path(); path != "" {
		fileInfo = filepath.Base(path)
	}
	if ed.model.Modified() {
		fileInfo += " *"
	}
	ed.drawString(1, y, fileInfo, styleStatus)

	// Mode
	modeStr := ed.modeString()
	ed.drawString(w/2-len(modeStr)/2, y, modeStr, styleStatus)

	// Message
	if ed.message != "" {
		style := styleMsgInfo
		switch ed.messageType {
		case MsgError:
			style = styleMsgError
		case MsgSuccess:
			style = styleMsgSuccess
		}
		if ed.messageType != MsgInfo && flashInverted(time.Now().UnixMilli()-ed.messageFlashStart) {
			style = style.Reverse(true)
		}
		ed.drawString(w-len([]rune(ed.message))-2, y, ed.message, style)
	}

	// Help bar
	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, ed.helpString(), styleHelp)
}

// flashInverted reports whether a message shown elapsed milliseconds ago
// is drawn inverted: two short blinks over the first half second.
func flashInverted(elapsed int64) bool {
	if elapsed < 0 || elapsed >= 500 {
		return false
	}
	phase := elapsed / 125
	return phase == 1 || phase == 3
}

func (ed *Editor) drawInputBox(w, h int) {
	boxW := 60
	if boxW > w-2 {
		boxW = w - 2
	}
	boxH := 3
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	ed.drawBox(boxX, boxY, boxW, boxH, styleInput)
	text := ed.inputPrompt + ed.inputBuffer + "_"
	// Keep the end of long input visible
	if room := boxW - 4; len([]rune(text)) > room && room > 0 {
		r := []rune(text)
		text = string(r[len(r)-room:])
	}
	ed.drawString(boxX+2, boxY+1, text, styleInput)
}

func (ed *Editor) drawBox(x, y, w, h int, style tcell.Style) {
	// Corners
	ed.screen.SetContent(x, y, '┌', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)
	ed.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)

	// Horizontal borders
	for i := x + 1; i < x+w-1; i++ {
		ed.screen.SetContent(i, y, '─', nil, styleBorder)
		ed.screen.SetContent(i, y+h-1, '─', nil, styleBorder)
	}

	// Vertical borders
	for i := y + 1; i < y+h-1; i++ {
		ed.screen.SetContent(x, i, '│', nil, styleBorder)
		ed.screen.SetContent(x+w-1, i, '│', nil, styleBorder)
	}

	// Fill
	for row := y + 1; row < y+h-1; row++ {
		for col := x + 1; col < x+w-1; col++ {
			ed.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	i := 0
	for _, r := range s {
		ed.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}

func (ed *Editor) modeString() string {
	if ed.drawing {
		return "DRAW"
	}
	switch ed.mode {
	case ModeMenu:
		return "MENU"
	case ModeInput:
		return "INPUT"
	case ModeCanvas:
		if ed.model.Playing() {
			return "PLAY"
		}
		return ""
	default:
		return ""
	}
}

func (ed *Editor) helpString() string {
	switch ed.mode {
	case ModeMenu:
		return "↑↓:Select  Enter:Confirm  Esc:Canvas  q:Quit"
	case ModeCanvas:
		return "b:Brush e:Eraser 1-3:Width Tab:Colour n:Add x:Del c:Clear ←→:Frame hjkl/Space:Paint p:Play +/-:FPS ^Z/^Y:Undo/Redo ^S:Save Esc:Menu"
	case ModeInput:
		return "Type text  Enter:Confirm  Esc:Cancel"
	default:
		return "Ctrl+S:Save  Ctrl+Q:Quit"
	}
}
