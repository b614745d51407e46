package sprite

import (
	"fmt"
	"image/color"
)

// Mode selects what a stroke does to the pixels it covers.
type Mode int

const (
	ModeBrush Mode = iota
	ModeEraser
)

func (m Mode) String() string {
	switch m {
	case ModeBrush:
		return "brush"
	case ModeEraser:
		return "eraser"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MaxWidth is the widest pen a tool accepts.
const MaxWidth = MaxSize

// Tool is the active drawing mode, brush colour and pen width. It is a plain
// value: shells keep one and pass it into each stroke.
type Tool struct {
	Mode  Mode
	Color color.NRGBA // brush colour, kept while the eraser is active
	Width int
}

// DefaultTool returns an opaque black brush one pixel wide.
func DefaultTool() Tool {
	return Tool{
		Mode:  ModeBrush,
		Color: color.NRGBA{0, 0, 0, 255},
		Width: 1,
	}
}

// WithColor selects the brush with colour c.
func (t Tool) WithColor(c color.NRGBA) Tool {
	t.Color = c
	t.Mode = ModeBrush
	return t
}

// WithBrush selects the brush, keeping the last brush colour.
func (t Tool) WithBrush() Tool {
	t.Mode = ModeBrush
	return t
}

// WithEraser selects the eraser.
func (t Tool) WithEraser() Tool {
	t.Mode = ModeEraser
	return t
}

// WithWidth sets the pen width in pixels.
func (t Tool) WithWidth(w int) (Tool, error) {
	if w < 1 || w > MaxWidth {
		return t, fmt.Errorf("%w: width %d not in [1, %d]", ErrOutOfRange, w, MaxWidth)
	}
	t.Width = w
	return t, nil
}

// Ink returns the colour handed to the rasteriser. The eraser draws with
// fully transparent ink, which DrawLine treats as erase.
func (t Tool) Ink() color.NRGBA {
	if t.Mode == ModeEraser {
		return Transparent
	}
	return t.Color
}
