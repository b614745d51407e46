// Raster exports of a project: contact sheets, per-frame PNGs and animated
// GIFs.

package spritefile

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ha1tch/sprite-toolkit/pkg/sprite"
)

// SheetOptions configures contact sheet rendering.
type SheetOptions struct {
	Columns  int  // frames per row
	Scale    int  // output pixels per canvas pixel
	Padding  int  // gap around and between frames
	Labels   bool // draw frame numbers under each frame
	Checker  bool // show transparency as a checkerboard
	FontSize int
}

// DefaultSheetOptions returns sensible defaults for contact sheets.
func DefaultSheetOptions() SheetOptions {
	return SheetOptions{
		Columns:  4,
		Scale:    8,
		Padding:  8,
		Labels:   true,
		Checker:  true,
		FontSize: 12,
	}
}

// Colours used in rendering
var (
	colorCheckerLight = color.NRGBA{204, 204, 204, 255}
	colorCheckerDark  = color.NRGBA{153, 153, 153, 255}
	colorLabel        = color.NRGBA{51, 51, 51, 255} // #333
)

// Scale returns b enlarged by factor with nearest-neighbour sampling, so
// every canvas pixel becomes a factor×factor block of identical pixels.
func Scale(b *sprite.Buffer, factor int) *image.NRGBA {
	if factor < 1 {
		factor = 1
	}
	n := b.Size() * factor
	dst := image.NewNRGBA(image.Rect(0, 0, n, n))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), b, b.Bounds(), draw.Src, nil)
	return dst
}

// drawChecker fills r with a checkerboard of cell×cell squares.
func drawChecker(dst *image.NRGBA, r image.Rectangle, cell int) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := colorCheckerLight
			if ((x-r.Min.X)/cell+(y-r.Min.Y)/cell)%2 == 1 {
				c = colorCheckerDark
			}
			dst.SetNRGBA(x, y, c)
		}
	}
}

func newLabelFace(size int) (font.Face, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// drawLabel draws text horizontally centred on x with its baseline at y.
func drawLabel(dst draw.Image, face font.Face, x, y int, text string) {
	width := font.MeasureString(face, text).Ceil()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(colorLabel),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x - width/2), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// SheetImage lays every frame of p out in a grid.
func SheetImage(p *sprite.Project, opts SheetOptions) (*image.NRGBA, error) {
	if opts.Columns < 1 {
		opts.Columns = 1
	}
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	if opts.FontSize < 1 {
		opts.FontSize = 12
	}

	frames := p.LatestBuffers()
	cols := opts.Columns
	if len(frames) < cols {
		cols = len(frames)
	}
	rows := (len(frames) + cols - 1) / cols

	cell := p.Size() * opts.Scale
	labelHeight := 0
	var face font.Face
	if opts.Labels {
		var err error
		face, err = newLabelFace(opts.FontSize)
		if err != nil {
			return nil, fmt.Errorf("loading label font: %w", err)
		}
		defer face.Close()
		labelHeight = face.Metrics().Height.Ceil() + opts.Padding/2
	}

	width := cols*cell + (cols+1)*opts.Padding
	height := rows*(cell+labelHeight) + (rows+1)*opts.Padding
	sheet := image.NewNRGBA(image.Rect(0, 0, width, height))

	for i, b := range frames {
		col, row := i%cols, i/cols
		x := opts.Padding + col*(cell+opts.Padding)
		y := opts.Padding + row*(cell+labelHeight+opts.Padding)
		r := image.Rect(x, y, x+cell, y+cell)

		op := draw.Src
		if opts.Checker {
			drawChecker(sheet, r, opts.Scale)
			op = draw.Over
		}
		draw.NearestNeighbor.Scale(sheet, r, b, b.Bounds(), op, nil)

		if face != nil {
			ascent := face.Metrics().Ascent.Ceil()
			drawLabel(sheet, face, x+cell/2, y+cell+opts.Padding/2+ascent, strconv.Itoa(i+1))
		}
	}
	return sheet, nil
}

// RenderSheet writes a PNG contact sheet of every frame of p.
func RenderSheet(p *sprite.Project, w io.Writer, opts SheetOptions) error {
	img, err := SheetImage(p, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// ExportFrames writes each frame of p as dir/prefix_NNN.png, scaled by
// factor, and returns the paths written.
func ExportFrames(p *sprite.Project, dir, prefix string, factor int) ([]string, error) {
	var paths []string
	for i, b := range p.LatestBuffers() {
		path := filepath.Join(dir, fmt.Sprintf("%s_%03d.png", prefix, i+1))
		if err := writePNGFile(path, Scale(b, factor)); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePNGFile(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", sprite.ErrIOFailure, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", sprite.ErrIOFailure, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", sprite.ErrIOFailure, err)
	}
	return nil
}

// gifPalette is the web-safe palette preceded by a transparent entry.
var gifPalette = func() color.Palette {
	pal := make(color.Palette, 0, len(palette.WebSafe)+1)
	pal = append(pal, color.Transparent)
	pal = append(pal, palette.WebSafe...)
	return pal
}()

// RenderGIF writes p as an endlessly looping animated GIF at the project
// frame rate. Pixels less than half opaque become transparent; the rest are
// mapped to the nearest palette colour.
func RenderGIF(p *sprite.Project, w io.Writer, factor int) error {
	delay := 100 / p.FPS()
	if delay < 2 {
		delay = 2
	}

	anim := &gif.GIF{LoopCount: 0}
	for _, b := range p.LatestBuffers() {
		src := Scale(b, factor)
		frame := image.NewPaletted(src.Bounds(), gifPalette)
		for y := 0; y < src.Bounds().Dy(); y++ {
			for x := 0; x < src.Bounds().Dx(); x++ {
				c := src.NRGBAAt(x, y)
				if c.A < 128 {
					frame.SetColorIndex(x, y, 0)
					continue
				}
				c.A = 255
				idx := gifPalette[1:].Index(c) + 1
				frame.SetColorIndex(x, y, uint8(idx))
			}
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}
	return gif.EncodeAll(w, anim)
}
