// Package sprite provides the frame and version model of a raster sprite
// animation: pixel buffers, drawing tools, per-frame undo/redo history,
// stroke sessions and projects.
package sprite

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
)

// Canvas size limits. Every frame of a project shares one square size.
const (
	MinSize = 2
	MaxSize = 32
)

// Transparent is fully transparent black, the content of a blank buffer.
var Transparent = color.NRGBA{}

// Buffer is a square grid of non-premultiplied RGBA pixels. Its size never
// changes after creation.
type Buffer struct {
	size int
	img  *image.NRGBA
}

// NewBuffer creates a blank size×size buffer.
func NewBuffer(size int) (*Buffer, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: canvas size %d not in [%d, %d]", ErrOutOfRange, size, MinSize, MaxSize)
	}
	return &Buffer{
		size: size,
		img:  image.NewNRGBA(image.Rect(0, 0, size, size)),
	}, nil
}

// BufferFromImage copies img into a new buffer. The image must be square
// and within the supported size range.
func BufferFromImage(img image.Image) (*Buffer, error) {
	bounds := img.Bounds()
	if bounds.Dx() != bounds.Dy() {
		return nil, fmt.Errorf("%w: image is %dx%d, not square", ErrOutOfRange, bounds.Dx(), bounds.Dy())
	}
	b, err := NewBuffer(bounds.Dx())
	if err != nil {
		return nil, err
	}

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < b.size; y++ {
			start := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(b.img.Pix[y*b.img.Stride:], src.Pix[start:start+b.size*4])
		}
		return b, nil
	}

	for y := 0; y < b.size; y++ {
		for x := 0; x < b.size; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			b.img.SetNRGBA(x, y, c)
		}
	}
	return b, nil
}

// Size returns the width (and height) of the buffer in pixels.
func (b *Buffer) Size() int {
	return b.size
}

// Contains reports whether p is a pixel of the buffer.
func (b *Buffer) Contains(p image.Point) bool {
	return p.X >= 0 && p.X < b.size && p.Y >= 0 && p.Y < b.size
}

// Pixel returns the colour at (x, y), or Transparent outside the buffer.
func (b *Buffer) Pixel(x, y int) color.NRGBA {
	if !b.Contains(image.Pt(x, y)) {
		return Transparent
	}
	return b.img.NRGBAAt(x, y)
}

// SetPixel replaces the colour at (x, y) without blending.
func (b *Buffer) SetPixel(x, y int, c color.NRGBA) error {
	if !b.Contains(image.Pt(x, y)) {
		return fmt.Errorf("%w: pixel (%d, %d) outside %dx%d canvas", ErrOutOfRange, x, y, b.size, b.size)
	}
	b.img.SetNRGBA(x, y, c)
	return nil
}

// Fill replaces every pixel with c.
func (b *Buffer) Fill(c color.NRGBA) {
	for i := 0; i < len(b.img.Pix); i += 4 {
		b.img.Pix[i+0] = c.R
		b.img.Pix[i+1] = c.G
		b.img.Pix[i+2] = c.B
		b.img.Pix[i+3] = c.A
	}
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	img := image.NewNRGBA(b.img.Rect)
	copy(img.Pix, b.img.Pix)
	return &Buffer{size: b.size, img: img}
}

// Equal reports whether both buffers have the same size and identical
// pixels, alpha included.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.size == other.size && bytes.Equal(b.img.Pix, other.img.Pix)
}

// IsBlank reports whether every pixel is fully transparent.
func (b *Buffer) IsBlank() bool {
	for i := 3; i < len(b.img.Pix); i += 4 {
		if b.img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// DrawLine rasterises a straight segment from one pixel to another with a
// square pen of the given width. A zero-alpha colour erases the covered
// pixels; any other colour is composited source-over. from == to draws a
// single dab. Covered pixels outside the buffer are clipped.
func (b *Buffer) DrawLine(from, to image.Point, c color.NRGBA, width int) {
	if width < 1 {
		width = 1
	}
	// Only the part of the segment within a pen width of the grid can
	// cover pixels.
	grown := image.Rect(-width, -width, b.size+width, b.size+width)
	from, to, ok := clipSegment(from, to, grown)
	if !ok {
		return
	}
	covered := make([]bool, b.size*b.size)

	// Bresenham's line algorithm with square pen
	dx := abs(to.X - from.X)
	dy := abs(to.Y - from.Y)
	sx, sy := 1, 1
	if from.X > to.X {
		sx = -1
	}
	if from.Y > to.Y {
		sy = -1
	}
	e := dx - dy
	x, y := from.X, from.Y
	for {
		b.stamp(covered, x, y, width)
		if x == to.X && y == to.Y {
			break
		}
		e2 := 2 * e
		if e2 > -dy {
			e -= dy
			x += sx
		}
		if e2 < dx {
			e += dx
			y += sy
		}
	}

	for i, hit := range covered {
		if !hit {
			continue
		}
		px, py := i%b.size, i/b.size
		if c.A == 0 {
			b.img.SetNRGBA(px, py, Transparent)
			continue
		}
		b.img.SetNRGBA(px, py, over(c, b.img.NRGBAAt(px, py)))
	}
}

// clipSegment clips the segment from-to to r with the Liang-Barsky
// algorithm. It reports false when no part of the segment lies in r. A
// clipped end point lies exactly on the edge that clipped it.
func clipSegment(from, to image.Point, r image.Rectangle) (image.Point, image.Point, bool) {
	x0, y0 := float64(from.X), float64(from.Y)
	dx, dy := float64(to.X)-x0, float64(to.Y)-y0
	xmin, ymin := r.Min.X, r.Min.Y
	xmax, ymax := r.Max.X-1, r.Max.Y-1

	edges := [4]struct {
		p, q  float64
		xAxis bool
		at    int
	}{
		{-dx, x0 - float64(xmin), true, xmin},
		{dx, float64(xmax) - x0, true, xmax},
		{-dy, y0 - float64(ymin), false, ymin},
		{dy, float64(ymax) - y0, false, ymax},
	}
	t0, t1 := 0.0, 1.0
	enter, leave := -1, -1
	for i, e := range edges {
		if e.p == 0 {
			if e.q < 0 {
				return from, to, false
			}
			continue
		}
		t := e.q / e.p
		if e.p < 0 {
			if t > t1 {
				return from, to, false
			}
			if t > t0 {
				t0, enter = t, i
			}
		} else {
			if t < t0 {
				return from, to, false
			}
			if t < t1 {
				t1, leave = t, i
			}
		}
	}

	point := func(t float64, edge int) image.Point {
		e := edges[edge]
		if e.xAxis {
			y := int(math.Round(y0 + t*dy))
			return image.Pt(e.at, clamp(y, ymin, ymax))
		}
		x := int(math.Round(x0 + t*dx))
		return image.Pt(clamp(x, xmin, xmax), e.at)
	}
	if leave >= 0 {
		to = point(t1, leave)
	}
	if enter >= 0 {
		from = point(t0, enter)
	}
	return from, to, true
}

// stamp marks the pen square centred on (x, y).
func (b *Buffer) stamp(covered []bool, x, y, width int) {
	x0 := x - width/2
	y0 := y - width/2
	for py := y0; py < y0+width; py++ {
		if py < 0 || py >= b.size {
			continue
		}
		for px := x0; px < x0+width; px++ {
			if px < 0 || px >= b.size {
				continue
			}
			covered[py*b.size+px] = true
		}
	}
}

// over composites src onto dst (both non-premultiplied).
func over(src, dst color.NRGBA) color.NRGBA {
	if src.A == 0xff || dst.A == 0 {
		return src
	}
	sa := uint32(src.A)
	da := uint32(dst.A) * (0xff - sa) / 0xff
	outA := sa + da
	if outA == 0 {
		return Transparent
	}
	mix := func(s, d uint8) uint8 {
		return uint8((uint32(s)*sa + uint32(d)*da + outA/2) / outA)
	}
	return color.NRGBA{
		R: mix(src.R, dst.R),
		G: mix(src.G, dst.G),
		B: mix(src.B, dst.B),
		A: uint8(outA),
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ToImage returns a copy of the buffer as an *image.NRGBA.
func (b *Buffer) ToImage() *image.NRGBA {
	return b.Clone().img
}

// At implements the image.Image interface.
func (b *Buffer) At(x, y int) color.Color {
	return b.Pixel(x, y)
}

// Bounds implements the image.Image interface.
func (b *Buffer) Bounds() image.Rectangle {
	return b.img.Rect
}

// ColorModel implements the image.Image interface.
func (b *Buffer) ColorModel() color.Model {
	return color.NRGBAModel
}

// EncodePNG writes the buffer as a lossless PNG.
func (b *Buffer) EncodePNG(w io.Writer) error {
	return png.Encode(w, b.img)
}

// PNG returns the PNG encoding of the buffer.
func (b *Buffer) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodePNG reads a PNG image that must be exactly size×size.
func DecodePNG(r io.Reader, size int) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	// Check dimensions before allocating pixels for a hostile header.
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	if cfg.Width != size || cfg.Height != size {
		return nil, fmt.Errorf("%w: image is %dx%d, want %dx%d", ErrCorruptFile, cfg.Width, cfg.Height, size, size)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	b, err := BufferFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	return b, nil
}
