package sprite

import "image"

// ScreenSize is the width and height of the logical screen space pointer
// events arrive in, independent of the canvas size.
const ScreenSize = 600

// ScreenToPixel maps a point in screen space to the pixel of an n×n canvas
// underneath it. Points outside the screen map to pixels outside the canvas;
// coordinates are clamped to [-ScreenSize, 2*ScreenSize] first, so far away
// points land at most n pixels off the canvas.
func ScreenToPixel(p image.Point, n int) image.Point {
	x := clamp(p.X, -ScreenSize, 2*ScreenSize)
	y := clamp(p.Y, -ScreenSize, 2*ScreenSize)
	return image.Pt(floorDiv(x*n, ScreenSize), floorDiv(y*n, ScreenSize))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PixelToScreen returns the screen space point at the centre of pixel p on
// an n×n canvas. ScreenToPixel(PixelToScreen(p, n), n) == p.
func PixelToScreen(p image.Point, n int) image.Point {
	return image.Pt(floorDiv((2*p.X+1)*ScreenSize, 2*n), floorDiv((2*p.Y+1)*ScreenSize, 2*n))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// StrokeSession is the state of one pointer gesture. It owns the working
// copy the gesture draws into; the frame's history is only touched when the
// session is committed.
type StrokeSession struct {
	frame int
	tool  Tool
	start image.Point
	last  image.Point
	live  *Buffer
	moved bool
}

func newStrokeSession(frame int, base *Buffer, start image.Point, t Tool) *StrokeSession {
	return &StrokeSession{
		frame: frame,
		tool:  t,
		start: start,
		last:  start,
		live:  base.Clone(),
	}
}

// Frame returns the index of the frame the session draws into.
func (s *StrokeSession) Frame() int {
	return s.frame
}

// Tool returns the tool the session draws with.
func (s *StrokeSession) Tool() Tool {
	return s.tool
}

// LastPoint returns the last pixel the session touched.
func (s *StrokeSession) LastPoint() image.Point {
	return s.last
}

// moveTo draws from the last point to p.
func (s *StrokeSession) moveTo(p image.Point) {
	s.live.DrawLine(s.last, p, s.tool.Ink(), s.tool.Width)
	s.last = p
	s.moved = true
}

// finish returns the buffer to commit. A gesture that never moved leaves a
// single dab at its start point.
func (s *StrokeSession) finish() *Buffer {
	if !s.moved {
		s.live.DrawLine(s.start, s.start, s.tool.Ink(), s.tool.Width)
	}
	return s.live
}
