package sprite

import "time"

// Player steps through a fixed sequence of frames for preview playback. It
// is driven by an external timer calling Tick once per interval.
type Player struct {
	frames []*Buffer
	cursor int
}

// NewPlayer creates a player positioned at the first frame.
func NewPlayer(frames []*Buffer) *Player {
	return &Player{frames: frames}
}

// Reset replaces the frames and rewinds to the first one.
func (pl *Player) Reset(frames []*Buffer) {
	pl.frames = frames
	pl.cursor = 0
}

// Tick returns the frame under the cursor and advances, wrapping at the
// end. It returns nil when there are no frames.
func (pl *Player) Tick() *Buffer {
	if len(pl.frames) == 0 {
		return nil
	}
	if pl.cursor >= len(pl.frames) {
		pl.cursor = 0
	}
	b := pl.frames[pl.cursor]
	pl.cursor++
	return b
}

// Cursor returns the index of the frame the next Tick returns.
func (pl *Player) Cursor() int {
	if pl.cursor >= len(pl.frames) {
		return 0
	}
	return pl.cursor
}

// Len returns the number of frames being played.
func (pl *Player) Len() int {
	return len(pl.frames)
}

// Interval returns the time between ticks at the given frame rate.
func Interval(fps int) time.Duration {
	if fps < 1 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}
