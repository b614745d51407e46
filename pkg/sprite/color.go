package sprite

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa" (the leading # is
// optional). Colours without an alpha component are opaque.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	alpha := uint64(255)
	switch len(s) {
	case 4, 7:
	case 9:
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid colour %q: %v", s, err)
		}
		alpha = a
		s = s[:7]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %v", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{r, g, b, uint8(alpha)}, nil
}

// FormatColor returns c as "#rrggbb", or "#rrggbbaa" when not opaque.
func FormatColor(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Palette returns black, white, and n-2 fully saturated hues spaced evenly
// around the colour wheel.
func Palette(n int) []color.NRGBA {
	out := []color.NRGBA{{0, 0, 0, 255}, {255, 255, 255, 255}}
	hues := n - len(out)
	for i := 0; i < hues; i++ {
		c := colorful.Hsv(360*float64(i)/float64(hues), 1, 1).Clamped()
		r, g, b := c.RGB255()
		out = append(out, color.NRGBA{r, g, b, 255})
	}
	if n < len(out) {
		if n < 0 {
			n = 0
		}
		out = out[:n]
	}
	return out
}
