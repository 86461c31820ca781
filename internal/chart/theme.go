package chart

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Theme holds every color the renderer uses. It is passed explicitly to each
// render call.
type Theme struct {
	Background color.RGBA
	Text       color.RGBA
	Muted      color.RGBA
	Accent     color.RGBA
	Stem       color.RGBA
	Grid       color.RGBA
	Band       color.RGBA
	BandEdge   color.RGBA
}

// DefaultTheme is the light report theme: lead grey text, orange marks.
func DefaultTheme() Theme {
	return Theme{
		Background: color.RGBA{0xff, 0xff, 0xff, 0xff},
		Text:       color.RGBA{0x11, 0x18, 0x27, 0xff},
		Muted:      color.RGBA{0x6b, 0x72, 0x80, 0xff},
		Accent:     color.RGBA{0xf9, 0x73, 0x16, 0xff},
		Stem:       premultiply(color.RGBA{0xf9, 0x73, 0x16, 0xff}, 0.55),
		Grid:       premultiply(color.RGBA{0x11, 0x18, 0x27, 0xff}, 0.10),
		Band:       premultiply(color.RGBA{0x22, 0xc5, 0x5e, 0xff}, 0.15),
		BandEdge:   color.RGBA{0x16, 0xa3, 0x4a, 0xff},
	}
}

// ParseHex reads "#rrggbb" or "#rgb".
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// premultiply applies an alpha to an opaque color; image/color expects
// alpha-premultiplied components.
func premultiply(c color.RGBA, alpha float64) color.RGBA {
	a := clamp01(alpha)
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(255 * a),
	}
}
