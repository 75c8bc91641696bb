// Package colorutil provides shared color utilities for the artwork sequencer.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Common overlay colors used throughout the application.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Blue  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Red   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// Side colors. Strokes are used on exported composites, fills and borders on
// the interactive markers.
var (
	Side1Stroke = Blue
	Side2Stroke = Red

	Side1Fill   = color.RGBA{R: 0x00, G: 0x66, B: 0xFF, A: 255}
	Side2Fill   = color.RGBA{R: 0xFF, G: 0x33, B: 0x33, A: 255}
	Side1Border = color.RGBA{R: 0x00, G: 0x33, B: 0xAA, A: 255}
	Side2Border = color.RGBA{R: 0xAA, G: 0x00, B: 0x00, A: 255}
)

// ParseHex parses "#RGB", "#RRGGBB" or "#RRGGBBAA" (the leading '#' is optional).
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Hex formats c as "#RRGGBB", appending alpha only when it is not opaque.
func Hex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// WithAlpha returns c with its alpha replaced.
func WithAlpha(c color.RGBA, a uint8) color.RGBA {
	c.A = a
	return c
}
