// Package render draws a finished document onto its base image: one stroked,
// labelled box per placement side. Output depends only on the document, the
// base image and the style, so repeated renders are pixel-identical.
package render

import (
	"image/color"
	"math"

	"artwork-sequencer/internal/sequence"
	"artwork-sequencer/pkg/colorutil"
)

// Style controls box geometry and appearance.
type Style struct {
	BoxRatio    float64 // box edge as a fraction of the shorter image side
	MinBox      int     // box edge floor in pixels
	StrokeWidth int
	FontSize    float64 // label size in points at 72 DPI
	Side1Color  color.RGBA
	Side2Color  color.RGBA
	DrawIcons   bool // draw picked artwork inside its box
	IconOpacity float64
}

// DefaultStyle returns the export style: 1.5% boxes, at least 16 px, 2 px
// strokes and 12 pt bold labels in blue and red.
func DefaultStyle() Style {
	return Style{
		BoxRatio:    0.015,
		MinBox:      16,
		StrokeWidth: 2,
		FontSize:    12,
		Side1Color:  colorutil.Side1Stroke,
		Side2Color:  colorutil.Side2Stroke,
		IconOpacity: 1,
	}
}

// BoxSize returns the box edge for an image of w×h pixels.
func (s Style) BoxSize(w, h int) int {
	edge := int(math.Round(float64(min(w, h)) * s.BoxRatio))
	return max(s.MinBox, edge)
}

// Color returns the stroke color for a side.
func (s Style) Color(side sequence.Side) color.RGBA {
	if side == sequence.Side2 {
		return s.Side2Color
	}
	return s.Side1Color
}
