// Package interact turns pointer gestures on a displayed image into edits of a
// sequence.Document: hit testing, drag repositioning, the assignment editor
// and the artwork preview.
package interact

import (
	"artwork-sequencer/internal/sequence"
	"artwork-sequencer/pkg/geometry"
)

// Default marker dimensions in display pixels.
const (
	DefaultMarkerWidth  = 28.0
	DefaultMarkerHeight = 14.0
)

// MarkerLayout sizes the interactive markers. A two-way marker is split into
// a left half (side 1) and a right half (side 2) that meet at the placement;
// a single-way marker is one half-width square centred on it.
type MarkerLayout struct {
	Width  float64
	Height float64
	Mode   sequence.RoadMode
}

// NewMarkerLayout returns a layout with the default marker size.
func NewMarkerLayout(mode sequence.RoadMode) MarkerLayout {
	return MarkerLayout{Width: DefaultMarkerWidth, Height: DefaultMarkerHeight, Mode: mode}
}

// Half returns the display rectangle of one side of a marker centred at c.
func (l MarkerLayout) Half(c geometry.Point2D, s sequence.Side) geometry.Rect {
	half := l.Width / 2
	top := c.Y - l.Height/2
	if l.Mode != sequence.TwoWay {
		return geometry.NewRect(c.X-half/2, top, half, l.Height)
	}
	if s == sequence.Side2 {
		return geometry.NewRect(c.X, top, half, l.Height)
	}
	return geometry.NewRect(c.X-half, top, half, l.Height)
}

// Bounds returns the full marker rectangle centred at c.
func (l MarkerLayout) Bounds(c geometry.Point2D) geometry.Rect {
	if l.Mode != sequence.TwoWay {
		return l.Half(c, sequence.Side1)
	}
	return geometry.NewRect(c.X-l.Width/2, c.Y-l.Height/2, l.Width, l.Height)
}

// SideAt reports which half of the marker centred at c contains pt.
func (l MarkerLayout) SideAt(c, pt geometry.Point2D) (sequence.Side, bool) {
	if !l.Bounds(c).Contains(pt) {
		return 0, false
	}
	if l.Mode == sequence.TwoWay && pt.X >= c.X {
		return sequence.Side2, true
	}
	return sequence.Side1, true
}

// Hit is a marker half under the pointer.
type Hit struct {
	Placement sequence.Placement
	Side      sequence.Side
}

// HitTest finds the marker under the display point pt. Markers drawn later
// sit on top, so placements are tested from last to first.
func HitTest(doc *sequence.Document, vp geometry.Viewport, l MarkerLayout, pt geometry.Point2D) (Hit, bool) {
	ps := doc.Placements()
	for i := len(ps) - 1; i >= 0; i-- {
		c := vp.ToDisplay(ps[i].Position.ToFloat())
		if s, ok := l.SideAt(c, pt); ok {
			return Hit{Placement: ps[i], Side: s}, true
		}
	}
	return Hit{}, false
}
