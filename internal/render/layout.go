package render

import (
	"image"

	"artwork-sequencer/internal/sequence"
)

// Box is one drawn rectangle in natural image pixels.
type Box struct {
	Placement sequence.PlacementID
	Side      sequence.Side
	Rect      image.Rectangle
	Label     string
	Value     sequence.Assignment
}

// BoxRects lays out the boxes of a placement at (x, y) with edge size. A
// single-way box is centred on the point; two-way boxes sit side by side,
// side 1 ending and side 2 starting at x.
func BoxRects(mode sequence.RoadMode, x, y, size int) map[sequence.Side]image.Rectangle {
	top := y - (size+1)/2
	if mode != sequence.TwoWay {
		left := x - (size+1)/2
		return map[sequence.Side]image.Rectangle{
			sequence.Side1: image.Rect(left, top, left+size, top+size),
		}
	}
	return map[sequence.Side]image.Rectangle{
		sequence.Side1: image.Rect(x-size, top, x, top+size),
		sequence.Side2: image.Rect(x, top, x+size, top+size),
	}
}

// Layout returns every box of doc in drawing order: placements in insertion
// order, side 1 before side 2.
func Layout(doc *sequence.Document, style Style) []Box {
	img := doc.Image()
	size := style.BoxSize(img.Width, img.Height)
	var boxes []Box
	for _, p := range doc.Placements() {
		rects := BoxRects(doc.Mode(), p.Position.X, p.Position.Y, size)
		for _, side := range doc.Mode().Sides() {
			a := p.Assignment(side)
			boxes = append(boxes, Box{
				Placement: p.ID,
				Side:      side,
				Rect:      rects[side],
				Label:     a.Label(),
				Value:     a,
			})
		}
	}
	return boxes
}
