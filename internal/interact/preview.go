package interact

import (
	"math"

	"artwork-sequencer/pkg/geometry"
)

// Preview sizing, in display pixels.
const (
	PreviewMaxEdge  = 400.0
	PreviewFraction = 0.35
	PreviewMargin   = 20.0
)

// PreviewRect places an artwork preview of natural size thumb over the drawn
// image. The preview goes against the far edge from the placement: on the
// right when the placement sits in the left half of the image, else on the
// left. It is vertically centred and kept a margin inside the drawn image
// where the image is large enough.
func PreviewRect(vp geometry.Viewport, placementX float64, thumb geometry.Size) geometry.Rect {
	size := fitPreview(vp.Stage, thumb)
	draw := vp.DrawRect()

	var x float64
	if placementX < vp.Natural.Width/2 {
		x = draw.Right() - size.Width - PreviewMargin
	} else {
		x = draw.X + PreviewMargin
	}
	y := draw.Y + (draw.Height-size.Height)/2

	x = math.Max(draw.X+PreviewMargin, math.Min(x, draw.Right()-size.Width-PreviewMargin))
	y = math.Max(draw.Y+PreviewMargin, math.Min(y, draw.Bottom()-size.Height-PreviewMargin))
	return geometry.NewRect(x, y, size.Width, size.Height)
}

func fitPreview(stage, thumb geometry.Size) geometry.Size {
	maxW := math.Min(stage.Width*PreviewFraction, PreviewMaxEdge)
	maxH := math.Min(stage.Height*PreviewFraction, PreviewMaxEdge)
	if thumb.Empty() {
		return geometry.NewSize(maxW, maxH)
	}
	s := math.Min(1, math.Min(maxW/thumb.Width, maxH/thumb.Height))
	return geometry.NewSize(thumb.Width*s, thumb.Height*s)
}
