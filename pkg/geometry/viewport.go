package geometry

import (
	"fmt"
	"math"
	"strings"
)

// FitMode selects how a natural image is mapped onto a display surface.
type FitMode int

const (
	// FitStretch scales each axis independently so the image fills the
	// stage exactly. Aspect ratio is not preserved.
	FitStretch FitMode = iota
	// FitContain scales uniformly so the whole image is visible and centres
	// it, leaving letterbox bands on one axis.
	FitContain
)

func (m FitMode) String() string {
	switch m {
	case FitStretch:
		return "stretch"
	case FitContain:
		return "contain"
	default:
		return "unknown"
	}
}

// ParseFitMode parses "stretch" or "contain".
func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stretch":
		return FitStretch, nil
	case "contain", "":
		return FitContain, nil
	default:
		return FitContain, fmt.Errorf("unknown fit mode %q", s)
	}
}

// Viewport relates natural image pixels to display pixels. It is a value
// recomputed from the current stage size whenever the display changes, so
// nothing needs to be invalidated on resize.
type Viewport struct {
	Natural Size
	Stage   Size
	Mode    FitMode
}

// NewViewport creates a viewport for an image of natural size w×h shown on a
// stage of the given size.
func NewViewport(natural, stage Size, mode FitMode) Viewport {
	return Viewport{Natural: natural, Stage: stage, Mode: mode}
}

// IdentityViewport returns a 1:1 viewport for an image of the given natural size.
func IdentityViewport(natural Size) Viewport {
	return Viewport{Natural: natural, Stage: natural, Mode: FitStretch}
}

// ScaleFactors returns display pixels per natural pixel on each axis.
func (v Viewport) ScaleFactors() (sx, sy float64) {
	if v.Natural.Empty() || v.Stage.Empty() {
		return 1, 1
	}
	sx = v.Stage.Width / v.Natural.Width
	sy = v.Stage.Height / v.Natural.Height
	if v.Mode == FitContain {
		s := math.Min(sx, sy)
		return s, s
	}
	return sx, sy
}

// DrawRect returns the rectangle the image occupies on the stage.
func (v Viewport) DrawRect() Rect {
	sx, sy := v.ScaleFactors()
	w := v.Natural.Width * sx
	h := v.Natural.Height * sy
	if v.Mode == FitContain && !v.Stage.Empty() {
		return Rect{X: (v.Stage.Width - w) / 2, Y: (v.Stage.Height - h) / 2, Width: w, Height: h}
	}
	return Rect{Width: w, Height: h}
}

// Transform returns the natural→display affine transform.
func (v Viewport) Transform() AffineTransform {
	sx, sy := v.ScaleFactors()
	r := v.DrawRect()
	return Translation(r.X, r.Y).Compose(Scale(sx, sy))
}

// ToDisplay maps a natural point onto the stage.
func (v Viewport) ToDisplay(p Point2D) Point2D {
	return v.Transform().Apply(p)
}

// ToNatural maps a stage point back into natural image space. The result is
// not clamped; points in the letterbox bands map outside the image.
func (v Viewport) ToNatural(p Point2D) Point2D {
	inv, ok := v.Transform().Inverse()
	if !ok {
		return p
	}
	return inv.Apply(p)
}

// DeltaToNatural converts a display-space displacement into natural pixels.
func (v Viewport) DeltaToNatural(d Point2D) Point2D {
	inv, ok := v.Transform().Inverse()
	if !ok {
		return d
	}
	return inv.ApplyVector(d)
}

// DisplayDistance returns the distance between two natural points measured
// on the stage.
func (v Viewport) DisplayDistance(a, b Point2D) float64 {
	return v.ToDisplay(a).Distance(v.ToDisplay(b))
}
