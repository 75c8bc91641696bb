package geometry

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestViewportStretchRoundTrip(t *testing.T) {
	v := NewViewport(NewSize(1000, 500), NewSize(500, 500), FitStretch)

	sx, sy := v.ScaleFactors()
	if !almostEqual(sx, 0.5) || !almostEqual(sy, 1) {
		t.Fatalf("scale = (%v, %v), want (0.5, 1)", sx, sy)
	}

	d := v.ToDisplay(NewPoint2D(200, 100))
	if !almostEqual(d.X, 100) || !almostEqual(d.Y, 100) {
		t.Fatalf("ToDisplay = %+v, want (100, 100)", d)
	}

	n := v.ToNatural(d)
	if !almostEqual(n.X, 200) || !almostEqual(n.Y, 100) {
		t.Fatalf("ToNatural = %+v, want (200, 100)", n)
	}
}

func TestViewportContainCentres(t *testing.T) {
	// 2:1 image on a square stage: uniform scale 0.5, vertical letterbox.
	v := NewViewport(NewSize(1000, 500), NewSize(500, 500), FitContain)

	r := v.DrawRect()
	if !almostEqual(r.X, 0) || !almostEqual(r.Y, 125) || !almostEqual(r.Width, 500) || !almostEqual(r.Height, 250) {
		t.Fatalf("DrawRect = %+v", r)
	}

	d := v.ToDisplay(NewPoint2D(0, 0))
	if !almostEqual(d.X, 0) || !almostEqual(d.Y, 125) {
		t.Fatalf("origin maps to %+v, want (0, 125)", d)
	}

	n := v.ToNatural(NewPoint2D(250, 250))
	if !almostEqual(n.X, 500) || !almostEqual(n.Y, 250) {
		t.Fatalf("stage centre maps to %+v, want image centre", n)
	}
}

func TestViewportDeltaIgnoresOffset(t *testing.T) {
	v := NewViewport(NewSize(400, 200), NewSize(800, 800), FitContain)

	d := v.DeltaToNatural(NewPoint2D(50, -50))
	if !almostEqual(d.X, 25) || !almostEqual(d.Y, -25) {
		t.Fatalf("DeltaToNatural = %+v, want (25, -25)", d)
	}
}

func TestViewportDegenerateStage(t *testing.T) {
	v := NewViewport(NewSize(100, 100), Size{}, FitContain)
	p := NewPoint2D(10, 20)
	if got := v.ToNatural(v.ToDisplay(p)); !almostEqual(got.X, 10) || !almostEqual(got.Y, 20) {
		t.Fatalf("degenerate viewport should act as identity, got %+v", got)
	}
}

func TestPointIntClamp(t *testing.T) {
	tests := []struct {
		in   PointInt
		want PointInt
	}{
		{PointInt{5, 5}, PointInt{5, 5}},
		{PointInt{-3, 4}, PointInt{0, 4}},
		{PointInt{100, 100}, PointInt{9, 19}},
		{PointInt{10, 20}, PointInt{9, 19}},
	}
	for _, tt := range tests {
		if got := tt.in.Clamp(10, 20); got != tt.want {
			t.Errorf("Clamp(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
		if !tt.want.In(10, 20) {
			t.Errorf("%+v should be inside bounds", tt.want)
		}
	}
}

func TestParseFitMode(t *testing.T) {
	if m, err := ParseFitMode("Stretch"); err != nil || m != FitStretch {
		t.Fatalf("ParseFitMode(Stretch) = %v, %v", m, err)
	}
	if _, err := ParseFitMode("zoom"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
