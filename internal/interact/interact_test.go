package interact

import (
	"errors"
	"math"
	"testing"

	"artwork-sequencer/internal/sequence"
	"artwork-sequencer/pkg/geometry"
)

func newDoc(t *testing.T, mode sequence.RoadMode, useImages bool, w, h int) *sequence.Document {
	t.Helper()
	opts := sequence.Options{
		Mode:         mode,
		ArtworkCount: 3,
		UseImages:    useImages,
		Image:        sequence.BaseImage{Width: w, Height: h},
	}
	if useImages {
		opts.Catalog = sequence.NewCatalog([]string{"red.png", "green.png", "blue.png"})
	}
	d, err := sequence.NewDocument(opts)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	return d
}

func pt(x, y float64) geometry.Point2D { return geometry.NewPoint2D(x, y) }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestDragByFiftyAtUnitScale(t *testing.T) {
	d := newDoc(t, sequence.TwoWay, false, 400, 300)
	p, _ := d.CreateAt(geometry.PointInt{X: 100, Y: 100})
	vp := geometry.IdentityViewport(d.NaturalSize())
	c := NewDragController()

	if _, ok := c.PointerDown(d, vp, NewMarkerLayout(d.Mode()), pt(95, 100)); !ok {
		t.Fatal("pointer down on side 1 half should hit")
	}
	if c.State() != Dragging {
		t.Fatalf("state = %v, want dragging", c.State())
	}
	for _, step := range []float64{10, 25, 50} {
		if _, _, err := c.PointerMove(d, vp, pt(95+step, 100+step)); err != nil {
			t.Fatal(err)
		}
	}
	res, err := c.PointerUp(d, vp, pt(145, 150))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Moved || res.Click() || res.ID != p.ID || res.Side != sequence.Side1 {
		t.Fatalf("unexpected result %+v", res)
	}
	got, _ := d.Get(p.ID)
	if got.Position != (geometry.PointInt{X: 150, Y: 150}) {
		t.Fatalf("position = %v, want (150,150)", got.Position)
	}
	if c.State() != Idle {
		t.Fatal("controller should be idle after release")
	}
}

func TestDragClampsToImage(t *testing.T) {
	d := newDoc(t, sequence.SingleWay, false, 120, 120)
	p, _ := d.CreateAt(geometry.PointInt{X: 100, Y: 100})
	vp := geometry.IdentityViewport(d.NaturalSize())
	c := NewDragController()

	c.PointerDown(d, vp, NewMarkerLayout(d.Mode()), pt(100, 100))
	if _, err := c.PointerUp(d, vp, pt(150, 150)); err != nil {
		t.Fatal(err)
	}
	got, _ := d.Get(p.ID)
	if got.Position != (geometry.PointInt{X: 119, Y: 119}) {
		t.Fatalf("position = %v, want clamped (119,119)", got.Position)
	}
}

func TestDragScalesDeltaToNatural(t *testing.T) {
	d := newDoc(t, sequence.SingleWay, false, 1000, 1000)
	p, _ := d.CreateAt(geometry.PointInt{X: 500, Y: 500})
	vp := geometry.NewViewport(d.NaturalSize(), geometry.NewSize(500, 250), geometry.FitStretch)
	c := NewDragController()

	start := vp.ToDisplay(pt(500, 500))
	if _, ok := c.PointerDown(d, vp, NewMarkerLayout(d.Mode()), start); !ok {
		t.Fatal("expected hit")
	}
	if _, err := c.PointerUp(d, vp, start.Add(pt(10, 10))); err != nil {
		t.Fatal(err)
	}
	got, _ := d.Get(p.ID)
	if got.Position != (geometry.PointInt{X: 520, Y: 540}) {
		t.Fatalf("position = %v, want (520,540)", got.Position)
	}
}

func TestSmallMovementIsAClick(t *testing.T) {
	d := newDoc(t, sequence.TwoWay, false, 200, 200)
	p, _ := d.CreateAt(geometry.PointInt{X: 50, Y: 50})
	vp := geometry.IdentityViewport(d.NaturalSize())
	c := NewDragController()

	c.PointerDown(d, vp, NewMarkerLayout(d.Mode()), pt(55, 50))
	if _, changed, _ := c.PointerMove(d, vp, pt(57, 52)); changed {
		t.Fatal("movement within the threshold must not move the placement")
	}
	res, err := c.PointerUp(d, vp, pt(56, 48))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Click() || res.Side != sequence.Side2 {
		t.Fatalf("expected a click on side 2, got %+v", res)
	}
	if got, _ := d.Get(p.ID); got.Position != p.Position {
		t.Fatalf("click moved placement to %v", got.Position)
	}
}

func TestHitTestHalvesAndStacking(t *testing.T) {
	d := newDoc(t, sequence.TwoWay, false, 200, 200)
	a, _ := d.CreateAt(geometry.PointInt{X: 50, Y: 50})
	b, _ := d.CreateAt(geometry.PointInt{X: 56, Y: 50})
	vp := geometry.IdentityViewport(d.NaturalSize())
	l := NewMarkerLayout(d.Mode())

	tests := []struct {
		at   geometry.Point2D
		id   sequence.PlacementID
		side sequence.Side
		ok   bool
	}{
		{pt(37, 50), a.ID, sequence.Side1, true},
		{pt(53, 50), b.ID, sequence.Side1, true},
		{pt(60, 45), b.ID, sequence.Side2, true},
		{pt(50, 60), 0, 0, false},
		{pt(100, 100), 0, 0, false},
	}
	for _, tt := range tests {
		h, ok := HitTest(d, vp, l, tt.at)
		if ok != tt.ok {
			t.Errorf("HitTest(%v) ok=%v, want %v", tt.at, ok, tt.ok)
			continue
		}
		if ok && (h.Placement.ID != tt.id || h.Side != tt.side) {
			t.Errorf("HitTest(%v) = %d/%v, want %d/%v", tt.at, h.Placement.ID, h.Side, tt.id, tt.side)
		}
	}
}

func TestSingleWayMarkerHasOneSide(t *testing.T) {
	l := NewMarkerLayout(sequence.SingleWay)
	c := pt(100, 100)
	r := l.Bounds(c)
	if r.Width != DefaultMarkerWidth/2 || r.Center() != c {
		t.Fatalf("single marker bounds = %+v", r)
	}
	if s, ok := l.SideAt(c, pt(104, 100)); !ok || s != sequence.Side1 {
		t.Fatalf("SideAt = %v, %v", s, ok)
	}
}

func TestNumericEditor(t *testing.T) {
	d := newDoc(t, sequence.TwoWay, false, 100, 100)
	p, _ := d.CreateAt(geometry.PointInt{X: 1, Y: 1})
	e := NewEditor(d)
	if e.Kind() != NumericEditor {
		t.Fatalf("kind = %v", e.Kind())
	}
	if _, err := e.Confirm(); !errors.Is(err, sequence.ErrValidation) {
		t.Fatalf("confirm while closed: %v", err)
	}

	if err := e.Open(p.ID, sequence.Side2); err != nil {
		t.Fatal(err)
	}
	e.SetText(" 3 ")
	got, err := e.Confirm()
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := got.Side2.Number(); n != 3 {
		t.Fatalf("side 2 = %v", got.Side2)
	}
	if _, open := e.Target(); open {
		t.Fatal("confirm should close the editor")
	}

	e.Open(p.ID, sequence.Side2)
	if e.Text() != "3" {
		t.Fatalf("editor should be primed with the current label, got %q", e.Text())
	}
	e.SetText("4")
	var oe *sequence.OutOfRangeError
	if _, err := e.Confirm(); !errors.As(err, &oe) {
		t.Fatalf("expected OutOfRangeError, got %v", err)
	}
	if _, open := e.Target(); !open {
		t.Fatal("rejected input keeps the editor open")
	}

	for _, text := range []string{"", "abc", "  "} {
		e.SetText(text)
		got, err := e.Confirm()
		if err != nil {
			t.Fatalf("Confirm(%q): %v", text, err)
		}
		if !got.Side2.IsEmpty() {
			t.Fatalf("Confirm(%q) should clear, got %v", text, got.Side2)
		}
		e.Open(p.ID, sequence.Side2)
	}
	if _, err := e.Pick("1"); !errors.Is(err, sequence.ErrValidation) {
		t.Fatalf("Pick on numeric editor: %v", err)
	}
}

func TestPickerEditor(t *testing.T) {
	d := newDoc(t, sequence.SingleWay, true, 100, 100)
	p, _ := d.CreateAt(geometry.PointInt{X: 1, Y: 1})
	e := NewEditor(d)
	if e.Kind() != PickerEditor {
		t.Fatalf("kind = %v", e.Kind())
	}
	if err := e.Open(p.ID, sequence.Side2); !errors.Is(err, sequence.ErrInvalidSide) {
		t.Fatalf("side 2 in single-way: %v", err)
	}
	if err := e.Open(p.ID, sequence.Side1); err != nil {
		t.Fatal(err)
	}
	got, err := e.Pick("2")
	if err != nil {
		t.Fatal(err)
	}
	if ref, _ := got.Side1.Ref(); ref != "2" {
		t.Fatalf("side 1 = %v", got.Side1)
	}
	if _, err := e.Pick("7"); !errors.Is(err, sequence.ErrValidation) {
		t.Fatalf("unknown pick: %v", err)
	}
	got, err = e.Clear()
	if err != nil || !got.Side1.IsEmpty() {
		t.Fatalf("Clear = %v, %v", got.Side1, err)
	}
}

func TestPreviewRectPrefersRoomierSide(t *testing.T) {
	vp := geometry.NewViewport(geometry.NewSize(2000, 1000), geometry.NewSize(1000, 600), geometry.FitContain)
	draw := vp.DrawRect() // 1000x500 at y=50
	thumb := geometry.NewSize(800, 800)

	left := PreviewRect(vp, 100, thumb)
	if !near(left.Width, 210) || !near(left.Height, 210) {
		t.Fatalf("preview size = %vx%v, want 210x210", left.Width, left.Height)
	}
	if !near(left.Right(), draw.Right()-PreviewMargin) {
		t.Fatalf("placement on the left should put the preview on the right: %+v", left)
	}
	if !near(left.Center().Y, draw.Center().Y) {
		t.Fatalf("preview should be vertically centred: %+v", left)
	}

	right := PreviewRect(vp, 1500, thumb)
	if !near(right.X, draw.X+PreviewMargin) {
		t.Fatalf("placement on the right should put the preview on the left: %+v", right)
	}
}

func TestPreviewRectCapsAtMaxEdge(t *testing.T) {
	vp := geometry.NewViewport(geometry.NewSize(4000, 4000), geometry.NewSize(3000, 3000), geometry.FitContain)
	r := PreviewRect(vp, 0, geometry.NewSize(2000, 1000))
	if !near(r.Width, PreviewMaxEdge) || !near(r.Height, PreviewMaxEdge/2) {
		t.Fatalf("preview = %vx%v", r.Width, r.Height)
	}
}

func TestSessionTapClickDrag(t *testing.T) {
	d := newDoc(t, sequence.TwoWay, false, 300, 200)
	s := NewSession(d, geometry.IdentityViewport(d.NaturalSize()))

	// Tap on empty stage creates and selects side 1.
	if s.PointerDown(pt(100, 100)) {
		t.Fatal("nothing to hit yet")
	}
	out, err := s.PointerUp(pt(100, 100))
	if err != nil {
		t.Fatal(err)
	}
	if out.Gesture != GestureTap || !out.Created {
		t.Fatalf("outcome = %+v", out)
	}
	if sel, ok := s.Selection(); !ok || sel.ID != out.Placement.ID || sel.Side != sequence.Side1 {
		t.Fatalf("selection = %+v, %v", sel, ok)
	}
	id := out.Placement.ID

	// Click on the side 2 half selects it and opens the editor there.
	if !s.PointerDown(pt(105, 100)) {
		t.Fatal("expected a hit on side 2")
	}
	out, err = s.PointerUp(pt(105, 100))
	if err != nil || out.Gesture != GestureClick || out.Side != sequence.Side2 {
		t.Fatalf("click outcome = %+v, %v", out, err)
	}
	if tg, open := s.Editor.Target(); !open || tg.Side != sequence.Side2 {
		t.Fatalf("editor target = %+v, %v", tg, open)
	}

	// Drag does not re-select.
	s.PointerDown(pt(95, 100))
	s.PointerMove(pt(120, 100))
	out, err = s.PointerUp(pt(145, 110))
	if err != nil || out.Gesture != GestureDrag {
		t.Fatalf("drag outcome = %+v, %v", out, err)
	}
	if got, _ := d.Get(id); got.Position != (geometry.PointInt{X: 150, Y: 110}) {
		t.Fatalf("dragged to %v", got.Position)
	}
	if sel, _ := s.Selection(); sel.Side != sequence.Side2 {
		t.Fatal("drag should leave the selection alone")
	}

	// A second tap near the marker reuses it.
	s.PointerDown(pt(150, 118))
	out, _ = s.PointerUp(pt(150, 118))
	if out.Created || out.Placement.ID != id {
		t.Fatalf("tap within the ensure radius should reuse %d: %+v", id, out)
	}

	removed, err := s.RemoveAt(pt(145, 110))
	if err != nil || !removed || d.Len() != 0 {
		t.Fatalf("RemoveAt = %v, %v (len %d)", removed, err, d.Len())
	}
	if _, ok := s.Selection(); ok {
		t.Fatal("removing the selected placement clears the selection")
	}
}

func TestSessionHoverPreview(t *testing.T) {
	d := newDoc(t, sequence.TwoWay, true, 400, 200)
	p, _ := d.CreateAt(geometry.PointInt{X: 50, Y: 100})
	if _, err := d.SetAssignment(p.ID, sequence.Side2, sequence.Identity("3")); err != nil {
		t.Fatal(err)
	}
	s := NewSession(d, geometry.IdentityViewport(d.NaturalSize()))
	s.ThumbSize = func(sequence.ArtworkChoice) geometry.Size { return geometry.NewSize(100, 50) }

	if _, ok := s.Hover(pt(45, 100)); ok {
		t.Fatal("side 1 is unassigned, no preview")
	}
	pv, ok := s.Hover(pt(55, 100))
	if !ok || pv.Choice.Path != "blue.png" {
		t.Fatalf("preview = %+v, %v", pv, ok)
	}
	if pv.Rect.X < 200 {
		t.Fatalf("placement is on the left, preview should be on the right: %+v", pv.Rect)
	}
}
