package sequence

import (
	"errors"
	"testing"

	"artwork-sequencer/pkg/geometry"
)

func newNumericDoc(t *testing.T, mode RoadMode, count, w, h int) *Document {
	t.Helper()
	d, err := NewDocument(Options{
		Mode:         mode,
		ArtworkCount: count,
		Image:        BaseImage{Path: "road.png", Width: w, Height: h},
	})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	return d
}

func identity(d *Document) geometry.Viewport {
	return geometry.IdentityViewport(d.NaturalSize())
}

func TestNewDocumentValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"zero artworks", Options{ArtworkCount: 0, Image: BaseImage{Width: 10, Height: 10}}},
		{"negative artworks", Options{ArtworkCount: -2, Image: BaseImage{Width: 10, Height: 10}}},
		{"empty image", Options{ArtworkCount: 3}},
		{"catalog too short", Options{ArtworkCount: 3, UseImages: true, Catalog: NewCatalog([]string{"a.png"}), Image: BaseImage{Width: 10, Height: 10}}},
		{"duplicate ids", Options{ArtworkCount: 2, UseImages: true, Catalog: Catalog{{ID: "1"}, {ID: "1"}}, Image: BaseImage{Width: 10, Height: 10}}},
		{"bad mode", Options{Mode: RoadMode(7), ArtworkCount: 1, Image: BaseImage{Width: 10, Height: 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDocument(tt.opts)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
		})
	}
}

func TestEnsureThenFindIsIdempotent(t *testing.T) {
	viewports := []geometry.Viewport{
		geometry.IdentityViewport(geometry.NewSize(200, 100)),
		geometry.NewViewport(geometry.NewSize(200, 100), geometry.NewSize(100, 100), geometry.FitStretch),
		geometry.NewViewport(geometry.NewSize(200, 100), geometry.NewSize(640, 480), geometry.FitContain),
	}
	for _, vp := range viewports {
		d := newNumericDoc(t, TwoWay, 4, 200, 100)
		for x := 0.0; x < 200; x += 37.3 {
			for y := 0.0; y < 100; y += 23.9 {
				p := geometry.NewPoint2D(x, y)
				pl, _, err := d.EnsurePlacement(p, vp)
				if err != nil {
					t.Fatalf("EnsurePlacement(%v): %v", p, err)
				}
				got, ok := d.FindNearest(p, d.EnsureRadius(), vp)
				if !ok || got.ID != pl.ID {
					t.Fatalf("FindNearest(%v) = %v,%v; want placement %d", p, got.ID, ok, pl.ID)
				}
			}
		}
	}
}

func TestEnsureThenFindWhenZoomedIn(t *testing.T) {
	d := newNumericDoc(t, TwoWay, 4, 10, 10)
	// 100 display px per natural pixel, so rounding alone exceeds the radius.
	vp := geometry.NewViewport(d.NaturalSize(), geometry.NewSize(1000, 1000), geometry.FitContain)

	for _, p := range []geometry.Point2D{{X: 2.5, Y: 2.5}, {X: 9.7, Y: 9.7}, {X: 0.2, Y: 5.5}} {
		pl, _, err := d.EnsurePlacement(p, vp)
		if err != nil {
			t.Fatalf("EnsurePlacement(%v): %v", p, err)
		}
		got, ok := d.FindNearest(p, d.EnsureRadius(), vp)
		if !ok || got.ID != pl.ID {
			t.Fatalf("FindNearest(%v) = %v,%v; want placement %d", p, got.ID, ok, pl.ID)
		}
		again, created, err := d.EnsurePlacement(p, vp)
		if err != nil || created || again.ID != pl.ID {
			t.Fatalf("second EnsurePlacement(%v) = %d created=%v err=%v", p, again.ID, created, err)
		}
	}
	if d.Len() != 3 {
		t.Fatalf("Len = %d, want 3", d.Len())
	}
}

func TestEnsureReusesNearbyPlacement(t *testing.T) {
	d := newNumericDoc(t, SingleWay, 3, 100, 100)
	vp := identity(d)

	first, created, err := d.EnsurePlacement(geometry.NewPoint2D(50, 50), vp)
	if err != nil || !created {
		t.Fatalf("first ensure: created=%v err=%v", created, err)
	}
	again, created, err := d.EnsurePlacement(geometry.NewPoint2D(55, 55), vp)
	if err != nil || created || again.ID != first.ID {
		t.Fatalf("second ensure should reuse %d, got %d created=%v err=%v", first.ID, again.ID, created, err)
	}
	if _, created, _ := d.EnsurePlacement(geometry.NewPoint2D(70, 50), vp); !created {
		t.Fatal("point 20px away should create a new placement")
	}
	if d.Len() != 2 {
		t.Fatalf("Len = %d, want 2", d.Len())
	}
}

func TestEnsureRejectsOutsideImage(t *testing.T) {
	d := newNumericDoc(t, SingleWay, 3, 100, 100)
	_, _, err := d.EnsurePlacement(geometry.NewPoint2D(-5, 20), identity(d))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if d.Len() != 0 {
		t.Fatal("rejected point must not create a placement")
	}
}

func TestFindNearestUsesDisplayDistance(t *testing.T) {
	d := newNumericDoc(t, SingleWay, 3, 1000, 1000)
	if _, err := d.CreateAt(geometry.PointInt{X: 100, Y: 100}); err != nil {
		t.Fatal(err)
	}
	p := geometry.NewPoint2D(110, 100)

	// 10 natural px is 10 display px at 1:1, inside a 12 px radius.
	if _, ok := d.FindNearest(p, 12, identity(d)); !ok {
		t.Fatal("expected a hit at 1:1")
	}
	// At 2x zoom the same gap is 20 display px.
	zoom := geometry.NewViewport(d.NaturalSize(), geometry.NewSize(2000, 2000), geometry.FitContain)
	if _, ok := d.FindNearest(p, 12, zoom); ok {
		t.Fatal("expected a miss at 2x")
	}
	if _, ok := d.FindNearest(p, 20, zoom); ok {
		t.Fatal("radius is exclusive")
	}
}

func TestFindNearestTieBreakFirstInserted(t *testing.T) {
	d := newNumericDoc(t, SingleWay, 3, 100, 100)
	a, _ := d.CreateAt(geometry.PointInt{X: 40, Y: 50})
	if _, err := d.CreateAt(geometry.PointInt{X: 60, Y: 50}); err != nil {
		t.Fatal(err)
	}
	got, ok := d.FindNearest(geometry.NewPoint2D(50, 50), 20, identity(d))
	if !ok || got.ID != a.ID {
		t.Fatalf("tie should resolve to first placement %d, got %d", a.ID, got.ID)
	}
}

func TestMoveClamps(t *testing.T) {
	d := newNumericDoc(t, SingleWay, 3, 100, 50)
	pl, _ := d.CreateAt(geometry.PointInt{X: 10, Y: 10})

	tests := []struct {
		to   geometry.PointInt
		want geometry.PointInt
	}{
		{geometry.PointInt{X: 60, Y: 20}, geometry.PointInt{X: 60, Y: 20}},
		{geometry.PointInt{X: 500, Y: 20}, geometry.PointInt{X: 99, Y: 20}},
		{geometry.PointInt{X: -1, Y: -1000}, geometry.PointInt{X: 0, Y: 0}},
		{geometry.PointInt{X: 100, Y: 50}, geometry.PointInt{X: 99, Y: 49}},
	}
	for _, tt := range tests {
		got, err := d.Move(pl.ID, tt.to)
		if err != nil {
			t.Fatalf("Move: %v", err)
		}
		if got.Position != tt.want {
			t.Errorf("Move(%v) = %v, want %v", tt.to, got.Position, tt.want)
		}
		if !got.Position.In(100, 50) {
			t.Errorf("Move(%v) left the image: %v", tt.to, got.Position)
		}
	}
}

func TestSingleWayRejectsSide2(t *testing.T) {
	d := newNumericDoc(t, SingleWay, 8, 100, 100)
	pl, _ := d.CreateAt(geometry.PointInt{X: 1, Y: 1})

	for _, a := range []Assignment{Numeric(1), Numeric(99), Empty()} {
		_, err := d.SetAssignment(pl.ID, Side2, a)
		var se *InvalidSideError
		if !errors.As(err, &se) || !errors.Is(err, ErrInvalidSide) {
			t.Fatalf("SetAssignment side 2 (%v): got %v", a, err)
		}
	}
	got, _ := d.Get(pl.ID)
	if !got.Side2.IsEmpty() {
		t.Fatal("side 2 must stay empty in single-way mode")
	}
}

func TestSetAssignmentRange(t *testing.T) {
	d := newNumericDoc(t, TwoWay, 8, 100, 100)
	pl, _ := d.CreateAt(geometry.PointInt{X: 1, Y: 1})

	if _, err := d.SetAssignment(pl.ID, Side1, Numeric(8)); err != nil {
		t.Fatalf("8 is in range: %v", err)
	}
	for _, n := range []int{0, -1, 9} {
		_, err := d.SetAssignment(pl.ID, Side2, Numeric(n))
		var oe *OutOfRangeError
		if !errors.As(err, &oe) {
			t.Fatalf("Numeric(%d): expected OutOfRangeError, got %v", n, err)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("OutOfRangeError should match ErrValidation")
		}
		if oe.Max != 8 || oe.Value != n {
			t.Fatalf("unexpected error fields %+v", oe)
		}
	}
	got, _ := d.Get(pl.ID)
	if n, _ := got.Side1.Number(); n != 8 || !got.Side2.IsEmpty() {
		t.Fatalf("failed assignments must not mutate: %+v", got)
	}

	if _, err := d.SetAssignment(pl.ID, Side1, Empty()); err != nil {
		t.Fatal(err)
	}
	if got, _ := d.Get(pl.ID); !got.Unassigned() {
		t.Fatal("clearing side 1 should leave placement unassigned")
	}
}

func TestSetAssignmentRejectsMixedVariants(t *testing.T) {
	num := newNumericDoc(t, TwoWay, 3, 10, 10)
	pl, _ := num.CreateAt(geometry.PointInt{})
	if _, err := num.SetAssignment(pl.ID, Side1, Identity("1")); !errors.Is(err, ErrValidation) {
		t.Fatalf("identity on numeric document: %v", err)
	}

	pics, err := NewDocument(Options{
		Mode:         TwoWay,
		ArtworkCount: 2,
		UseImages:    true,
		Catalog:      NewCatalog([]string{"a.png", "b.png"}),
		Image:        BaseImage{Width: 10, Height: 10},
	})
	if err != nil {
		t.Fatal(err)
	}
	pl, _ = pics.CreateAt(geometry.PointInt{})
	if _, err := pics.SetAssignment(pl.ID, Side1, Numeric(1)); !errors.Is(err, ErrValidation) {
		t.Fatalf("numeric on picked-image document: %v", err)
	}
	if _, err := pics.SetAssignment(pl.ID, Side1, Identity("9")); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown catalog id: %v", err)
	}
	got, err := pics.SetAssignment(pl.ID, Side2, Identity("2"))
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := pics.ArtworkNumber(got.Side2); !ok || n != 2 {
		t.Fatalf("ArtworkNumber = %d,%v", n, ok)
	}
}

func TestUnknownPlacement(t *testing.T) {
	d := newNumericDoc(t, SingleWay, 1, 10, 10)
	if _, err := d.Move(42, geometry.PointInt{}); !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("Move unknown: %v", err)
	}
	if err := d.Remove(42); !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("Remove unknown: %v", err)
	}
}

func TestRemoveAndPrune(t *testing.T) {
	d := newNumericDoc(t, TwoWay, 3, 100, 100)
	a, _ := d.CreateAt(geometry.PointInt{X: 1, Y: 1})
	b, _ := d.CreateAt(geometry.PointInt{X: 2, Y: 2})
	c, _ := d.CreateAt(geometry.PointInt{X: 3, Y: 3})
	e, _ := d.CreateAt(geometry.PointInt{X: 4, Y: 4})
	if _, err := d.SetAssignment(c.ID, Side2, Numeric(3)); err != nil {
		t.Fatal(err)
	}

	if err := d.Remove(a.ID); err != nil {
		t.Fatal(err)
	}
	if n := d.PruneUnassigned(); n != 2 {
		t.Fatalf("PruneUnassigned = %d, want 2", n)
	}
	ps := d.Placements()
	if len(ps) != 1 || ps[0].ID != c.ID {
		t.Fatalf("remaining = %+v", ps)
	}
	if _, ok := d.Get(b.ID); ok {
		t.Fatal("b should be pruned")
	}
	if _, ok := d.Get(e.ID); ok {
		t.Fatal("e should be pruned")
	}

	next, _ := d.CreateAt(geometry.PointInt{X: 5, Y: 5})
	if next.ID <= e.ID {
		t.Fatalf("ids must not be reused: got %d after %d", next.ID, e.ID)
	}
	d.Clear()
	if d.Len() != 0 {
		t.Fatal("Clear should drop everything")
	}
}

func TestPlacementsIsACopy(t *testing.T) {
	d := newNumericDoc(t, SingleWay, 1, 10, 10)
	d.CreateAt(geometry.PointInt{X: 1, Y: 1})
	ps := d.Placements()
	ps[0].Position.X = 9
	if got, _ := d.Get(ps[0].ID); got.Position.X != 1 {
		t.Fatal("mutating the returned slice changed the document")
	}
}
