package canvas

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"artwork-sequencer/internal/interact"
	"artwork-sequencer/internal/sequence"
	"artwork-sequencer/pkg/geometry"
)

type canvasHarness struct {
	ec      *EditorCanvas
	doc     *sequence.Document
	changes int
	sel     interact.Target
	hasSel  bool
	errs    []error
}

// newHarness shows a 100x50 two-way document on a 200x100 canvas, so display
// coordinates are twice the natural ones.
func newHarness(t *testing.T) *canvasHarness {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	doc, err := sequence.NewDocument(sequence.Options{
		Mode:         sequence.TwoWay,
		ArtworkCount: 3,
		Image:        sequence.BaseImage{Path: "street.png", Width: 100, Height: 50},
		EnsureRadius: 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	base := image.NewRGBA(image.Rect(0, 0, 100, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			base.Set(x, y, color.Gray{Y: 128})
		}
	}

	h := &canvasHarness{doc: doc}
	h.ec = NewEditorCanvas()
	h.ec.Resize(fyne.NewSize(200, 100))
	h.ec.SetDocument(doc, base, nil)
	h.ec.OnChanged(func() { h.changes++ })
	h.ec.OnSelect(func(t interact.Target, ok bool) { h.sel, h.hasSel = t, ok })
	h.ec.OnError(func(err error) { h.errs = append(h.errs, err) })
	return h
}

func mouse(x, y float32, b desktop.MouseButton) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     b,
	}
}

func (h *canvasHarness) click(x, y float32) {
	h.ec.MouseDown(mouse(x, y, desktop.MouseButtonPrimary))
	h.ec.MouseUp(mouse(x, y, desktop.MouseButtonPrimary))
}

func TestTapPlacesAndSelects(t *testing.T) {
	h := newHarness(t)
	h.click(40, 40)

	if h.doc.Len() != 1 {
		t.Fatalf("expected one placement, have %d", h.doc.Len())
	}
	p := h.doc.Placements()[0]
	if p.Position != (geometry.PointInt{X: 20, Y: 20}) {
		t.Fatalf("placement at %+v, want natural (20, 20)", p.Position)
	}
	if h.changes != 1 {
		t.Fatalf("expected one change, got %d", h.changes)
	}
	if !h.hasSel || h.sel.ID != p.ID || h.sel.Side != sequence.Side1 {
		t.Fatalf("selection = %+v %v", h.sel, h.hasSel)
	}
}

func TestClickSelectsSideWithoutEditing(t *testing.T) {
	h := newHarness(t)
	h.click(40, 40)
	h.changes = 0

	// The side 2 half starts at the placement and extends right.
	h.click(47, 40)
	if h.doc.Len() != 1 || h.changes != 0 {
		t.Fatalf("click should not edit: len=%d changes=%d", h.doc.Len(), h.changes)
	}
	if !h.hasSel || h.sel.Side != sequence.Side2 {
		t.Fatalf("expected side 2 selected, got %+v", h.sel)
	}
}

func TestDragMovesMarker(t *testing.T) {
	h := newHarness(t)
	h.click(40, 40)
	h.changes = 0

	h.ec.MouseDown(mouse(33, 40, desktop.MouseButtonPrimary))
	h.ec.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(53, 45)}})
	h.ec.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(63, 50)}})
	h.ec.MouseUp(mouse(63, 50, desktop.MouseButtonPrimary))
	h.ec.DragEnd()

	p := h.doc.Placements()[0]
	if p.Position != (geometry.PointInt{X: 35, Y: 25}) {
		t.Fatalf("dragged to %+v, want (35, 25)", p.Position)
	}
	if h.changes != 1 {
		t.Fatalf("expected one change for the drag, got %d", h.changes)
	}
	if len(h.errs) != 0 {
		t.Fatalf("unexpected errors: %v", h.errs)
	}
}

func TestSecondaryPressRemoves(t *testing.T) {
	h := newHarness(t)
	h.click(40, 40)
	h.click(140, 60)
	h.changes = 0

	h.ec.MouseDown(mouse(140, 60, desktop.MouseButtonSecondary))
	if h.doc.Len() != 1 || h.changes != 1 {
		t.Fatalf("len=%d changes=%d", h.doc.Len(), h.changes)
	}
	if h.hasSel {
		t.Fatal("removing the selected post should clear the selection")
	}

	h.ec.MouseDown(mouse(190, 10, desktop.MouseButtonSecondary))
	if h.doc.Len() != 1 || h.changes != 1 {
		t.Fatal("secondary press on empty stage should do nothing")
	}
}

func TestDrawMarkers(t *testing.T) {
	h := newHarness(t)
	h.click(40, 40)

	img := h.ec.draw(200, 100).(*image.RGBA)
	// Inside the side 1 half, clear of its border and label.
	left := img.RGBAAt(28, 35)
	if left.B <= left.R {
		t.Fatalf("side 1 half should be blue, got %+v", left)
	}
	right := img.RGBAAt(52, 35)
	if right.R <= right.B {
		t.Fatalf("side 2 half should be red, got %+v", right)
	}
	bg := img.RGBAAt(150, 20)
	if bg.R != bg.B || bg.R < 120 || bg.R > 136 {
		t.Fatalf("base image should fill the stage, got %+v", bg)
	}
}

func TestFitContainLetterboxes(t *testing.T) {
	h := newHarness(t)
	h.ec.Resize(fyne.NewSize(200, 200))
	h.ec.SetFitMode(geometry.FitContain)

	// 100x50 contained in 200x200 is drawn 200x100 from y=50.
	h.click(40, 90)
	p := h.doc.Placements()[0]
	if p.Position != (geometry.PointInt{X: 20, Y: 20}) {
		t.Fatalf("placement at %+v, want (20, 20)", p.Position)
	}
	img := h.ec.draw(200, 200).(*image.RGBA)
	if band := img.RGBAAt(100, 10); band != stageBackground {
		t.Fatalf("letterbox band = %+v", band)
	}
}

func TestLabelScale(t *testing.T) {
	cases := []struct {
		h    int
		want int
	}{
		{3, 1},
		{14, 2},
		{100, 6},
	}
	for _, tc := range cases {
		if got := labelScale(image.Rect(0, 0, 10, tc.h)); got != tc.want {
			t.Errorf("labelScale(h=%d) = %d, want %d", tc.h, got, tc.want)
		}
	}
}

func TestGlyphFoldsCase(t *testing.T) {
	for _, ch := range "a1Zq?" {
		if _, ok := glyph(ch); !ok {
			t.Errorf("glyph(%q) missing", ch)
		}
	}
	lower, _ := glyph('a')
	upper, _ := glyph('A')
	if lower != upper {
		t.Error("lowercase should draw like uppercase")
	}
	if _, ok := glyph('é'); ok {
		t.Error("unexpected glyph for é")
	}
}

func TestDrawLabelLetters(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	drawLabel(img, "a1", img.Bounds(), color.RGBA{R: 255, G: 255, B: 255, A: 255}, 2)

	// Two 6px glyphs with 2px spacing are centred: x 13..27, y 5..15.
	inLetter, inDigit := 0, 0
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			if img.RGBAAt(x, y).A == 0 {
				continue
			}
			switch {
			case x >= 13 && x < 19:
				inLetter++
			case x >= 21 && x < 27:
				inDigit++
			default:
				t.Fatalf("stray label pixel at (%d,%d)", x, y)
			}
		}
	}
	if inLetter == 0 {
		t.Fatal("letter 'a' drew nothing")
	}
	if inDigit == 0 {
		t.Fatal("digit '1' drew nothing")
	}
}
