package interact

import (
	"math"

	"artwork-sequencer/internal/sequence"
	"artwork-sequencer/pkg/geometry"
)

// Gesture classifies a completed press-release.
type Gesture int

const (
	GestureNone Gesture = iota
	// GestureClick is a press and release on a marker half without moving.
	GestureClick
	// GestureDrag moved a marker.
	GestureDrag
	// GestureTap is a press and release on empty stage.
	GestureTap
)

func (g Gesture) String() string {
	switch g {
	case GestureClick:
		return "click"
	case GestureDrag:
		return "drag"
	case GestureTap:
		return "tap"
	default:
		return "none"
	}
}

// Outcome is what a gesture did to the document.
type Outcome struct {
	Gesture   Gesture
	Placement sequence.Placement
	Side      sequence.Side
	Created   bool
}

// Preview is the artwork preview to show while hovering an assigned half.
type Preview struct {
	Choice sequence.ArtworkChoice
	Rect   geometry.Rect
}

// Session composes hit testing, dragging and the editor for one document on
// one display surface. It is driven by a single UI goroutine.
type Session struct {
	Doc    *sequence.Document
	Layout MarkerLayout
	Drag   *DragController
	Editor *Editor

	// ThumbSize reports the natural size of a catalog image for preview
	// layout. Nil means previews use the maximum box.
	ThumbSize func(sequence.ArtworkChoice) geometry.Size

	vp       geometry.Viewport
	selected Target
	hasSel   bool

	pressEmpty bool
	pressAt    geometry.Point2D
}

// NewSession creates a session showing doc through vp.
func NewSession(doc *sequence.Document, vp geometry.Viewport) *Session {
	return &Session{
		Doc:    doc,
		Layout: NewMarkerLayout(doc.Mode()),
		Drag:   NewDragController(),
		Editor: NewEditor(doc),
		vp:     vp,
	}
}

// SetViewport updates the display mapping, e.g. after a resize.
func (s *Session) SetViewport(vp geometry.Viewport) { s.vp = vp }

func (s *Session) Viewport() geometry.Viewport { return s.vp }

// Selection returns the selected placement side.
func (s *Session) Selection() (Target, bool) {
	if s.hasSel {
		if _, ok := s.Doc.Get(s.selected.ID); !ok {
			s.hasSel = false
		}
	}
	return s.selected, s.hasSel
}

// Select marks a placement side as current and opens the editor on it.
func (s *Session) Select(id sequence.PlacementID, side sequence.Side) error {
	if err := s.Editor.Open(id, side); err != nil {
		return err
	}
	s.selected = Target{ID: id, Side: side}
	s.hasSel = true
	return nil
}

// Deselect clears the selection and closes the editor.
func (s *Session) Deselect() {
	s.hasSel = false
	s.Editor.Close()
}

// PointerDown starts a gesture at display point pt. It reports whether a
// marker was hit.
func (s *Session) PointerDown(pt geometry.Point2D) bool {
	s.pressAt = pt
	_, ok := s.Drag.PointerDown(s.Doc, s.vp, s.Layout, pt)
	s.pressEmpty = !ok
	return ok
}

// PointerMove continues a drag. changed reports whether a placement moved.
func (s *Session) PointerMove(pt geometry.Point2D) (changed bool, err error) {
	_, changed, err = s.Drag.PointerMove(s.Doc, s.vp, pt)
	return changed, err
}

// PointerUp completes the gesture. A click on a marker half selects it; a
// tap on empty stage finds or creates a placement there.
func (s *Session) PointerUp(pt geometry.Point2D) (Outcome, error) {
	if s.pressEmpty {
		s.pressEmpty = false
		d := pt.Sub(s.pressAt)
		if math.Abs(d.X) > s.Drag.Threshold || math.Abs(d.Y) > s.Drag.Threshold {
			return Outcome{}, nil
		}
		return s.TapEmpty(pt)
	}
	if s.Drag.State() != Dragging {
		return Outcome{}, nil
	}
	res, err := s.Drag.PointerUp(s.Doc, s.vp, pt)
	if err != nil {
		return Outcome{}, err
	}
	p, _ := s.Doc.Get(res.ID)
	if res.Moved {
		return Outcome{Gesture: GestureDrag, Placement: p, Side: res.Side}, nil
	}
	if err := s.Select(res.ID, res.Side); err != nil {
		return Outcome{}, err
	}
	return Outcome{Gesture: GestureClick, Placement: p, Side: res.Side}, nil
}

// TapEmpty maps display point pt into the image, reuses the placement within
// the ensure radius or creates one there, and selects its first side.
func (s *Session) TapEmpty(pt geometry.Point2D) (Outcome, error) {
	p, created, err := s.Doc.EnsurePlacement(s.vp.ToNatural(pt), s.vp)
	if err != nil {
		return Outcome{}, err
	}
	if err := s.Select(p.ID, sequence.Side1); err != nil {
		return Outcome{}, err
	}
	return Outcome{Gesture: GestureTap, Placement: p, Side: sequence.Side1, Created: created}, nil
}

// RemoveAt deletes the marker under pt, if any.
func (s *Session) RemoveAt(pt geometry.Point2D) (bool, error) {
	h, ok := HitTest(s.Doc, s.vp, s.Layout, pt)
	if !ok {
		return false, nil
	}
	if s.hasSel && s.selected.ID == h.Placement.ID {
		s.Deselect()
	}
	return true, s.Doc.Remove(h.Placement.ID)
}

// Hover returns the preview for the picked artwork under pt. Only
// picked-image documents have previews.
func (s *Session) Hover(pt geometry.Point2D) (Preview, bool) {
	if !s.Doc.UseImages() || s.Drag.State() == Dragging {
		return Preview{}, false
	}
	h, ok := HitTest(s.Doc, s.vp, s.Layout, pt)
	if !ok {
		return Preview{}, false
	}
	ch, ok := s.Doc.Choice(h.Placement.Assignment(h.Side))
	if !ok {
		return Preview{}, false
	}
	var thumb geometry.Size
	if s.ThumbSize != nil {
		thumb = s.ThumbSize(ch)
	}
	r := PreviewRect(s.vp, float64(h.Placement.Position.X), thumb)
	return Preview{Choice: ch, Rect: r}, true
}
