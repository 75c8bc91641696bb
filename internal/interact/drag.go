package interact

import (
	"math"

	"artwork-sequencer/internal/sequence"
	"artwork-sequencer/pkg/geometry"
)

// DefaultDragThreshold is how far, in display pixels along either axis, the
// pointer must travel before a press becomes a drag.
const DefaultDragThreshold = 2.0

// DragState is the state of a DragController.
type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// DragResult describes a finished gesture.
type DragResult struct {
	ID    sequence.PlacementID
	Side  sequence.Side
	Moved bool
}

// Click reports whether the gesture never crossed the drag threshold.
func (r DragResult) Click() bool { return !r.Moved }

// DragController tracks one press-move-release gesture on a marker. It holds
// only gesture state; the placement itself lives in the document.
type DragController struct {
	Threshold float64

	state  DragState
	hit    Hit
	start  geometry.Point2D
	origin geometry.PointInt
	moved  bool
}

// NewDragController returns an idle controller with the default threshold.
func NewDragController() *DragController {
	return &DragController{Threshold: DefaultDragThreshold}
}

func (c *DragController) State() DragState { return c.state }

// Active returns the placement being dragged.
func (c *DragController) Active() (sequence.PlacementID, bool) {
	return c.hit.Placement.ID, c.state == Dragging
}

// Begin starts a gesture on a hit marker at display point pt.
func (c *DragController) Begin(h Hit, pt geometry.Point2D) {
	c.state = Dragging
	c.hit = h
	c.start = pt
	c.origin = h.Placement.Position
	c.moved = false
}

// PointerDown hit-tests pt and, on a marker, starts a gesture.
func (c *DragController) PointerDown(doc *sequence.Document, vp geometry.Viewport, l MarkerLayout, pt geometry.Point2D) (Hit, bool) {
	h, ok := HitTest(doc, vp, l, pt)
	if !ok {
		return Hit{}, false
	}
	c.Begin(h, pt)
	return h, true
}

// PointerMove moves the dragged placement to its start position plus the
// pointer's displacement, once the displacement has crossed the threshold.
// changed reports whether the document was updated.
func (c *DragController) PointerMove(doc *sequence.Document, vp geometry.Viewport, pt geometry.Point2D) (p sequence.Placement, changed bool, err error) {
	if c.state != Dragging {
		return sequence.Placement{}, false, nil
	}
	d := pt.Sub(c.start)
	if !c.moved && math.Abs(d.X) <= c.Threshold && math.Abs(d.Y) <= c.Threshold {
		return c.hit.Placement, false, nil
	}
	c.moved = true
	delta := vp.DeltaToNatural(d)
	to := c.origin.ToFloat().Add(delta).Round()
	p, err = doc.Move(c.hit.Placement.ID, to)
	if err != nil {
		c.Cancel()
		return sequence.Placement{}, false, err
	}
	return p, true, nil
}

// PointerUp ends the gesture. The release point is taken as the final
// position wherever it lands.
func (c *DragController) PointerUp(doc *sequence.Document, vp geometry.Viewport, pt geometry.Point2D) (DragResult, error) {
	if c.state != Dragging {
		return DragResult{}, nil
	}
	h := c.hit
	_, _, err := c.PointerMove(doc, vp, pt)
	res := DragResult{ID: h.Placement.ID, Side: h.Side, Moved: c.moved}
	c.Cancel()
	return res, err
}

// Cancel returns to Idle without touching the document.
func (c *DragController) Cancel() {
	c.state = Idle
	c.hit = Hit{}
	c.moved = false
}
