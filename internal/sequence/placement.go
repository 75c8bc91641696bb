package sequence

import "artwork-sequencer/pkg/geometry"

// PlacementID identifies a placement within its document. IDs are never
// reused by a document.
type PlacementID int

// Placement is one lamp-post marker.
type Placement struct {
	ID       PlacementID
	Position geometry.PointInt
	Side1    Assignment
	Side2    Assignment
}

// Assignment returns the assignment on side s.
func (p Placement) Assignment(s Side) Assignment {
	if s == Side2 {
		return p.Side2
	}
	return p.Side1
}

// Unassigned reports whether neither side carries an assignment.
func (p Placement) Unassigned() bool {
	return p.Side1.IsEmpty() && p.Side2.IsEmpty()
}

// AssignedCount returns how many sides carry an assignment.
func (p Placement) AssignedCount() int {
	n := 0
	if !p.Side1.IsEmpty() {
		n++
	}
	if !p.Side2.IsEmpty() {
		n++
	}
	return n
}
