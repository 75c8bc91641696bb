package interact

import (
	"strconv"
	"strings"

	"artwork-sequencer/internal/sequence"
)

// EditorKind selects the editor variant. A document uses exactly one, chosen
// by its UseImages flag.
type EditorKind int

const (
	NumericEditor EditorKind = iota
	PickerEditor
)

func (k EditorKind) String() string {
	if k == PickerEditor {
		return "picker"
	}
	return "numeric"
}

// Target is the placement side being edited.
type Target struct {
	ID   sequence.PlacementID
	Side sequence.Side
}

// Editor edits the assignment of one placement side at a time.
type Editor struct {
	doc    *sequence.Document
	kind   EditorKind
	target Target
	open   bool
	text   string
}

// NewEditor returns a closed editor of the variant doc calls for.
func NewEditor(doc *sequence.Document) *Editor {
	k := NumericEditor
	if doc.UseImages() {
		k = PickerEditor
	}
	return &Editor{doc: doc, kind: k}
}

func (e *Editor) Kind() EditorKind { return e.kind }

// Target returns what the editor is open on.
func (e *Editor) Target() (Target, bool) { return e.target, e.open }

// Open starts editing side s of placement id. The numeric text is primed
// with the current label.
func (e *Editor) Open(id sequence.PlacementID, s sequence.Side) error {
	p, ok := e.doc.Get(id)
	if !ok {
		return sequence.NotFound("placement", strconv.Itoa(int(id)), nil)
	}
	if !e.doc.Mode().Has(s) {
		return &sequence.InvalidSideError{Side: s, Mode: e.doc.Mode()}
	}
	e.target = Target{ID: id, Side: s}
	e.open = true
	e.text = ""
	if n, ok := p.Assignment(s).Number(); ok {
		e.text = strconv.Itoa(n)
	}
	return nil
}

// Close abandons any pending text.
func (e *Editor) Close() {
	e.open = false
	e.text = ""
}

// Text returns the pending numeric input.
func (e *Editor) Text() string { return e.text }

// SetText replaces the pending numeric input.
func (e *Editor) SetText(s string) { e.text = s }

// ParseLabel interprets numeric editor input. Blank or non-numeric text
// means "no assignment".
func ParseLabel(text string) sequence.Assignment {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return sequence.Empty()
	}
	return sequence.Numeric(n)
}

// Confirm commits the pending text and closes the editor. A number outside
// the artwork range is rejected and the editor stays open.
func (e *Editor) Confirm() (sequence.Placement, error) {
	if !e.open || e.kind != NumericEditor {
		return sequence.Placement{}, errNotEditing(e.kind, NumericEditor)
	}
	p, err := e.doc.SetAssignment(e.target.ID, e.target.Side, ParseLabel(e.text))
	if err != nil {
		return sequence.Placement{}, err
	}
	e.Close()
	return p, nil
}

// Pick assigns catalog entry id to the target side immediately. The editor
// stays open so the operator can change their mind.
func (e *Editor) Pick(id string) (sequence.Placement, error) {
	if !e.open || e.kind != PickerEditor {
		return sequence.Placement{}, errNotEditing(e.kind, PickerEditor)
	}
	return e.doc.SetAssignment(e.target.ID, e.target.Side, sequence.Identity(id))
}

// Clear empties the target side in either variant.
func (e *Editor) Clear() (sequence.Placement, error) {
	if !e.open {
		return sequence.Placement{}, errNotEditing(e.kind, e.kind)
	}
	e.text = ""
	return e.doc.SetAssignment(e.target.ID, e.target.Side, sequence.Empty())
}

func errNotEditing(have, want EditorKind) error {
	if have != want {
		return &sequence.ValidationError{Field: "editor", Msg: "document uses the " + have.String() + " editor"}
	}
	return &sequence.ValidationError{Field: "editor", Msg: "no placement side selected"}
}
