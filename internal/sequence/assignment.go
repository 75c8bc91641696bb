package sequence

import "strconv"

// AssignmentKind tags the active variant of an Assignment.
type AssignmentKind uint8

const (
	KindEmpty AssignmentKind = iota
	KindNumeric
	KindIdentity
)

func (k AssignmentKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindIdentity:
		return "identity"
	default:
		return "empty"
	}
}

// Assignment is what one side of a placement shows: nothing, a numeric
// artwork label, or a reference to a catalog entry. Only one variant is ever
// held. The zero value is Empty. Assignments are comparable with ==.
type Assignment struct {
	kind AssignmentKind
	num  int
	ref  string
}

// Empty returns the unassigned value.
func Empty() Assignment { return Assignment{} }

// Numeric returns a numeric label assignment.
func Numeric(n int) Assignment { return Assignment{kind: KindNumeric, num: n} }

// Identity returns an assignment referencing the catalog entry with id ref.
// An empty ref yields Empty.
func Identity(ref string) Assignment {
	if ref == "" {
		return Assignment{}
	}
	return Assignment{kind: KindIdentity, ref: ref}
}

func (a Assignment) Kind() AssignmentKind { return a.kind }

func (a Assignment) IsEmpty() bool { return a.kind == KindEmpty }

// Number returns the numeric label, if that is the active variant.
func (a Assignment) Number() (int, bool) {
	return a.num, a.kind == KindNumeric
}

// Ref returns the catalog identity, if that is the active variant.
func (a Assignment) Ref() (string, bool) {
	return a.ref, a.kind == KindIdentity
}

// Label is the text drawn inside a marker box.
func (a Assignment) Label() string {
	switch a.kind {
	case KindNumeric:
		return strconv.Itoa(a.num)
	case KindIdentity:
		return a.ref
	default:
		return ""
	}
}

func (a Assignment) String() string {
	if a.kind == KindEmpty {
		return "<empty>"
	}
	return a.kind.String() + ":" + a.Label()
}
