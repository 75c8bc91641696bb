// Package report counts how many copies of each artwork a document needs
// and formats the result as text, YAML, JSON or a PDF summary sheet.
package report

import (
	"artwork-sequencer/internal/sequence"
)

// Count is the number of placements showing one artwork.
type Count struct {
	Artwork int    `json:"artwork" yaml:"artwork"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Side1   int    `json:"side1" yaml:"side1"`
	Side2   int    `json:"side2" yaml:"side2"`
}

// Total returns the copies needed across both sides.
func (c Count) Total() int { return c.Side1 + c.Side2 }

// Tally is the per-artwork, per-side occurrence count of a document. Every
// artwork 1..ArtworkCount is listed, including those with no copies.
type Tally struct {
	Mode         sequence.RoadMode
	UseImages    bool
	ArtworkCount int
	Placements   int
	Side1Posts   int // placements with a side 1 assignment
	Side2Posts   int // placements with a side 2 assignment
	Counts       []Count
}

// NewTally counts the assignments of doc.
func NewTally(doc *sequence.Document) Tally {
	t := Tally{
		Mode:         doc.Mode(),
		UseImages:    doc.UseImages(),
		ArtworkCount: doc.ArtworkCount(),
		Counts:       make([]Count, doc.ArtworkCount()),
	}
	for i := range t.Counts {
		t.Counts[i].Artwork = i + 1
		if ch, ok := doc.Catalog().At(i + 1); ok {
			t.Counts[i].Name = ch.Name
		}
	}
	for _, p := range doc.Placements() {
		t.Placements++
		if n, ok := doc.ArtworkNumber(p.Side1); ok {
			t.Counts[n-1].Side1++
			t.Side1Posts++
		}
		if n, ok := doc.ArtworkNumber(p.Side2); ok {
			t.Counts[n-1].Side2++
			t.Side2Posts++
		}
	}
	return t
}

// TotalPosts is the number of assigned lamp-post sides.
func (t Tally) TotalPosts() int { return t.Side1Posts + t.Side2Posts }

// TotalCopies sums every count. It always equals TotalPosts.
func (t Tally) TotalCopies() int {
	n := 0
	for _, c := range t.Counts {
		n += c.Total()
	}
	return n
}

// Count returns the entry for artwork n (1-based).
func (t Tally) Count(n int) (Count, bool) {
	if n < 1 || n > len(t.Counts) {
		return Count{}, false
	}
	return t.Counts[n-1], true
}
