// Package sequence holds the placement model: a document of ordered lamp-post
// markers on a base image, each carrying one artwork assignment per side.
package sequence

import (
	"strconv"

	"artwork-sequencer/pkg/geometry"
)

// DefaultEnsureRadius is the display-pixel radius EnsurePlacement uses to
// reuse an existing placement instead of creating a new one.
const DefaultEnsureRadius = 12.0

// BaseImage references the background photograph. Its dimensions define the
// natural coordinate space.
type BaseImage struct {
	Path   string
	Width  int
	Height int
}

// Options configures a new document. Everything here is fixed for the
// lifetime of the document.
type Options struct {
	Mode         RoadMode
	ArtworkCount int
	UseImages    bool
	Catalog      Catalog
	Image        BaseImage
	// EnsureRadius overrides DefaultEnsureRadius when positive.
	EnsureRadius float64
}

// Document is the aggregate root for one editing session. It is not safe for
// concurrent use; callers serialise access.
type Document struct {
	mode         RoadMode
	artworkCount int
	useImages    bool
	catalog      Catalog
	image        BaseImage
	ensureRadius float64

	placements []Placement
	nextID     PlacementID
}

// NewDocument validates opts and returns an empty document.
func NewDocument(opts Options) (*Document, error) {
	if opts.Mode != SingleWay && opts.Mode != TwoWay {
		return nil, invalidf("mode", "unknown road mode %d", int(opts.Mode))
	}
	if opts.ArtworkCount < 1 {
		return nil, invalidf("numArtworks", "must be positive, got %d", opts.ArtworkCount)
	}
	if opts.Image.Width <= 0 || opts.Image.Height <= 0 {
		return nil, invalidf("image", "base image is empty (%dx%d)", opts.Image.Width, opts.Image.Height)
	}
	var cat Catalog
	if opts.UseImages {
		if err := opts.Catalog.Validate(opts.ArtworkCount); err != nil {
			return nil, err
		}
		cat = append(Catalog(nil), opts.Catalog...)
	}
	r := opts.EnsureRadius
	if r <= 0 {
		r = DefaultEnsureRadius
	}
	return &Document{
		mode:         opts.Mode,
		artworkCount: opts.ArtworkCount,
		useImages:    opts.UseImages,
		catalog:      cat,
		image:        opts.Image,
		ensureRadius: r,
		nextID:       1,
	}, nil
}

func (d *Document) Mode() RoadMode {
	return d.mode
}

func (d *Document) ArtworkCount() int {
	return d.artworkCount
}

func (d *Document) UseImages() bool {
	return d.useImages
}

func (d *Document) Catalog() Catalog {
	return d.catalog
}

func (d *Document) Image() BaseImage {
	return d.image
}

func (d *Document) Len() int {
	return len(d.placements)
}

func (d *Document) EnsureRadius() float64 {
	return d.ensureRadius
}

// NaturalSize returns the base image dimensions as a geometry.Size.
func (d *Document) NaturalSize() geometry.Size {
	return geometry.NewSize(float64(d.image.Width), float64(d.image.Height))
}

// SetImagePath updates where the base image lives without touching its
// dimensions, e.g. after a project is saved to a new directory.
func (d *Document) SetImagePath(path string) {
	d.image.Path = path
}

// Placements returns a copy of the placements in insertion order.
func (d *Document) Placements() []Placement {
	out := make([]Placement, len(d.placements))
	copy(out, d.placements)
	return out
}

// Get returns the placement with the given id.
func (d *Document) Get(id PlacementID) (Placement, bool) {
	i := d.index(id)
	if i < 0 {
		return Placement{}, false
	}
	return d.placements[i], true
}

func (d *Document) index(id PlacementID) int {
	for i := range d.placements {
		if d.placements[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) mustIndex(id PlacementID) (int, error) {
	i := d.index(id)
	if i < 0 {
		return -1, NotFound("placement", strconv.Itoa(int(id)), nil)
	}
	return i, nil
}

// FindNearest returns the placement closest to the natural point p whose
// display-space distance is strictly less than radius. p is snapped to the
// pixel a placement created there would occupy. On equal distances the
// earliest placement wins.
func (d *Document) FindNearest(p geometry.Point2D, radius float64, vp geometry.Viewport) (Placement, bool) {
	target := d.snap(p).ToFloat()
	best := -1
	bestD := radius
	for i := range d.placements {
		dist := vp.DisplayDistance(d.placements[i].Position.ToFloat(), target)
		if dist < bestD {
			best = i
			bestD = dist
		}
	}
	if best < 0 {
		return Placement{}, false
	}
	return d.placements[best], true
}

// snap rounds p to the nearest pixel. In-bounds points stay in bounds.
func (d *Document) snap(p geometry.Point2D) geometry.PointInt {
	pt := p.Round()
	if p.X >= 0 && p.Y >= 0 && p.X < float64(d.image.Width) && p.Y < float64(d.image.Height) {
		// Rounding may push an in-bounds point onto the far edge.
		pt = pt.Clamp(d.image.Width, d.image.Height)
	}
	return pt
}

// CreateAt appends a new, unassigned placement at the natural point p, which
// must lie inside the image.
func (d *Document) CreateAt(p geometry.PointInt) (Placement, error) {
	if !p.In(d.image.Width, d.image.Height) {
		return Placement{}, invalidf("position", "(%d,%d) outside %dx%d image", p.X, p.Y, d.image.Width, d.image.Height)
	}
	pl := Placement{ID: d.nextID, Position: p}
	d.nextID++
	d.placements = append(d.placements, pl)
	return pl, nil
}

// EnsurePlacement returns the placement within the ensure radius of p, or
// creates one at p rounded to the nearest pixel. created reports which.
func (d *Document) EnsurePlacement(p geometry.Point2D, vp geometry.Viewport) (pl Placement, created bool, err error) {
	if existing, ok := d.FindNearest(p, d.ensureRadius, vp); ok {
		return existing, false, nil
	}
	pl, err = d.CreateAt(d.snap(p))
	return pl, err == nil, err
}

// CheckAssignment reports whether a could be stored on side s without
// changing anything.
func (d *Document) CheckAssignment(s Side, a Assignment) error {
	if !s.Valid() || !d.mode.Has(s) {
		return &InvalidSideError{Side: s, Mode: d.mode}
	}
	switch a.Kind() {
	case KindEmpty:
		return nil
	case KindNumeric:
		if d.useImages {
			return invalidf("assignment", "numeric label on a picked-image document")
		}
		n, _ := a.Number()
		if n < 1 || n > d.artworkCount {
			return &OutOfRangeError{Side: s, Value: n, Max: d.artworkCount}
		}
	case KindIdentity:
		if !d.useImages {
			return invalidf("assignment", "artwork reference on a numeric document")
		}
		ref, _ := a.Ref()
		if _, _, ok := d.catalog.Lookup(ref); !ok {
			return invalidf("assignment", "no catalog entry %q", ref)
		}
	}
	return nil
}

// SetAssignment overwrites side s of placement id. Nothing changes on error.
func (d *Document) SetAssignment(id PlacementID, s Side, a Assignment) (Placement, error) {
	i, err := d.mustIndex(id)
	if err != nil {
		return Placement{}, err
	}
	if err := d.CheckAssignment(s, a); err != nil {
		return Placement{}, err
	}
	if s == Side1 {
		d.placements[i].Side1 = a
	} else {
		d.placements[i].Side2 = a
	}
	return d.placements[i], nil
}

// Move sets the position of placement id, clamped into the image.
func (d *Document) Move(id PlacementID, to geometry.PointInt) (Placement, error) {
	i, err := d.mustIndex(id)
	if err != nil {
		return Placement{}, err
	}
	d.placements[i].Position = to.Clamp(d.image.Width, d.image.Height)
	return d.placements[i], nil
}

// Remove deletes placement id, preserving the order of the rest.
func (d *Document) Remove(id PlacementID) error {
	i, err := d.mustIndex(id)
	if err != nil {
		return err
	}
	d.placements = append(d.placements[:i], d.placements[i+1:]...)
	return nil
}

// Clear drops every placement.
func (d *Document) Clear() {
	d.placements = nil
}

// PruneUnassigned removes placements with no assignment on any side and
// returns how many were dropped.
func (d *Document) PruneUnassigned() int {
	kept := d.placements[:0]
	for _, p := range d.placements {
		if !p.Unassigned() {
			kept = append(kept, p)
		}
	}
	n := len(d.placements) - len(kept)
	d.placements = kept
	return n
}

// Restore appends a placement as loaded from a snapshot, validating its
// position and assignments. IDs are reassigned in load order.
func (d *Document) Restore(pos geometry.PointInt, side1, side2 Assignment) (Placement, error) {
	// Older editors clamp to the inclusive far edge.
	if pos.X < 0 || pos.Y < 0 || pos.X > d.image.Width || pos.Y > d.image.Height {
		return Placement{}, invalidf("position", "(%d,%d) outside %dx%d image", pos.X, pos.Y, d.image.Width, d.image.Height)
	}
	pos = pos.Clamp(d.image.Width, d.image.Height)
	if err := d.CheckAssignment(Side1, side1); err != nil {
		return Placement{}, err
	}
	if !side2.IsEmpty() {
		if err := d.CheckAssignment(Side2, side2); err != nil {
			return Placement{}, err
		}
	}
	pl := Placement{ID: d.nextID, Position: pos, Side1: side1, Side2: side2}
	d.nextID++
	d.placements = append(d.placements, pl)
	return pl, nil
}

// ArtworkNumber resolves a non-empty assignment to its 1-based artwork
// number: the label itself in numeric mode, the catalog position otherwise.
func (d *Document) ArtworkNumber(a Assignment) (int, bool) {
	switch a.Kind() {
	case KindNumeric:
		n, _ := a.Number()
		return n, n >= 1 && n <= d.artworkCount
	case KindIdentity:
		ref, _ := a.Ref()
		_, n, ok := d.catalog.Lookup(ref)
		return n, ok
	}
	return 0, false
}

// Choice returns the catalog entry an identity assignment refers to.
func (d *Document) Choice(a Assignment) (ArtworkChoice, bool) {
	ref, ok := a.Ref()
	if !ok {
		return ArtworkChoice{}, false
	}
	ch, _, ok := d.catalog.Lookup(ref)
	return ch, ok
}
