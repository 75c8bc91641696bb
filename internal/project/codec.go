package project

import (
	"strconv"

	"artwork-sequencer/internal/sequence"
	"artwork-sequencer/pkg/geometry"
)

// FromDocument converts doc to its wire record.
func FromDocument(doc *sequence.Document) *Record {
	img := doc.Image()
	r := &Record{
		Mode:        doc.Mode().String(),
		NumArtworks: doc.ArtworkCount(),
		UseImages:   doc.UseImages(),
		Placements:  []PlacementRecord{},
		Image:       img.Path,
		ImageSize:   &ImageSize{Width: img.Width, Height: img.Height},
	}
	for _, ch := range doc.Catalog() {
		r.Choices = append(r.Choices, Choice{ID: Token(ch.ID), Path: ch.Path, Name: ch.Name})
	}
	for _, p := range doc.Placements() {
		pr := PlacementRecord{X: p.Position.X, Y: p.Position.Y}
		pr.S1Num, pr.S1Icon = encodeSide(p.Side1)
		pr.S2Num, pr.S2Icon = encodeSide(p.Side2)
		r.Placements = append(r.Placements, pr)
	}
	return r
}

func encodeSide(a sequence.Assignment) (*int, *Token) {
	if n, ok := a.Number(); ok {
		return &n, nil
	}
	if ref, ok := a.Ref(); ok {
		t := Token(ref)
		return nil, &t
	}
	return nil, nil
}

// Catalog returns the record's choices as a sequence.Catalog.
func (r *Record) Catalog() sequence.Catalog {
	if len(r.Choices) == 0 {
		return nil
	}
	c := make(sequence.Catalog, len(r.Choices))
	for i, ch := range r.Choices {
		name := ch.Name
		if name == "" {
			name = sequence.DisplayName(ch.Path, i+1)
		}
		c[i] = sequence.ArtworkChoice{ID: string(ch.ID), Path: ch.Path, Name: name}
	}
	return c
}

// ToDocument rebuilds a document from the record. base supplies the base
// image; when its size is zero the record's imageSize is used. Placement
// IDs are assigned in record order.
func (r *Record) ToDocument(base sequence.BaseImage) (*sequence.Document, error) {
	mode, err := sequence.ParseRoadMode(r.Mode)
	if err != nil {
		return nil, err
	}
	if base.Path == "" {
		base.Path = r.Image
	}
	if (base.Width == 0 || base.Height == 0) && r.ImageSize != nil {
		base.Width, base.Height = r.ImageSize.Width, r.ImageSize.Height
	}
	doc, err := sequence.NewDocument(sequence.Options{
		Mode:         mode,
		ArtworkCount: r.NumArtworks,
		UseImages:    r.UseImages,
		Catalog:      r.Catalog(),
		Image:        base,
	})
	if err != nil {
		return nil, err
	}
	for i, pr := range r.Placements {
		s1, err := decodeSide(doc, pr.S1Num, pr.S1Icon)
		if err != nil {
			return nil, placementError(i, sequence.Side1, err)
		}
		s2, err := decodeSide(doc, pr.S2Num, pr.S2Icon)
		if err != nil {
			return nil, placementError(i, sequence.Side2, err)
		}
		if _, err := doc.Restore(geometry.PointInt{X: pr.X, Y: pr.Y}, s1, s2); err != nil {
			return nil, placementError(i, 0, err)
		}
	}
	return doc, nil
}

// Extent returns the smallest image size that contains every placement. It
// stands in for imageSize when a record is tallied without its image.
func (r *Record) Extent() ImageSize {
	size := ImageSize{Width: 1, Height: 1}
	for _, p := range r.Placements {
		size.Width = max(size.Width, p.X+1)
		size.Height = max(size.Height, p.Y+1)
	}
	return size
}

// decodeSide picks the representation the document's mode calls for. In
// picked-image mode the icon wins and a bare number selects the catalog
// entry at that position; in numeric mode the number wins and an icon that
// is an integer is read as one.
func decodeSide(doc *sequence.Document, num *int, icon *Token) (sequence.Assignment, error) {
	var ref string
	if icon != nil {
		ref = string(*icon)
	}
	if doc.UseImages() {
		if ref != "" {
			return sequence.Identity(ref), nil
		}
		if num != nil {
			ch, ok := doc.Catalog().At(*num)
			if !ok {
				return sequence.Empty(), &sequence.ValidationError{Field: "choices", Msg: "no catalog entry at position " + strconv.Itoa(*num)}
			}
			return sequence.Identity(ch.ID), nil
		}
		return sequence.Empty(), nil
	}
	if num != nil {
		return sequence.Numeric(*num), nil
	}
	if ref != "" {
		n, ok := Token(ref).Int()
		if !ok {
			return sequence.Empty(), &sequence.ValidationError{Field: "icon", Msg: "artwork reference " + strconv.Quote(ref) + " in numeric mode"}
		}
		return sequence.Numeric(n), nil
	}
	return sequence.Empty(), nil
}

// PlacementError locates a decoding failure in a record.
type PlacementError struct {
	Index int
	Side  sequence.Side
	Err   error
}

func (e *PlacementError) Error() string {
	if e.Side == 0 {
		return "placement " + strconv.Itoa(e.Index) + ": " + e.Err.Error()
	}
	return "placement " + strconv.Itoa(e.Index) + " " + e.Side.String() + ": " + e.Err.Error()
}

func (e *PlacementError) Unwrap() error { return e.Err }

func placementError(i int, s sequence.Side, err error) error {
	return &PlacementError{Index: i, Side: s, Err: err}
}
