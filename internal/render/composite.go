package render

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	seqimage "artwork-sequencer/internal/image"
	"artwork-sequencer/internal/sequence"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// IconSource supplies artwork images for picked-image documents.
type IconSource interface {
	Icon(ch sequence.ArtworkChoice) (image.Image, error)
}

// Label offsets from the box's top-left corner to the text baseline.
const (
	labelInsetX = 3
	labelInsetY = 4
)

// Renderer draws documents. A Renderer owns a font face and is not safe for
// concurrent use; create one per goroutine.
type Renderer struct {
	Style Style
	Icons IconSource

	face font.Face
}

// NewRenderer prepares the label font for style.
func NewRenderer(style Style, icons IconSource) (*Renderer, error) {
	fnt, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse label font: %w", err)
	}
	size := style.FontSize
	if size <= 0 {
		size = DefaultStyle().FontSize
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create label face: %w", err)
	}
	return &Renderer{Style: style, Icons: icons, face: face}, nil
}

// Close releases the font face.
func (r *Renderer) Close() error {
	return r.face.Close()
}

// Render draws doc over base and returns a new image; base is not modified.
// The base image must match the document's natural size. When icons are
// enabled, a missing catalog image aborts the render with a
// sequence.ResourceNotFoundError.
func (r *Renderer) Render(doc *sequence.Document, base image.Image) (*image.RGBA, error) {
	want := doc.Image()
	b := base.Bounds()
	if b.Dx() != want.Width || b.Dy() != want.Height {
		return nil, &sequence.ValidationError{
			Field: "image",
			Msg:   fmt.Sprintf("base image is %dx%d, document expects %dx%d", b.Dx(), b.Dy(), want.Width, want.Height),
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), base, b.Min, draw.Src)

	for _, box := range Layout(doc, r.Style) {
		col := r.Style.Color(box.Side)
		if r.Style.DrawIcons {
			if err := r.drawIcon(out, doc, box); err != nil {
				return nil, err
			}
		}
		strokeRect(out, box.Rect, r.Style.StrokeWidth, col)
		r.drawLabel(out, box, col)
	}
	return out, nil
}

func (r *Renderer) drawIcon(dst *image.RGBA, doc *sequence.Document, box Box) error {
	ch, ok := doc.Choice(box.Value)
	if !ok {
		if ref, isRef := box.Value.Ref(); isRef {
			return sequence.NotFound("catalog entry", ref, nil)
		}
		return nil
	}
	if r.Icons == nil {
		return sequence.NotFound("artwork", ch.Path, nil)
	}
	icon, err := r.Icons.Icon(ch)
	if err != nil {
		return fmt.Errorf("artwork %s: %w", ch.ID, err)
	}
	seqimage.Overlay(dst, icon, box.Rect, r.Style.IconOpacity)
	return nil
}

func (r *Renderer) drawLabel(dst *image.RGBA, box Box, col color.RGBA) {
	if box.Label == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: r.face,
		Dot:  fixed.P(box.Rect.Min.X+labelInsetX, box.Rect.Max.Y-labelInsetY),
	}
	d.DrawString(box.Label)
}

// strokeRect draws an outline of the given width inside r, clipped to dst.
func strokeRect(dst *image.RGBA, r image.Rectangle, width int, col color.RGBA) {
	if width <= 0 {
		return
	}
	u := image.NewUniform(col)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), // top
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), // bottom
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y), // left
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y), // right
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), u, image.Point{}, draw.Src)
	}
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	bw := bufio.NewWriter(w)
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(bw, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return bw.Flush()
}
