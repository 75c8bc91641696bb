package image

import (
	"image"
	"image/color"
	"math"
	"path/filepath"
	"sync"

	"artwork-sequencer/internal/sequence"

	"golang.org/x/image/draw"
)

// ResizeToMax scales img so its longer edge is maxEdge, keeping aspect.
// Images already at that size are returned unchanged.
func ResizeToMax(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	if maxEdge <= 0 || b.Empty() {
		return img
	}
	long := max(b.Dx(), b.Dy())
	if long == maxEdge {
		return img
	}
	scale := float64(maxEdge) / float64(long)
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// FitRect returns the largest rectangle with src's aspect ratio that fits
// inside r, centred in it.
func FitRect(src image.Rectangle, r image.Rectangle) image.Rectangle {
	if src.Empty() || r.Empty() {
		return image.Rectangle{}
	}
	s := math.Min(float64(r.Dx())/float64(src.Dx()), float64(r.Dy())/float64(src.Dy()))
	w := max(1, int(math.Round(float64(src.Dx())*s)))
	h := max(1, int(math.Round(float64(src.Dy())*s)))
	x := r.Min.X + (r.Dx()-w)/2
	y := r.Min.Y + (r.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// Overlay alpha-blends src, scaled to fit r, onto dst. opacity multiplies
// the source alpha. Parts outside dst are clipped.
func Overlay(dst draw.Image, src image.Image, r image.Rectangle, opacity float64) {
	target := FitRect(src.Bounds(), r)
	if target.Empty() || !target.Overlaps(dst.Bounds()) {
		return
	}
	scaled := image.NewRGBA(image.Rect(0, 0, target.Dx(), target.Dy()))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)

	if opacity >= 1 {
		draw.Draw(dst, target, scaled, image.Point{}, draw.Over)
		return
	}
	a := uint8(clamp(opacity, 0, 1) * 255)
	draw.DrawMask(dst, target, scaled, image.Point{}, image.NewUniform(color.Alpha{A: a}), image.Point{}, draw.Over)
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// IconCache loads catalog artwork once and keeps a thumbnail per path. It is
// safe for concurrent use.
type IconCache struct {
	// BaseDir resolves relative catalog paths.
	BaseDir string
	// MaxEdge is the thumbnail size; 0 keeps full resolution.
	MaxEdge int

	mu    sync.Mutex
	icons map[string]image.Image
}

// NewIconCache creates a cache resolving relative paths against baseDir.
func NewIconCache(baseDir string, maxEdge int) *IconCache {
	return &IconCache{BaseDir: baseDir, MaxEdge: maxEdge, icons: make(map[string]image.Image)}
}

// Icon returns the thumbnail for a catalog entry.
func (c *IconCache) Icon(ch sequence.ArtworkChoice) (image.Image, error) {
	path := ch.Path
	if path == "" {
		return nil, sequence.NotFound("artwork", ch.ID, nil)
	}
	if !filepath.IsAbs(path) && c.BaseDir != "" {
		path = filepath.Join(c.BaseDir, path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.icons[path]; ok {
		return img, nil
	}
	layer, err := Load(path)
	if err != nil {
		return nil, err
	}
	img := ResizeToMax(layer.Image, c.MaxEdge)
	if c.icons == nil {
		c.icons = make(map[string]image.Image)
	}
	c.icons[path] = img
	return img, nil
}

// Put seeds the cache, e.g. with artwork uploaded over HTTP.
func (c *IconCache) Put(path string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.icons == nil {
		c.icons = make(map[string]image.Image)
	}
	if !filepath.IsAbs(path) && c.BaseDir != "" {
		path = filepath.Join(c.BaseDir, path)
	}
	c.icons[path] = ResizeToMax(img, c.MaxEdge)
}
