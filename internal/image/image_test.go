package image

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"artwork-sequencer/internal/sequence"
)

func writePNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "road.png")
	writePNG(t, path, 40, 30, color.White)

	layer, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if layer.Width() != 40 || layer.Height() != 30 || layer.Format != "png" {
		t.Fatalf("layer = %dx%d %s", layer.Width(), layer.Height(), layer.Format)
	}
	if b := layer.BaseImage(); b.Width != 40 || b.Height != 30 || b.Path != path {
		t.Fatalf("BaseImage = %+v", b)
	}

	w, h, err := DecodeConfig(path)
	if err != nil || w != 40 || h != 30 {
		t.Fatalf("DecodeConfig = %d, %d, %v", w, h, err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.png")); !errors.Is(err, sequence.ErrResourceNotFound) {
		t.Fatalf("missing file: %v", err)
	}
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(garbage); !errors.Is(err, sequence.ErrValidation) {
		t.Fatalf("garbage file: %v", err)
	}
}

func TestDecodeBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "road.png")
	writePNG(t, path, 12, 9, color.Black)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	w, h, format, err := DecodeConfigBytes(data)
	if err != nil || w != 12 || h != 9 || format != "png" {
		t.Fatalf("DecodeConfigBytes = %d, %d, %q, %v", w, h, format, err)
	}
	layer, err := Decode("upload", data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if layer.Width() != 12 || layer.Path != "upload" {
		t.Fatalf("layer = %+v", layer)
	}
	if _, err := Decode("upload", []byte("nope")); !errors.Is(err, sequence.ErrValidation) {
		t.Fatalf("garbage bytes: %v", err)
	}
	if _, _, _, err := DecodeConfigBytes(nil); !errors.Is(err, sequence.ErrValidation) {
		t.Fatalf("empty bytes: %v", err)
	}
}

func TestResizeToMax(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	got := ResizeToMax(src, 100)
	if got.Bounds().Dx() != 100 || got.Bounds().Dy() != 50 {
		t.Fatalf("resized to %v", got.Bounds())
	}
	if ResizeToMax(src, 400) != image.Image(src) {
		t.Fatal("image already at size should be returned as is")
	}
	up := ResizeToMax(image.NewRGBA(image.Rect(0, 0, 10, 20)), 40)
	if up.Bounds().Dx() != 20 || up.Bounds().Dy() != 40 {
		t.Fatalf("upscaled to %v", up.Bounds())
	}
}

func TestFitRect(t *testing.T) {
	got := FitRect(image.Rect(0, 0, 200, 100), image.Rect(10, 10, 30, 30))
	if got != image.Rect(10, 15, 30, 25) {
		t.Fatalf("FitRect = %v", got)
	}
}

func TestOverlayBlendsAlpha(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := range dst.Pix {
		dst.Pix[i] = 255
	}
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	Overlay(dst, src, image.Rect(2, 2, 6, 6), 1)
	if c := dst.RGBAAt(3, 3); c != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("opaque overlay pixel = %v", c)
	}
	if c := dst.RGBAAt(8, 8); c != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("outside pixel changed: %v", c)
	}

	Overlay(dst, src, image.Rect(6, 6, 10, 10), 0.5)
	c := dst.RGBAAt(7, 7)
	if c.R != 255 || c.G < 120 || c.G > 135 {
		t.Fatalf("half opacity pixel = %v", c)
	}
}

func TestIconCache(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 300, 150, color.Black)

	cache := NewIconCache(dir, 64)
	icon, err := cache.Icon(sequence.ArtworkChoice{ID: "1", Path: "a.png"})
	if err != nil {
		t.Fatal(err)
	}
	if icon.Bounds().Dx() != 64 || icon.Bounds().Dy() != 32 {
		t.Fatalf("icon = %v", icon.Bounds())
	}
	again, _ := cache.Icon(sequence.ArtworkChoice{ID: "1", Path: "a.png"})
	if again != icon {
		t.Fatal("second lookup should hit the cache")
	}
	if _, err := cache.Icon(sequence.ArtworkChoice{ID: "2", Path: "b.png"}); !errors.Is(err, sequence.ErrResourceNotFound) {
		t.Fatalf("missing icon: %v", err)
	}
}
