// Package image loads base photographs and artwork files and provides the
// resize and overlay helpers the renderer builds on.
package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"artwork-sequencer/internal/sequence"
	"artwork-sequencer/pkg/geometry"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Layer is a decoded image file.
type Layer struct {
	Path   string      // Original file path
	Image  image.Image // Decoded pixels
	Format string      // Decoder name ("png", "jpeg", ...)
}

// Load decodes the image at path. A missing file is a
// sequence.ResourceNotFoundError; a file that cannot be decoded is a
// sequence.ValidationError.
func Load(path string) (*Layer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, &sequence.ValidationError{Field: "image", Msg: fmt.Sprintf("decode %s: %v", path, err)}
	}
	if img.Bounds().Empty() {
		return nil, &sequence.ValidationError{Field: "image", Msg: fmt.Sprintf("%s is empty", path)}
	}
	return &Layer{Path: path, Image: img, Format: format}, nil
}

// Decode decodes an in-memory image. name is used for the layer path and in
// error messages.
func Decode(name string, data []byte) (*Layer, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &sequence.ValidationError{Field: "image", Msg: fmt.Sprintf("decode %s: %v", name, err)}
	}
	if img.Bounds().Empty() {
		return nil, &sequence.ValidationError{Field: "image", Msg: fmt.Sprintf("%s is empty", name)}
	}
	return &Layer{Path: name, Image: img, Format: format}, nil
}

// DecodeConfigBytes reads only the header of an in-memory image.
func DecodeConfigBytes(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", &sequence.ValidationError{Field: "image", Msg: fmt.Sprintf("decode header: %v", err)}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, "", &sequence.ValidationError{Field: "image", Msg: "image is empty"}
	}
	return cfg.Width, cfg.Height, format, nil
}

// DecodeConfig reads only the header of the image at path.
func DecodeConfig(path string) (width, height int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, openError(path, err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, &sequence.ValidationError{Field: "image", Msg: fmt.Sprintf("decode %s: %v", path, err)}
	}
	return cfg.Width, cfg.Height, nil
}

func openError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return sequence.NotFound("image", path, err)
	}
	return fmt.Errorf("failed to open image: %w", err)
}

// Width returns the image width in pixels.
func (l *Layer) Width() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (l *Layer) Height() int {
	if l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}

// Size returns the image dimensions.
func (l *Layer) Size() geometry.Size {
	return geometry.Size{
		Width:  float64(l.Width()),
		Height: float64(l.Height()),
	}
}

// BaseImage describes the layer as a document base image.
func (l *Layer) BaseImage() sequence.BaseImage {
	return sequence.BaseImage{Path: l.Path, Width: l.Width(), Height: l.Height()}
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// FileFilter returns a file filter string for use in file dialogs.
func FileFilter() string {
	return "Image Files (*.png, *.jpg, *.jpeg, *.gif, *.bmp, *.tiff, *.tif)"
}
