// Package project provides the wire record of a document and project file
// handling.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	seqimage "artwork-sequencer/internal/image"
	"artwork-sequencer/internal/sequence"
)

// Extension is the conventional project file suffix.
const Extension = ".artseq.json"

// Load loads a record from a project file.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}

// Save writes the record to a file.
func (r *Record) Save(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// SetImage sets the base image path (relative to project).
func (r *Record) SetImage(projectPath, imagePath string) {
	r.Image = relativeTo(projectPath, imagePath)
}

// ImagePath returns the absolute path to the base image.
func (r *Record) ImagePath(projectPath string) string {
	return resolve(projectPath, r.Image)
}

// RelativizeChoices rewrites catalog paths relative to the project file.
func (r *Record) RelativizeChoices(projectPath string) {
	for i := range r.Choices {
		r.Choices[i].Path = relativeTo(projectPath, r.Choices[i].Path)
	}
}

// ResolveChoices rewrites catalog paths as absolute paths.
func (r *Record) ResolveChoices(projectPath string) {
	for i := range r.Choices {
		r.Choices[i].Path = resolve(projectPath, r.Choices[i].Path)
	}
}

func relativeTo(projectPath, target string) string {
	if target == "" || !filepath.IsAbs(target) {
		return target
	}
	dir, err := filepath.Abs(filepath.Dir(projectPath))
	if err != nil {
		return target
	}
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return target
	}
	return rel
}

func resolve(projectPath, target string) string {
	if target == "" || filepath.IsAbs(target) {
		return target
	}
	return filepath.Join(filepath.Dir(projectPath), target)
}

// SaveDocument writes doc to path with image and artwork paths stored
// relative to the project file.
func SaveDocument(path string, doc *sequence.Document) error {
	r := FromDocument(doc)
	r.SetImage(path, doc.Image().Path)
	r.RelativizeChoices(path)
	if err := r.Save(path); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

// OpenDocument loads a project file and rebuilds its document. Paths come
// back absolute. When the record carries no image size the base image
// header is read to obtain it.
func OpenDocument(path string) (*sequence.Document, error) {
	r, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	r.ResolveChoices(path)
	base := sequence.BaseImage{Path: r.ImagePath(path)}
	if r.ImageSize == nil {
		if base.Path == "" {
			return nil, &sequence.ValidationError{Field: "image", Msg: "project has no base image"}
		}
		w, h, err := seqimage.DecodeConfig(base.Path)
		if err != nil {
			return nil, err
		}
		base.Width, base.Height = w, h
	}
	return r.ToDocument(base)
}
