// Package app holds the editing session shared by the desktop editor and the
// command-line tools: the open document, its base image, and change events.
package app

import (
	"bytes"
	"errors"
	"fmt"
	goimage "image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"artwork-sequencer/internal/config"
	"artwork-sequencer/internal/image"
	"artwork-sequencer/internal/project"
	"artwork-sequencer/internal/render"
	"artwork-sequencer/internal/report"
	"artwork-sequencer/internal/sequence"
	"artwork-sequencer/pkg/geometry"
)

// Export file name prefixes; the timestamp is appended.
const (
	SequencePrefix = "Artwork_sequence_"
	ReportPrefix   = "Artwork_report_"
	stampLayout    = "20060102_150405"
)

// ErrNoDocument is returned by operations that need an open document.
var ErrNoDocument = errors.New("no document is open")

// State holds the open document and its base image.
type State struct {
	mu sync.RWMutex

	// Project
	ProjectPath string
	Modified    bool

	Doc   *sequence.Document
	Base  *image.Layer
	Icons *image.IconCache

	Config  *config.Config
	FitMode geometry.FitMode

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventDocumentCreated EventType = iota
	EventProjectLoaded
	EventProjectSaved
	EventPlacementsChanged
	EventSelectionChanged
	EventModified
	EventExported
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Setup describes a new document.
type Setup struct {
	Mode         sequence.RoadMode
	ArtworkCount int
	UseImages    bool
	ImagePath    string
	Choices      []string // artwork files, one per artwork when UseImages
}

// ExportResult names the files written by Export.
type ExportResult struct {
	ImagePath  string
	ReportPath string
	Tally      report.Tally
}

// NewState creates an empty session. A nil cfg uses the defaults.
func NewState(cfg *config.Config) *State {
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	return &State{
		Config:    cfg,
		FitMode:   cfg.Fit(),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the project as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// Touch records an edit made through the document and notifies listeners.
func (s *State) Touch() {
	s.SetModified(true)
	s.Emit(EventPlacementsChanged, s.Document())
}

// Document returns the open document, or nil.
func (s *State) Document() *sequence.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Doc
}

// NewDocument loads the base image and starts an empty document.
func (s *State) NewDocument(setup Setup) error {
	layer, err := image.Load(setup.ImagePath)
	if err != nil {
		return fmt.Errorf("load base image: %w", err)
	}
	doc, err := sequence.NewDocument(sequence.Options{
		Mode:         setup.Mode,
		ArtworkCount: setup.ArtworkCount,
		UseImages:    setup.UseImages,
		Catalog:      sequence.NewCatalog(setup.Choices),
		Image:        layer.BaseImage(),
		EnsureRadius: s.Config.EnsureRadius(s.FitMode),
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Doc = doc
	s.Base = layer
	s.Icons = image.NewIconCache("", s.Config.Render.IconMaxEdge)
	s.ProjectPath = ""
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventDocumentCreated, doc)
	return nil
}

// LoadProject opens a project file and its base image.
func (s *State) LoadProject(path string) error {
	rec, err := project.Load(path)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	rec.ResolveChoices(path)
	imagePath := rec.ImagePath(path)
	if imagePath == "" {
		return &sequence.ValidationError{Field: "image", Msg: "project has no base image"}
	}
	layer, err := image.Load(imagePath)
	if err != nil {
		return fmt.Errorf("load base image: %w", err)
	}
	if rec.ImageSize != nil && (rec.ImageSize.Width != layer.Width() || rec.ImageSize.Height != layer.Height()) {
		return &sequence.ValidationError{
			Field: "imageSize",
			Msg:   fmt.Sprintf("project says %dx%d but %s is %dx%d", rec.ImageSize.Width, rec.ImageSize.Height, imagePath, layer.Width(), layer.Height()),
		}
	}
	base := layer.BaseImage()
	doc, err := rec.ToDocument(base)
	if err != nil {
		return err
	}
	doc, err = withRadius(doc, s.Config.EnsureRadius(s.FitMode))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Doc = doc
	s.Base = layer
	s.Icons = image.NewIconCache(filepath.Dir(path), s.Config.Render.IconMaxEdge)
	s.ProjectPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventProjectLoaded, path)
	return nil
}

// withRadius rebuilds doc with a different ensure radius, keeping placement
// order and assignments.
func withRadius(doc *sequence.Document, radius float64) (*sequence.Document, error) {
	if radius <= 0 || radius == doc.EnsureRadius() {
		return doc, nil
	}
	out, err := sequence.NewDocument(sequence.Options{
		Mode:         doc.Mode(),
		ArtworkCount: doc.ArtworkCount(),
		UseImages:    doc.UseImages(),
		Catalog:      doc.Catalog(),
		Image:        doc.Image(),
		EnsureRadius: radius,
	})
	if err != nil {
		return nil, err
	}
	for _, p := range doc.Placements() {
		if _, err := out.Restore(p.Position, p.Side1, p.Side2); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SaveProject saves the project to the specified path.
func (s *State) SaveProject(path string) error {
	doc := s.Document()
	if doc == nil {
		return ErrNoDocument
	}
	if err := project.SaveDocument(path, doc); err != nil {
		return err
	}

	s.mu.Lock()
	s.ProjectPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventProjectSaved, path)
	return nil
}

// Tally counts the open document.
func (s *State) Tally() (report.Tally, error) {
	doc := s.Document()
	if doc == nil {
		return report.Tally{}, ErrNoDocument
	}
	return report.NewTally(doc), nil
}

// Export renders the composite and writes it with the text report into dir,
// named with the timestamp of now. An empty dir uses the configured output
// directory.
func (s *State) Export(dir string, now time.Time) (ExportResult, error) {
	s.mu.RLock()
	doc, base, icons := s.Doc, s.Base, s.Icons
	s.mu.RUnlock()
	if doc == nil || base == nil {
		return ExportResult{}, ErrNoDocument
	}
	if dir == "" {
		dir = s.Config.Output.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ExportResult{}, fmt.Errorf("create output directory: %w", err)
	}

	out, err := s.render(doc, base, icons)
	if err != nil {
		return ExportResult{}, err
	}

	stamp := now.Format(stampLayout)
	res := ExportResult{
		ImagePath:  filepath.Join(dir, SequencePrefix+stamp+".png"),
		ReportPath: filepath.Join(dir, ReportPrefix+stamp+".txt"),
		Tally:      report.NewTally(doc),
	}
	if err := writeFile(res.ImagePath, func(f *os.File) error { return render.EncodePNG(f, out) }); err != nil {
		return ExportResult{}, err
	}
	if err := writeFile(res.ReportPath, func(f *os.File) error { return report.WriteText(f, res.Tally, now) }); err != nil {
		return ExportResult{}, err
	}

	s.Emit(EventExported, res)
	return res, nil
}

// CompositePNG renders the open document and returns it PNG encoded.
func (s *State) CompositePNG() ([]byte, error) {
	s.mu.RLock()
	doc, base, icons := s.Doc, s.Base, s.Icons
	s.mu.RUnlock()
	if doc == nil || base == nil {
		return nil, ErrNoDocument
	}
	out, err := s.render(doc, base, icons)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *State) render(doc *sequence.Document, base *image.Layer, icons *image.IconCache) (*goimage.RGBA, error) {
	style, err := s.Config.Style()
	if err != nil {
		return nil, err
	}
	var src render.IconSource
	if doc.UseImages() && icons != nil {
		src = icons
	} else {
		style.DrawIcons = false
	}
	r, err := render.NewRenderer(style, src)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out, err := r.Render(doc, base.Image)
	if err != nil {
		return nil, fmt.Errorf("render composite: %w", err)
	}
	return out, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
