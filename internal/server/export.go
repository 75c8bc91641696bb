package server

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"artwork-sequencer/internal/project"
	"artwork-sequencer/internal/render"
	"artwork-sequencer/internal/report"
	"artwork-sequencer/internal/sequence"
)

// export runs fn under the export deadline. When every slot is busy it
// refuses at once instead of queueing. A timed-out fn keeps its slot until
// it returns.
func (s *Server) export(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	select {
	case s.slots <- struct{}{}:
	default:
		return nil, errBusy
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.ExportTimeout)
	defer cancel()

	type outcome struct {
		data []byte
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() { <-s.slots }()
		data, err := fn()
		done <- outcome{data, err}
	}()

	select {
	case o := <-done:
		return o.data, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("export: %w", context.DeadlineExceeded)
	}
}

// document rebuilds rec against an image of w×h. When the size is unknown
// the record's own imageSize is used, then the placement extent.
func document(rec *project.Record, w, h int) (*sequence.Document, error) {
	if rec == nil {
		return nil, &sequence.ValidationError{Field: "record", Msg: "is required"}
	}
	if (w <= 0 || h <= 0) && rec.ImageSize == nil {
		ext := rec.Extent()
		w, h = ext.Width, ext.Height
	}
	return rec.ToDocument(sequence.BaseImage{Width: w, Height: h})
}

func (s *Server) renderPNG(doc *sequence.Document, base image.Image) ([]byte, error) {
	r, err := render.NewRenderer(s.opts.Style, s.opts.Icons)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	img, err := r.Render(doc, base)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatReport writes the tally of doc in the requested format and returns
// the body and its content type.
func formatReport(doc *sequence.Document, format string, generated time.Time, composite []byte) ([]byte, string, error) {
	t := report.NewTally(doc)
	var buf bytes.Buffer
	switch format {
	case "", "text":
		if err := report.WriteText(&buf, t, generated); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "text/plain; charset=utf-8", nil
	case "json":
		if err := report.WriteJSON(&buf, t, generated); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "application/json", nil
	case "yaml":
		if err := report.WriteYAML(&buf, t, generated); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "application/yaml", nil
	case "pdf":
		if err := report.WritePDF(&buf, t, generated, report.PDFOptions{Composite: composite}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "application/pdf", nil
	default:
		return nil, "", &sequence.ValidationError{Field: "format", Msg: fmt.Sprintf("unknown report format %q", format)}
	}
}
