package server

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	seqimage "artwork-sequencer/internal/image"
	"artwork-sequencer/internal/project"
	"artwork-sequencer/internal/sequence"
	"artwork-sequencer/internal/share"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.store.Stats()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"viewers":        st.Viewers,
		"results":        st.Results,
		"retention_days": st.RetentionDays,
		"max_items":      st.MaxItems,
		"version":        s.opts.Version,
	})
}

type viewerRequest struct {
	Record  *project.Record `json:"record"`
	Image   string          `json:"image"`
	BaseURL string          `json:"base_url"`
}

type viewerCreated struct {
	ViewerID string `json:"viewer_id"`
	URL      string `json:"url"`
	FullURL  string `json:"full_url"`
}

// imageHeader checks an uploaded image against the record's imageSize and
// fills it in when absent.
func imageHeader(rec *project.Record, data []byte) (contentType string, err error) {
	w, h, format, err := seqimage.DecodeConfigBytes(data)
	if err != nil {
		return "", err
	}
	if rec.ImageSize != nil && (rec.ImageSize.Width != w || rec.ImageSize.Height != h) {
		return "", &sequence.ValidationError{
			Field: "imageSize",
			Msg:   fmt.Sprintf("record says %dx%d but image is %dx%d", rec.ImageSize.Width, rec.ImageSize.Height, w, h),
		}
	}
	rec.ImageSize = &project.ImageSize{Width: w, Height: h}
	return "image/" + format, nil
}

func (s *Server) handleCreateViewer(w http.ResponseWriter, r *http.Request) {
	var req viewerRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Record == nil {
		s.writeError(w, r, &sequence.ValidationError{Field: "record", Msg: "is required"})
		return
	}
	data, err := decodeImageData("image", req.Image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var contentType string
	if len(data) > 0 {
		if contentType, err = imageHeader(req.Record, data); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if _, err := document(req.Record, 0, 0); err != nil {
		s.writeError(w, r, err)
		return
	}

	v, err := s.store.CreateViewer(req.Record, data, contentType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	base := req.BaseURL
	if base == "" {
		base = s.opts.PublicBaseURL
	}
	path := "/viewer/" + v.ID
	loggerFor(r).Info("viewer created", "id", v.ID, "placements", len(req.Record.Placements), "image_bytes", len(data))
	s.writeJSON(w, http.StatusCreated, viewerCreated{
		ViewerID: v.ID,
		URL:      path,
		FullURL:  strings.TrimRight(base, "/") + path,
	})
}

func (s *Server) handleGetViewer(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.Viewer(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleUpdateViewer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, err := s.store.Viewer(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var rec project.Record
	if err := s.decodeBody(w, r, &rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	if rec.ImageSize == nil && current.Record != nil {
		rec.ImageSize = current.Record.ImageSize
	}
	if rec.Image == "" && current.Record != nil {
		rec.Image = current.Record.Image
	}
	if _, err := document(&rec, 0, 0); err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.store.UpdateViewer(id, &rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.hub.Broadcast(id, liveMessage{Type: "update", Updated: v.Updated, Record: v.Record})
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleViewerImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v, err := s.store.Viewer(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(v.Image) == 0 {
		s.writeError(w, r, sequence.NotFound("viewer image", id, nil))
		return
	}
	w.Header().Set("Content-Type", v.ImageType)
	_, _ = w.Write(v.Image)
}

func (s *Server) handleViewerComposite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v, err := s.store.Viewer(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(v.Image) == 0 {
		s.writeError(w, r, sequence.NotFound("viewer image", id, nil))
		return
	}
	png, err := s.export(r.Context(), func() ([]byte, error) {
		layer, err := seqimage.Decode(id, v.Image)
		if err != nil {
			return nil, err
		}
		doc, err := document(v.Record, layer.Width(), layer.Height())
		if err != nil {
			return nil, err
		}
		return s.renderPNG(doc, layer.Image)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

type resultRequest struct {
	Record    *project.Record `json:"record"`
	Report    string          `json:"report"`
	ImageData string          `json:"image_data"`
	Generated time.Time       `json:"generated"`
}

type resultView struct {
	share.Result
	HasImage bool `json:"hasImage"`
}

func (s *Server) handleSaveResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	png, err := decodeImageData("image_data", req.ImageData)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(png) > 0 {
		if _, _, format, err := seqimage.DecodeConfigBytes(png); err != nil {
			s.writeError(w, r, err)
			return
		} else if format != "png" {
			s.writeError(w, r, &sequence.ValidationError{Field: "image_data", Msg: "composite must be a PNG, got " + format})
			return
		}
	}
	generated := req.Generated
	if generated.IsZero() {
		generated = s.opts.Now()
	}
	text := req.Report
	if req.Record != nil {
		doc, err := document(req.Record, 0, 0)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if text == "" {
			body, _, err := formatReport(doc, "text", generated, nil)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			text = string(body)
		}
	}
	if text == "" && len(png) == 0 {
		s.writeError(w, r, &sequence.ValidationError{Field: "report", Msg: "a report, record or image is required"})
		return
	}

	res, err := s.store.SaveResult(share.Result{
		Generated: generated,
		Record:    req.Record,
		Report:    text,
		Composite: png,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	loggerFor(r).Info("result saved", "id", res.ID, "report_bytes", len(text), "image_bytes", len(png))
	s.writeJSON(w, http.StatusCreated, map[string]string{"result_id": res.ID})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.Result(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resultView{Result: res, HasImage: len(res.Composite) > 0})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	res, err := s.store.Result(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	switch kind := r.PathValue("kind"); kind {
	case "report":
		attachment(w, "text/plain; charset=utf-8", "report.txt")
		_, _ = w.Write([]byte(res.Report))
	case "image":
		if len(res.Composite) == 0 {
			s.writeError(w, r, sequence.NotFound("result image", id, nil))
			return
		}
		attachment(w, "image/png", "final.png")
		_, _ = w.Write(res.Composite)
	case "pdf":
		if res.Record == nil {
			s.writeError(w, r, sequence.NotFound("result record", id, nil))
			return
		}
		body, err := s.export(r.Context(), func() ([]byte, error) {
			doc, err := document(res.Record, 0, 0)
			if err != nil {
				return nil, err
			}
			body, _, err := formatReport(doc, "pdf", res.Generated, res.Composite)
			return body, err
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		attachment(w, "application/pdf", "report.pdf")
		_, _ = w.Write(body)
	default:
		s.writeError(w, r, &sequence.ValidationError{Field: "kind", Msg: fmt.Sprintf("invalid file type %q", kind)})
	}
}

type reportRequest struct {
	Record    *project.Record `json:"record"`
	Format    string          `json:"format"`
	Generated time.Time       `json:"generated"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	generated := req.Generated
	if generated.IsZero() {
		generated = s.opts.Now()
	}
	var contentType string
	body, err := s.export(r.Context(), func() ([]byte, error) {
		doc, err := document(req.Record, 0, 0)
		if err != nil {
			return nil, err
		}
		var body []byte
		body, contentType, err = formatReport(doc, req.Format, generated, nil)
		return body, err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Format == "" {
		s.writeJSON(w, http.StatusOK, map[string]string{"report": string(body)})
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(body)
}

type renderRequest struct {
	Record *project.Record `json:"record"`
	Image  string          `json:"image"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := decodeImageData("image", req.Image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(data) == 0 {
		s.writeError(w, r, &sequence.ValidationError{Field: "image", Msg: "is required"})
		return
	}
	png, err := s.export(r.Context(), func() ([]byte, error) {
		layer, err := seqimage.Decode("upload", data)
		if err != nil {
			return nil, err
		}
		doc, err := document(req.Record, layer.Width(), layer.Height())
		if err != nil {
			return nil, err
		}
		return s.renderPNG(doc, layer.Image)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

type cleanupStats struct {
	share.Stats
	NextCleanup      *time.Time `json:"next_cleanup,omitempty"`
	NextCleanupHours int        `json:"next_cleanup_hours"`
}

func (s *Server) handleCleanupStats(w http.ResponseWriter, r *http.Request) {
	out := cleanupStats{
		Stats:            s.store.Stats(),
		NextCleanupHours: int(s.opts.CleanupInterval / time.Hour),
	}
	if s.opts.NextCleanup != nil {
		next := s.opts.NextCleanup()
		if !next.IsZero() {
			out.NextCleanup = &next
			out.NextCleanupHours = max(0, int(math.Ceil(next.Sub(s.opts.Now()).Hours())))
		}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	rep := s.store.Sweep()
	loggerFor(r).Info("manual cleanup", "removed", rep.Removed())
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "cleanup completed",
		"removed": rep.Removed(),
		"sweep":   rep,
	})
}
