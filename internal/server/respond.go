package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"artwork-sequencer/internal/sequence"
)

// errBusy is returned when every export slot is taken.
var errBusy = errors.New("export capacity exhausted, retry shortly")

func (s *Server) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("unable to encode JSON response", "error", err)
	}
}

func loggerFor(r *http.Request) *slog.Logger {
	return slog.With("method", r.Method, "path", r.URL.Path)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sequence.ErrValidation), errors.Is(err, sequence.ErrInvalidSide):
		return http.StatusBadRequest
	case errors.Is(err, sequence.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBusy), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= 500 {
		loggerFor(r).Error("request failed", "status", code, "error", err)
	} else {
		loggerFor(r).Warn("request rejected", "status", code, "error", err)
	}
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal server error"
	}
	s.writeJSON(w, code, map[string]string{"error": msg})
}

// decodeBody reads a JSON request body no larger than the upload limit.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &sequence.ValidationError{Field: "body", Msg: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

// decodeImageData accepts raw base64 or a data URL and returns the bytes.
func decodeImageData(field, s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 || !strings.Contains(s[:i], ";base64") {
			return nil, &sequence.ValidationError{Field: field, Msg: "data URL must be base64 encoded"}
		}
		s = s[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &sequence.ValidationError{Field: field, Msg: fmt.Sprintf("invalid base64: %v", err)}
	}
	return data, nil
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
