// Package server is the HTTP transfer layer: it shares viewers, keeps export
// results for download, renders and tallies documents on request and pushes
// viewer updates to connected browsers.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"artwork-sequencer/internal/render"
	"artwork-sequencer/internal/share"
)

// Options configures a Server.
type Options struct {
	Style render.Style
	// Icons supplies artwork when Style.DrawIcons is set.
	Icons render.IconSource

	// ExportTimeout bounds one render or report request.
	ExportTimeout time.Duration
	// MaxExports is how many renders may run at once. Further requests
	// are refused with 503.
	MaxExports     int
	MaxUploadBytes int64

	PublicBaseURL string
	// CleanupInterval is reported as the time to the next sweep when
	// NextCleanup is nil or has no schedule yet.
	CleanupInterval time.Duration
	NextCleanup     func() time.Time
	Version         string

	Now func() time.Time
}

func (o *Options) setDefaults() {
	if o.Style.MinBox == 0 {
		o.Style = render.DefaultStyle()
	}
	if o.Icons == nil {
		o.Style.DrawIcons = false
	}
	if o.ExportTimeout <= 0 {
		o.ExportTimeout = 10 * time.Second
	}
	if o.MaxExports <= 0 {
		o.MaxExports = runtime.NumCPU()
	}
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = 25 << 20
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = 24 * time.Hour
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Server serves the transfer API.
type Server struct {
	store *share.Store
	opts  Options
	hub   *Hub
	slots chan struct{}
}

// New creates a server backed by store.
func New(store *share.Store, opts Options) *Server {
	opts.setDefaults()
	return &Server{
		store: store,
		opts:  opts,
		hub:   NewHub(),
		slots: make(chan struct{}, opts.MaxExports),
	}
}

// Hub returns the live update hub.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/viewers", s.handleCreateViewer)
	mux.HandleFunc("GET /api/viewers/{id}", s.handleGetViewer)
	mux.HandleFunc("PUT /api/viewers/{id}", s.handleUpdateViewer)
	mux.HandleFunc("GET /api/viewers/{id}/image", s.handleViewerImage)
	mux.HandleFunc("GET /api/viewers/{id}/composite", s.handleViewerComposite)
	mux.HandleFunc("GET /api/viewers/{id}/live", s.handleLive)
	mux.HandleFunc("GET /viewer/{id}", s.handleViewerPage)

	mux.HandleFunc("POST /api/results", s.handleSaveResult)
	mux.HandleFunc("GET /api/results/{id}", s.handleGetResult)
	mux.HandleFunc("GET /api/download/{id}/{kind}", s.handleDownload)

	mux.HandleFunc("POST /api/report", s.handleReport)
	mux.HandleFunc("POST /api/render", s.handleRender)

	mux.HandleFunc("GET /api/cleanup-stats", s.handleCleanupStats)
	mux.HandleFunc("POST /api/cleanup", s.handleCleanup)
	return mux
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("sequencer server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.CloseAll()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
			return err
		}
		slog.Info("server stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}
