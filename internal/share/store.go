package share

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"artwork-sequencer/internal/project"
	"artwork-sequencer/internal/sequence"
)

const (
	viewerDir    = "viewers"
	lockFile     = "sequencer.lock"
	snapshotExt  = ".json"
	imageFileExt = ".img"
)

// ErrLocked is returned by Open when another process owns the data directory.
var ErrLocked = errors.New("data directory is in use by another process")

// Viewer is a shared, read-mostly view of a document and its base image.
type Viewer struct {
	ID        string          `json:"id"`
	Created   time.Time       `json:"created"`
	Updated   time.Time       `json:"updated"`
	Record    *project.Record `json:"record"`
	ImageType string          `json:"imageType,omitempty"`
	Image     []byte          `json:"-"`
}

// Result is a finished export kept for download.
type Result struct {
	ID        string          `json:"id"`
	Created   time.Time       `json:"created"`
	Generated time.Time       `json:"generated"`
	Record    *project.Record `json:"record,omitempty"`
	Report    string          `json:"report"`
	Composite []byte          `json:"-"`
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces the UUID generator.
func WithIDs(next func() string) Option {
	return func(s *Store) { s.newID = next }
}

// Store holds viewers and results. It is safe for concurrent use.
type Store struct {
	dir    string
	policy Policy
	now    func() time.Time
	newID  func() string
	lock   *flock.Flock

	mu      sync.RWMutex
	viewers map[string]*Viewer
	results map[string]*Result
}

// Open creates a store rooted at dir, takes the directory lock and loads any
// viewer snapshots found there. An empty dir keeps everything in memory.
func Open(dir string, policy Policy, opts ...Option) (*Store, error) {
	s := &Store{
		dir:     dir,
		policy:  policy,
		now:     time.Now,
		newID:   uuid.NewString,
		viewers: make(map[string]*Viewer),
		results: make(map[string]*Result),
	}
	for _, opt := range opts {
		opt(s)
	}
	if dir == "" {
		return s, nil
	}

	if err := os.MkdirAll(filepath.Join(dir, viewerDir), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	s.lock = flock.New(filepath.Join(dir, lockFile))
	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", dir, ErrLocked)
	}
	if err := s.loadSnapshots(); err != nil {
		_ = s.lock.Unlock()
		return nil, err
	}
	return s, nil
}

// Close releases the directory lock.
func (s *Store) Close() error {
	if s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}

// Policy returns the eviction policy in force.
func (s *Store) Policy() Policy { return s.policy }

func (s *Store) loadSnapshots() error {
	dir := filepath.Join(s.dir, viewerDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read snapshots: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotExt) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("skipping unreadable viewer snapshot", "path", path, "error", err)
			continue
		}
		var v Viewer
		if err := json.Unmarshal(data, &v); err != nil || v.ID == "" {
			slog.Warn("skipping corrupt viewer snapshot", "path", path, "error", err)
			continue
		}
		img, err := os.ReadFile(s.imagePath(v.ID))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("viewer image unreadable", "id", v.ID, "error", err)
		}
		v.Image = img
		s.viewers[v.ID] = &v
	}
	if len(s.viewers) > 0 {
		slog.Info("loaded viewer snapshots", "count", len(s.viewers), "dir", dir)
	}
	return nil
}

func (s *Store) snapshotPath(id string) string {
	return filepath.Join(s.dir, viewerDir, id+snapshotExt)
}

func (s *Store) imagePath(id string) string {
	return filepath.Join(s.dir, viewerDir, id+imageFileExt)
}

// writeSnapshot persists v. Callers hold s.mu.
func (s *Store) writeSnapshot(v *Viewer, withImage bool) error {
	if s.dir == "" {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode viewer: %w", err)
	}
	if withImage && len(v.Image) > 0 {
		if err := writeFileAtomic(s.imagePath(v.ID), v.Image); err != nil {
			return err
		}
	}
	return writeFileAtomic(s.snapshotPath(v.ID), data)
}

func (s *Store) removeSnapshot(id string) {
	if s.dir == "" {
		return
	}
	for _, path := range []string{s.snapshotPath(id), s.imagePath(id)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to delete viewer file", "path", path, "error", err)
		}
	}
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// CreateViewer stores a new viewer and returns it.
func (s *Store) CreateViewer(rec *project.Record, img []byte, imageType string) (Viewer, error) {
	if rec == nil {
		return Viewer{}, &sequence.ValidationError{Field: "record", Msg: "is required"}
	}
	now := s.now()
	v := &Viewer{
		ID:        s.newID(),
		Created:   now,
		Updated:   now,
		Record:    rec,
		ImageType: imageType,
		Image:     img,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeSnapshot(v, true); err != nil {
		return Viewer{}, err
	}
	s.viewers[v.ID] = v
	return *v, nil
}

// Viewer returns the viewer with the given id.
func (s *Store) Viewer(id string) (Viewer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.viewers[id]
	if !ok {
		return Viewer{}, sequence.NotFound("viewer", id, nil)
	}
	return *v, nil
}

// UpdateViewer replaces a viewer's record. The image is kept.
func (s *Store) UpdateViewer(id string, rec *project.Record) (Viewer, error) {
	if rec == nil {
		return Viewer{}, &sequence.ValidationError{Field: "record", Msg: "is required"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.viewers[id]
	if !ok {
		return Viewer{}, sequence.NotFound("viewer", id, nil)
	}
	next := *v
	next.Record = rec
	next.Updated = s.now()
	if err := s.writeSnapshot(&next, false); err != nil {
		return Viewer{}, err
	}
	s.viewers[id] = &next
	return next, nil
}

// SaveResult stores r under a fresh id and returns the stored copy.
func (s *Store) SaveResult(r Result) (Result, error) {
	r.ID = s.newID()
	r.Created = s.now()
	if r.Generated.IsZero() {
		r.Generated = r.Created
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.ID] = &r
	return r, nil
}

// Result returns the result with the given id.
func (s *Store) Result(id string) (Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	if !ok {
		return Result{}, sequence.NotFound("result", id, nil)
	}
	return *r, nil
}

// SweepReport counts what a sweep removed.
type SweepReport struct {
	ExpiredViewers int `json:"expiredViewers"`
	ExpiredResults int `json:"expiredResults"`
	EvictedViewers int `json:"evictedViewers"`
	EvictedResults int `json:"evictedResults"`
}

// Removed is the total number of entries dropped.
func (r SweepReport) Removed() int {
	return r.ExpiredViewers + r.ExpiredResults + r.EvictedViewers + r.EvictedResults
}

// Sweep applies the policy to both collections.
func (s *Store) Sweep() SweepReport {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	var rep SweepReport
	vs := make([]stamp, 0, len(s.viewers))
	for id, v := range s.viewers {
		vs = append(vs, stamp{id: id, created: v.Created})
	}
	expired, evicted := s.policy.evictions(vs, now)
	for _, id := range append(expired, evicted...) {
		delete(s.viewers, id)
		s.removeSnapshot(id)
	}
	rep.ExpiredViewers, rep.EvictedViewers = len(expired), len(evicted)

	rs := make([]stamp, 0, len(s.results))
	for id, r := range s.results {
		rs = append(rs, stamp{id: id, created: r.Created})
	}
	expired, evicted = s.policy.evictions(rs, now)
	for _, id := range append(expired, evicted...) {
		delete(s.results, id)
	}
	rep.ExpiredResults, rep.EvictedResults = len(expired), len(evicted)

	if n := rep.ExpiredViewers + rep.ExpiredResults; n > 0 {
		slog.Info("removed expired entries", "viewers", rep.ExpiredViewers, "results", rep.ExpiredResults, "max_age", s.policy.MaxAge)
	}
	if n := rep.EvictedViewers + rep.EvictedResults; n > 0 {
		slog.Warn("enforced storage limit", "viewers", rep.EvictedViewers, "results", rep.EvictedResults, "max_items", s.policy.MaxItems)
	}
	return rep
}

// Stats describes the store contents.
type Stats struct {
	Viewers          int `json:"current_viewers"`
	Results          int `json:"current_results"`
	OldestViewerDays int `json:"oldest_viewer_days"`
	OldestResultDays int `json:"oldest_result_days"`
	RetentionDays    int `json:"retention_policy_days"`
	MaxItems         int `json:"max_storage_items"`
}

// Stats returns counts and the age in whole days of the oldest entries.
func (s *Store) Stats() Stats {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{
		Viewers:       len(s.viewers),
		Results:       len(s.results),
		RetentionDays: int(s.policy.MaxAge / (24 * time.Hour)),
		MaxItems:      s.policy.MaxItems,
	}
	for _, v := range s.viewers {
		st.OldestViewerDays = max(st.OldestViewerDays, ageDays(now, v.Created))
	}
	for _, r := range s.results {
		st.OldestResultDays = max(st.OldestResultDays, ageDays(now, r.Created))
	}
	return st
}

func ageDays(now, t time.Time) int {
	d := now.Sub(t)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
