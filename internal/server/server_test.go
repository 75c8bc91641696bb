package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"artwork-sequencer/internal/project"
	"artwork-sequencer/internal/share"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	store, err := share.Open(t.TempDir(), share.DefaultPolicy(), share.WithClock(clock.now))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	opts.Now = clock.now
	opts.Version = "test"
	srv := New(store, opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts, clock
}

func pngData(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func intp(n int) *int { return &n }

func twoWayRecord() *project.Record {
	return &project.Record{
		Mode:        "two",
		NumArtworks: 8,
		Placements: []project.PlacementRecord{
			{X: 10, Y: 10, S1Num: intp(1), S2Num: intp(8)},
			{X: 20, Y: 10, S1Num: intp(2), S2Num: intp(7)},
		},
	}
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status %d, want %d: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

func TestHealth(t *testing.T) {
	_, ts, _ := newTestServer(t, Options{})
	resp := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	expectStatus(t, resp, http.StatusOK)
	body := decode[map[string]any](t, resp)
	if body["status"] != "ok" || body["version"] != "test" || body["retention_days"] != float64(30) {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestViewerLifecycle(t *testing.T) {
	srv, ts, _ := newTestServer(t, Options{PublicBaseURL: "http://board.local:8000/"})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/viewers", viewerRequest{Record: twoWayRecord(), Image: pngData(t, 60, 40)})
	expectStatus(t, resp, http.StatusCreated)
	created := decode[viewerCreated](t, resp)
	if created.ViewerID == "" || created.URL != "/viewer/"+created.ViewerID {
		t.Fatalf("unexpected create response: %+v", created)
	}
	if created.FullURL != "http://board.local:8000/viewer/"+created.ViewerID {
		t.Fatalf("unexpected full url: %q", created.FullURL)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/viewers/"+created.ViewerID, nil)
	expectStatus(t, resp, http.StatusOK)
	v := decode[share.Viewer](t, resp)
	if v.Record == nil || v.Record.ImageSize == nil || v.Record.ImageSize.Width != 60 || v.ImageType != "image/png" {
		t.Fatalf("unexpected viewer: %+v", v)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/viewers/"+created.ViewerID+"/composite", nil)
	expectStatus(t, resp, http.StatusOK)
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("composite is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 40 {
		t.Fatalf("composite size %v", b)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/viewer/"+created.ViewerID, nil)
	expectStatus(t, resp, http.StatusOK)
	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(page), "Two Way") || !strings.Contains(string(page), "2 lamp posts") {
		t.Fatalf("viewer page missing header:\n%s", page)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/viewers/" + created.ViewerID + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial live: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var hello liveMessage
	if err := conn.ReadJSON(&hello); err != nil || hello.Type != "snapshot" {
		t.Fatalf("expected snapshot, got %+v (%v)", hello, err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for srv.Hub().Subscribers(created.ViewerID) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	update := twoWayRecord()
	update.Placements = update.Placements[:1]
	update.ImageSize = nil
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/viewers/"+created.ViewerID, update)
	expectStatus(t, resp, http.StatusOK)
	updated := decode[share.Viewer](t, resp)
	if len(updated.Record.Placements) != 1 || updated.Record.ImageSize == nil {
		t.Fatalf("update not applied: %+v", updated.Record)
	}

	var msg liveMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read live update: %v", err)
	}
	if msg.Type != "update" || len(msg.Record.Placements) != 1 {
		t.Fatalf("unexpected live message: %+v", msg)
	}
}

func TestViewerErrors(t *testing.T) {
	_, ts, _ := newTestServer(t, Options{})

	bad := twoWayRecord()
	bad.NumArtworks = 0
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/viewers", viewerRequest{Record: bad})
	expectStatus(t, resp, http.StatusBadRequest)

	outOfRange := twoWayRecord()
	outOfRange.Placements[0].S1Num = intp(9)
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/viewers", viewerRequest{Record: outOfRange, Image: pngData(t, 30, 30)})
	expectStatus(t, resp, http.StatusBadRequest)

	single := twoWayRecord()
	single.Mode = "single"
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/viewers", viewerRequest{Record: single, Image: pngData(t, 30, 30)})
	expectStatus(t, resp, http.StatusBadRequest)

	mismatch := twoWayRecord()
	mismatch.ImageSize = &project.ImageSize{Width: 10, Height: 10}
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/viewers", viewerRequest{Record: mismatch, Image: pngData(t, 30, 30)})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/viewers", viewerRequest{Record: twoWayRecord(), Image: "data:image/png;base64,@@@"})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/viewers/nope", nil)
	expectStatus(t, resp, http.StatusNotFound)
	resp = doJSON(t, http.MethodGet, ts.URL+"/viewer/nope", nil)
	expectStatus(t, resp, http.StatusNotFound)
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/viewers/nope", twoWayRecord())
	expectStatus(t, resp, http.StatusNotFound)

	// A viewer without an image has no composite.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/viewers", viewerRequest{Record: twoWayRecord()})
	expectStatus(t, resp, http.StatusCreated)
	created := decode[viewerCreated](t, resp)
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/viewers/"+created.ViewerID+"/composite", nil)
	expectStatus(t, resp, http.StatusNotFound)
}

func cyclingRecord() *project.Record {
	rec := &project.Record{Mode: "single", NumArtworks: 8}
	for i, n := range []int{1, 2, 3, 4, 5, 6, 7, 8, 1, 2} {
		rec.Placements = append(rec.Placements, project.PlacementRecord{X: i * 10, Y: 5, S1Num: intp(n)})
	}
	return rec
}

func TestReport(t *testing.T) {
	_, ts, _ := newTestServer(t, Options{})
	generated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/report", reportRequest{Record: cyclingRecord(), Generated: generated})
	expectStatus(t, resp, http.StatusOK)
	body := decode[map[string]string](t, resp)
	text := body["report"]
	for _, line := range []string{
		"Artwork SEQUENCING REPORT\n",
		"Generated: 2026-01-02T03:04:05\n",
		"Road Type: Single Way\n",
		"Artwork #1: 2 copies\n",
		"Artwork #2: 2 copies\n",
		"Artwork #3: 1 copies\n",
	} {
		if !strings.Contains(text, line) {
			t.Errorf("report missing %q:\n%s", line, text)
		}
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/report", reportRequest{Record: cyclingRecord(), Format: "yaml", Generated: generated})
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "application/yaml" {
		t.Fatalf("unexpected content type %q", ct)
	}
	yml, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(yml), "road_type: single") {
		t.Fatalf("unexpected yaml:\n%s", yml)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/report", reportRequest{Record: cyclingRecord(), Format: "docx"})
	expectStatus(t, resp, http.StatusBadRequest)
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/report", reportRequest{})
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestRender(t *testing.T) {
	_, ts, _ := newTestServer(t, Options{})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/render", renderRequest{Record: twoWayRecord(), Image: pngData(t, 80, 50)})
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("unexpected content type %q", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 80 || b.Dy() != 50 {
		t.Fatalf("render size %v", b)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/render", renderRequest{Record: twoWayRecord()})
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestResultsAndDownloads(t *testing.T) {
	_, ts, _ := newTestServer(t, Options{})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/results", resultRequest{
		Record:    cyclingRecord(),
		ImageData: pngData(t, 20, 20),
		Generated: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	expectStatus(t, resp, http.StatusCreated)
	id := decode[map[string]string](t, resp)["result_id"]
	if id == "" {
		t.Fatal("missing result id")
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/results/"+id, nil)
	expectStatus(t, resp, http.StatusOK)
	view := decode[map[string]any](t, resp)
	if view["hasImage"] != true || !strings.Contains(view["report"].(string), "Artwork #1: 2 copies") {
		t.Fatalf("unexpected result: %v", view)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/download/"+id+"/report", nil)
	expectStatus(t, resp, http.StatusOK)
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "report.txt") {
		t.Fatalf("unexpected disposition %q", cd)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/download/"+id+"/image", nil)
	expectStatus(t, resp, http.StatusOK)
	if _, err := png.Decode(resp.Body); err != nil {
		t.Fatalf("downloaded image: %v", err)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/download/"+id+"/pdf", nil)
	expectStatus(t, resp, http.StatusOK)
	pdf, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("not a PDF: %q", pdf[:min(len(pdf), 16)])
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/download/"+id+"/zip", nil)
	expectStatus(t, resp, http.StatusBadRequest)
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/download/missing/report", nil)
	expectStatus(t, resp, http.StatusNotFound)

	// A report-only result has no image or PDF.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/results", resultRequest{Report: "hand written"})
	expectStatus(t, resp, http.StatusCreated)
	bare := decode[map[string]string](t, resp)["result_id"]
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/download/"+bare+"/image", nil)
	expectStatus(t, resp, http.StatusNotFound)
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/download/"+bare+"/pdf", nil)
	expectStatus(t, resp, http.StatusNotFound)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/results", resultRequest{})
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestCleanup(t *testing.T) {
	_, ts, clock := newTestServer(t, Options{CleanupInterval: 24 * time.Hour})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/results", resultRequest{Report: "old"})
	expectStatus(t, resp, http.StatusCreated)
	clock.t = clock.t.Add(31 * 24 * time.Hour)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/cleanup-stats", nil)
	expectStatus(t, resp, http.StatusOK)
	stats := decode[map[string]any](t, resp)
	if stats["current_results"] != float64(1) || stats["oldest_result_days"] != float64(31) || stats["next_cleanup_hours"] != float64(24) {
		t.Fatalf("unexpected stats: %v", stats)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/cleanup", nil)
	expectStatus(t, resp, http.StatusOK)
	out := decode[map[string]any](t, resp)
	if out["removed"] != float64(1) {
		t.Fatalf("unexpected cleanup response: %v", out)
	}
}

func TestCleanupStatsFollowsSchedule(t *testing.T) {
	// The test clock starts at 09:00.
	next := time.Date(2026, 3, 14, 14, 30, 0, 0, time.UTC)
	_, ts, _ := newTestServer(t, Options{
		CleanupInterval: 24 * time.Hour,
		NextCleanup:     func() time.Time { return next },
	})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/cleanup-stats", nil)
	expectStatus(t, resp, http.StatusOK)
	stats := decode[map[string]any](t, resp)
	if stats["next_cleanup_hours"] != float64(6) {
		t.Fatalf("next_cleanup_hours = %v, want 6", stats["next_cleanup_hours"])
	}
	if stats["next_cleanup"] != "2026-03-14T14:30:00Z" {
		t.Fatalf("next_cleanup = %v", stats["next_cleanup"])
	}
}

func TestExportFailsFastWhenBusy(t *testing.T) {
	srv, ts, _ := newTestServer(t, Options{MaxExports: 1})
	srv.slots <- struct{}{}
	defer func() { <-srv.slots }()

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/render", renderRequest{Record: twoWayRecord(), Image: pngData(t, 40, 40)})
	expectStatus(t, resp, http.StatusServiceUnavailable)
}

func TestExportDeadline(t *testing.T) {
	srv, _, _ := newTestServer(t, Options{ExportTimeout: 10 * time.Millisecond})
	release := make(chan struct{})
	defer close(release)
	_, err := srv.export(httptest.NewRequest(http.MethodGet, "/", nil).Context(), func() ([]byte, error) {
		<-release
		return nil, nil
	})
	if statusFor(err) != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for %v", err)
	}
}

func TestBodyLimit(t *testing.T) {
	_, ts, _ := newTestServer(t, Options{MaxUploadBytes: 64})
	big := strings.Repeat("A", 1024)
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/report", map[string]string{"format": big})
	expectStatus(t, resp, http.StatusRequestEntityTooLarge)
}

func TestDecodeImageData(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("abc"))
	for _, in := range []string{raw, "data:image/png;base64," + raw} {
		got, err := decodeImageData("image", in)
		if err != nil || string(got) != "abc" {
			t.Fatalf("decodeImageData(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := decodeImageData("image", "data:image/png,abc"); err == nil {
		t.Fatal("expected error for non-base64 data URL")
	}
	if got, err := decodeImageData("image", "  "); err != nil || got != nil {
		t.Fatalf("blank input = %v, %v", got, err)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errBusy, http.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", errBusy), http.StatusServiceUnavailable},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
