package server

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"artwork-sequencer/internal/sequence"
)

var viewerPage = template.Must(template.New("viewer").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Artwork Sequence: {{.Title}}</title>
<style>
body{margin:0;background:#0f172a;color:#e2e8f0;font-family:system-ui,sans-serif}
header{padding:12px 16px;font-weight:600}
main{display:flex;justify-content:center;padding:0 16px 16px}
img{max-width:100%;height:auto;border:1px solid #1e293b}
footer{padding:0 16px 16px;color:#94a3b8;font-size:14px}
</style>
</head>
<body>
<header>{{.Title}} &middot; {{.Placements}} lamp posts</header>
<main>{{if .HasImage}}<img id="composite" src="{{.CompositeURL}}" alt="Artwork sequence">{{else}}<p>No image was shared with this viewer.</p>{{end}}</main>
<footer id="status">Updates appear automatically.</footer>
<script>
(function(){
  var img = document.getElementById('composite');
  var status = document.getElementById('status');
  var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var ws = new WebSocket(proto + location.host + {{.LiveURL}});
  ws.onmessage = function(ev){
    var msg = JSON.parse(ev.data);
    if (msg.type !== 'update') return;
    if (img) img.src = {{.CompositeURL}} + '?t=' + Date.now();
    status.textContent = 'Updated ' + new Date(msg.updated).toLocaleString();
  };
  ws.onclose = function(){ status.textContent = 'Live updates disconnected.'; };
})();
</script>
</body>
</html>
`))

type viewerPageData struct {
	Title        string
	Placements   int
	HasImage     bool
	CompositeURL string
	LiveURL      string
}

func (s *Server) handleViewerPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v, err := s.store.Viewer(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data := viewerPageData{
		Title:        "Single Way",
		HasImage:     len(v.Image) > 0,
		CompositeURL: "/api/viewers/" + id + "/composite",
		LiveURL:      "/api/viewers/" + id + "/live",
	}
	if v.Record != nil {
		if mode, err := sequence.ParseRoadMode(v.Record.Mode); err == nil {
			data.Title = mode.Title()
		}
		data.Placements = len(v.Record.Placements)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var b strings.Builder
	if err := viewerPage.Execute(&b, data); err != nil {
		slog.Error("render viewer page", "id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(b.String()))
}
