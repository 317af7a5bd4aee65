package server

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/joeblew999/plat-radar/internal/humastar"
	"github.com/joeblew999/plat-radar/internal/api/live"
	"github.com/joeblew999/plat-radar/internal/urlbridge"
)

type viewerData struct {
	Title            string
	SessionID        string
	BaseLayer        string
	BaseLayerOptions template.HTML
	Capabilities     template.HTML
}

// handleViewer starts a session for the requesting page and renders the
// viewer around it.
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(pageURL(r), r.UserAgent())
	if err != nil {
		s.logger.Warn("viewer session", "url", r.URL.String(), "error", err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	snap := sess.Snapshot()

	items := make([]any, 0, len(s.config.App.Capabilities))
	for _, c := range s.config.App.Capabilities {
		items = append(items, live.CapabilityItem{Key: c.Key, Title: c.Title, Current: c.Key == snap.Capability})
	}

	html, err := s.renderer.Render("viewer", viewerData{
		Title:            urlbridge.TitlePrefix,
		SessionID:        sess.ID(),
		BaseLayer:        snap.BaseLayer,
		BaseLayerOptions: template.HTML(s.live.BaseLayerOptions(snap.BaseLayer)),
		Capabilities:     template.HTML(humastar.RenderItems(s.renderer, "capability-item", items, live.NoCapabilities)),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// pageURL rebuilds the absolute URL the browser requested.
func pageURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = strings.ToLower(fwd)
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	for _, link := range s.links.For(humastar.EntryPoint) {
		w.Header().Add("Link", link)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "plat-radar",
		"status":  "running",
	})
}

func handleTiles(tilesDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		http.FileServer(http.Dir(tilesDir)).ServeHTTP(w, r)
	})
}
