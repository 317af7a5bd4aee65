package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-radar/internal/observability"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, err := New(Config{
		Host:   "localhost",
		Port:   "0",
		Logger: observability.NewLogger(io.Discard, "error", "text"),
		Clock:  clockwork.NewFakeClock(),
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := do(t, http.MethodPost, ts.URL+"/api/v1/sessions", `{"url":"http://localhost/"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.ID)
	return body.ID
}

func TestHealthLinks(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	links := strings.Join(resp.Header.Values("Link"), ",")
	assert.Contains(t, links, `</api/v1/sessions>; rel="sessions"`)
	assert.Contains(t, links, `</openapi.json>; rel="service-desc"`)
	assert.NotContains(t, links, "/events")
}

func TestRoot(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Values("Link"))

	resp = do(t, http.MethodGet, ts.URL+"/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionLinks(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	resp := do(t, http.MethodGet, ts.URL+"/api/v1/sessions/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	links := strings.Join(resp.Header.Values("Link"), ",")
	assert.Contains(t, links, `</api/v1/sessions/`+id+`>; rel="self"`)
	assert.Contains(t, links, `</api/v1/sessions>; rel="collection"`)
	assert.Contains(t, links, `</api/v1/sessions/`+id+`/events>; rel="events"; method="GET"`)
	assert.NotContains(t, links, `rel="prev"`)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	createSession(t, ts)

	resp := do(t, http.MethodGet, ts.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "radar_sessions_active 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestViewer(t *testing.T) {
	ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/viewer?latLonZ=52.52,13.405,9&mapBaseLayer=dark", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	html := string(b)

	assert.Contains(t, html, `id="map-status"`)
	assert.Contains(t, html, `value="dark" selected`)
	assert.Contains(t, html, "/ui/controls")
	assert.Contains(t, html, "Radar")

	resp = do(t, http.MethodGet, ts.URL+"/api/v1/sessions", "")
	var sessions []struct {
		ID   string  `json:"id"`
		Zoom float64 `json:"zoom"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, 9.0, sessions[0].Zoom)
	assert.Contains(t, html, sessions[0].ID)
}

func TestViewer_UnknownCapability(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/viewer?capability=hail", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOpenAPI(t *testing.T) {
	srv, err := New(Config{Logger: observability.NewLogger(io.Discard, "error", "text")})
	require.NoError(t, err)
	oapi := srv.OpenAPI()
	assert.Equal(t, "plat-radar API", oapi.Info.Title)
	assert.Contains(t, oapi.Paths, "/api/v1/sessions/{id}/events")
	assert.Contains(t, oapi.Paths, "/api/v1/sessions/{id}/history/{direction}")
}

// readUntil scans SSE lines until one contains want.
func readUntil(t *testing.T, lines <-chan string, want string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "stream ended before %q", want)
			if strings.Contains(line, want) {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func openStream(t *testing.T, url string) <-chan string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		defer resp.Body.Close()
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	return lines
}

func TestEventsStream(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	lines := openStream(t, ts.URL+"/api/v1/sessions/"+id+"/events")
	readUntil(t, lines, `"mapBaseLayer":"light"`)
	readUntil(t, lines, "#map-status")

	resp := do(t, http.MethodPut, ts.URL+"/api/v1/sessions/"+id+"/baselayer", `{"layer":"dark"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	readUntil(t, lines, `"mapBaseLayer":"dark"`)

	resp = do(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+id+"/pan", `{"capability":"radar","lat":52,"lon":13,"zoom":9}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	readUntil(t, lines, "view-pushed")
}

func TestEventsStream_UnknownSession(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/api/v1/sessions/missing/events", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUISelectCapability(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	resp := do(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+id+"/ui/target", `{"capability":"lightning"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "#capabilities")

	resp = do(t, http.MethodGet, ts.URL+"/api/v1/sessions/"+id, "")
	var snap struct {
		Capability string `json:"capability"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, "lightning", snap.Capability)

	resp = do(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+id+"/ui/target", `{"capability":"hail"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Unknown capability: hail")
}

func TestUISelectBaseLayer(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	resp := do(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+id+"/ui/baselayer", `{"mapBaseLayer":"satellite"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Base layer: satellite")

	resp = do(t, http.MethodPost, ts.URL+"/api/v1/sessions/"+id+"/ui/baselayer", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTiles(t *testing.T) {
	dir := t.TempDir()
	srv, err := New(Config{TilesDir: dir, Logger: observability.NewLogger(io.Discard, "error", "text")})
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp := do(t, http.MethodOptions, ts.URL+"/tiles/radar/1/0/0.png", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
