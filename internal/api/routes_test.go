package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-radar/internal/baselayer"
	"github.com/joeblew999/plat-radar/internal/config"
	"github.com/joeblew999/plat-radar/internal/session"
)

type testEnv struct {
	api      humatest.TestAPI
	sessions *session.Registry
	clock    *clockwork.FakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Default()
	clock := clockwork.NewFakeClock()
	sessions := session.NewRegistry(session.Options{Config: cfg, Clock: clock})

	_, api := humatest.New(t)
	huma.AutoRegister(api, NewAPIHandler(&Services{
		Config:   cfg,
		Catalog:  cfg.Catalog(),
		Sessions: sessions,
	}))
	NewInfoHandler("test", cfg, sessions).RegisterRoutes(api)
	return &testEnv{api: api, sessions: sessions, clock: clock}
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func (e *testEnv) create(t *testing.T, url string) SessionBody {
	t.Helper()
	resp := e.api.Post("/api/v1/sessions", map[string]any{"url": url})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decode[SessionBody](t, resp.Body.Bytes())
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	resp := e.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", decode[HealthBody](t, resp.Body.Bytes()).Status)
}

func TestInfo(t *testing.T) {
	e := newTestEnv(t)
	e.create(t, "")

	resp := e.api.Get("/api/v1/info")
	require.Equal(t, http.StatusOK, resp.Code)
	info := decode[InfoBody](t, resp.Body.Bytes())
	assert.Equal(t, "plat-radar", info.Name)
	assert.Equal(t, []string{"radar", "lightning", "satellite"}, info.Capabilities)
	assert.Equal(t, 1, info.Sessions)
}

func TestCatalog(t *testing.T) {
	e := newTestEnv(t)

	resp := e.api.Get("/api/v1/baselayers")
	require.Equal(t, http.StatusOK, resp.Code)
	layers := decode[[]baselayer.Info](t, resp.Body.Bytes())
	require.Len(t, layers, 5)

	resp = e.api.Get("/api/v1/capabilities")
	require.Equal(t, http.StatusOK, resp.Code)
	caps := decode[[]config.Capability](t, resp.Body.Bytes())
	require.Len(t, caps, 3)
	assert.Equal(t, "radar", caps[0].Key)
}

func TestSessionLifecycle(t *testing.T) {
	e := newTestEnv(t)

	created := e.create(t, "http://localhost/?latLonZ=52.52,13.405,9")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "radar", created.Capability)
	assert.InDelta(t, 52.52, created.Lat, 1e-9)
	assert.Equal(t, 9.0, created.Zoom)

	resp := e.api.Get("/api/v1/sessions/" + created.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, created.ID, decode[SessionBody](t, resp.Body.Bytes()).ID)

	resp = e.api.Get("/api/v1/sessions")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[[]SessionBody](t, resp.Body.Bytes()), 1)

	resp = e.api.Delete("/api/v1/sessions/" + created.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = e.api.Get("/api/v1/sessions/" + created.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = e.api.Delete("/api/v1/sessions/" + created.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateSession_UnknownCapability(t *testing.T) {
	e := newTestEnv(t)
	resp := e.api.Post("/api/v1/sessions", map[string]any{"url": "http://localhost/?capability=hail"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, 0, e.sessions.Len())
}

func TestPutTarget(t *testing.T) {
	e := newTestEnv(t)
	s := e.create(t, "")

	resp := e.api.Put("/api/v1/sessions/"+s.ID+"/target", map[string]any{"capability": "lightning"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	body := decode[SessionBody](t, resp.Body.Bytes())
	assert.Equal(t, "lightning", body.Capability)
	assert.Equal(t, "", body.Maps[0].Target)
	assert.Equal(t, "map", body.Maps[1].Target)

	resp = e.api.Put("/api/v1/sessions/"+s.ID+"/target", map[string]any{"capability": "hail"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "unknown capability")
}

func TestPutBaseLayer(t *testing.T) {
	e := newTestEnv(t)
	s := e.create(t, "")

	resp := e.api.Put("/api/v1/sessions/"+s.ID+"/baselayer", map[string]any{"layer": "dark"})
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode[SessionBody](t, resp.Body.Bytes())
	assert.Equal(t, "dark", body.BaseLayer)
	for _, m := range body.Maps {
		assert.Equal(t, "dark", m.BaseLayer)
	}

	resp = e.api.Put("/api/v1/sessions/"+s.ID+"/baselayer", map[string]any{"layer": "vintage"})
	require.Equal(t, http.StatusOK, resp.Code)
	body = decode[SessionBody](t, resp.Body.Bytes())
	assert.Equal(t, baselayer.Topographic, body.Maps[0].BaseLayer)
}

func TestLocation(t *testing.T) {
	e := newTestEnv(t)
	s := e.create(t, "")

	resp := e.api.Post("/api/v1/sessions/"+s.ID+"/location", map[string]any{
		"lat": 52.0, "lon": 13.0, "accuracy": 500, "zoomIn": true,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	body := decode[SessionBody](t, resp.Body.Bytes())
	assert.True(t, body.Animating)
	require.NotNil(t, body.LastFix)
	assert.Equal(t, 52.0, body.LastFix.Lat)
	assert.True(t, body.Maps[0].Position)
	assert.True(t, body.Maps[0].Accuracy)

	e.clock.Advance(600 * time.Millisecond)
	resp = e.api.Get("/api/v1/sessions/" + s.ID)
	body = decode[SessionBody](t, resp.Body.Bytes())
	assert.False(t, body.Animating)
	assert.Equal(t, 11.0, body.Zoom)
	assert.InDelta(t, 52.0, body.Lat, 1e-6)

	resp = e.api.Delete("/api/v1/sessions/" + s.ID + "/location")
	require.Equal(t, http.StatusOK, resp.Code)
	body = decode[SessionBody](t, resp.Body.Bytes())
	assert.False(t, body.Maps[0].Position)
	assert.False(t, body.Maps[0].Accuracy)
}

func TestLocation_Sentinel(t *testing.T) {
	e := newTestEnv(t)
	s := e.create(t, "")

	e.api.Post("/api/v1/sessions/"+s.ID+"/location", map[string]any{"lat": 52.0, "lon": 13.0, "accuracy": 20})
	resp := e.api.Post("/api/v1/sessions/"+s.ID+"/location", map[string]any{"lat": -1, "lon": -1, "accuracy": -1})
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode[SessionBody](t, resp.Body.Bytes())
	assert.Nil(t, body.LastFix)
	assert.False(t, body.Maps[0].Position)
	assert.False(t, body.Maps[0].Accuracy)
}

func TestLocation_Validation(t *testing.T) {
	e := newTestEnv(t)
	s := e.create(t, "")

	resp := e.api.Post("/api/v1/sessions/"+s.ID+"/location", map[string]any{"lat": 95.0, "lon": 13.0, "accuracy": 5})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestPanAndHistory(t *testing.T) {
	e := newTestEnv(t)
	s := e.create(t, "")

	resp := e.api.Post("/api/v1/sessions/"+s.ID+"/pan", map[string]any{"capability": "lightning", "lat": 52.0, "lon": 13.0, "zoom": 9})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resp = e.api.Post("/api/v1/sessions/"+s.ID+"/pan", map[string]any{"capability": "radar", "lat": 48.85, "lon": 2.35, "zoom": 11})
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode[SessionBody](t, resp.Body.Bytes())
	assert.Equal(t, 3, body.History)
	assert.Equal(t, "http://localhost/?latLonZ=48.850000%2C2.350000%2C11.00", body.URL)

	resp = e.api.Post("/api/v1/sessions/" + s.ID + "/history/back")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	hist := decode[HistoryBody](t, resp.Body.Bytes())
	assert.True(t, hist.Moved)
	assert.Equal(t, 3, hist.Session.History)
	assert.InDelta(t, 52.0, hist.Session.Lat, 1e-6)
	assert.Equal(t, 9.0, hist.Session.Zoom)

	resp = e.api.Post("/api/v1/sessions/" + s.ID + "/history/forward")
	hist = decode[HistoryBody](t, resp.Body.Bytes())
	assert.True(t, hist.Moved)
	assert.Equal(t, 11.0, hist.Session.Zoom)

	resp = e.api.Post("/api/v1/sessions/" + s.ID + "/history/forward")
	hist = decode[HistoryBody](t, resp.Body.Bytes())
	assert.False(t, hist.Moved)

	resp = e.api.Post("/api/v1/sessions/" + s.ID + "/history/sideways")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = e.api.Post("/api/v1/sessions/"+s.ID+"/pan", map[string]any{"capability": "hail", "lat": 0, "lon": 0, "zoom": 3})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSessionActions(t *testing.T) {
	e := newTestEnv(t)
	s := e.create(t, "")

	rels := func(b SessionBody) []string {
		var out []string
		for _, a := range b.Actions() {
			out = append(out, a.Rel)
		}
		return out
	}

	assert.Equal(t, []string{"events", "target", "baselayer", "locate", "pan", "delete"}, rels(s))

	e.api.Post("/api/v1/sessions/"+s.ID+"/pan", map[string]any{"capability": "radar", "lat": 52.0, "lon": 13.0, "zoom": 9})
	resp := e.api.Post("/api/v1/sessions/"+s.ID+"/location", map[string]any{"lat": 52.0, "lon": 13.0, "accuracy": 10, "refocus": false})
	body := decode[SessionBody](t, resp.Body.Bytes())
	assert.Contains(t, rels(body), "unlocate")
	assert.Contains(t, rels(body), "prev")
	assert.NotContains(t, rels(body), "next")

	for _, a := range body.Actions() {
		if a.Rel == "unlocate" {
			assert.Equal(t, "/api/v1/sessions/"+s.ID+"/location", a.Href)
			assert.Equal(t, "DELETE", a.Method)
		}
	}
}
