// Package live streams session state to the Datastar front-end over SSE and
// takes UI actions back as Datastar signals.
package live

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jonboulle/clockwork"

	"github.com/joeblew999/plat-radar/internal/baselayer"
	"github.com/joeblew999/plat-radar/internal/config"
	"github.com/joeblew999/plat-radar/internal/humastar"
	"github.com/joeblew999/plat-radar/internal/session"
	"github.com/joeblew999/plat-radar/internal/state"
	"github.com/joeblew999/plat-radar/internal/templates"
)

// FrameInterval paces view animation frames while a client is connected.
const FrameInterval = 50 * time.Millisecond

// Tag marks live operations in the OpenAPI document.
const Tag = "live"

// Handler serves the live SSE routes.
type Handler struct {
	humastar.Handler
	sessions *session.Registry
	cfg      *config.Config
	catalog  *baselayer.Catalog
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewHandler creates a live handler.
func NewHandler(sessions *session.Registry, cfg *config.Config, catalog *baselayer.Catalog, renderer *templates.Renderer, clock clockwork.Clock, logger *slog.Logger) *Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Handler:  humastar.Handler{Renderer: renderer},
		sessions: sessions,
		cfg:      cfg,
		catalog:  catalog,
		clock:    clock,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/sessions/{id}/events", h.Events, huma.OperationTags(Tag))
	huma.Get(api, "/api/v1/sessions/{id}/ui/controls", h.Controls, huma.OperationTags(Tag))
	huma.Post(api, "/api/v1/sessions/{id}/ui/baselayer", h.SelectBaseLayer, huma.OperationTags(Tag))
	huma.Post(api, "/api/v1/sessions/{id}/ui/target", h.SelectCapability, huma.OperationTags(Tag))
}

type SessionInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// Events streams the session: every state change becomes a signal patch,
// URL pushes become a view-pushed event, and #map-status is re-rendered.
func (h *Handler) Events(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	s, ok := h.sessions.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("session not found")
	}

	return h.Stream(func(sse humastar.SSE) {
		ch := s.Subscribe()
		defer s.Unsubscribe(ch)

		h.pushStatus(sse, s, true)

		ticker := h.clock.NewTicker(FrameInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if ev.Key == state.KeyURL {
					sse.DispatchCustomEvent("view-pushed", map[string]any{"url": ev.Value})
				} else {
					sse.Signals(map[string]any{ev.Key: ev.Value})
				}
				h.pushStatus(sse, s, false)
			case <-ticker.Chan():
				s.Tick()
			}
		}
	}), nil
}

// pushStatus patches #map-status, and with all set every shared signal.
func (h *Handler) pushStatus(sse humastar.SSE, s *session.Session, all bool) {
	snap := s.Snapshot()
	if all {
		sse.Signals(map[string]any{
			state.KeyMapBaseLayer: snap.BaseLayer,
			state.KeyLatLon:       snap.LastFix,
			state.KeyZoomLevel:    snap.ZoomLevel,
			state.KeyActiveCap:    snap.Capability,
			state.KeyURL:          snap.URL,
		})
	}
	html, err := h.Renderer.Render("map-status", snap)
	if err != nil {
		h.logger.Error("render map status", "session", s.ID(), "error", err)
		return
	}
	sse.Patch(html, "#map-status")
}
