package live

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-radar/internal/humastar"
	"github.com/joeblew999/plat-radar/internal/layermanager"
	"github.com/joeblew999/plat-radar/internal/session"
)

// NoCapabilities is shown when the configuration lists none.
var NoCapabilities = humastar.Empty{Title: "No capabilities", Message: "Nothing is configured"}

type CapabilityItem struct {
	Key     string
	Title   string
	Current bool
}

type SignalsInput struct {
	SessionInput
	humastar.SignalsInput
}

// Controls renders the capability list and base layer picker.
func (h *Handler) Controls(ctx context.Context, input *SessionInput) (*huma.StreamResponse, error) {
	s, ok := h.sessions.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("session not found")
	}
	return h.Stream(func(sse humastar.SSE) {
		h.patchControls(sse, s)
	}), nil
}

// SelectBaseLayer applies the mapBaseLayer signal.
func (h *Handler) SelectBaseLayer(ctx context.Context, input *SignalsInput) (*huma.StreamResponse, error) {
	s, ok := h.sessions.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("session not found")
	}
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	layer := signals.String("mapBaseLayer")
	if layer == "" {
		return nil, huma.Error400BadRequest("mapBaseLayer is required")
	}

	return h.Stream(func(sse humastar.SSE) {
		s.SetBaseLayer(layer)
		sse.Success("Base layer: " + h.catalog.Resolve(layer))
	}), nil
}

// SelectCapability targets the capability named by the capability signal.
func (h *Handler) SelectCapability(ctx context.Context, input *SignalsInput) (*huma.StreamResponse, error) {
	s, ok := h.sessions.Get(input.ID)
	if !ok {
		return nil, huma.Error404NotFound("session not found")
	}
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	key := signals.String("capability")

	return h.Stream(func(sse humastar.SSE) {
		err := s.Do(func(m *layermanager.Manager) error {
			return m.SetTarget(key, session.DefaultTarget)
		})
		switch {
		case errors.Is(err, layermanager.ErrUnknownCapability):
			sse.Error("Unknown capability: " + key)
			return
		case err != nil:
			h.logger.Error("select capability", "session", s.ID(), "error", err)
			sse.Error("Could not select " + key)
			return
		}
		h.patchControls(sse, s)
	}), nil
}

func (h *Handler) patchControls(sse humastar.SSE, s *session.Session) {
	snap := s.Snapshot()

	items := make([]any, 0, len(h.cfg.Capabilities))
	for _, c := range h.cfg.Capabilities {
		items = append(items, CapabilityItem{Key: c.Key, Title: c.Title, Current: c.Key == snap.Capability})
	}
	sse.Patch(humastar.RenderItems(h.Renderer, "capability-item", items, NoCapabilities), "#capabilities")

	sse.Patch(h.BaseLayerOptions(snap.BaseLayer), "#baselayer")
}

func (h *Handler) baseLayerOptions(selected string) []humastar.Option {
	selected = h.catalog.Resolve(selected)
	var opts []humastar.Option
	for _, info := range h.catalog.Describe() {
		opts = append(opts, humastar.Option{Value: info.Key, Label: info.Title, Selected: info.Key == selected})
	}
	return opts
}

// BaseLayerOptions renders the base layer <option> list for a page.
func (h *Handler) BaseLayerOptions(selected string) string {
	return humastar.RenderOptions(h.Renderer, h.baseLayerOptions(selected))
}
