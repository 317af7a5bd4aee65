package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-radar/internal/config"
	"github.com/joeblew999/plat-radar/internal/session"
)

type InfoHandler struct {
	version  string
	cfg      *config.Config
	sessions *session.Registry
}

func NewInfoHandler(version string, cfg *config.Config, sessions *session.Registry) *InfoHandler {
	return &InfoHandler{version: version, cfg: cfg, sessions: sessions}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name         string   `json:"name" doc:"Service name"`
	Version      string   `json:"version" doc:"Service version"`
	Capabilities []string `json:"capabilities" doc:"Configured capability keys"`
	Sessions     int      `json:"sessions" doc:"Live sessions"`
	Features     []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	keys := make([]string, 0, len(h.cfg.Capabilities))
	for _, c := range h.cfg.Capabilities {
		keys = append(keys, c.Key)
	}
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:         "plat-radar",
		Version:      h.version,
		Capabilities: keys,
		Sessions:     h.sessions.Len(),
		Features:     []string{"shared-view", "geolocation", "url-history", "datastar-sse"},
	}}, nil
}
