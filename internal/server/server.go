package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joeblew999/plat-radar/internal/api"
	"github.com/joeblew999/plat-radar/internal/api/live"
	"github.com/joeblew999/plat-radar/internal/baselayer"
	"github.com/joeblew999/plat-radar/internal/config"
	"github.com/joeblew999/plat-radar/internal/humastar"
	"github.com/joeblew999/plat-radar/internal/observability"
	"github.com/joeblew999/plat-radar/internal/session"
	"github.com/joeblew999/plat-radar/internal/templates"
)

// Version is reported by /health and /api/v1/info.
const Version = "1.0.0"

// Config holds the server configuration.
type Config struct {
	Host     string
	Port     string
	App      *config.Config
	TilesDir string // serves /tiles/ when set
	WebDir   string // loads fragments from disk instead of the built-in ones

	Logger *slog.Logger
	Clock  clockwork.Clock
}

// Server is the radar HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	links    *humastar.Links
	registry *prometheus.Registry
	sessions *session.Registry
	renderer *templates.Renderer
	live     *live.Handler
	catalog  *baselayer.Catalog
	logger   *slog.Logger
}

// New creates a radar server.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		cfg.App = config.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	mux := http.NewServeMux()

	humaConfig := huma.DefaultConfig("plat-radar API", Version)
	humaConfig.Info.Description = "Weather radar map sessions: capabilities sharing one view, geolocation, base layers and URL history."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}

	links := humastar.NewLinks()
	humaConfig.Transformers = append(humaConfig.Transformers, links.Transformer())

	humaAPI := humago.New(mux, humaConfig)

	renderer, err := newRenderer(cfg.WebDir)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	catalog := cfg.App.Catalog()
	sessions := session.NewRegistry(session.Options{
		Config:  cfg.App,
		Clock:   cfg.Clock,
		Metrics: metrics,
		Logger:  cfg.Logger,
	})

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		links:    links,
		registry: reg,
		sessions: sessions,
		renderer: renderer,
		catalog:  catalog,
		logger:   cfg.Logger,
		live:     live.NewHandler(sessions, cfg.App, catalog, renderer, cfg.Clock, cfg.Logger),
	}
	s.routes()
	return s, nil
}

func newRenderer(webDir string) (*templates.Renderer, error) {
	if webDir != "" {
		return templates.NewFromDir(webDir)
	}
	return templates.New()
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the API description.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Sessions returns the session registry.
func (s *Server) Sessions() *session.Registry {
	return s.sessions
}

func (s *Server) routes() {
	huma.AutoRegister(s.humaAPI, api.NewAPIHandler(&api.Services{
		Config:   s.config.App,
		Catalog:  s.catalog,
		Sessions: s.sessions,
	}))
	api.NewInfoHandler(Version, s.config.App, s.sessions).RegisterRoutes(s.humaAPI)
	s.live.RegisterRoutes(s.humaAPI)

	s.links.Build(s.humaAPI, live.Tag)

	s.mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	if s.config.TilesDir != "" {
		s.mux.Handle("/tiles/", http.StripPrefix("/tiles/", handleTiles(s.config.TilesDir)))
	}

	s.mux.HandleFunc("/viewer", s.handleViewer)
	s.mux.HandleFunc("/", s.handleRoot)
}
