// Package session keeps one map orchestrator per browser session.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/joeblew999/plat-radar/internal/config"
	"github.com/joeblew999/plat-radar/internal/geolocation"
	"github.com/joeblew999/plat-radar/internal/history"
	"github.com/joeblew999/plat-radar/internal/layermanager"
	"github.com/joeblew999/plat-radar/internal/mapview"
	"github.com/joeblew999/plat-radar/internal/observability"
	"github.com/joeblew999/plat-radar/internal/settings"
	"github.com/joeblew999/plat-radar/internal/state"
)

// DefaultTarget is the surface every session's current map is attached to.
const DefaultTarget mapview.Target = "map"

// DefaultURL is the page URL of sessions created without one.
const DefaultURL = "http://localhost/"

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Options configures a Registry.
type Options struct {
	Config  *config.Config
	Clock   clockwork.Clock
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Registry holds live sessions.
type Registry struct {
	cfg     *config.Config
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger

	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		cfg:      opts.Config,
		clock:    opts.Clock,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		sessions: make(map[string]*Session),
	}
	if r.cfg == nil {
		r.cfg = config.Default()
	}
	if r.clock == nil {
		r.clock = clockwork.NewRealClock()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Create starts a session at pageURL ("" for DefaultURL) for a client with
// the given User-Agent. The default capability is targeted right away.
func (r *Registry) Create(pageURL, userAgent string) (*Session, error) {
	if pageURL == "" {
		pageURL = DefaultURL
	}
	caps, err := r.cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("build capabilities: %w", err)
	}

	id := uuid.NewString()
	logger := r.logger.With("session", id)

	h := history.NewMemory(pageURL)
	st := settings.New(r.cfg.Defaults(), h.Location)
	store := state.NewStore()
	store.MapBaseLayer.Set(st.Get(settings.KeyMapBaseLayer))

	m, err := layermanager.New(layermanager.Options{
		Capabilities: caps,
		Settings:     st,
		Store:        store,
		History:      h,
		Catalog:      r.cfg.Catalog(),
		Device:       r.cfg.Device(userAgent),
		Clock:        r.clock,
		Metrics:      r.metrics,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:       id,
		created:  r.clock.Now(),
		manager:  m,
		history:  h,
		settings: st,
		store:    store,
	}
	s.stopPush = h.OnPush(func(e history.Entry) {
		store.Bus().Publish(state.Event{Key: state.KeyURL, Value: e.URL})
	})

	m.Activate()
	if err := m.SetDefaultTarget(DefaultTarget); err != nil {
		s.close()
		return nil, err
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	r.metrics.SessionOpened()
	logger.Info("session created", "url", pageURL, "app", r.cfg.Device(userAgent).IsApp())
	return s, nil
}

// Get returns a session by id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	return s, ok
}

// Delete ends a session.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	s.close()
	r.metrics.SessionClosed()
	r.logger.Info("session deleted", "session", id)
	return nil
}

// List returns live sessions, oldest first.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].created.Equal(out[j].created) {
			return out[i].id < out[j].id
		}
		return out[i].created.Before(out[j].created)
	})
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Session is one browser session's orchestrator and its collaborators. All
// access to the orchestrator goes through the session's lock.
type Session struct {
	id       string
	created  time.Time
	manager  *layermanager.Manager
	history  *history.Memory
	settings *settings.Settings
	store    *state.Store
	stopPush func()

	mu sync.Mutex
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Created returns the creation time.
func (s *Session) Created() time.Time { return s.created }

// Do runs fn with exclusive access to the orchestrator.
func (s *Session) Do(fn func(m *layermanager.Manager) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.manager)
}

// SetBaseLayer selects a base layer for every map of the session.
func (s *Session) SetBaseLayer(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.MapBaseLayer.Set(key)
}

// Locate shows a location fix on every map of the session.
func (s *Session) Locate(lat, lon, accuracy float64, opts ...layermanager.LocationOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manager.UpdateLocation(lat, lon, accuracy, opts...)
}

// Unlocate hides the location overlay.
func (s *Session) Unlocate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manager.ResetLocation()
}

// Navigate moves through the session history by delta entries. It reports
// false when there is no entry in that direction.
func (s *Session) Navigate(delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Go(delta)
}

// Pan moves the view as if the user dragged the map of capability key.
func (s *Session) Pan(key string, lat, lon, zoom float64) error {
	return s.Do(func(m *layermanager.Manager) error {
		mp, ok := m.Map(key)
		if !ok {
			return fmt.Errorf("%w: %q", layermanager.ErrUnknownCapability, key)
		}
		mp.MoveTo(geolocation.Project(lon, lat), zoom)
		return nil
	})
}

// Tick advances a running view animation and reports whether more frames
// are needed.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager.RenderFrame()
}

// Subscribe returns a channel of the session's state changes.
func (s *Session) Subscribe() chan state.Event {
	return s.store.Bus().Subscribe()
}

// Unsubscribe stops a Subscribe channel.
func (s *Session) Unsubscribe(ch chan state.Event) {
	s.store.Bus().Unsubscribe(ch)
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manager.Deactivate()
	s.stopPush()
}
