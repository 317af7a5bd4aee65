// Package urlbridge mirrors the primary map's view into the page URL and
// restores it on back/forward navigation.
package urlbridge

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/joeblew999/plat-radar/internal/geolocation"
	"github.com/joeblew999/plat-radar/internal/history"
	"github.com/joeblew999/plat-radar/internal/mapview"
	"github.com/joeblew999/plat-radar/internal/observability"
)

const (
	// Param is the query parameter carrying the view.
	Param = "latLonZ"
	// TitlePrefix starts the title of every pushed entry.
	TitlePrefix = "meteocool 2.0"
)

// Notifier asks the settings layer to re-read a key.
type Notifier interface {
	CB(key string)
}

// Bridge keeps the URL in step with a map's view. It is driven from a
// single goroutine.
type Bridge struct {
	primary  *mapview.Map
	history  history.History
	settings Notifier
	logger   *slog.Logger
	metrics  *observability.Metrics

	// restoring is set while a history restore moves the view so that the
	// resulting moveend does not push a new entry.
	restoring bool
}

// New creates a bridge for the primary map. Nothing is wired until Start.
func New(primary *mapview.Map, h history.History, settings Notifier, logger *slog.Logger, metrics *observability.Metrics) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		primary:  primary,
		history:  h,
		settings: settings,
		logger:   logger,
		metrics:  metrics,
	}
}

// Start listens for settled moves and history navigation.
func (b *Bridge) Start() (stop func()) {
	stopMove := b.primary.OnMoveEnd(b.moveEnd)
	stopNav := b.history.OnNavigate(b.navigate)
	return func() {
		stopMove()
		stopNav()
	}
}

// Format renders a view as the latLonZ parameter value.
func Format(lat, lon, zoom float64) string {
	return fmt.Sprintf("%.6f,%.6f,%.2f", lat, lon, zoom)
}

func (b *Bridge) moveEnd() {
	if b.restoring {
		b.restoring = false
		return
	}

	view := b.primary.View()
	lon, lat := geolocation.Unproject(view.Center())

	current := b.history.Location()
	u, err := url.Parse(current)
	if err != nil {
		b.logger.Warn("cannot parse location", "url", current, "error", err)
		return
	}
	q := u.Query()
	q.Set(Param, Format(lat, lon, view.Zoom()))
	u.RawQuery = q.Encode()

	next := u.String()
	b.history.PushState(&history.State{Location: next}, TitlePrefix+" "+current, next)
	b.metrics.URLPush()
	b.logger.Debug("view pushed", "url", next)
}

func (b *Bridge) navigate(state *history.State) {
	if state == nil {
		return
	}
	u, err := url.Parse(state.Location)
	if err != nil || !u.Query().Has(Param) {
		return
	}

	b.restoring = true
	b.settings.CB(Param)
	// The guard never outlives this turn, even if nothing moved.
	b.restoring = false

	b.metrics.HistoryRestore()
	b.logger.Debug("view restored", "url", state.Location)
}
