package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for the map orchestrator.
// A nil *Metrics records nothing.
type Metrics struct {
	LocationUpdates   *prometheus.CounterVec // labels: kind={fix,cleared}
	BaseLayerSwitches *prometheus.CounterVec // labels: layer
	TargetSwitches    *prometheus.CounterVec // labels: capability
	URLPushes         prometheus.Counter
	HistoryRestores   prometheus.Counter
	SessionsActive    prometheus.Gauge
}

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LocationUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radar",
			Name:      "location_updates_total",
			Help:      "Geolocation updates applied, by kind.",
		}, []string{"kind"}),
		BaseLayerSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radar",
			Name:      "base_layer_switches_total",
			Help:      "Base layer switches, by resolved layer.",
		}, []string{"layer"}),
		TargetSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radar",
			Name:      "target_switches_total",
			Help:      "Capability target switches, by capability.",
		}, []string{"capability"}),
		URLPushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radar",
			Name:      "url_pushes_total",
			Help:      "History entries pushed for settled view moves.",
		}),
		HistoryRestores: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radar",
			Name:      "history_restores_total",
			Help:      "Views restored from history navigation.",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "radar",
			Name:      "sessions_active",
			Help:      "Live map sessions.",
		}),
	}

	reg.MustRegister(
		m.LocationUpdates,
		m.BaseLayerSwitches,
		m.TargetSwitches,
		m.URLPushes,
		m.HistoryRestores,
		m.SessionsActive,
	)

	return m
}

// LocationUpdate counts a location update of the given kind.
func (m *Metrics) LocationUpdate(kind string) {
	if m != nil {
		m.LocationUpdates.WithLabelValues(kind).Inc()
	}
}

// BaseLayerSwitch counts a base layer switch.
func (m *Metrics) BaseLayerSwitch(layer string) {
	if m != nil {
		m.BaseLayerSwitches.WithLabelValues(layer).Inc()
	}
}

// TargetSwitch counts a capability target switch.
func (m *Metrics) TargetSwitch(capability string) {
	if m != nil {
		m.TargetSwitches.WithLabelValues(capability).Inc()
	}
}

// URLPush counts a pushed history entry.
func (m *Metrics) URLPush() {
	if m != nil {
		m.URLPushes.Inc()
	}
}

// HistoryRestore counts a view restored from history.
func (m *Metrics) HistoryRestore() {
	if m != nil {
		m.HistoryRestores.Inc()
	}
}

// SessionOpened increments the live session gauge.
func (m *Metrics) SessionOpened() {
	if m != nil {
		m.SessionsActive.Inc()
	}
}

// SessionClosed decrements the live session gauge.
func (m *Metrics) SessionClosed() {
	if m != nil {
		m.SessionsActive.Dec()
	}
}
