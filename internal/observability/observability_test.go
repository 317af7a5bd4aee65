package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json")
	logger.Debug("hidden")
	logger.Info("switched", "layer", "dark")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "switched", line["msg"])
	assert.Equal(t, "dark", line["layer"])
}

func TestNewLogger_TextDebug(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "DEBUG", "text").Debug("visible")
	assert.True(t, strings.Contains(buf.String(), "msg=visible"))
}

func TestMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.LocationUpdate("fix")
	m.LocationUpdate("fix")
	m.BaseLayerSwitch("dark")
	m.TargetSwitch("radar")
	m.URLPush()
	m.HistoryRestore()
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LocationUpdates.WithLabelValues("fix")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BaseLayerSwitches.WithLabelValues("dark")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TargetSwitches.WithLabelValues("radar")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.URLPushes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HistoryRestores))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.LocationUpdate("fix")
		m.BaseLayerSwitch("dark")
		m.URLPush()
		m.SessionClosed()
	})
}
