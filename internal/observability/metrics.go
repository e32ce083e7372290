// Package observability exposes engine-level gauges: sync watermarks and the
// current engine state.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var engineStates = []string{"idle", "loadingInitialData", "synchronizingData", "error"}

var (
	lastSyncGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitsync",
		Subsystem: "engine",
		Name:      "last_sync_timestamp_seconds",
		Help:      "Unix timestamp of the most recent completed sync run.",
	})
	stateGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fitsync",
		Subsystem: "engine",
		Name:      "state",
		Help:      "Current engine state (1 for the active state, 0 otherwise).",
	}, []string{"state"})
	companionGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitsync",
		Subsystem: "engine",
		Name:      "companion_connected",
		Help:      "Whether a companion device connection is open.",
	})
)

func init() {
	prometheus.MustRegister(lastSyncGauge, stateGauge, companionGauge)
}

// RecordLastSync updates the sync watermark gauge.
func RecordLastSync(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastSyncGauge.Set(float64(ts.Unix()))
}

// RecordState marks one engine state active and the rest inactive.
func RecordState(state string) {
	for _, s := range engineStates {
		value := 0.0
		if s == state {
			value = 1.0
		}
		stateGauge.WithLabelValues(s).Set(value)
	}
}

// RecordCompanionConnected updates the companion reachability gauge.
func RecordCompanionConnected(connected bool) {
	if connected {
		companionGauge.Set(1)
	} else {
		companionGauge.Set(0)
	}
}
