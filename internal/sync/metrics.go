package sync

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"example.com/fitsync/internal/domain"
)

var (
	runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsync",
		Subsystem: "sync",
		Name:      "runs_total",
		Help:      "Completed sync runs by result.",
	}, []string{"result"})
	runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fitsync",
		Subsystem: "sync",
		Name:      "run_duration_seconds",
		Help:      "Wall time of a full sync run.",
		Buckets:   prometheus.DefBuckets,
	})
	entityMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsync",
		Subsystem: "sync",
		Name:      "entity_mutations_total",
		Help:      "Store mutations committed per entity type and operation.",
	}, []string{"entity", "op"})
	uploadFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitsync",
		Subsystem: "sync",
		Name:      "upload_failures_total",
		Help:      "Per-record upload failures by entity type.",
	}, []string{"entity"})
)

func init() {
	prometheus.MustRegister(runsTotal, runDuration, entityMutations, uploadFailures)
}

func recordRun(result domain.SyncResult, elapsed time.Duration) {
	runsTotal.WithLabelValues(string(result)).Inc()
	runDuration.Observe(elapsed.Seconds())
}

func recordEntityStats(entity domain.EntityType, stats domain.EntityStats) {
	if stats.Created > 0 {
		entityMutations.WithLabelValues(string(entity), "create").Add(float64(stats.Created))
	}
	if stats.Updated > 0 {
		entityMutations.WithLabelValues(string(entity), "update").Add(float64(stats.Updated))
	}
	if stats.Deleted > 0 {
		entityMutations.WithLabelValues(string(entity), "delete").Add(float64(stats.Deleted))
	}
}

func recordUploadFailure(entity domain.EntityType) {
	uploadFailures.WithLabelValues(string(entity)).Inc()
}
