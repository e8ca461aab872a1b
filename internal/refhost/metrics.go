package refhost

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ListsCached = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mnlistdiff",
		Name:      "lists_cached",
		Help:      "Number of masternode lists currently persisted.",
	})

	SnapshotsCached = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mnlistdiff",
		Name:      "snapshots_cached",
		Help:      "Number of LLMQ snapshots currently persisted.",
	})

	DiffsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mnlistdiff",
		Name:      "diffs_processed_total",
		Help:      "MNLISTDIFF messages processed by result code.",
	}, []string{"result"})

	QRInfosProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mnlistdiff",
		Name:      "qrinfos_processed_total",
		Help:      "QRINFO messages processed by result code.",
	}, []string{"result"})

	QuorumsValidated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mnlistdiff",
		Name:      "quorums_validated_total",
		Help:      "Quorum commitments checked by outcome.",
	}, []string{"outcome"})

	PendingDependencyRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mnlistdiff",
		Name:      "pending_dependency_retries_total",
		Help:      "Rotation member computations deferred for a missing base list.",
	})
)

func init() {
	prometheus.MustRegister(
		ListsCached,
		SnapshotsCached,
		DiffsProcessed,
		QRInfosProcessed,
		QuorumsValidated,
		PendingDependencyRetries,
	)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
