package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Resolutions counts document resolutions by backend and outcome
	// (ok, not_found, read_error, empty_content).
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pageserver_resolutions_total",
		Help: "Document resolutions by backend and outcome",
	}, []string{"backend", "outcome"})

	// ResolveDuration observes how long a single resolution took.
	ResolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pageserver_resolve_duration_seconds",
		Help:    "Time spent resolving a document",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"backend"})

	// RegistryDocuments is the size of the last registry listing.
	RegistryDocuments = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pageserver_registry_documents",
		Help: "Documents in the most recent registry listing",
	}, []string{"mode"})

	// Predictions counts classifier outcomes per model.
	Predictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pageserver_predictions_total",
		Help: "Classifier predictions by model and result",
	}, []string{"model", "result"})

	// AssetChanges counts debounced change notifications from the asset watcher.
	AssetChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pageserver_asset_changes_total",
		Help: "Debounced change notifications from the asset directory watcher",
	})
)
