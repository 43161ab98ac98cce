// Package metrics provides optional Prometheus metrics for the escrow
// engine: call counts for each public operation and malformed-entry
// counts broken down by kind. Wiring this in is opt-in (see
// escrow.WithMetrics) so the core's synchronous, no-hidden-state contract
// holds unchanged when a caller doesn't need observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "escrow"

// Metrics holds every counter/histogram the engine can update.
type Metrics struct {
	EncryptCalls        prometheus.Counter
	DecryptCalls        prometheus.Counter
	UserEditCalls       prometheus.Counter
	MalformedTotal      *prometheus.CounterVec
	RecordsDecrypted    prometheus.Counter
	PairReconstructions prometheus.Histogram
}

// New creates a Metrics instance registered against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		EncryptCalls: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encrypt_calls_total",
			Help:      "Total number of Encrypt calls.",
		}),
		DecryptCalls: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decrypt_calls_total",
			Help:      "Total number of Decrypt/DecryptFast calls.",
		}),
		UserEditCalls: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_edit_calls_total",
			Help:      "Total number of DecryptUserRecord/UpdateUserRecord calls.",
		}),
		MalformedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_entries_total",
			Help:      "Total malformed entries produced, by kind.",
		}, []string{"kind"}),
		RecordsDecrypted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_decrypted_total",
			Help:      "Total records successfully decrypted.",
		}),
		PairReconstructions: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pair_reconstructions_per_bucket",
			Help:      "Number of successfully reconstructed records per matching-index bucket.",
			Buckets:   []float64{1, 2, 3, 5, 10, 25, 50},
		}),
	}
}
