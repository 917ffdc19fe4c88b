// Package metrics exposes Prometheus instrumentation for indexing and
// matching, grounded on the teacher's internal/metrics package (same
// promauto-backed singleton pattern, applied to this engine's own
// counters instead of request/upload counters).
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every counter/histogram/gauge the engine updates.
type Metrics struct {
	LFsGenerated      prometheus.Counter
	FingerprintsIndexed prometheus.Counter
	IndexFlushes      prometheus.Counter
	IndexFlushSeconds prometheus.Histogram
	CacheBytesUsed    prometheus.Gauge

	IdentifySeconds   prometheus.Histogram
	IdentifyOutcomes  *prometheus.CounterVec // label "outcome": identified|sounds_like|unidentified
	CandidatesScored  prometheus.Histogram

	PostingBlocksDecoded prometheus.Counter
	PostingDecodeErrors  prometheus.Counter
}

var (
	instance *Metrics
	once     sync.Once
)

// Manager returns the process-wide Metrics singleton, registering every
// collector with the default registry on first use — mirrors the
// teacher's Manager/sync.Once pattern in internal/metrics/manager.go.
func Manager() *Metrics {
	once.Do(func() {
		instance = newMetrics()
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		LFsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "echoid",
			Subsystem: "fingerprint",
			Name:      "lfs_generated_total",
			Help:      "Local fingerprints generated by the Fingerprinter.",
		}),
		FingerprintsIndexed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "echoid",
			Subsystem: "index",
			Name:      "fingerprints_indexed_total",
			Help:      "Recordings successfully indexed.",
		}),
		IndexFlushes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "echoid",
			Subsystem: "index",
			Name:      "cache_flushes_total",
			Help:      "Indexer cache flushes triggered by the cache-limit backpressure rule.",
		}),
		IndexFlushSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "echoid",
			Subsystem: "index",
			Name:      "cache_flush_seconds",
			Help:      "Time spent flushing the indexer's in-memory cache to the store.",
			Buckets:   prometheus.DefBuckets,
		}),
		CacheBytesUsed: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "echoid",
			Subsystem: "index",
			Name:      "cache_bytes_used",
			Help:      "Current size of the indexer's in-memory cache, in bytes.",
		}),
		IdentifySeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "echoid",
			Subsystem: "match",
			Name:      "identify_seconds",
			Help:      "Wall-clock time spent per identify session.",
			Buckets:   prometheus.DefBuckets,
		}),
		IdentifyOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "echoid",
			Subsystem: "match",
			Name:      "identify_outcomes_total",
			Help:      "Identify outcomes by classification result.",
		}, []string{"outcome"}),
		CandidatesScored: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "echoid",
			Subsystem: "match",
			Name:      "candidates_scored",
			Help:      "Number of candidate FIDs surviving the time-histogram pass, per identify session.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		PostingBlocksDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "echoid",
			Subsystem: "codec",
			Name:      "posting_blocks_decoded_total",
			Help:      "Postings blocks successfully decoded.",
		}),
		PostingDecodeErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "echoid",
			Subsystem: "codec",
			Name:      "posting_decode_errors_total",
			Help:      "Postings blocks that failed to decode (surfaced as InvalidIndexData).",
		}),
	}
}
