package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the contacts module. Import and merge
// runs are the expensive paths; counters track per-contact outcomes.
type Metrics struct {
	ContactsImported  prometheus.Counter
	ContactsRejected  prometheus.Counter
	ContactsMerged    prometheus.Counter
	DecryptFailures   prometheus.Counter
	SignatureFailures prometheus.Counter
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	ImportDuration    prometheus.Histogram
	ExportDuration    prometheus.Histogram
	MergeDuration     prometheus.Histogram
}

// New creates a Metrics instance with all contacts module metrics registered.
func New() *Metrics {
	return &Metrics{
		ContactsImported: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contactvault_contacts_imported_total",
			Help: "Total number of contacts accepted during imports",
		}),
		ContactsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contactvault_contacts_rejected_total",
			Help: "Total number of contacts rejected during imports",
		}),
		ContactsMerged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contactvault_contacts_merged_total",
			Help: "Total number of contacts folded into merge targets",
		}),
		DecryptFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contactvault_decrypt_failures_total",
			Help: "Total number of card decryption failures",
		}),
		SignatureFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contactvault_signature_failures_total",
			Help: "Total number of card signature verification failures",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contactvault_contact_cache_hits_total",
			Help: "Total number of decoded contact cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contactvault_contact_cache_misses_total",
			Help: "Total number of decoded contact cache misses",
		}),
		ImportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "contactvault_import_duration_seconds",
			Help:    "Duration of import runs end to end",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		ExportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "contactvault_export_duration_seconds",
			Help:    "Duration of full address book exports",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		MergeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "contactvault_merge_duration_seconds",
			Help:    "Duration of merge runs end to end",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// ObserveImport records the duration of an import run.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveImport(start time.Time) {
	m.ImportDuration.Observe(time.Since(start).Seconds())
}

// ObserveExport records the duration of an export run.
func (m *Metrics) ObserveExport(start time.Time) {
	m.ExportDuration.Observe(time.Since(start).Seconds())
}

// ObserveMerge records the duration of a merge run.
func (m *Metrics) ObserveMerge(start time.Time) {
	m.MergeDuration.Observe(time.Since(start).Seconds())
}
