package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	IndexerFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "indexer_fetch_total", Help: "Indexer fetch attempts"},
		[]string{"collection", "status"},
	)
	IndexerFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "indexer_fetch_duration_seconds", Help: "Indexer fetch latency", Buckets: prometheus.DefBuckets},
		[]string{"collection"},
	)
	IndexerRecordsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "indexer_records_skipped_total", Help: "Indexer records dropped as malformed"},
		[]string{"collection"},
	)
	IngestCycleTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ingest_cycle_total", Help: "Ingestion cycles by outcome"},
		[]string{"status"},
	)
	LedgerRowsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ledger_rows_written_total", Help: "Rows persisted by the ingestion pipeline"},
		[]string{"table"},
	)
)

func init() {
	prometheus.MustRegister(IndexerFetchTotal, IndexerFetchDuration, IndexerRecordsSkipped, IngestCycleTotal, LedgerRowsWritten)
}
