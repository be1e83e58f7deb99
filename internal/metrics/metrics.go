// Package metrics exposes the outcome of a cleanup run as Prometheus gauges
// written to a node_exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aatumaykin/webui-janitor/internal/cleanup"
)

// Namespace prefixes every metric name.
const Namespace = "webui_janitor"

type PrometheusMetrics struct {
	registry    *prometheus.Registry
	lastRun     *prometheus.GaugeVec
	lastSuccess *prometheus.GaugeVec
	duration    *prometheus.GaugeVec
	items       *prometheus.GaugeVec
	bytesFreed  *prometheus.GaugeVec
	itemErrors  *prometheus.GaugeVec
}

// InitPrometheusMetrics registers the run metrics in a fresh registry.
func InitPrometheusMetrics(namespace string) *PrometheusMetrics {
	labels := []string{"job", "mode"}

	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		lastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last run finished",
			},
			labels,
		),
		lastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_success",
				Help:      "1 if the last run completed without error, 0 otherwise",
			},
			labels,
		),
		duration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_duration_seconds",
				Help:      "Duration of the last run",
			},
			labels,
		),
		items: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_items",
				Help:      "Items found or deleted by the last run, by kind",
			},
			append(labels, "kind"),
		),
		bytesFreed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_bytes_freed",
				Help:      "Bytes freed (or that would be freed in test mode) by the last run",
			},
			labels,
		),
		itemErrors: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_item_errors",
				Help:      "Per-item failures that did not abort the last run",
			},
			labels,
		),
	}

	m.registry.MustRegister(
		m.lastRun,
		m.lastSuccess,
		m.duration,
		m.items,
		m.bytesFreed,
		m.itemErrors,
	)

	return m
}

// Observe records the outcome of a run finished at now.
func (m *PrometheusMetrics) Observe(stats cleanup.Stats, runErr error, now time.Time) {
	mode := "live"
	if stats.DryRun {
		mode = "test"
	}
	job := stats.Job

	m.lastRun.WithLabelValues(job, mode).Set(float64(now.Unix()))
	m.duration.WithLabelValues(job, mode).Set(stats.Duration.Seconds())
	m.bytesFreed.WithLabelValues(job, mode).Set(float64(stats.BytesFreed))
	m.itemErrors.WithLabelValues(job, mode).Set(float64(stats.Errors))

	success := 1.0
	if runErr != nil {
		success = 0
	}
	m.lastSuccess.WithLabelValues(job, mode).Set(success)

	for kind, n := range map[string]int{
		"chats_deleted":        stats.ChatsDeleted,
		"malformed_chats":      stats.MalformedChats,
		"orphan_file_records":  stats.OrphanFileRecords,
		"file_records_deleted": stats.FileRecordsDeleted,
		"orphan_uploads":       stats.OrphanUploads,
		"files_deleted":        stats.FilesDeleted,
		"files_missing":        stats.FilesMissing,
		"files_kept":           stats.FilesKept,
	} {
		m.items.WithLabelValues(job, mode, kind).Set(float64(n))
	}
}

// TextfilePath returns the file a job's metrics are written to inside dir.
func TextfilePath(dir, job string) string {
	return filepath.Join(dir, Namespace+"_"+job+".prom")
}

// WriteTextfile atomically writes the registry to the job's file in dir.
func (m *PrometheusMetrics) WriteTextfile(dir, job string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create metrics directory: %w", err)
	}

	path := TextfilePath(dir, job)
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return "", fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return path, nil
}
