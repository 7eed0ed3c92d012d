// Package metrics collects per-run counters for the renamer and scraper on a
// dedicated Prometheus registry. All methods are safe on a nil *Metrics.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for both pipelines.
type Metrics struct {
	Registry *prometheus.Registry

	RenameFilesTotal *prometheus.CounterVec
	DirectoriesTotal prometheus.Counter
	CandidatesTotal  prometheus.Counter
	DownloadsTotal   *prometheus.CounterVec
	DownloadBytes    prometheus.Counter
	RequestDuration  *prometheus.HistogramVec
	ErrorsTotal      *prometheus.CounterVec
	PolitenessPauses prometheus.Counter
}

// New constructs and registers all metrics on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	renameFiles := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgtools_rename_files_total",
			Help: "Files visited by the renamer by outcome.",
		},
		[]string{"outcome"},
	)
	directories := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "imgtools_rename_directories_total",
			Help: "Directories visited by the renamer.",
		},
	)
	candidates := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "imgtools_scrape_candidates_total",
			Help: "Unique candidate image URLs extracted from result pages.",
		},
	)
	downloads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgtools_scrape_downloads_total",
			Help: "Image download attempts by outcome.",
		},
		[]string{"outcome"},
	)
	downloadBytes := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "imgtools_scrape_download_bytes_total",
			Help: "Bytes written for downloaded images.",
		},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imgtools_request_duration_seconds",
			Help:    "HTTP request latency by phase.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"phase"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imgtools_errors_total",
			Help: "Errors by pipeline and type.",
		},
		[]string{"pipeline", "error_type"},
	)
	pauses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "imgtools_scrape_politeness_pauses_total",
			Help: "Politeness pauses taken between downloads.",
		},
	)

	registry.MustRegister(renameFiles, directories, candidates, downloads,
		downloadBytes, requestDuration, errorsTotal, pauses)

	return &Metrics{
		Registry:         registry,
		RenameFilesTotal: renameFiles,
		DirectoriesTotal: directories,
		CandidatesTotal:  candidates,
		DownloadsTotal:   downloads,
		DownloadBytes:    downloadBytes,
		RequestDuration:  requestDuration,
		ErrorsTotal:      errorsTotal,
		PolitenessPauses: pauses,
	}
}

// IncRenameFile counts a renamer file outcome: renamed, skipped or errored.
func (m *Metrics) IncRenameFile(outcome string) {
	if m == nil {
		return
	}
	m.RenameFilesTotal.WithLabelValues(outcome).Inc()
}

// IncDirectory counts a visited directory.
func (m *Metrics) IncDirectory() {
	if m == nil {
		return
	}
	m.DirectoriesTotal.Inc()
}

// AddCandidates counts extracted candidate URLs.
func (m *Metrics) AddCandidates(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CandidatesTotal.Add(float64(n))
}

// IncDownload counts a download attempt by outcome: success or failure.
func (m *Metrics) IncDownload(outcome string) {
	if m == nil {
		return
	}
	m.DownloadsTotal.WithLabelValues(outcome).Inc()
}

// AddBytes records bytes written for an image.
func (m *Metrics) AddBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.DownloadBytes.Add(float64(n))
}

// ObserveDuration records an HTTP request duration for a phase: search or download.
func (m *Metrics) ObserveDuration(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// IncError counts an error for a pipeline and type label.
func (m *Metrics) IncError(pipeline, errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(pipeline, errorType).Inc()
}

// IncPause counts a politeness pause.
func (m *Metrics) IncPause() {
	if m == nil {
		return
	}
	m.PolitenessPauses.Inc()
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
