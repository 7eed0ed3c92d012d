package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.IncRenameFile("renamed")
	m.IncRenameFile("renamed")
	m.IncRenameFile("skipped")
	m.IncDirectory()
	m.AddCandidates(3)
	m.IncDownload("success")
	m.IncDownload("failure")
	m.AddBytes(2048)
	m.IncError("scrape", "http_status")
	m.IncPause()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RenameFilesTotal.WithLabelValues("renamed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RenameFilesTotal.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DirectoriesTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CandidatesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DownloadsTotal.WithLabelValues("failure")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(m.DownloadBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("scrape", "http_status")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PolitenessPauses))
}

func TestAddIgnoresNonPositive(t *testing.T) {
	m := New()
	m.AddCandidates(0)
	m.AddBytes(-1)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.CandidatesTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DownloadBytes))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncRenameFile("renamed")
		m.IncDirectory()
		m.AddCandidates(1)
		m.IncDownload("success")
		m.AddBytes(1)
		m.ObserveDuration("search", time.Second)
		m.IncError("rename", "filesystem")
		m.IncPause()
	})
	assert.NoError(t, m.WriteTextfile("/nonexistent/metrics.prom"))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.IncDownload("success")
	m.ObserveDuration("download", 150*time.Millisecond)

	path := filepath.Join(t.TempDir(), "imgtools.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `imgtools_scrape_downloads_total{outcome="success"} 1`)
	assert.Contains(t, string(data), "imgtools_request_duration_seconds_count")
}

func TestWriteTextfileEmptyPath(t *testing.T) {
	assert.NoError(t, New().WriteTextfile(""))
}
