package downloader

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "imgtools/pkg/errors"
	"imgtools/pkg/logger"
	"imgtools/pkg/metrics"
	"imgtools/pkg/storage"
)

// fixedRand always returns the same draw
type fixedRand int

func (f fixedRand) Intn(n int) int { return int(f) % n }

func imageResponder(contentType, body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(200, body)
	resp.Header.Set("Content-Type", contentType)
	return httpmock.ResponderFromResponse(resp)
}

func newTestDownloader(t *testing.T, transport http.RoundTripper, fs afero.Fs, opts Options) (*Downloader, afero.Fs) {
	t.Helper()
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	manager, err := storage.NewManager(fs, "out")
	require.NoError(t, err)

	opts.Transport = transport
	opts.Storage = manager
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	return New(opts), fs
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		expected    string
	}{
		{"image/jpeg", ".jpg"},
		{"image/pjpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
		{"image/bmp", ".bmp"},
		{"image/x-ms-bmp", ".bmp"},
		{"image/PNG", ".png"},
		{"image/svg+xml", ".jpg"},
		{"text/html; charset=utf-8", ".jpg"},
		{"", ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtensionFor(tt.contentType))
		})
	}
}

func TestDownloadSuccess(t *testing.T) {
	transport := httpmock.NewMockTransport()
	var userAgent string
	transport.RegisterResponder("GET", "https://img.example/a.jpg", func(req *http.Request) (*http.Response, error) {
		userAgent = req.Header.Get("User-Agent")
		return imageResponder("image/png", "png-bytes")(req)
	})
	m := metrics.New()

	d, fs := newTestDownloader(t, transport, nil, Options{UserAgent: "imgtools-test", Metrics: m})
	result := d.Download(context.Background(), DownloadJob{URL: "https://img.example/a.jpg", Position: 1, Total: 5})

	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, ".png", result.Extension, "extension follows Content-Type, not the URL")
	assert.Equal(t, int64(len("png-bytes")), result.Size)
	assert.Regexp(t, regexp.MustCompile(`^out/[1-9][0-9]{5}\.png$`), result.Path)
	assert.Equal(t, "imgtools-test", userAgent)

	content, err := afero.ReadFile(fs, result.Path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DownloadsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(len("png-bytes")), testutil.ToFloat64(m.DownloadBytes))
}

func TestDownloadStemRange(t *testing.T) {
	tests := []struct {
		draw     fixedRand
		expected string
	}{
		{0, "out/100000.jpg"},
		{899999, "out/999999.jpg"},
		{23456, "out/123456.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			transport := httpmock.NewMockTransport()
			transport.RegisterResponder("GET", "https://img.example/a.jpg", imageResponder("image/jpeg", "x"))

			d, _ := newTestDownloader(t, transport, nil, Options{Rand: tt.draw})
			result := d.Download(context.Background(), DownloadJob{URL: "https://img.example/a.jpg"})
			require.NoError(t, result.Error)
			assert.Equal(t, tt.expected, result.Path)
		})
	}
}

func TestDownloadReplacesExistingName(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://img.example/a.jpg", imageResponder("image/jpeg", "new"))

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("out", 0755))
	require.NoError(t, afero.WriteFile(fs, "out/123456.jpg", []byte("old"), 0644))
	tl := logger.NewTestLogger()

	d, _ := newTestDownloader(t, transport, fs, Options{Rand: fixedRand(23456), Logger: tl})
	result := d.Download(context.Background(), DownloadJob{URL: "https://img.example/a.jpg"})

	require.NoError(t, result.Error)
	assert.True(t, result.Replaced)
	assert.True(t, tl.HasMessage("Overwriting existing image with the same name"))

	content, err := afero.ReadFile(fs, "out/123456.jpg")
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))

	fresh, _ := newTestDownloader(t, transport, afero.NewMemMapFs(), Options{Rand: fixedRand(23456)})
	assert.False(t, fresh.Download(context.Background(), DownloadJob{URL: "https://img.example/a.jpg"}).Replaced)
}

func TestDownloadHTTPError(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://img.example/missing.png", httpmock.NewStringResponder(404, "not found"))
	m := metrics.New()

	d, fs := newTestDownloader(t, transport, nil, Options{Metrics: m})
	result := d.Download(context.Background(), DownloadJob{URL: "https://img.example/missing.png"})

	require.Error(t, result.Error)
	assert.False(t, result.Success)
	assert.Equal(t, apperrors.ErrorTypeHTTPStatus, apperrors.TypeOf(result.Error))

	entries, err := afero.ReadDir(fs, "out")
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DownloadsTotal.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("scrape", "http_status")))
}

func TestDownloadTransportError(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://img.example/a.png",
		httpmock.NewErrorResponder(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}))

	d, _ := newTestDownloader(t, transport, nil, Options{})
	result := d.Download(context.Background(), DownloadJob{URL: "https://img.example/a.png"})

	require.Error(t, result.Error)
	assert.Equal(t, apperrors.ErrorTypeTransport, apperrors.TypeOf(result.Error))
}

func TestDownloadUnsupportedScheme(t *testing.T) {
	transport := httpmock.NewMockTransport()

	d, _ := newTestDownloader(t, transport, nil, Options{})
	for _, raw := range []string{"ftp://img.example/a.png", "img.example/a.png", "://broken"} {
		result := d.Download(context.Background(), DownloadJob{URL: raw})
		require.Error(t, result.Error, raw)
		assert.Equal(t, apperrors.ErrorTypeData, apperrors.TypeOf(result.Error), raw)
	}
	assert.Equal(t, 0, transport.GetTotalCallCount())
}

func TestDownloadWriteFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, base.MkdirAll("out", 0755))

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://img.example/a.png", imageResponder("image/png", "x"))

	d, _ := newTestDownloader(t, transport, afero.NewReadOnlyFs(base), Options{})
	result := d.Download(context.Background(), DownloadJob{URL: "https://img.example/a.png"})

	require.Error(t, result.Error)
	assert.Equal(t, apperrors.ErrorTypeFilesystem, apperrors.TypeOf(result.Error))
}

type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, errors.New("connection reset by peer") }

func TestDownloadBrokenBody(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", "https://img.example/a.png", func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 200,
			Header:     http.Header{"Content-Type": []string{"image/png"}},
			Body:       io.NopCloser(io.MultiReader(strings.NewReader("partial"), brokenBody{})),
			Request:    req,
		}, nil
	})

	d, fs := newTestDownloader(t, transport, nil, Options{})
	result := d.Download(context.Background(), DownloadJob{URL: "https://img.example/a.png"})

	require.Error(t, result.Error)
	assert.Equal(t, apperrors.ErrorTypeTransport, apperrors.TypeOf(result.Error))

	entries, err := afero.ReadDir(fs, "out")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	d, _ := newTestDownloader(t, nil, nil, Options{Timeout: 50 * time.Millisecond})
	start := time.Now()
	result := d.Download(context.Background(), DownloadJob{URL: server.URL + "/slow.jpg"})

	require.Error(t, result.Error)
	assert.Equal(t, apperrors.ErrorTypeTimeout, apperrors.TypeOf(result.Error))
	assert.Less(t, time.Since(start), time.Second)
}
