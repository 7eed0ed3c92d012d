package downloader

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"imgtools/pkg/errors"
	"imgtools/pkg/logger"
	"imgtools/pkg/metrics"
)

const (
	// DefaultExtension is used when the Content-Type names no known image format
	DefaultExtension = ".jpg"

	minStem = 100000
	maxStem = 999999
)

// DownloadJob represents a single download task
type DownloadJob struct {
	URL string
	// Position is the 1-based slot this image would fill and Total the
	// number of images requested; both are used for progress output only.
	Position int
	Total    int
}

// DownloadResult represents the result of a download job
type DownloadResult struct {
	Job         DownloadJob
	Success     bool
	Error       error
	Duration    time.Duration
	Size        int64
	Path        string
	ContentType string
	Extension   string
	// Replaced is set when the random name was already taken in the
	// folder and the earlier file was overwritten.
	Replaced bool
}

// ImageStorage persists a downloaded body under a file name
type ImageStorage interface {
	SaveImage(r io.Reader, name string) (string, int64, error)
	Exists(name string) bool
}

// RandSource supplies uniform integers in [0, n)
type RandSource interface {
	Intn(n int) int
}

// Options configures a Downloader
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Transport http.RoundTripper
	Storage   ImageStorage
	Rand      RandSource
	Logger    logger.Logger
	Metrics   *metrics.Metrics
}

// Downloader fetches images one at a time and hands the body to storage
type Downloader struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	storage   ImageStorage
	rand      RandSource
	logger    logger.Logger
	metrics   *metrics.Metrics
}

// New creates a Downloader
func New(opts Options) *Downloader {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Downloader{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		storage:   opts.Storage,
		rand:      rnd,
		logger:    log,
		metrics:   opts.Metrics,
	}
}

// Download streams job.URL into storage as <random stem><extension>. It
// never retries; every failure is reported through the result's Error.
func (d *Downloader) Download(ctx context.Context, job DownloadJob) DownloadResult {
	start := time.Now()
	result := d.download(ctx, job)
	result.Duration = time.Since(start)

	d.metrics.ObserveDuration("download", result.Duration)
	logger.LogDownload(d.logger, job.URL, result.Path, result.Size, result.Error)

	if result.Error != nil {
		d.metrics.IncDownload("failure")
		d.metrics.IncError("scrape", errors.Label(result.Error))
		return result
	}

	d.metrics.IncDownload("success")
	d.metrics.AddBytes(result.Size)
	return result
}

func (d *Downloader) download(ctx context.Context, job DownloadJob) DownloadResult {
	result := DownloadResult{Job: job}

	parsed, err := url.Parse(job.URL)
	if err != nil {
		result.Error = errors.Wrap(errors.ErrorTypeData, "invalid image URL", err)
		return result
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		result.Error = errors.New(errors.ErrorTypeData, fmt.Sprintf("unsupported URL scheme %q", parsed.Scheme))
		return result
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.URL, nil)
	if err != nil {
		result.Error = errors.Wrap(errors.ErrorTypeData, "failed to create request", err)
		return result
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		result.Error = errors.Classify(err, 0)
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Error = errors.Status(resp.StatusCode, job.URL)
		return result
	}

	result.ContentType = resp.Header.Get("Content-Type")
	result.Extension = ExtensionFor(result.ContentType)

	name := fmt.Sprintf("%d%s", minStem+d.rand.Intn(maxStem-minStem+1), result.Extension)
	if d.storage.Exists(name) {
		result.Replaced = true
		d.logger.WithFields(map[string]interface{}{
			"url":  job.URL,
			"name": name,
		}).Warn("Overwriting existing image with the same name")
	}

	body := &bodyReader{r: resp.Body}
	path, n, err := d.storage.SaveImage(body, name)
	result.Size = n
	if err != nil {
		if body.err != nil {
			result.Error = errors.Classify(body.err, 0)
		} else {
			result.Error = errors.Wrap(errors.ErrorTypeFilesystem, "failed to write image", err)
		}
		return result
	}

	result.Path = path
	result.Success = true
	return result
}

// bodyReader remembers the first read error so a broken stream can be told
// apart from a failed write.
type bodyReader struct {
	r   io.Reader
	err error
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF && b.err == nil {
		b.err = err
	}
	return n, err
}

// ExtensionFor maps a Content-Type to a file extension by substring, in the
// order jpeg, png, gif, webp, bmp. Anything else falls back to .jpg.
func ExtensionFor(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "jpeg"):
		return ".jpg"
	case strings.Contains(ct, "png"):
		return ".png"
	case strings.Contains(ct, "gif"):
		return ".gif"
	case strings.Contains(ct, "webp"):
		return ".webp"
	case strings.Contains(ct, "bmp"):
		return ".bmp"
	default:
		return DefaultExtension
	}
}
