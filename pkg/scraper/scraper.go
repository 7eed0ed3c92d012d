package scraper

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"imgtools/internal/downloader"
	"imgtools/pkg/errors"
	"imgtools/pkg/extract"
	"imgtools/pkg/logger"
	"imgtools/pkg/metrics"
	"imgtools/pkg/models"
	"imgtools/pkg/ratelimit"
	"imgtools/pkg/storage"
)

const (
	// MaxFolderNameLength caps the sanitized query folder name, in characters
	MaxFolderNameLength = 200

	forbiddenFolderChars = `<>:"/\|?*`
)

// SanitizeFolderName turns a query into a folder name: characters that are
// invalid in file names are removed, spaces become underscores and the
// result is cut to MaxFolderNameLength characters. Applying it twice gives
// the same result as applying it once.
func SanitizeFolderName(query string) string {
	var b strings.Builder
	for _, r := range query {
		if strings.ContainsRune(forbiddenFolderChars, r) {
			continue
		}
		if r == ' ' {
			r = '_'
		}
		b.WriteRune(r)
	}

	name := []rune(b.String())
	if len(name) > MaxFolderNameLength {
		name = name[:MaxFolderNameLength]
	}
	return string(name)
}

// DownloaderFactory builds the downloader that writes into a run's folder
type DownloaderFactory func(store downloader.ImageStorage) ImageDownloader

// Options configures a Scraper
type Options struct {
	OutputRoot string
	Fs         afero.Fs

	Fetcher   ResultsFetcher
	Extractor extract.Extractor
	Limiter   ratelimit.Limiter

	// Download is the template handed to downloader.New for each run.
	// Storage, Logger and Metrics are filled in by the Scraper.
	Download      downloader.Options
	NewDownloader DownloaderFactory

	Reporter Reporter
	Logger   logger.Logger
	Metrics  *metrics.Metrics
}

// Scraper coordinates search, extraction and sequential downloads
type Scraper struct {
	outputRoot    string
	fs            afero.Fs
	fetcher       ResultsFetcher
	extractor     extract.Extractor
	limiter       ratelimit.Limiter
	newDownloader DownloaderFactory
	report        Reporter
	logger        logger.Logger
	metrics       *metrics.Metrics
}

// New creates a Scraper. Fetcher is required; every other option has a default.
func New(opts Options) (*Scraper, error) {
	if opts.Fetcher == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "a results fetcher is required")
	}

	s := &Scraper{
		outputRoot:    opts.OutputRoot,
		fs:            opts.Fs,
		fetcher:       opts.Fetcher,
		extractor:     opts.Extractor,
		limiter:       opts.Limiter,
		newDownloader: opts.NewDownloader,
		report:        opts.Reporter,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
	}

	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.extractor == nil {
		s.extractor = extract.NewScriptExtractor()
	}
	if s.limiter == nil {
		s.limiter = ratelimit.NewFixedDelay(0)
	}
	if s.report == nil {
		s.report = nopReporter{}
	}
	if s.logger == nil {
		s.logger = logger.GetLogger()
	}
	if s.newDownloader == nil {
		tmpl := opts.Download
		tmpl.Logger = s.logger
		tmpl.Metrics = s.metrics
		s.newDownloader = func(store downloader.ImageStorage) ImageDownloader {
			o := tmpl
			o.Storage = store
			return downloader.New(o)
		}
	}

	return s, nil
}

// FolderFor returns the folder a query's images are written to
func (s *Scraper) FolderFor(query string) string {
	return filepath.Join(s.outputRoot, SanitizeFolderName(query))
}

// Run searches for query and downloads up to count images. A failed search
// aborts the run; failed downloads are counted and skipped. The returned
// summary is non-nil whenever the output folder could be prepared, even if
// an error is also returned.
func (s *Scraper) Run(ctx context.Context, query string, count int) (*models.ScrapeSummary, error) {
	if count <= 0 {
		return nil, errors.New(errors.ErrorTypeConfig, fmt.Sprintf("image count must be positive, got %d", count))
	}

	s.limiter.Reset()

	start := time.Now()
	summary := &models.ScrapeSummary{
		Query:     query,
		Folder:    s.FolderFor(query),
		Requested: count,
	}
	defer func() {
		summary.Duration = time.Since(start)
	}()

	log := s.logger.WithFields(map[string]interface{}{
		"query":  query,
		"folder": summary.Folder,
	})
	logger.LogComponentStart(log, "scraper", map[string]interface{}{"count": count})

	store, err := storage.NewManager(s.fs, summary.Folder)
	if err != nil {
		s.metrics.IncError("scrape", string(errors.ErrorTypeFilesystem))
		return nil, errors.Wrap(errors.ErrorTypeFilesystem, "failed to prepare output folder", err)
	}
	s.report.FolderReady(store.GetOutputDir(), store.Created())

	page, err := s.fetcher.FetchResults(ctx, query)
	if err != nil {
		log.WithError(err).Error("Search request failed")
		return summary, err
	}

	urls, err := s.extractor.Extract(page)
	if err != nil {
		s.metrics.IncError("scrape", string(errors.ErrorTypeData))
		return summary, errors.Wrap(errors.ErrorTypeData, "failed to parse results page", err)
	}
	summary.Candidates = len(urls)
	s.metrics.AddCandidates(len(urls))
	log.InfoWithFields("Extracted candidate image URLs", map[string]interface{}{
		"candidates": len(urls),
	})

	dl := s.newDownloader(store)
	for _, u := range urls {
		if summary.Downloaded >= count {
			break
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		job := downloader.DownloadJob{URL: u, Position: summary.Downloaded + 1, Total: count}
		s.report.Attempt(job.Position, job.Total, u)

		result := dl.Download(ctx, job)
		summary.Attempted++
		if result.Error != nil {
			summary.Failed++
			s.report.Failed(result)
			continue
		}

		summary.Downloaded++
		summary.Images = append(summary.Images, models.DownloadedImage{
			URL:         u,
			Path:        result.Path,
			ContentType: result.ContentType,
			Extension:   result.Extension,
			Bytes:       result.Size,
		})
		s.report.Saved(result)

		if err := s.limiter.Wait(ctx); err != nil {
			return summary, err
		}
		s.metrics.IncPause()
	}

	logger.LogComponentStop(log, "scraper", map[string]interface{}{
		"candidates": summary.Candidates,
		"attempted":  summary.Attempted,
		"downloaded": summary.Downloaded,
		"failed":     summary.Failed,
	})
	return summary, nil
}
