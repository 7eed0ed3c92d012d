package scraper

import (
	"context"

	"imgtools/internal/downloader"
)

// ResultsFetcher retrieves the raw results page for a query
type ResultsFetcher interface {
	FetchResults(ctx context.Context, query string) ([]byte, error)
}

// ImageDownloader fetches a single image URL into the query folder
type ImageDownloader interface {
	Download(ctx context.Context, job downloader.DownloadJob) downloader.DownloadResult
}

// Reporter receives progress callbacks while a scrape runs
type Reporter interface {
	FolderReady(path string, created bool)
	Attempt(next, total int, url string)
	Saved(result downloader.DownloadResult)
	Failed(result downloader.DownloadResult)
}

type nopReporter struct{}

func (nopReporter) FolderReady(string, bool)         {}
func (nopReporter) Attempt(int, int, string)         {}
func (nopReporter) Saved(downloader.DownloadResult)  {}
func (nopReporter) Failed(downloader.DownloadResult) {}
