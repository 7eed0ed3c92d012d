package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"imgtools/internal/downloader"
	"imgtools/pkg/errors"
	"imgtools/pkg/prompt"
	"imgtools/pkg/ratelimit"
	"imgtools/pkg/scraper"
	"imgtools/pkg/search"
	"imgtools/pkg/ui"
)

var (
	// Scrape command flags
	scrapeCount    int
	scrapeOutput   string
	scrapeEndpoint string
	scrapeDelay    time.Duration
	scrapeYes      bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape [keywords...]",
	Short: "Download images found on a search results page",
	Long: `Fetch the image search results page for the given keywords, collect the
image URLs embedded in its scripts and download them one by one until the
requested number of images has been saved or the URLs run out.

Images are written to <output>/<keywords>/ with random six digit names and
an extension chosen from the response Content-Type.

Scraping a search engine's pages may break its terms of service and stops
working whenever the page layout changes. Use it for small personal
collections only.`,
	Example: `  # Prompt for keywords and count
  imgtools scrape

  # Download 10 images of red pandas without confirmation
  imgtools scrape red pandas --count 10 --yes

  # Write to a custom folder and pause two seconds between downloads
  imgtools scrape sunset --output ./images --politeness-delay 2s`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().IntVarP(&scrapeCount, "count", "n", 0, "number of images to download (prompted when not set)")
	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "folder that receives one subfolder per query")
	scrapeCmd.Flags().StringVar(&scrapeEndpoint, "endpoint", "", "search URL template containing {query}")
	scrapeCmd.Flags().DurationVar(&scrapeDelay, "politeness-delay", 0, "pause after each successful download")
	scrapeCmd.Flags().BoolVarP(&scrapeYes, "yes", "y", false, "skip the confirmation prompt")
}

func runScrape(cmd *cobra.Command, args []string) error {
	flags := map[string]interface{}{}
	if scrapeOutput != "" {
		flags["output"] = scrapeOutput
	}
	if scrapeEndpoint != "" {
		flags["endpoint"] = scrapeEndpoint
	}
	if cmd.Flags().Changed("politeness-delay") {
		flags["politeness-delay"] = scrapeDelay
	}

	a, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	defer a.flushMetrics()

	a.printer.Banner("Image scraper",
		"Scraping search result pages may violate the site's terms of service.",
		"The page structure changes often, so extraction can stop working at any time.",
		"Prefer an official search API for anything beyond small personal use.",
	)

	query, count, err := askScrapeInput(a.prompt, a.printer, strings.Join(args, " "), scrapeCount, a.cfg.Scraper.DefaultCount)
	if err != nil {
		return err
	}

	client, err := search.NewClient(search.Options{
		Endpoint:  a.cfg.Scraper.Endpoint,
		UserAgent: a.cfg.Scraper.UserAgent,
		Timeout:   a.cfg.Scraper.SearchTimeout,
		Logger:    a.log,
		Metrics:   a.metrics,
	})
	if err != nil {
		return err
	}

	s, err := scraper.New(scraper.Options{
		OutputRoot: a.cfg.Scraper.OutputRoot,
		Fs:         a.fs,
		Fetcher:    client,
		Limiter:    ratelimit.NewFixedDelay(a.cfg.Scraper.PolitenessDelay),
		Download: downloader.Options{
			UserAgent: a.cfg.Scraper.UserAgent,
			Timeout:   a.cfg.Scraper.DownloadTimeout,
		},
		Reporter: &scrapeReporter{p: a.printer},
		Logger:   a.log,
		Metrics:  a.metrics,
	})
	if err != nil {
		return err
	}

	if !scrapeYes {
		ok, err := a.prompt.Confirm(fmt.Sprintf(
			"About to search '%s' and try to download %d images to '%s'. Continue? (y/n): ",
			query, count, s.FolderFor(query)))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !ok {
			a.printer.Warning("Operation cancelled.")
			return nil
		}
	}

	a.printer.Info("Searching", client.SearchURL(query))

	summary, err := s.Run(cmd.Context(), query, count)
	if err != nil {
		if summary != nil && summary.Attempted > 0 {
			a.printer.ScrapeSummary(summary)
		}
		return err
	}

	a.printer.ScrapeSummary(summary)
	return nil
}

// askScrapeInput fills in whatever the command line left out: the query is
// required, the count falls back to def when the answer is empty.
func askScrapeInput(p prompt.Provider, printer *ui.Printer, query string, count, def int) (string, int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		answer, err := p.Ask("Enter search keywords: ")
		if err != nil {
			return "", 0, fmt.Errorf("failed to read keywords: %w", err)
		}
		query = answer
	}
	if query == "" {
		return "", 0, errors.New(errors.ErrorTypeConfig, "no search keywords given")
	}

	if count > 0 {
		return query, count, nil
	}
	if count < 0 {
		return "", 0, errors.New(errors.ErrorTypeConfig, fmt.Sprintf("count must be positive, got %d", count))
	}

	count, err := prompt.AskPositiveInt(p,
		fmt.Sprintf("How many images to download? (default: %d): ", def),
		def,
		func(msg string) { printer.Warning(msg) },
	)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read image count: %w", err)
	}
	return query, count, nil
}

// scrapeReporter prints scraper progress
type scrapeReporter struct {
	p *ui.Printer
}

func (r *scrapeReporter) FolderReady(path string, created bool) {
	if created {
		r.p.Info("Created folder", path)
	}
}

func (r *scrapeReporter) Attempt(next, total int, url string) {
	r.p.DownloadAttempt(next, total, url)
}

func (r *scrapeReporter) Saved(result downloader.DownloadResult) {
	r.p.DownloadSaved(result.Path)
	if result.Replaced {
		r.p.Warning(fmt.Sprintf("  replaced an existing file named %s", filepath.Base(result.Path)))
	}
}

func (r *scrapeReporter) Failed(result downloader.DownloadResult) {
	r.p.DownloadFailed(result.Job.URL, result.Error)
}
