// Package scraper runs one image search: it fetches the results page for a
// query, pulls candidate image URLs out of the page's scripts, and downloads
// them one at a time into a folder named after the query until the requested
// count is reached or the candidates run out.
//
// Usage:
//
//	client, err := search.NewClient(search.Options{Endpoint: cfg.Scraper.Endpoint})
//	if err != nil {
//	    return err
//	}
//
//	s, err := scraper.New(scraper.Options{
//	    OutputRoot: cfg.Scraper.OutputRoot,
//	    Fetcher:    client,
//	    Limiter:    ratelimit.NewFixedDelay(cfg.Scraper.PolitenessDelay),
//	})
//	if err != nil {
//	    return err
//	}
//
//	summary, err := s.Run(ctx, "red pandas", 5)
//
// Downloads are sequential. A failed download is reported and skipped; it
// never aborts the run. Each successful download is followed by a pause from
// the configured Limiter.
package scraper
