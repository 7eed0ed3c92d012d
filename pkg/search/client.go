package search

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"imgtools/pkg/config"
	"imgtools/pkg/errors"
	"imgtools/pkg/logger"
	"imgtools/pkg/metrics"
)

// Options configures a Client
type Options struct {
	Endpoint  string
	UserAgent string
	Timeout   time.Duration
	// Transport overrides the HTTP transport, mainly for tests
	Transport http.RoundTripper
	Logger    logger.Logger
	Metrics   *metrics.Metrics
}

// Client fetches search result pages with a colly collector
type Client struct {
	endpoint  string
	userAgent string
	timeout   time.Duration
	transport http.RoundTripper
	logger    logger.Logger
	metrics   *metrics.Metrics
}

// NewClient creates a results page client
func NewClient(opts Options) (*Client, error) {
	if !strings.Contains(opts.Endpoint, config.QueryPlaceholder) {
		return nil, errors.New(errors.ErrorTypeConfig,
			fmt.Sprintf("search endpoint %q must contain %s", opts.Endpoint, config.QueryPlaceholder))
	}
	if opts.Timeout <= 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "search timeout must be positive")
	}

	transport := opts.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   opts.Timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}

	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		endpoint:  opts.Endpoint,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		transport: transport,
		logger:    log,
		metrics:   opts.Metrics,
	}, nil
}

// SearchURL returns the URL requested for query
func (c *Client) SearchURL(query string) string {
	return BuildURL(c.endpoint, query)
}

// FetchResults issues one GET for the results page of query and returns the
// body. Any 2xx status is a success; a transport failure or any other
// status yields a typed error.
func (c *Client) FetchResults(ctx context.Context, query string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := c.SearchURL(query)

	collector := colly.NewCollector(
		colly.UserAgent(c.userAgent),
		colly.AllowURLRevisit(),
	)
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(c.timeout)
	collector.WithTransport(&contextTransport{ctx: ctx, base: c.transport})

	var (
		body     []byte
		status   int
		accepted bool
	)
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	// colly reports every status from 203 up as an error
	collector.OnError(func(r *colly.Response, _ error) {
		if r == nil {
			return
		}
		status = r.StatusCode
		if status/100 == 2 {
			body = r.Body
			accepted = true
		}
	})

	c.logger.DebugWithFields("Fetching results page", map[string]interface{}{
		"url": target,
	})

	start := time.Now()
	err := collector.Visit(target)
	duration := time.Since(start)
	c.metrics.ObserveDuration("search", duration)
	logger.LogRequest(c.logger, http.MethodGet, target, status, float64(duration.Milliseconds()))

	if err != nil && !accepted {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		classified := errors.Classify(err, status)
		c.metrics.IncError("scrape", string(classified.Type))
		return nil, &errors.Error{
			Type:    classified.Type,
			Message: fmt.Sprintf("failed to fetch results page %s", target),
			Code:    classified.Code,
			Err:     err,
		}
	}

	return body, nil
}

// contextTransport binds every request to the caller's context so that
// cancelling a run aborts the in-flight fetch.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}
