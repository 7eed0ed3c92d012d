// Package ratelimit paces the image scraper.
//
// The scraper waits on a Limiter after every successful download. The
// default FixedDelay implementation sleeps for a constant politeness delay
// and gives up early when the run's context is cancelled.
package ratelimit
