// Package logger provides structured logging for imgtools.
//
// It wraps zerolog behind a small Logger interface so pipelines can be
// handed a logger explicitly (or use the global one) and tests can swap in
// NewTestLogger or NewNopLogger.
//
//	if err := logger.Initialize(&cfg.Logging, logger.Options{NoColor: noColor}); err != nil {
//	    return err
//	}
//	logger.WithField("query", query).Info("Starting scrape")
//
// Console output is human readable. When LoggingConfig.File is set the same
// entries are also appended to that file as JSON lines.
package logger
