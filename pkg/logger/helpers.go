package logger

import (
	"github.com/rs/zerolog"
)

func orGlobal(l Logger) Logger {
	if l == nil {
		return GetLogger()
	}
	return l
}

// LogDirectory logs that the renamer entered a directory
func LogDirectory(l Logger, dir string) {
	orGlobal(l).WithField("directory", dir).Info("Scanning directory")
}

// LogRename logs the outcome of a single rename
func LogRename(l Logger, dir, from, to string, err error) {
	logger := orGlobal(l).WithFields(map[string]interface{}{
		"directory": dir,
		"from":      from,
		"to":        to,
	})

	if err != nil {
		logger.WithError(err).Error("Rename failed")
		return
	}
	logger.Info("Renamed file")
}

// LogDownload logs download operations
func LogDownload(l Logger, url, path string, bytes int64, err error) {
	fields := map[string]interface{}{
		"url": url,
	}

	if err != nil {
		orGlobal(l).WithFields(fields).WithError(err).Warn("Download failed")
		return
	}

	fields["path"] = path
	fields["bytes"] = bytes
	orGlobal(l).InfoWithFields("Download completed", fields)
}

// LogRequest logs a finished HTTP request
func LogRequest(l Logger, method, url string, statusCode int, durationMs float64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		orGlobal(l).DebugWithFields("HTTP request completed", fields)
	case statusCode >= 500:
		orGlobal(l).ErrorWithFields("HTTP request server error", fields)
	default:
		orGlobal(l).WarnWithFields("HTTP request client error", fields)
	}
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, config map[string]interface{}) {
	logger := orGlobal(l).WithField("component", component)
	if len(config) > 0 {
		logger = logger.WithFields(config)
	}
	logger.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(l Logger, component string, summary map[string]interface{}) {
	logger := orGlobal(l).WithField("component", component)
	if len(summary) > 0 {
		logger = logger.WithFields(summary)
	}
	logger.Info("Component stopped")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
