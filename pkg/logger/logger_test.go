package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"imgtools/pkg/config"
)

func newBufferLogger(t *testing.T, level string) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := NewWithOptions(&config.LoggingConfig{Level: level}, Options{Console: &buf, NoColor: true})
	require.NoError(t, err)
	return l, &buf
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{name: "info level", cfg: &config.LoggingConfig{Level: "info"}},
		{name: "debug level", cfg: &config.LoggingConfig{Level: "debug"}},
		{name: "invalid level", cfg: &config.LoggingConfig{Level: "invalid"}, wantErr: true},
		{name: "file output", cfg: &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "imgtools.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(t, "warn")

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestWithFieldsAndChaining(t *testing.T) {
	logger, buf := newBufferLogger(t, "debug")

	logger.
		WithField("directory", "photos").
		WithFields(map[string]interface{}{"renamed": 2, "skipped": 1}).
		Info("chained fields")

	out := buf.String()
	assert.Contains(t, out, "chained fields")
	assert.Contains(t, out, "directory=photos")
	assert.Contains(t, out, "renamed=2")
	assert.Contains(t, out, "skipped=1")
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	logger, buf := newBufferLogger(t, "debug")

	_ = logger.WithField("child", "yes")
	logger.Info("parent message")

	assert.NotContains(t, buf.String(), "child")
}

func TestWithError(t *testing.T) {
	logger, buf := newBufferLogger(t, "debug")

	assert.Same(t, logger, logger.WithError(nil))

	logger.WithError(errors.New("disk full")).Error("write failed")
	out := buf.String()
	assert.Contains(t, out, "write failed")
	assert.Contains(t, out, "disk full")
}

func TestFileOutputWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "imgtools.log")
	var console bytes.Buffer

	logger, err := NewWithOptions(&config.LoggingConfig{Level: "info", File: path}, Options{Console: &console, NoColor: true})
	require.NoError(t, err)

	logger.InfoWithFields("download finished", map[string]interface{}{"bytes": int64(42)})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"message":"download finished"`)
	assert.Contains(t, line, `"bytes":42`)
	assert.Contains(t, line, `"app":"imgtools"`)
	assert.Contains(t, console.String(), "download finished")
}

func TestGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Initialize(&config.LoggingConfig{Level: "debug"}, Options{Console: &buf, NoColor: true}))
	t.Cleanup(func() { SetLogger(nil) })

	assert.NotNil(t, GetLogger())

	Debug("debug message")
	Info("info message")
	WithField("key", "value").Warn("with field")
	WithError(errors.New("boom")).Error("with error")

	out := buf.String()
	assert.Contains(t, out, "debug message")
	assert.Contains(t, out, "key=value")
	assert.Contains(t, out, "boom")
}

func TestHelpers(t *testing.T) {
	tl := NewTestLogger()

	LogDirectory(tl, "/photos")
	LogRename(tl, "/photos", "Image_1.png", "123456.jpg", nil)
	LogRename(tl, "/photos", "Image_2.png", "654321.jpg", errors.New("permission denied"))
	LogDownload(tl, "https://example.com/a.png", "/out/123456.png", 2048, nil)
	LogDownload(tl, "https://example.com/b.png", "", 0, errors.New("status 404"))
	LogComponentStart(tl, "renamer", map[string]interface{}{"prefix": "Image_"})

	assert.True(t, tl.HasMessage("Scanning directory"))
	assert.True(t, tl.HasMessage("Renamed file"))
	assert.True(t, tl.HasMessage("Download completed"))
	assert.True(t, tl.HasError())

	failed := tl.GetMessagesByLevel("ERROR")
	require.Len(t, failed, 1)
	assert.Equal(t, "Image_2.png", failed[0].Fields["from"])
	assert.EqualError(t, failed[0].Error, "permission denied")

	warns := tl.GetMessagesByLevel("WARN")
	require.Len(t, warns, 1)
	assert.Equal(t, "Download failed", warns[0].Message)

	started := tl.GetMessages()[len(tl.GetMessages())-1]
	assert.Equal(t, "renamer", started.Fields["component"])
	assert.Equal(t, "Image_", started.Fields["prefix"])
}

func TestTestLoggerClear(t *testing.T) {
	tl := NewTestLogger()
	tl.WithField("a", 1).Info("first")
	assert.Contains(t, tl.String(), "first")

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
	assert.Empty(t, tl.String())
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.WithField("a", 1).WithError(errors.New("x")).Error("ignored")
	assert.Nil(t, l.GetZerolog())
}
