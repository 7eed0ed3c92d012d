package main

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"imgtools/internal/downloader"
	apperrors "imgtools/pkg/errors"
	"imgtools/pkg/prompt"
	"imgtools/pkg/renamer"
	"imgtools/pkg/ui"
)

func newTestFs(t *testing.T, dirs ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, d := range dirs {
		require.NoError(t, fs.MkdirAll(d, 0755))
	}
	return fs
}

func TestResolveRenameRoot(t *testing.T) {
	base := filepath.FromSlash("/opt/imgtools")
	defaultRoot := filepath.Join(base, "downloaded_google_images")

	tests := []struct {
		name     string
		dirs     []string
		input    string
		answers  []string
		expected string
		wantErr  bool
		asked    int
	}{
		{
			name:     "empty input uses default",
			dirs:     []string{defaultRoot},
			expected: defaultRoot,
		},
		{
			name:     "existing folder",
			dirs:     []string{"photos"},
			input:    " photos ",
			expected: "photos",
		},
		{
			name:     "fallback accepted",
			dirs:     []string{filepath.Join(base, "photos")},
			input:    "photos",
			answers:  []string{"y"},
			expected: filepath.Join(base, "photos"),
			asked:    1,
		},
		{
			name:    "fallback declined",
			dirs:    []string{filepath.Join(base, "photos")},
			input:   "photos",
			answers: []string{"n"},
			wantErr: true,
			asked:   1,
		},
		{
			name:    "missing everywhere",
			input:   "photos",
			wantErr: true,
		},
		{
			name:    "missing default",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newTestFs(t, tt.dirs...)
			p := prompt.NewScripted(tt.answers...)

			got, err := resolveRenameRoot(fs, p, tt.input, defaultRoot, base)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConfig))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}
			assert.Len(t, p.Asked(), tt.asked)
		})
	}
}

func TestResolveRenameRootRejectsFile(t *testing.T) {
	fs := newTestFs(t)
	require.NoError(t, afero.WriteFile(fs, "notes.txt", []byte("x"), 0644))

	_, err := resolveRenameRoot(fs, prompt.NewScripted(), "notes.txt", "unused", "/nowhere")
	assert.Error(t, err)
}

func TestAskScrapeInput(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		count     int
		answers   []string
		wantQuery string
		wantCount int
		wantErr   bool
	}{
		{name: "all from flags", query: "red pandas", count: 3, wantQuery: "red pandas", wantCount: 3},
		{name: "prompted count default", query: "cats", answers: []string{""}, wantQuery: "cats", wantCount: 5},
		{name: "prompted everything", answers: []string{"sunset", "7"}, wantQuery: "sunset", wantCount: 7},
		{name: "invalid count re-prompted", query: "cats", answers: []string{"abc", "-2", "0", "4"}, wantQuery: "cats", wantCount: 4},
		{name: "empty keywords", answers: []string{""}, wantErr: true},
		{name: "negative flag", query: "cats", count: -1, wantErr: true},
		{name: "input closed", query: "cats", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printer := ui.NewPrinter(&buf, true, false)

			query, count, err := askScrapeInput(prompt.NewScripted(tt.answers...), printer, tt.query, tt.count, 5)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestAskScrapeInputWarnsOnInvalidCount(t *testing.T) {
	var buf bytes.Buffer
	printer := ui.NewPrinter(&buf, true, false)

	_, _, err := askScrapeInput(prompt.NewScripted("many", "2"), printer, "cats", 0, 5)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Invalid input, please enter a number.")
}

func TestAskScrapeInputClosedInput(t *testing.T) {
	var buf bytes.Buffer
	_, _, err := askScrapeInput(prompt.NewScripted(), ui.NewPrinter(&buf, true, false), "", 0, 5)
	assert.ErrorIs(t, err, io.EOF)
}

func TestRenameReporter(t *testing.T) {
	var buf bytes.Buffer
	report := renameReporter(ui.NewPrinter(&buf, true, false))

	report(renamer.Event{Kind: renamer.EventDirectory, Dir: "photos"})
	report(renamer.Event{Kind: renamer.EventRenamed, Dir: "photos", From: "Image_1.png", To: "123456.jpg"})
	report(renamer.Event{Kind: renamer.EventSkipped, Dir: "photos", From: "cat.png"})
	report(renamer.Event{Kind: renamer.EventFailed, Dir: "photos", From: "Image_2.png", Err: errors.New("permission denied")})

	out := buf.String()
	assert.Contains(t, out, "Processing folder: 'photos'")
	assert.Contains(t, out, "Renamed: 'Image_1.png' -> '123456.jpg'")
	assert.NotContains(t, out, "cat.png")
	assert.Contains(t, out, "permission denied")
}

func TestScrapeReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &scrapeReporter{p: ui.NewPrinter(&buf, true, false)}

	r.FolderReady("out/cats", false)
	assert.Empty(t, buf.String())

	r.FolderReady("out/cats", true)
	r.Attempt(1, 5, "https://img.example.com/a.jpg")
	r.Saved(downloader.DownloadResult{Path: "out/cats/123456.jpg"})
	r.Failed(downloader.DownloadResult{
		Job:   downloader.DownloadJob{URL: "https://img.example.com/b.jpg"},
		Error: apperrors.Status(404, "https://img.example.com/b.jpg"),
	})

	out := buf.String()
	assert.Contains(t, out, "Created folder: out/cats")
	assert.Contains(t, out, "Downloading image 1/5 from: https://img.example.com/a.jpg...")
	assert.Contains(t, out, "out/cats/123456.jpg")
	assert.Contains(t, out, "404")
	assert.NotContains(t, out, "replaced")

	buf.Reset()
	r.Saved(downloader.DownloadResult{Path: "out/cats/654321.jpg", Replaced: true})
	assert.Contains(t, buf.String(), "replaced an existing file named 654321.jpg")
}
