package renamer

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"imgtools/pkg/errors"
	"imgtools/pkg/logger"
	"imgtools/pkg/metrics"
	"imgtools/pkg/models"
)

const (
	// StemLength is the number of random digits in a generated name
	StemLength = 6
	digits     = "0123456789"
)

// RandSource supplies uniform integers in [0, n). *math/rand.Rand satisfies it.
type RandSource interface {
	Intn(n int) int
}

// EventKind identifies what a reported Event describes
type EventKind int

const (
	EventDirectory EventKind = iota
	EventRenamed
	EventSkipped
	EventFailed
)

// Event is passed to a Reporter as the walk progresses
type Event struct {
	Kind EventKind
	Dir  string
	From string
	To   string
	Err  error
}

// Reporter receives progress events in walk order
type Reporter func(Event)

// Options configures a Renamer
type Options struct {
	Prefix    string
	Extension string
	Fs        afero.Fs
	Rand      RandSource
	Reporter  Reporter
	Logger    logger.Logger
	Metrics   *metrics.Metrics
}

// Renamer renames prefixed files under a root to random numeric names
type Renamer struct {
	prefix    string
	extension string
	fs        afero.Fs
	rand      RandSource
	report    Reporter
	log       logger.Logger
	metrics   *metrics.Metrics
}

// New creates a Renamer, filling unset options with defaults
func New(opts Options) *Renamer {
	r := &Renamer{
		prefix:    opts.Prefix,
		extension: opts.Extension,
		fs:        opts.Fs,
		rand:      opts.Rand,
		report:    opts.Reporter,
		log:       opts.Logger,
		metrics:   opts.Metrics,
	}
	if r.prefix == "" {
		r.prefix = "Image_"
	}
	if r.extension == "" {
		r.extension = ".jpg"
	}
	if r.fs == nil {
		r.fs = afero.NewOsFs()
	}
	if r.rand == nil {
		r.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if r.report == nil {
		r.report = func(Event) {}
	}
	if r.log == nil {
		r.log = logger.GetLogger()
	}
	return r
}

// Run walks root and renames every regular file whose name starts with the
// prefix. Per-file failures are counted, not returned. The returned error is
// non-nil only when root is unusable or ctx is cancelled.
func (r *Renamer) Run(ctx context.Context, root string) (*models.RenameSummary, error) {
	info, err := r.fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrorTypeConfig, fmt.Sprintf("folder %q does not exist", root), err)
		}
		return nil, errors.Wrap(errors.ErrorTypeConfig, fmt.Sprintf("cannot access folder %q", root), err)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrorTypeConfig, fmt.Sprintf("%q is not a directory", root))
	}

	logger.LogComponentStart(r.log, "renamer", map[string]interface{}{
		"root":   root,
		"prefix": r.prefix,
	})

	start := time.Now()
	summary := &models.RenameSummary{Root: root}

	if err := r.walk(ctx, root, summary, true); err != nil {
		summary.Duration = time.Since(start)
		return summary, err
	}

	summary.Duration = time.Since(start)
	logger.LogComponentStop(r.log, "renamer", map[string]interface{}{
		"renamed": summary.Renamed,
		"skipped": summary.Skipped,
		"errored": summary.Errored,
	})
	return summary, nil
}

// walk handles dir top-down: the directory is reported, its files are
// processed, then its subdirectories are visited.
func (r *Renamer) walk(ctx context.Context, dir string, summary *models.RenameSummary, isRoot bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		if isRoot {
			return errors.Wrap(errors.ErrorTypeFilesystem, fmt.Sprintf("failed to read %q", dir), err)
		}
		r.log.WithField("directory", dir).WithError(err).Warn("Skipping unreadable directory")
		r.metrics.IncError("rename", string(errors.ErrorTypeFilesystem))
		return nil
	}

	summary.Directories++
	r.metrics.IncDirectory()
	logger.LogDirectory(r.log, dir)
	r.report(Event{Kind: EventDirectory, Dir: dir})

	var subdirs []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch {
		case entry.IsDir():
			subdirs = append(subdirs, filepath.Join(dir, entry.Name()))
		case entry.Mode().IsRegular(), r.linksToFile(filepath.Join(dir, entry.Name()), entry):
			r.handleFile(models.FileEntry{
				Dir:         dir,
				Name:        entry.Name(),
				PrefixMatch: strings.HasPrefix(entry.Name(), r.prefix),
			}, summary)
		}
	}

	for _, sub := range subdirs {
		if err := r.walk(ctx, sub, summary, false); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renamer) handleFile(entry models.FileEntry, summary *models.RenameSummary) {
	if !entry.PrefixMatch {
		summary.Skipped++
		r.metrics.IncRenameFile("skipped")
		r.report(Event{Kind: EventSkipped, Dir: entry.Dir, From: entry.Name})
		return
	}

	target := r.uniqueName(entry.Dir)
	err := r.fs.Rename(filepath.Join(entry.Dir, entry.Name), filepath.Join(entry.Dir, target))
	logger.LogRename(r.log, entry.Dir, entry.Name, target, err)

	if err != nil {
		summary.Errored++
		r.metrics.IncRenameFile("errored")
		r.metrics.IncError("rename", string(errors.ErrorTypeFilesystem))
		r.report(Event{
			Kind: EventFailed,
			Dir:  entry.Dir,
			From: entry.Name,
			To:   target,
			Err:  errors.Wrap(errors.ErrorTypeFilesystem, fmt.Sprintf("cannot rename %q", entry.Name), err),
		})
		return
	}

	summary.Renamed++
	r.metrics.IncRenameFile("renamed")
	r.report(Event{Kind: EventRenamed, Dir: entry.Dir, From: entry.Name, To: target})
}

// uniqueName draws names until one is free in dir. There is no retry bound.
func (r *Renamer) uniqueName(dir string) string {
	for {
		name := r.randomStem() + r.extension
		if !r.exists(filepath.Join(dir, name)) {
			return name
		}
	}
}

func (r *Renamer) randomStem() string {
	var b strings.Builder
	b.Grow(StemLength)
	for i := 0; i < StemLength; i++ {
		b.WriteByte(digits[r.rand.Intn(len(digits))])
	}
	return b.String()
}

// linksToFile reports whether entry is a symlink whose target is a regular
// file. Links to directories are never descended into and dangling links
// are ignored. The link itself is what gets renamed.
func (r *Renamer) linksToFile(path string, entry os.FileInfo) bool {
	if entry.Mode()&os.ModeSymlink == 0 {
		return false
	}
	target, err := r.fs.Stat(path)
	return err == nil && target.Mode().IsRegular()
}

// exists treats any directory entry, dangling symlinks included, as taken
func (r *Renamer) exists(path string) bool {
	var err error
	if lst, ok := r.fs.(afero.Lstater); ok {
		_, _, err = lst.LstatIfPossible(path)
	} else {
		_, err = r.fs.Stat(path)
	}
	return err == nil || !os.IsNotExist(err)
}
