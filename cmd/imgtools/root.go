package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"imgtools/pkg/config"
	"imgtools/pkg/logger"
	"imgtools/pkg/metrics"
	"imgtools/pkg/prompt"
	"imgtools/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile      string
	logLevel        string
	metricsTextfile string
	noColor         bool
	quiet           bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "imgtools",
	Short: "Batch-rename image files and download images from a search page",
	Long: `imgtools bundles two small image utilities:

  rename   walks a folder tree and gives every file starting with a prefix
           (default "Image_") a random six digit .jpg name
  scrape   fetches an image search results page for a query and downloads
           the first N image URLs it finds into a folder named after the query

Both commands ask for confirmation before touching the filesystem.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with a context cancelled on SIGINT or SIGTERM
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError("Error", err.Error())
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .imgtools.yaml or ~/.config/imgtools/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "write run metrics in Prometheus text format to this file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")

	rootCmd.SetVersionTemplate(`imgtools {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// app carries everything a subcommand needs once configuration is loaded
type app struct {
	cfg     *config.Config
	log     logger.Logger
	printer *ui.Printer
	metrics *metrics.Metrics
	prompt  prompt.Provider
	fs      afero.Fs
}

// newApp loads configuration with the command's flag overrides and sets up
// logging, terminal output and metrics.
func newApp(cmd *cobra.Command, flags map[string]interface{}) (*app, error) {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	} else if quiet {
		flags["log-level"] = "error"
	}
	if metricsTextfile != "" {
		flags["metrics-textfile"] = metricsTextfile
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout(), noColor, quiet)
	ui.SetDefault(printer)

	if err := logger.Initialize(&cfg.Logging, logger.Options{NoColor: noColor}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.WithField("command", cmd.Name())
	log.DebugWithFields("Configuration loaded", map[string]interface{}{
		"config_file": configFile,
		"log_level":   cfg.Logging.Level,
	})

	return &app{
		cfg:     cfg,
		log:     log,
		printer: printer,
		metrics: metrics.New(),
		prompt:  prompt.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout()),
		fs:      afero.NewOsFs(),
	}, nil
}

// flushMetrics writes the metrics textfile when one is configured
func (a *app) flushMetrics() {
	path := a.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	if err := a.metrics.WriteTextfile(path); err != nil {
		a.log.WithError(err).WithField("path", path).Warn("Failed to write metrics textfile")
		return
	}
	a.log.WithField("path", path).Debug("Metrics textfile written")
}

// programDir is the directory holding the running executable, or the
// working directory when that cannot be determined.
func programDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
