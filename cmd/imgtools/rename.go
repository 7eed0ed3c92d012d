package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"imgtools/pkg/errors"
	"imgtools/pkg/prompt"
	"imgtools/pkg/renamer"
	"imgtools/pkg/ui"
)

var (
	// Rename command flags
	renamePrefix string
	renameYes    bool
)

// renameCmd represents the rename command
var renameCmd = &cobra.Command{
	Use:   "rename [folder]",
	Short: "Rename prefixed files under a folder to random numeric names",
	Long: `Walk a folder tree and rename every file whose name starts with the
prefix (default "Image_") to a random six digit name with the configured
extension, for example 482913.jpg. Files without the prefix are left alone.

The content of renamed files is not converted: a PNG renamed to .jpg is
still a PNG.`,
	Example: `  # Prompt for the folder, defaulting to the scraper's output folder
  imgtools rename

  # Rename files starting with "IMG-" under ./photos without confirmation
  imgtools rename ./photos --prefix IMG- --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRename,
}

func init() {
	rootCmd.AddCommand(renameCmd)

	renameCmd.Flags().StringVarP(&renamePrefix, "prefix", "p", "", "only rename files starting with this prefix")
	renameCmd.Flags().BoolVarP(&renameYes, "yes", "y", false, "skip the confirmation prompt")
}

func runRename(cmd *cobra.Command, args []string) error {
	flags := map[string]interface{}{}
	if renamePrefix != "" {
		flags["prefix"] = renamePrefix
	}

	a, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	defer a.flushMetrics()

	baseDir := programDir()
	defaultRoot := a.cfg.Renamer.DefaultRoot
	if !filepath.IsAbs(defaultRoot) {
		defaultRoot = filepath.Join(baseDir, defaultRoot)
	}

	input := ""
	if len(args) == 1 {
		input = args[0]
	} else {
		input, err = a.prompt.Ask(fmt.Sprintf("Enter the folder to process (default: '%s'): ", defaultRoot))
		if err != nil {
			return fmt.Errorf("failed to read folder: %w", err)
		}
	}

	root, err := resolveRenameRoot(a.fs, a.prompt, input, defaultRoot, baseDir)
	if err != nil {
		return err
	}

	prefix := a.cfg.Renamer.Prefix
	if !renameYes {
		ok, err := a.prompt.Confirm(fmt.Sprintf(
			"Rename every file starting with '%s' under '%s' to a random %d digit %s name? (y/n): ",
			prefix, root, renamer.StemLength, a.cfg.Renamer.Extension))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !ok {
			a.printer.Warning("Operation cancelled.")
			return nil
		}
	}

	r := renamer.New(renamer.Options{
		Prefix:    prefix,
		Extension: a.cfg.Renamer.Extension,
		Fs:        a.fs,
		Reporter:  renameReporter(a.printer),
		Logger:    a.log,
		Metrics:   a.metrics,
	})

	summary, err := r.Run(cmd.Context(), root)
	if summary != nil {
		a.printer.RenameSummary(summary, prefix)
	}
	return err
}

// resolveRenameRoot turns the user's answer into an existing folder. An
// empty answer selects defaultRoot. A relative answer that does not exist
// is retried against baseDir, which the user has to confirm.
func resolveRenameRoot(fs afero.Fs, p prompt.Provider, input, defaultRoot, baseDir string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		input = defaultRoot
	}

	if ok, _ := afero.DirExists(fs, input); ok {
		return input, nil
	}

	if !filepath.IsAbs(input) {
		candidate := filepath.Join(baseDir, input)
		if ok, _ := afero.DirExists(fs, candidate); ok {
			yes, err := p.Confirm(fmt.Sprintf("Folder '%s' not found. Did you mean '%s'? (y/n): ", input, candidate))
			if err != nil {
				return "", fmt.Errorf("failed to read confirmation: %w", err)
			}
			if yes {
				return candidate, nil
			}
		}
	}

	return "", errors.New(errors.ErrorTypeConfig, fmt.Sprintf("folder '%s' does not exist or is not a directory", input))
}

func renameReporter(p *ui.Printer) renamer.Reporter {
	return func(ev renamer.Event) {
		switch ev.Kind {
		case renamer.EventDirectory:
			p.DirectoryEntered(ev.Dir)
		case renamer.EventRenamed:
			p.FileRenamed(ev.From, ev.To)
		case renamer.EventFailed:
			p.RenameFailed(ev.From, ev.Err)
		}
	}
}
