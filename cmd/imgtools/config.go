package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"imgtools/pkg/config"
	"imgtools/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage imgtools configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (IMGTOOLS_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to a file",
	Long: `Write the default configuration as YAML.

The file is created in the current directory as '.imgtools.yaml' unless a
different path is given with the --config flag.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration from every source and check it.

This command checks:
  - YAML syntax
  - Required fields
  - Value ranges
  - That the search endpoint contains {query}`,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".imgtools.yaml"
	}

	printer := ui.NewPrinter(cmd.OutOrStdout(), noColor, quiet)

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		return err
	}

	printer.Success("Configuration file created: " + configPath)
	printer.Plain("\nNext steps:")
	printer.Plain("1. Edit the file to change the prefix, output folder or search endpoint")
	printer.Plain("2. Run 'imgtools config validate' to check it")
	printer.Plain("3. Run 'imgtools scrape' or 'imgtools rename'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	printer := ui.NewPrinter(cmd.OutOrStdout(), noColor, false)
	printer.Highlight("Current Configuration")
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprint(cmd.OutOrStdout(), string(data))

	printer.Plain("\nConfiguration sources (in order of priority):")
	printer.Plain("1. Command line flags")
	printer.Plain("2. Environment variables (IMGTOOLS_*)")
	printer.Plain("3. .env files")
	if configFile != "" {
		printer.Plain("4. Configuration file: %s", configFile)
	} else {
		printer.Plain("4. Configuration file: (searched in default locations)")
	}
	printer.Plain("5. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	printer := ui.NewPrinter(cmd.OutOrStdout(), noColor, false)
	if configFile != "" {
		printer.Info("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	printer.Success("Configuration is valid")
	printer.Plain("\nConfiguration summary:")
	printer.Plain("  Rename prefix: %s", cfg.Renamer.Prefix)
	printer.Plain("  Output folder: %s", cfg.Scraper.OutputRoot)
	printer.Plain("  Search endpoint: %s", cfg.Scraper.Endpoint)
	printer.Plain("  Default count: %d", cfg.Scraper.DefaultCount)
	printer.Plain("  Timeouts: search %s, download %s", cfg.Scraper.SearchTimeout, cfg.Scraper.DownloadTimeout)
	printer.Plain("  Politeness delay: %s", cfg.Scraper.PolitenessDelay)
	printer.Plain("  Log level: %s", cfg.Logging.Level)
	return nil
}
