package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/halfmoss/reelmatch/internal/config"
	"github.com/halfmoss/reelmatch/internal/database"
	"github.com/halfmoss/reelmatch/internal/logging"
)

var (
	version    = "dev" // Set by build flags: -ldflags="-X main.version=1.0.0"
	cfgFile    string
	verbose    bool
	jsonOutput bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reelmatch",
		Short: "Local media library matcher and catalog",
		Long: `Reelmatch scans local folders for media files, scores them against
cataloged titles with fuzzy matching, and keeps confirmed associations
valid across renames.

Features:
  - Filename normalization tolerant of release tags and CJK titles
  - Scored match candidates across default, source and finished folders
  - Batch matching over the whole catalog with a bounded worker pool
  - Associations that follow files through renames`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/reelmatch/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "machine-readable JSON output")

	rootCmd.AddCommand(newMatchCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newMaterialCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("reelmatch %s\n", version)
		},
	}
}

// loadConfig loads the config file given by --config, or the default one.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadPath(cfgFile)
	}
	return config.Load()
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logCfg := cfg.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	return logging.New(logCfg)
}

func openDB() (*database.CatalogDB, error) {
	db, err := database.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
