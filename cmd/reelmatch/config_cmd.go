package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/halfmoss/reelmatch/internal/config"
	"github.com/halfmoss/reelmatch/internal/paths"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage reelmatch configuration",
		Long: `Commands for managing reelmatch configuration.

The config file is stored at: ~/.config/reelmatch/config.toml

Examples:
  reelmatch config init              # Create default config file
  reelmatch config show              # Display current configuration
  reelmatch config path              # Show config file path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigSetThresholdCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Long: `Create a new configuration file with default values.

The config file will be created at ~/.config/reelmatch/config.toml
Edit this file to set your monitor folders and match threshold.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ConfigExists() && !force {
				path, _ := paths.ConfigPath()
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			path, _ := paths.ConfigPath()
			fmt.Printf("Created config file: %s\n", path)
			fmt.Println("Edit it to add your monitor folders.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if jsonOutput {
				return printJSON(cfg)
			}

			fmt.Print(cfg.ToTOML())
			return nil
		},
	}
}

func newConfigSetThresholdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-threshold <0-100>",
		Short: "Set the default match threshold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			threshold, err := strconv.Atoi(args[0])
			if err != nil || threshold < 0 || threshold > 100 {
				return fmt.Errorf("threshold must be an integer between 0 and 100")
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.Match.Threshold = threshold

			if cfgFile != "" {
				err = cfg.SavePath(cfgFile)
			} else {
				err = cfg.Save()
			}
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Printf("Match threshold set to %d\n", threshold)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := paths.ConfigPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}
