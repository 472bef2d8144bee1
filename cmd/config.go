package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spiffcs/stalesweep/config"
)

// NewCmdConfig creates the config command with subcommands.
func NewCmdConfig() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		Long: `Show or manage configuration.

When run without arguments, shows the current merged configuration.

Subcommands:
  init      Create a minimal config file
  path      Show config file locations
  defaults  Show all default values
  show      Show current merged config (same as bare 'stalesweep config')`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	cmd.AddCommand(NewCmdConfigInit())
	cmd.AddCommand(NewCmdConfigPath())
	cmd.AddCommand(NewCmdConfigDefaults())
	cmd.AddCommand(NewCmdConfigShow())

	return cmd
}

// NewCmdConfigInit creates the config init subcommand.
func NewCmdConfigInit() *cobra.Command {
	var global, local bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a minimal config file",
		Long: `Create a minimal config file with starter settings.

Use --global to create in ~/.config/stalesweep/config.yaml (applies everywhere)
Use --local to create in ./.stalesweep.yaml (applies only in this directory)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(global, local)
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Create global config file (~/.config/stalesweep/config.yaml)")
	cmd.Flags().BoolVar(&local, "local", false, "Create local config file (./.stalesweep.yaml)")

	return cmd
}

// NewCmdConfigPath creates the config path subcommand.
func NewCmdConfigPath() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file locations",
		Long:  `Show the paths to global and local config files and indicate which exist.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigPath()
		},
	}
}

// NewCmdConfigDefaults creates the config defaults subcommand.
func NewCmdConfigDefaults() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Show all default configuration values",
		Long: `Show a complete configuration with all default values.

This can be redirected to create a config file with all defaults:
  stalesweep config defaults > ~/.config/stalesweep/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigDefaults(outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	return cmd
}

// NewCmdConfigShow creates the config show subcommand.
func NewCmdConfigShow() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current merged configuration",
		Long:  `Show the current configuration after merging defaults, global, and local configs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	return cmd
}

func runConfigShow(outputFormat string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return printConfig(cfg, outputFormat)
}

func runConfigDefaults(outputFormat string) error {
	return printConfig(config.DefaultConfig(), outputFormat)
}

func printConfig(cfg *config.Config, outputFormat string) error {
	switch outputFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Println(string(data))
	default:
		out, err := cfg.ToYAML()
		if err != nil {
			return err
		}
		fmt.Print(out)
	}
	return nil
}

func runConfigInit(global, local bool) error {
	if global && local {
		return fmt.Errorf("cannot use both --global and --local")
	}

	path := config.ConfigPath()
	if local {
		path = config.LocalConfigPath()
	}

	paths := config.GetConfigPaths()
	if (local && paths.LocalExists) || (!local && paths.GlobalExists) {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := config.SaveTo(path, config.MinimalConfig()); err != nil {
		return err
	}

	fmt.Printf("Created config file at %s\n", path)
	return nil
}

func runConfigPath() error {
	paths := config.GetConfigPaths()

	marker := func(exists bool) string {
		if exists {
			return "(exists)"
		}
		return "(not found)"
	}

	fmt.Printf("Global: %s %s\n", paths.GlobalPath, marker(paths.GlobalExists))
	fmt.Printf("Local:  %s %s\n", paths.LocalPath, marker(paths.LocalExists))
	return nil
}
