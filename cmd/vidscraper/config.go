package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"vidscraper/pkg/config"
	"vidscraper/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage vidscraper configuration files.

Configuration is loaded from, in order of priority:
  - command line flags
  - VIDSCRAPER_* environment variables
  - a .env file
  - the YAML configuration file
  - default values`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Long: `Write the default configuration to --config, or to ` + config.DefaultPath() + `
when no path is given. An existing file is never overwritten.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE:        runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration file created: " + path)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	display := *appConfig
	if display.Scraper.Cookie != "" {
		display.Scraper.Cookie = "********"
	}

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
