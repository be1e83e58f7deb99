package main

import (
	"fmt"
	"os"

	"github.com/aatumaykin/webui-janitor/internal/config"
	"github.com/aatumaykin/webui-janitor/internal/constants"
	"github.com/aatumaykin/webui-janitor/internal/logger"
	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Validate and inspect webui-janitor configuration.`,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Long:  `Validate the configuration file and check for errors.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Initialize a minimal logger for this command
		log, err := logger.NewWithWriter(cmd.OutOrStdout(), logger.Config{
			Level:  "info",
			Format: "text",
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}

		path := configArg(args)
		log.Info("Validating configuration", logger.Field{Key: "path", Value: path})

		cfg, err := config.Load(path)
		if err != nil {
			log.Error("Failed to load config", err)
			os.Exit(1)
		}

		errors := cfg.Validate()
		if len(errors) > 0 {
			log.Error("Config validation failed", fmt.Errorf("%d errors", len(errors)))
			for _, e := range errors {
				log.Error("Validation error", e)
			}
			os.Exit(1)
		}

		log.Info("Configuration is valid")
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show [config-file]",
	Short: "Print the effective configuration",
	Long: `Print the configuration with defaults applied and environment
variables expanded. Without a config file the built-in defaults are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) > 0 {
			path = args[0]
		}

		cfg, err := loadConfig(path)
		if err != nil {
			return err
		}

		out, err := cfg.Encode()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

// configArg returns the config path from args, the --config flag or the default.
func configArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if configPath != "" {
		return configPath
	}
	return constants.DefaultConfigPath
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}
