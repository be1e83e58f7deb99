package main

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "webui-janitor",
	Short: "webui-janitor - Open WebUI database and uploads housekeeping",
	Long: `webui-janitor deletes old chats and reconciles the Open WebUI SQLite
database with the uploads directory: file records no chat references and
uploads no record names are removed. Every run can be rehearsed with --test Y.`,
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ./config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(chatsCmd)
	rootCmd.AddCommand(orphansCmd)
}
