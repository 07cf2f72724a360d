// Package app implements the main application commands.
package app

import (
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rentfusion/rentfusion/internal/config"
	"github.com/rentfusion/rentfusion/internal/logger"
)

var (
	configPath string // directory holding main.toml
	envFile    string // optional .env file loaded before the config

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rentfusion",
	Short: "RentFusion is the backend of a rental property search platform",
	Long: `RentFusion aggregates rental listings, matches them against saved searches
and alerts renters by e-mail, push, SMS and Telegram. It also writes
application letters, reviews lease contracts and handles subscriptions.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "Directory of main.toml")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file first")
}

// loadConfig reads the env file, the config and sets up logging.
func loadConfig() error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return errors.Wrap(err, "failed to load env file")
		}
	}

	var err error
	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err //nolint:wrapcheck
	}

	return logger.Init(cfg.Log) //nolint:wrapcheck
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
