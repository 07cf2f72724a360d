package app

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rentfusion/rentfusion/internal/auth"
	"github.com/rentfusion/rentfusion/internal/db/open"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables and exit",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfig()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		db, err := open.DB(&cfg.DB)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if err = open.Migrate(db); err != nil {
			return err //nolint:wrapcheck
		}

		if err = auth.SeedLimits(db); err != nil {
			return err //nolint:wrapcheck
		}

		log.Info().Str("engine", cfg.DB.GormEngine).Msg("database migrated")

		return nil
	},
}
