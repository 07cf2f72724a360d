package app

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/rentfusion/rentfusion/internal/backup"
	"github.com/rentfusion/rentfusion/internal/db/open"
)

func init() { //nolint: gochecknoinits
	backupCmd.Flags().StringVar(&backupDir, "dir", "", "Write the backup here instead of Cron.BackupDir")

	rootCmd.AddCommand(backupCmd)
}

var (
	backupDir string

	backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Run one database backup and print the summary",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := open.DB(&cfg.DB)
			if err != nil {
				return err //nolint:wrapcheck
			}

			dir := backupDir
			if dir == "" {
				dir = cfg.Cron.BackupDir
			}

			sum, err := backup.Run(cmd.Context(), db, dir)
			if err != nil {
				return err //nolint:wrapcheck
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(sum) //nolint:wrapcheck
		},
	}
)
