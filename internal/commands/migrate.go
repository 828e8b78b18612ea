package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/yukikurage/forum/internal/database"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			slog.Info("database migrated", "driver", cfg.DBDriver)
			return nil
		},
	}
}
