package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/yukikurage/forum/internal/database"
	"github.com/yukikurage/forum/internal/seed"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo users, posts, comments and votes",
		Long: `Load the bundled demo data. Rows that already exist are kept, so the
command can be run repeatedly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			report, err := seed.Load(cmd.Context(), db, seed.Default())
			if err != nil {
				return err
			}

			slog.Info("seed loaded",
				"users", report.Users,
				"posts", report.Posts,
				"comments", report.Comments,
				"votes", report.Votes,
			)
			return nil
		},
	}
}
