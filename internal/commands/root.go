// Package commands implements the forum command line.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/yukikurage/forum/internal/config"
	"github.com/yukikurage/forum/internal/database"
	"gorm.io/gorm"
)

// NewRootCommand builds the forum command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "forum",
		Short: "Discussion forum with posts, comments, votes and subgroups",
		Long: `Discussion forum server and maintenance tools.

Configuration is read from the environment and from a .env file in the
working directory.

Available subcommands:
  serve    - Run the HTTP server
  migrate  - Create or update the database schema
  seed     - Load the demo users, posts, comments and votes
  stats    - Print row counts`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newSeedCommand())
	rootCmd.AddCommand(newStatsCommand())
	return rootCmd
}

// loadConfig reads and checks configuration and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openDatabase connects and brings the schema up to date.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
