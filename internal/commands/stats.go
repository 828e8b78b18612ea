package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"github.com/yukikurage/forum/internal/database"
	"github.com/yukikurage/forum/internal/repository"
	"github.com/yukikurage/forum/internal/services"
	"gopkg.in/yaml.v3"
)

const formatFlag = "format"

var statsFlags = map[string]cobraflags.Flag{
	formatFlag: &cobraflags.StringFlag{
		Name:  formatFlag,
		Value: "yaml",
		Usage: "Output format (yaml, json)",
	},
}

func newStatsCommand() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the number of users, posts, comments and votes",
		Args:  cobra.NoArgs,
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

			counts, err := services.NewStatsService(repository.NewStatsRepository(db)).Counts(cmd.Context())
			if err != nil {
				return err
			}

			return writeCounts(cmd.OutOrStdout(), statsFlags[formatFlag].GetString(), counts)
		},
	}

	cobraflags.RegisterMap(statsCmd, statsFlags)
	return statsCmd
}

func writeCounts(w io.Writer, format string, counts repository.Counts) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(counts)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(counts)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
