package database

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/forum/internal/models"
	"gorm.io/gorm"
)

type index struct {
	model   any
	table   string
	name    string
	columns string
}

// Composite indexes backing the listing and aggregation queries.
var indexes = []index{
	{&models.Post{}, "posts", "idx_posts_subgroup_timestamp", "subgroup, timestamp"},
	{&models.Comment{}, "comments", "idx_comments_post_timestamp", "post_id, timestamp"},
	{&models.Vote{}, "votes", "idx_votes_post_id", "post_id"},
}

// AddIndexes creates any missing index from the list above.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			slog.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
