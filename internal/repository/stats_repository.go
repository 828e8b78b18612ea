package repository

import (
	"context"

	"github.com/yukikurage/forum/internal/models"
	"gorm.io/gorm"
)

// GormStatsRepository is a GORM implementation of StatsRepository
type GormStatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &GormStatsRepository{db: db}
}

// Counts returns the number of rows in each forum table
func (r *GormStatsRepository) Counts(ctx context.Context) (Counts, error) {
	var counts Counts
	db := r.db.WithContext(ctx)

	targets := []struct {
		model any
		dest  *int64
	}{
		{&models.User{}, &counts.Users},
		{&models.Post{}, &counts.Posts},
		{&models.Comment{}, &counts.Comments},
		{&models.Vote{}, &counts.Votes},
	}

	for _, target := range targets {
		if err := db.Model(target.model).Count(target.dest).Error; err != nil {
			return Counts{}, translate(err)
		}
	}

	return counts, nil
}
