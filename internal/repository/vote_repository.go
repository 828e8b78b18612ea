package repository

import (
	"context"
	"fmt"

	"github.com/yukikurage/forum/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormVoteRepository is a GORM implementation of VoteRepository
type GormVoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new VoteRepository
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &GormVoteRepository{db: db}
}

// Upsert sets a user's vote on a post. Value 0 deletes any existing vote and
// succeeds when there is none; other values insert or replace the single
// (user, post) row.
func (r *GormVoteRepository) Upsert(ctx context.Context, userID, postID uint64, value int) error {
	if value < models.VoteDown || value > models.VoteUp {
		return fmt.Errorf("repository: vote value %d out of range", value)
	}

	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, postID).Error; err != nil {
			return err
		}

		if value == models.VoteClear {
			return tx.Where("user_id = ? AND post_id = ?", userID, postID).
				Delete(&models.Vote{}).Error
		}

		if err := tx.Select("id").First(&models.User{}, userID).Error; err != nil {
			return err
		}

		vote := models.Vote{UserID: userID, PostID: postID, Value: value}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&vote).Error
	}))
}

// Find finds a user's vote on a post
func (r *GormVoteRepository) Find(ctx context.Context, userID, postID uint64) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&vote).Error
	if err != nil {
		return nil, translate(err)
	}
	return &vote, nil
}

// Total sums the vote values of a post; a post without votes totals 0
func (r *GormVoteRepository) Total(ctx context.Context, postID uint64) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("post_id = ?", postID).
		Scan(&total).Error
	return total, translate(err)
}

type postSum struct {
	PostID uint64
	Total  int
}

// Totals sums vote values for several posts in one query. Posts without
// votes are present with a total of 0.
func (r *GormVoteRepository) Totals(ctx context.Context, postIDs []uint64) (map[uint64]int, error) {
	totals := make(map[uint64]int, len(postIDs))
	if len(postIDs) == 0 {
		return totals, nil
	}
	for _, id := range postIDs {
		totals[id] = 0
	}

	var rows []postSum
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("post_id, COALESCE(SUM(value), 0) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}

	for _, row := range rows {
		totals[row.PostID] = row.Total
	}
	return totals, nil
}

// UserValues returns the user's vote value per post, omitting posts the user
// has not voted on
func (r *GormVoteRepository) UserValues(ctx context.Context, userID uint64, postIDs []uint64) (map[uint64]int, error) {
	values := make(map[uint64]int)
	if len(postIDs) == 0 {
		return values, nil
	}

	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&votes).Error
	if err != nil {
		return nil, translate(err)
	}

	for _, vote := range votes {
		values[vote.PostID] = vote.Value
	}
	return values, nil
}
