package repository

import (
	"context"

	"github.com/yukikurage/forum/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCommentRepository is a GORM implementation of CommentRepository
type GormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &GormCommentRepository{db: db}
}

// Create inserts a comment and loads its creator
func (r *GormCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, comment.PostID).Error; err != nil {
			return err
		}

		var creator models.User
		if err := tx.First(&creator, comment.CreatorID).Error; err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(comment).Error; err != nil {
			return err
		}

		comment.Creator = creator
		return nil
	}))
}
