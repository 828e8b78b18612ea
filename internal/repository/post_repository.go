package repository

import (
	"context"

	"github.com/yukikurage/forum/internal/database"
	"github.com/yukikurage/forum/internal/models"
	"github.com/yukikurage/forum/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPostRepository is a GORM implementation of PostRepository
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &GormPostRepository{db: db}
}

// Create inserts a post; the store assigns the id
func (r *GormPostRepository) Create(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.User{}, post.CreatorID).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(post).Error
	}))
}

// FindByID finds a post with creator, votes and comments loaded
func (r *GormPostRepository) FindByID(ctx context.Context, id uint64) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Votes").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.timestamp ASC").Order("comments.id ASC")
		}).
		Preload("Comments.Creator").
		First(&post, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// FindHeader finds a post without relations
func (r *GormPostRepository) FindHeader(ctx context.Context, id uint64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// List retrieves posts newest first, optionally within one subgroup
func (r *GormPostRepository) List(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	posts := []models.Post{}
	err := r.db.WithContext(ctx).
		Scopes(
			database.InSubgroup(filter.Subgroup),
			database.NewestFirst,
			database.Paginate(utils.PaginationParams{Limit: filter.Limit, Offset: filter.Offset}),
		).
		Preload("Creator").
		Find(&posts).Error
	if err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

// Update overwrites title, link, description and subgroup of a post
func (r *GormPostRepository) Update(ctx context.Context, id uint64, changes PostChanges) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			return err
		}

		post.Title = changes.Title
		post.Link = changes.Link
		post.Description = changes.Description
		post.Subgroup = changes.Subgroup

		return tx.Model(&post).
			Select("Title", "Link", "Description", "Subgroup").
			Updates(&post).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// Delete removes the comments, then the votes, then the post itself in one
// transaction. Nothing is removed when the post does not exist.
func (r *GormPostRepository) Delete(ctx context.Context, id uint64) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&models.Post{}, id).Error; err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("post_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Post{}, id).Error
	}))
}

// ListSubgroups lists the distinct subgroups that currently have posts
func (r *GormPostRepository) ListSubgroups(ctx context.Context) ([]string, error) {
	subgroups := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Distinct().
		Order("subgroup").
		Pluck("subgroup", &subgroups).Error
	if err != nil {
		return nil, translate(err)
	}
	return subgroups, nil
}
