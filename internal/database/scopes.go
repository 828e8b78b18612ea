package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/forum/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Offset > 0 {
			db = db.Offset(params.Offset)
		}
		if params.Limit > 0 {
			db = db.Limit(params.Limit)
		}
		return db
	}
}

// InSubgroup restricts posts to one subgroup; an empty name matches all.
func InSubgroup(subgroup string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if subgroup == "" {
			return db
		}
		return db.Where("posts.subgroup = ?", subgroup)
	}
}

// NewestFirst orders posts by timestamp descending, id breaking ties.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("posts.timestamp DESC").Order("posts.id DESC")
}
