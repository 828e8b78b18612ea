package models

import (
	"time"

	"gorm.io/gorm"
)

type Comment struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	PostID      uint64    `gorm:"not null;index" json:"post_id"`
	CreatorID   uint64    `gorm:"not null;index" json:"creator_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Timestamp   time.Time `gorm:"not null" json:"timestamp"`

	// Relations
	Creator User `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}

func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}
	return nil
}
