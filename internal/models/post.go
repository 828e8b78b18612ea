package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Link        string    `gorm:"type:varchar(2048);not null;default:''" json:"link"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Subgroup    string    `gorm:"type:varchar(50);not null;index" json:"subgroup"`
	CreatorID   uint64    `gorm:"not null;index" json:"creator_id"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`

	// Relations
	Creator  User      `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	Votes    []Vote    `gorm:"foreignKey:PostID" json:"votes,omitempty"`
}

// BeforeCreate stamps the post unless a timestamp was supplied.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now()
	}
	return nil
}
