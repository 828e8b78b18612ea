package models

// Vote is one user's standing vote on one post. A zero value is never stored.
type Vote struct {
	UserID uint64 `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	PostID uint64 `gorm:"primarykey;autoIncrement:false" json:"post_id"`
	Value  int    `gorm:"not null" json:"value"`
}

// Allowed vote values
const (
	VoteUp    = 1
	VoteClear = 0
	VoteDown  = -1
)
