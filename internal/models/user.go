package models

import "time"

type User struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	Username   string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Password   string    `gorm:"type:varchar(255);not null" json:"-"`
	ExternalID *string   `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	Email      string    `gorm:"type:varchar(255)" json:"email,omitempty"`
	Name       string    `gorm:"type:varchar(255)" json:"name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Posts    []Post    `gorm:"foreignKey:CreatorID" json:"-"`
	Comments []Comment `gorm:"foreignKey:CreatorID" json:"-"`
	Votes    []Vote    `gorm:"foreignKey:UserID" json:"-"`
}

// DisplayName prefers the profile name over the login name.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
