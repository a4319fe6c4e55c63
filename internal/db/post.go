package db

import "time"

type Post struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	ImageURL  string    `gorm:"size:300;not null"`
	Caption   string    `gorm:"size:500"`
	CreatedAt time.Time `gorm:"not null"`
	Likes     []Like    `gorm:"constraint:OnDelete:CASCADE"`
	Comments  []Comment `gorm:"constraint:OnDelete:CASCADE"`
}
