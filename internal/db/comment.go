package db

import "time"

type Comment struct {
	ID        uint      `gorm:"primaryKey"`
	PostID    uint      `gorm:"index;not null"`
	UserID    uint      `gorm:"index;not null"`
	Text      string    `gorm:"size:1000;not null"`
	CreatedAt time.Time `gorm:"not null"`
}
