package db

import "time"

// Like rows are unique per (post, user); the composite index is what keeps a
// concurrent double-toggle from inserting two rows.
type Like struct {
	ID        uint      `gorm:"primaryKey"`
	PostID    uint      `gorm:"index;not null;uniqueIndex:idx_likes_post_user"`
	UserID    uint      `gorm:"index;not null;uniqueIndex:idx_likes_post_user"`
	CreatedAt time.Time `gorm:"not null"`
}
