package db

import (
	"time"

	"gorm.io/datatypes"
)

// Event is a best-effort activity log row (signups, posts, likes, comments,
// generation calls). Writes never block or fail a request.
type Event struct {
	ID        uint           `gorm:"primaryKey"`
	UserID    *uint          `gorm:"index"`
	PostID    *uint          `gorm:"index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
