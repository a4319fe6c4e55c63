package db

import "time"

// Session binds a browser cookie token to a user. Rows have no server-side
// expiry; they live until logout.
type Session struct {
	Token     string    `gorm:"primaryKey;size:64"`
	UserID    uint      `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"not null"`
}
