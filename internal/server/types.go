package server

import "time"

type identitySummary struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type drawingView struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	UserID   uint   `json:"user_id"`
}

type commentView struct {
	ID             uint      `json:"id"`
	PostID         uint      `json:"post_id"`
	UserID         uint      `json:"user_id"`
	AuthorUsername string    `json:"author_username"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}

type postView struct {
	ID             uint          `json:"id"`
	UserID         uint          `json:"user_id"`
	AuthorUsername string        `json:"author_username"`
	ImageURL       string        `json:"image_url"`
	Caption        string        `json:"caption,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	LikesCount     int           `json:"likes_count"`
	Comments       []commentView `json:"comments"`
}
