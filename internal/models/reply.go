package models

import "time"

type Reply struct {
	ID             int       `gorm:"primaryKey" json:"id"`
	ThreadID       int       `gorm:"not null;index" json:"thread_id"`
	Content        string    `gorm:"not null" json:"content"`
	AuthorID       int       `gorm:"not null" json:"author_id"`
	AuthorName     string    `json:"author_name"`
	AuthorPhotoURL string    `json:"author_photo_url"`
	Upvotes        int       `gorm:"not null;default:0" json:"upvotes"`
	Downvotes      int       `gorm:"not null;default:0" json:"downvotes"`
	CreatedAt      time.Time `json:"created_at"`
}

type CreateReplyRequest struct {
	Content string `json:"content" binding:"required"`
}
