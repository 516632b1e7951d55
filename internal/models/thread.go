package models

import "time"

// Thread carries denormalized tallies. Upvotes, Downvotes and ReplyCount are
// only written by the forum service inside the transaction that changes the
// underlying votes or replies.
type Thread struct {
	ID             int       `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"not null" json:"title"`
	Category       string    `gorm:"not null;index" json:"category"`
	Content        string    `gorm:"not null" json:"content"`
	AuthorID       int       `gorm:"not null;index" json:"author_id"`
	AuthorName     string    `json:"author_name"`
	AuthorPhotoURL string    `json:"author_photo_url"`
	Upvotes        int       `gorm:"not null;default:0" json:"upvotes"`
	Downvotes      int       `gorm:"not null;default:0" json:"downvotes"`
	ReplyCount     int       `gorm:"not null;default:0" json:"reply_count"`
	ViewCount      int       `gorm:"not null;default:0" json:"view_count"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CreateThreadRequest struct {
	Title    string `json:"title" binding:"required"`
	Category string `json:"category" binding:"required"`
	Content  string `json:"content" binding:"required"`
}
