package models

import "time"

type User struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Avatar   string `json:"avatar"` // photo URL shown next to threads and replies
	Phone    string `json:"-"`      // E.164 number for reply notifications, optional

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Avatar   string `json:"avatar"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Identity is the public view of the signed-in user.
type Identity struct {
	ID          int    `json:"id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
}

func (u User) Identity() Identity {
	return Identity{ID: u.ID, DisplayName: u.Username, PhotoURL: u.Avatar}
}

type AuthResponse struct {
	Token   string   `json:"token"`
	User    Identity `json:"user"`
	Message string   `json:"message"`
}
