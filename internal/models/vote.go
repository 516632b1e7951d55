package models

import (
	"fmt"
	"time"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("direction must be %q or %q, got %q", DirectionUp, DirectionDown, s)
	}
	return d, nil
}

// Vote is the ledger entry of one user's current vote on one thread. At most
// one row exists per (thread, user); retracting a vote deletes it.
type Vote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	ThreadID  int       `gorm:"not null;uniqueIndex:idx_votes_thread_user" json:"thread_id"`
	UserID    int       `gorm:"not null;uniqueIndex:idx_votes_thread_user" json:"user_id"`
	Direction Direction `gorm:"type:varchar(4);not null" json:"direction"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VoteRequest struct {
	Direction string `json:"direction" binding:"required"`
}
