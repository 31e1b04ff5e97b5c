package models

import "time"

// Message is a club chat message. Content is plaintext in memory and
// hex-encoded ciphertext in the database.
type Message struct {
	ID        int64     `json:"id"`
	ClubID    int64     `json:"club_id"`
	UserID    *int64    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
