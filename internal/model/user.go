package model

import "time"

// User is a backup server account
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a bearer token issued to a logged in user
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired
func (s Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Snapshot is one encrypted collection stored on the backup server
type Snapshot struct {
	Collection string    `json:"collection"`
	Data       string    `json:"data"` // base64 ciphertext
	Version    int64     `json:"version"`
	UpdatedAt  time.Time `json:"updated_at"`
}
