package domain

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// PresenceEntry binds a live connection to the user authenticated on it.
type PresenceEntry struct {
	ConnID   string `json:"connId"`
	Username string `json:"username"`
}
