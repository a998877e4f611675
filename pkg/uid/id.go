package uid

import (
	"github.com/google/uuid"
)

// NewConnectionID identifies a websocket connection for its lifetime
func NewConnectionID() string {
	return uuid.NewString()
}

// NewMessageID returns a time ordered (v7) id so ids sort roughly like timestamps.
// Falls back to a random v4 id if the v7 generator fails.
func NewMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
