package domain

import "time"

// ChatMessage is immutable once persisted.
// Seq is assigned by the store and breaks ties between equal timestamps.
type ChatMessage struct {
	ID        string    `json:"id"`
	Room      RoomKey   `json:"room"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	Seq       int64     `json:"seq"`
}

// Before orders messages by timestamp, then by store sequence.
func (m ChatMessage) Before(other ChatMessage) bool {
	if !m.Timestamp.Equal(other.Timestamp) {
		return m.Timestamp.Before(other.Timestamp)
	}
	return m.Seq < other.Seq
}
