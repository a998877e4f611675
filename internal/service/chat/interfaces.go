//go:generate go run go.uber.org/mock/mockgen -source=interfaces.go -destination=../../mocks/mock_chat.go -package=mocks
package chat

import (
	"context"

	"github.com/iamasit07/dm-chat/internal/domain"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

type PresenceResolver interface {
	Resolve(connID string) (string, error)
}

// MessageStore persists conversations. AppendMessage assigns msg.Seq.
// RoomMessages returns the room ordered by (timestamp, seq).
type MessageStore interface {
	AppendMessage(ctx context.Context, msg *domain.ChatMessage) error
	RoomMessages(ctx context.Context, room domain.RoomKey) ([]domain.ChatMessage, error)
}

// Deliverer writes an event to one connection. Unknown connections are a silent no-op.
type Deliverer interface {
	SendTo(connID string, msg domain.ServerMessage) error
}

// HistoryCache stores room histories under a per-room version. Get returns the version
// current at read time and Set must be given that version, so a list read before an
// Invalidate is never served after it.
type HistoryCache interface {
	Get(ctx context.Context, room domain.RoomKey) (messages []domain.ChatMessage, version int64, ok bool, err error)
	Set(ctx context.Context, room domain.RoomKey, version int64, messages []domain.ChatMessage) error
	Invalidate(ctx context.Context, room domain.RoomKey) error
}
