package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iamasit07/dm-chat/internal/domain"
	"github.com/iamasit07/dm-chat/pkg/uid"
	"github.com/rs/zerolog"
)

const DefaultMaxMessageLength = 4000

// Router delivers private messages between two live connections.
type Router struct {
	verifier  TokenVerifier
	presence  PresenceResolver
	store     MessageStore
	deliverer Deliverer
	cache     HistoryCache

	maxLen int
	now    func() time.Time
	newID  func() string
	log    zerolog.Logger
}

type RouterOption func(*Router)

// WithCache enables invalidation of the cached history on every send.
func WithCache(cache HistoryCache) RouterOption {
	return func(r *Router) { r.cache = cache }
}

func WithMaxLength(n int) RouterOption {
	return func(r *Router) {
		if n > 0 {
			r.maxLen = n
		}
	}
}

func WithRouterClock(now func() time.Time) RouterOption {
	return func(r *Router) { r.now = now }
}

func WithRouterLogger(log zerolog.Logger) RouterOption {
	return func(r *Router) { r.log = log }
}

func NewRouter(verifier TokenVerifier, presence PresenceResolver, store MessageStore, deliverer Deliverer, opts ...RouterOption) *Router {
	r := &Router{
		verifier:  verifier,
		presence:  presence,
		store:     store,
		deliverer: deliverer,
		maxLen:    DefaultMaxMessageLength,
		now:       time.Now,
		newID:     uid.NewMessageID,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Send authenticates the sender by token, persists the message in the pair's room and
// delivers it to the target connection plus an echo to the sender connection.
// Nothing is persisted or delivered when the target is offline, and nothing is delivered
// when persistence fails.
func (r *Router) Send(ctx context.Context, senderConnID, token, targetConnID, body string) (*domain.ChatMessage, error) {
	sender, err := r.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(body) == "" {
		return nil, domain.ErrEmptyMessage
	}
	if utf8.RuneCountInString(body) > r.maxLen {
		return nil, fmt.Errorf("%w: limit is %d characters", domain.ErrMessageTooLong, r.maxLen)
	}

	target, err := r.presence.Resolve(targetConnID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTargetOffline, targetConnID)
		}
		return nil, err
	}

	room, err := domain.CanonicalRoom(sender, target)
	if err != nil {
		return nil, err
	}

	msg := &domain.ChatMessage{
		ID:        r.newID(),
		Room:      room,
		Sender:    sender,
		Body:      body,
		Timestamp: r.now().UTC(),
	}
	if err := r.store.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	r.invalidate(ctx, room)
	r.deliver(targetConnID, domain.ServerMessage{Type: domain.EventChatMessage, Chat: domain.NewChatPayload(*msg, false)})
	if senderConnID != targetConnID {
		r.deliver(senderConnID, domain.ServerMessage{Type: domain.EventChatMessage, Chat: domain.NewChatPayload(*msg, true)})
	}

	r.log.Debug().
		Str("room", room.String()).
		Str("sender", sender).
		Str("message_id", msg.ID).
		Msg("message routed")
	return msg, nil
}

// deliver logs write failures; the message is already persisted at this point.
func (r *Router) deliver(connID string, msg domain.ServerMessage) {
	if err := r.deliverer.SendTo(connID, msg); err != nil {
		r.log.Warn().Err(err).Str("conn_id", connID).Msg("delivery failed")
	}
}

func (r *Router) invalidate(ctx context.Context, room domain.RoomKey) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, room); err != nil {
		r.log.Warn().Err(err).Str("room", room.String()).Msg("history cache invalidation failed")
	}
}
