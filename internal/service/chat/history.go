package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/iamasit07/dm-chat/internal/domain"
	"github.com/rs/zerolog"
)

// HistoryService reads the conversation between the token holder and another user.
type HistoryService struct {
	verifier TokenVerifier
	store    MessageStore
	cache    HistoryCache
	log      zerolog.Logger
}

func NewHistoryService(verifier TokenVerifier, store MessageStore, cache HistoryCache, log zerolog.Logger) *HistoryService {
	return &HistoryService{verifier: verifier, store: store, cache: cache, log: log}
}

// History returns every message of the room ordered by (timestamp, seq), oldest first.
// An empty room yields an empty, non-nil slice.
func (s *HistoryService) History(ctx context.Context, token, targetUsername string) ([]domain.ChatMessage, error) {
	requester, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	room, err := domain.CanonicalRoom(requester, targetUsername)
	if err != nil {
		return nil, err
	}

	// the cache is only filled when its version was read before the store
	cacheable := false
	var version int64
	if s.cache != nil {
		cached, ver, ok, err := s.cache.Get(ctx, room)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("room", room.String()).Msg("history cache read failed")
		case ok:
			return cached, nil
		default:
			cacheable = true
			version = ver
		}
	}

	messages, err := s.store.RoomMessages(ctx, room)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if messages == nil {
		messages = make([]domain.ChatMessage, 0)
	}
	sort.SliceStable(messages, func(i, j int) bool { return messages[i].Before(messages[j]) })

	if cacheable {
		if err := s.cache.Set(ctx, room, version, messages); err != nil {
			s.log.Warn().Err(err).Str("room", room.String()).Msg("history cache write failed")
		}
	}
	return messages, nil
}
