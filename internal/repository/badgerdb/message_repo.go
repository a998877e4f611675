package badgerdb

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/iamasit07/dm-chat/internal/domain"
	"github.com/samber/lo"
)

type messageRecord struct {
	ID     string `json:"id"`
	Sender string `json:"sender"`
	Body   string `json:"body"`
	At     int64  `json:"at"`
	Seq    int64  `json:"seq"`
}

// MessageRepo is the embedded chat store.
//
// Keys are "msg:{hex(room)}:{unixnano, 19 digits}:{seq, 19 digits}". Zero padding makes the
// lexicographic key order equal to (timestamp, seq) order, so a forward prefix scan returns a
// conversation already sorted. The room is hex encoded so no username can extend another room's prefix.
type MessageRepo struct {
	store *Store
}

func NewMessageRepo(store *Store) *MessageRepo {
	return &MessageRepo{store: store}
}

func roomPrefix(room domain.RoomKey) []byte {
	return []byte("msg:" + hex.EncodeToString([]byte(room.String())) + ":")
}

func messageKey(room domain.RoomKey, at time.Time, seq int64) []byte {
	return append(roomPrefix(room), fmt.Sprintf("%019d:%019d", at.UnixNano(), seq)...)
}

func (r *MessageRepo) AppendMessage(_ context.Context, msg *domain.ChatMessage) error {
	seq, err := next(r.store.msgSeq)
	if err != nil {
		return translate(err)
	}
	msg.Seq = seq
	msg.Timestamp = msg.Timestamp.UTC()

	data, err := json.Marshal(lo.ToPtr(fromChatMessage(*msg)))
	if err != nil {
		return err
	}
	err = r.store.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(msg.Room, msg.Timestamp, seq), data)
	})
	return translate(err)
}

// RoomMessages scans the room prefix forward, oldest first.
func (r *MessageRepo) RoomMessages(_ context.Context, room domain.RoomKey) ([]domain.ChatMessage, error) {
	messages := make([]domain.ChatMessage, 0)
	err := r.store.db.View(func(txn *badger.Txn) error {
		prefix := roomPrefix(room)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec messageRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			messages = append(messages, toChatMessage(room, rec))
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return messages, nil
}

func fromChatMessage(msg domain.ChatMessage) messageRecord {
	return messageRecord{
		ID:     msg.ID,
		Sender: msg.Sender,
		Body:   msg.Body,
		At:     msg.Timestamp.UnixNano(),
		Seq:    msg.Seq,
	}
}

func toChatMessage(room domain.RoomKey, rec messageRecord) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        rec.ID,
		Room:      room,
		Sender:    rec.Sender,
		Body:      rec.Body,
		Timestamp: time.Unix(0, rec.At).UTC(),
		Seq:       rec.Seq,
	}
}
