package badgerdb

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/iamasit07/dm-chat/internal/domain"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	store, err := NewStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("should create and fetch a user", func(t *testing.T) {
		req := require.New(t)
		repo := NewUserRepo(newTestStore(t))

		created, err := repo.CreateUser(ctx, "alice", "hash")
		req.NoError(err)
		req.Positive(created.ID)

		got, err := repo.GetUserByUsername(ctx, "alice")
		req.NoError(err)
		req.Equal(created.ID, got.ID)
		req.Equal("hash", got.PasswordHash)
	})

	t.Run("should reject a duplicate username", func(t *testing.T) {
		req := require.New(t)
		repo := NewUserRepo(newTestStore(t))

		_, err := repo.CreateUser(ctx, "alice", "hash")
		req.NoError(err)
		_, err = repo.CreateUser(ctx, "alice", "other")
		req.ErrorIs(err, domain.ErrDuplicateUser)

		got, err := repo.GetUserByUsername(ctx, "alice")
		req.NoError(err)
		req.Equal("hash", got.PasswordHash)
	})

	t.Run("should return not found for unknown users", func(t *testing.T) {
		_, err := NewUserRepo(newTestStore(t)).GetUserByUsername(ctx, "ghost")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("should let exactly one concurrent registration win", func(t *testing.T) {
		req := require.New(t)
		repo := NewUserRepo(newTestStore(t))

		var wg sync.WaitGroup
		results := make(chan error, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := repo.CreateUser(ctx, "bob", fmt.Sprintf("hash-%d", i))
				results <- err
			}(i)
		}
		wg.Wait()
		close(results)

		wins := 0
		for err := range results {
			if err == nil {
				wins++
				continue
			}
			req.ErrorIs(err, domain.ErrDuplicateUser)
		}
		req.Equal(1, wins)
	})
}

func TestMessageRepo(t *testing.T) {
	ctx := context.Background()
	alicebob := domain.RoomKey{Low: "alice", High: "bob"}

	t.Run("should return messages ordered by timestamp then sequence", func(t *testing.T) {
		req := require.New(t)
		repo := NewMessageRepo(newTestStore(t))
		at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

		// inserted out of time order, two share a timestamp
		inputs := []struct {
			id string
			at time.Time
		}{
			{"late", at.Add(time.Second)},
			{"tie-1", at},
			{"tie-2", at},
		}
		for _, in := range inputs {
			msg := &domain.ChatMessage{ID: in.id, Room: alicebob, Sender: "alice", Body: in.id, Timestamp: in.at}
			req.NoError(repo.AppendMessage(ctx, msg))
			req.Positive(msg.Seq)
		}

		msgs, err := repo.RoomMessages(ctx, alicebob)
		req.NoError(err)
		req.Len(msgs, 3)
		req.Equal([]string{"tie-1", "tie-2", "late"}, []string{msgs[0].ID, msgs[1].ID, msgs[2].ID})
		for i := 1; i < len(msgs); i++ {
			req.True(msgs[i-1].Before(msgs[i]))
		}
		req.True(msgs[0].Timestamp.Equal(at))
		req.Equal(alicebob, msgs[0].Room)

		again, err := repo.RoomMessages(ctx, alicebob)
		req.NoError(err)
		req.Equal(msgs, again)
	})

	t.Run("should return an empty slice for an unknown room", func(t *testing.T) {
		req := require.New(t)
		msgs, err := NewMessageRepo(newTestStore(t)).RoomMessages(ctx, domain.RoomKey{Low: "carol", High: "dave"})
		req.NoError(err)
		req.NotNil(msgs)
		req.Empty(msgs)
	})

	t.Run("should keep rooms with colliding prefixes apart", func(t *testing.T) {
		req := require.New(t)
		repo := NewMessageRepo(newTestStore(t))
		short := domain.RoomKey{Low: "a1", High: "b1"}
		long := domain.RoomKey{Low: "a1", High: "b1:x"}

		req.NoError(repo.AppendMessage(ctx, &domain.ChatMessage{ID: "1", Room: short, Sender: "a1", Body: "x", Timestamp: time.Now()}))
		req.NoError(repo.AppendMessage(ctx, &domain.ChatMessage{ID: "2", Room: long, Sender: "a1", Body: "y", Timestamp: time.Now()}))

		msgs, err := repo.RoomMessages(ctx, short)
		req.NoError(err)
		req.Len(msgs, 1)
		req.Equal("1", msgs[0].ID)
	})
}

func TestOpen_InMemory(t *testing.T) {
	req := require.New(t)
	store, err := Open("")
	req.NoError(err)
	defer func() { req.NoError(store.Close()) }()

	_, err = NewUserRepo(store).CreateUser(context.Background(), "alice", "hash")
	req.NoError(err)
}
