package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/iamasit07/dm-chat/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lifecycle(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	_, err := r.Resolve("c1")
	req.ErrorIs(err, domain.ErrNotFound)

	r.Register("c1", "alice")
	username, err := r.Resolve("c1")
	req.NoError(err)
	req.Equal("alice", username)

	req.True(r.Remove("c1"))
	req.False(r.Remove("c1"))
	_, err = r.Resolve("c1")
	req.ErrorIs(err, domain.ErrNotFound)
	req.Zero(r.Len())
}

func TestRegistry_LastLoginWins(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	r.Register("c1", "alice")
	r.Register("c1", "bob")

	username, err := r.Resolve("c1")
	req.NoError(err)
	req.Equal("bob", username)
	req.Equal(1, r.Len())
}

func TestRegistry_MultipleConnectionsPerUser(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	r.Register("c2", "alice")
	r.Register("c1", "alice")
	r.Register("c3", "bob")

	req.Equal([]string{"alice", "bob"}, r.Online())
	req.Equal([]string{"c1", "c2"}, r.ConnectionsOf("alice"))
	req.Equal([]domain.PresenceEntry{
		{ConnID: "c1", Username: "alice"},
		{ConnID: "c2", Username: "alice"},
		{ConnID: "c3", Username: "bob"},
	}, r.Entries())

	r.Remove("c1")
	req.Equal([]string{"alice", "bob"}, r.Online())
	r.Remove("c2")
	req.Equal([]string{"bob"}, r.Online())
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	r.Register("c1", "alice")

	snap := r.Snapshot()
	snap["c2"] = "mallory"
	delete(snap, "c1")

	req.Equal(map[string]string{"c1": "alice"}, r.Snapshot())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			r.Register(id, fmt.Sprintf("user%d", i%5))
			_, _ = r.Resolve(id)
			_ = r.Snapshot()
			_ = r.Online()
			if i%2 == 0 {
				r.Remove(id)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 25, r.Len())
	require.Len(t, r.Online(), 5)
}
