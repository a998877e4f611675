package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestIDsAreUniqueUUIDs(t *testing.T) {
	req := require.New(t)
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		for _, id := range []string{NewConnectionID(), NewMessageID()} {
			_, err := uuid.Parse(id)
			req.NoError(err)
			_, dup := seen[id]
			req.False(dup)
			seen[id] = struct{}{}
		}
	}
}

func TestNewMessageID_IsVersion7(t *testing.T) {
	id := uuid.MustParse(NewMessageID())
	require.Equal(t, uuid.Version(7), id.Version())
}
