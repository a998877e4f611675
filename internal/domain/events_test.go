package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServerMessage_EmptyListsStayOnTheWire(t *testing.T) {
	req := require.New(t)

	data, err := json.Marshal(ServerMessage{Type: EventLoadHistory, Messages: []ChatMessage{}})
	req.NoError(err)
	req.Contains(string(data), `"messages":[]`)

	data, err = json.Marshal(ServerMessage{Type: EventUserList, Users: map[string]string{}})
	req.NoError(err)
	req.Contains(string(data), `"users":{}`)
}
