package domain

import "time"

// inbound event types
const (
	EventAuth           = "auth"
	EventGetHistory     = "get_history"
	EventPrivateMessage = "private_message"
)

// auth actions
const (
	ActionRegister = "register"
	ActionLogin    = "login"
)

// outbound event types
const (
	EventWelcome      = "welcome"
	EventAuthSuccess  = "auth_success"
	EventLoginSuccess = "login_success"
	EventUserList     = "user_list"
	EventLoadHistory  = "load_history"
	EventChatMessage  = "chat_message"
	EventAuthError    = "auth_error"
)

// ClientMessage is every frame a client may send. Unused fields stay empty.
type ClientMessage struct {
	Type           string `json:"type"`
	Action         string `json:"action,omitempty"`
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty"`
	Token          string `json:"token,omitempty"`
	TargetUsername string `json:"targetUsername,omitempty"`
	TargetConnID   string `json:"targetConnId,omitempty"`
	Body           string `json:"body,omitempty"`
}

type ServerMessage struct {
	Type     string            `json:"type"`
	Message  string            `json:"message,omitempty"`
	Code     string            `json:"code,omitempty"`
	ConnID   string            `json:"connId,omitempty"`
	Token    string            `json:"token,omitempty"`
	Username string            `json:"username,omitempty"`
	Users    map[string]string `json:"users"`
	Messages []ChatMessage     `json:"messages"`
	Chat     *ChatPayload      `json:"chat,omitempty"`
}

// ChatPayload is what a recipient (or the echoed sender) sees of a message.
type ChatPayload struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
	IsMe      bool      `json:"isMe,omitempty"`
}

func NewChatPayload(msg ChatMessage, isMe bool) *ChatPayload {
	return &ChatPayload{
		ID:        msg.ID,
		Room:      msg.Room.String(),
		Sender:    msg.Sender,
		Body:      msg.Body,
		Timestamp: msg.Timestamp,
		IsMe:      isMe,
	}
}

// ErrorReply converts any handler error into the single reply sent back to its origin.
func ErrorReply(err error) ServerMessage {
	return ServerMessage{
		Type:    EventAuthError,
		Message: Reason(err),
		Code:    ErrorCode(err),
	}
}
