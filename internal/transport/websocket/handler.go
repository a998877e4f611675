package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iamasit07/dm-chat/internal/domain"
	"github.com/iamasit07/dm-chat/internal/service/presence"
	"github.com/iamasit07/dm-chat/pkg/uid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const (
	pongWait    = 60 * time.Second
	pingPeriod  = 30 * time.Second
	maxFrameLen = 64 * 1024
)

type Authenticator interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
}

type MessageRouter interface {
	Send(ctx context.Context, senderConnID, token, targetConnID, body string) (*domain.ChatMessage, error)
}

type HistoryReader interface {
	History(ctx context.Context, token, targetUsername string) ([]domain.ChatMessage, error)
}

// Handler owns the websocket lifecycle: identity allocation, the per-connection read loop
// and presence cleanup on disconnect.
type Handler struct {
	ctx      context.Context
	conns    *ConnectionManager
	presence *presence.Registry
	auth     Authenticator
	router   MessageRouter
	history  HistoryReader
	upgrader websocket.Upgrader
	log      zerolog.Logger

	// held across snapshot and enqueue so user_list frames never overtake each other
	broadcastMu sync.Mutex
}

// NewHandler wires the websocket endpoint. Event handling runs under ctx, not under the
// connection, so a store write in flight finishes even if its client goes away.
func NewHandler(ctx context.Context, cm *ConnectionManager, reg *presence.Registry, auth Authenticator, router MessageRouter, history HistoryReader, allowedOrigins []string, log zerolog.Logger) *Handler {
	return &Handler{
		ctx:      ctx,
		conns:    cm,
		presence: reg,
		auth:     auth,
		router:   router,
		history:  history,
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}
}

// originChecker accepts requests without an Origin header (non browser clients) and listed origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return lo.Contains(allowed, "*") || lo.Contains(allowed, origin)
	}
}

// HandleWebSocket upgrades the request and serves the connection until it closes.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("upgrade failed")
		return
	}
	h.handleConnection(conn, r.RemoteAddr)
}

func (h *Handler) handleConnection(conn *websocket.Conn, remote string) {
	connID := uid.NewConnectionID()
	log := h.log.With().Str("conn_id", connID).Logger()

	conn.SetReadLimit(maxFrameLen)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.conns.Add(connID, conn)
	log.Info().Str("remote", remote).Msg("connection opened")

	defer func() {
		h.disconnect(connID)
		log.Info().Msg("connection closed")
	}()

	h.reply(connID, domain.ServerMessage{Type: domain.EventWelcome, ConnID: connID})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("client disconnected unexpectedly")
			}
			return
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.fail(connID, "", domain.ErrBadRequest)
			continue
		}
		h.processMessage(connID, msg)
	}
}

// processMessage handles one client event. Every error ends up as a single reply to connID.
func (h *Handler) processMessage(connID string, msg domain.ClientMessage) {
	switch msg.Type {
	case domain.EventAuth:
		h.handleAuth(connID, msg)

	case domain.EventGetHistory:
		messages, err := h.history.History(h.ctx, msg.Token, msg.TargetUsername)
		if err != nil {
			h.fail(connID, msg.Type, err)
			return
		}
		h.reply(connID, domain.ServerMessage{Type: domain.EventLoadHistory, Messages: messages})

	case domain.EventPrivateMessage:
		// the router delivers to both ends itself
		if _, err := h.router.Send(h.ctx, connID, msg.Token, msg.TargetConnID, msg.Body); err != nil {
			h.fail(connID, msg.Type, err)
		}

	default:
		h.fail(connID, msg.Type, domain.ErrBadRequest)
	}
}

func (h *Handler) handleAuth(connID string, msg domain.ClientMessage) {
	switch msg.Action {
	case domain.ActionRegister:
		if err := h.auth.Register(h.ctx, msg.Username, msg.Password); err != nil {
			h.fail(connID, msg.Type, err)
			return
		}
		h.reply(connID, domain.ServerMessage{Type: domain.EventAuthSuccess, Message: "registration successful", Username: msg.Username})

	case domain.ActionLogin:
		token, err := h.auth.Login(h.ctx, msg.Username, msg.Password)
		if err != nil {
			h.fail(connID, msg.Type, err)
			return
		}
		h.presence.Register(connID, msg.Username)
		h.reply(connID, domain.ServerMessage{Type: domain.EventLoginSuccess, Token: token, Username: msg.Username})
		h.broadcastUserList()

	default:
		h.fail(connID, msg.Type, domain.ErrBadRequest)
	}
}

func (h *Handler) disconnect(connID string) {
	h.conns.Remove(connID)
	if h.presence.Remove(connID) {
		h.broadcastUserList()
	}
}

func (h *Handler) broadcastUserList() {
	h.broadcastMu.Lock()
	defer h.broadcastMu.Unlock()
	h.conns.Broadcast(domain.ServerMessage{Type: domain.EventUserList, Users: h.presence.Snapshot()})
}

func (h *Handler) reply(connID string, msg domain.ServerMessage) {
	if err := h.conns.SendTo(connID, msg); err != nil {
		h.log.Debug().Err(err).Str("conn_id", connID).Str("type", msg.Type).Msg("write failed")
	}
}

func (h *Handler) fail(connID, event string, err error) {
	reply := domain.ErrorReply(err)
	entry := h.log.Warn()
	if reply.Code == domain.CodeInternal || reply.Code == domain.CodeStoreUnavailable || reply.Code == domain.CodePersistence {
		entry = h.log.Error()
	}
	entry.Err(err).Str("conn_id", connID).Str("event", event).Str("code", reply.Code).Msg("event failed")
	h.reply(connID, reply)
}
