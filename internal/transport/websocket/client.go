package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iamasit07/dm-chat/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

var ErrSendQueueFull = errors.New("send queue full")

// connection owns one socket. Only writePump writes to it, so frames reach the peer
// in the order they were queued.
type connection struct {
	conn      *websocket.Conn
	send      chan domain.ServerMessage
	done      chan struct{}
	closeOnce sync.Once
	closeMsg  []byte
}

func newConnection(conn *websocket.Conn) *connection {
	return &connection{
		conn: conn,
		send: make(chan domain.ServerMessage, sendBuffer),
		done: make(chan struct{}),
	}
}

// ConnectionManager tracks open sockets by connection id.
type ConnectionManager struct {
	mu          sync.RWMutex
	connections map[string]*connection
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{connections: make(map[string]*connection)}
}

// Add registers conn and starts its writer.
func (cm *ConnectionManager) Add(connID string, conn *websocket.Conn) {
	c := newConnection(conn)

	cm.mu.Lock()
	old, exists := cm.connections[connID]
	cm.connections[connID] = c
	cm.mu.Unlock()

	if exists {
		old.shutdown(nil)
	}
	go c.writePump()
}

// Remove closes and forgets the connection. Unknown ids are ignored.
func (cm *ConnectionManager) Remove(connID string) {
	cm.mu.Lock()
	c, exists := cm.connections[connID]
	delete(cm.connections, connID)
	cm.mu.Unlock()

	if exists {
		c.shutdown(nil)
	}
}

// SendTo queues msg for connID. A connection that is already gone is a silent no-op.
// A peer that stops reading is dropped once its queue is full.
func (cm *ConnectionManager) SendTo(connID string, msg domain.ServerMessage) error {
	cm.mu.RLock()
	c, exists := cm.connections[connID]
	cm.mu.RUnlock()
	if !exists {
		return nil
	}
	return c.enqueue(msg)
}

// Broadcast queues msg on every open connection. Two Broadcast calls made one after the
// other arrive in that order on every connection.
func (cm *ConnectionManager) Broadcast(msg domain.ServerMessage) {
	cm.mu.RLock()
	conns := make([]*connection, 0, len(cm.connections))
	for _, c := range cm.connections {
		conns = append(conns, c)
	}
	cm.mu.RUnlock()

	for _, c := range conns {
		_ = c.enqueue(msg)
	}
}

func (cm *ConnectionManager) IDs() []string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	ids := make([]string, 0, len(cm.connections))
	for id := range cm.connections {
		ids = append(ids, id)
	}
	return ids
}

func (cm *ConnectionManager) Len() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections)
}

// CloseAll sends a going-away close frame to every connection and drops them.
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	conns := cm.connections
	cm.connections = make(map[string]*connection)
	cm.mu.Unlock()

	goingAway := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, c := range conns {
		c.shutdown(goingAway)
	}
}

func (c *connection) enqueue(msg domain.ServerMessage) error {
	select {
	case <-c.done:
		return nil
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.done:
		return nil
	default:
		c.shutdown(nil)
		return ErrSendQueueFull
	}
}

// shutdown stops the writer. closeMsg, when set, is sent as a close frame first.
func (c *connection) shutdown(closeMsg []byte) {
	c.closeOnce.Do(func() {
		c.closeMsg = closeMsg
		close(c.done)
	})
}

// writePump drains the queue and keeps the peer alive with pings. It closes the socket on
// exit, which also ends the read loop.
func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.shutdown(nil)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown(nil)
				return
			}

		case <-c.done:
			if c.closeMsg != nil {
				_ = c.conn.WriteControl(websocket.CloseMessage, c.closeMsg, time.Now().Add(writeWait))
			}
			return
		}
	}
}
