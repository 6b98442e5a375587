package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/ginrummy/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	sendBuffer = 64
)

// client is one WebSocket watching a match. A player of -1 receives the
// full state, otherwise that player's view.
type client struct {
	conn      *websocket.Conn
	send      chan []byte
	player    int
	done      chan struct{}
	closeOnce sync.Once
	logger    *log.Logger
}

func newClient(conn *websocket.Conn, player int, logger *log.Logger) *client {
	return &client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		player: player,
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// readPump discards client frames; it exists to process pongs and notice
// the peer going away.
func (c *client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket error", "error", err)
			}
			return
		}
	}
}

// writePump delivers queued messages and pings until the client closes.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			// flush what is already queued, then say goodbye
			for {
				select {
				case payload := <-c.send:
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
						return
					}
				default:
					_ = c.conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
						time.Now().Add(writeWait))
					return
				}
			}
		}
	}
}

// hub fans match snapshots out to the clients of one session
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	logger  *log.Logger
}

func newHub(logger *log.Logger) *hub {
	return &hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.logger.Debug("Client connected", "player", c.player, "total", len(h.clients))
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
		h.logger.Debug("Client disconnected", "player", c.player, "total", len(h.clients))
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast sends each client its own snapshot of m. Slow clients whose
// buffer is full are dropped.
func (h *hub) broadcast(msgType MessageType, m *game.Match) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !h.enqueue(c, msgType, m) {
			h.logger.Warn("Client send buffer full, dropping client", "player", c.player)
			delete(h.clients, c)
			c.close()
		}
	}
}

// send queues a single snapshot for c
func (h *hub) send(c *client, msgType MessageType, m *game.Match) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enqueue(c, msgType, m)
}

func (h *hub) enqueue(c *client, msgType MessageType, m *game.Match) bool {
	msg, err := NewMessage(msgType, snapshot(m, c.player))
	if err != nil {
		h.logger.Error("Failed to encode message", "error", err)
		return true
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode message", "error", err)
		return true
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// closeAll notifies and disconnects every client
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	closed, _ := NewMessage(MessageTypeClosed, nil)
	payload, _ := json.Marshal(closed)
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
		}
		c.close()
		delete(h.clients, c)
	}
}

// snapshot returns the full state for player -1, otherwise that
// player's view.
func snapshot(m *game.Match, player int) any {
	if player < 0 {
		return m.State()
	}
	return m.View(player)
}
