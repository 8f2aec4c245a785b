package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Broadcast message types pushed to connected frontends. Collections are
// always sent whole; the frontend replaces its local copy.
const (
	EventStockUpdated    = "stock.updated"
	EventListingsUpdated = "listings.updated"
	EventImportsUpdated  = "imports.updated"
	EventScanResult      = "scan.result"
)

// Envelope wraps all pushed messages
type Envelope struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// Client is one connected frontend
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub fans broadcast messages out to every connected client
type Hub struct {
	upgrader   websocket.Upgrader
	clients    map[string]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     *zap.Logger
	mu         sync.RWMutex
}

// NewHub creates the hub and starts its dispatch loop
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Single-operator tool served from the same origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("ws client connected",
				zap.String("client_id", client.id),
				zap.Int("total", total))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("ws client disconnected",
				zap.String("client_id", client.id),
				zap.Int("total", total))

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop the connection
					close(client.send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast pushes a typed message to every client
func (h *Hub) Broadcast(messageType string, data any) {
	envelope := Envelope{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		h.logger.Error("ws marshal failed",
			zap.String("type", messageType),
			zap.Error(err))
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("ws broadcast buffer full, message dropped",
			zap.String("type", messageType))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler upgrades an HTTP request to a websocket connection
func (h *Hub) Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		id:   time.Now().Format("20060102150405.000") + "-" + r.RemoteAddr,
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// readPump drains client messages; the protocol is push-only, so
// anything received is discarded, but the read loop is what detects a
// closed connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("ws read error", zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
