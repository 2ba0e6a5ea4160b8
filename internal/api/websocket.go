package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/calvinwijaya/blackjack-advisor/internal/game"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are enforced by the CORS layer
	},
}

// Message represents a WebSocket message
type Message struct {
	Type   string      `json:"type"`
	GameID string      `json:"gameId,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// inbound is what a client sends: {"type":"action","data":{"action":"hit"}}
type inbound struct {
	Type string        `json:"type"`
	Data actionRequest `json:"data"`
}

// ActionFunc runs a command received over a socket
type ActionFunc func(ctx context.Context, gameID string, req actionRequest) (game.Snapshot, bool, error)

// Client represents a connected WebSocket client
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	gameID string
	hub    *Hub
}

// Hub maintains the set of active clients and pushes game updates to them
type Hub struct {
	clients    map[*Client]bool
	games      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	actions    ActionFunc
	mu         sync.RWMutex
	log        zerolog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		games:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        logger,
	}
}

// OnAction sets the handler for actions sent by clients
func (h *Hub) OnAction(fn ActionFunc) {
	h.mu.Lock()
	h.actions = fn
	h.mu.Unlock()
}

// Run starts the hub and blocks until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if _, exists := h.games[client.gameID]; !exists {
				h.games[client.gameID] = make(map[*Client]bool)
			}
			h.games[client.gameID][client] = true
			h.mu.Unlock()
			h.log.Debug().Str("game", client.gameID).Msg("websocket client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.remove(client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove must be called with mu held
func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	if clients := h.games[client.gameID]; clients != nil {
		delete(clients, client)
		// Clean up empty games
		if len(clients) == 0 {
			delete(h.games, client.gameID)
		}
	}
}

// ClientCount returns the number of clients following a game
func (h *Hub) ClientCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}

// BroadcastToGame sends a message to every client following a game
func (h *Hub) BroadcastToGame(gameID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error().Err(err).Msg("error marshaling message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.games[gameID] {
		select {
		case client.send <- data:
		default:
			// Slow client, it gets the next update
		}
	}
}

// BroadcastGameUpdate pushes a snapshot to every client following its game
func (h *Hub) BroadcastGameUpdate(snap game.Snapshot) {
	h.BroadcastToGame(snap.ID, Message{Type: "gameUpdate", GameID: snap.ID, Data: snap})
}

// sendTo queues a message for one client if it is still registered
func (h *Hub) sendTo(client *Client, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.log.Error().Err(err).Msg("error marshaling message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[client] {
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

// ServeWS upgrades the connection and registers a client for gameID. initial
// is queued before any broadcast reaches the client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID string, initial interface{}) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		conn:   conn,
		send:   make(chan []byte, 256),
		gameID: gameID,
		hub:    h,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	welcome := Message{
		Type:   "welcome",
		GameID: gameID,
		Data: map[string]string{
			"message": "Connected to blackjack advisor",
		},
	}
	h.sendTo(client, welcome)
	if initial != nil {
		h.sendTo(client, initial)
	}

	// Start goroutines for reading and writing
	go client.readPump()
	go client.writePump()
}

func (c *Client) leave() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
}

// readPump reads commands from the connection and runs them against the game
func (c *Client) readPump() {
	defer func() {
		c.leave()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn().Err(err).Str("game", c.gameID).Msg("websocket error")
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.sendTo(c, Message{Type: "error", GameID: c.gameID, Data: map[string]string{"error": "Invalid message"}})
			continue
		}

		switch msg.Type {
		case "action":
			c.handleAction(msg.Data)
		case "ping":
			c.hub.sendTo(c, Message{Type: "pong", GameID: c.gameID})
		default:
			c.hub.sendTo(c, Message{Type: "error", GameID: c.gameID, Data: map[string]string{"error": "Unknown message type"}})
		}
	}
}

func (c *Client) handleAction(req actionRequest) {
	c.hub.mu.RLock()
	actions := c.hub.actions
	c.hub.mu.RUnlock()

	if actions == nil {
		return
	}

	snap, applied, err := actions(context.Background(), c.gameID, req)
	if err != nil {
		text := "Action failed"
		if errors.Is(err, game.ErrUnknownCommand) {
			text = "Unknown action"
		}
		c.hub.sendTo(c, Message{Type: "error", GameID: c.gameID, Data: map[string]string{"error": text}})
		return
	}

	// Applied commands reach every client through the table's publisher
	if !applied {
		c.hub.sendTo(c, Message{Type: "gameUpdate", GameID: c.gameID, Data: snap})
	}
}

// writePump pumps messages from the hub to the WebSocket connection
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame
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
