package wshub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"cribscore/internal/events"
	"cribscore/internal/scoring"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

// Client message types.
const (
	TypeAdd       = "add"
	TypeCommit    = "commit"
	TypeReset     = "reset"
	TypeResetWins = "resetWins"
	TypeSwitch    = "switch"
	TypeCreate    = "create"
)

// Server message types.
const (
	TypeState = "state"
	TypeError = "error"
)

// ClientMessage is the JSON structure received from clients.
type ClientMessage struct {
	Type   string `json:"t"`
	Player int    `json:"p,omitempty"`
	Delta  int    `json:"d,omitempty"`
	GameID string `json:"id,omitempty"`
	Name   string `json:"n,omitempty"`
}

// ServerMessage is the JSON structure sent to clients.
type ServerMessage struct {
	Type   string         `json:"t"`
	Action string         `json:"a,omitempty"`
	State  *scoring.State `json:"s,omitempty"`
	Win    *scoring.Win   `json:"w,omitempty"`
	Error  string         `json:"e,omitempty"`
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub tracks connected scoreboards and pushes every state change to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  logrus.FieldLogger
}

// NewHub creates a new Hub.
func NewHub(logger logrus.FieldLogger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger.WithField("component", "wshub"),
	}
}

// Relay pushes each change on bus to every client until the subscription
// is closed. Every push carries the full state, so a client that missed
// one on a full buffer catches up on the next.
func (h *Hub) Relay(bus *events.Bus[scoring.Change]) {
	changes := bus.Subscribe()
	go func() {
		for ch := range changes {
			st := ch.State
			h.Broadcast(ServerMessage{Type: TypeState, Action: string(ch.Action), State: &st, Win: ch.Win})
		}
	}()
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		close(c.Send)
		delete(h.clients, id)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to all clients. Non-blocking: drops if channel full.
func (h *Hub) Broadcast(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Error("marshal error")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.Send <- data:
		default:
			// Drop message if channel full
		}
	}
}

// SendTo queues a message for one client only.
func (h *Hub) SendTo(id string, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Error("marshal error")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[id]; ok {
		select {
		case c.Send <- data:
		default:
		}
	}
}

// Apply runs a client message against the session. The resulting state
// reaches clients through the bus, not through the return value.
func Apply(ctx context.Context, s *scoring.Session, msg ClientMessage) (scoring.State, error) {
	switch msg.Type {
	case TypeAdd:
		return s.AddFloatingScore(ctx, scoring.Player(msg.Player), msg.Delta)
	case TypeCommit:
		return s.CommitFloatingScore(ctx, scoring.Player(msg.Player))
	case TypeReset:
		return s.ResetGame(ctx)
	case TypeResetWins:
		return s.ResetGamesWon(ctx)
	case TypeSwitch:
		return s.SwitchToGame(ctx, msg.GameID)
	case TypeCreate:
		return s.CreateGame(ctx, msg.Name)
	default:
		return s.State(), fmt.Errorf("unknown message type %q", msg.Type)
	}
}
