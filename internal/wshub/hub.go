package wshub

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"aimtrainer/internal/events"
	"aimtrainer/internal/gamedata"
	"aimtrainer/internal/input"
	"aimtrainer/internal/sensitivity"

	"github.com/coder/websocket"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxFrameDT caps a client-reported frame so a stalled tab cannot skip a phase.
const MaxFrameDT = 250 * time.Millisecond

// ClientMessage is the JSON structure received from clients.
type ClientMessage struct {
	Type     string                       `json:"t"`
	DT       float64                      `json:"dt,omitempty"` // milliseconds
	DX       float32                      `json:"dx,omitempty"`
	DY       float32                      `json:"dy,omitempty"`
	Fire     bool                         `json:"fire,omitempty"`
	FireHeld bool                         `json:"fireHeld,omitempty"`
	Keys     []string                     `json:"keys,omitempty"`
	Held     []string                     `json:"held,omitempty"`
	Curve    *sensitivity.CurveParameters `json:"curve,omitempty"`
	Profile  string                       `json:"profile,omitempty"`
}

// Frame converts a "frame" message into simulation input.
func (m ClientMessage) Frame() input.Frame {
	dt := time.Duration(m.DT * float64(time.Millisecond))
	dt = min(max(dt, 0), MaxFrameDT)
	f := input.Frame{
		DT:          dt,
		Mouse:       mgl32.Vec2{m.DX, m.DY},
		FirePressed: m.Fire,
		FireHeld:    m.FireHeld,
	}
	for _, k := range m.Keys {
		f.Pressed = append(f.Pressed, input.Key(k))
	}
	for _, k := range m.Held {
		f.Held = append(f.Held, input.Key(k))
	}
	return f
}

// ServerMessage is the JSON structure sent to clients.
type ServerMessage struct {
	Type     string                   `json:"t"`
	PlayerID string                   `json:"id,omitempty"`
	Name     string                   `json:"n,omitempty"`
	Color    string                   `json:"c,omitempty"`
	State    *gamedata.Snapshot       `json:"s,omitempty"`
	Phase    *events.PhaseChangeEvent `json:"phase,omitempty"`
	Error    string                   `json:"err,omitempty"`
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	PlayerID string
	Name     string
	Color    string
	Conn     *websocket.Conn
	Send     chan []byte
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

// Hub manages per-room WebSocket connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	closed  bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client and tells everyone else it joined.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(c.Send)
		return
	}
	h.clients[c.PlayerID] = c
	h.mu.Unlock()

	h.BroadcastExcept(c.PlayerID, ServerMessage{
		Type:     "join",
		PlayerID: c.PlayerID,
		Name:     c.Name,
		Color:    c.Color,
	})
}

// Unregister removes a client and closes its Send channel, then broadcasts a leave message.
func (h *Hub) Unregister(playerID string) {
	h.mu.Lock()
	c, ok := h.clients[playerID]
	if ok {
		close(c.Send)
		delete(h.clients, playerID)
	}
	h.mu.Unlock()

	if ok {
		h.BroadcastExcept(playerID, ServerMessage{
			Type:     "leave",
			PlayerID: playerID,
		})
	}
}

// Close drops every client and tears down their connections. Clients
// registered afterwards are closed immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		close(c.Send)
		if c.Conn != nil {
			c.Conn.CloseNow()
		}
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to every client.
func (h *Hub) Broadcast(msg ServerMessage) {
	h.BroadcastExcept("", msg)
}

// BroadcastExcept sends a message to all clients except the sender. Non-blocking: drops if channel full.
func (h *Hub) BroadcastExcept(senderID string, msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WSHub] Marshal error: %v\n", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, c := range h.clients {
		if id == senderID {
			continue
		}
		select {
		case c.Send <- data:
		default:
			// Drop message if channel full
		}
	}
}

// SendTo delivers a message to one client, dropping it if the client is busy.
func (h *Hub) SendTo(playerID string, msg ServerMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WSHub] Marshal error: %v\n", err)
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[playerID]
	if !ok {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}
