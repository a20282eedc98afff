package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Client message types
const (
	MsgJoinQueue    MessageType = "join_queue"
	MsgLeaveQueue   MessageType = "leave_queue"
	MsgSubmitAnswer MessageType = "submit_answer"
	MsgVote         MessageType = "vote"
)

// Server message types the hub itself emits; game events pass through Send
// with their own type strings.
const (
	MsgError MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections keyed by connection id
type Hub struct {
	conns map[string]*Connection

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	outbound   chan *OutboundMessage
}

// Connection represents a WebSocket connection
type Connection struct {
	ID   string
	Send chan []byte
	Hub  *Hub
}

// OutboundMessage targets one connection
type OutboundMessage struct {
	ConnID  string
	Message *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		outbound:   make(chan *OutboundMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn.ID] = conn
			h.mu.Unlock()
			log.Printf("[WS] connection %s registered", conn.ID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if existing, ok := h.conns[conn.ID]; ok && existing == conn {
				delete(h.conns, conn.ID)
				close(conn.Send)
				log.Printf("[WS] connection %s unregistered", conn.ID)
			}
			h.mu.Unlock()

		case msg := <-h.outbound:
			h.mu.RLock()
			if conn, ok := h.conns[msg.ConnID]; ok {
				data, _ := json.Marshal(msg.Message)
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Send delivers an event to one connection (implements service.Sender).
// Delivery is non-blocking; a slow consumer loses messages rather than
// stalling the game.
func (h *Hub) Send(connID string, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WS] marshal failed for %s event %s: %v", connID, event, err)
		return
	}
	h.outbound <- &OutboundMessage{
		ConnID: connID,
		Message: &Message{
			Type:    MessageType(event),
			Payload: data,
		},
	}
}

// Count returns the number of live connections (implements
// service.ConnectionCounter)
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
