package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"amiai/internal/model"
	"amiai/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 2048

	// inbound message budget per connection
	inboundRate  = 10
	inboundBurst = 20
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub   *Hub
	match *service.MatchService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, match *service.MatchService) *Handler {
	return &Handler{
		hub:   hub,
		match: match,
	}
}

type joinQueuePayload struct {
	Username   string `json:"username"`
	RoomSize   int    `json:"roomSize"`
	Mode       string `json:"mode"`
	SeriesType string `json:"seriesType"`
	Provider   string `json:"provider"`
}

type submitAnswerPayload struct {
	Answer string `json:"answer"`
}

type votePayload struct {
	SuspectID string `json:"suspectId"`
}

// ServeWS handles GET /ws
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn := &Connection{
		ID:   uuid.NewString(),
		Send: make(chan []byte, 256),
		Hub:  h.hub,
	}
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.match.HandleDisconnect(conn.ID)
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	limiter := rate.NewLimiter(inboundRate, inboundBurst)

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		if !limiter.Allow() {
			h.hub.Send(conn.ID, string(MsgError), model.ErrorPayload{Message: "too many messages"})
			continue
		}
		h.dispatch(conn.ID, data)
	}
}

func (h *Handler) dispatch(connID string, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.hub.Send(connID, string(MsgError), model.ErrorPayload{Message: "malformed message"})
		return
	}

	var err error
	switch msg.Type {
	case MsgJoinQueue:
		var p joinQueuePayload
		if err = json.Unmarshal(msg.Payload, &p); err != nil {
			break
		}
		opts := model.RoomOptions{
			Provider:   p.Provider,
			Mode:       model.ParseGameMode(p.Mode),
			SeriesType: model.ParseSeriesType(p.SeriesType),
		}
		err = h.match.JoinQueue(connID, p.Username, p.RoomSize, opts)

	case MsgLeaveQueue:
		err = h.match.LeaveQueue(connID)

	case MsgSubmitAnswer:
		var p submitAnswerPayload
		if err = json.Unmarshal(msg.Payload, &p); err != nil {
			break
		}
		err = h.match.RouteAnswer(connID, p.Answer)

	case MsgVote:
		var p votePayload
		if err = json.Unmarshal(msg.Payload, &p); err != nil {
			break
		}
		err = h.match.RouteVote(connID, p.SuspectID)

	default:
		err = errors.New("unknown message type")
	}

	if err != nil {
		h.hub.Send(connID, string(MsgError), model.ErrorPayload{Message: err.Error()})
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
