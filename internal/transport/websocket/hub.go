package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"fisiocal/internal/domain"
)

// Client is one connected calendar session.
type Client struct {
	Actor domain.Actor
	Conn  *websocket.Conn
	Send  chan []byte
	Hub   *Hub
}

// Hub fans appointment change events out to connected calendar
// clients. Events arrive from the service layer after a write has been
// persisted; each client only receives events its actor is allowed to
// see, mirroring the calendar visibility rules.
type Hub struct {
	clients    map[*Client]bool
	events     chan domain.AppointmentEvent
	register   chan *Client
	unregister chan *Client
	logger     *zap.Logger
	mutex      sync.RWMutex
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		events:     make(chan domain.AppointmentEvent, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Broadcast implements the service notifier. It never blocks the
// caller: if the hub's queue is full the event is dropped and clients
// resynchronize on their next fetch.
func (h *Hub) Broadcast(event domain.AppointmentEvent) {
	select {
	case h.events <- event:
	default:
		h.logger.Warn("event queue full, dropping calendar event",
			zap.String("type", string(event.Type)))
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.logger.Info("calendar client connected",
				zap.Int64("user_id", client.Actor.UserID),
				zap.String("role", string(client.Actor.Role)))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			h.logger.Info("calendar client disconnected",
				zap.Int64("user_id", client.Actor.UserID))

		case event := <-h.events:
			h.dispatch(event)
		}
	}
}

func (h *Hub) dispatch(event domain.AppointmentEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal calendar event", zap.Error(err))
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if !visibleTo(client.Actor, event) {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			// Slow consumer, skip rather than stall the hub.
			h.logger.Warn("client send buffer full, skipping event",
				zap.Int64("user_id", client.Actor.UserID))
		}
	}
}

// visibleTo applies the calendar visibility rules to an event. Events
// without an appointment payload (deletions, series truncations) go to
// everyone; clients treat them as a cue to refetch, and the subsequent
// fetch is filtered server-side anyway.
func visibleTo(actor domain.Actor, event domain.AppointmentEvent) bool {
	if event.Appointment == nil {
		return true
	}

	switch actor.Role {
	case domain.UserRolePatient:
		return actor.PatientID != nil && *actor.PatientID == event.Appointment.PatientID
	case domain.UserRoleEducadorFisico:
		return actor.TherapistID != nil && *actor.TherapistID == event.Appointment.TherapistID
	default:
		return true
	}
}

// HandleConnection upgrades an authenticated request to a websocket
// and starts its pumps. The actor comes from the auth middleware.
func (h *Hub) HandleConnection(c *gin.Context, actor domain.Actor) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	client := &Client{
		Actor: actor,
		Conn:  conn,
		Send:  make(chan []byte, 64),
		Hub:   h,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection. Calendar clients never send data;
// reading is only needed to notice closes and answer pings.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("websocket read error", zap.Error(err))
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.logger.Warn("failed to write calendar event",
					zap.Int64("user_id", c.Actor.UserID), zap.Error(err))
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
