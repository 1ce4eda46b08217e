package stream

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"cravlr/internal/domain/repository"
	"cravlr/internal/domain/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	// eventBuffer bounds the per-connection event queue; a client that cannot
	// keep up gets disconnected rather than blocking the hub.
	eventBuffer = 32
)

// Hub tracks open stream connections per user and routes pings to them. It
// implements service.StreamPublisher so use cases can push without knowing
// about WebSockets.
type Hub struct {
	mu          sync.RWMutex
	clients     map[uuid.UUID]map[*client]struct{}
	cfg         QueueConfig
	upgrader    websocket.Upgrader
	profileRepo repository.ProfileRepository
	logger      *slog.Logger
}

// NewHub is the constructor for Hub, injected by Fx.
func NewHub(profileRepo repository.ProfileRepository, logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The browser client connects cross-origin from the app domain.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// PublishPing fans a ping out to every open connection of a user. Users
// without a connection are skipped; offline delivery happens through the
// push, email, and SMS channels.
func (h *Hub) PublishPing(userID uuid.UUID, ping *service.Ping) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for cl := range h.clients[userID] {
		cl.queue.Enqueue(ping)
	}
}

// RemovePing withdraws a ping from every connection of a user, for requests
// that closed before the recommender reacted.
func (h *Hub) RemovePing(userID uuid.UUID, ping *service.Ping) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for cl := range h.clients[userID] {
		cl.queue.Remove(ping)
	}
}

// HandleStream upgrades the request to a WebSocket and serves the user's
// ping stream until the connection drops.
func (h *Hub) HandleStream(c echo.Context) error {
	userID, ok := c.Get("userID").(uuid.UUID)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid user ID in token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the failure response.
		return nil
	}

	cl := &client{
		hub:    h,
		userID: userID,
		conn:   conn,
		events: make(chan Event, eventBuffer),
		logger: h.logger.With(slog.String("userID", userID.String())),
	}
	cl.queue = newPingQueue(h.cfg, cl.emit)

	// A user who enabled do-not-disturb on their profile must not see pings
	// just because they reconnected; the socket "dnd" message only covers
	// toggles made while connected.
	if profile, perr := h.profileRepo.FindProfileByUserID(c.Request().Context(), userID); perr == nil && profile.DoNotDisturb {
		cl.queue.SetDoNotDisturb(true)
	}

	h.register(cl)

	go cl.writePump()
	cl.readPump()

	return nil
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[cl.userID] == nil {
		h.clients[cl.userID] = make(map[*client]struct{})
	}
	h.clients[cl.userID][cl] = struct{}{}
}

func (h *Hub) unregister(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[cl.userID]; ok {
		delete(conns, cl)
		if len(conns) == 0 {
			delete(h.clients, cl.userID)
		}
	}
}

// client is one WebSocket connection plus its ping queue.
type client struct {
	hub    *Hub
	userID uuid.UUID
	conn   *websocket.Conn
	queue  *pingQueue
	events chan Event
	once   sync.Once
	logger *slog.Logger
}

// clientMessage is what the browser sends back on the socket.
type clientMessage struct {
	Action       string `json:"action"` // dismiss, dnd
	DoNotDisturb bool   `json:"do_not_disturb,omitempty"`
}

// emit hands a queue event to the write pump. It runs under the queue lock,
// so it must never block: a full buffer means the client has stalled and the
// connection gets torn down.
func (cl *client) emit(ev Event) {
	select {
	case cl.events <- ev:
	default:
		cl.logger.Warn("stream client too slow, dropping connection")
		// close stops the queue, which needs the queue lock emit is called
		// under; tear down off this goroutine.
		go cl.close()
	}
}

func (cl *client) close() {
	cl.once.Do(func() {
		cl.hub.unregister(cl)
		cl.queue.Stop()
		close(cl.events)
		_ = cl.conn.Close()
	})
}

func (cl *client) readPump() {
	defer cl.close()

	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := cl.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				cl.logger.Debug("stream read failed", slog.String("error", err.Error()))
			}

			return
		}

		switch msg.Action {
		case "dismiss":
			cl.queue.Dismiss()
		case "dnd":
			cl.queue.SetDoNotDisturb(msg.DoNotDisturb)
		}
	}
}

func (cl *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.close()
	}()

	for {
		select {
		case ev, ok := <-cl.events:
			if !ok {
				_ = cl.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))

				return
			}

			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
