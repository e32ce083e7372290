package companion

import (
	"context"
	"errors"
	"net/http"
	stdsync "sync"
	"time"

	"github.com/gorilla/websocket"
)

// frame is the JSON envelope on the companion websocket. Outbound frames
// carry a status ("context" for the durable snapshot, "status" for live
// pushes, "reply" for command answers); inbound frames carry a command.
type frame struct {
	Type    string   `json:"type"`
	Status  *Status  `json:"status,omitempty"`
	Command *Command `json:"command,omitempty"`
	Reply   *Reply   `json:"reply,omitempty"`
}

const writeTimeout = 5 * time.Second

// ErrNotReachable is returned by SendMessage while no device is connected.
var ErrNotReachable = errors.New("companion not connected")

// Hub is the production Transport: a websocket endpoint the companion app
// keeps open while in range. At most one device connection is held; a new
// connection replaces the old one. The last durable context is retained and
// replayed to every (re)connecting device.
type Hub struct {
	handler  *Handler
	upgrader websocket.Upgrader
	cfg      config

	mu      stdsync.Mutex
	conn    *websocket.Conn
	context *Status

	// gorilla connections allow one writer at a time.
	writeMu stdsync.Mutex
}

// NewHub constructs a Hub. The handler may be installed later with
// SetHandler when construction order requires it; inbound commands are
// dropped until then.
func NewHub(handler *Handler, opts ...Option) *Hub {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Hub{
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		cfg: cfg,
	}
}

// SetHandler installs the command handler.
func (h *Hub) SetHandler(handler *Handler) {
	h.mu.Lock()
	h.handler = handler
	h.mu.Unlock()
}

// ServeHTTP upgrades the request and runs the device's read loop until the
// connection drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.cfg.logger.Printf("upgrade: %v", err)
		return
	}

	h.mu.Lock()
	if h.conn != nil {
		h.conn.Close()
	}
	h.conn = conn
	replay := h.context
	h.mu.Unlock()

	if replay != nil {
		h.write(conn, frame{Type: "context", Status: replay})
	}

	h.readLoop(r.Context(), conn)

	h.mu.Lock()
	if h.conn == conn {
		h.conn = nil
	}
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var in frame
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.cfg.logger.Printf("read: %v", err)
			}
			return
		}
		if in.Type != "command" || in.Command == nil {
			continue
		}
		h.mu.Lock()
		handler := h.handler
		h.mu.Unlock()
		if handler == nil {
			continue
		}
		reply := handler.Handle(ctx, *in.Command)
		if err := h.write(conn, frame{Type: "reply", Reply: &reply}); err != nil {
			h.cfg.logger.Printf("write reply: %v", err)
			return
		}
	}
}

// UpdateContext implements Transport. The snapshot is retained for replay
// and, when a device is connected, pushed immediately.
func (h *Hub) UpdateContext(_ context.Context, status Status) error {
	h.mu.Lock()
	h.context = &status
	conn := h.conn
	h.mu.Unlock()

	if conn == nil {
		return nil
	}
	return h.write(conn, frame{Type: "context", Status: &status})
}

// SendMessage implements Transport.
func (h *Hub) SendMessage(_ context.Context, status Status) error {
	h.mu.Lock()
	conn := h.conn
	h.mu.Unlock()

	if conn == nil {
		return ErrNotReachable
	}
	return h.write(conn, frame{Type: "status", Status: &status})
}

// Reachable implements Transport.
func (h *Hub) Reachable() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn != nil
}

func (h *Hub) write(conn *websocket.Conn, f frame) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(f)
}
