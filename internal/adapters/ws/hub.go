package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/uzochukwueddie/spin-the-match/internal/app"
	"github.com/uzochukwueddie/spin-the-match/internal/domain"
	"github.com/uzochukwueddie/spin-the-match/internal/ports"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

// Message types
const (
	MsgTypeState     = "state"
	MsgTypeEvent     = "event"
	MsgTypeAck       = "ack"
	MsgTypeError     = "error"
	MsgTypeSpin      = "spin"
	MsgTypeSpinAgain = "spin_again"
	MsgTypeDismiss   = "dismiss"
	MsgTypeResize    = "resize"
)

// ErrHubStopped is returned when a connection arrives after shutdown.
var ErrHubStopped = errors.New("hub stopped")

// Commands is what a websocket client may ask of a wheel.
type Commands interface {
	GetWheel(ctx context.Context, id string) (app.Result, error)
	Spin(ctx context.Context, id string) (app.Result, error)
	SpinAgain(ctx context.Context, id string) (app.Result, error)
	Dismiss(ctx context.Context, id string) (app.Result, error)
	Resize(ctx context.Context, id string, width int) (app.Result, error)
}

// ClientMessage is a command from the presentation surface.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is pushed to every subscriber of a wheel.
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Ack answers a command with whether the wheel accepted it.
type Ack struct {
	Command  string `json:"command"`
	Accepted bool   `json:"accepted"`
	Phase    string `json:"phase"`
}

type resizeData struct {
	Width int `json:"width"`
}

// primeRequest hands a registered client its initial snapshot.
type primeRequest struct {
	client *Client
	state  domain.State
	sent   chan struct{}
}

// Hub fans wheel lifecycle events out to websocket subscribers. Its client
// set is owned by the Run goroutine.
//
// A client is registered before its snapshot is read. Events arriving in
// between are held until the snapshot is sent, and events older than the
// snapshot's revision are dropped.
type Hub struct {
	cmds     Commands
	logger   *slog.Logger
	upgrader websocket.Upgrader

	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	prime      chan primeRequest
	broadcast  chan ports.Event
	stopped    chan struct{}
}

func NewHub(cmds Commands, allowedOrigins []string, logger *slog.Logger) *Hub {
	h := &Hub{
		cmds:       cmds,
		logger:     logger,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		prime:      make(chan primeRequest),
		broadcast:  make(chan ports.Event, 256),
		stopped:    make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin:       originChecker(allowedOrigins, logger),
		EnableCompression: true,
	}
	return h
}

// originChecker allows same-origin requests, requests without an Origin
// header, and the configured origins ("*" allows any).
func originChecker(allowed []string, logger *slog.Logger) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		originURL, err := url.Parse(origin)
		if err != nil {
			logger.Warn("invalid websocket origin", "origin", origin)
			return false
		}
		if originURL.Host == r.Host {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		logger.Warn("rejected websocket origin", "origin", origin)
		return false
	}
}

// Run owns the subscriber set until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.logger.Debug("websocket client connected", "wheel_id", c.wheelID, "subscribers", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.logger.Debug("websocket client disconnected", "wheel_id", c.wheelID)
			}

		case p := <-h.prime:
			if _, ok := h.clients[p.client]; ok {
				h.primeClient(p.client, p.state)
			}
			close(p.sent)

		case ev := <-h.broadcast:
			for c := range h.clients {
				if c.wheelID != ev.WheelID {
					continue
				}
				if !c.primed {
					if len(c.pending) < sendBuffer {
						c.pending = append(c.pending, ev)
					} else {
						h.logger.Warn("websocket client not primed, dropping event", "wheel_id", c.wheelID, "event", ev.Type)
					}
					continue
				}
				h.deliver(c, ev)
			}
		}
	}
}

// primeClient sends the snapshot, then whatever was held back while the
// snapshot was being read.
func (h *Hub) primeClient(c *Client, st domain.State) {
	c.primed = true
	c.revision = st.Revision
	c.trySend(ServerMessage{Type: MsgTypeState, Data: st})

	pending := c.pending
	c.pending = nil
	for _, ev := range pending {
		h.deliver(c, ev)
	}
}

func (h *Hub) deliver(c *Client, ev ports.Event) {
	if ev.State.Revision < c.revision {
		h.logger.Debug("stale event skipped", "wheel_id", c.wheelID, "event", ev.Type, "revision", ev.State.Revision)
		return
	}
	c.revision = ev.State.Revision
	if !c.trySend(ServerMessage{Type: MsgTypeEvent, Data: ev}) {
		h.logger.Warn("websocket send buffer full, skipping event", "wheel_id", c.wheelID, "event", ev.Type)
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.done)
}

// Publish queues an event for the wheel's subscribers without blocking.
func (h *Hub) Publish(ctx context.Context, ev ports.Event) {
	select {
	case h.broadcast <- ev:
	case <-h.stopped:
	default:
		h.logger.WarnContext(ctx, "websocket broadcast queue full, dropping event", "wheel_id", ev.WheelID, "event", ev.Type)
	}
}

// ServeWheel upgrades the request and subscribes it to one wheel. The
// wheel must exist; its current state is the first message sent.
func (h *Hub) ServeWheel(w http.ResponseWriter, r *http.Request, wheelID string) error {
	if _, err := h.cmds.GetWheel(r.Context(), wheelID); err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "wheel_id", wheelID, "error", err)
		return nil
	}

	c := &Client{
		hub:     h,
		wheelID: wheelID,
		conn:    conn,
		send:    make(chan ServerMessage, sendBuffer),
		done:    make(chan struct{}),
	}

	select {
	case h.register <- c:
	case <-h.stopped:
		conn.Close()
		return ErrHubStopped
	}

	res, err := h.cmds.GetWheel(context.WithoutCancel(r.Context()), wheelID)
	if err != nil {
		h.logger.Debug("wheel gone before subscription", "wheel_id", wheelID, "error", err)
		select {
		case h.unregister <- c:
		case <-h.stopped:
		}
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, err.Error()),
			time.Now().Add(writeWait))
		conn.Close()
		return nil
	}

	p := primeRequest{client: c, state: res.State, sent: make(chan struct{})}
	select {
	case h.prime <- p:
		<-p.sent
	case <-h.stopped:
		conn.Close()
		return ErrHubStopped
	}

	go c.writePump()
	go c.readPump()
	return nil
}
