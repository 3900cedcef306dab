package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/UnknownOlympus/quizmap/internal/metrics"
	"github.com/UnknownOlympus/quizmap/internal/service"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// Hub streams every rendered view to the connected websocket clients.
// Each client receives the newest view; intermediate ones are skipped when it falls behind.
type Hub struct {
	log      *slog.Logger
	metrics  *metrics.Metrics
	current  func() service.View
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn   *websocket.Conn
	notify chan struct{}

	mu      sync.Mutex
	latest  *service.View
	written bool
	last    uint64 // revision of the last view taken for writing
}

// NewHub creates a Hub. current returns the view a new client starts with.
func NewHub(log *slog.Logger, metrics *metrics.Metrics, current func() service.View) *Hub {
	return &Hub{
		log:     log,
		metrics: metrics,
		current: current,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		clients: make(map[*client]struct{}),
	}
}

// Broadcast queues the view for every client. It never blocks on a client.
func (h *Hub) Broadcast(view service.View) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.offer(view)
	}
}

// ServeWS upgrades the request and streams views until the client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WarnContext(r.Context(), "Websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, notify: make(chan struct{}, 1)}
	h.register(c)
	c.offer(h.current())

	done := make(chan struct{})
	go h.writeLoop(c, done)

	// Incoming messages are ignored; reading processes control frames and detects the close.
	for {
		if _, _, err = conn.NextReader(); err != nil {
			break
		}
	}

	close(done)
	h.unregister(c)
	_ = conn.Close()
}

func (h *Hub) writeLoop(c *client, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-c.notify:
			view, ok := c.take()
			if !ok {
				continue
			}

			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(view); err != nil {
				h.log.Debug("Websocket write failed", "error", err)
				_ = c.conn.Close()
				return
			}
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	h.metrics.Subscribers.Inc()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		h.metrics.Subscribers.Dec()
	}
}

// offer keeps view if it is newer than anything queued or already written.
func (c *client) offer(view service.View) {
	c.mu.Lock()
	stale := (c.written && view.Revision <= c.last) || (c.latest != nil && view.Revision <= c.latest.Revision)
	if !stale {
		c.latest = &view
	}
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *client) take() (service.View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.latest == nil {
		return service.View{}, false
	}

	view := *c.latest
	c.latest = nil
	c.written = true
	c.last = view.Revision

	return view, true
}
