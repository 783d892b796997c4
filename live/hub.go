// Package live fans JSON messages out to websocket subscribers.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Clients only send control frames
	maxMessageSize = 512

	sendBuffer = 16
)

var clientsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "flowviz_live_clients",
	Help: "Connected websocket clients per hub",
}, []string{"hub"})

// Hub keeps the latest message and pushes every new one to all connected
// clients. Publishing faster than the limit coalesces to the newest message.
type Hub struct {
	name     string
	log      *zap.SugaredLogger
	upgrader websocket.Upgrader
	limiter  *rate.Limiter

	register   chan *client
	unregister chan *client
	publish    chan []byte
	done       chan struct{}

	mu      sync.RWMutex
	latest  []byte
	clients map[*client]struct{}
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// NewHub creates a hub that delivers at most perSecond messages per second.
// A non-positive rate disables the limit.
func NewHub(name string, perSecond float64, log *zap.SugaredLogger) *Hub {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &Hub{
		name:       name,
		log:        log,
		upgrader:   websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		limiter:    rate.NewLimiter(limit, 1),
		register:   make(chan *client),
		unregister: make(chan *client),
		publish:    make(chan []byte, 1),
		done:       make(chan struct{}),
		clients:    map[*client]struct{}{},
	}
}

// Publish marshals v and queues it for delivery. If a message is already
// queued it is replaced.
func (h *Hub) Publish(v interface{}) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.latest = msg
	h.mu.Unlock()

	for {
		select {
		case h.publish <- msg:
			return nil
		default:
		}
		select {
		case <-h.publish:
		default:
		}
	}
}

// Latest returns the last published message, or nil.
func (h *Hub) Latest() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run delivers messages until ctx is done, then disconnects all clients.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer func() {
		h.mu.Lock()
		for c := range h.clients {
			delete(h.clients, c)
			c.close()
		}
		h.mu.Unlock()
		clientsGauge.WithLabelValues(h.name).Set(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			latest := h.latest
			h.mu.Unlock()
			clientsGauge.WithLabelValues(h.name).Set(float64(n))
			if latest != nil {
				h.deliver(c, latest)
			}
			h.log.Debugw("client connected", "hub", h.name, "client", c.id, "clients", n)
		case c := <-h.unregister:
			h.drop(c)
		case msg := <-h.publish:
			if err := h.limiter.Wait(ctx); err != nil {
				return
			}
			// A newer message may have been queued while waiting.
			select {
			case msg = <-h.publish:
			default:
			}
			h.mu.RLock()
			targets := make([]*client, 0, len(h.clients))
			for c := range h.clients {
				targets = append(targets, c)
			}
			h.mu.RUnlock()
			for _, c := range targets {
				h.deliver(c, msg)
			}
		}
	}
}

// deliver drops clients whose send buffer is full.
func (h *Hub) deliver(c *client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		h.log.Warnw("dropping slow client", "hub", h.name, "client", c.id)
		h.drop(c)
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		c.close()
		clientsGauge.WithLabelValues(h.name).Set(float64(n))
		h.log.Debugw("client disconnected", "hub", h.name, "client", c.id, "clients", n)
	}
}

// ServeHTTP upgrades the request to a websocket subscribed to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "hub", h.name, "error", err)
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client frames and notices disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debugw("websocket read error", "hub", h.name, "client", c.id, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
