package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/litescript/ls-orrery/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 4
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Recorder receives websocket events.
type Recorder interface {
	ClientConnected()
	ClientDisconnected()
	FrameSent()
	FrameDropped()
}

type nopRecorder struct{}

func (nopRecorder) ClientConnected()    {}
func (nopRecorder) ClientDisconnected() {}
func (nopRecorder) FrameSent()          {}
func (nopRecorder) FrameDropped()       {}

type client struct {
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
}

// Hub fans snapshot frames out to websocket clients. Each client has its own
// frame limiter; frames over the limit or behind a full queue are dropped,
// never queued.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	fps     rate.Limit
	rec     Recorder
	logger  *logging.Logger
}

// NewHub creates a hub that sends at most fps frames per second per client.
func NewHub(fps float64, rec Recorder, logger *logging.Logger) *Hub {
	if rec == nil {
		rec = nopRecorder{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		fps:     rate.Limit(fps),
		rec:     rec,
		logger:  logger,
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.rec.ClientConnected()
}

// remove is safe to call more than once per client.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.rec.ClientDisconnected()
}

// offer queues msg for c if its limiter and queue allow. Caller holds mu.
func (h *Hub) offer(c *client, msg []byte) {
	if !c.limiter.Allow() {
		h.rec.FrameDropped()
		return
	}
	select {
	case c.send <- msg:
		h.rec.FrameSent()
	default:
		h.rec.FrameDropped()
	}
}

// Broadcast offers msg to every client.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.offer(c, msg)
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.remove(c)
	}
}

// serve upgrades the request and runs the client until it disconnects.
// first, when non-nil, is sent before any broadcast frame.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, first []byte) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade from %s: %v", r.RemoteAddr, err)
		return
	}

	c := &client{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		limiter: rate.NewLimiter(h.fps, 1),
	}
	h.add(c)
	h.logger.Debug("websocket client %s connected", r.RemoteAddr)

	if first != nil {
		h.mu.Lock()
		if _, ok := h.clients[c]; ok {
			h.offer(c, first)
		}
		h.mu.Unlock()
	}

	go h.writePump(c)
	h.readPump(c)
	h.logger.Debug("websocket client %s disconnected", r.RemoteAddr)
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
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
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
