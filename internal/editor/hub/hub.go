package hub

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mjcf-editor/internal/editor/models"
	"mjcf-editor/internal/editor/session"
	"mjcf-editor/internal/editor/store"
)

// ============================================================
// Live scene feed
// ============================================================

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Hub pushes every published State of a session to its websocket clients.
type Hub struct {
	sessions *session.Manager
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan models.State
	done chan struct{}
	once sync.Once
}

func New(sessions *session.Manager) *Hub {
	return &Hub{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[string]map[*client]struct{}),
	}
}

// ServeHTTP upgrades /ws?session=<id> and streams that session's states.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sid := r.URL.Query().Get("session")
	st, err := h.sessions.Resolve(sid)
	if err != nil {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[HUB] upgrade error: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan models.State, sendBuffer),
		done: make(chan struct{}),
	}
	if !h.join(sid, st, c) {
		log.Printf("[HUB] session %s closed during upgrade", sid)
		c.stop()
		return
	}

	unsubscribe := st.Subscribe(c.offer)
	c.offer(st.Snapshot())

	go c.writeLoop()
	c.readLoop()

	unsubscribe()
	h.remove(sid, c)
	c.stop()
}

// CloseSession disconnects every client of a session.
func (h *Hub) CloseSession(sid string) {
	h.mu.Lock()
	set := h.clients[sid]
	delete(h.clients, sid)
	h.mu.Unlock()

	for c := range set {
		c.stop()
	}
}

// Clients returns the number of connected clients for sid.
func (h *Hub) Clients(sid string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[sid])
}

func (h *Hub) add(sid string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[sid]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[sid] = set
	}
	set[c] = struct{}{}
}

// join registers c under sid and then checks that sid still resolves to st.
// A CloseSession that ran before the add could not see c, so it is removed
// here instead.
func (h *Hub) join(sid string, st *store.Store, c *client) bool {
	h.add(sid, c)
	if cur, err := h.sessions.Resolve(sid); err != nil || cur != st {
		h.remove(sid, c)
		return false
	}
	return true
}

func (h *Hub) remove(sid string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[sid]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, sid)
		}
	}
}

// offer queues s without blocking; when the buffer is full the oldest
// queued state is dropped.
func (c *client) offer(s models.State) {
	for {
		select {
		case <-c.done:
			return
		case c.send <- s:
			return
		default:
		}
		select {
		case <-c.send:
		default:
		}
	}
}

func (c *client) stop() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	var last uint64
	sent := false
	for {
		select {
		case <-c.done:
			return
		case s := <-c.send:
			if sent && s.Version <= last {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(s); err != nil {
				log.Printf("[HUB] write error: %v", err)
				c.stop()
				return
			}
			last, sent = s.Version, true
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.stop()
				return
			}
		}
	}
}

// readLoop discards client messages and returns once the connection ends.
func (c *client) readLoop() {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
