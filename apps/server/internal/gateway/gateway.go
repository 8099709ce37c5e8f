package gateway

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"holdem-recorder/apps/server/internal/codec"
	"holdem-recorder/apps/server/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

// SessionSource looks up live sessions.
type SessionSource interface {
	Get(id string) (*session.Session, error)
}

// Connection is one browser watching one session.
type Connection struct {
	ID        string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	Gateway   *Gateway
}

// Gateway pushes hand views to websocket subscribers.
type Gateway struct {
	mu         sync.RWMutex
	subs       map[string]map[*Connection]struct{} // session id -> connections
	nextConnID uint64
	serverSeq  uint64
	upgrader   websocket.Upgrader
	log        *logrus.Entry
}

// New creates a Gateway. An empty allowedOrigins accepts any origin.
func New(log *logrus.Entry, allowedOrigins []string) *Gateway {
	g := &Gateway{
		subs: make(map[string]map[*Connection]struct{}),
		log:  log.WithField("component", "gateway"),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return g
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := set[strings.ToLower(u.Scheme+"://"+u.Host)]
		return ok
	}
}

// Handler upgrades /ws/hands/{id} and streams that session's views,
// starting with the current one.
func (g *Gateway) Handler(sessions SessionSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		s, err := sessions.Get(id)
		if err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := g.upgrader.Upgrade(w, r, nil)
		if err != nil {
			g.log.WithError(err).Warn("upgrade failed")
			return
		}

		c := &Connection{
			ID:        "conn_" + strconv.FormatUint(atomic.AddUint64(&g.nextConnID, 1), 10),
			SessionID: id,
			Conn:      conn,
			Send:      make(chan []byte, sendBuffer),
			Gateway:   g,
		}
		var total int
		s.Watch(func(snap session.Snapshot) { total = g.subscribe(c, snap) })
		g.log.WithFields(logrus.Fields{"conn": c.ID, "session": id, "watchers": total}).Info("client connected")
		// swept between the lookup and the subscription
		if _, err := sessions.Get(id); err != nil {
			g.CloseSession(id)
		}

		go c.writePump()
		go c.readPump()
	}
}

func (g *Gateway) nextSeq() uint64 { return atomic.AddUint64(&g.serverSeq, 1) }

func (g *Gateway) encode(env codec.Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		g.log.WithError(err).Error("encode envelope")
	}
	return data, err
}

// subscribe registers c and queues initial as its first view. Publish waits
// on the same lock, so nothing older than initial can follow it.
func (g *Gateway) subscribe(c *Connection, initial session.Snapshot) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	set := g.subs[c.SessionID]
	if set == nil {
		set = make(map[*Connection]struct{})
		g.subs[c.SessionID] = set
	}
	set[c] = struct{}{}
	if data, err := g.encode(codec.WrapSnapshot(g.nextSeq(), initial)); err == nil {
		c.Send <- data
	}
	return len(set)
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set := g.subs[c.SessionID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(g.subs, c.SessionID)
	}
	close(c.Send)
	g.log.WithFields(logrus.Fields{"conn": c.ID, "session": c.SessionID, "watchers": len(set)}).Info("client disconnected")
}

// Publish fans a committed snapshot out to the session's watchers. It never
// blocks: a watcher whose buffer is full misses the update and catches up on
// the next one, since every view is complete.
func (g *Gateway) Publish(snap session.Snapshot) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	set := g.subs[snap.ID]
	if len(set) == 0 {
		return
	}
	data, err := g.encode(codec.WrapSnapshot(g.nextSeq(), snap))
	if err != nil {
		return
	}
	for c := range set {
		select {
		case c.Send <- data:
		default:
			g.log.WithField("conn", c.ID).Debug("send buffer full, dropping view")
		}
	}
}

// CloseSession disconnects every watcher of a session that no longer exists.
func (g *Gateway) CloseSession(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set := g.subs[sessionID]
	if len(set) == 0 {
		return
	}
	delete(g.subs, sessionID)
	for c := range set {
		close(c.Send)
	}
	g.log.WithFields(logrus.Fields{"session": sessionID, "watchers": len(set)}).Info("session closed")
}

// Watchers reports how many connections follow a session.
func (g *Gateway) Watchers(sessionID string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.subs[sessionID])
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Watchers are read-only; inbound frames only keep the connection alive.
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Gateway.log.WithError(err).WithField("conn", c.ID).Warn("read error")
			}
			return
		}
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
