// Package notify fans out "a match became playable" events to
// connected websocket clients, one room per category. It carries no
// score data: a client learns a match is Ready and re-fetches state
// through the façade, the same boundary a scoreboard display or
// umpire tablet would use.
package notify

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shuttlecourt/tournament-engine/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// MatchReadyEvent is the only payload this package ever broadcasts.
type MatchReadyEvent struct {
	CategoryID int64 `json:"category_id"`
	MatchID    int64 `json:"match_id"`
	Round      int   `json:"round"`
}

// Client is one websocket connection subscribed to a single category's room.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	room     string
	isClosed bool
	mu       sync.Mutex
}

// Hub multiplexes MatchReadyEvent broadcasts to every client currently
// watching a category.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
}

// NewHub builds an idle Hub; call Run in its own goroutine to start
// servicing registrations and broadcasts.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

// Register adds a connection to its room, spawning its read/write pumps.
func (h *Hub) Register(conn *websocket.Conn, categoryRoom string) *Client {
	c := &Client{hub: h, conn: conn, send: make(chan []byte, 16), room: categoryRoom}
	h.register <- c
	go c.writePump()
	go c.readPump()
	return c
}

// Run services registration/unregistration for the life of the
// process: it has no stop signal and never returns. It owns h.rooms
// and must be the only goroutine mutating it outside the
// register/unregister channels.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.room] == nil {
				h.rooms[c.room] = make(map[*Client]bool)
			}
			h.rooms[c.room][c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[c.room]; ok {
				if _, ok := clients[c]; ok {
					c.close()
					delete(clients, c)
					if len(clients) == 0 {
						delete(h.rooms, c.room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// PublishMatchReady broadcasts a MatchReadyEvent to every client
// watching categoryID's room. A category with no subscribers is a
// silent no-op, not an error.
func (h *Hub) PublishMatchReady(categoryID, matchID int64, round int) {
	payload, err := json.Marshal(MatchReadyEvent{CategoryID: categoryID, MatchID: matchID, Round: round})
	if err != nil {
		slog.Error("marshal match-ready event", slog.Any("error", err))
		return
	}

	room := roomFor(categoryID)
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := h.rooms[room]
	for c := range clients {
		c.mu.Lock()
		if !c.isClosed {
			select {
			case c.send <- payload:
			default:
				metrics.NotifyDrops.WithLabelValues(room).Inc()
				slog.Warn("client send buffer full, dropping match-ready event", slog.String("room", room))
			}
		}
		c.mu.Unlock()
	}
}

func roomFor(categoryID int64) string {
	return "category-" + strconv.FormatInt(categoryID, 10)
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isClosed {
		close(c.send)
		c.isClosed = true
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
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
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			if err := w.Close(); err != nil {
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
