// Package ws is the transport boundary: it turns inbound JSON envelopes
// into match.Dispatcher calls and turns outbound GameEvent tails into
// JSON envelopes pushed to every connection sitting in a game's room.
// Grounded on the register/unregister/broadcast hub shape used across
// the pack's websocket gateways, generalized from one room to many
// (one per game id) since this server hosts many concurrent matches.
package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/marianogappa/truco-backend/truco"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 65536
)

// Client is one websocket connection. It is seated at exactly one game
// at a time, mirroring the one-game-per-connection model in spec.md's
// external interface (a browser tab plays one match).
type Client struct {
	ID     string
	UserID truco.PlayerId
	Name   string
	GameID int

	conn *websocket.Conn
	send chan []byte
	hub  *Hub
	log  *logrus.Entry
}

// Hub fans out events to every connection seated at a game. Distinct
// games never contend on the same lock longer than it takes to touch a
// map, matching the no-global-lock requirement spec.md places on the
// orchestration boundary one layer down.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	log *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &Hub{
		rooms:      map[int]map[*Client]bool{},
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[c.GameID]
			if !ok {
				room = map[*Client]bool{}
				h.rooms[c.GameID] = room
			}
			room[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[c.GameID]; ok {
				if _, ok := room[c]; ok {
					delete(room, c)
					close(c.send)
					if len(room) == 0 {
						delete(h.rooms, c.GameID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// seat moves c into gameID's room, registering it with the hub.
func (h *Hub) seat(c *Client, gameID int) {
	h.mu.Lock()
	if room, ok := h.rooms[c.GameID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.GameID)
		}
	}
	h.mu.Unlock()
	c.GameID = gameID
	h.register <- c
}

// sendPerClient pushes a recipient-specific payload to every connection
// seated at gameID. build is called once per client still holding the
// room lock, so it must not block; a nil return skips that client.
func (h *Hub) sendPerClient(gameID int, build func(c *Client) []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[gameID] {
		data := build(c)
		if data == nil {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.log.WithField("clientId", c.ID).Warn("dropping message, client send buffer full")
		}
	}
}

func newClient(hub *Hub, conn *websocket.Conn, userID truco.PlayerId, name string) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   name,
		conn:   conn,
		send:   make(chan []byte, 64),
		hub:    hub,
		log:    hub.log.WithField("clientId", "pending"),
	}
}

func (c *Client) readPump(onMessage func(*Client, []byte)) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Debug("read error")
			}
			return
		}
		onMessage(c, data)
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
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
