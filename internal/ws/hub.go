// Package ws streams draft events to websocket spectators. The hub is
// write-only: inbound frames are drained and discarded, the connection
// lives until the client hangs up.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"pst-draft-bot/internal/announce"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans draft events out to every connected spectator. It
// implements the session announcer interface.
type Hub struct {
	league   string
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]bool
}

func NewHub(league string) *Hub {
	return &Hub{
		league:   league,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  map[*client]bool{},
	}
}

// HandleWS upgrades the request and registers the spectator.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 16)}

	hello, _ := json.Marshal(Hello{Type: "hello", ProtocolVersion: ProtocolVersion, League: h.league})
	safeSend(c.send, hello)

	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	log.Info().Int("spectators", n).Msg("spectator connected")

	go h.writeLoop(c)
	h.readLoop(c)
}

// Publish broadcasts an event to every spectator. Slow clients drop
// frames rather than stalling the draft.
func (h *Hub) Publish(ev announce.Event) {
	msg, err := json.Marshal(Feed{
		Type:            "event",
		ProtocolVersion: ProtocolVersion,
		TimestampMS:     time.Now().UnixMilli(),
		Event:           ev,
	})
	if err != nil {
		log.Warn().Err(err).Msg("ws: encode event failed")
		return
	}
	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
	h.mu.Unlock()
}

// SpectatorCount reports how many clients are connected.
func (h *Hub) SpectatorCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) readLoop(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	safeClose(c.send)
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func safeSend(ch chan []byte, msg []byte) {
	defer func() {
		_ = recover()
	}()
	ch <- msg
}
