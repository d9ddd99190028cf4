package server

import (
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"net/http"
	"sync"
	"time"
)

// Time allowed to write a message to a client before it is dropped.
const defaultWriteWait = 10 * time.Second

// Hub keeps the websocket connections open on each game, so that every
// update of a game reaches all of them.
type Hub struct {
	mu        sync.Mutex
	games     map[string]map[*websocket.Conn]struct{}
	log       logrus.FieldLogger
	writeWait time.Duration
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		games:     make(map[string]map[*websocket.Conn]struct{}),
		log:       log,
		writeWait: defaultWriteWait,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

func (h *Hub) Join(gameID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.games[gameID]; !ok {
		h.games[gameID] = make(map[*websocket.Conn]struct{})
	}
	h.games[gameID][conn] = struct{}{}
}

func (h *Hub) Leave(gameID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.games[gameID], conn)
	if len(h.games[gameID]) == 0 {
		delete(h.games, gameID)
	}
}

// Close drops every connection on a game, e.g. once it was deleted.
func (h *Hub) Close(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.games[gameID] {
		_ = conn.Close()
	}
	delete(h.games, gameID)
}

// Broadcast sends an action to every connection on a game. Connections that
// fail to receive it are dropped.
func (h *Hub) Broadcast(gameID string, action string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.games[gameID]
	if !ok {
		return
	}

	message := wsMessage{Action: action, Data: data}
	for conn := range clients {
		if err := h.write(conn, message); err != nil {
			h.log.WithError(err).WithField("game", gameID).Warn("failed to send message")
			_ = conn.Close()
			delete(clients, conn)
		}
	}
}

// Send writes to a single connection. Writes go through the hub lock, as a
// connection supports only one concurrent writer.
func (h *Hub) Send(conn *websocket.Conn, action string, data interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.write(conn, wsMessage{Action: action, Data: data})
}

// write must be called with h.mu held. A client that does not take the
// message within writeWait fails the write.
func (h *Hub) write(conn *websocket.Conn, message wsMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(h.writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(message)
}
