package sync

import (
	"bufio"
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"mangapages/internal/logging"
)

// Publisher is what the page service needs from the hub.
type Publisher interface {
	Publish(ev PageEvent)
}

type Hub struct {
	log *logrus.Entry

	mu        sync.Mutex
	clients   map[net.Conn]struct{}
	wsClients map[*websocket.Conn]struct{}
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
}

func NewHub(logger logrus.FieldLogger) *Hub {
	return &Hub{
		log:       logging.Component(logger, "hub"),
		clients:   make(map[net.Conn]struct{}),
		wsClients: make(map[*websocket.Conn]struct{}),
	}
}

// Add registers a TCP client and sends it the welcome frame. Both happen
// under the hub lock so no broadcast can reach the client first.
func (h *Hub) Add(conn net.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}

	b, err := h.welcomeLocked("tcp")
	if err != nil {
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Write(b); err != nil {
		h.log.WithError(err).Debug("tcp welcome failed")
	}
}

func (h *Hub) Remove(conn net.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// AddWS registers a websocket client and sends it the welcome frame.
func (h *Hub) AddWS(ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.wsClients[ws] = struct{}{}

	b, err := h.welcomeLocked("websocket")
	if err != nil {
		return
	}
	_ = ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
		h.log.WithError(err).Debug("ws welcome failed")
	}
}

func (h *Hub) welcomeLocked(transport string) ([]byte, error) {
	st := Stats{TCPClients: len(h.clients), WSClients: len(h.wsClients)}
	b, err := json.Marshal(newWelcomeFrame(transport, st))
	if err != nil {
		h.log.WithError(err).Warn("welcome marshal failed")
		return nil, err
	}
	return append(b, '\n'), nil
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.wsClients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// Publish broadcasts a page event to all clients.
func (h *Hub) Publish(ev PageEvent) {
	h.log.WithFields(logrus.Fields{"type": ev.Type, "page": ev.PageID}).Debug("publish")
	h.BroadcastJSON(ev)
}

// BroadcastJSON writes v as one JSON line to every client. Clients that fail
// the write are dropped.
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		h.log.WithError(err).Warn("broadcast marshal failed")
		return
	}
	b = append(b, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		_ = c.SetWriteDeadline(time.Now().Add(2 * time.Second))
		w := bufio.NewWriter(c)
		if _, err := w.Write(b); err != nil {
			_ = c.Close()
			delete(h.clients, c)
			continue
		}
		if err := w.Flush(); err != nil {
			_ = c.Close()
			delete(h.clients, c)
		}
	}

	for ws := range h.wsClients {
		_ = ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = ws.Close()
			delete(h.wsClients, ws)
		}
	}
}

func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: len(h.clients),
		WSClients:  len(h.wsClients),
	}
}
