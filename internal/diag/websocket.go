package diag

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server only binds loopback.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type event struct {
	Type    string `json:"type"`
	Visible bool   `json:"visible"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// wsManager tracks connected diagnostics clients and fans events out to
// them.
type wsManager struct {
	log        *slog.Logger
	clients    map[*wsClient]bool
	clientsMu  sync.RWMutex
	events     chan event
	register   chan *wsClient
	unregister chan *wsClient
}

func newWSManager(log *slog.Logger) *wsManager {
	return &wsManager{
		log:        log,
		clients:    make(map[*wsClient]bool),
		events:     make(chan event, 16),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
	}
}

func (m *wsManager) run() {
	for {
		select {
		case c := <-m.register:
			m.clientsMu.Lock()
			m.clients[c] = true
			m.clientsMu.Unlock()

		case c := <-m.unregister:
			m.clientsMu.Lock()
			if _, ok := m.clients[c]; ok {
				delete(m.clients, c)
				close(c.send)
			}
			m.clientsMu.Unlock()

		case ev := <-m.events:
			data, err := json.Marshal(ev)
			if err != nil {
				m.log.Warn("marshal diagnostics event", "err", err)
				continue
			}
			m.clientsMu.Lock()
			for c := range m.clients {
				select {
				case c.send <- data:
				default:
					delete(m.clients, c)
					close(c.send)
				}
			}
			m.clientsMu.Unlock()
		}
	}
}

func (m *wsManager) broadcast(ev event) {
	select {
	case m.events <- ev:
	default:
		m.log.Debug("diagnostics event dropped, feed full")
	}
}

func (m *wsManager) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warn("websocket upgrade", "err", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, 16)}
	m.register <- c

	go c.writePump()
	go c.readPump(m)
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *wsClient) readPump(m *wsManager) {
	defer func() {
		m.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
