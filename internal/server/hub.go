package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/simonjohansson/jobboard/internal/model"
)

const broadcastQueueSize = 128

type wsClient struct {
	conn   *websocket.Conn
	column string
	mu     sync.Mutex
}

// wants reports whether the client subscribed to events for the given column.
// Board-wide events carry no column and reach everyone.
func (c *wsClient) wants(event model.Event) bool {
	if c.column == "" || event.ColumnID == "" {
		return true
	}
	return c.column == event.ColumnID || c.column == event.FromColumnID
}

type hub struct {
	upgrader   websocket.Upgrader
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan model.Event
	done       chan struct{}
	closeOnce  sync.Once
	clients    map[*wsClient]struct{}
	logger     *slog.Logger
}

func newHub(logger *slog.Logger) *hub {
	h := &hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan model.Event, broadcastQueueSize),
		done:       make(chan struct{}),
		clients:    make(map[*wsClient]struct{}),
		logger:     logger,
	}
	go h.run()
	return h
}

func (h *hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &wsClient{conn: conn, column: r.URL.Query().Get("column")}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.unregister <- client:
			case <-h.done:
			}
		}()
		for {
			if _, _, err := client.conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish never blocks. When the queue is full the pending events are dropped and
// replaced by a single resync.required so subscribers refetch the board.
func (h *hub) Publish(event model.Event) {
	select {
	case h.broadcast <- event:
		return
	default:
	}

drain:
	for {
		select {
		case <-h.broadcast:
		default:
			break drain
		}
	}
	select {
	case h.broadcast <- model.Event{Type: model.EventTypeResyncRequired, Timestamp: time.Now().UTC()}:
	default:
	}
	if h.logger != nil {
		h.logger.Warn("event queue saturated, resync requested", "dropped_type", event.Type)
	}
}

func (h *hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			// New subscribers start by fetching the board.
			h.send(client, model.Event{Type: model.EventTypeResyncRequired, Timestamp: time.Now().UTC()})
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				_ = client.conn.Close()
			}
		case event := <-h.broadcast:
			for client := range h.clients {
				if !client.wants(event) {
					continue
				}
				h.send(client, event)
			}
		case <-h.done:
			for client := range h.clients {
				_ = client.conn.Close()
			}
			return
		}
	}
}

func (h *hub) send(client *wsClient, event model.Event) {
	client.mu.Lock()
	_ = client.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	err := client.conn.WriteJSON(event)
	client.mu.Unlock()
	if err != nil {
		delete(h.clients, client)
		_ = client.conn.Close()
	}
}
