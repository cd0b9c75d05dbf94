package http

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"plate-stabilizer/internal/domain/plate"
)

const (
	writeWait      = 5 * time.Second
	registerWait   = 5 * time.Second
	clientBuffer   = 32
	broadcastQueue = 256
)

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub pushes worker events to connected websocket clients. The client set is
// owned by the Run goroutine.
type Hub struct {
	log        zerolog.Logger
	upgrader   websocket.Upgrader
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte
	done       chan struct{}
	clients    atomic.Int32
}

func NewHub(allowedOrigins []string, log zerolog.Logger) *Hub {
	h := &Hub{
		log:        log,
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, broadcastQueue),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || len(allowedOrigins) == 0 ||
				slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	clients := make(map[*wsClient]struct{})
	drop := func(cl *wsClient) {
		if _, ok := clients[cl]; ok {
			delete(clients, cl)
			close(cl.send)
			h.clients.Store(int32(len(clients)))
		}
	}

	for {
		select {
		case <-ctx.Done():
			for cl := range clients {
				drop(cl)
			}
			return

		case cl := <-h.register:
			clients[cl] = struct{}{}
			h.clients.Store(int32(len(clients)))
			h.log.Debug().Int("clients", len(clients)).Msg("websocket client connected")

		case cl := <-h.unregister:
			drop(cl)
			h.log.Debug().Int("clients", len(clients)).Msg("websocket client disconnected")

		case msg := <-h.broadcast:
			for cl := range clients {
				select {
				case cl.send <- msg:
				default:
					h.log.Warn().Msg("websocket client too slow, disconnecting")
					drop(cl)
				}
			}
		}
	}
}

// Publish implements pipeline.Sink. Events are dropped when the queue is full.
func (h *Hub) Publish(e plate.Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to encode event")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn().Str("type", string(e.Type)).Msg("event queue full, dropping event")
	}
}

func (h *Hub) Clients() int {
	return int(h.clients.Load())
}

func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	cl := &wsClient{conn: conn, send: make(chan []byte, clientBuffer)}
	select {
	case h.register <- cl:
	case <-h.done:
		conn.Close()
		return
	case <-time.After(registerWait):
		h.log.Warn().Msg("event hub is not running")
		conn.Close()
		return
	}

	go h.writePump(cl)
	go h.readPump(cl)
}

func (h *Hub) writePump(cl *wsClient) {
	defer cl.conn.Close()
	for msg := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.leave(cl)
			return
		}
	}
	_ = cl.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// readPump only watches for the client going away.
func (h *Hub) readPump(cl *wsClient) {
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Msg("websocket read error")
			}
			h.leave(cl)
			return
		}
	}
}

func (h *Hub) leave(cl *wsClient) {
	select {
	case h.unregister <- cl:
	case <-h.done:
	}
}
