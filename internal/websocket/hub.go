// Package websocket pushes reload notifications to open browser tabs while
// the server runs in development mode.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/solidprinciples/solid/internal/logging"
)

// Message types sent to browsers.
const (
	MessageReload = "reload"
)

// Message is the JSON payload written to every client.
type Message struct {
	Type      string    `json:"type"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Client is one connected browser.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks clients and fans out broadcasts.
//
// Invariants:
//   - clients is only accessed with mutex held
//   - a client's send channel is closed exactly once, by whoever removes it
//     from clients
type Hub struct {
	clients map[*Client]struct{}
	mutex   sync.RWMutex

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	originPatterns []string
	logger         logging.Logger
	pingInterval   time.Duration

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
	isShutdown   atomic.Bool
}

// NewHub starts a hub. originPatterns are host patterns accepted in addition
// to same-origin requests, as understood by websocket.AcceptOptions.
func NewHub(originPatterns []string, logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Discard()
	}
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		clients:        make(map[*Client]struct{}),
		broadcast:      make(chan []byte, 16),
		register:       make(chan *Client, 16),
		unregister:     make(chan *Client, 16),
		originPatterns: originPatterns,
		logger:         logger.WithComponent("websocket"),
		pingInterval:   30 * time.Second,
		ctx:            ctx,
		cancel:         cancel,
	}
	go h.run()
	return h
}

// HandleWebSocket upgrades the request and registers the client.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.isShutdown.Load() {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  h.originPatterns,
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		h.logger.Warn(r.Context(), err, "WebSocket upgrade failed", "remote", r.RemoteAddr)
		return
	}

	client := &Client{conn: conn, send: make(chan []byte, 8)}
	select {
	case h.register <- client:
	case <-h.ctx.Done():
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	go h.serveClient(client)
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug(h.ctx, "WebSocket client connected", "clients", count)

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mutex.RLock()
			var slow []*Client
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					slow = append(slow, client)
				}
			}
			h.mutex.RUnlock()
			for _, client := range slow {
				h.remove(client)
			}

		case <-h.ctx.Done():
			return
		}
	}
}

// remove drops client and closes its send channel if it is still registered.
func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	count := len(h.clients)
	h.mutex.Unlock()

	if ok {
		h.logger.Debug(h.ctx, "WebSocket client disconnected", "clients", count)
	}
}

// serveClient writes queued messages and pings until the client goes away.
// Browsers never send anything, so reads are discarded by CloseRead.
func (h *Hub) serveClient(client *Client) {
	ctx := client.conn.CloseRead(h.ctx)
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	defer func() {
		select {
		case h.unregister <- client:
		case <-h.ctx.Done():
		}
		client.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := client.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := client.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Broadcast queues message for every connected client. It never blocks; a
// full queue drops the message.
func (h *Hub) Broadcast(message Message) {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error(h.ctx, err, "Failed to marshal broadcast message")
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.ctx.Done():
	default:
		h.logger.Warn(h.ctx, nil, "Broadcast queue full, dropping message", "type", message.Type)
	}
}

// NotifyReload asks every browser to reload the page.
func (h *Hub) NotifyReload(reason string) {
	h.Broadcast(Message{Type: MessageReload, Reason: reason})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Shutdown closes every connection and stops the hub. It is idempotent.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(func() {
		h.isShutdown.Store(true)
		h.cancel()

		h.mutex.Lock()
		for client := range h.clients {
			close(client.send)
			client.conn.Close(websocket.StatusGoingAway, "server shutdown")
		}
		h.clients = make(map[*Client]struct{})
		h.mutex.Unlock()
	})
	return ctx.Err()
}

// IsShutdown returns whether the hub has been shut down
func (h *Hub) IsShutdown() bool {
	return h.isShutdown.Load()
}
