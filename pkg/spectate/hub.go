// Package spectate mirrors the server's broadcast snapshots to websocket
// spectators as msgpack frames.
package spectate

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/QYUbit/Tickline/pkg/protocol"
	"github.com/QYUbit/Tickline/pkg/tlog"
)

var ErrHubClosed = errors.New("spectator hub closed")

const (
	DefaultQueueSize    = 8
	DefaultWriteTimeout = 2 * time.Second
)

type Config struct {
	Logger       tlog.Logger
	QueueSize    int
	WriteTimeout time.Duration
}

// Hub implements server.Observer. Publish never blocks: a subscriber whose
// queue is full misses the frame.
type Hub struct {
	logger       tlog.Logger
	upgrader     websocket.Upgrader
	queueSize    int
	writeTimeout time.Duration

	mu     sync.Mutex
	subs   map[uuid.UUID]*subscriber
	closed bool

	dropped atomic.Uint64
}

type subscriber struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

func NewHub(cfg Config) *Hub {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	return &Hub{
		logger: tlog.OrNop(cfg.Logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		queueSize:    cfg.QueueSize,
		writeTimeout: cfg.WriteTimeout,
		subs:         make(map[uuid.UUID]*subscriber),
	}
}

// Publish encodes snap once and queues it for every subscriber. snap is not
// retained.
func (h *Hub) Publish(tick uint64, snap *protocol.GameStateMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || len(h.subs) == 0 {
		return
	}

	data, err := msgpack.Marshal(newFrame(tick, snap))
	if err != nil {
		h.logger.Error("failed to encode spectator frame", "tick", tick, "error", err)
		return
	}

	for _, sub := range h.subs {
		select {
		case sub.send <- data:
		default:
			h.dropped.Add(1)
		}
	}
}

// ServeHTTP upgrades the request and streams frames until the spectator
// goes away or the hub is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		http.Error(w, ErrHubClosed.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("spectator upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sub := &subscriber{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, h.queueSize),
		done: make(chan struct{}),
	}
	if !h.add(sub) {
		conn.Close()
		return
	}
	h.logger.Info("spectator joined", "spectator", sub.id, "remote", r.RemoteAddr)

	go h.writePump(sub)
	h.readPump(sub)

	h.remove(sub)
	sub.stop()
	conn.Close()
	h.logger.Info("spectator left", "spectator", sub.id)
}

func (h *Hub) add(sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.subs[sub.id] = sub
	return true
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub.id)
	h.mu.Unlock()
}

// readPump discards anything the spectator sends so control frames are
// processed and a close is noticed.
func (h *Hub) readPump(sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(sub *subscriber) {
	for {
		select {
		case <-sub.done:
			deadline := time.Now().Add(h.writeTimeout)
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = sub.conn.WriteControl(websocket.CloseMessage, msg, deadline)
			return

		case data := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := sub.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				h.logger.Debug("spectator write failed", "spectator", sub.id, "error", err)
				sub.conn.Close()
				return
			}
		}
	}
}

// Count returns the number of connected spectators.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped returns how many frames were skipped because a queue was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close sends a close frame to every spectator and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for _, sub := range h.subs {
		sub.stop()
	}
	return nil
}
