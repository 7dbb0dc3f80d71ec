package stream

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	// ErrHubClosed is returned when subscribing to a closed hub.
	ErrHubClosed = errors.New("stream hub closed")

	// ErrHubFull is returned when the hub already has MaxSubscribers.
	ErrHubFull = errors.New("too many subscribers")
)

// Config holds push stream settings.
type Config struct {
	BufferSize     int           // Queued messages per subscriber (default: 16)
	WriteTimeout   time.Duration // Per-message write deadline (default: 5s)
	PingInterval   time.Duration // Keepalive ping period (default: 30s)
	PongTimeout    time.Duration // Drop subscriber after this long without a pong (default: 60s)
	MaxSubscribers int           // 0 means unlimited
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:   16,
		WriteTimeout: 5 * time.Second,
		PingInterval: 30 * time.Second,
		PongTimeout:  60 * time.Second,
	}
}

// Hub fans messages out to websocket subscribers. A slow subscriber loses its
// oldest queued messages rather than blocking Broadcast.
type Hub struct {
	cfg      Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	closed bool

	wg sync.WaitGroup
}

// NewHub creates a new Hub.
func NewHub(cfg Config, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaults.BufferSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaults.PingInterval
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = defaults.PongTimeout
	}

	return &Hub{
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the connection as a subscriber.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Fast path; add checks again under the write lock.
	if err := h.admit(); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	s := &subscriber{
		conn: conn,
		send: make(chan []byte, h.cfg.BufferSize),
		done: make(chan struct{}),
	}
	if err := h.add(s); err != nil {
		code := websocket.CloseGoingAway
		if errors.Is(err, ErrHubFull) {
			code = websocket.CloseTryAgainLater
		}
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(code, err.Error()),
			time.Now().Add(time.Second),
		)
		conn.Close()
		h.logger.Debug("stream subscriber rejected", "remote", r.RemoteAddr, "err", err)
		return
	}

	go h.writeLoop(s)
	go h.readLoop(s)

	h.logger.Debug("stream subscriber connected", "remote", r.RemoteAddr, "subscribers", h.Len())
}

// Broadcast queues data for every subscriber without blocking.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var dropped int
	for s := range h.subs {
		if !s.enqueue(data) {
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("stream subscribers lagging, dropped messages", "subscribers", dropped)
	}
}

// Len returns the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber and waits for their goroutines to exit.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	subs := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.close(websocket.CloseGoingAway, "shutting down")
	}
	h.wg.Wait()

	h.logger.Info("stream hub closed", "subscribers", len(subs))
	return nil
}

func (h *Hub) admit() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.admitLocked()
}

func (h *Hub) admitLocked() error {
	if h.closed {
		return ErrHubClosed
	}
	if h.cfg.MaxSubscribers > 0 && len(h.subs) >= h.cfg.MaxSubscribers {
		return ErrHubFull
	}
	return nil
}

func (h *Hub) add(s *subscriber) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.admitLocked(); err != nil {
		return err
	}
	h.subs[s] = struct{}{}
	// One for each of writeLoop and readLoop; added under the lock so Close
	// cannot start waiting first.
	h.wg.Add(2)
	return nil
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// writeLoop drains the subscriber queue and keeps the connection alive.
func (h *Hub) writeLoop(s *subscriber) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case msg := <-s.send:
			s.writeMu.Lock()
			s.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			err := s.conn.WriteMessage(websocket.TextMessage, msg)
			s.writeMu.Unlock()
			if err != nil {
				h.logger.Debug("stream write failed", "err", err)
				h.remove(s)
				s.close(websocket.CloseGoingAway, "")
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				h.logger.Debug("failed to send ping", "error", err)
			}
		}
	}
}

// readLoop discards client frames; it exists to process control frames and
// to notice disconnects.
func (h *Hub) readLoop(s *subscriber) {
	defer h.wg.Done()
	defer func() {
		h.remove(s)
		s.close(websocket.CloseNormalClosure, "")
	}()

	s.conn.SetReadLimit(4096)
	s.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(h.cfg.PongTimeout))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			select {
			case <-s.done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.logger.Debug("stream subscriber read failed", "err", err)
				}
			}
			return
		}
	}
}
