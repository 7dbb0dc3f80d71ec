package stream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// subscriber is one connected websocket client.
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	// Serializes data frames with the close frame.
	writeMu   sync.Mutex
	closeOnce sync.Once
}

// enqueue queues msg, evicting the oldest queued message when the buffer is
// full. It reports false when a message had to be dropped.
func (s *subscriber) enqueue(msg []byte) bool {
	select {
	case s.send <- msg:
		return true
	default:
	}

	// Channel full, drop oldest by consuming one and retrying.
	select {
	case <-s.send:
	default:
	}
	select {
	case s.send <- msg:
	default:
	}
	return false
}

// close sends a close frame and closes the connection once.
func (s *subscriber) close(code int, text string) {
	s.closeOnce.Do(func() {
		close(s.done)

		s.writeMu.Lock()
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(code, text),
			time.Now().Add(time.Second),
		)
		s.writeMu.Unlock()

		s.conn.Close()
	})
}
