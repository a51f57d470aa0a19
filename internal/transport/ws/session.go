package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atelier-hq/atelier/internal/realtime"
)

// ErrSessionClosed is returned by Send once the session's write pump has
// shut down or its outbound buffer is full.
var ErrSessionClosed = errors.New("ws: session closed")

// session adapts a websocket connection to the realtime.Session interface.
// Envelopes are queued on a buffered channel and drained by a single write
// pump so concurrent hub publishes never interleave writes on the conn.
type session struct {
	id           string
	conn         *websocket.Conn
	outbound     chan realtime.Envelope
	writeTimeout time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

func newSession(id string, conn *websocket.Conn, buffer int, writeTimeout time.Duration) *session {
	return &session{
		id:           id,
		conn:         conn,
		outbound:     make(chan realtime.Envelope, buffer),
		writeTimeout: writeTimeout,
		closed:       make(chan struct{}),
	}
}

func (s *session) ID() string { return s.id }

// Send queues an envelope for delivery. A slow consumer whose buffer is
// full is dropped rather than blocking the hub.
func (s *session) Send(env realtime.Envelope) error {
	select {
	case <-s.closed:
		return ErrSessionClosed
	default:
	}

	select {
	case s.outbound <- env:
		return nil
	default:
		s.close()
		return ErrSessionClosed
	}
}

// writePump drains the outbound queue onto the connection. It exits when
// the session closes, after which the connection is torn down.
func (s *session) writePump() {
	defer s.conn.Close()
	for {
		select {
		case env := <-s.outbound:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := s.conn.WriteJSON(env); err != nil {
				s.close()
				return
			}
		case <-s.closed:
			return
		}
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() { close(s.closed) })
}
