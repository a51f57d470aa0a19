package ws

import (
	"errors"
	"testing"
	"time"

	"github.com/atelier-hq/atelier/internal/realtime"
)

func TestSession_SendBuffers(t *testing.T) {
	s := newSession("s1", nil, 2, time.Second)

	if err := s.Send(realtime.Envelope{Event: "new-order"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if err := s.Send(realtime.Envelope{Event: "order-status-changed"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got := len(s.outbound); got != 2 {
		t.Errorf("buffered %d envelopes, want 2", got)
	}
}

func TestSession_SlowConsumerDropped(t *testing.T) {
	s := newSession("s1", nil, 1, time.Second)

	if err := s.Send(realtime.Envelope{Event: "first"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	// Buffer is full and nothing is draining it.
	if err := s.Send(realtime.Envelope{Event: "second"}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Send on full buffer = %v, want ErrSessionClosed", err)
	}
	// The session stays closed afterwards.
	if err := s.Send(realtime.Envelope{Event: "third"}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Send after close = %v, want ErrSessionClosed", err)
	}
}

func TestSession_SendAfterClose(t *testing.T) {
	s := newSession("s1", nil, 4, time.Second)
	s.close()

	if err := s.Send(realtime.Envelope{Event: "late"}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Send after close = %v, want ErrSessionClosed", err)
	}
}

func TestSession_CloseIdempotent(t *testing.T) {
	s := newSession("s1", nil, 1, time.Second)
	s.close()
	s.close()

	select {
	case <-s.closed:
	default:
		t.Fatal("closed channel not closed")
	}
}

func TestNewSessionID(t *testing.T) {
	a, b := newSessionID(), newSessionID()
	if a == "" || b == "" {
		t.Fatal("empty session id")
	}
	if a == b {
		t.Errorf("consecutive ids collide: %s", a)
	}
}
