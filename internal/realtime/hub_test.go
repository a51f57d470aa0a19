package realtime

import (
	"errors"
	"sync"
	"testing"
)

type fakeSession struct {
	id string

	mu       sync.Mutex
	received []Envelope
	sendErr  error
}

func (f *fakeSession) ID() string { return f.id }

func (f *fakeSession) Send(env Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.received = append(f.received, env)
	return nil
}

func (f *fakeSession) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.received))
	for i, env := range f.received {
		out[i] = env.Event
	}
	return out
}

func TestHub_PublishScopedToChannel(t *testing.T) {
	hub := NewHub(nil)

	watcher := &fakeSession{id: "watcher"}
	bystander := &fakeSession{id: "bystander"}
	hub.Join(OrderChannel(42), watcher)
	hub.Join(OrderChannel(7), bystander)

	hub.Publish(OrderChannel(42), "order-status-changed", map[string]any{"orderId": 42})

	if got := watcher.events(); len(got) != 1 || got[0] != "order-status-changed" {
		t.Errorf("watcher events = %v, want [order-status-changed]", got)
	}
	if got := bystander.events(); len(got) != 0 {
		t.Errorf("bystander on order-7 received %v, want nothing", got)
	}
}

func TestHub_JoinIdempotent(t *testing.T) {
	hub := NewHub(nil)
	s := &fakeSession{id: "s1"}

	hub.Join(TailorChannel(3), s)
	hub.Join(TailorChannel(3), s)

	if n := hub.Members(TailorChannel(3)); n != 1 {
		t.Fatalf("members = %d, want 1", n)
	}

	hub.Publish(TailorChannel(3), "new-order", nil)
	if got := s.events(); len(got) != 1 {
		t.Errorf("session received %d envelopes, want exactly 1", len(got))
	}
}

func TestHub_Leave(t *testing.T) {
	hub := NewHub(nil)
	s := &fakeSession{id: "s1"}

	hub.Join(OrderChannel(1), s)
	hub.Leave(OrderChannel(1), s)

	hub.Publish(OrderChannel(1), "order-status-changed", nil)
	if got := s.events(); len(got) != 0 {
		t.Errorf("left session received %v, want nothing", got)
	}
	if n := hub.Members(OrderChannel(1)); n != 0 {
		t.Errorf("members after leave = %d, want 0", n)
	}
}

func TestHub_DisconnectRemovesFromAllChannels(t *testing.T) {
	hub := NewHub(nil)
	s := &fakeSession{id: "s1"}

	hub.Join(OrderChannel(1), s)
	hub.Join(TailorChannel(2), s)
	hub.Disconnect(s)

	hub.Publish(OrderChannel(1), "order-status-changed", nil)
	hub.Publish(TailorChannel(2), "new-order", nil)
	hub.Broadcast("measurement-updated", nil)

	if got := s.events(); len(got) != 0 {
		t.Errorf("disconnected session received %v, want nothing", got)
	}
}

func TestHub_BroadcastReachesRegisteredSessions(t *testing.T) {
	hub := NewHub(nil)

	joined := &fakeSession{id: "joined"}
	lurker := &fakeSession{id: "lurker"}
	hub.Join(OrderChannel(9), joined)
	hub.Register(lurker)

	hub.Broadcast("measurement-updated", map[string]any{"chest": 40.5})

	for _, s := range []*fakeSession{joined, lurker} {
		if got := s.events(); len(got) != 1 || got[0] != "measurement-updated" {
			t.Errorf("session %s events = %v, want [measurement-updated]", s.id, got)
		}
	}
}

func TestHub_PublishDropsFailedSends(t *testing.T) {
	hub := NewHub(nil)

	broken := &fakeSession{id: "broken", sendErr: errors.New("gone")}
	healthy := &fakeSession{id: "healthy"}
	hub.Join(OrderChannel(5), broken)
	hub.Join(OrderChannel(5), healthy)

	hub.Publish(OrderChannel(5), "order-status-changed", nil)

	if got := healthy.events(); len(got) != 1 {
		t.Errorf("healthy session received %d envelopes, want 1", len(got))
	}
}
