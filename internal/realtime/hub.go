// Package realtime implements the live notification fan-out: sessions join
// named channels and receive events published to them. Delivery is
// at-most-once and fire-and-forget; a subscriber that is not connected when
// an event is published never sees it.
package realtime

import (
	"fmt"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Envelope is a single event delivered to a session.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Session is a connected client able to receive envelopes. Implementations
// must tolerate Send being called after the underlying transport dropped.
type Session interface {
	ID() string
	Send(Envelope) error
}

// OrderChannel is the channel key for sessions tracking a single order.
func OrderChannel(orderID int64) string {
	return fmt.Sprintf("order-%d", orderID)
}

// TailorChannel is the channel key for a tailor's dashboard sessions.
func TailorChannel(tailorID int64) string {
	return fmt.Sprintf("tailor-%d", tailorID)
}

// Hub tracks channel membership and fans events out to members.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[string]Session
	sessions map[string]Session
	logger   *zap.Logger
}

// Module provides the hub to the Fx graph.
var Module = fx.Provide(NewHub)

// NewHub constructs an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		channels: make(map[string]map[string]Session),
		sessions: make(map[string]Session),
		logger:   logger,
	}
}

// Join adds the session to a channel. Joining twice is a no-op; the session
// still receives each published event exactly once.
func (h *Hub) Join(channel string, s Session) {
	if channel == "" || s == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.channels[channel]
	if !ok {
		members = make(map[string]Session)
		h.channels[channel] = members
	}
	members[s.ID()] = s
	h.sessions[s.ID()] = s
}

// Leave removes the session from a single channel.
func (h *Hub) Leave(channel string, s Session) {
	if channel == "" || s == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeMember(channel, s.ID())
}

// Disconnect removes the session from every channel it joined. Called when
// the underlying transport drops.
func (h *Hub) Disconnect(s Session) {
	if s == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	for channel := range h.channels {
		h.removeMember(channel, s.ID())
	}
	delete(h.sessions, s.ID())
}

// Publish delivers the event to every current member of the channel. An
// empty channel is a no-op, not an error. Send failures are logged and
// otherwise dropped; the publisher never learns about them.
func (h *Hub) Publish(channel, event string, payload any) {
	h.mu.RLock()
	members := make([]Session, 0, len(h.channels[channel]))
	for _, s := range h.channels[channel] {
		members = append(members, s)
	}
	h.mu.RUnlock()

	env := Envelope{Event: event, Payload: payload}
	for _, s := range members {
		if err := s.Send(env); err != nil && h.logger != nil {
			h.logger.Debug("realtime send failed",
				zap.String("channel", channel),
				zap.String("event", event),
				zap.String("session", s.ID()),
				zap.Error(err),
			)
		}
	}
}

// Broadcast delivers the event to every connected session regardless of
// channel membership.
func (h *Hub) Broadcast(event string, payload any) {
	h.mu.RLock()
	sessions := make([]Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	env := Envelope{Event: event, Payload: payload}
	for _, s := range sessions {
		if err := s.Send(env); err != nil && h.logger != nil {
			h.logger.Debug("realtime broadcast failed",
				zap.String("event", event),
				zap.String("session", s.ID()),
				zap.Error(err),
			)
		}
	}
}

// Members reports the current size of a channel.
func (h *Hub) Members(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// Register a session without joining any channel, so global broadcasts
// reach it.
func (h *Hub) Register(s Session) {
	if s == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID()] = s
}

func (h *Hub) removeMember(channel, sessionID string) {
	members, ok := h.channels[channel]
	if !ok {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(h.channels, channel)
	}
}
