package ws

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/atelier-hq/atelier/internal/config"
	"github.com/atelier-hq/atelier/internal/realtime"
)

// Client message types understood by the gateway.
const (
	msgJoinOrderRoom     = "join-order-room"
	msgJoinTailorRoom    = "join-tailor-room"
	msgMeasurementUpdate = "measurement-update"
	msgOrderStatusUpdate = "order-status-update"
)

// clientMessage is the inbound frame shape. Unknown types are ignored.
type clientMessage struct {
	Type     string          `json:"type"`
	OrderID  int64           `json:"orderId,omitempty"`
	TailorID int64           `json:"tailorId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Gateway upgrades HTTP requests to websocket sessions and bridges client
// frames onto the realtime hub.
type Gateway struct {
	hub      *realtime.Hub
	cfg      config.Realtime
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewGateway constructs a Gateway from the service configuration.
func NewGateway(cfg config.Config, hub *realtime.Hub, logger *zap.Logger) *Gateway {
	return &Gateway{
		hub: hub,
		cfg: cfg.Realtime,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Register mounts the websocket endpoint when realtime is enabled.
func Register(e *echo.Echo, g *Gateway) {
	if !g.cfg.Enabled {
		g.logger.Info("realtime gateway disabled")
		return
	}
	e.GET(g.cfg.Path, g.serve)
}

func (g *Gateway) serve(c echo.Context) error {
	conn, err := g.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return nil
	}

	s := newSession(newSessionID(), conn, g.cfg.SendBuffer, g.cfg.WriteTimeout)
	g.hub.Register(s)
	go s.writePump()

	g.logger.Debug("websocket session opened", zap.String("session", s.ID()))
	g.readLoop(s, conn)

	s.close()
	g.hub.Disconnect(s)
	g.logger.Debug("websocket session closed", zap.String("session", s.ID()))
	return nil
}

// readLoop consumes client frames until the connection drops.
func (g *Gateway) readLoop(s *session, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			g.logger.Debug("malformed websocket frame",
				zap.String("session", s.ID()),
				zap.Error(err),
			)
			continue
		}
		g.dispatch(s, msg)
	}
}

func (g *Gateway) dispatch(s *session, msg clientMessage) {
	switch msg.Type {
	case msgJoinOrderRoom:
		if msg.OrderID > 0 {
			g.hub.Join(realtime.OrderChannel(msg.OrderID), s)
		}
	case msgJoinTailorRoom:
		if msg.TailorID > 0 {
			g.hub.Join(realtime.TailorChannel(msg.TailorID), s)
		}
	case msgMeasurementUpdate:
		g.hub.Broadcast("measurement-updated", msg.Payload)
	case msgOrderStatusUpdate:
		if msg.OrderID > 0 {
			g.hub.Publish(realtime.OrderChannel(msg.OrderID), "order-status-changed", msg.Payload)
		}
	default:
		g.logger.Debug("unknown websocket message type",
			zap.String("session", s.ID()),
			zap.String("type", msg.Type),
		)
	}
}

func newSessionID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "session-unknown"
	}
	return hex.EncodeToString(buf[:])
}
