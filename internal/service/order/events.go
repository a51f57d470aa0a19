package order

import (
	"time"

	"github.com/atelier-hq/atelier/internal/entity"
)

// Event types published on the orders topic.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// Event is the durable lifecycle record consumed by the settlement worker.
type Event struct {
	Type        string             `json:"type"`
	OrderID     int64              `json:"orderId"`
	UserID      int64              `json:"userId"`
	TailorID    int64              `json:"tailorId"`
	Status      entity.OrderStatus `json:"status"`
	TotalAmount int64              `json:"totalAmount"`
	OccurredAt  time.Time          `json:"occurredAt"`
}

// StatusChange is the realtime payload delivered on an order's channel.
type StatusChange struct {
	OrderID int64         `json:"orderId"`
	Status  string        `json:"status"`
	Order   *entity.Order `json:"order,omitempty"`
}
