package order

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/atelier-hq/atelier/internal/messaging"
)

func TestSettlement_HandleRouting(t *testing.T) {
	ctx := context.Background()
	s := &Settlement{logger: zap.NewNop()}

	t.Run("unknown event type acknowledged", func(t *testing.T) {
		msg := messaging.Message{Topic: "orders.events", Value: []byte(`{"type":"order.archived"}`)}
		if err := s.Handle(ctx, msg); err != nil {
			t.Fatalf("Handle returned %v, want nil for unknown type", err)
		}
	})

	t.Run("malformed envelope rejected", func(t *testing.T) {
		msg := messaging.Message{Topic: "orders.events", Value: []byte(`not json`)}
		if err := s.Handle(ctx, msg); err == nil {
			t.Fatal("expected decode error")
		}
	})

	t.Run("non-terminal status change is a no-op", func(t *testing.T) {
		// No repositories are wired; a rollup recompute would panic. The
		// handler must not reach that path for an in-progress order.
		msg := messaging.Message{
			Topic: "orders.events",
			Value: []byte(`{"type":"order.status_changed","orderId":1,"tailorId":2,"status":"in_progress"}`),
		}
		if err := s.Handle(ctx, msg); err != nil {
			t.Fatalf("Handle returned %v, want nil", err)
		}
	})

	t.Run("order created is a no-op", func(t *testing.T) {
		msg := messaging.Message{
			Topic: "orders.events",
			Value: []byte(`{"type":"order.created","orderId":1,"tailorId":2,"status":"pending"}`),
		}
		if err := s.Handle(ctx, msg); err != nil {
			t.Fatalf("Handle returned %v, want nil", err)
		}
	})
}
