package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/atelier-hq/atelier/internal/commission"
	"github.com/atelier-hq/atelier/internal/config"
	"github.com/atelier-hq/atelier/internal/entity"
	"github.com/atelier-hq/atelier/internal/messaging"
	catalogrepo "github.com/atelier-hq/atelier/internal/repository/catalog"
	orderrepo "github.com/atelier-hq/atelier/internal/repository/order"
	profilerepo "github.com/atelier-hq/atelier/internal/repository/profile"
	ordersvc "github.com/atelier-hq/atelier/internal/service/order"
	profilesvc "github.com/atelier-hq/atelier/internal/service/profile"
	"github.com/atelier-hq/atelier/internal/worker"
)

var workerTracer = otel.Tracer("github.com/atelier-hq/atelier/worker/order")

// Module registers the settlement handler on the orders topic.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewSettlementHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// eventHeader carries just enough of an envelope to route it. All events on
// the orders topic share this shape.
type eventHeader struct {
	Type string `json:"type"`
}

// Settlement recomputes tailor rollups from durable lifecycle events. The
// recompute reads aggregates from the source tables rather than incrementing
// counters, so replays and reordered deliveries converge on the same values.
type Settlement struct {
	orders     *orderrepo.Repository
	catalog    *catalogrepo.Repository
	profile    *profilerepo.Repository
	calculator commission.Calculator
	logger     *zap.Logger
}

// SettlementParams collects handler dependencies via Fx.
type SettlementParams struct {
	fx.In

	Orders  *orderrepo.Repository
	Catalog *catalogrepo.Repository
	Profile *profilerepo.Repository
	Config  config.Config
	Logger  *zap.Logger
}

// NewSettlementHandler builds the worker registration for the orders topic.
func NewSettlementHandler(p SettlementParams) worker.HandlerRegistration {
	s := &Settlement{
		orders:     p.Orders,
		catalog:    p.Catalog,
		profile:    p.Profile,
		calculator: commission.NewCalculator(p.Config.Payment.CommissionRate),
		logger:     p.Logger,
	}

	return worker.HandlerRegistration{
		Topic:   p.Config.Messaging.Kafka.Topic,
		Handler: s.Handle,
	}
}

// Handle routes a message by its event type. Unknown types are acknowledged
// so the topic can grow without stalling the consumer group.
func (s *Settlement) Handle(ctx context.Context, msg messaging.Message) error {
	ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
		attribute.String("messaging.topic", msg.Topic),
	))
	defer span.End()

	var header eventHeader
	if err := json.Unmarshal(msg.Value, &header); err != nil {
		s.logger.Error("failed to decode event envelope", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode error")
		return err
	}
	span.SetAttributes(attribute.String("event.type", header.Type))

	switch header.Type {
	case ordersvc.EventOrderCreated:
		return s.handleOrderEvent(ctx, msg.Value, false)
	case ordersvc.EventOrderStatusChanged:
		return s.handleOrderEvent(ctx, msg.Value, true)
	case profilesvc.EventReviewCreated:
		return s.handleReviewEvent(ctx, msg.Value)
	default:
		s.logger.Debug("skipping unknown event type", zap.String("type", header.Type))
		return nil
	}
}

func (s *Settlement) handleOrderEvent(ctx context.Context, raw []byte, statusChange bool) error {
	var event ordersvc.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		s.logger.Error("failed to decode order event", zap.Error(err))
		return err
	}

	s.logger.Info("order event processed",
		zap.String("type", event.Type),
		zap.Int64("orderId", event.OrderID),
		zap.String("status", string(event.Status)),
	)

	// Rollups only move when an order reaches the terminal completed state.
	if !statusChange || event.Status != entity.StatusCompleted {
		return nil
	}
	return s.recomputeOrderRollup(ctx, event.TailorID)
}

func (s *Settlement) recomputeOrderRollup(ctx context.Context, tailorID int64) error {
	count, totalAmount, err := s.orders.CompletedStatsByTailor(ctx, tailorID)
	if err != nil {
		return err
	}

	breakdown, err := s.calculator.Calculate(totalAmount)
	if err != nil {
		return err
	}

	if err := s.catalog.UpdateTailorRollup(ctx, tailorID, count, breakdown.TailorEarnings); err != nil {
		return err
	}

	s.logger.Info("tailor order rollup updated",
		zap.Int64("tailorId", tailorID),
		zap.Int64("completedOrders", count),
		zap.Int64("revenue", breakdown.TailorEarnings),
	)
	return nil
}

func (s *Settlement) handleReviewEvent(ctx context.Context, raw []byte) error {
	var event profilesvc.ReviewEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		s.logger.Error("failed to decode review event", zap.Error(err))
		return err
	}

	avg, count, err := s.profile.ReviewStatsByTailor(ctx, event.TailorID)
	if err != nil {
		return err
	}

	if err := s.catalog.UpdateTailorRating(ctx, event.TailorID, avg, count); err != nil {
		return err
	}

	s.logger.Info("tailor rating rollup updated",
		zap.Int64("tailorId", event.TailorID),
		zap.Float64("rating", avg),
		zap.Int64("totalReviews", count),
	)
	return nil
}
