package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/atelier-hq/atelier/internal/cache"
	"github.com/atelier-hq/atelier/internal/commission"
	"github.com/atelier-hq/atelier/internal/config"
	"github.com/atelier-hq/atelier/internal/entity"
	"github.com/atelier-hq/atelier/internal/messaging"
	"github.com/atelier-hq/atelier/internal/realtime"
	catalogrepo "github.com/atelier-hq/atelier/internal/repository/catalog"
	repo "github.com/atelier-hq/atelier/internal/repository/order"
	"github.com/atelier-hq/atelier/pkg/errorbank"
)

var (
	serviceTracer = otel.Tracer("github.com/atelier-hq/atelier/service/order")
	serviceMeter  = otel.Meter("github.com/atelier-hq/atelier/service/order")

	ordersCreated, _ = serviceMeter.Int64Counter("orders_created_total",
		metric.WithDescription("orders accepted through checkout"))
	ordersTransitioned, _ = serviceMeter.Int64Counter("order_transitions_total",
		metric.WithDescription("successful order status transitions"))
)

// casRetries bounds reload-and-revalidate attempts on a status race.
const casRetries = 3

// Store is the order persistence surface the lifecycle manager depends on.
type Store interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	GetWithDetails(ctx context.Context, id int64) (*entity.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]entity.Order, error)
	ListByTailor(ctx context.Context, tailorID int64) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus, fromVersion int64, updatedAt time.Time) error
}

// References resolves the parties an order points at.
type References interface {
	GetUser(ctx context.Context, id int64) (*entity.User, error)
	GetTailor(ctx context.Context, id int64) (*entity.Tailor, error)
	GetDesignWithTailor(ctx context.Context, id int64) (*entity.Design, error)
}

// Notifier fans events out to live sessions.
type Notifier interface {
	Publish(channel, event string, payload any)
}

// Service owns the order lifecycle: creation, status transitions and the
// downstream notification fan-out.
type Service struct {
	store      Store
	refs       References
	hub        Notifier
	cache      cache.Store
	cacheTTL   time.Duration
	calculator commission.Calculator
	logger     *zap.Logger
	publisher  messaging.Client
	messaging  messagingConfig
}

type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Catalog    *catalogrepo.Repository
	Hub        *realtime.Hub
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:      p.Repository,
		refs:       p.Catalog,
		hub:        p.Hub,
		cache:      p.Cache,
		cacheTTL:   p.Config.Cache.DefaultTTL,
		calculator: commission.NewCalculator(p.Config.Payment.CommissionRate),
		logger:     p.Logger,
		publisher:  p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}
}

// CreateInput carries the order fields supplied by the checkout flow.
type CreateInput struct {
	UserID                int64             `json:"userId"`
	TailorID              int64             `json:"tailorId"`
	DesignID              int64             `json:"designId"`
	Measurements          map[string]string `json:"measurements"`
	Customizations        map[string]any    `json:"customizations"`
	DeliveryAddress       string            `json:"deliveryAddress"`
	Phone                 string            `json:"phone"`
	PreferredDeliveryDate *time.Time        `json:"preferredDeliveryDate"`
	SpecialInstructions   string            `json:"specialInstructions"`
	DesignPrice           int64             `json:"designPrice"`
	CustomizationFee      int64             `json:"customizationFee"`
	DeliveryFee           int64             `json:"deliveryFee"`
	TotalAmount           int64             `json:"totalAmount"`
}

// CreateResult is the created order plus the settlement preview shown to the
// customer.
type CreateResult struct {
	Order      *entity.Order        `json:"order"`
	Settlement commission.Breakdown `json:"settlement"`
}

// Create validates a new order, persists it in the pending state and
// notifies the assigned tailor's dashboard channel.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(
		attribute.Int64("order.tailor_id", in.TailorID),
		attribute.Int64("order.design_id", in.DesignID),
	))
	defer span.End()

	if err := s.validateCreate(ctx, in); err != nil {
		return nil, err
	}

	settlement, err := s.calculator.Calculate(in.TotalAmount)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &entity.Order{
		UserID:                in.UserID,
		TailorID:              in.TailorID,
		DesignID:              in.DesignID,
		Measurements:          in.Measurements,
		Customizations:        in.Customizations,
		DeliveryAddress:       in.DeliveryAddress,
		Phone:                 in.Phone,
		PreferredDeliveryDate: in.PreferredDeliveryDate,
		SpecialInstructions:   in.SpecialInstructions,
		DesignPrice:           in.DesignPrice,
		CustomizationFee:      in.CustomizationFee,
		DeliveryFee:           in.DeliveryFee,
		TotalAmount:           in.TotalAmount,
		Status:                entity.StatusPending,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.store.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}

	if s.hub != nil {
		s.hub.Publish(realtime.TailorChannel(order.TailorID), "new-order", order)
	}
	s.publishEvent(ctx, Event{
		Type:        EventOrderCreated,
		OrderID:     order.ID,
		UserID:      order.UserID,
		TailorID:    order.TailorID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  now,
	})
	ordersCreated.Add(ctx, 1)

	return &CreateResult{Order: order, Settlement: settlement}, nil
}

func (s *Service) validateCreate(ctx context.Context, in CreateInput) error {
	switch {
	case in.DeliveryAddress == "":
		return errorbank.BadRequest("delivery address is required")
	case in.Phone == "":
		return errorbank.BadRequest("phone is required")
	case len(in.Measurements) == 0:
		return errorbank.BadRequest("measurement snapshot is required")
	case in.DesignPrice < 0 || in.CustomizationFee < 0 || in.DeliveryFee < 0 || in.TotalAmount < 0:
		return errorbank.BadRequest("monetary amounts must not be negative")
	}

	if sum := in.DesignPrice + in.CustomizationFee + in.DeliveryFee; sum != in.TotalAmount {
		return errorbank.BadRequest("total amount does not match its components",
			errorbank.WithDetail("totalAmount", in.TotalAmount),
			errorbank.WithDetail("componentSum", sum),
		)
	}

	if _, err := s.refs.GetUser(ctx, in.UserID); err != nil {
		if errors.Is(err, catalogrepo.ErrUserNotFound) {
			return errorbank.BadRequest("customer does not exist", errorbank.WithDetail("userId", in.UserID))
		}
		return errorbank.Internal("failed to resolve customer", errorbank.WithCause(err))
	}
	if _, err := s.refs.GetTailor(ctx, in.TailorID); err != nil {
		if errors.Is(err, catalogrepo.ErrTailorNotFound) {
			return errorbank.BadRequest("tailor does not exist", errorbank.WithDetail("tailorId", in.TailorID))
		}
		return errorbank.Internal("failed to resolve tailor", errorbank.WithCause(err))
	}
	if _, err := s.refs.GetDesignWithTailor(ctx, in.DesignID); err != nil {
		if errors.Is(err, catalogrepo.ErrDesignNotFound) {
			return errorbank.BadRequest("design does not exist", errorbank.WithDetail("designId", in.DesignID))
		}
		return errorbank.Internal("failed to resolve design", errorbank.WithCause(err))
	}
	return nil
}

// TransitionStatus moves an order to a new lifecycle state. The raw status
// may use the legacy vocabulary; it is normalized before validation. The
// write is compare-and-swap on the order's version: losing a race triggers a
// bounded reload, so a transition that is still valid from the fresh state
// succeeds.
func (s *Service) TransitionStatus(ctx context.Context, id int64, rawStatus string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.TransitionStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.requested_status", rawStatus),
	))
	defer span.End()

	next, err := entity.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, errorbank.BadRequest("unknown order status", errorbank.WithDetail("status", rawStatus))
	}

	var order *entity.Order
	for attempt := 0; attempt < casRetries; attempt++ {
		order, err = s.store.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, errorbank.NotFound("order not found")
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
		}

		if !order.Status.CanTransitionTo(next) {
			return nil, errorbank.Unprocessable("status transition not allowed",
				errorbank.WithDetail("currentStatus", string(order.Status)),
				errorbank.WithDetail("requestedStatus", string(next)),
			)
		}

		now := time.Now().UTC()
		err = s.store.UpdateStatus(ctx, id, next, order.Version, now)
		if err == nil {
			order.Status = next
			order.Version++
			order.UpdatedAt = now
			break
		}
		if !errors.Is(err, repo.ErrVersionConflict) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, errorbank.Internal("failed to update order status", errorbank.WithCause(err))
		}
		// Lost the race; reload and revalidate from the new state.
	}
	if errors.Is(err, repo.ErrVersionConflict) {
		return nil, errorbank.Conflict("order is being updated concurrently",
			errorbank.WithDetail("orderId", id))
	}

	s.invalidateCache(ctx, id)

	if s.hub != nil {
		s.hub.Publish(realtime.OrderChannel(id), "order-status-changed", StatusChange{
			OrderID: id,
			Status:  string(order.Status),
			Order:   order,
		})
	}
	s.publishEvent(ctx, Event{
		Type:        EventOrderStatusChanged,
		OrderID:     order.ID,
		UserID:      order.UserID,
		TailorID:    order.TailorID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  order.UpdatedAt,
	})
	ordersTransitioned.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", string(order.Status))))

	return order, nil
}

// Get retrieves the detail view of an order, consulting cache when
// available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if order, err := s.getFromCache(ctx, id); err == nil {
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		if s.logger != nil {
			s.logger.Warn("orders cache read failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	order, err := s.store.GetWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		if s.logger != nil {
			s.logger.Warn("orders cache write failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	return order, nil
}

// ListByUser returns a customer's orders with details.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ListByUser", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	orders, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// ListByTailor returns a tailor's assigned orders with details.
func (s *Service) ListByTailor(ctx context.Context, tailorID int64) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ListByTailor", trace.WithAttributes(attribute.Int64("tailor.id", tailorID)))
	defer span.End()

	orders, err := s.store.ListByTailor(ctx, tailorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// ActiveByUser returns the customer's non-terminal orders.
func (s *Service) ActiveByUser(ctx context.Context, userID int64) ([]entity.Order, error) {
	orders, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	active := orders[:0]
	for _, o := range orders {
		if !o.Status.Terminal() {
			active = append(active, o)
		}
	}
	return active, nil
}

func (s *Service) publishEvent(ctx context.Context, event Event) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal order event", zap.Error(err))
		}
		return
	}
	key := []byte(fmt.Sprintf("order-%d", event.OrderID))
	if err := s.publisher.Publish(ctx, key, payload); err != nil {
		if s.logger != nil {
			s.logger.Error("publish order event", zap.String("type", event.Type), zap.Error(err))
		}
	}
}

func (s *Service) cacheKey(id int64) string {
	return "orders:detail:" + strconv.FormatInt(id, 10)
}

func (s *Service) getFromCache(ctx context.Context, id int64) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, s.cacheKey(id))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(order.ID), bytes, s.cacheTTL)
}

func (s *Service) invalidateCache(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil && s.logger != nil {
		s.logger.Warn("orders cache invalidation failed", zap.Int64("id", id), zap.Error(err))
	}
}
