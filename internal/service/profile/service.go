// Package profile implements customer measurement, style preference and
// review operations.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/atelier-hq/atelier/internal/config"
	"github.com/atelier-hq/atelier/internal/entity"
	"github.com/atelier-hq/atelier/internal/messaging"
	"github.com/atelier-hq/atelier/internal/realtime"
	orderrepo "github.com/atelier-hq/atelier/internal/repository/order"
	repo "github.com/atelier-hq/atelier/internal/repository/profile"
	"github.com/atelier-hq/atelier/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/atelier-hq/atelier/service/profile")

// EventReviewCreated is published when a review lands, so the settlement
// worker can recompute the tailor's rating rollup.
const EventReviewCreated = "review.created"

// ReviewEvent is the durable record published on review creation.
type ReviewEvent struct {
	Type       string    `json:"type"`
	ReviewID   int64     `json:"reviewId"`
	TailorID   int64     `json:"tailorId"`
	OrderID    int64     `json:"orderId"`
	Rating     int       `json:"rating"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Service wraps profile persistence with validation and live measurement
// broadcasts.
type Service struct {
	repo      *repo.Repository
	orders    *orderrepo.Repository
	hub       *realtime.Hub
	logger    *zap.Logger
	publisher messaging.Client
	enabled   bool
}

// Module provides the profile service to Fx.
var Module = fx.Provide(NewService)

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Orders     *orderrepo.Repository
	Hub        *realtime.Hub
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		repo:      p.Repository,
		orders:    p.Orders,
		hub:       p.Hub,
		logger:    p.Logger,
		publisher: p.Publisher,
		enabled:   p.Config.Messaging.Enabled,
	}
}

// CreateMeasurement records a new measurement set for a user.
func (s *Service) CreateMeasurement(ctx context.Context, m *entity.Measurement) error {
	if m == nil || m.UserID == 0 {
		return errorbank.BadRequest("user id is required")
	}
	if m.Units == "" {
		m.Units = "inches"
	}
	ctx, span := serviceTracer.Start(ctx, "ProfileService.CreateMeasurement", trace.WithAttributes(attribute.Int64("user.id", m.UserID)))
	defer span.End()

	if err := s.repo.CreateMeasurement(ctx, m); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to create measurement", errorbank.WithCause(err))
	}
	return nil
}

// MeasurementByUser returns the user's current measurement record.
func (s *Service) MeasurementByUser(ctx context.Context, userID int64) (*entity.Measurement, error) {
	ctx, span := serviceTracer.Start(ctx, "ProfileService.MeasurementByUser", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	m, err := s.repo.MeasurementByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrMeasurementNotFound) {
			return nil, errorbank.NotFound("no measurements recorded for user")
		}
		span.RecordError(err)
		return nil, errorbank.Internal("failed to load measurements", errorbank.WithCause(err))
	}
	return m, nil
}

// UpdateMeasurement edits a measurement record and broadcasts the change to
// every connected session. Orders keep their creation-time snapshot.
func (s *Service) UpdateMeasurement(ctx context.Context, m *entity.Measurement) error {
	if m == nil || m.ID == 0 {
		return errorbank.BadRequest("measurement id is required")
	}
	ctx, span := serviceTracer.Start(ctx, "ProfileService.UpdateMeasurement", trace.WithAttributes(attribute.Int64("measurement.id", m.ID)))
	defer span.End()

	if err := s.repo.UpdateMeasurement(ctx, m); err != nil {
		if errors.Is(err, repo.ErrMeasurementNotFound) {
			return errorbank.NotFound("measurement not found")
		}
		span.RecordError(err)
		return errorbank.Internal("failed to update measurement", errorbank.WithCause(err))
	}

	if s.hub != nil {
		s.hub.Broadcast("measurement-updated", m)
	}
	return nil
}

// CreateStylePreference stores a style quiz result.
func (s *Service) CreateStylePreference(ctx context.Context, p *entity.StylePreference) error {
	if p == nil || p.UserID == 0 {
		return errorbank.BadRequest("user id is required")
	}
	ctx, span := serviceTracer.Start(ctx, "ProfileService.CreateStylePreference", trace.WithAttributes(attribute.Int64("user.id", p.UserID)))
	defer span.End()

	if err := s.repo.CreateStylePreference(ctx, p); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to create style preference", errorbank.WithCause(err))
	}
	return nil
}

// StylePreferenceByUser returns the user's latest quiz result.
func (s *Service) StylePreferenceByUser(ctx context.Context, userID int64) (*entity.StylePreference, error) {
	ctx, span := serviceTracer.Start(ctx, "ProfileService.StylePreferenceByUser", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	p, err := s.repo.StylePreferenceByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrPreferenceNotFound) {
			return nil, errorbank.NotFound("no style preferences recorded for user")
		}
		span.RecordError(err)
		return nil, errorbank.Internal("failed to load style preferences", errorbank.WithCause(err))
	}
	return p, nil
}

// CreateReview records a rating for a delivered order and publishes the
// rollup event.
func (s *Service) CreateReview(ctx context.Context, review *entity.Review) error {
	if review == nil || review.UserID == 0 || review.TailorID == 0 || review.OrderID == 0 {
		return errorbank.BadRequest("user, tailor and order ids are required")
	}
	if review.Rating < 1 || review.Rating > 5 {
		return errorbank.BadRequest("rating must be between 1 and 5",
			errorbank.WithDetail("rating", review.Rating))
	}
	ctx, span := serviceTracer.Start(ctx, "ProfileService.CreateReview", trace.WithAttributes(
		attribute.Int64("tailor.id", review.TailorID),
		attribute.Int64("order.id", review.OrderID),
	))
	defer span.End()

	if _, err := s.orders.GetByID(ctx, review.OrderID); err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return errorbank.BadRequest("order does not exist", errorbank.WithDetail("orderId", review.OrderID))
		}
		return errorbank.Internal("failed to resolve order", errorbank.WithCause(err))
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to create review", errorbank.WithCause(err))
	}

	s.publishReviewEvent(ctx, review)
	return nil
}

// ReviewsByTailor returns a tailor's reviews.
func (s *Service) ReviewsByTailor(ctx context.Context, tailorID int64) ([]entity.Review, error) {
	ctx, span := serviceTracer.Start(ctx, "ProfileService.ReviewsByTailor", trace.WithAttributes(attribute.Int64("tailor.id", tailorID)))
	defer span.End()

	reviews, err := s.repo.ReviewsByTailor(ctx, tailorID)
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to list reviews", errorbank.WithCause(err))
	}
	return reviews, nil
}

func (s *Service) publishReviewEvent(ctx context.Context, review *entity.Review) {
	if !s.enabled || s.publisher == nil {
		return
	}
	event := ReviewEvent{
		Type:       EventReviewCreated,
		ReviewID:   review.ID,
		TailorID:   review.TailorID,
		OrderID:    review.OrderID,
		Rating:     review.Rating,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal review event", zap.Error(err))
		}
		return
	}
	key := []byte(fmt.Sprintf("tailor-%d", review.TailorID))
	if err := s.publisher.Publish(ctx, key, payload); err != nil && s.logger != nil {
		s.logger.Error("publish review event", zap.Error(err))
	}
}
