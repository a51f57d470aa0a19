// Package catalog implements the marketplace directory operations: customer
// accounts, tailor profiles and design listings.
package catalog

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/atelier-hq/atelier/internal/entity"
	repo "github.com/atelier-hq/atelier/internal/repository/catalog"
	orderrepo "github.com/atelier-hq/atelier/internal/repository/order"
	"github.com/atelier-hq/atelier/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/atelier-hq/atelier/service/catalog")

// recentOrdersShown caps the dashboard's recent-order list.
const recentOrdersShown = 5

// TailorWithStats is the dashboard view of a tailor profile.
type TailorWithStats struct {
	*entity.Tailor
	Designs      []entity.Design `json:"designs"`
	RecentOrders []entity.Order  `json:"recentOrders"`
}

// Service wraps catalog persistence with validation and view assembly.
type Service struct {
	repo   *repo.Repository
	orders *orderrepo.Repository
	logger *zap.Logger
}

// Module provides the catalog service to Fx.
var Module = fx.Provide(NewService)

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Orders     *orderrepo.Repository
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{repo: p.Repository, orders: p.Orders, logger: p.Logger}
}

// CreateUser registers a customer account.
func (s *Service) CreateUser(ctx context.Context, user *entity.User) error {
	if user == nil || user.Name == "" || user.Email == "" {
		return errorbank.BadRequest("name and email are required")
	}
	ctx, span := serviceTracer.Start(ctx, "CatalogService.CreateUser")
	defer span.End()

	if err := s.repo.CreateUser(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to create user", errorbank.WithCause(err))
	}
	return nil
}

// GetUser returns a customer account by id.
func (s *Service) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.GetUser", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil, errorbank.NotFound("user not found")
		}
		span.RecordError(err)
		return nil, errorbank.Internal("failed to load user", errorbank.WithCause(err))
	}
	return user, nil
}

// UpdateUser applies profile edits.
func (s *Service) UpdateUser(ctx context.Context, user *entity.User) error {
	if user == nil || user.ID == 0 {
		return errorbank.BadRequest("user id is required")
	}
	ctx, span := serviceTracer.Start(ctx, "CatalogService.UpdateUser", trace.WithAttributes(attribute.Int64("user.id", user.ID)))
	defer span.End()

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return errorbank.NotFound("user not found")
		}
		span.RecordError(err)
		return errorbank.Internal("failed to update user", errorbank.WithCause(err))
	}
	return nil
}

// CreateTailor registers a tailor profile.
func (s *Service) CreateTailor(ctx context.Context, tailor *entity.Tailor) error {
	if tailor == nil || tailor.Name == "" || tailor.Email == "" || tailor.Phone == "" || tailor.Address == "" {
		return errorbank.BadRequest("name, email, phone and address are required")
	}
	ctx, span := serviceTracer.Start(ctx, "CatalogService.CreateTailor")
	defer span.End()

	if err := s.repo.CreateTailor(ctx, tailor); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to create tailor", errorbank.WithCause(err))
	}
	return nil
}

// ListTailors returns all tailor profiles.
func (s *Service) ListTailors(ctx context.Context) ([]entity.Tailor, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.ListTailors")
	defer span.End()

	tailors, err := s.repo.ListTailors(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to list tailors", errorbank.WithCause(err))
	}
	return tailors, nil
}

// GetTailorWithStats assembles the tailor dashboard view.
func (s *Service) GetTailorWithStats(ctx context.Context, id int64) (*TailorWithStats, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.GetTailorWithStats", trace.WithAttributes(attribute.Int64("tailor.id", id)))
	defer span.End()

	tailor, err := s.repo.GetTailor(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrTailorNotFound) {
			return nil, errorbank.NotFound("tailor not found")
		}
		span.RecordError(err)
		return nil, errorbank.Internal("failed to load tailor", errorbank.WithCause(err))
	}

	designs, err := s.repo.DesignsByTailor(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to load tailor designs", errorbank.WithCause(err))
	}

	orders, err := s.orders.ListByTailor(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to load tailor orders", errorbank.WithCause(err))
	}
	if len(orders) > recentOrdersShown {
		orders = orders[:recentOrdersShown]
	}

	return &TailorWithStats{Tailor: tailor, Designs: designs, RecentOrders: orders}, nil
}

// CreateDesign publishes a listing for an existing tailor.
func (s *Service) CreateDesign(ctx context.Context, design *entity.Design) error {
	if design == nil || design.Name == "" || design.Description == "" || design.Category == "" {
		return errorbank.BadRequest("name, description and category are required")
	}
	if design.Price < 0 {
		return errorbank.BadRequest("price must not be negative")
	}
	ctx, span := serviceTracer.Start(ctx, "CatalogService.CreateDesign", trace.WithAttributes(attribute.Int64("tailor.id", design.TailorID)))
	defer span.End()

	if _, err := s.repo.GetTailor(ctx, design.TailorID); err != nil {
		if errors.Is(err, repo.ErrTailorNotFound) {
			return errorbank.BadRequest("tailor does not exist", errorbank.WithDetail("tailorId", design.TailorID))
		}
		return errorbank.Internal("failed to resolve tailor", errorbank.WithCause(err))
	}

	design.IsActive = true
	if err := s.repo.CreateDesign(ctx, design); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to create design", errorbank.WithCause(err))
	}
	return nil
}

// SearchDesigns filters active listings by text and category.
func (s *Service) SearchDesigns(ctx context.Context, search, category string) ([]entity.Design, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.SearchDesigns")
	defer span.End()

	designs, err := s.repo.SearchDesigns(ctx, search, category)
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to search designs", errorbank.WithCause(err))
	}
	return designs, nil
}

// TrendingDesigns returns listings flagged as trending.
func (s *Service) TrendingDesigns(ctx context.Context) ([]entity.Design, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.TrendingDesigns")
	defer span.End()

	designs, err := s.repo.TrendingDesigns(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to load trending designs", errorbank.WithCause(err))
	}
	return designs, nil
}

// GetDesign returns a listing joined with its tailor.
func (s *Service) GetDesign(ctx context.Context, id int64) (*entity.Design, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.GetDesign", trace.WithAttributes(attribute.Int64("design.id", id)))
	defer span.End()

	design, err := s.repo.GetDesignWithTailor(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrDesignNotFound) {
			return nil, errorbank.NotFound("design not found")
		}
		span.RecordError(err)
		return nil, errorbank.Internal("failed to load design", errorbank.WithCause(err))
	}
	return design, nil
}
