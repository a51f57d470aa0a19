package dashboard

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/atelier-hq/atelier/internal/dto"
	"github.com/atelier-hq/atelier/internal/presentation/http/response"
	ordersvc "github.com/atelier-hq/atelier/internal/service/order"
	profilesvc "github.com/atelier-hq/atelier/internal/service/profile"
	"github.com/atelier-hq/atelier/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/atelier-hq/atelier/transport/http/dashboard")

// activityFeedSize caps the recent-activity feed.
const activityFeedSize = 5

// Handler assembles customer dashboard views from order and profile reads.
type Handler struct {
	orders  *ordersvc.Service
	profile *profilesvc.Service
}

// NewHandler constructs a dashboard Handler.
func NewHandler(orders *ordersvc.Service, profile *profilesvc.Service) *Handler {
	return &Handler{orders: orders, profile: profile}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/dashboard")
	g.GET("/stats/:userId", h.stats)
	g.GET("/activity/:userId/:timeframe", h.activity)
	g.GET("/active-orders/:userId", h.activeOrders)
}

func (h *Handler) stats(c echo.Context) error {
	b := response.New(c)

	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid user id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "dashboard.stats", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	orders, err := h.orders.ListByUser(ctx, userID)
	if err != nil {
		return b.WithError(err).Build()
	}

	active := 0
	for _, o := range orders {
		if !o.Status.Terminal() {
			active++
		}
	}

	stats := dto.DashboardStats{
		TotalOrders:  len(orders),
		ActiveOrders: active,
	}
	if _, err := h.profile.MeasurementByUser(ctx, userID); err == nil {
		stats.CompletedMeasurements = true
	}
	if _, err := h.profile.StylePreferenceByUser(ctx, userID); err == nil {
		stats.CompletedStyleQuiz = true
	}

	return b.WithData(stats).Build()
}

func (h *Handler) activity(c echo.Context) error {
	b := response.New(c)

	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid user id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "dashboard.activity", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.String("timeframe", c.Param("timeframe")),
	))
	defer span.End()

	orders, err := h.orders.ListByUser(ctx, userID)
	if err != nil {
		return b.WithError(err).Build()
	}
	if len(orders) > activityFeedSize {
		orders = orders[:activityFeedSize]
	}

	activities := make([]dto.ActivityItem, 0, len(orders))
	for _, o := range orders {
		activities = append(activities, dto.ActivityItem{
			ID:          o.ID,
			Type:        "order",
			Title:       fmt.Sprintf("Order #%d", o.ID),
			Description: fmt.Sprintf("Status: %s", o.Status),
			Timestamp:   o.CreatedAt,
			Status:      o.Status,
		})
	}

	return b.WithData(activities).Build()
}

func (h *Handler) activeOrders(c echo.Context) error {
	b := response.New(c)

	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid user id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "dashboard.activeOrders", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	orders, err := h.orders.ActiveByUser(ctx, userID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(orders).WithCount(len(orders)).Build()
}
