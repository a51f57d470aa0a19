package order

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/atelier-hq/atelier/internal/presentation/http/response"
	service "github.com/atelier-hq/atelier/internal/service/order"
	"github.com/atelier-hq/atelier/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/atelier-hq/atelier/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders")
	g.POST("", h.create)
	g.GET("/:id", h.getByID)
	g.PUT("/:id/status", h.updateStatus)
	g.GET("/user/:userId", h.listByUser)
	g.GET("/tailor/:tailorId", h.listByTailor)
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload service.CreateInput
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create", trace.WithAttributes(
		attribute.Int64("order.tailor_id", payload.TailorID),
	))
	defer span.End()

	result, err := h.svc.Create(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(result).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(order).Build()
}

func (h *Handler) updateStatus(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if payload.Status == "" {
		return b.WithError(errorbank.BadRequest("status is required")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.updateStatus", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.status", payload.Status),
	))
	defer span.End()

	order, err := h.svc.TransitionStatus(ctx, id, payload.Status)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(order).Build()
}

func (h *Handler) listByUser(c echo.Context) error {
	b := response.New(c)

	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid user id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.listByUser", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	orders, err := h.svc.ListByUser(ctx, userID)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(orders).WithCount(len(orders)).Build()
}

func (h *Handler) listByTailor(c echo.Context) error {
	b := response.New(c)

	tailorID, err := strconv.ParseInt(c.Param("tailorId"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid tailor id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.listByTailor", trace.WithAttributes(attribute.Int64("tailor.id", tailorID)))
	defer span.End()

	orders, err := h.svc.ListByTailor(ctx, tailorID)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(orders).WithCount(len(orders)).Build()
}
