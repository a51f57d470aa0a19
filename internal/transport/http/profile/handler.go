package profile

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/atelier-hq/atelier/internal/entity"
	"github.com/atelier-hq/atelier/internal/presentation/http/response"
	service "github.com/atelier-hq/atelier/internal/service/profile"
	"github.com/atelier-hq/atelier/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/atelier-hq/atelier/transport/http/profile")

// Handler exposes measurement, style preference and review endpoints.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a profile Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	measurements := e.Group("/measurements")
	measurements.POST("", h.createMeasurement)
	measurements.GET("/user/:userId", h.measurementByUser)
	measurements.PUT("/:id", h.updateMeasurement)

	prefs := e.Group("/style-preferences")
	prefs.POST("", h.createStylePreference)
	prefs.GET("/user/:userId", h.stylePreferenceByUser)

	reviews := e.Group("/reviews")
	reviews.POST("", h.createReview)
	reviews.GET("/tailor/:tailorId", h.reviewsByTailor)
}

func (h *Handler) createMeasurement(c echo.Context) error {
	b := response.New(c)

	var m entity.Measurement
	if err := c.Bind(&m); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	m.ID = 0

	ctx, span := httpTracer.Start(c.Request().Context(), "measurements.create", trace.WithAttributes(attribute.Int64("user.id", m.UserID)))
	defer span.End()

	if err := h.svc.CreateMeasurement(ctx, &m); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(m).Build()
}

func (h *Handler) measurementByUser(c echo.Context) error {
	b := response.New(c)

	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid user id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "measurements.byUser", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	m, err := h.svc.MeasurementByUser(ctx, userID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(m).Build()
}

func (h *Handler) updateMeasurement(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var m entity.Measurement
	if err := c.Bind(&m); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	m.ID = id

	ctx, span := httpTracer.Start(c.Request().Context(), "measurements.update", trace.WithAttributes(attribute.Int64("measurement.id", id)))
	defer span.End()

	if err := h.svc.UpdateMeasurement(ctx, &m); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(m).Build()
}

func (h *Handler) createStylePreference(c echo.Context) error {
	b := response.New(c)

	var p entity.StylePreference
	if err := c.Bind(&p); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	p.ID = 0

	ctx, span := httpTracer.Start(c.Request().Context(), "stylePreferences.create", trace.WithAttributes(attribute.Int64("user.id", p.UserID)))
	defer span.End()

	if err := h.svc.CreateStylePreference(ctx, &p); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(p).Build()
}

func (h *Handler) stylePreferenceByUser(c echo.Context) error {
	b := response.New(c)

	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid user id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "stylePreferences.byUser", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	p, err := h.svc.StylePreferenceByUser(ctx, userID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(p).Build()
}

func (h *Handler) createReview(c echo.Context) error {
	b := response.New(c)

	var review entity.Review
	if err := c.Bind(&review); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	review.ID = 0

	ctx, span := httpTracer.Start(c.Request().Context(), "reviews.create", trace.WithAttributes(attribute.Int64("tailor.id", review.TailorID)))
	defer span.End()

	if err := h.svc.CreateReview(ctx, &review); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(review).Build()
}

func (h *Handler) reviewsByTailor(c echo.Context) error {
	b := response.New(c)

	tailorID, err := strconv.ParseInt(c.Param("tailorId"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid tailor id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "reviews.byTailor", trace.WithAttributes(attribute.Int64("tailor.id", tailorID)))
	defer span.End()

	reviews, err := h.svc.ReviewsByTailor(ctx, tailorID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(reviews).WithCount(len(reviews)).Build()
}
