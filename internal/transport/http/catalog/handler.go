package catalog

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/atelier-hq/atelier/internal/entity"
	"github.com/atelier-hq/atelier/internal/presentation/http/response"
	service "github.com/atelier-hq/atelier/internal/service/catalog"
	"github.com/atelier-hq/atelier/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/atelier-hq/atelier/transport/http/catalog")

// Handler exposes user, tailor and design endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a catalog Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	users := e.Group("/users")
	users.POST("", h.createUser)
	users.GET("/:id", h.getUser)
	users.PUT("/:id", h.updateUser)

	tailors := e.Group("/tailors")
	tailors.POST("", h.createTailor)
	tailors.GET("", h.listTailors)
	tailors.GET("/:id", h.getTailor)

	designs := e.Group("/designs")
	designs.POST("", h.createDesign)
	designs.GET("", h.searchDesigns)
	designs.GET("/trending", h.trendingDesigns)
	designs.GET("/:id", h.getDesign)
}

func (h *Handler) createUser(c echo.Context) error {
	b := response.New(c)

	var user entity.User
	if err := c.Bind(&user); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	user.ID = 0

	ctx, span := httpTracer.Start(c.Request().Context(), "users.create")
	defer span.End()

	if err := h.svc.CreateUser(ctx, &user); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(user).Build()
}

func (h *Handler) getUser(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "users.get", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	user, err := h.svc.GetUser(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(user).Build()
}

func (h *Handler) updateUser(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	var user entity.User
	if err := c.Bind(&user); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	user.ID = id

	ctx, span := httpTracer.Start(c.Request().Context(), "users.update", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()

	if err := h.svc.UpdateUser(ctx, &user); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(user).Build()
}

func (h *Handler) createTailor(c echo.Context) error {
	b := response.New(c)

	var tailor entity.Tailor
	if err := c.Bind(&tailor); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	tailor.ID = 0

	ctx, span := httpTracer.Start(c.Request().Context(), "tailors.create")
	defer span.End()

	if err := h.svc.CreateTailor(ctx, &tailor); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(tailor).Build()
}

func (h *Handler) listTailors(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "tailors.list")
	defer span.End()

	tailors, err := h.svc.ListTailors(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(tailors).WithCount(len(tailors)).Build()
}

func (h *Handler) getTailor(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "tailors.get", trace.WithAttributes(attribute.Int64("tailor.id", id)))
	defer span.End()

	tailor, err := h.svc.GetTailorWithStats(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(tailor).Build()
}

func (h *Handler) createDesign(c echo.Context) error {
	b := response.New(c)

	var design entity.Design
	if err := c.Bind(&design); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	design.ID = 0

	ctx, span := httpTracer.Start(c.Request().Context(), "designs.create", trace.WithAttributes(attribute.Int64("tailor.id", design.TailorID)))
	defer span.End()

	if err := h.svc.CreateDesign(ctx, &design); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(design).Build()
}

func (h *Handler) searchDesigns(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "designs.search")
	defer span.End()

	designs, err := h.svc.SearchDesigns(ctx, c.QueryParam("search"), c.QueryParam("category"))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(designs).WithCount(len(designs)).Build()
}

func (h *Handler) trendingDesigns(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "designs.trending")
	defer span.End()

	designs, err := h.svc.TrendingDesigns(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(designs).WithCount(len(designs)).Build()
}

func (h *Handler) getDesign(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "designs.get", trace.WithAttributes(attribute.Int64("design.id", id)))
	defer span.End()

	design, err := h.svc.GetDesign(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(design).Build()
}
