package payment

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/atelier-hq/atelier/internal/presentation/http/response"
	service "github.com/atelier-hq/atelier/internal/service/payment"
	"github.com/atelier-hq/atelier/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/atelier-hq/atelier/transport/http/payment")

// signatureHeader carries the gateway's HMAC over the raw webhook body.
const signatureHeader = "x-paystack-signature"

// Handler exposes the payment boundary over HTTP.
type Handler struct {
	gateway *service.Gateway
	logger  *zap.Logger
}

// NewHandler constructs a payment Handler.
func NewHandler(gateway *service.Gateway, logger *zap.Logger) *Handler {
	return &Handler{gateway: gateway, logger: logger}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/payments")
	g.POST("/initialize", h.initialize)
	g.GET("/verify/:reference", h.verify)
	g.POST("/webhook", h.webhook)
	g.GET("/earnings/:tailorId", h.earnings)
}

func (h *Handler) initialize(c echo.Context) error {
	b := response.New(c)

	var payload service.InitializeInput
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "payments.initialize", trace.WithAttributes(
		attribute.String("payment.reference", payload.Reference),
	))
	defer span.End()

	result, err := h.gateway.Initialize(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(result).Build()
}

func (h *Handler) verify(c echo.Context) error {
	b := response.New(c)

	reference := c.Param("reference")

	ctx, span := httpTracer.Start(c.Request().Context(), "payments.verify", trace.WithAttributes(
		attribute.String("payment.reference", reference),
	))
	defer span.End()

	result, err := h.gateway.Verify(ctx, reference)
	if err != nil {
		return b.WithError(err).Build()
	}
	if result.Status == service.StatusFailed {
		return b.WithStatus(http.StatusBadRequest).WithData(result).Build()
	}
	return b.WithData(result).Build()
}

// webhook validates the gateway signature over the raw body before trusting
// anything in it. A mismatch is rejected outright; forged confirmations must
// never reach processing.
func (h *Handler) webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	if !h.gateway.VerifyWebhookSignature(body, c.Request().Header.Get(signatureHeader)) {
		if h.logger != nil {
			h.logger.Warn("webhook signature mismatch", zap.String("remote", c.RealIP()))
		}
		return c.NoContent(http.StatusBadRequest)
	}

	var event service.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	h.gateway.HandleWebhook(event)
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) earnings(c echo.Context) error {
	b := response.New(c)

	tailorID, err := strconv.ParseInt(c.Param("tailorId"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid tailor id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "payments.earnings", trace.WithAttributes(attribute.Int64("tailor.id", tailorID)))
	defer span.End()

	result, err := h.gateway.TailorEarnings(ctx, tailorID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(result).Build()
}
