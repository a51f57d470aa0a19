// Package payment wraps the Paystack hosted-checkout gateway. The gateway is
// untrusted until a server-side verification call or a signed webhook
// confirms a transaction.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/atelier-hq/atelier/internal/commission"
	"github.com/atelier-hq/atelier/internal/config"
	orderrepo "github.com/atelier-hq/atelier/internal/repository/order"
	"github.com/atelier-hq/atelier/pkg/errorbank"
)

// VerificationStatus classifies the outcome of a verification call.
type VerificationStatus string

const (
	// StatusVerified means the gateway confirmed funds received.
	StatusVerified VerificationStatus = "verified"
	// StatusFailed means the gateway declined or did not know the reference.
	StatusFailed VerificationStatus = "failed"
	// StatusPendingVerification means the gateway did not answer in time.
	// The charge may still have succeeded, so the caller must not treat
	// this as failure.
	StatusPendingVerification VerificationStatus = "pending_verification"
)

// InitializeInput starts a hosted-checkout session.
type InitializeInput struct {
	AmountKobo int64          `json:"amount"`
	Email      string         `json:"email"`
	Reference  string         `json:"reference"`
	Metadata   map[string]any `json:"metadata"`
}

// InitializeResult is the gateway session handle handed to the client.
type InitializeResult struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorizationUrl"`
	AccessCode       string `json:"accessCode"`
}

// VerifyResult is the trusted view of a gateway transaction. Settlement is
// computed against the referenced order's total amount, never against the
// gateway-inclusive figure the customer paid.
type VerifyResult struct {
	Reference  string               `json:"reference"`
	Status     VerificationStatus   `json:"status"`
	AmountKobo int64                `json:"amount"`
	Currency   string               `json:"currency"`
	PaidAt     string               `json:"paidAt,omitempty"`
	Settlement commission.Breakdown `json:"settlement"`
}

// Earnings is the settlement summary for a tailor's completed orders.
type Earnings struct {
	TailorID       int64   `json:"tailorId"`
	TotalOrders    int64   `json:"totalOrders"`
	TotalRevenue   int64   `json:"totalRevenue"`
	Commission     int64   `json:"platformCommission"`
	TailorEarnings int64   `json:"earnings"`
	Rate           float64 `json:"rate"`
	Currency       string  `json:"currency"`
}

// Gateway talks to Paystack and derives settlements.
type Gateway struct {
	baseURL    string
	secretKey  string
	callback   string
	httpClient *http.Client
	orders     *orderrepo.Repository
	calculator commission.Calculator
	logger     *zap.Logger
}

// Module provides the payment gateway to Fx.
var Module = fx.Provide(NewGateway)

// Params defines dependencies for constructing Gateway.
type Params struct {
	fx.In

	Config config.Config
	Orders *orderrepo.Repository
	Logger *zap.Logger
}

// NewGateway wires a Gateway. The HTTP client timeout doubles as the bound
// on verification calls.
func NewGateway(p Params) *Gateway {
	return &Gateway{
		baseURL:    p.Config.Payment.BaseURL,
		secretKey:  p.Config.Payment.SecretKey,
		callback:   p.Config.Payment.CallbackURL,
		httpClient: &http.Client{Timeout: p.Config.Payment.VerifyTimeout},
		orders:     p.Orders,
		calculator: commission.NewCalculator(p.Config.Payment.CommissionRate),
		logger:     p.Logger,
	}
}

type initializeRequest struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount"`
	Reference   string         `json:"reference"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Channels    []string       `json:"channels"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference        string `json:"reference"`
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
	} `json:"data"`
}

// Initialize opens a checkout session for the given amount.
func (g *Gateway) Initialize(ctx context.Context, in InitializeInput) (*InitializeResult, error) {
	switch {
	case in.AmountKobo <= 0:
		return nil, errorbank.BadRequest("amount must be positive")
	case in.Email == "":
		return nil, errorbank.BadRequest("payer email is required")
	case in.Reference == "":
		return nil, errorbank.BadRequest("payment reference is required")
	}

	body := initializeRequest{
		Email:       in.Email,
		Amount:      in.AmountKobo,
		Reference:   in.Reference,
		Metadata:    in.Metadata,
		CallbackURL: g.callback,
		Channels:    []string{"card", "bank", "ussd", "mobile_money"},
	}

	var resp initializeResponse
	if err := g.post(ctx, "/transaction/initialize", body, &resp); err != nil {
		return nil, errorbank.Internal("payment initialization failed", errorbank.WithCause(err))
	}
	if !resp.Status {
		return nil, errorbank.BadRequest("payment initialization rejected",
			errorbank.WithDetail("gatewayMessage", resp.Message))
	}

	return &InitializeResult{
		Reference:        resp.Data.Reference,
		AuthorizationURL: resp.Data.AuthorizationURL,
		AccessCode:       resp.Data.AccessCode,
	}, nil
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference string         `json:"reference"`
		Amount    int64          `json:"amount"`
		Currency  string         `json:"currency"`
		Status    string         `json:"status"`
		PaidAt    string         `json:"paid_at"`
		Metadata  map[string]any `json:"metadata"`
	} `json:"data"`
}

// Verify asks the gateway whether the referenced transaction succeeded. A
// slow or unreachable gateway yields StatusPendingVerification rather than
// failure, since the charge may have landed despite the timeout.
func (g *Gateway) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if reference == "" {
		return nil, errorbank.BadRequest("payment reference is required")
	}

	var resp verifyResponse
	err := g.get(ctx, "/transaction/verify/"+reference, &resp)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			if g.logger != nil {
				g.logger.Warn("gateway verification timed out", zap.String("reference", reference))
			}
			return &VerifyResult{Reference: reference, Status: StatusPendingVerification}, nil
		}
		return nil, errorbank.Internal("payment verification failed", errorbank.WithCause(err))
	}

	if !resp.Status || resp.Data.Status != "success" {
		return &VerifyResult{
			Reference: reference,
			Status:    StatusFailed,
		}, nil
	}

	result := &VerifyResult{
		Reference:  resp.Data.Reference,
		Status:     StatusVerified,
		AmountKobo: resp.Data.Amount,
		Currency:   resp.Data.Currency,
		PaidAt:     resp.Data.PaidAt,
	}

	// Settlement is computed on the order's own total so the gateway fee
	// never inflates the commission base.
	base := resp.Data.Amount
	if orderID, ok := metadataOrderID(resp.Data.Metadata); ok && g.orders != nil {
		if order, err := g.orders.GetByID(ctx, orderID); err == nil {
			base = order.TotalAmount
		} else if g.logger != nil {
			g.logger.Warn("settlement falling back to paid amount",
				zap.Int64("orderId", orderID), zap.Error(err))
		}
	}
	settlement, err := g.calculator.Calculate(base)
	if err != nil {
		return nil, err
	}
	result.Settlement = settlement

	return result, nil
}

// VerifyWebhookSignature checks the HMAC-SHA512 hex signature the gateway
// sends over the raw webhook body. Comparison is constant-time.
func (g *Gateway) VerifyWebhookSignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(g.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// WebhookEvent is an asynchronous gateway callback, already
// signature-verified by the caller.
type WebhookEvent struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// HandleWebhook processes a verified gateway event.
func (g *Gateway) HandleWebhook(event WebhookEvent) {
	if g.logger == nil {
		return
	}
	switch event.Event {
	case "charge.success":
		g.logger.Info("gateway charge succeeded", zap.Any("data", event.Data))
	case "charge.failed":
		g.logger.Warn("gateway charge failed", zap.Any("data", event.Data))
	default:
		g.logger.Debug("unhandled gateway event", zap.String("event", event.Event))
	}
}

// TailorEarnings summarizes a tailor's settled revenue.
func (g *Gateway) TailorEarnings(ctx context.Context, tailorID int64) (*Earnings, error) {
	count, total, err := g.orders.CompletedStatsByTailor(ctx, tailorID)
	if err != nil {
		return nil, errorbank.Internal("failed to aggregate earnings", errorbank.WithCause(err))
	}
	breakdown, err := g.calculator.Calculate(total)
	if err != nil {
		return nil, err
	}
	return &Earnings{
		TailorID:       tailorID,
		TotalOrders:    count,
		TotalRevenue:   total,
		Commission:     breakdown.Commission,
		TailorEarnings: breakdown.TailorEarnings,
		Rate:           breakdown.Rate,
		Currency:       "NGN",
	}, nil
}

func metadataOrderID(metadata map[string]any) (int64, bool) {
	raw, ok := metadata["order_id"]
	if !ok {
		raw, ok = metadata["orderId"]
	}
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	default:
		return 0, false
	}
}

func (g *Gateway) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")
	return g.do(req, out)
}

func (g *Gateway) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	return g.do(req, out)
}

func (g *Gateway) do(req *http.Request, out any) error {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
