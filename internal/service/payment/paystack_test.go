package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/atelier-hq/atelier/internal/commission"
)

const testSecret = "sk_test_abc123"

func newTestGateway(baseURL string, timeout time.Duration) *Gateway {
	return &Gateway{
		baseURL:    baseURL,
		secretKey:  testSecret,
		httpClient: &http.Client{Timeout: timeout},
		calculator: commission.NewCalculator(0.05),
	}
}

func TestGateway_Initialize(t *testing.T) {
	ctx := context.Background()

	t.Run("opens a checkout session", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/transaction/initialize" {
				t.Errorf("path = %s, want /transaction/initialize", r.URL.Path)
			}
			gotAuth = r.Header.Get("Authorization")
			fmt.Fprint(w, `{"status":true,"data":{"reference":"ref-1","authorization_url":"https://checkout.example/ref-1","access_code":"ac-1"}}`)
		}))
		defer server.Close()

		g := newTestGateway(server.URL, time.Second)
		result, err := g.Initialize(ctx, InitializeInput{
			AmountKobo: 5_200_000,
			Email:      "demo@atelier.dev",
			Reference:  "ref-1",
		})
		if err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}
		if result.AuthorizationURL != "https://checkout.example/ref-1" {
			t.Errorf("authorization url = %s", result.AuthorizationURL)
		}
		if gotAuth != "Bearer "+testSecret {
			t.Errorf("authorization header = %q", gotAuth)
		}
	})

	t.Run("surfaces gateway rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":false,"message":"invalid amount"}`)
		}))
		defer server.Close()

		g := newTestGateway(server.URL, time.Second)
		_, err := g.Initialize(ctx, InitializeInput{AmountKobo: 100, Email: "a@b.c", Reference: "r"})
		if err == nil {
			t.Fatal("expected error for rejected initialization")
		}
	})

	t.Run("validates input", func(t *testing.T) {
		g := newTestGateway("http://unreachable.invalid", time.Second)
		cases := []InitializeInput{
			{AmountKobo: 0, Email: "a@b.c", Reference: "r"},
			{AmountKobo: -5, Email: "a@b.c", Reference: "r"},
			{AmountKobo: 100, Email: "", Reference: "r"},
			{AmountKobo: 100, Email: "a@b.c", Reference: ""},
		}
		for _, in := range cases {
			if _, err := g.Initialize(ctx, in); err == nil {
				t.Errorf("Initialize(%+v) succeeded, want validation error", in)
			}
		}
	})
}

func TestGateway_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("verified charge with settlement on paid amount", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/transaction/verify/ref-9" {
				t.Errorf("path = %s", r.URL.Path)
			}
			fmt.Fprint(w, `{"status":true,"data":{"reference":"ref-9","amount":5200000,"currency":"NGN","status":"success","paid_at":"2025-08-10T12:00:00Z"}}`)
		}))
		defer server.Close()

		g := newTestGateway(server.URL, time.Second)
		result, err := g.Verify(ctx, "ref-9")
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if result.Status != StatusVerified {
			t.Errorf("status = %s, want %s", result.Status, StatusVerified)
		}
		if result.Settlement.Commission != 260_000 {
			t.Errorf("commission = %d, want 260000", result.Settlement.Commission)
		}
		if result.Settlement.TailorEarnings != 4_940_000 {
			t.Errorf("earnings = %d, want 4940000", result.Settlement.TailorEarnings)
		}
	})

	t.Run("declined charge reports failed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"status":true,"data":{"reference":"ref-2","status":"failed"}}`)
		}))
		defer server.Close()

		g := newTestGateway(server.URL, time.Second)
		result, err := g.Verify(ctx, "ref-2")
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if result.Status != StatusFailed {
			t.Errorf("status = %s, want %s", result.Status, StatusFailed)
		}
	})

	t.Run("gateway timeout reports pending, not failed", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer server.Close()
		defer close(release)

		g := newTestGateway(server.URL, 50*time.Millisecond)
		result, err := g.Verify(ctx, "ref-3")
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if result.Status != StatusPendingVerification {
			t.Errorf("status = %s, want %s", result.Status, StatusPendingVerification)
		}
	})

	t.Run("empty reference rejected", func(t *testing.T) {
		g := newTestGateway("http://unreachable.invalid", time.Second)
		if _, err := g.Verify(ctx, ""); err == nil {
			t.Fatal("expected error for empty reference")
		}
	})
}

func TestGateway_VerifyWebhookSignature(t *testing.T) {
	g := newTestGateway("", time.Second)
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1"}}`)

	mac := hmac.New(sha512.New, []byte(testSecret))
	mac.Write(body)
	valid := hex.EncodeToString(mac.Sum(nil))

	cases := []struct {
		name      string
		body      []byte
		signature string
		want      bool
	}{
		{name: "valid signature", body: body, signature: valid, want: true},
		{name: "tampered body", body: []byte(`{"event":"charge.success","data":{"reference":"ref-2"}}`), signature: valid, want: false},
		{name: "wrong signature", body: body, signature: "deadbeef", want: false},
		{name: "empty signature", body: body, signature: "", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := g.VerifyWebhookSignature(tc.body, tc.signature); got != tc.want {
				t.Errorf("VerifyWebhookSignature = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMetadataOrderID(t *testing.T) {
	cases := []struct {
		name     string
		metadata map[string]any
		wantID   int64
		wantOK   bool
	}{
		{name: "snake case key", metadata: map[string]any{"order_id": float64(42)}, wantID: 42, wantOK: true},
		{name: "camel case key", metadata: map[string]any{"orderId": float64(7)}, wantID: 7, wantOK: true},
		{name: "missing", metadata: map[string]any{}, wantOK: false},
		{name: "wrong type", metadata: map[string]any{"order_id": "42"}, wantOK: false},
		{name: "nil metadata", metadata: nil, wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := metadataOrderID(tc.metadata)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && id != tc.wantID {
				t.Errorf("id = %d, want %d", id, tc.wantID)
			}
		})
	}
}
