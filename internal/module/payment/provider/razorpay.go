// Package provider wraps the Razorpay SDK behind a gateway interface so the
// checkout service can be tested against fakes.
package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	rzperrors "github.com/razorpay/razorpay-go/errors"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/digiworldadda/server/internal/shared/config"
	"github.com/digiworldadda/server/internal/shared/metrics"
)

// ErrorKind classifies a normalized gateway failure.
type ErrorKind string

const (
	KindBadRequest ErrorKind = "bad_request"
	KindAuth       ErrorKind = "auth"
	KindInternal   ErrorKind = "internal"
)

// Error is a gateway failure normalized for the checkout surface. Description
// is always safe to forward to clients; credentials and raw transport detail
// never reach it.
type Error struct {
	Kind        ErrorKind
	Description string
}

func (e *Error) Error() string {
	return e.Description
}

// OrderRequest describes a gateway order to create. Amount is in minor
// currency units (paise).
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]interface{}
}

// Order is the gateway-side object created for a pending payment.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
}

// Gateway is the payment gateway surface used by the checkout service.
type Gateway interface {
	IsConfigured() bool
	// CredentialPresence reports which credentials are set, for diagnostic
	// flags. Never the values.
	CredentialPresence() (keyID, keySecret bool)
	ClientKeyID() string
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	GenerateReceiptID(itemID string) string
	VerifySignature(orderID, paymentID, signature string) bool
}

// RazorpayGateway implements Gateway over the Razorpay REST SDK.
type RazorpayGateway struct {
	client  *razorpay.Client
	cfg     config.RazorpayConfig
	breaker *gobreaker.CircuitBreaker[map[string]interface{}]
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewRazorpayGateway creates a gateway adapter. The SDK client is only
// constructed when both credentials are present; an unconfigured gateway is
// still a valid value so IsConfigured can gate requests.
func NewRazorpayGateway(cfg config.RazorpayConfig, m *metrics.Metrics, logger *zap.Logger) *RazorpayGateway {
	g := &RazorpayGateway{
		cfg:     cfg,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}

	if g.IsConfigured() {
		g.client = razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	}

	g.breaker = gobreaker.NewCircuitBreaker[map[string]interface{}](gobreaker.Settings{
		Name:        "razorpay-orders",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return g
}

// IsConfigured reports whether both server-side credentials are present.
func (g *RazorpayGateway) IsConfigured() bool {
	return g.cfg.KeyID != "" && g.cfg.KeySecret != ""
}

// CredentialPresence reports which credentials are set.
func (g *RazorpayGateway) CredentialPresence() (bool, bool) {
	return g.cfg.KeyID != "", g.cfg.KeySecret != ""
}

// ClientKeyID returns the key id safe to hand to browsers.
func (g *RazorpayGateway) ClientKeyID() string {
	return g.cfg.ClientKeyID()
}

// CreateOrder creates a remote payment order. The SDK call carries no context,
// so it runs under the configured timeout and the circuit breaker; failures
// come back as a normalized *Error.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if !g.IsConfigured() {
		return nil, &Error{Kind: KindAuth, Description: "invalid credentials"}
	}

	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		data["notes"] = req.Notes
	}

	start := g.now()
	body, err := g.breaker.Execute(func() (map[string]interface{}, error) {
		return g.createOrderWithTimeout(ctx, data)
	})
	g.metrics.GatewayOrderDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		gerr := g.normalizeError(err)
		g.metrics.GatewayOrdersTotal.WithLabelValues(string(gerr.Kind)).Inc()
		g.logger.Error("gateway order creation failed",
			zap.String("receipt", req.Receipt),
			zap.Int64("amount", req.Amount),
			zap.String("kind", string(gerr.Kind)),
			zap.Error(err))
		return nil, gerr
	}

	g.metrics.GatewayOrdersTotal.WithLabelValues("ok").Inc()
	return parseOrder(body), nil
}

// createOrderWithTimeout bounds the SDK call. The underlying HTTP request
// cannot be cancelled, but the caller stops waiting.
func (g *RazorpayGateway) createOrderWithTimeout(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error) {
	timeout := g.cfg.OrderTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		body map[string]interface{}
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		body, err := g.client.Order.Create(data, nil)
		ch <- result{body: body, err: err}
	}()

	select {
	case res := <-ch:
		return res.body, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// normalizeError maps SDK and transport failures to the three client-facing
// kinds. Authentication failures get a fixed message so credential hints
// never leak; bad requests forward the provider's own description. The SDK
// reports auth failures as BadRequestError too, so the message is checked
// for credential markers before forwarding.
func (g *RazorpayGateway) normalizeError(err error) *Error {
	var badReq *rzperrors.BadRequestError
	if errors.As(err, &badReq) {
		msg := strings.TrimSpace(badReq.Error())
		if isAuthFailure(msg) {
			return &Error{Kind: KindAuth, Description: "invalid credentials"}
		}
		return &Error{Kind: KindBadRequest, Description: msg}
	}

	if isAuthFailure(err.Error()) {
		return &Error{Kind: KindAuth, Description: "invalid credentials"}
	}
	return &Error{Kind: KindInternal, Description: "payment gateway error"}
}

func isAuthFailure(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "authentication") ||
		strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "api key")
}

// GenerateReceiptID builds the merchant receipt string for an item. The
// format keeps the id within the gateway's 40-character receipt limit for
// item ids of any length.
func (g *RazorpayGateway) GenerateReceiptID(itemID string) string {
	return generateReceiptID(itemID, g.now())
}

func generateReceiptID(itemID string, now time.Time) string {
	idPart := itemID
	if len(idPart) > 8 {
		idPart = idPart[len(idPart)-8:]
	}
	millis := strconv.FormatInt(now.UnixMilli(), 10)
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}
	return fmt.Sprintf("rcpt_%s_%s", idPart, millis)
}

// VerifySignature checks a checkout callback signature: HMAC-SHA256 of
// "{orderId}|{paymentId}" under the key secret, hex-encoded, compared in
// constant time.
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	if g.cfg.KeySecret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(g.cfg.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// parseOrder pulls the fields we use out of the SDK's untyped response map.
func parseOrder(body map[string]interface{}) *Order {
	order := &Order{}
	if v, ok := body["id"].(string); ok {
		order.ID = v
	}
	if v, ok := body["currency"].(string); ok {
		order.Currency = v
	}
	if v, ok := body["receipt"].(string); ok {
		order.Receipt = v
	}
	if v, ok := body["status"].(string); ok {
		order.Status = v
	}
	switch v := body["amount"].(type) {
	case float64:
		order.Amount = int64(v)
	case int64:
		order.Amount = v
	case int:
		order.Amount = int64(v)
	}
	return order
}
