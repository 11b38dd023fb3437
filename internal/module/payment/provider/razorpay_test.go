package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	rzperrors "github.com/razorpay/razorpay-go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/digiworldadda/server/internal/shared/config"
	"github.com/digiworldadda/server/internal/shared/metrics"
)

func newTestGateway(t *testing.T, cfg config.RazorpayConfig) *RazorpayGateway {
	t.Helper()
	m := metrics.NewWith(prometheus.NewRegistry(), "test")
	return NewRazorpayGateway(cfg, m, zap.NewNop())
}

func TestRazorpayGateway_IsConfigured(t *testing.T) {
	tests := []struct {
		name      string
		keyID     string
		keySecret string
		want      bool
	}{
		{"both present", "rzp_test_abc", "secret", true},
		{"missing key id", "", "secret", false},
		{"missing secret", "rzp_test_abc", "", false},
		{"both missing", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(t, config.RazorpayConfig{KeyID: tt.keyID, KeySecret: tt.keySecret})
			assert.Equal(t, tt.want, g.IsConfigured())
		})
	}
}

func TestRazorpayGateway_ClientKeyID(t *testing.T) {
	t.Run("prefers public key id", func(t *testing.T) {
		g := newTestGateway(t, config.RazorpayConfig{KeyID: "rzp_live_x", KeySecret: "s", PublicKeyID: "rzp_test_pub"})
		assert.Equal(t, "rzp_test_pub", g.ClientKeyID())
	})

	t.Run("falls back to key id", func(t *testing.T) {
		g := newTestGateway(t, config.RazorpayConfig{KeyID: "rzp_live_x", KeySecret: "s"})
		assert.Equal(t, "rzp_live_x", g.ClientKeyID())
	})
}

func TestGenerateReceiptID(t *testing.T) {
	now := time.UnixMilli(1756400000123)

	t.Run("short item id kept whole", func(t *testing.T) {
		got := generateReceiptID("p-123", now)
		assert.Equal(t, "rcpt_p-123_00000123", got)
	})

	t.Run("long item id truncated to last 8", func(t *testing.T) {
		got := generateReceiptID("product-abcdefgh12345678", now)
		assert.True(t, strings.HasPrefix(got, "rcpt_12345678_"))
	})

	t.Run("length bound for any id", func(t *testing.T) {
		ids := []string{"", "x", "p-123", strings.Repeat("a", 500)}
		for _, id := range ids {
			got := generateReceiptID(id, now)
			assert.LessOrEqual(t, len(got), 40, "id %q", id)
			assert.True(t, strings.HasPrefix(got, "rcpt_"))
			assert.NotContains(t, got, " ")
		}
	})
}

func TestRazorpayGateway_VerifySignature(t *testing.T) {
	const secret = "test_secret_key"
	g := newTestGateway(t, config.RazorpayConfig{KeyID: "rzp_test_abc", KeySecret: secret})

	sign := func(orderID, paymentID string) string {
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write([]byte(orderID + "|" + paymentID))
		return hex.EncodeToString(mac.Sum(nil))
	}

	t.Run("valid signature", func(t *testing.T) {
		sig := sign("order_123", "pay_456")
		assert.True(t, g.VerifySignature("order_123", "pay_456", sig))
	})

	t.Run("single bit flip rejected", func(t *testing.T) {
		sig := sign("order_123", "pay_456")
		raw, err := hex.DecodeString(sig)
		require.NoError(t, err)
		for i := range raw {
			mutated := make([]byte, len(raw))
			copy(mutated, raw)
			mutated[i] ^= 0x01
			assert.False(t, g.VerifySignature("order_123", "pay_456", hex.EncodeToString(mutated)))
		}
	})

	t.Run("wrong order id rejected", func(t *testing.T) {
		sig := sign("order_123", "pay_456")
		assert.False(t, g.VerifySignature("order_999", "pay_456", sig))
	})

	t.Run("empty signature rejected", func(t *testing.T) {
		assert.False(t, g.VerifySignature("order_123", "pay_456", ""))
	})

	t.Run("unconfigured gateway rejects everything", func(t *testing.T) {
		bare := newTestGateway(t, config.RazorpayConfig{})
		assert.False(t, bare.VerifySignature("order_123", "pay_456", sign("order_123", "pay_456")))
	})
}

func TestRazorpayGateway_NormalizeError(t *testing.T) {
	g := newTestGateway(t, config.RazorpayConfig{KeyID: "k", KeySecret: "s"})

	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
		wantDesc string
	}{
		{
			name:     "sdk bad request forwards description",
			err:      &rzperrors.BadRequestError{Message: "Order amount less than minimum amount allowed"},
			wantKind: KindBadRequest,
			wantDesc: "Order amount less than minimum amount allowed",
		},
		{
			name:     "wrapped sdk bad request forwards description",
			err:      fmt.Errorf("create order: %w", &rzperrors.BadRequestError{Message: "amount must be positive"}),
			wantKind: KindBadRequest,
			wantDesc: "amount must be positive",
		},
		{
			name:     "sdk authentication failure masked",
			err:      &rzperrors.BadRequestError{Message: "Authentication failed for key rzp_live_secretvalue"},
			wantKind: KindAuth,
			wantDesc: "invalid credentials",
		},
		{
			name:     "transport authentication failure masked",
			err:      errors.New("unauthorized: api key rzp_live_secretvalue rejected"),
			wantKind: KindAuth,
			wantDesc: "invalid credentials",
		},
		{
			name:     "sdk server error masked",
			err:      &rzperrors.ServerError{Message: "internal db failure at host pg-7"},
			wantKind: KindInternal,
			wantDesc: "payment gateway error",
		},
		{
			name:     "unknown failure masked",
			err:      errors.New("dial tcp 10.0.0.5:443: i/o timeout"),
			wantKind: KindInternal,
			wantDesc: "payment gateway error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.normalizeError(tt.err)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantDesc, got.Description)
			assert.NotContains(t, got.Description, "secretvalue")
		})
	}
}

func TestParseOrder(t *testing.T) {
	order := parseOrder(map[string]interface{}{
		"id":       "order_abc123",
		"amount":   float64(39400),
		"currency": "INR",
		"receipt":  "rcpt_p-123_00000123",
		"status":   "created",
	})

	assert.Equal(t, "order_abc123", order.ID)
	assert.Equal(t, int64(39400), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "rcpt_p-123_00000123", order.Receipt)
	assert.Equal(t, "created", order.Status)
}
