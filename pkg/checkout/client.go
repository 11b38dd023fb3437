// Package checkout implements the storefront checkout flow from the client
// side: establish a customer identity, initiate a payment order, acquire the
// hosted checkout capability once, and report the outcome back best-effort.
package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultCheckoutScriptURL is the gateway's hosted checkout bootstrap.
const DefaultCheckoutScriptURL = "https://checkout.razorpay.com/v1/checkout.js"

var (
	// ErrIdentityRequired is returned when a payment call is attempted
	// without an established identity.
	ErrIdentityRequired = errors.New("checkout requires an identity")
	// ErrUserCancelled marks a customer-dismissed checkout. It is a
	// terminal outcome, not a server failure.
	ErrUserCancelled = errors.New("checkout cancelled by user")
)

// Credentials are the fields collected by the login/signup form.
type Credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Identity is the cached customer session used to prefill contact fields on
// later payment attempts.
type Identity struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Order carries the parameters needed to open the hosted checkout UI.
type Order struct {
	OrderID       string  `json:"orderId"`
	Amount        float64 `json:"amount"`
	AmountInPaise int64   `json:"amountInPaise"`
	Currency      string  `json:"currency"`
	ProductName   string  `json:"productName"`
	ProductID     string  `json:"productId"`
	ServiceID     string  `json:"serviceId"`
	KeyID         string  `json:"keyId"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerPhone string  `json:"customerPhone"`
	ReceiptID     string  `json:"receiptId"`
}

// Result is the outcome reported by the hosted checkout UI.
type Result struct {
	Status    string // success, failed, cancelled
	PaymentID string
	Signature string
	ErrorDesc string
}

// Config configures a checkout client.
type Config struct {
	BaseURL string
	// IdentityCachePath is where the established identity persists between
	// runs. Empty disables caching.
	IdentityCachePath string
	// CheckoutScriptURL overrides the hosted checkout bootstrap location.
	CheckoutScriptURL string
	HTTPClient        *http.Client
	Logger            *zap.Logger
}

// Client drives the checkout flow against the storefront API.
type Client struct {
	baseURL   string
	scriptURL string
	cachePath string
	http      *http.Client
	logger    *zap.Logger

	mu       sync.Mutex
	identity *Identity

	// The hosted checkout capability is acquired at most once per process,
	// no matter how many checkouts run.
	capOnce sync.Once
	capErr  error
}

// New creates a checkout client.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	scriptURL := cfg.CheckoutScriptURL
	if scriptURL == "" {
		scriptURL = DefaultCheckoutScriptURL
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		scriptURL: scriptURL,
		cachePath: cfg.IdentityCachePath,
		http:      httpClient,
		logger:    logger,
	}
}

// apiEnvelope mirrors the server's response shape.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// EnsureIdentity returns the cached identity or establishes one: register
// first, and when the account already exists fall back to a login with the
// same credentials.
func (c *Client) EnsureIdentity(ctx context.Context, creds Credentials) (*Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.identity != nil {
		return c.identity, nil
	}
	if id := c.loadCachedIdentity(); id != nil {
		c.identity = id
		return id, nil
	}

	identity, status, err := c.authenticate(ctx, "/api/v1/users/register", creds)
	if status == http.StatusConflict {
		c.logger.Debug("account exists, retrying as login", zap.String("email", creds.Email))
		identity, _, err = c.authenticate(ctx, "/api/v1/users/login", creds)
	}
	if err != nil {
		return nil, err
	}

	identity.Name = creds.Name
	identity.Phone = creds.Phone
	c.identity = identity
	c.saveCachedIdentity(identity)
	return identity, nil
}

func (c *Client) authenticate(ctx context.Context, path string, creds Credentials) (*Identity, int, error) {
	var payload any = creds
	if path == "/api/v1/users/login" {
		payload = map[string]string{"email": creds.Email, "password": creds.Password}
	}

	env, status, err := c.post(ctx, path, payload, "")
	if err != nil {
		return nil, status, err
	}
	if !env.Success {
		return nil, status, fmt.Errorf("authentication failed: %s", env.Error)
	}

	var auth struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Phone string `json:"phone"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &auth); err != nil {
		return nil, status, fmt.Errorf("decode auth response: %w", err)
	}

	return &Identity{Token: auth.Token, Email: auth.User.Email, Phone: auth.User.Phone}, status, nil
}

// Initiate asks the storefront to create a payment order for one item,
// prefilled with the identity's contact details. An identity must exist
// before any payment call fires.
func (c *Client) Initiate(ctx context.Context, productID, serviceID string) (*Order, error) {
	c.mu.Lock()
	identity := c.identity
	c.mu.Unlock()
	if identity == nil {
		return nil, ErrIdentityRequired
	}

	env, _, err := c.post(ctx, "/api/payment/initiate", map[string]string{
		"productId":     productID,
		"serviceId":     serviceID,
		"customerEmail": identity.Email,
		"customerPhone": identity.Phone,
	}, identity.Token)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("initiate checkout: %s", env.Error)
	}

	var order Order
	if err := json.Unmarshal(env.Data, &order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}

// EnsureCheckoutCapability acquires the gateway's hosted checkout bootstrap
// exactly once. Repeated calls after the first return the memoized outcome
// without re-fetching.
func (c *Client) EnsureCheckoutCapability(ctx context.Context) error {
	c.capOnce.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.scriptURL, nil)
		if err != nil {
			c.capErr = err
			return
		}
		resp, err := c.http.Do(req)
		if err != nil {
			c.capErr = fmt.Errorf("load checkout script: %w", err)
			return
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode != http.StatusOK {
			c.capErr = fmt.Errorf("load checkout script: status %d", resp.StatusCode)
		}
	})
	return c.capErr
}

// Confirm reports the checkout outcome to the storefront. Best-effort: the
// customer's redirect never waits on, or fails because of, this call.
func (c *Client) Confirm(ctx context.Context, order *Order, result Result) {
	c.mu.Lock()
	token := ""
	if c.identity != nil {
		token = c.identity.Token
	}
	c.mu.Unlock()

	env, _, err := c.post(ctx, "/api/payment/confirm", map[string]string{
		"razorpayOrderId":   order.OrderID,
		"razorpayPaymentId": result.PaymentID,
		"razorpaySignature": result.Signature,
		"status":            result.Status,
	}, token)
	if err != nil {
		c.logger.Warn("confirmation failed, continuing", zap.String("order_id", order.OrderID), zap.Error(err))
		return
	}
	if !env.Success {
		c.logger.Warn("confirmation rejected, continuing",
			zap.String("order_id", order.OrderID),
			zap.String("error", env.Error))
	}
}

// Run executes the full checkout: identity, order, capability, hosted UI
// (supplied by the caller as open), best-effort confirmation, and finally the
// outcome redirect URL.
func (c *Client) Run(ctx context.Context, creds Credentials, productID, serviceID string, open func(*Order) (Result, error)) (string, error) {
	if _, err := c.EnsureIdentity(ctx, creds); err != nil {
		return "", err
	}

	order, err := c.Initiate(ctx, productID, serviceID)
	if err != nil {
		return "", err
	}

	if err := c.EnsureCheckoutCapability(ctx); err != nil {
		return "", err
	}

	result, err := open(order)
	if err != nil {
		if errors.Is(err, ErrUserCancelled) {
			result = Result{Status: "cancelled", ErrorDesc: "cancelled by user"}
		} else {
			result = Result{Status: "failed", ErrorDesc: err.Error()}
		}
	}

	c.Confirm(ctx, order, result)

	if result.Status == "success" {
		return c.SuccessURL(order, result.PaymentID), nil
	}
	return c.FailureURL(order, result.ErrorDesc), nil
}

// SuccessURL builds the post-payment success redirect.
func (c *Client) SuccessURL(order *Order, paymentID string) string {
	itemID := order.ProductID
	if itemID == "" {
		itemID = order.ServiceID
	}
	q := url.Values{}
	q.Set("paymentId", paymentID)
	q.Set("orderId", order.OrderID)
	q.Set("itemId", itemID)
	q.Set("amount", strconv.FormatFloat(order.Amount, 'f', 2, 64))
	return c.baseURL + "/payment/success?" + q.Encode()
}

// FailureURL builds the post-payment failure redirect.
func (c *Client) FailureURL(order *Order, description string) string {
	q := url.Values{}
	q.Set("error", description)
	q.Set("amount", strconv.FormatFloat(order.Amount, 'f', 2, 64))
	return c.baseURL + "/payment/failure?" + q.Encode()
}

func (c *Client) post(ctx context.Context, path string, body any, token string) (*apiEnvelope, int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return &env, resp.StatusCode, nil
}

func (c *Client) loadCachedIdentity() *Identity {
	if c.cachePath == "" {
		return nil
	}
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return nil
	}
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil || id.Token == "" {
		return nil
	}
	return &id
}

func (c *Client) saveCachedIdentity(id *Identity) {
	if c.cachePath == "" {
		return
	}
	data, err := json.Marshal(id)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.cachePath), 0o755); err != nil {
		c.logger.Debug("identity cache dir", zap.Error(err))
		return
	}
	if err := os.WriteFile(c.cachePath, data, 0o600); err != nil {
		c.logger.Debug("identity cache write", zap.Error(err))
	}
}
