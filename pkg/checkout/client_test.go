package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverState struct {
	registered    map[string]bool
	registerHits  int32
	loginHits     int32
	initiateHits  int32
	confirmBodies []map[string]string
	confirmFails  bool
}

func newTestServer(t *testing.T, state *serverState) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, status int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}

	mux.HandleFunc("/api/v1/users/register", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&state.registerHits, 1)
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if state.registered[req["email"]] {
			writeJSON(w, http.StatusConflict, map[string]any{"success": false, "error": "Email already exists"})
			return
		}
		state.registered[req["email"]] = true
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"data": map[string]any{
				"token": "tok-register",
				"user":  map[string]string{"email": req["email"], "phone": req["phone"]},
			},
		})
	})

	mux.HandleFunc("/api/v1/users/login", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&state.loginHits, 1)
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"token": "tok-login",
				"user":  map[string]string{"email": req["email"]},
			},
		})
	})

	mux.HandleFunc("/api/payment/initiate", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&state.initiateHits, 1)
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"orderId":       "order_t1",
				"amount":        394.00,
				"amountInPaise": 39400,
				"currency":      "INR",
				"productName":   "Trading Course",
				"productId":     req["productId"],
				"keyId":         "rzp_test_pub",
				"customerEmail": req["customerEmail"],
				"receiptId":     "rcpt_p-123_00000123",
			},
		})
	})

	mux.HandleFunc("/api/payment/confirm", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		state.confirmBodies = append(state.confirmBodies, req)
		if state.confirmFails {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "boom"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]string{"orderId": "order_t1"}})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, server *httptest.Server, scriptHits *int32) *Client {
	t.Helper()
	scriptServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if scriptHits != nil {
			atomic.AddInt32(scriptHits, 1)
		}
		w.Write([]byte("// checkout bootstrap"))
	}))
	t.Cleanup(scriptServer.Close)

	return New(Config{
		BaseURL:           server.URL,
		CheckoutScriptURL: scriptServer.URL,
		IdentityCachePath: filepath.Join(t.TempDir(), "identity.json"),
	})
}

func creds() Credentials {
	return Credentials{Name: "Asha", Email: "asha@example.com", Phone: "9876543210", Password: "hunter22"}
}

func TestClient_EnsureIdentity_RegisterThenCache(t *testing.T) {
	state := &serverState{registered: map[string]bool{}}
	server := newTestServer(t, state)
	client := newTestClient(t, server, nil)

	id, err := client.EnsureIdentity(context.Background(), creds())
	require.NoError(t, err)
	assert.Equal(t, "tok-register", id.Token)
	assert.Equal(t, "asha@example.com", id.Email)

	// A second call reuses the in-memory identity without another request.
	_, err = client.EnsureIdentity(context.Background(), creds())
	require.NoError(t, err)
	assert.Equal(t, int32(1), state.registerHits)

	// A fresh client with the same cache path reads the file instead of
	// re-registering.
	fresh := New(Config{BaseURL: server.URL, IdentityCachePath: client.cachePath})
	cached, err := fresh.EnsureIdentity(context.Background(), creds())
	require.NoError(t, err)
	assert.Equal(t, "tok-register", cached.Token)
	assert.Equal(t, int32(1), state.registerHits)
}

func TestClient_EnsureIdentity_ConflictFallsBackToLogin(t *testing.T) {
	state := &serverState{registered: map[string]bool{"asha@example.com": true}}
	server := newTestServer(t, state)
	client := newTestClient(t, server, nil)

	id, err := client.EnsureIdentity(context.Background(), creds())
	require.NoError(t, err)
	assert.Equal(t, "tok-login", id.Token)
	assert.Equal(t, int32(1), state.registerHits)
	assert.Equal(t, int32(1), state.loginHits)
}

func TestClient_Initiate_RequiresIdentity(t *testing.T) {
	state := &serverState{registered: map[string]bool{}}
	server := newTestServer(t, state)
	client := newTestClient(t, server, nil)

	_, err := client.Initiate(context.Background(), "p-123", "")
	assert.ErrorIs(t, err, ErrIdentityRequired)
	assert.Equal(t, int32(0), state.initiateHits)
}

func TestClient_EnsureCheckoutCapability_Memoized(t *testing.T) {
	state := &serverState{registered: map[string]bool{}}
	server := newTestServer(t, state)
	var scriptHits int32
	client := newTestClient(t, server, &scriptHits)

	for i := 0; i < 5; i++ {
		require.NoError(t, client.EnsureCheckoutCapability(context.Background()))
	}
	assert.Equal(t, int32(1), scriptHits)
}

func TestClient_Run_SuccessFlow(t *testing.T) {
	state := &serverState{registered: map[string]bool{}}
	server := newTestServer(t, state)
	client := newTestClient(t, server, nil)

	redirect, err := client.Run(context.Background(), creds(), "p-123", "", func(order *Order) (Result, error) {
		assert.Equal(t, "order_t1", order.OrderID)
		assert.Equal(t, "rzp_test_pub", order.KeyID)
		return Result{Status: "success", PaymentID: "pay_1", Signature: "sig"}, nil
	})
	require.NoError(t, err)

	assert.Contains(t, redirect, "/payment/success?")
	assert.Contains(t, redirect, "paymentId=pay_1")
	assert.Contains(t, redirect, "orderId=order_t1")
	assert.Contains(t, redirect, "itemId=p-123")
	assert.Contains(t, redirect, "amount=394.00")

	require.Len(t, state.confirmBodies, 1)
	assert.Equal(t, "success", state.confirmBodies[0]["status"])
	assert.Equal(t, "pay_1", state.confirmBodies[0]["razorpayPaymentId"])
}

func TestClient_Run_ConfirmFailureStillRedirects(t *testing.T) {
	state := &serverState{registered: map[string]bool{}, confirmFails: true}
	server := newTestServer(t, state)
	client := newTestClient(t, server, nil)

	redirect, err := client.Run(context.Background(), creds(), "p-123", "", func(*Order) (Result, error) {
		return Result{Status: "success", PaymentID: "pay_1", Signature: "sig"}, nil
	})
	require.NoError(t, err)
	assert.Contains(t, redirect, "/payment/success?")
}

func TestClient_Run_CancelledAndFailed(t *testing.T) {
	t.Run("user cancelled", func(t *testing.T) {
		state := &serverState{registered: map[string]bool{}}
		server := newTestServer(t, state)
		client := newTestClient(t, server, nil)

		redirect, err := client.Run(context.Background(), creds(), "p-123", "", func(*Order) (Result, error) {
			return Result{}, ErrUserCancelled
		})
		require.NoError(t, err)
		assert.Contains(t, redirect, "/payment/failure?")

		require.Len(t, state.confirmBodies, 1)
		assert.Equal(t, "cancelled", state.confirmBodies[0]["status"])
	})

	t.Run("payment failed", func(t *testing.T) {
		state := &serverState{registered: map[string]bool{}}
		server := newTestServer(t, state)
		client := newTestClient(t, server, nil)

		redirect, err := client.Run(context.Background(), creds(), "p-123", "", func(*Order) (Result, error) {
			return Result{Status: "failed", ErrorDesc: "card declined"}, nil
		})
		require.NoError(t, err)
		assert.Contains(t, redirect, "error=card+declined")

		require.Len(t, state.confirmBodies, 1)
		assert.Equal(t, "failed", state.confirmBodies[0]["status"])
	})
}
