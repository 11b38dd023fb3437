package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/digiworldadda/server/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	t.Run("generates new request ID when not provided", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, GetRequestID(c))
		})

		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		headerID := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, headerID)
		assert.Equal(t, headerID, w.Body.String())
	})

	t.Run("uses existing request ID from header", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, GetRequestID(c))
		})

		existingID := "existing-request-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, existingID, w.Header().Get(RequestIDHeader))
		assert.Equal(t, existingID, w.Body.String())
	})
}

func TestRecovery(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(&logger.Config{Level: "error", Format: "json", Output: buf})

	router := gin.New()
	router.Use(Recovery(log))
	router.GET("/panic", func(*gin.Context) {
		panic("boom")
	})

	req := httptest.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, buf.String(), "Panic recovered")
}

type stubLimiter struct {
	allowed   bool
	remaining int
	err       error
	calls     int
}

func (s *stubLimiter) Allow(_ context.Context, _ string, _ int, _ time.Duration) (bool, int, error) {
	s.calls++
	return s.allowed, s.remaining, s.err
}

func rateLimitedRouter(limiter Limiter) *gin.Engine {
	router := gin.New()
	router.Use(RateLimit(limiter, RateLimitConfig{Limit: 10, Window: time.Minute}))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestRateLimit(t *testing.T) {
	t.Run("allows within limit", func(t *testing.T) {
		limiter := &stubLimiter{allowed: true, remaining: 9}
		w := httptest.NewRecorder()
		rateLimitedRouter(limiter).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "10", w.Header().Get(RateLimitLimit))
		assert.Equal(t, "9", w.Header().Get(RateLimitRemaining))
	})

	t.Run("rejects over limit", func(t *testing.T) {
		limiter := &stubLimiter{allowed: false}
		w := httptest.NewRecorder()
		rateLimitedRouter(limiter).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get(RetryAfter))
	})

	t.Run("fails open on limiter error", func(t *testing.T) {
		limiter := &stubLimiter{err: errors.New("redis down")}
		w := httptest.NewRecorder()
		rateLimitedRouter(limiter).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("nil limiter passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		rateLimitedRouter(nil).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCORS(t *testing.T) {
	corsRouter := func(origins []string) *gin.Engine {
		router := gin.New()
		router.Use(CORS(StorefrontCORSConfig(origins)))
		router.POST("/test", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	t.Run("defaults to any origin", func(t *testing.T) {
		cfg := StorefrontCORSConfig(nil)
		assert.Equal(t, []string{"*"}, cfg.AllowOrigins)
		assert.Contains(t, cfg.ExposeHeaders, "X-RateLimit-Remaining")
	})

	t.Run("allows configured origin", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/test", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		w := httptest.NewRecorder()
		corsRouter([]string{"https://shop.example.com"}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("rejects preflight for disallowed method", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/test", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		req.Header.Set("Access-Control-Request-Method", "DELETE")
		w := httptest.NewRecorder()
		corsRouter([]string{"https://shop.example.com"}).ServeHTTP(w, req)

		assert.NotContains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	})
}
