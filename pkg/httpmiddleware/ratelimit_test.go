package httpmiddleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, path, remoteAddr string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = remoteAddr
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit_UnderLimit(t *testing.T) {
	h := NewLimiter(RateLimitConfig{Max: 5, Window: time.Minute}).Middleware()(okHandler())

	for i := range 5 {
		w := hit(h, "/api/products", "192.168.1.1:12345", nil)
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	}
}

func TestRateLimit_OverLimit(t *testing.T) {
	h := NewLimiter(RateLimitConfig{Max: 2, Window: time.Minute}).Middleware()(okHandler())

	for range 2 {
		require.Equal(t, http.StatusOK, hit(h, "/", "10.0.0.1:9999", nil).Code)
	}
	w := hit(h, "/", "10.0.0.1:9999", nil)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 429, body.Code)
	assert.Equal(t, "rate limit exceeded", body.Message)
}

func TestRateLimit_KeysAreIndependent(t *testing.T) {
	h := NewLimiter(RateLimitConfig{Max: 1, Window: time.Minute}).Middleware()(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "/", "10.0.0.1:1234", nil).Code)
	assert.Equal(t, http.StatusOK, hit(h, "/", "10.0.0.2:1234", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "/", "10.0.0.1:5678", nil).Code)
}

func TestRateLimit_PathPrefix(t *testing.T) {
	h := NewLimiter(RateLimitConfig{
		Name:       "auth",
		Max:        1,
		Window:     time.Minute,
		PathPrefix: "/api/auth/",
	}).Middleware()(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "/api/auth/login", "10.0.0.1:1", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "/api/auth/register", "10.0.0.1:1", nil).Code)

	w := hit(h, "/api/products", "10.0.0.1:1", nil)
	assert.Equal(t, http.StatusOK, w.Code, "paths outside the prefix are not limited")
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimit_CustomKeyFunc(t *testing.T) {
	h := NewLimiter(RateLimitConfig{
		Max:     1,
		Window:  time.Minute,
		KeyFunc: func(r *http.Request) string { return r.Header.Get("Authorization") },
	}).Middleware()(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "/", "", map[string]string{"Authorization": "a"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "/", "", map[string]string{"Authorization": "a"}).Code)
	assert.Equal(t, http.StatusOK, hit(h, "/", "", map[string]string{"Authorization": "b"}).Code)
}

func TestRateLimit_XForwardedFor(t *testing.T) {
	h := NewLimiter(RateLimitConfig{Max: 1, Window: time.Minute}).Middleware()(okHandler())
	xff := map[string]string{"X-Forwarded-For": "203.0.113.50, 70.41.3.18"}

	assert.Equal(t, http.StatusOK, hit(h, "/", "192.168.1.1:4444", xff).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "/", "192.168.1.2:5555", xff).Code)
}

func TestLimiter_SlidingWindow(t *testing.T) {
	l := NewLimiter(RateLimitConfig{Max: 10, Window: time.Minute})
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	for range 10 {
		_, _, ok := l.allow("k", start)
		require.True(t, ok)
	}
	_, _, ok := l.allow("k", start.Add(30*time.Second))
	assert.False(t, ok, "same window is exhausted")

	// Halfway into the next window half of the previous count still applies.
	remaining, _, ok := l.allow("k", start.Add(90*time.Second))
	assert.True(t, ok)
	assert.Equal(t, 4, remaining)

	_, _, ok = l.allow("k", start.Add(5*time.Minute))
	assert.True(t, ok, "stale windows are forgotten")
}

func TestLimiter_Evict(t *testing.T) {
	l := NewLimiter(RateLimitConfig{Max: 1, Window: time.Minute})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.allow("old", now)
	l.allow("fresh", now.Add(2*time.Minute))

	l.evict(now.Add(2*time.Minute + time.Second))

	assert.NotContains(t, l.windows, "old")
	assert.Contains(t, l.windows, "fresh")
}
