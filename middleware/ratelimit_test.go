package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRateLimitRouter(t *testing.T, rps float64, burst int) *gin.Engine {
	t.Helper()
	rl := NewRateLimiter(rps, burst)
	t.Cleanup(rl.Stop)
	eng := gin.New()
	eng.Use(rl.Handler())
	eng.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return eng
}

func hit(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":4000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_AllowsFirst(t *testing.T) {
	r := newRateLimitRouter(t, 100, 5)
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.1"))
}

func TestRateLimit_Burst(t *testing.T) {
	r := newRateLimitRouter(t, 0.001, 3)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(r, "10.0.1.1"), "request %d should be allowed", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "10.0.1.1"))
}

func TestRateLimit_PerIP(t *testing.T) {
	r := newRateLimitRouter(t, 0.001, 1)
	assert.Equal(t, http.StatusOK, hit(r, "10.1.1.1"))
	assert.Equal(t, http.StatusOK, hit(r, "10.1.1.2"))
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "10.1.1.1"))
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	r := newRateLimitRouter(t, 0, 0)
	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, hit(r, "10.2.0.1"))
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	defer rl.Stop()

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))

	rl.sweep(time.Now().Add(time.Minute))
	assert.True(t, rl.Allow("a"), "swept limiter starts with a full bucket")
}

func TestRateLimiter_StopIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Stop()
	rl.Stop()
}
