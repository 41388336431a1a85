package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/baonq-me/screenberry/config"
	"github.com/baonq-me/screenberry/models"
)

func limitedRouter(rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(config.RateLimitConfig{RequestsPerSecond: rps, Burst: burst}))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func get(r *gin.Engine, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	r := limitedRouter(0.001, 3)

	for i := 0; i < 3; i++ {
		if w := get(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200 within burst", i, w.Code)
		}
	}

	w := get(r, "10.0.0.1:1234")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 after burst exhausted", w.Code)
	}
	var resp models.ScanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Status != "error" || resp.Error == nil || resp.Error.Code != models.ErrCodeRateLimited {
		t.Errorf("body = %+v, want %s error", resp, models.ErrCodeRateLimited)
	}
}

func TestRateLimit_PerClientBuckets(t *testing.T) {
	r := limitedRouter(0.001, 1)

	if w := get(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
		t.Fatalf("first client: status = %d, want 200", w.Code)
	}
	if w := get(r, "10.0.0.1:1234"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first client again: status = %d, want 429", w.Code)
	}

	// A different client IP gets its own bucket.
	if w := get(r, "10.0.0.2:1234"); w.Code != http.StatusOK {
		t.Errorf("second client: status = %d, want 200", w.Code)
	}
}
