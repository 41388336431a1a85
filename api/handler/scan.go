package handler

import (
	"net/http"
	"strings"

	"github.com/baonq-me/screenberry/cache"
	"github.com/baonq-me/screenberry/models"
	"github.com/baonq-me/screenberry/scan"
	"github.com/gin-gonic/gin"
)

// Scan returns a handler for GET /api/v1/screenshot/domain/:domain.
//
// Orchestration flow:
//  1. Bind query params, validate the domain path segment, apply defaults.
//  2. Cache lookup (unless bypass_cache=1).
//  3. Coordinator.Scan → full or partial result document.
//  4. Cache store, return 200.
func Scan(co *scan.Coordinator, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		// ── 1. Bind + validate ──────────────────────────────────────
		var req models.ScanRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ScanResponse{
				Status: "error",
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Domain = c.Param("domain")
		if !validDomain(req.Domain) {
			c.JSON(http.StatusBadRequest, models.ScanResponse{
				Status: "error",
				Domain: req.Domain,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "invalid domain",
				},
			})
			return
		}
		req.Defaults()

		// ── 2. Cache lookup ─────────────────────────────────────────
		// Cached responses are shared across requests, so the stored
		// object is never mutated: the hit/miss marker goes on a copy.
		cacheKey := cache.Key(req.Domain, req.URIScheme)
		if cc != nil && req.BypassCache != 1 {
			if cached, hit := cc.Get(cacheKey); hit {
				out := *cached
				out.CacheStatus = "hit"
				c.JSON(http.StatusOK, &out)
				return
			}
		}

		// ── 3. Scan ─────────────────────────────────────────────────
		resp := co.Scan(c.Request.Context(), &req)

		// ── 4. Cache store ──────────────────────────────────────────
		if cc != nil && resp.Status == "success" && req.BypassCache != 1 {
			cc.Set(cacheKey, resp)
			out := *resp
			out.CacheStatus = "miss"
			c.JSON(http.StatusOK, &out)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// validDomain rejects path segments that cannot be a bare hostname.
func validDomain(domain string) bool {
	if domain == "" || len(domain) > 253 {
		return false
	}
	return !strings.ContainsAny(domain, "/\\@?#:% \t")
}
