package models

// ScanRequest is the request for GET /api/v1/screenshot/domain/:domain.
// Domain comes from the path segment; the rest bind from query parameters.
type ScanRequest struct {
	// Domain is the target host to scan, without scheme.
	Domain string `form:"-"`

	// Timeout is the navigation deadline in seconds.
	// Default: 15. Capped by the configured maximum.
	Timeout int `form:"timeout" binding:"omitempty,min=1"`

	// BypassCache skips the response cache when set to 1.
	BypassCache int `form:"bypass_cache" binding:"omitempty,oneof=0 1"`

	// URIScheme selects the scheme used to build the target URL.
	// Allowed: "http", "https". Default: "https".
	URIScheme string `form:"uri_scheme" binding:"omitempty,oneof=http https"`

	// PageloadWaitSeconds is the fixed settle delay after navigation,
	// accounting for client-side rendering. Default: 5.0.
	PageloadWaitSeconds float64 `form:"pageload_wait_seconds" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *ScanRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 15
	}
	if r.URIScheme == "" {
		r.URIScheme = "https"
	}
	if r.PageloadWaitSeconds == 0 {
		r.PageloadWaitSeconds = 5.0
	}
}

// URL builds the navigation target from the scheme and domain.
func (r *ScanRequest) URL() string {
	return r.URIScheme + "://" + r.Domain
}
