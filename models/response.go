package models

// ScanResponse is the top-level response document for a domain scan.
// It is always well-formed JSON, including under partial failure.
type ScanResponse struct {
	// Status is "success" when the scan produced a result document,
	// including the degraded browser-failure case, and "error" only for
	// unexpected failures.
	Status string `json:"status"`

	// Domain echoes the requested domain.
	Domain string `json:"domain"`

	// URIScheme echoes the scheme used to build the target URL.
	URIScheme string `json:"uri_scheme"`

	// RequestID is the identifier minted for this scan. It namespaces all
	// artifact keys, so concurrent scans of the same domain never collide.
	RequestID string `json:"request_id"`

	// Result is the scan result document. Nil only on "error" status.
	Result *ScanResult `json:"result,omitempty"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (cache bypassed).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Status is "error".
	Error *ErrorDetail `json:"error,omitempty"`
}

// ScanResult nests everything derived from the page. On browser-session
// failure only HTML (raw fields) and WebdriverException are populated.
type ScanResult struct {
	// HTML holds the raw and rendered page artifacts.
	HTML HTMLArtifacts `json:"html"`

	// WebdriverException carries the browser failure description on the
	// degraded path. Absent on full scans.
	WebdriverException string `json:"webdriver_exception,omitempty"`

	// ScreenshotPresignedURL is the retrieval link for the JPEG screenshot.
	ScreenshotPresignedURL string `json:"screenshot_presigned_url,omitempty"`

	// ProfilerPresignedURL is the retrieval link for the phase-timing trace.
	ProfilerPresignedURL string `json:"profiler_presigned_url,omitempty"`

	// CurrentURL is the final navigated URL after redirects.
	CurrentURL string `json:"current_url,omitempty"`

	// SiteTitle is the page title.
	SiteTitle string `json:"site_title,omitempty"`

	// PredictLoginPage is true when any OCR pass or the page title
	// contained a login keyword.
	PredictLoginPage bool `json:"predict_login_page"`

	// PredictLoginPagePSM is the winning segmentation mode, or -1 when
	// PredictLoginPage is false.
	PredictLoginPagePSM int `json:"predict_login_page_psm"`

	// ExtractedText lists one record per OCR configuration attempted.
	ExtractedText []OCRRecord `json:"extracted_text,omitempty"`

	// Scripts lists fingerprint records for every script element examined.
	Scripts []ScriptRecord `json:"scripts"`

	// Hrefs is the deduplicated set of outbound link targets.
	Hrefs []string `json:"hrefs"`

	// DomainRedirected is true when the requested domain no longer appears
	// in the final navigated URL.
	DomainRedirected bool `json:"domain_redirected"`
}

// HTMLArtifacts carries the published page source artifacts. The rendered
// fields are absent when the browser session could not be opened.
type HTMLArtifacts struct {
	PageRawPresignedURL string `json:"page_raw_presigned_url,omitempty"`
	PageRawSizeBytes    int    `json:"page_raw_size_bytes,omitempty"`

	PageHTMLPresignedURL string `json:"page_html_presigned_url,omitempty"`
	PageHTMLSizeBytes    int    `json:"page_html_size_bytes,omitempty"`
}

// OCRRecord is the per-configuration OCR result. Exactly one of Text or
// Error is meaningful: failed passes keep their slot with Error set.
type OCRRecord struct {
	// Method identifies the engine configuration, e.g. "osm=3,psm=4".
	Method string `json:"method"`

	// PSM is the page segmentation mode (1..13).
	PSM int `json:"psm"`

	// Text is the normalized recognition output.
	Text string `json:"text,omitempty"`

	// Error is the recognition failure, when the pass failed.
	Error string `json:"error,omitempty"`

	// TimeTakenMs is the recognition duration in milliseconds.
	TimeTakenMs int64 `json:"time_taken_ms"`
}

// ScriptRecord is the fingerprint record for one script element.
type ScriptRecord struct {
	// Type is "inline" or "external". Absent on records whose element
	// could not be read out of the DOM at all.
	Type string `json:"type,omitempty"`

	// Src is the script source URL. External scripts only.
	Src string `json:"src,omitempty"`

	// ContentF64 is the first 64 characters of the script body.
	ContentF64 string `json:"content_f64,omitempty"`

	// ContentSHA256 is the hex digest of the full script body.
	ContentSHA256 string `json:"content_sha256,omitempty"`

	// Error is set when fetching an external script failed; no digest is
	// produced in that case.
	Error string `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"` // "healthy" or "degraded"
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
