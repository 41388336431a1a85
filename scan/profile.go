package scan

// profile is the phase-timing trace published as the profiler artifact.
// All durations are in milliseconds.
type profile struct {
	RawFetchMs    int64 `json:"raw_fetch_ms"`
	SessionOpenMs int64 `json:"session_open_ms"`
	CaptureMs     int64 `json:"capture_ms"`
	OCRMs         int64 `json:"ocr_ms"`
	CrawlMs       int64 `json:"crawl_ms"`
	UploadMs      int64 `json:"upload_ms"`
	TotalMs       int64 `json:"total_ms"`
}
