package storage

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		kind, requestID, ext string
		want                 string
	}{
		{"raw", "9f1c2a", "html", "raw_9f1c2a.html"},
		{"html", "9f1c2a", "html", "html_9f1c2a.html"},
		{"screenshot", "9f1c2a", "jpg", "screenshot_9f1c2a.jpg"},
		{"profiler", "9f1c2a", "json", "profiler_9f1c2a.json"},
	}
	for _, tt := range tests {
		if got := Key(tt.kind, tt.requestID, tt.ext); got != tt.want {
			t.Errorf("Key(%q, %q, %q) = %q, want %q", tt.kind, tt.requestID, tt.ext, got, tt.want)
		}
	}
}

func TestKey_DistinctRequestsDistinctKeys(t *testing.T) {
	a := Key("screenshot", "req-1", "jpg")
	b := Key("screenshot", "req-2", "jpg")
	if a == b {
		t.Errorf("different request IDs produced the same key: %s", a)
	}
}
