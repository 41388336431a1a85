package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/baonq-me/screenberry/models"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key("example.com", "https")
	b := Key("example.com", "https")
	if a != b {
		t.Errorf("same parameters produced different keys: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(a))
	}
}

func TestKey_DistinguishesParameters(t *testing.T) {
	keys := map[string]string{
		"domain":    Key("example.com", "https"),
		"scheme":    Key("example.com", "http"),
		"other":     Key("example.org", "https"),
		"separator": Key("example.comh", "ttps"),
	}
	seen := make(map[string]string)
	for name, k := range keys {
		if prev, dup := seen[k]; dup {
			t.Errorf("key collision between %s and %s", name, prev)
		}
		seen[k] = name
	}
}

func TestCache_GetSet(t *testing.T) {
	c := New(10, time.Minute)
	resp := &models.ScanResponse{Status: "success", Domain: "example.com"}

	key := Key("example.com", "https")
	if _, hit := c.Get(key); hit {
		t.Error("hit on empty cache")
	}

	c.Set(key, resp)
	got, hit := c.Get(key)
	if !hit {
		t.Fatal("miss after Set")
	}
	if got.Domain != "example.com" {
		t.Errorf("cached Domain = %q, want example.com", got.Domain)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New(10, 50*time.Millisecond)
	key := Key("example.com", "https")
	c.Set(key, &models.ScanResponse{Status: "success"})

	if _, hit := c.Get(key); !hit {
		t.Fatal("miss immediately after Set")
	}

	time.Sleep(80 * time.Millisecond)
	if _, hit := c.Get(key); hit {
		t.Error("hit after TTL elapsed")
	}
}

func TestCache_CapacityEviction(t *testing.T) {
	c := New(3, time.Minute)
	for i := 0; i < 5; i++ {
		c.Set(Key(fmt.Sprintf("site%d.example", i), "https"), &models.ScanResponse{})
	}

	if size := c.Len(); size > 3 {
		t.Errorf("cache holds %d entries, want at most 3", size)
	}
}
