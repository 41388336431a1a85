package config

import (
	"strings"
	"testing"
	"time"
)

func setStorageEnv(t *testing.T) {
	t.Helper()
	t.Setenv("S3_WRITE_ENDPOINT", "http://minio:9000")
	t.Setenv("S3_READ_SCHEME", "https")
	t.Setenv("S3_READ_HOSTNAME", "cdn.example.com")
	t.Setenv("S3_BUCKET_NAME", "artifacts")
	t.Setenv("S3_ACCESS_KEY", "ak")
	t.Setenv("S3_PRIVATE_KEY", "sk")
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8082 {
		t.Errorf("Server.Port = %d, want 8082", cfg.Server.Port)
	}
	if cfg.Session.DefaultTimeout != 15*time.Second {
		t.Errorf("Session.DefaultTimeout = %v, want 15s", cfg.Session.DefaultTimeout)
	}
	if cfg.Session.MaxTimeout != 120*time.Second {
		t.Errorf("Session.MaxTimeout = %v, want 120s", cfg.Session.MaxTimeout)
	}
	if cfg.Browser.ViewportWidth != 1920 || cfg.Browser.ViewportHeight != 1080 {
		t.Errorf("viewport = %dx%d, want 1920x1080",
			cfg.Browser.ViewportWidth, cfg.Browser.ViewportHeight)
	}
	if cfg.Browser.DeviceScaleFactor != 2.0 {
		t.Errorf("DeviceScaleFactor = %v, want 2.0", cfg.Browser.DeviceScaleFactor)
	}
	if cfg.OCR.Languages != "eng+vie" {
		t.Errorf("OCR.Languages = %q, want eng+vie", cfg.OCR.Languages)
	}
	if len(cfg.OCR.Keywords) == 0 {
		t.Error("OCR.Keywords empty, want built-in keyword list")
	}
	if cfg.Crawler.FetchConcurrency != 16 {
		t.Errorf("FetchConcurrency = %d, want 16", cfg.Crawler.FetchConcurrency)
	}
	if cfg.Storage.LinkExpiry != 7*24*time.Hour {
		t.Errorf("LinkExpiry = %v, want 168h", cfg.Storage.LinkExpiry)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SCREENBERRY_PORT", "9090")
	t.Setenv("SCREENBERRY_MAX_TIMEOUT", "60s")
	t.Setenv("SCREENBERRY_LOGIN_KEYWORDS", "login, signin ,password")
	t.Setenv("SCREENBERRY_HEADLESS", "false")

	cfg := Load()

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Session.MaxTimeout != 60*time.Second {
		t.Errorf("Session.MaxTimeout = %v, want 60s", cfg.Session.MaxTimeout)
	}
	want := []string{"login", "signin", "password"}
	if len(cfg.OCR.Keywords) != len(want) {
		t.Fatalf("Keywords = %v, want %v", cfg.OCR.Keywords, want)
	}
	for i, k := range want {
		if cfg.OCR.Keywords[i] != k {
			t.Errorf("Keywords[%d] = %q, want %q (whitespace trimmed)", i, cfg.OCR.Keywords[i], k)
		}
	}
	if cfg.Browser.Headless {
		t.Error("Headless = true, want false")
	}
}

func TestValidate_RequiresStorageSettings(t *testing.T) {
	required := []string{
		"S3_WRITE_ENDPOINT", "S3_READ_SCHEME", "S3_READ_HOSTNAME",
		"S3_BUCKET_NAME", "S3_ACCESS_KEY", "S3_PRIVATE_KEY",
	}
	for _, missing := range required {
		t.Run(missing, func(t *testing.T) {
			setStorageEnv(t)
			t.Setenv(missing, "")

			err := Load().Validate()
			if err == nil {
				t.Fatalf("Validate() = nil with $%s unset", missing)
			}
			if !strings.Contains(err.Error(), missing) {
				t.Errorf("error %q does not name the missing variable %s", err, missing)
			}
		})
	}
}

func TestValidate_Complete(t *testing.T) {
	setStorageEnv(t)
	if err := Load().Validate(); err != nil {
		t.Errorf("Validate() = %v with complete storage settings", err)
	}
}

func TestEnvHelpers_MalformedFallsBack(t *testing.T) {
	t.Setenv("SCREENBERRY_PORT", "not-a-number")
	t.Setenv("SCREENBERRY_MAX_TIMEOUT", "soon")
	t.Setenv("SCREENBERRY_DEVICE_SCALE", "big")

	cfg := Load()
	if cfg.Server.Port != 8082 {
		t.Errorf("Server.Port = %d, want default on malformed value", cfg.Server.Port)
	}
	if cfg.Session.MaxTimeout != 120*time.Second {
		t.Errorf("Session.MaxTimeout = %v, want default on malformed value", cfg.Session.MaxTimeout)
	}
	if cfg.Browser.DeviceScaleFactor != 2.0 {
		t.Errorf("DeviceScaleFactor = %v, want default on malformed value", cfg.Browser.DeviceScaleFactor)
	}
}
