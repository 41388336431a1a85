package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baonq-me/screenberry/api"
	"github.com/baonq-me/screenberry/browser"
	"github.com/baonq-me/screenberry/cache"
	"github.com/baonq-me/screenberry/config"
	"github.com/baonq-me/screenberry/crawler"
	"github.com/baonq-me/screenberry/ocr"
	"github.com/baonq-me/screenberry/scan"
	"github.com/baonq-me/screenberry/storage"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("screenberry starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
	)

	// ── 3. Initialise browser ───────────────────────────────────────
	b, err := browser.New(cfg.Browser)
	if err != nil {
		slog.Error("failed to initialise browser", "error", err)
		os.Exit(1)
	}
	defer b.Close()

	// ── 4. Wire the scan pipeline ───────────────────────────────────
	recognizer := ocr.NewTesseractRecognizer(cfg.OCR.Languages)
	classifier := ocr.NewClassifier(recognizer, cfg.OCR.Keywords, cfg.OCR.MaxWorkers)
	cr := crawler.New(cfg.Crawler)
	store := storage.New(cfg.Storage)

	opener := scan.OpenerFunc(func(ctx context.Context, url string, navTimeout, settleDelay time.Duration) (scan.Session, error) {
		s, openErr := b.Open(ctx, url, navTimeout, settleDelay)
		if openErr != nil {
			return nil, openErr
		}
		return s, nil
	})
	co := scan.New(opener, classifier, cr, store, cfg.Session, cfg.Storage.LinkExpiry)

	// ── 5. Cache + router ───────────────────────────────────────────
	cc := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	startTime := time.Now()
	router := api.NewRouter(co, cc, cfg, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight scans 10 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// b.Close() runs via defer — kills the browser process.
	slog.Info("screenberry stopped")
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// initLogger installs the process-wide slog handler. Unknown levels fall
// back to info; unknown formats fall back to JSON.
func initLogger(cfg config.LogConfig) {
	level, ok := logLevels[cfg.Level]
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "text" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, opts)))
		return
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))
}
