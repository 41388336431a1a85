package browser

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/baonq-me/screenberry/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// Session is one browser tab bound to one scan request.
// Close is idempotent and must be called on every exit path.
type Session struct {
	page      *rod.Page
	closeOnce sync.Once
}

// Open creates a page, navigates to url, and waits for the page to become
// minimally ready (body element present). The readiness wait shares the
// caller-supplied navigation deadline; it never falls back to a shorter
// fixed constant. After readiness, settleDelay gives client-side rendering
// time to run before capture.
//
// Lifecycle:
//
//  1. Create page
//  2. Viewport + device scale emulation
//  3. Stealth injection (before navigation)
//  4. Extra headers (before navigation)
//  5. Navigate with deadline
//  6. Readiness wait (body element), same deadline
//  7. Settle delay
//
// On any failure the page is closed before returning; a failed Open never
// leaks a tab.
func (b *Browser) Open(ctx context.Context, url string, navTimeout, settleDelay time.Duration) (*Session, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScanError(
			models.ErrCodeSession,
			"failed to create page",
			err,
		)
	}

	s := &Session{page: page}
	opened := false
	defer func() {
		if !opened {
			s.Close()
		}
	}()

	// ── 2. Viewport emulation ───────────────────────────────────────
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             b.browserCfg.ViewportWidth,
		Height:            b.browserCfg.ViewportHeight,
		DeviceScaleFactor: b.browserCfg.DeviceScaleFactor,
		Mobile:            false,
	}).Call(page); err != nil {
		slog.Warn("viewport emulation failed, using browser defaults", "error", err)
	}

	// ── 3. Stealth injection ────────────────────────────────────────
	// Only effective for navigations that happen after injection.
	if b.browserCfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	// ── 4. Extra headers ────────────────────────────────────────────
	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: proto.NetworkHeaders{
			"Accept-Language": gson.New("en-US,en;q=0.9,vi;q=0.8"),
		},
	}.Call(page)

	// ── 5-6. Navigate + readiness, one shared deadline ──────────────
	navCtx, navCancel := context.WithTimeout(ctx, navTimeout)
	defer navCancel()

	p := page.Context(navCtx)
	if navErr := p.Navigate(url); navErr != nil {
		return nil, categorizeError(navErr, "navigation to target URL failed")
	}
	if _, readyErr := p.Element("body"); readyErr != nil {
		return nil, categorizeError(readyErr, "page never became ready (no body element)")
	}

	// ── 7. Settle delay ─────────────────────────────────────────────
	// Intentionally outside the navigation deadline: it is a fixed wait,
	// not a bounded operation.
	if settleDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, categorizeError(ctx.Err(), "request canceled during settle delay")
		case <-time.After(settleDelay):
		}
	}

	opened = true
	return s, nil
}

// Title returns the document title, best-effort.
func (s *Session) Title() string {
	return evalStringOrEmpty(s.page, `() => document.title`)
}

// CurrentURL returns the final navigated URL, best-effort.
func (s *Session) CurrentURL() string {
	return evalStringOrEmpty(s.page, `() => window.location.href`)
}

// HTML returns the rendered page source.
func (s *Session) HTML() (string, error) {
	html, err := s.page.HTML()
	if err != nil {
		return "", models.NewScanError(models.ErrCodeCapture, "failed to extract rendered HTML", err)
	}
	return html, nil
}

// Screenshot captures the viewport as PNG.
func (s *Session) Screenshot() ([]byte, error) {
	png, err := s.page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, models.NewScanError(models.ErrCodeCapture, "failed to capture screenshot", err)
	}
	return png, nil
}

// ScriptElements snapshots every script tag in the rendered DOM into plain
// values. A failed attribute or content read keeps the element in the
// snapshot with Err set, so the script inventory stays complete. Elements
// without a src attribute and without inline content are still returned
// (with all fields empty) and filtered by the crawler.
func (s *Session) ScriptElements() ([]models.ScriptElement, error) {
	els, err := s.page.Elements("script")
	if err != nil {
		return nil, models.NewScanError(models.ErrCodeCapture, "failed to query script elements", err)
	}

	scripts := make([]models.ScriptElement, 0, len(els))
	for _, el := range els {
		var se models.ScriptElement
		src, attrErr := el.Attribute("src")
		switch {
		case attrErr != nil:
			se.Err = attrErr.Error()
		case src != nil:
			se.Src = *src
		}
		if se.Src == "" && se.Err == "" {
			if res, evalErr := el.Eval(`() => this.innerHTML`); evalErr == nil {
				se.Inline = res.Value.Str()
			} else {
				se.Err = evalErr.Error()
			}
		}
		scripts = append(scripts, se)
	}
	return scripts, nil
}

// Hrefs returns the raw href attribute of every anchor element that has a
// non-empty one. Duplicates are kept; deduplication is the crawler's job.
func (s *Session) Hrefs() ([]string, error) {
	els, err := s.page.Elements("a")
	if err != nil {
		return nil, models.NewScanError(models.ErrCodeCapture, "failed to query anchor elements", err)
	}

	hrefs := make([]string, 0, len(els))
	for _, el := range els {
		if href, attrErr := el.Attribute("href"); attrErr == nil && href != nil && *href != "" {
			hrefs = append(hrefs, *href)
		}
	}
	return hrefs, nil
}

// Close releases the tab. Safe to call multiple times; only the first call
// closes the page.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if err := s.page.Close(); err != nil {
			slog.Warn("failed to close page", "error", err)
		}
	})
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// categorizeError wraps raw errors into typed ScanErrors so the coordinator
// can map them to the partial-result contract.
func categorizeError(err error, msg string) *models.ScanError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScanError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScanError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScanError(models.ErrCodeSession, msg, err)
	}
}
