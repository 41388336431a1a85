package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"strings"
	"time"

	"github.com/baonq-me/screenberry/config"
	"github.com/baonq-me/screenberry/crawler"
	"github.com/baonq-me/screenberry/models"
	"github.com/baonq-me/screenberry/ocr"
	"github.com/baonq-me/screenberry/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// screenshotJPEGQuality is used when re-encoding the PNG screenshot for
// publishing.
const screenshotJPEGQuality = 70

// Session is the per-scan browser session as the coordinator sees it.
// Close must be idempotent.
type Session interface {
	Title() string
	CurrentURL() string
	HTML() (string, error)
	Screenshot() ([]byte, error)
	ScriptElements() ([]models.ScriptElement, error)
	Hrefs() ([]string, error)
	Close()
}

// Opener opens one browser session per scan request.
type Opener interface {
	Open(ctx context.Context, url string, navTimeout, settleDelay time.Duration) (Session, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, url string, navTimeout, settleDelay time.Duration) (Session, error)

// Open implements Opener.
func (f OpenerFunc) Open(ctx context.Context, url string, navTimeout, settleDelay time.Duration) (Session, error) {
	return f(ctx, url, navTimeout, settleDelay)
}

// Coordinator sequences one scan request: raw fetch, browser capture,
// concurrent classification and crawling, artifact publishing, and result
// assembly.
type Coordinator struct {
	opener     Opener
	classifier *ocr.Classifier
	crawler    *crawler.Crawler
	store      storage.Uploader
	raw        rawFetch
	sessionCfg config.SessionConfig
	linkExpiry time.Duration
}

// New creates a Coordinator.
func New(opener Opener, classifier *ocr.Classifier, cr *crawler.Crawler, store storage.Uploader, sessionCfg config.SessionConfig, linkExpiry time.Duration) *Coordinator {
	return &Coordinator{
		opener:     opener,
		classifier: classifier,
		crawler:    cr,
		store:      store,
		raw:        &rawFetcher{},
		sessionCfg: sessionCfg,
		linkExpiry: linkExpiry,
	}
}

// Scan executes the full pipeline for one request and always returns a
// well-formed response document.
//
// Lifecycle:
//
//  1. Fetch raw HTML      – always, first, independent of the browser
//  2. Open session        – navigation deadline + body readiness + settle
//  3. On open failure     – return the partial result (raw HTML + driver error)
//  4. DEFER: close        – session closed exactly once on every later path
//  5. Capture             – rendered HTML, screenshot, script/anchor elements
//  6. Classify ∥ crawl    – no shared state, join before assembly
//  7. Publish artifacts   – rendered HTML, JPEG screenshot, profiler trace
//  8. Assemble result
func (c *Coordinator) Scan(ctx context.Context, req *models.ScanRequest) *models.ScanResponse {
	totalStart := time.Now()
	requestID := uuid.New().String()
	prof := &profile{}

	result := &models.ScanResult{
		PredictLoginPagePSM: -1,
		Scripts:             []models.ScriptRecord{},
		Hrefs:               []string{},
	}
	resp := &models.ScanResponse{
		Status:    "success",
		Domain:    req.Domain,
		URIScheme: req.URIScheme,
		RequestID: requestID,
		Result:    result,
	}

	targetURL := req.URL()
	slog.Info("scan started", "request_id", requestID, "url", targetURL)

	// ── 1. Raw fetch, always ────────────────────────────────────────
	rawStart := time.Now()
	rawHTML, rawErr := c.raw.fetch(ctx, targetURL)
	prof.RawFetchMs = time.Since(rawStart).Milliseconds()
	if rawErr != nil {
		slog.Error("raw fetch failed", "request_id", requestID, "error", rawErr)
	} else {
		c.publish(ctx, result, "raw", requestID, "html", rawHTML, "text/html",
			func(url string) {
				result.HTML.PageRawPresignedURL = url
				result.HTML.PageRawSizeBytes = len(rawHTML)
			})
	}

	// ── 2-3. Open session, degrade on failure ───────────────────────
	navTimeout := time.Duration(req.Timeout) * time.Second
	if navTimeout > c.sessionCfg.MaxTimeout {
		navTimeout = c.sessionCfg.MaxTimeout
	}
	settleDelay := time.Duration(req.PageloadWaitSeconds * float64(time.Second))

	openStart := time.Now()
	sess, openErr := c.opener.Open(ctx, targetURL, navTimeout, settleDelay)
	prof.SessionOpenMs = time.Since(openStart).Milliseconds()
	if openErr != nil {
		slog.Error("session open failed, returning partial result",
			"request_id", requestID, "error", openErr)
		result.WebdriverException = openErr.Error()
		return resp
	}

	// ── 4. Exactly-once close on every exit path below ──────────────
	defer sess.Close()

	// ── 5. Capture ──────────────────────────────────────────────────
	// Each capture step is isolated: one failure does not discard what
	// was already captured.
	captureStart := time.Now()

	result.SiteTitle = sess.Title()
	result.CurrentURL = sess.CurrentURL()
	result.DomainRedirected = result.CurrentURL != "" && !strings.Contains(result.CurrentURL, req.Domain)

	renderedHTML, htmlErr := sess.HTML()
	if htmlErr != nil {
		slog.Error("rendered HTML capture failed", "request_id", requestID, "error", htmlErr)
	}

	screenshotPNG, shotErr := sess.Screenshot()
	if shotErr != nil {
		slog.Error("screenshot capture failed", "request_id", requestID, "error", shotErr)
	}

	scriptEls, scriptErr := sess.ScriptElements()
	if scriptErr != nil && renderedHTML != "" {
		slog.Warn("script element query failed, falling back to HTML snapshot",
			"request_id", requestID, "error", scriptErr)
		scriptEls = scriptsFromHTML(renderedHTML)
	}
	hrefs, hrefErr := sess.Hrefs()
	if hrefErr != nil && renderedHTML != "" {
		slog.Warn("anchor element query failed, falling back to HTML snapshot",
			"request_id", requestID, "error", hrefErr)
		hrefs = hrefsFromHTML(renderedHTML)
	}
	prof.CaptureMs = time.Since(captureStart).Milliseconds()

	// ── 6. Classify ∥ crawl ─────────────────────────────────────────
	// Inputs are snapshotted above; the two stages share no state, so
	// they run concurrently and are joined before assembly.
	var (
		classification *ocr.Result
		screenshotImg  image.Image
	)
	if shotErr == nil {
		if img, decodeErr := png.Decode(bytes.NewReader(screenshotPNG)); decodeErr == nil {
			screenshotImg = img
		} else {
			slog.Error("screenshot decode failed", "request_id", requestID, "error", decodeErr)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if screenshotImg == nil {
			return nil
		}
		ocrStart := time.Now()
		res, err := c.classifier.Classify(gctx, screenshotImg, result.SiteTitle)
		prof.OCRMs = time.Since(ocrStart).Milliseconds()
		if err != nil {
			slog.Error("classification failed", "request_id", requestID, "error", err)
			return nil
		}
		classification = res
		return nil
	})
	g.Go(func() error {
		crawlStart := time.Now()
		result.Scripts, result.Hrefs = c.crawler.Crawl(gctx, scriptEls, hrefs)
		prof.CrawlMs = time.Since(crawlStart).Milliseconds()
		return nil
	})
	_ = g.Wait()

	if classification != nil {
		result.PredictLoginPage = classification.PredictLogin
		result.PredictLoginPagePSM = classification.WinningPSM
		result.ExtractedText = make([]models.OCRRecord, 0, len(classification.Jobs))
		for _, job := range classification.Jobs {
			result.ExtractedText = append(result.ExtractedText, models.OCRRecord{
				Method:      job.Method(),
				PSM:         job.PSM,
				Text:        job.Text,
				Error:       job.Err,
				TimeTakenMs: job.Elapsed.Milliseconds(),
			})
		}
	}

	// ── 7. Publish remaining artifacts ──────────────────────────────
	uploadStart := time.Now()

	if htmlErr == nil && renderedHTML != "" {
		c.publish(ctx, result, "html", requestID, "html", []byte(renderedHTML), "text/html",
			func(url string) {
				result.HTML.PageHTMLPresignedURL = url
				result.HTML.PageHTMLSizeBytes = len(renderedHTML)
			})
	}

	if screenshotImg != nil {
		var jpegBuf bytes.Buffer
		if encodeErr := jpeg.Encode(&jpegBuf, screenshotImg, &jpeg.Options{Quality: screenshotJPEGQuality}); encodeErr != nil {
			slog.Error("screenshot re-encode failed", "request_id", requestID, "error", encodeErr)
		} else {
			c.publish(ctx, result, "screenshot", requestID, "jpg", jpegBuf.Bytes(), "image/jpeg",
				func(url string) { result.ScreenshotPresignedURL = url })
		}
	}

	prof.UploadMs = time.Since(uploadStart).Milliseconds()
	prof.TotalMs = time.Since(totalStart).Milliseconds()
	if trace, marshalErr := json.Marshal(prof); marshalErr == nil {
		c.publish(ctx, result, "profiler", requestID, "json", trace, "application/json",
			func(url string) { result.ProfilerPresignedURL = url })
	}

	slog.Info("scan finished",
		"request_id", requestID,
		"predict_login_page", result.PredictLoginPage,
		"scripts", len(result.Scripts),
		"hrefs", len(result.Hrefs),
		"total_ms", time.Since(totalStart).Milliseconds(),
	)
	return resp
}

// publish uploads one artifact and applies the URL on success. Uploads are
// never retried; a failure leaves the artifact's URL field absent and the
// scan carries on (uniform degrade policy).
func (c *Coordinator) publish(ctx context.Context, result *models.ScanResult, kind, requestID, ext string, data []byte, contentType string, apply func(url string)) {
	key := storage.Key(kind, requestID, ext)
	url, err := c.store.Upload(ctx, key, data, contentType, c.linkExpiry)
	if err != nil {
		slog.Error("artifact upload failed", "key", key, "error", err)
		return
	}
	apply(url)
}
