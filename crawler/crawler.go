package crawler

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/baonq-me/screenberry/config"
	"github.com/baonq-me/screenberry/models"
	"golang.org/x/sync/errgroup"
)

// maxScriptBody caps how much of an external script is read.
const maxScriptBody = 10 * 1024 * 1024 // 10 MB

// Crawler classifies script elements, fetches external script bodies, and
// fingerprints all content. It is safe for concurrent use.
type Crawler struct {
	client      *http.Client
	concurrency int
}

// New creates a Crawler. TLS verification is relaxed: internal and staging
// targets routinely serve self-signed certificates, and the fetched bytes
// are fingerprinted, not trusted.
func New(cfg config.CrawlerConfig) *Crawler {
	return &Crawler{
		client: &http.Client{
			Timeout: cfg.FetchTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		concurrency: cfg.FetchConcurrency,
	}
}

// Crawl fingerprints every script element and deduplicates the href set.
//
// Classification per element: an element whose DOM read failed keeps its
// slot as an error-only record; a src attribute referencing an http/https
// URL makes it external; otherwise non-empty inline content makes it inline;
// anything else carries no content and is skipped. External bodies are
// fetched by a bounded worker pool; one failed fetch records its error in
// its own result slot and never aborts the crawl. The returned script
// collection is complete only after every fetch has finished.
func (c *Crawler) Crawl(ctx context.Context, elements []models.ScriptElement, hrefs []string) ([]models.ScriptRecord, []string) {
	start := time.Now()

	scripts := make([]models.ScriptRecord, 0, len(elements))
	var external []string

	for _, el := range elements {
		switch {
		case el.Err != "":
			// The element could not be read out of the DOM; keep its
			// slot in the inventory with the error.
			scripts = append(scripts, models.ScriptRecord{Error: el.Err})
		case el.Src != "":
			if !strings.Contains(el.Src, "http") {
				continue
			}
			external = append(external, el.Src)
		case el.Inline != "":
			scripts = append(scripts, models.ScriptRecord{
				Type:          "inline",
				ContentF64:    prefix64(el.Inline),
				ContentSHA256: digest(el.Inline),
			})
		}
	}

	// Bounded fan-out over external scripts. Each worker writes only its
	// own slot; aggregation happens after the full join.
	fetched := make([]models.ScriptRecord, len(external))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, src := range external {
		g.Go(func() error {
			fetched[i] = c.fetch(gctx, src)
			return nil
		})
	}
	_ = g.Wait()
	scripts = append(scripts, fetched...)

	slog.Info("script crawl done",
		"scripts", len(scripts),
		"external", len(external),
		"ms", time.Since(start).Milliseconds(),
	)

	return scripts, dedupe(hrefs)
}

// fetch retrieves one external script and fingerprints its body. Failures
// come back as a record with the error set and no digest.
func (c *Crawler) fetch(ctx context.Context, src string) models.ScriptRecord {
	record := models.ScriptRecord{Type: "external", Src: src}
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		record.Error = err.Error()
		return record
	}

	resp, err := c.client.Do(req)
	if err != nil {
		record.Error = err.Error()
		return record
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScriptBody))
	if err != nil {
		record.Error = fmt.Sprintf("read body: %v", err)
		return record
	}

	content := string(body)
	record.ContentF64 = prefix64(content)
	record.ContentSHA256 = digest(content)

	slog.Debug("script fetched",
		"src", src,
		"bytes", len(body),
		"ms", time.Since(start).Milliseconds(),
	)
	return record
}

// prefix64 returns the first 64 characters of s, verbatim.
func prefix64(s string) string {
	runes := []rune(s)
	if len(runes) > 64 {
		return string(runes[:64])
	}
	return s
}

// digest returns the hex-encoded sha256 of s.
func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// dedupe collapses duplicate hrefs, keeping first-seen order.
func dedupe(hrefs []string) []string {
	seen := make(map[string]struct{}, len(hrefs))
	out := make([]string, 0, len(hrefs))
	for _, h := range hrefs {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
