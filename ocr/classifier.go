package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Segmentation modes 1..13 are all attempted on every classification.
const (
	minPSM = 1
	maxPSM = 13
)

// Job is the outcome of one recognition pass. Exactly one Job exists per
// segmentation mode per classification, failed passes included.
type Job struct {
	// PSM is the segmentation mode this pass ran with.
	PSM int

	// RawText is the engine output before normalization.
	RawText string

	// Text is the normalized output used for keyword matching.
	Text string

	// Err is the recognition failure, empty on success.
	Err string

	// Elapsed is the recognition duration.
	Elapsed time.Duration
}

// Method returns the engine configuration identifier for this pass.
func (j Job) Method() string {
	return fmt.Sprintf("osm=3,psm=%d", j.PSM)
}

// Result is the login-page vote together with the full audit trail.
type Result struct {
	// PredictLogin is true when at least one non-errored pass, or the
	// page title, contained a keyword.
	PredictLogin bool

	// WinningPSM is the lowest segmentation mode among matching passes,
	// or -1 when PredictLogin is false. Lowest-id selection keeps the
	// winner deterministic across runs regardless of completion order.
	WinningPSM int

	// Jobs holds one entry per segmentation mode, ordered by PSM.
	Jobs []Job
}

// Classifier votes on "is this a login page" by fanning text recognition
// out across all segmentation modes and matching keywords against the
// normalized outputs and the page title.
type Classifier struct {
	recognizer Recognizer
	keywords   []string
	maxWorkers int
}

// NewClassifier creates a Classifier. keywords are matched case- and
// diacritic-insensitively. maxWorkers <= 0 runs every segmentation mode on
// its own worker.
func NewClassifier(recognizer Recognizer, keywords []string, maxWorkers int) *Classifier {
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		normalized = append(normalized, Normalize(k))
	}
	if maxWorkers <= 0 {
		maxWorkers = maxPSM - minPSM + 1
	}
	return &Classifier{
		recognizer: recognizer,
		keywords:   normalized,
		maxWorkers: maxWorkers,
	}
}

// Classify preprocesses the screenshot once, runs all recognition passes
// concurrently, and votes. A failed pass records its error in its own Job
// and never aborts the siblings; every pass runs to completion even after
// a match is found, keeping the audit trail complete.
func (c *Classifier) Classify(ctx context.Context, screenshot image.Image, title string) (*Result, error) {
	prepStart := time.Now()
	preprocessed := Preprocess(screenshot)

	var buf bytes.Buffer
	if err := png.Encode(&buf, preprocessed); err != nil {
		return nil, fmt.Errorf("ocr: encode preprocessed image: %w", err)
	}
	bitmap := buf.Bytes()
	slog.Debug("screenshot preprocessed",
		"ms", time.Since(prepStart).Milliseconds(),
		"bytes", len(bitmap),
	)

	// One slot per segmentation mode: workers write disjoint indices, so
	// no aggregation lock is needed and the order is fixed up front.
	jobs := make([]Job, maxPSM-minPSM+1)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(c.maxWorkers)
	for psm := minPSM; psm <= maxPSM; psm++ {
		g.Go(func() error {
			start := time.Now()
			raw, err := c.recognizer.Recognize(bitmap, psm)
			job := Job{PSM: psm, Elapsed: time.Since(start)}
			if err != nil {
				job.Err = err.Error()
				slog.Error("ocr pass failed", "psm", psm, "error", err)
			} else {
				job.RawText = raw
				job.Text = Normalize(raw)
				slog.Debug("ocr pass done",
					"psm", psm,
					"ms", job.Elapsed.Milliseconds(),
					"text", job.Text,
				)
			}
			jobs[psm-minPSM] = job
			return nil
		})
	}
	// Workers report failures through their own slot, never as errors.
	_ = g.Wait()

	result := &Result{WinningPSM: -1, Jobs: jobs}

	normTitle := Normalize(title)
	for _, job := range jobs {
		if job.Err != "" {
			continue
		}
		if keyword := c.match(job.Text, normTitle); keyword != "" {
			slog.Warn("possible login form detected",
				"psm", job.PSM,
				"keyword", keyword,
			)
			result.PredictLogin = true
			result.WinningPSM = job.PSM
			break // jobs are PSM-ordered, so the first match is the minimum
		}
	}

	return result, nil
}

// match returns the first keyword found in the normalized text or title,
// or "" when none match.
func (c *Classifier) match(text, title string) string {
	for _, keyword := range c.keywords {
		if strings.Contains(text, keyword) || strings.Contains(title, keyword) {
			return keyword
		}
	}
	return ""
}
