package browser

import (
	"log/slog"

	"github.com/baonq-me/screenberry/config"
	"github.com/baonq-me/screenberry/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// Browser owns the shared browser process. Each scan borrows exactly one
// Session (tab) from it. It is safe for concurrent use.
type Browser struct {
	browser    *rod.Browser
	browserCfg config.BrowserConfig
}

// New connects to the configured remote browser, or launches a local
// headless one when no control URL is set.
func New(browserCfg config.BrowserConfig) (*Browser, error) {
	controlURL := browserCfg.ControlURL

	if controlURL == "" {
		l := launcher.New().
			Headless(browserCfg.Headless).
			NoSandbox(browserCfg.NoSandbox)

		if browserCfg.BrowserBin != "" {
			l = l.Bin(browserCfg.BrowserBin)
		}

		l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
		l.Delete(flags.Flag("enable-automation"))
		l.Set(flags.Flag("disable-dev-shm-usage"))
		l.Set(flags.Flag("disable-extensions"))
		l.Set(flags.Flag("disable-component-update"))
		l.Set(flags.Flag("disable-default-apps"))
		l.Set(flags.Flag("no-first-run"))

		launched, err := l.Launch()
		if err != nil {
			return nil, models.NewScanError(
				models.ErrCodeSession,
				"failed to launch browser",
				err,
			)
		}
		controlURL = launched
		slog.Info("browser launched", "controlURL", controlURL)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewScanError(
			models.ErrCodeSession,
			"failed to connect to browser",
			err,
		)
	}

	return &Browser{
		browser:    b,
		browserCfg: browserCfg,
	}, nil
}

// Close kills the browser process. Call this on graceful shutdown to
// prevent zombie Chrome processes.
func (b *Browser) Close() {
	slog.Info("browser shutting down")
	b.browser.MustClose()
	slog.Info("browser shutdown complete")
}
