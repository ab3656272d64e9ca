package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// Browser fetches pages through headless Chrome with stealth applied.
// Listing portals (Leboncoin in particular) render listings client-side
// and fingerprint plain HTTP clients; the stealth page defeats the common
// checks. Launch is lazy: Chrome only starts on the first URL that needs it.
type Browser struct {
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	logger  *slog.Logger

	// NavTimeout bounds navigation plus load wait. Fetcher.SetBrowser
	// aligns it with the fetch deadline.
	NavTimeout time.Duration
}

// NewBrowser creates a lazy headless browser.
func NewBrowser(logger *slog.Logger) *Browser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Browser{logger: logger, NavTimeout: 10 * time.Second}
}

func (b *Browser) get() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New().Headless(true)
	// Anti-detection flags.
	l = l.Set("disable-blink-features", "AutomationControlled")

	wsURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	br := rod.New().ControlURL(wsURL)
	if err := br.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	b.lnch = l
	b.browser = br
	b.logger.Info("browser: launched headless chrome")
	return br, nil
}

// FetchHTML navigates to url in a fresh stealth tab and returns the
// rendered HTML.
func (b *Browser) FetchHTML(ctx context.Context, url string) (string, error) {
	br, err := b.get()
	if err != nil {
		return "", err
	}

	page, err := stealth.Page(br)
	if err != nil {
		return "", fmt.Errorf("browser: create tab: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, b.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(url); err != nil {
		return "", fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		// Slow third-party assets; the DOM is usually complete enough.
		b.logger.Warn("browser: wait load timeout", "url", url, "error", err)
	}

	html, err := page.Context(navCtx).HTML()
	if err != nil {
		return "", fmt.Errorf("browser: get html: %w", err)
	}
	return html, nil
}

// Close shuts down Chrome if it was started.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	if b.lnch != nil {
		b.lnch.Cleanup()
	}
	b.browser = nil
	b.lnch = nil
	return err
}
