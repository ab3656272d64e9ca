// CLAUDE:SUMMARY Bounded best-effort listing page fetcher: browser UA, 10s timeout, content budget.
// Package fetch retrieves listing pages for extraction context.
//
// The policy is bounded best effort: the model call that follows bills by
// token volume and must never be blocked by a slow or hostile listing site,
// so the fetch has a hard timeout and a character budget, and every failure
// degrades to "no content" — the caller falls back to the bare URL.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hazyhaar/immotrack/horosafe"
)

// defaultUserAgent mimics a desktop browser; listing portals serve bot
// UAs a captcha page.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBodyBytes bounds the raw read before markdown conversion. The
// character budget applies after conversion; this only prevents a
// pathological response from exhausting memory.
const maxBodyBytes int64 = 4 << 20

// Config configures the fetcher.
type Config struct {
	// Timeout for the whole fetch. Default: 10s.
	Timeout time.Duration `yaml:"timeout"`
	// MaxChars is the content budget applied to the returned text.
	// Default: 30000.
	MaxChars int `yaml:"max_chars"`
	// UserAgent sent with requests. Default: a desktop Chrome UA.
	UserAgent string `yaml:"user_agent"`
	// URLValidator validates URLs before fetch (SSRF prevention).
	// Default: horosafe.ValidateURL.
	URLValidator func(string) error `yaml:"-"`
	Logger       *slog.Logger       `yaml:"-"`
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxChars <= 0 {
		c.MaxChars = 30000
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.URLValidator == nil {
		c.URLValidator = horosafe.ValidateURL
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Fetcher retrieves listing pages and converts them to budgeted text.
type Fetcher struct {
	client  *http.Client
	config  Config
	md      *markdownConverter
	browser *Browser // optional, nil = plain HTTP only
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	return &Fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		config: cfg,
		md:     newMarkdownConverter(),
	}
}

// SetBrowser enables the headless-browser fallback for JS-rendered pages.
// The browser navigates under the same deadline as the plain HTTP fetch.
func (f *Fetcher) SetBrowser(b *Browser) {
	b.NavTimeout = f.config.Timeout
	f.browser = b
}

// Fetch retrieves a listing URL and returns its content as markdown-ish
// text, capped at the configured character budget. Any failure (bad URL,
// network error, non-2xx status) returns an error; the caller degrades to
// bare-URL context.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := f.config.URLValidator(url); err != nil {
		return "", fmt.Errorf("fetch: URL blocked: %w", err)
	}

	start := time.Now()
	html, err := f.fetchHTML(ctx, url)
	if err != nil {
		f.config.Logger.Warn("fetch: failed", "url", url, "error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return "", err
	}

	text := f.md.convert(html, url)
	text = truncateRunes(text, f.config.MaxChars)

	f.config.Logger.Debug("fetch: ok", "url", url, "chars", len([]rune(text)),
		"duration_ms", time.Since(start).Milliseconds())
	return text, nil
}

func (f *Fetcher) fetchHTML(ctx context.Context, url string) (string, error) {
	if f.browser != nil {
		html, err := f.browser.FetchHTML(ctx, url)
		if err == nil {
			return html, nil
		}
		// Browser failure is not fatal; degrade to the plain HTTP path.
		f.config.Logger.Warn("fetch: browser failed, falling back to http",
			"url", url, "error", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch: new request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch: http %d", resp.StatusCode)
	}

	body, err := horosafe.LimitedReadAll(resp.Body, maxBodyBytes)
	if err != nil {
		return "", fmt.Errorf("fetch: read body: %w", err)
	}
	return string(body), nil
}

// truncateRunes cuts s to at most n runes. The content budget is a token
// cap, not a byte-exact requirement, but cutting mid-rune would corrupt
// accented French text.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
