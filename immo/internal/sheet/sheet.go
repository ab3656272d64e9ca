// Package sheet submits reviewed records to the spreadsheet webhook.
//
// The webhook is a Google Apps Script endpoint that appends one row per
// POST. Apps Script answers a successful write with a 302 to a result
// page; following it would re-read the response as HTML and hide the
// real outcome, so redirects are never followed and 302 counts as
// success alongside 200.
package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hazyhaar/immotrack/annonce"
	"github.com/hazyhaar/immotrack/horosafe"
)

// Config configures the sender.
type Config struct {
	// WebhookURL is the Apps Script endpoint.
	WebhookURL string `yaml:"webhook_url"`
	// Timeout for the whole submit. Default: 15s.
	Timeout time.Duration `yaml:"timeout"`
	// URLValidator validates per-call URL overrides. Default:
	// horosafe.ValidateURL.
	URLValidator func(string) error `yaml:"-"`
	Logger       *slog.Logger       `yaml:"-"`
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.URLValidator == nil {
		c.URLValidator = horosafe.ValidateURL
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Sender posts records to the webhook.
type Sender struct {
	client *http.Client
	config Config
}

// New creates a Sender.
func New(cfg Config) *Sender {
	cfg.defaults()
	return &Sender{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		config: cfg,
	}
}

// Send posts the record as JSON. urlOverride replaces the configured
// webhook for this call when non-empty; overrides come from user input
// and are SSRF-validated.
func (s *Sender) Send(ctx context.Context, a *annonce.Annonce, urlOverride string) error {
	url := s.config.WebhookURL
	if urlOverride != "" {
		if err := s.config.URLValidator(urlOverride); err != nil {
			return fmt.Errorf("sheet: webhook override blocked: %w", err)
		}
		url = urlOverride
	}
	if url == "" {
		return fmt.Errorf("sheet: no webhook URL configured")
	}

	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("sheet: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sheet: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sheet: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusFound {
		return fmt.Errorf("sheet: webhook http %d", resp.StatusCode)
	}

	s.config.Logger.Info("sheet: row submitted", "status", resp.StatusCode,
		"ville", a.Ville, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
