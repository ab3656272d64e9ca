// CLAUDE:SUMMARY HTTP client for the Gemini generateContent REST API with multimodal parts.
// Package genai is a minimal client for the Gemini generateContent REST
// endpoint. Requests are multi-part: text blocks and inline images in order.
//
// No official SDK is used; the wire format is small and a hand-typed
// net/http client keeps the dependency surface flat.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// maxResponseBody caps the amount of response data read from the API (10 MiB).
const maxResponseBody int64 = 10 << 20

// ErrMissingKey is returned when Generate is called without an API key.
var ErrMissingKey = errors.New("genai: api key is required")

// Part is one element of a multi-part prompt: either Text, or inline data
// (MIME + Data) for an image.
type Part struct {
	Text string
	MIME string
	Data []byte
}

// TextPart returns a text prompt part.
func TextPart(s string) Part { return Part{Text: s} }

// Config configures the client.
type Config struct {
	// BaseURL of the API. Default: DefaultBaseURL.
	BaseURL string
	// Timeout for one generateContent call. Default: 120s (vision prompts
	// with several images are slow).
	Timeout time.Duration
	Logger  *slog.Logger
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Client calls the Gemini REST API.
type Client struct {
	client *http.Client
	config Config
}

// New creates a Client.
func New(cfg Config) *Client {
	cfg.defaults()
	return &Client{
		client: &http.Client{Timeout: cfg.Timeout},
		config: cfg,
	}
}

// Wire types for generateContent.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []wirePart `json:"parts"`
}

type wirePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends a multi-part prompt to the given model and returns the
// concatenated text of the first candidate.
func (c *Client) Generate(ctx context.Context, apiKey, model string, parts []Part) (string, error) {
	if apiKey == "" {
		return "", ErrMissingKey
	}

	wp := make([]wirePart, 0, len(parts))
	for _, p := range parts {
		if p.Data != nil {
			wp = append(wp, wirePart{InlineData: &inlineData{
				MIMEType: p.MIME,
				Data:     base64.StdEncoding.EncodeToString(p.Data),
			}})
			continue
		}
		wp = append(wp, wirePart{Text: p.Text})
	}

	reqJSON, err := json.Marshal(generateRequest{Contents: []content{{Parts: wp}}})
	if err != nil {
		return "", fmt.Errorf("genai: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		c.config.BaseURL, url.PathEscape(model))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("genai: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", apiKey)

	c.config.Logger.Debug("genai request", "model", model, "parts", len(parts),
		"payload_size", len(reqJSON))

	startTime := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("genai: http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("genai: read response: %w", err)
	}

	duration := time.Since(startTime)

	if resp.StatusCode != http.StatusOK {
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
			return "", fmt.Errorf("genai: %s (status %d, %s)",
				ae.Error.Message, resp.StatusCode, ae.Error.Status)
		}
		return "", fmt.Errorf("genai: status %d: %s", resp.StatusCode, body)
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fmt.Errorf("genai: decode response: %w", err)
	}
	if len(gr.Candidates) == 0 {
		return "", fmt.Errorf("genai: response has no candidates")
	}

	var sb bytes.Buffer
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	c.config.Logger.Debug("genai response", "model", model,
		"duration", duration,
		"tokens", gr.UsageMetadata.TotalTokenCount,
		"finish_reason", gr.Candidates[0].FinishReason)

	return sb.String(), nil
}
