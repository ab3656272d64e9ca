package immo

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/immotrack/docpipe"
	"github.com/hazyhaar/immotrack/immo/internal/fetch"
	"github.com/hazyhaar/immotrack/immo/internal/sheet"
)

// Config configures the immo service.
type Config struct {
	// GeminiAPIKey authenticates model calls. Usually injected from the
	// environment rather than the file.
	GeminiAPIKey string `yaml:"gemini_api_key"`

	// ExtractionModel is the model used for listing analysis.
	ExtractionModel string `yaml:"extraction_model"`
	// DraftModel is the model used for contact drafts.
	DraftModel string `yaml:"draft_model"`

	// GenAIBaseURL overrides the model endpoint (tests).
	GenAIBaseURL string `yaml:"genai_base_url"`
	// GenAITimeout bounds one model call.
	GenAITimeout time.Duration `yaml:"genai_timeout"`

	// Fetch settings for listing pages.
	Fetch fetch.Config `yaml:"fetch"`

	// Sheet settings for the spreadsheet webhook.
	Sheet sheet.Config `yaml:"sheet"`

	// Docs settings for uploaded documents.
	Docs docpipe.Config `yaml:"docs"`

	// SessionTTL is how long an idle session survives.
	SessionTTL time.Duration `yaml:"session_ttl"`

	// UseBrowser enables the headless-browser fallback for JS-rendered
	// listing pages. Needs Chrome on the host.
	UseBrowser bool `yaml:"use_browser"`
}

func (c *Config) defaults() {
	if c.ExtractionModel == "" {
		c.ExtractionModel = "gemini-3-flash-preview"
	}
	if c.DraftModel == "" {
		c.DraftModel = "gemini-1.5-flash"
	}
	if c.GenAITimeout <= 0 {
		c.GenAITimeout = 120 * time.Second
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 24 * time.Hour
	}
	// fetch, sheet and docs apply their own defaults.
}

// LoadConfig reads a YAML config file. A missing file is not an error;
// everything has a default and secrets come from the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("immo: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("immo: parse config %s: %w", path, err)
	}
	return cfg, nil
}
