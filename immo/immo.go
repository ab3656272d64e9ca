// CLAUDE:SUMMARY Main Service orchestrator: sessions, analysis, drafts, spreadsheet submission.
// Package immo implements the listing review service: analyse raw sources
// into a structured record, let the user correct it, then submit one row
// to the tracking spreadsheet.
//
// The flow is extract → review → submit. Extraction is best effort and
// the review form is the source of truth; nothing is persisted locally.
package immo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/immotrack/annonce"
	"github.com/hazyhaar/immotrack/docpipe"
	"github.com/hazyhaar/immotrack/genai"
	"github.com/hazyhaar/immotrack/immo/internal/draft"
	"github.com/hazyhaar/immotrack/immo/internal/extraction"
	"github.com/hazyhaar/immotrack/immo/internal/fetch"
	"github.com/hazyhaar/immotrack/immo/internal/imaging"
	"github.com/hazyhaar/immotrack/immo/internal/sheet"
)

// Service is the main immo orchestrator.
type Service struct {
	sessions *sessionStore
	engine   *extraction.Engine
	drafter  *draft.Writer
	sender   *sheet.Sender
	docs     *docpipe.Pipeline
	browser  *fetch.Browser // nil unless UseBrowser
	logger   *slog.Logger
	config   *Config
}

// New creates an immo Service.
func New(cfg *Config, logger *slog.Logger) *Service {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	cfg.Fetch.Logger = logger
	cfg.Sheet.Logger = logger
	cfg.Docs.Logger = logger

	fetcher := fetch.New(cfg.Fetch)
	var browser *fetch.Browser
	if cfg.UseBrowser {
		browser = fetch.NewBrowser(logger)
		fetcher.SetBrowser(browser)
	}

	client := genai.New(genai.Config{
		BaseURL: cfg.GenAIBaseURL,
		Timeout: cfg.GenAITimeout,
		Logger:  logger,
	})

	return &Service{
		sessions: newSessionStore(cfg.SessionTTL, logger),
		engine:   extraction.New(client, fetcher, extraction.Config{Model: cfg.ExtractionModel, Logger: logger}),
		drafter:  draft.New(client, draft.Config{Model: cfg.DraftModel, Logger: logger}),
		sender:   sheet.New(cfg.Sheet),
		docs:     docpipe.New(cfg.Docs),
		browser:  browser,
		logger:   logger,
		config:   cfg,
	}
}

// Run keeps background maintenance alive until ctx is done.
func (svc *Service) Run(ctx context.Context) {
	svc.sessions.Janitor(ctx)
}

// Close releases resources (the headless browser, if started).
func (svc *Service) Close() error {
	if svc.browser != nil {
		return svc.browser.Close()
	}
	return nil
}

// ConfigStatus reports which server-side defaults exist. Values are never
// exposed; the UI only needs to know whether it must ask for them.
type ConfigStatus struct {
	HasAPIKey  bool `json:"has_api_key"`
	HasWebhook bool `json:"has_webhook"`
}

// Status returns the configured-defaults presence flags.
func (svc *Service) Status() ConfigStatus {
	return ConfigStatus{
		HasAPIKey:  svc.config.GeminiAPIKey != "",
		HasWebhook: svc.config.Sheet.WebhookURL != "",
	}
}

// --- Sessions ---

// CreateSession starts a fresh review session.
func (svc *Service) CreateSession() *Session {
	s := svc.sessions.Create()
	svc.logger.Info("session created", "session_id", s.ID)
	return s
}

// GetSession returns a snapshot of a session.
func (svc *Service) GetSession(id string) (*Session, error) {
	return svc.sessions.Get(id)
}

// ResetSession discards the session's record and starts over.
func (svc *Service) ResetSession(id string) (*Session, error) {
	return svc.sessions.Reset(id)
}

// UpdateRecord applies user edits to the session's record. All wire keys
// are writable; invalid values reject the whole update.
func (svc *Service) UpdateRecord(id string, fields map[string]any) (*Session, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields", ErrInvalidInput)
	}
	return svc.sessions.Update(id, func(s *Session) error {
		if err := annonce.Apply(s.Record, fields); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil
	})
}

// --- Analysis ---

// AnalyzeInput carries the raw sources for one analysis.
type AnalyzeInput struct {
	RawText string
	URL     string
	// APIKey overrides the configured key for this call. The original
	// workflow pastes the key into the UI rather than configuring it.
	APIKey string
	// Photos are raw uploaded images, any common format.
	Photos []imaging.Upload
	// Documents are raw uploaded files (pdf, txt, html).
	Documents []DocumentUpload
}

// DocumentUpload is one uploaded document.
type DocumentUpload struct {
	Filename string
	Data     []byte
}

// Analyze runs extraction over the input and merges the result into the
// session's record. Source failures degrade to warnings; only a failed
// model call is an error.
func (svc *Service) Analyze(ctx context.Context, sessionID string, in AnalyzeInput) (*Session, error) {
	apiKey := in.APIKey
	if apiKey == "" {
		apiKey = svc.config.GeminiAPIKey
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	photos, warnings := imaging.Normalize(in.Photos)

	var docTexts []string
	for _, d := range in.Documents {
		doc, err := svc.docs.Extract(ctx, d.Filename, d.Data)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("document %s ignoré : %v", d.Filename, err))
			continue
		}
		if text := strings.TrimSpace(doc.RawText); text != "" {
			docTexts = append(docTexts, text)
		}
	}

	// Empty input still goes to the model with the bare instruction; it
	// legitimately yields an empty mapping.
	input := extraction.Input{
		RawText:   in.RawText,
		URL:       in.URL,
		Photos:    photos,
		Documents: docTexts,
	}

	fields, extractWarnings, err := svc.engine.Analyze(ctx, apiKey, input)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, extractWarnings...)

	return svc.sessions.Update(sessionID, func(s *Session) error {
		warnings = append(warnings, annonce.Merge(s.Record, fields)...)
		if url := strings.TrimSpace(in.URL); url != "" {
			s.Record.URL = url
		}
		s.Warnings = warnings
		return nil
	})
}

// --- Draft ---

// Draft generates the contact message for the session's neighbourhood and
// stores it on the record. apiKey overrides the configured key for this
// call; create_draft is user-owned and is left alone.
func (svc *Service) Draft(ctx context.Context, sessionID, apiKey string) (*Session, error) {
	if apiKey == "" {
		apiKey = svc.config.GeminiAPIKey
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	s, err := svc.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	msg := svc.drafter.Message(ctx, apiKey, s.Record.Quartier)

	return svc.sessions.Update(sessionID, func(s *Session) error {
		s.Record.MessageDraft = msg
		return nil
	})
}

// --- Submit ---

// Submit posts the session's record to the spreadsheet webhook. The
// record persists either way: on failure the user retries, on success it
// stays editable for corrections and resubmission. Reset is an explicit
// user action.
func (svc *Service) Submit(ctx context.Context, sessionID string, webhookOverride string) (*Session, error) {
	s, err := svc.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := svc.sender.Send(ctx, s.Record, webhookOverride); err != nil {
		return nil, err
	}
	svc.logger.Info("annonce submitted", "session_id", sessionID,
		"ville", s.Record.Ville, "prix", s.Record.Prix)
	return s, nil
}
