// CLAUDE:SUMMARY Extraction engine: assembles sources into a model prompt and recovers JSON fields.
// Package extraction turns raw listing sources into structured fields.
//
// Sources arrive in any combination: pasted text, a listing URL, photos
// and documents. The engine assembles them into one multimodal prompt,
// calls the model, and recovers a field map from whatever the model
// returned. Extraction never fails on a bad source; it degrades and
// reports a warning instead, because the reviewer corrects the form
// by hand anyway.
package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/immotrack/genai"
)

// instruction is the extraction prompt. The JSON schema it spells out
// must stay aligned with the extraction-owned wire keys.
const instruction = `Agis comme un expert immobilier. Extrais les données au format JSON strict :
{
    "date": "YYYY-MM-DD", "ville": "Ville", "quartier": "Quartier/Métro",
    "prix": Float, "surface": Float, "type_vendeur": "Agence"|"Particulier",
    "email": "email ou vide", "telephone": "tel ou vide"
}
Si inconnu, mets 0 ou chaine vide.`

// Generator is the model call. *genai.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, apiKey, model string, parts []genai.Part) (string, error)
}

// Fetcher retrieves listing-page content. *fetch.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Input is everything the user supplied for one analysis.
type Input struct {
	RawText string
	URL     string
	// Photos are normalised JPEG parts, in upload order.
	Photos []genai.Part
	// Documents are extracted document texts, one per upload.
	Documents []string
}

// Config configures the engine.
type Config struct {
	// Model is the extraction model ID.
	Model  string
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = "gemini-3-flash-preview"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Engine runs extractions.
type Engine struct {
	gen     Generator
	fetcher Fetcher
	config  Config
}

// New creates an Engine. fetcher may be nil when URL sources are not used.
func New(gen Generator, fetcher Fetcher, cfg Config) *Engine {
	cfg.defaults()
	return &Engine{gen: gen, fetcher: fetcher, config: cfg}
}

// Analyze extracts structured fields from the input. The returned map
// holds whatever the model produced (possibly empty); warnings report
// degraded sources. An error means the model call itself failed. Empty
// input still goes to the model with the bare instruction; rejecting it
// is the caller's business.
func (e *Engine) Analyze(ctx context.Context, apiKey string, in Input) (map[string]any, []string, error) {
	parts := []genai.Part{genai.TextPart(instruction)}
	var warnings []string

	if url := strings.TrimSpace(in.URL); url != "" {
		parts = append(parts, e.urlPart(ctx, url, &warnings))
	}
	if text := strings.TrimSpace(in.RawText); text != "" {
		parts = append(parts, genai.TextPart("Source Texte : \n"+text))
	}
	for _, doc := range in.Documents {
		if doc = strings.TrimSpace(doc); doc != "" {
			parts = append(parts, genai.TextPart("Source Document : \n"+doc))
		}
	}
	parts = append(parts, in.Photos...)

	raw, err := e.gen.Generate(ctx, apiKey, e.config.Model, parts)
	if err != nil {
		return nil, warnings, fmt.Errorf("extraction: %w", err)
	}

	fields, err := genai.RecoverJSON(raw)
	if err != nil {
		return nil, warnings, fmt.Errorf("extraction: %w", err)
	}

	e.config.Logger.Info("extraction: done", "model", e.config.Model,
		"fields", len(fields), "warnings", len(warnings))
	return fields, warnings, nil
}

// urlPart fetches the page; on failure the bare URL still goes into the
// prompt so the model can reason from it.
func (e *Engine) urlPart(ctx context.Context, url string, warnings *[]string) genai.Part {
	if e.fetcher != nil {
		content, err := e.fetcher.Fetch(ctx, url)
		if err == nil {
			return genai.TextPart("Source HTML : \n" + content)
		}
		*warnings = append(*warnings, fmt.Sprintf("récupération de la page échouée (%v), utilisation de l'URL seule", err))
	}
	return genai.TextPart("Source URL : " + url)
}
