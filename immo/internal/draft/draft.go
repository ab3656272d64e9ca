// Package draft generates the contact message sent to private sellers.
package draft

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/immotrack/genai"
)

// failureMessage is returned verbatim on any failure so the form always
// has something to show; the user rewrites it by hand.
const failureMessage = "Erreur génération message."

// promptTemplate asks the model to instantiate the fixed message with
// the listing's neighbourhood. The wording of the model body must not
// change; sellers answer better to a consistent, personal-sounding note.
const promptTemplate = `Génère un message pour un vendeur immobilier. Remplace [Quartier] par "%s".
Garde EXACTEMENT ce modèle :
Bonjour,
J'ai vu votre annonce pour l'appartement situé [Quartier] et je suis très intéressé.
Je m'appelle Robin, j'ai 24 ans, ingénieur. Dossier validé (250k€), sans condition suspensive.
Disponible rapidement pour visiter.
Cordialement,
Robin Sarriaud
0610980100
robin.sarriaud@gmail.com`

// Generator is the model call. *genai.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, apiKey, model string, parts []genai.Part) (string, error)
}

// Config configures the writer.
type Config struct {
	// Model is the drafting model ID. A cheaper model than extraction;
	// the task is fill-in-the-blank.
	Model  string
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Model == "" {
		c.Model = "gemini-1.5-flash"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Writer produces contact drafts.
type Writer struct {
	gen    Generator
	config Config
}

// New creates a Writer.
func New(gen Generator, cfg Config) *Writer {
	cfg.defaults()
	return &Writer{gen: gen, config: cfg}
}

// Message generates the contact draft for a neighbourhood. It never
// returns an error: any failure yields the fixed failure message.
func (w *Writer) Message(ctx context.Context, apiKey, quartier string) string {
	prompt := fmt.Sprintf(promptTemplate, quartier)
	out, err := w.gen.Generate(ctx, apiKey, w.config.Model, []genai.Part{genai.TextPart(prompt)})
	if err != nil {
		w.config.Logger.Warn("draft: generation failed", "error", err)
		return failureMessage
	}
	if strings.TrimSpace(out) == "" {
		return failureMessage
	}
	return out
}
