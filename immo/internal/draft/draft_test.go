package draft

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hazyhaar/immotrack/genai"
)

type fakeGen struct {
	prompt string
	model  string
	out    string
	err    error
}

func (f *fakeGen) Generate(ctx context.Context, apiKey, model string, parts []genai.Part) (string, error) {
	f.model = model
	if len(parts) > 0 {
		f.prompt = parts[0].Text
	}
	return f.out, f.err
}

func TestMessage(t *testing.T) {
	gen := &fakeGen{out: "Bonjour,\nJ'ai vu votre annonce pour l'appartement situé Croix-Rousse..."}
	w := New(gen, Config{})

	got := w.Message(context.Background(), "key", "Croix-Rousse")
	if got != gen.out {
		t.Errorf("Message = %q, want model output", got)
	}
	if gen.model != "gemini-1.5-flash" {
		t.Errorf("model = %q", gen.model)
	}
	if !strings.Contains(gen.prompt, `Remplace [Quartier] par "Croix-Rousse"`) {
		t.Errorf("prompt missing quartier substitution: %q", gen.prompt)
	}
	for _, want := range []string{"Robin Sarriaud", "0610980100", "robin.sarriaud@gmail.com", "250k€"} {
		if !strings.Contains(gen.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestMessageFailure(t *testing.T) {
	w := New(&fakeGen{err: errors.New("timeout")}, Config{})
	if got := w.Message(context.Background(), "key", "Montmartre"); got != "Erreur génération message." {
		t.Errorf("Message on failure = %q", got)
	}
}

func TestMessageEmptyOutput(t *testing.T) {
	w := New(&fakeGen{out: "  \n"}, Config{})
	if got := w.Message(context.Background(), "key", "Montmartre"); got != "Erreur génération message." {
		t.Errorf("Message on empty = %q", got)
	}
}
