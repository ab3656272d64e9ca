package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hazyhaar/immotrack/genai"
)

type fakeGen struct {
	parts []genai.Part
	model string
	out   string
	err   error
}

func (f *fakeGen) Generate(ctx context.Context, apiKey, model string, parts []genai.Part) (string, error) {
	f.model = model
	f.parts = parts
	return f.out, f.err
}

type fakeFetcher struct {
	content string
	err     error
	called  string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.called = url
	return f.content, f.err
}

func textOf(p genai.Part) string { return p.Text }

func TestAnalyzeTextOnly(t *testing.T) {
	gen := &fakeGen{out: `{"ville": "Lyon", "prix": 250000}`}
	eng := New(gen, nil, Config{})

	fields, warnings, err := eng.Analyze(context.Background(), "key", Input{RawText: "T2 à Lyon, 250 000 €"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if fields["ville"] != "Lyon" {
		t.Errorf("ville = %v, want Lyon", fields["ville"])
	}
	if gen.model != "gemini-3-flash-preview" {
		t.Errorf("model = %q", gen.model)
	}
	if len(gen.parts) != 2 {
		t.Fatalf("parts = %d, want instruction + text", len(gen.parts))
	}
	if !strings.Contains(textOf(gen.parts[0]), "expert immobilier") {
		t.Errorf("first part is not the instruction: %q", textOf(gen.parts[0]))
	}
	if want := "Source Texte : \nT2 à Lyon, 250 000 €"; textOf(gen.parts[1]) != want {
		t.Errorf("text part = %q, want %q", textOf(gen.parts[1]), want)
	}
}

func TestAnalyzeURLFetched(t *testing.T) {
	gen := &fakeGen{out: `{}`}
	fetcher := &fakeFetcher{content: "# Bel appartement"}
	eng := New(gen, fetcher, Config{})

	_, warnings, err := eng.Analyze(context.Background(), "key", Input{URL: "https://example.com/annonce"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
	if fetcher.called != "https://example.com/annonce" {
		t.Errorf("fetched %q", fetcher.called)
	}
	if want := "Source HTML : \n# Bel appartement"; textOf(gen.parts[1]) != want {
		t.Errorf("url part = %q, want %q", textOf(gen.parts[1]), want)
	}
}

func TestAnalyzeURLFallback(t *testing.T) {
	gen := &fakeGen{out: `{}`}
	fetcher := &fakeFetcher{err: errors.New("http 403")}
	eng := New(gen, fetcher, Config{})

	_, warnings, err := eng.Analyze(context.Background(), "key", Input{URL: "https://example.com/annonce"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want fetch warning", warnings)
	}
	if want := "Source URL : https://example.com/annonce"; textOf(gen.parts[1]) != want {
		t.Errorf("url part = %q, want %q", textOf(gen.parts[1]), want)
	}
}

func TestAnalyzePartOrder(t *testing.T) {
	gen := &fakeGen{out: `{}`}
	eng := New(gen, &fakeFetcher{content: "page"}, Config{})

	photo := genai.Part{MIME: "image/jpeg", Data: []byte{0xff, 0xd8}}
	_, _, err := eng.Analyze(context.Background(), "key", Input{
		RawText:   "texte",
		URL:       "https://example.com",
		Documents: []string{"contenu pdf"},
		Photos:    []genai.Part{photo},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	// instruction, URL content, text, document, then photos last.
	if len(gen.parts) != 5 {
		t.Fatalf("parts = %d, want 5", len(gen.parts))
	}
	if !strings.HasPrefix(textOf(gen.parts[1]), "Source HTML : ") {
		t.Errorf("part 1 = %q", textOf(gen.parts[1]))
	}
	if !strings.HasPrefix(textOf(gen.parts[2]), "Source Texte : ") {
		t.Errorf("part 2 = %q", textOf(gen.parts[2]))
	}
	if !strings.HasPrefix(textOf(gen.parts[3]), "Source Document : ") {
		t.Errorf("part 3 = %q", textOf(gen.parts[3]))
	}
	if gen.parts[4].MIME != "image/jpeg" {
		t.Errorf("part 4 = %+v, want photo", gen.parts[4])
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	gen := &fakeGen{out: "{}"}
	eng := New(gen, nil, Config{})
	fields, _, err := eng.Analyze(context.Background(), "key", Input{RawText: "   "})
	if err != nil {
		t.Fatalf("Analyze(empty): %v", err)
	}
	if len(fields) != 0 {
		t.Errorf("fields = %v, want empty", fields)
	}
	if len(gen.parts) != 1 || !strings.Contains(textOf(gen.parts[0]), "expert immobilier") {
		t.Errorf("parts = %d, want the bare instruction only", len(gen.parts))
	}
}

func TestAnalyzeFencedResponse(t *testing.T) {
	gen := &fakeGen{out: "```json\n{\"prix\": 180000}\n```"}
	eng := New(gen, nil, Config{})
	fields, _, err := eng.Analyze(context.Background(), "key", Input{RawText: "studio"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if fields["prix"] != float64(180000) {
		t.Errorf("prix = %v", fields["prix"])
	}
}

func TestAnalyzeGeneratorError(t *testing.T) {
	gen := &fakeGen{err: errors.New("quota exceeded")}
	eng := New(gen, nil, Config{})
	if _, _, err := eng.Analyze(context.Background(), "key", Input{RawText: "studio"}); err == nil {
		t.Fatal("Analyze = nil error, want generator error")
	}
}
