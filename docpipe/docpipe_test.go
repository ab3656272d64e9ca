package docpipe

import (
	"context"
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	pipe := New(Config{})

	tests := []struct {
		name   string
		format Format
	}{
		{"dossier.pdf", FormatPDF},
		{"annonce.txt", FormatTXT},
		{"annonce.text", FormatTXT},
		{"page.html", FormatHTML},
		{"page.htm", FormatHTML},
	}

	for _, tt := range tests {
		f, err := pipe.Detect(tt.name)
		if err != nil {
			t.Errorf("Detect(%q): %v", tt.name, err)
			continue
		}
		if f != tt.format {
			t.Errorf("Detect(%q) = %q, want %q", tt.name, f, tt.format)
		}
	}

	// Unsupported format.
	if _, err := pipe.Detect("photo.docx"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestExtractText(t *testing.T) {
	pipe := New(Config{})
	doc, err := pipe.Extract(context.Background(), "annonce.txt",
		[]byte("Appartement 50m2 Paris 11e\n\n  300000e,  particulier  "))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatTXT {
		t.Fatalf("expected txt format, got %s", doc.Format)
	}
	if !strings.Contains(doc.RawText, "Appartement 50m2") {
		t.Fatalf("expected normalized text, got %q", doc.RawText)
	}
	if strings.Contains(doc.RawText, "  ") {
		t.Fatalf("whitespace not normalized: %q", doc.RawText)
	}
}

func TestExtractHTML(t *testing.T) {
	content := `<html><head><title>Vente appartement Paris 11e</title>
<script>tracking()</script></head>
<body>
<nav>menu</nav>
<h1>T3 lumineux</h1>
<p>50 m2, 300 000 euros, quartier Oberkampf.</p>
<p style="display:none">prix caché</p>
<footer>mentions légales</footer>
</body></html>`

	pipe := New(Config{})
	doc, err := pipe.Extract(context.Background(), "annonce.html", []byte(content))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Vente appartement Paris 11e" {
		t.Fatalf("unexpected title %q", doc.Title)
	}
	if !strings.Contains(doc.RawText, "Oberkampf") {
		t.Fatalf("paragraph lost: %q", doc.RawText)
	}
	for _, boiler := range []string{"menu", "tracking", "mentions légales", "prix caché"} {
		if strings.Contains(doc.RawText, boiler) {
			t.Errorf("boilerplate %q leaked into %q", boiler, doc.RawText)
		}
	}

	headings := 0
	for _, s := range doc.Sections {
		if s.Type == "heading" {
			headings++
		}
	}
	if headings != 1 {
		t.Errorf("expected 1 heading section, got %d", headings)
	}
}

func TestExtractTooLarge(t *testing.T) {
	pipe := New(Config{MaxFileSize: 10})
	if _, err := pipe.Extract(context.Background(), "a.txt", []byte("more than ten bytes")); err == nil {
		t.Error("expected error for oversized upload")
	}
}

func TestExtractBadPDF(t *testing.T) {
	pipe := New(Config{})
	if _, err := pipe.Extract(context.Background(), "broken.pdf", []byte("not a pdf")); err == nil {
		t.Error("expected error for invalid PDF data")
	}
}
