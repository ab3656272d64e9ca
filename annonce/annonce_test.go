package annonce

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	a := New()
	if a.Date != time.Now().Format("2006-01-02") {
		t.Errorf("expected today's date, got %q", a.Date)
	}
	if a.TypeVendeur != VendeurAgence {
		t.Errorf("expected default seller Agence, got %q", a.TypeVendeur)
	}
	if a.Status != StatusAContacter {
		t.Errorf("expected default status 'A contacter', got %q", a.Status)
	}
	if a.Prix != 0 || a.Surface != 0 {
		t.Errorf("expected zero prix/surface, got %v/%v", a.Prix, a.Surface)
	}
	if a.CreateDraft {
		t.Error("expected create_draft false by default")
	}
}

func TestWireKeys(t *testing.T) {
	// The spreadsheet integration reads these exact keys.
	data, err := json.Marshal(New())
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{
		"date", "ville", "quartier", "prix", "surface", "type_vendeur",
		"email", "telephone", "url", "status", "commentaire",
		"create_draft", "message_draft",
	} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing wire key %q", key)
		}
	}
	if len(m) != 13 {
		t.Errorf("expected 13 wire keys, got %d: %v", len(m), m)
	}
}

func TestMergeExtractionOwned(t *testing.T) {
	a := New()
	warnings := Merge(a, map[string]any{
		"ville":        "Paris",
		"quartier":     "11e",
		"prix":         float64(300000),
		"surface":      float64(50),
		"type_vendeur": "Particulier",
		"email":        "x@y.fr",
		"telephone":    "0610980100",
	})
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if a.Ville != "Paris" || a.Quartier != "11e" {
		t.Errorf("location not merged: %+v", a)
	}
	if a.Prix != 300000 || a.Surface != 50 {
		t.Errorf("numbers not merged: %+v", a)
	}
	if a.TypeVendeur != VendeurParticulier {
		t.Errorf("seller not merged: %q", a.TypeVendeur)
	}
}

func TestMergeNeverClobbersSystemFields(t *testing.T) {
	a := New()
	a.URL = "https://example.com/annonce/1"
	a.Status = StatusContacte
	a.Commentaire = "vu sur place"
	a.CreateDraft = true
	a.MessageDraft = "Bonjour"

	Merge(a, map[string]any{
		"url":           "https://evil.example/other",
		"status":        "Non",
		"commentaire":   "écrasé",
		"create_draft":  false,
		"message_draft": "autre",
		"ville":         "Lyon",
	})

	if a.URL != "https://example.com/annonce/1" {
		t.Errorf("url clobbered: %q", a.URL)
	}
	if a.Status != StatusContacte {
		t.Errorf("status clobbered: %q", a.Status)
	}
	if a.Commentaire != "vu sur place" {
		t.Errorf("commentaire clobbered: %q", a.Commentaire)
	}
	if !a.CreateDraft {
		t.Error("create_draft clobbered")
	}
	if a.MessageDraft != "Bonjour" {
		t.Errorf("message_draft clobbered: %q", a.MessageDraft)
	}
	if a.Ville != "Lyon" {
		t.Errorf("extraction-owned field not merged: %q", a.Ville)
	}
}

func TestMergeCoercion(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		check  func(*Annonce) bool
		warned bool
	}{
		{"quoted price", map[string]any{"prix": "300000"}, func(a *Annonce) bool { return a.Prix == 300000 }, false},
		{"french decimal", map[string]any{"prix": "300000,50"}, func(a *Annonce) bool { return a.Prix == 300000.50 }, false},
		{"spaced number", map[string]any{"surface": "1 050"}, func(a *Annonce) bool { return a.Surface == 1050 }, false},
		{"negative price", map[string]any{"prix": float64(-5)}, func(a *Annonce) bool { return a.Prix == 0 }, true},
		{"garbage price", map[string]any{"prix": "trois cent"}, func(a *Annonce) bool { return a.Prix == 0 }, true},
		{"unknown seller", map[string]any{"type_vendeur": "Notaire"}, func(a *Annonce) bool { return a.TypeVendeur == VendeurAgence }, true},
		{"null text", map[string]any{"ville": nil}, func(a *Annonce) bool { return a.Ville == "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New()
			warnings := Merge(a, tt.fields)
			if !tt.check(a) {
				t.Errorf("unexpected record state: %+v", a)
			}
			if tt.warned != (len(warnings) > 0) {
				t.Errorf("warned=%v, want %v (warnings: %v)", len(warnings) > 0, tt.warned, warnings)
			}
		})
	}
}

func TestExtractionOwnedKeys(t *testing.T) {
	keys := ExtractionOwnedKeys()
	if len(keys) != 8 {
		t.Fatalf("expected 8 extraction-owned keys, got %d: %v", len(keys), keys)
	}
}
