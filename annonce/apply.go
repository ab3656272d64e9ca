package annonce

import (
	"fmt"
	"strings"
)

// Apply performs a user-driven partial update: every wire key may be set,
// including system-owned ones. Unlike Merge it is strict — an unknown key,
// an invalid enum value or an uncoercible number is an error, because the
// values come from a form or a tool call, not from a model.
func Apply(a *Annonce, fields map[string]any) error {
	for key, val := range fields {
		if err := applyOne(a, key, val); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(a *Annonce, key string, val any) error {
	switch key {
	case "date", "ville", "quartier", "email", "telephone", "url", "commentaire", "message_draft":
		s, ok := asText(val)
		if !ok {
			return fmt.Errorf("annonce: %s: expected string, got %T", key, val)
		}
		switch key {
		case "date":
			a.Date = s
		case "ville":
			a.Ville = s
		case "quartier":
			a.Quartier = s
		case "email":
			a.Email = s
		case "telephone":
			a.Telephone = s
		case "url":
			a.URL = s
		case "commentaire":
			a.Commentaire = s
		case "message_draft":
			a.MessageDraft = s
		}
	case "prix", "surface":
		f, ok := asNumber(val)
		if !ok || f < 0 {
			return fmt.Errorf("annonce: %s: invalid number %v", key, val)
		}
		if key == "prix" {
			a.Prix = f
		} else {
			a.Surface = f
		}
	case "type_vendeur":
		s, ok := asText(val)
		if !ok {
			return fmt.Errorf("annonce: type_vendeur: expected string, got %T", val)
		}
		t := TypeVendeur(strings.TrimSpace(s))
		if !t.Valid() {
			return fmt.Errorf("annonce: type_vendeur: unknown value %q", s)
		}
		a.TypeVendeur = t
	case "status":
		s, ok := asText(val)
		if !ok {
			return fmt.Errorf("annonce: status: expected string, got %T", val)
		}
		st := Status(strings.TrimSpace(s))
		if !st.Valid() {
			return fmt.Errorf("annonce: status: unknown value %q", s)
		}
		a.Status = st
	case "create_draft":
		b, ok := val.(bool)
		if !ok {
			return fmt.Errorf("annonce: create_draft: expected bool, got %T", val)
		}
		a.CreateDraft = b
	default:
		return fmt.Errorf("annonce: unknown field %q", key)
	}
	return nil
}
