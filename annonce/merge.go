// CLAUDE:SUMMARY Partial merge of model output into a record, restricted to extraction-owned fields.
package annonce

import (
	"fmt"
	"strconv"
	"strings"
)

// extractionOwned is the allow-list of wire keys the model may write.
// Anything else coming back from extraction (url, status, commentaire,
// create_draft, message_draft, or unknown keys) is ignored.
var extractionOwned = map[string]bool{
	"date":         true,
	"ville":        true,
	"quartier":     true,
	"prix":         true,
	"surface":      true,
	"type_vendeur": true,
	"email":        true,
	"telephone":    true,
}

// ExtractionOwnedKeys returns the wire keys the model may overwrite.
func ExtractionOwnedKeys() []string {
	keys := make([]string, 0, len(extractionOwned))
	for k := range extractionOwned {
		keys = append(keys, k)
	}
	return keys
}

// Merge applies extracted fields onto a, touching only extraction-owned
// keys. Values are coerced (JSON numbers arrive as float64, some models
// quote them); a value that cannot be coerced is skipped and reported in
// the returned warnings. System-owned fields are never modified.
func Merge(a *Annonce, fields map[string]any) []string {
	var warnings []string

	for key, val := range fields {
		if !extractionOwned[key] {
			continue
		}
		switch key {
		case "date":
			if s, ok := asText(val); ok && s != "" {
				a.Date = s
			}
		case "ville":
			if s, ok := asText(val); ok {
				a.Ville = s
			}
		case "quartier":
			if s, ok := asText(val); ok {
				a.Quartier = s
			}
		case "email":
			if s, ok := asText(val); ok {
				a.Email = s
			}
		case "telephone":
			if s, ok := asText(val); ok {
				a.Telephone = s
			}
		case "prix":
			f, ok := asNumber(val)
			if !ok || f < 0 {
				warnings = append(warnings, fmt.Sprintf("prix ignoré: %v", val))
				continue
			}
			a.Prix = f
		case "surface":
			f, ok := asNumber(val)
			if !ok || f < 0 {
				warnings = append(warnings, fmt.Sprintf("surface ignorée: %v", val))
				continue
			}
			a.Surface = f
		case "type_vendeur":
			s, ok := asText(val)
			if !ok {
				continue
			}
			t := TypeVendeur(strings.TrimSpace(s))
			if !t.Valid() {
				warnings = append(warnings, fmt.Sprintf("type_vendeur inconnu: %q", s))
				continue
			}
			a.TypeVendeur = t
		}
	}

	return warnings
}

func asText(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	case nil:
		return "", true
	}
	return "", false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		// "300 000", "300000,50" and plain "300000" all show up in practice.
		s := strings.ReplaceAll(strings.TrimSpace(n), " ", "")
		s = strings.ReplaceAll(s, ",", ".")
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case nil:
		return 0, true
	}
	return 0, false
}
