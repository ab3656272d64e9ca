// CLAUDE:SUMMARY Listing record schema: wire keys for the spreadsheet webhook, enums, defaults.
// Package annonce defines the real-estate listing record and its merge
// policy.
//
// The JSON keys of Annonce are a wire contract with the spreadsheet webhook
// (a Google Apps Script reads them by name); they must not be renamed
// without coordinating the receiving endpoint.
package annonce

import "time"

// TypeVendeur classifies who posted the listing.
type TypeVendeur string

const (
	VendeurAgence      TypeVendeur = "Agence"
	VendeurParticulier TypeVendeur = "Particulier"
	VendeurAutre       TypeVendeur = "Autre"
)

// Valid reports whether t is one of the known seller types.
func (t TypeVendeur) Valid() bool {
	switch t {
	case VendeurAgence, VendeurParticulier, VendeurAutre:
		return true
	}
	return false
}

// Status tracks the contact workflow for a listing.
type Status string

const (
	StatusNon        Status = "Non"
	StatusAContacter Status = "A contacter"
	StatusContacte   Status = "Contacté"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNon, StatusAContacter, StatusContacte:
		return true
	}
	return false
}

// Annonce is the single record manipulated by the review flow.
//
// The first eight fields are extraction-owned: the model may overwrite them
// through Merge. The remaining fields are system-owned and only ever set by
// the user or the controller.
type Annonce struct {
	Date        string      `json:"date"`
	Ville       string      `json:"ville"`
	Quartier    string      `json:"quartier"`
	Prix        float64     `json:"prix"`
	Surface     float64     `json:"surface"`
	TypeVendeur TypeVendeur `json:"type_vendeur"`
	Email       string      `json:"email"`
	Telephone   string      `json:"telephone"`

	URL          string `json:"url"`
	Status       Status `json:"status"`
	Commentaire  string `json:"commentaire"`
	CreateDraft  bool   `json:"create_draft"`
	MessageDraft string `json:"message_draft"`
}

// New returns a record with defaults: today's date, Agence seller,
// "A contacter" status, everything else empty.
func New() *Annonce {
	return &Annonce{
		Date:        time.Now().Format("2006-01-02"),
		TypeVendeur: VendeurAgence,
		Status:      StatusAContacter,
	}
}
