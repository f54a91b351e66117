package domain

import (
	"time"

	"github.com/smallbiznis/rentaldocs/internal/pricing"
	"github.com/smallbiznis/rentaldocs/pkg/db/pagination"
)

// Payload is the document form as posted by the UI. Preview accepts it
// partially filled; create and update require the mandatory fields.
type Payload struct {
	GiteID           string `json:"gite_id"`
	LocataireNom     string `json:"locataire_nom"`
	LocataireAdresse string `json:"locataire_adresse"`
	LocataireTel     string `json:"locataire_tel"`

	NbAdultes *int `json:"nb_adultes" binding:"omitempty,min=1"`
	NbEnfants *int `json:"nb_enfants_2_17" binding:"omitempty,min=0"`

	DateDebut    string `json:"date_debut"`
	HeureArrivee string `json:"heure_arrivee"`
	DateFin      string `json:"date_fin"`
	HeureDepart  string `json:"heure_depart"`

	PrixParNuit   *float64                `json:"prix_par_nuit" binding:"omitempty,gte=0"`
	RemiseMontant *float64                `json:"remise_montant" binding:"omitempty,gte=0"`
	Options       pricing.OptionSelection `json:"options"`

	ArrhesMontant    *float64 `json:"arrhes_montant" binding:"omitempty,gte=0"`
	ArrhesDateLimite string   `json:"arrhes_date_limite"`

	CautionMontant             *float64 `json:"caution_montant" binding:"omitempty,gte=0"`
	ChequeMenageMontant        *float64 `json:"cheque_menage_montant" binding:"omitempty,gte=0"`
	AfficherCautionPhrase      *bool    `json:"afficher_caution_phrase"`
	AfficherChequeMenagePhrase *bool    `json:"afficher_cheque_menage_phrase"`

	Clauses map[string]any `json:"clauses"`
	Notes   *string        `json:"notes"`

	StatutPaiement       string `json:"statut_paiement" binding:"omitempty,oneof=non_reglee reglee"`
	StatutPaiementArrhes string `json:"statut_paiement_arrhes" binding:"omitempty,oneof=non_recu recu"`
}

// ListFilter narrows a document list. From and To bound the start date.
type ListFilter struct {
	Query  string
	GiteID string
	Numero string
	From   string
	To     string
	pagination.Pagination
}

// Preview is a rendered draft with its overflow flags.
type Preview struct {
	Body           []byte
	ContentType    string
	OverflowBefore bool
	OverflowAfter  bool
	CompactApplied bool
}

// Artifact is a committed document file ready to be served.
type Artifact struct {
	Path     string
	Filename string
	ModTime  time.Time
}
