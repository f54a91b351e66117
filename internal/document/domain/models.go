package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	gitedomain "github.com/smallbiznis/rentaldocs/internal/gite/domain"
	"github.com/smallbiznis/rentaldocs/internal/pricing"
	"github.com/smallbiznis/rentaldocs/internal/stay"
	"gorm.io/datatypes"
)

// Document is a committed contract or invoice. Amounts are the snapshot of
// the pricing pass that ran at commit time.
type Document struct {
	ID     snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Kind   Kind         `gorm:"column:kind;not null;size:16;index" json:"kind"`
	Numero string       `gorm:"column:numero;not null;uniqueIndex;size:64" json:"numero"`
	GiteID snowflake.ID `gorm:"column:gite_id;not null;index" json:"gite_id"`

	LocataireNom     string `gorm:"column:locataire_nom;not null" json:"locataire_nom"`
	LocataireAdresse string `gorm:"column:locataire_adresse;not null;default:''" json:"locataire_adresse"`
	LocataireTel     string `gorm:"column:locataire_tel;not null" json:"locataire_tel"`
	NbAdultes        int    `gorm:"column:nb_adultes;not null" json:"nb_adultes"`
	NbEnfants        int    `gorm:"column:nb_enfants_2_17;not null;default:0" json:"nb_enfants_2_17"`

	DateDebut    stay.Date `gorm:"column:date_debut;not null;index" json:"date_debut"`
	HeureArrivee string    `gorm:"column:heure_arrivee;not null" json:"heure_arrivee"`
	DateFin      stay.Date `gorm:"column:date_fin;not null" json:"date_fin"`
	HeureDepart  string    `gorm:"column:heure_depart;not null" json:"heure_depart"`
	NbNuits      int       `gorm:"column:nb_nuits;not null" json:"nb_nuits"`

	PrixParNuit        decimal.Decimal `gorm:"column:prix_par_nuit;type:numeric(12,2);not null" json:"prix_par_nuit"`
	RemiseMontant      decimal.Decimal `gorm:"column:remise_montant;type:numeric(12,2);not null;default:0" json:"remise_montant"`
	TaxeSejourCalculee decimal.Decimal `gorm:"column:taxe_sejour_calculee;type:numeric(12,2);not null" json:"taxe_sejour_calculee"`

	Options datatypes.JSONType[pricing.OptionSelection] `gorm:"column:options" json:"options"`

	ArrhesMontant       decimal.Decimal `gorm:"column:arrhes_montant;type:numeric(12,2);not null" json:"arrhes_montant"`
	ArrhesDateLimite    stay.Date       `gorm:"column:arrhes_date_limite;not null" json:"arrhes_date_limite"`
	SoldeMontant        decimal.Decimal `gorm:"column:solde_montant;type:numeric(12,2);not null" json:"solde_montant"`
	CautionMontant      decimal.Decimal `gorm:"column:caution_montant;type:numeric(12,2);not null" json:"caution_montant"`
	ChequeMenageMontant decimal.Decimal `gorm:"column:cheque_menage_montant;type:numeric(12,2);not null" json:"cheque_menage_montant"`

	AfficherCautionPhrase      bool `gorm:"column:afficher_caution_phrase;not null;default:true" json:"afficher_caution_phrase"`
	AfficherChequeMenagePhrase bool `gorm:"column:afficher_cheque_menage_phrase;not null;default:true" json:"afficher_cheque_menage_phrase"`

	Clauses datatypes.JSONMap `gorm:"column:clauses" json:"clauses"`
	Notes   *string           `gorm:"column:notes" json:"notes"`

	StatutPaiementArrhes string `gorm:"column:statut_paiement_arrhes;size:16" json:"statut_paiement_arrhes,omitempty"`
	StatutPaiement       string `gorm:"column:statut_paiement;size:16" json:"statut_paiement,omitempty"`

	PdfPath string `gorm:"column:pdf_path;not null" json:"pdf_path"`

	DateCreation      time.Time `gorm:"column:date_creation;not null;index" json:"date_creation"`
	DateDerniereModif time.Time `gorm:"column:date_derniere_modif;not null" json:"date_derniere_modif"`

	Gite *gitedomain.Gite `gorm:"foreignKey:GiteID;constraint:OnDelete:CASCADE" json:"gite,omitempty"`

	// Totals is attached on commit responses only.
	Totals *pricing.Totals `gorm:"-" json:"totals,omitempty"`
}

func (Document) TableName() string { return "rental_documents" }

// Paid reports whether the invoice was settled.
func (d Document) Paid() bool { return d.StatutPaiement == PaymentPaid }

// Selection returns the stored option selection.
func (d Document) Selection() pricing.OptionSelection { return d.Options.Data() }
