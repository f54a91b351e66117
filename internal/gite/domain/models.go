package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentaldocs/internal/money"
	"github.com/smallbiznis/rentaldocs/internal/pricing"
	"gorm.io/datatypes"
)

const (
	DefaultArrivalTime   = "17:00"
	DefaultDepartureTime = "12:00"
)

// Gite is a rental property and the source of every TariffSheet.
type Gite struct {
	ID                   snowflake.ID                `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Nom                  string                      `gorm:"column:nom;not null" json:"nom"`
	PrefixeContrat       string                      `gorm:"column:prefixe_contrat;not null;uniqueIndex;size:32" json:"prefixe_contrat"`
	AdresseLigne1        string                      `gorm:"column:adresse_ligne1;not null" json:"adresse_ligne1"`
	AdresseLigne2        string                      `gorm:"column:adresse_ligne2" json:"adresse_ligne2"`
	CapaciteMax          int                         `gorm:"column:capacite_max;not null" json:"capacite_max"`
	ProprietairesNoms    string                      `gorm:"column:proprietaires_noms;not null" json:"proprietaires_noms"`
	ProprietairesAdresse string                      `gorm:"column:proprietaires_adresse;not null" json:"proprietaires_adresse"`
	SiteWeb              string                      `gorm:"column:site_web" json:"site_web"`
	Email                string                      `gorm:"column:email" json:"email"`
	Caracteristiques     string                      `gorm:"column:caracteristiques" json:"caracteristiques"`
	Telephones           datatypes.JSONSlice[string] `gorm:"column:telephones" json:"telephones"`

	TaxeSejourParPersonneParNuit decimal.Decimal `gorm:"column:taxe_sejour_par_personne_par_nuit;type:numeric(10,4);not null;default:0" json:"taxe_sejour_par_personne_par_nuit"`

	IBAN      string `gorm:"column:iban;not null" json:"iban"`
	BIC       string `gorm:"column:bic" json:"bic"`
	Titulaire string `gorm:"column:titulaire;not null" json:"titulaire"`

	RegleAnimauxAcceptes     bool `gorm:"column:regle_animaux_acceptes;not null;default:false" json:"regle_animaux_acceptes"`
	RegleBoisPremiereFlambee bool `gorm:"column:regle_bois_premiere_flambee;not null;default:false" json:"regle_bois_premiere_flambee"`
	RegleTiersPersonnesInfo  bool `gorm:"column:regle_tiers_personnes_info;not null;default:false" json:"regle_tiers_personnes_info"`

	OptionsDrapsParLit              decimal.Decimal `gorm:"column:options_draps_par_lit;type:numeric(12,2);not null;default:0" json:"options_draps_par_lit"`
	OptionsLingeToiletteParPersonne decimal.Decimal `gorm:"column:options_linge_toilette_par_personne;type:numeric(12,2);not null;default:0" json:"options_linge_toilette_par_personne"`
	OptionsMenageForfait            decimal.Decimal `gorm:"column:options_menage_forfait;type:numeric(12,2);not null;default:0" json:"options_menage_forfait"`
	OptionsDepartTardifForfait      decimal.Decimal `gorm:"column:options_depart_tardif_forfait;type:numeric(12,2);not null;default:0" json:"options_depart_tardif_forfait"`
	OptionsChiensForfait            decimal.Decimal `gorm:"column:options_chiens_forfait;type:numeric(12,2);not null;default:0" json:"options_chiens_forfait"`

	CautionMontantDefaut      decimal.Decimal     `gorm:"column:caution_montant_defaut;type:numeric(12,2);not null;default:0" json:"caution_montant_defaut"`
	ChequeMenageMontantDefaut decimal.Decimal     `gorm:"column:cheque_menage_montant_defaut;type:numeric(12,2);not null;default:0" json:"cheque_menage_montant_defaut"`
	ArrhesTauxDefaut          decimal.NullDecimal `gorm:"column:arrhes_taux_defaut;type:numeric(10,4)" json:"arrhes_taux_defaut"`

	PrixNuitListe      datatypes.JSONSlice[float64] `gorm:"column:prix_nuit_liste" json:"prix_nuit_liste"`
	HeureArriveeDefaut string                       `gorm:"column:heure_arrivee_defaut;not null;default:'17:00'" json:"heure_arrivee_defaut"`
	HeureDepartDefaut  string                       `gorm:"column:heure_depart_defaut;not null;default:'12:00'" json:"heure_depart_defaut"`

	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (Gite) TableName() string { return "gites" }

// ListItem is a gîte with the number of documents issued for it.
type ListItem struct {
	Gite
	ContratsCount int64 `gorm:"column:contrats_count" json:"contrats_count"`
	FacturesCount int64 `gorm:"column:factures_count" json:"factures_count"`
}

// TariffSheet flattens the stored tariffs for the pricing engine.
func (g Gite) TariffSheet() pricing.TariffSheet {
	sheet := pricing.TariffSheet{
		NightlyRates:     pricing.NormalizeRates(g.PrixNuitListe),
		TouristTaxRate:   money.ToFloat(g.TaxeSejourParPersonneParNuit),
		BeddingPerBed:    money.ToFloat(g.OptionsDrapsParLit),
		TowelsPerPerson:  money.ToFloat(g.OptionsLingeToiletteParPersonne),
		CleaningFlat:     money.ToFloat(g.OptionsMenageForfait),
		LateCheckoutFlat: money.ToFloat(g.OptionsDepartTardifForfait),
		PetsPerNight:     money.ToFloat(g.OptionsChiensForfait),
		SecurityDeposit:  money.ToFloat(g.CautionMontantDefaut),
		CleaningDeposit:  money.ToFloat(g.ChequeMenageMontantDefaut),
		ArrivalTime:      g.ArrivalTime(),
		DepartureTime:    g.DepartureTime(),
		Capacity:         g.CapaciteMax,
		Rules: pricing.HouseRules{
			PetsAllowed:      g.RegleAnimauxAcceptes,
			FirstFireWood:    g.RegleBoisPremiereFlambee,
			ThirdPartyNotice: g.RegleTiersPersonnesInfo,
		},
	}
	if g.ArrhesTauxDefaut.Valid {
		rate := g.ArrhesTauxDefaut.Decimal.InexactFloat64()
		sheet.DepositRate = &rate
	}
	return sheet
}

func (g Gite) ArrivalTime() string {
	if t := strings.TrimSpace(g.HeureArriveeDefaut); t != "" {
		return t
	}
	return DefaultArrivalTime
}

func (g Gite) DepartureTime() string {
	if t := strings.TrimSpace(g.HeureDepartDefaut); t != "" {
		return t
	}
	return DefaultDepartureTime
}
