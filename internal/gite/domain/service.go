package domain

import (
	"context"
	"errors"
)

// GiteInput is the full editable shape of a gîte, as posted by the UI.
type GiteInput struct {
	Nom                             string    `json:"nom" binding:"required"`
	PrefixeContrat                  string    `json:"prefixe_contrat" binding:"required,min=2,max=32"`
	AdresseLigne1                   string    `json:"adresse_ligne1" binding:"required"`
	AdresseLigne2                   string    `json:"adresse_ligne2"`
	CapaciteMax                     int       `json:"capacite_max" binding:"required,min=1"`
	ProprietairesNoms               string    `json:"proprietaires_noms" binding:"required"`
	ProprietairesAdresse            string    `json:"proprietaires_adresse" binding:"required"`
	SiteWeb                         string    `json:"site_web"`
	Email                           string    `json:"email" binding:"omitempty,email"`
	Caracteristiques                string    `json:"caracteristiques"`
	Telephones                      []string  `json:"telephones"`
	TaxeSejourParPersonneParNuit    float64   `json:"taxe_sejour_par_personne_par_nuit" binding:"gte=0"`
	IBAN                            string    `json:"iban" binding:"required"`
	BIC                             string    `json:"bic"`
	Titulaire                       string    `json:"titulaire" binding:"required"`
	RegleAnimauxAcceptes            bool      `json:"regle_animaux_acceptes"`
	RegleBoisPremiereFlambee        bool      `json:"regle_bois_premiere_flambee"`
	RegleTiersPersonnesInfo         bool      `json:"regle_tiers_personnes_info"`
	OptionsDrapsParLit              float64   `json:"options_draps_par_lit" binding:"gte=0"`
	OptionsLingeToiletteParPersonne float64   `json:"options_linge_toilette_par_personne" binding:"gte=0"`
	OptionsMenageForfait            float64   `json:"options_menage_forfait" binding:"gte=0"`
	OptionsDepartTardifForfait      float64   `json:"options_depart_tardif_forfait" binding:"gte=0"`
	OptionsChiensForfait            float64   `json:"options_chiens_forfait" binding:"gte=0"`
	CautionMontantDefaut            float64   `json:"caution_montant_defaut" binding:"gte=0"`
	ChequeMenageMontantDefaut       float64   `json:"cheque_menage_montant_defaut" binding:"gte=0"`
	ArrhesTauxDefaut                *float64  `json:"arrhes_taux_defaut" binding:"omitempty,gte=0,lte=1"`
	PrixNuitListe                   []float64 `json:"prix_nuit_liste" binding:"dive,gte=0"`
	HeureArriveeDefaut              string    `json:"heure_arrivee_defaut"`
	HeureDepartDefaut               string    `json:"heure_depart_defaut"`
}

type Service interface {
	List(ctx context.Context) ([]ListItem, error)
	Get(ctx context.Context, id string) (Gite, error)
	Create(ctx context.Context, input GiteInput) (Gite, error)
	Update(ctx context.Context, id string, input GiteInput) (Gite, error)
	Duplicate(ctx context.Context, id string) (Gite, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidPrefix      = errors.New("invalid_prefix")
	ErrInvalidAddress     = errors.New("invalid_address")
	ErrInvalidCapacity    = errors.New("invalid_capacity")
	ErrInvalidOwners      = errors.New("invalid_owners")
	ErrInvalidBanking     = errors.New("invalid_banking")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidDepositRate = errors.New("invalid_deposit_rate")
	ErrDuplicatePrefix    = errors.New("duplicate_prefix")
	ErrNotFound           = errors.New("gite_not_found")
)
