package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldocs/internal/document/domain"
	gitedomain "github.com/smallbiznis/rentaldocs/internal/gite/domain"
	"github.com/smallbiznis/rentaldocs/internal/money"
	"github.com/smallbiznis/rentaldocs/internal/pricing"
	"github.com/smallbiznis/rentaldocs/internal/render"
	"github.com/smallbiznis/rentaldocs/internal/stay"
)

const depositDueDays = 15

// draft is a payload resolved against its gîte and priced. Preview and
// commit both go through it, so both show the same Totals.
type draft struct {
	gite gitedomain.Gite

	// start and end are the dates as entered; params carries the effective ones.
	start, end *stay.Date
	params     pricing.StayParameters
	quote      pricing.Quote

	tenantName, tenantAddress, tenantPhone string
	arrival, departure                     string

	depositDue                 stay.Date
	security, cleaning         float64
	showSecurity, showCleaning bool

	clauses       map[string]any
	notes         *string
	paymentStatus string
	depositStatus string
}

// resolvePreview fills every missing field with its default. Only an unknown
// gîte, an unparsable date or an inverted range are refused.
func (s *Service) resolvePreview(ctx context.Context, p domain.Payload) (draft, error) {
	gite, err := s.loadGite(ctx, p.GiteID)
	if err != nil {
		return draft{}, err
	}

	verr := &domain.ValidationError{}
	start := parseDateField(verr, "date_debut", p.DateDebut)
	end := parseDateField(verr, "date_fin", p.DateFin)
	due := parseDateField(verr, "arrhes_date_limite", p.ArrhesDateLimite)
	if err := verr.Err(); err != nil {
		return draft{}, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return draft{}, domain.ErrInvalidDateRange
	}

	today := stay.FromTime(s.clock.Now())
	effStart, effEnd := effectiveRange(start, end, today)

	d := draft{
		gite:          gite,
		start:         start,
		end:           end,
		tenantName:    strings.TrimSpace(p.LocataireNom),
		tenantAddress: strings.TrimSpace(p.LocataireAdresse),
		tenantPhone:   strings.TrimSpace(p.LocataireTel),
		arrival:       orDefault(p.HeureArrivee, gite.ArrivalTime()),
		departure:     orDefault(p.HeureDepart, gite.DepartureTime()),
		security:      floatOr(p.CautionMontant, 0),
		cleaning:      floatOr(p.ChequeMenageMontant, 0),
		showSecurity:  boolOr(p.AfficherCautionPhrase, true),
		showCleaning:  boolOr(p.AfficherChequeMenagePhrase, true),
		clauses:       p.Clauses,
		notes:         p.Notes,
		paymentStatus: orDefault(p.StatutPaiement, domain.PaymentUnpaid),
		depositStatus: orDefault(p.StatutPaiementArrhes, domain.DepositNotReceived),
	}
	if due != nil {
		d.depositDue = *due
	} else {
		d.depositDue = today.AddDays(depositDueDays)
	}
	d.params = pricing.StayParameters{
		Start:       &effStart,
		End:         &effEnd,
		NightlyRate: floatOr(p.PrixParNuit, 0),
		Discount:    floatOr(p.RemiseMontant, 0),
		Adults:      intOr(p.NbAdultes, 1),
		Children:    intOr(p.NbEnfants, 0),
	}
	s.price(&d, p.Options, p.ArrhesMontant)
	return d, nil
}

// resolveCommit validates a create or update payload strictly, then prices it
// exactly like a preview.
func (s *Service) resolveCommit(ctx context.Context, p domain.Payload) (draft, error) {
	verr := &domain.ValidationError{}
	requireText(verr, "gite_id", p.GiteID)
	requireText(verr, "locataire_nom", p.LocataireNom)
	requireText(verr, "locataire_tel", p.LocataireTel)
	requireText(verr, "heure_arrivee", p.HeureArrivee)
	requireText(verr, "heure_depart", p.HeureDepart)

	switch {
	case p.NbAdultes == nil:
		verr.Required("nb_adultes")
	case *p.NbAdultes < 1:
		verr.Invalid("nb_adultes", "min", "Au moins un adulte")
	}
	switch {
	case p.NbEnfants == nil:
		verr.Required("nb_enfants_2_17")
	case *p.NbEnfants < 0:
		verr.Invalid("nb_enfants_2_17", "min", "Valeur négative")
	}
	requireAmount(verr, "prix_par_nuit", p.PrixParNuit, true)
	requireAmount(verr, "remise_montant", p.RemiseMontant, false)
	requireAmount(verr, "arrhes_montant", p.ArrhesMontant, false)
	requireAmount(verr, "caution_montant", p.CautionMontant, true)
	requireAmount(verr, "cheque_menage_montant", p.ChequeMenageMontant, true)

	start := requireDate(verr, "date_debut", p.DateDebut)
	end := requireDate(verr, "date_fin", p.DateFin)
	requireDate(verr, "arrhes_date_limite", p.ArrhesDateLimite)
	if start != nil && end != nil && !end.After(*start) {
		verr.Invalid("date_fin", domain.ErrInvalidDateRange.Error(), domain.DateRangeMessage)
	}
	if p.StatutPaiement != "" && !validPaymentStatus(p.StatutPaiement) {
		verr.Invalid("statut_paiement", domain.ErrInvalidPaymentStatus.Error(), "Statut de paiement inconnu")
	}
	if p.StatutPaiementArrhes != "" && !validDepositStatus(p.StatutPaiementArrhes) {
		verr.Invalid("statut_paiement_arrhes", domain.ErrInvalidDepositStatus.Error(), "Statut des arrhes inconnu")
	}
	if err := verr.Err(); err != nil {
		return draft{}, err
	}

	// From here on the payload is complete, so the preview defaults never apply.
	return s.resolvePreview(ctx, p)
}

// price runs the shared deposit and pricing pass.
func (s *Service) price(d *draft, options pricing.OptionSelection, explicitDeposit *float64) {
	d.quote = s.deposits.Quote(d.params, options, d.gite.TariffSheet(), explicitDeposit)
}

// source assembles the rendering input of a draft.
func (s *Service) source(kind domain.Kind, number string, d draft) render.Source {
	return render.Source{
		Invoice: kind.Invoice(),
		Number:  number,

		TenantName:    d.tenantName,
		TenantAddress: d.tenantAddress,
		TenantPhone:   d.tenantPhone,
		Adults:        d.params.Adults,
		Children:      d.params.Children,

		Start:         d.start,
		End:           d.end,
		ArrivalTime:   d.arrival,
		DepartureTime: d.departure,

		NightlyRate:    d.params.NightlyRate,
		Discount:       d.params.Discount,
		Deposit:        d.quote.Deposit,
		DepositDueDate: d.depositDue,

		SecurityDeposit:           d.security,
		CleaningDeposit:           d.cleaning,
		ShowSecurityDepositPhrase: d.showSecurity,
		ShowCleaningDepositPhrase: d.showCleaning,

		Options: d.quote.Options,
		Clauses: d.clauses,
		Notes:   stringOr(d.notes),
		Paid:    d.paymentStatus == domain.PaymentPaid,

		Gite:     giteView(d.gite),
		Tariff:   d.gite.TariffSheet(),
		Totals:   d.quote.Totals,
		SignedOn: stay.FromTime(s.clock.Now()),
	}
}

// draftFromDocument rebuilds the draft of a stored document. The stored
// deposit is kept as the explicit deposit.
func (s *Service) draftFromDocument(doc domain.Document) (draft, error) {
	if doc.Gite == nil {
		return draft{}, domain.ErrGiteNotFound
	}
	start, end := doc.DateDebut, doc.DateFin
	d := draft{
		gite:          *doc.Gite,
		start:         &start,
		end:           &end,
		tenantName:    doc.LocataireNom,
		tenantAddress: doc.LocataireAdresse,
		tenantPhone:   doc.LocataireTel,
		arrival:       doc.HeureArrivee,
		departure:     doc.HeureDepart,
		depositDue:    doc.ArrhesDateLimite,
		security:      money.ToFloat(doc.CautionMontant),
		cleaning:      money.ToFloat(doc.ChequeMenageMontant),
		showSecurity:  doc.AfficherCautionPhrase,
		showCleaning:  doc.AfficherChequeMenagePhrase,
		clauses:       map[string]any(doc.Clauses),
		notes:         doc.Notes,
		paymentStatus: doc.StatutPaiement,
		depositStatus: doc.StatutPaiementArrhes,
		params: pricing.StayParameters{
			Start:       &start,
			End:         &end,
			NightlyRate: money.ToFloat(doc.PrixParNuit),
			Discount:    money.ToFloat(doc.RemiseMontant),
			Adults:      doc.NbAdultes,
			Children:    doc.NbEnfants,
		},
	}
	deposit := money.ToFloat(doc.ArrhesMontant)
	s.price(&d, doc.Selection(), &deposit)
	return d, nil
}

func (s *Service) loadGite(ctx context.Context, raw string) (gitedomain.Gite, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return gitedomain.Gite{}, domain.ErrInvalidGite
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return gitedomain.Gite{}, domain.ErrGiteNotFound
	}
	gite, err := s.gites.FindByID(ctx, s.db, id)
	if err != nil {
		return gitedomain.Gite{}, fmt.Errorf("load gite: %w", err)
	}
	if gite == nil {
		return gitedomain.Gite{}, domain.ErrGiteNotFound
	}
	return *gite, nil
}

// effectiveRange fills a missing bound one day away from the other, or
// prices today to tomorrow when both are missing.
func effectiveRange(start, end *stay.Date, today stay.Date) (stay.Date, stay.Date) {
	switch {
	case start != nil && end != nil:
		return *start, *end
	case start != nil:
		return *start, start.AddDays(1)
	case end != nil:
		return end.AddDays(-1), *end
	default:
		return today, today.AddDays(1)
	}
}

func giteView(g gitedomain.Gite) render.Gite {
	return render.Gite{
		Name:            g.Nom,
		AddressLine1:    g.AdresseLigne1,
		AddressLine2:    g.AdresseLigne2,
		OwnersNames:     g.ProprietairesNoms,
		OwnersAddress:   g.ProprietairesAdresse,
		Website:         g.SiteWeb,
		Email:           g.Email,
		Phones:          []string(g.Telephones),
		Characteristics: g.Caracteristiques,
		IBAN:            g.IBAN,
		BIC:             g.BIC,
		AccountHolder:   g.Titulaire,
		Capacity:        g.CapaciteMax,
	}
}

func parseDateField(verr *domain.ValidationError, field, raw string) *stay.Date {
	d, err := stay.ParseOptional(raw)
	if err != nil {
		verr.Invalid(field, domain.ErrInvalidDate.Error(), "Date invalide: "+field)
		return nil
	}
	return d
}

func requireDate(verr *domain.ValidationError, field, raw string) *stay.Date {
	if strings.TrimSpace(raw) == "" {
		verr.Required(field)
		return nil
	}
	return parseDateField(verr, field, raw)
}

func requireText(verr *domain.ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		verr.Required(field)
	}
}

func requireAmount(verr *domain.ValidationError, field string, value *float64, required bool) {
	switch {
	case value == nil:
		if required {
			verr.Required(field)
		}
	case math.IsNaN(*value) || math.IsInf(*value, 0) || *value < 0:
		verr.Invalid(field, "gte", "Montant invalide")
	}
}

func validPaymentStatus(status string) bool {
	return status == domain.PaymentUnpaid || status == domain.PaymentPaid
}

func validDepositStatus(status string) bool {
	return status == domain.DepositNotReceived || status == domain.DepositReceived
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func floatOr(value *float64, fallback float64) float64 {
	if value == nil {
		return fallback
	}
	return *value
}

func intOr(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func stringOr(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
