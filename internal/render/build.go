package render

import (
	"fmt"
	"strings"

	"github.com/smallbiznis/rentaldocs/internal/money"
	"github.com/smallbiznis/rentaldocs/internal/pricing"
	"github.com/smallbiznis/rentaldocs/internal/stay"
)

const (
	noNotes   = "Aucune mention particulière."
	noClauses = "Aucune clause particulière."

	notePetsRefused     = "Les animaux ne sont pas acceptés."
	noteThirdParty      = "Les propriétaires doivent être informés de l'éventuel accès au gîte de tierces personnes."
	noteFirstFireWood   = "En hiver, bois fourni pour une première flambée."
	clauseCleaning      = "Le gîte doit être rendu propre; le chèque ménage pourra être encaissé si le nettoyage n'est pas effectué."
	clauseLateCheckout  = "Départ tardif accordé selon l'horaire convenu avec le propriétaire."
	discountRowLabel    = "Remise exceptionnelle"
	complimentaryPrefix = "Offre exceptionnelle - "
)

// Build formats a document. It does no I/O and reads no clock.
func Build(src Source) Input {
	invoice := src.Invoice
	rules := src.Options.ResolveRules(src.Tariff.Rules)

	security, cleaning := src.SecurityDeposit, src.CleaningDeposit
	showSecurity, showCleaning := src.ShowSecurityDepositPhrase, src.ShowCleaningDepositPhrase
	if invoice {
		security, cleaning = 0, 0
		showSecurity, showCleaning = false, false
	}

	number := strings.TrimSpace(src.Number)
	if number == "" {
		number = PreviewNumber
	}

	in := Input{
		Invoice: invoice,
		Title:   title(invoice),
		Number:  number,

		GiteName:        strings.ToUpper(src.Gite.Name),
		GiteAddress:     joinNonEmpty(" - ", src.Gite.AddressLine1, src.Gite.AddressLine2),
		OwnersNames:     src.Gite.OwnersNames,
		OwnersAddress:   src.Gite.OwnersAddress,
		ContactLines:    contactLines(src.Gite),
		Characteristics: splitLines(src.Gite.Characteristics),

		TenantName:    src.TenantName,
		TenantAddress: src.TenantAddress,
		TenantPhone:   src.TenantPhone,
		Adults:        src.Adults,
		Children:      src.Children,
		Capacity:      src.Gite.Capacity,

		StartDate:     stay.FormatOptional(src.Start),
		EndDate:       stay.FormatOptional(src.End),
		ArrivalTime:   src.ArrivalTime,
		DepartureTime: src.DepartureTime,
		Nights:        src.Totals.Nights,

		NightlyRate:    money.FormatEuro(src.NightlyRate),
		BaseAmount:     money.FormatEuro(src.Totals.BaseAmount),
		Discount:       money.FormatEuro(src.Discount),
		ShowDiscount:   src.Discount > 0,
		DiscountLabel:  discountRowLabel,
		DiscountReason: clauseString(src.Clauses, "remise_raison"),
		GrandTotal:     money.FormatEuro(src.Totals.GrandTotal),

		OptionRows:       optionRows(src.Options, src.Tariff, src.Totals.Nights, rules),
		ClientOptionRows: clientOptionRows(src.Options, src.Tariff, src.Totals.Nights, rules),

		TouristTaxInfo: fmt.Sprintf("%s (soit %s / personne / nuit)",
			money.FormatEuro(src.Totals.TouristTax), money.FormatEuro(src.Tariff.TouristTaxRate)),
		Deposit:        money.FormatEuro(src.Deposit),
		DepositDueDate: stay.FormatOptional(optionalDate(src.DepositDueDate)),
		Balance:        money.FormatEuro(src.Totals.BalanceDue),
		OnSitePayment: onSitePayment(
			money.FormatEuro(src.Totals.BalanceDue),
			money.FormatEuro(cleaning),
			money.FormatEuro(security),
			showCleaning,
			showSecurity,
		),

		ShowGuarantees:  !invoice,
		SecurityDeposit: money.FormatEuro(security),
		CleaningDeposit: money.FormatEuro(cleaning),

		IBAN:          src.Gite.IBAN,
		BIC:           src.Gite.BIC,
		AccountHolder: src.Gite.AccountHolder,

		Notes:   notes(rules),
		Clauses: clauses(src.Options, src.Tariff, rules, src.Clauses),
		Remarks: strings.TrimSpace(src.Notes),

		SignaturePlace: signaturePlace(src.Gite),
		SignatureDate:  stay.FormatOptional(optionalDate(src.SignedOn)),
		ContactEmail:   contactEmail(src.Gite),
	}

	if invoice {
		if src.Paid {
			in.PaymentStatusLine = "Montant réglé : " + money.FormatEuro(src.Totals.GrandTotal)
		} else {
			in.PaymentStatusLine = "Montant restant dû : " + money.FormatEuro(src.Totals.BalanceDue)
			in.PaymentDueDate = in.DepositDueDate
		}
	}

	return in
}

func title(invoice bool) string {
	if invoice {
		return "Facture"
	}
	return "Contrat de location saisonnière"
}

func optionRows(options pricing.OptionSelection, tariff pricing.TariffSheet, nights int, rules pricing.HouseRules) []OptionRow {
	var rows []OptionRow
	for _, opt := range options.All() {
		if !opt.Selected() {
			continue
		}
		if opt.Kind() == pricing.Pets && !rules.PetsAllowed {
			continue
		}
		base := pricing.BaseAmount(opt, tariff, nights)
		rows = append(rows, OptionRow{
			Label:  bandLabel(opt, tariff, nights),
			Amount: money.FormatSigned(base, "+"),
		})
		if !opt.IsComplimentary() {
			continue
		}
		waived := money.Round2(base - pricing.BilledAmount(opt, tariff, nights))
		if waived > 0 {
			rows = append(rows, OptionRow{
				Label:    complimentaryPrefix + opt.Kind().Label(),
				Amount:   money.FormatSigned(waived, "-"),
				Discount: true,
			})
		}
	}
	if len(rows) == 0 {
		rows = append(rows, OptionRow{Label: "Options", Amount: money.FormatSigned(0, "+")})
	}
	return rows
}

func bandLabel(opt pricing.Option, tariff pricing.TariffSheet, nights int) string {
	rate := money.FormatEuro(tariff.Rate(opt.Kind()))
	switch o := opt.(type) {
	case pricing.BeddingOption:
		return fmt.Sprintf("Draps (%d lit(s) x %s / séjour)", o.BedCount(), rate)
	case pricing.TowelsOption:
		return fmt.Sprintf("Linge de toilette (%d pers. x %s / séjour)", o.PersonCount(), rate)
	case pricing.CleaningOption, pricing.LateCheckoutOption:
		return opt.Kind().Label()
	case pricing.PetsOption:
		return fmt.Sprintf("Chiens (%d x %d nuit(s) x %s)", o.PetCount(), nights, rate)
	default:
		return opt.Kind().Label()
	}
}

func clientOptionRows(options pricing.OptionSelection, tariff pricing.TariffSheet, nights int, rules pricing.HouseRules) []ClientOptionRow {
	var rows []ClientOptionRow
	for _, opt := range options.All() {
		if opt.Selected() {
			continue
		}
		kind := opt.Kind()
		rate := money.FormatEuro(tariff.Rate(kind))
		row := ClientOptionRow{Label: kind.Label(), Tariff: rate}
		switch kind {
		case pricing.Bedding:
			row.Meta = rate + " / lit / séjour"
			row.Unit = "lits"
		case pricing.Towels:
			row.Meta = rate + " / personne / séjour"
			row.Unit = "personnes"
		case pricing.Cleaning, pricing.LateCheckout:
			row.Meta = "Forfait " + rate
			row.Inline = true
		case pricing.Pets:
			if !rules.PetsAllowed {
				continue
			}
			row.Meta = rate + " / nuit / chien"
			row.Unit = "chiens"
			row.Nights = nights
		}
		rows = append(rows, row)
	}
	return rows
}

func notes(rules pricing.HouseRules) []string {
	var out []string
	if !rules.PetsAllowed {
		out = append(out, notePetsRefused)
	}
	if rules.ThirdPartyNotice {
		out = append(out, noteThirdParty)
	}
	if rules.FirstFireWood {
		out = append(out, noteFirstFireWood)
	}
	if len(out) == 0 {
		return []string{noNotes}
	}
	return out
}

func clauses(options pricing.OptionSelection, tariff pricing.TariffSheet, rules pricing.HouseRules, extra map[string]any) []string {
	var out []string
	if rules.PetsAllowed && options.Get(pricing.Pets).Selected() {
		out = append(out, fmt.Sprintf(
			"Animaux acceptés sous réserve de respecter les lieux. Supplément chiens: %s / nuit.",
			money.FormatEuro(tariff.Rate(pricing.Pets)),
		))
	}
	if !options.Get(pricing.Cleaning).Selected() {
		out = append(out, clauseCleaning)
	}
	if options.Get(pricing.LateCheckout).Selected() {
		out = append(out, clauseLateCheckout)
	}
	if text := clauseString(extra, "texte_additionnel"); text != "" {
		out = append(out, text)
	}
	if len(out) == 0 {
		return []string{noClauses}
	}
	return out
}

func onSitePayment(balance, cleaning, security string, showCleaning, showSecurity bool) string {
	var extras []string
	if showCleaning {
		extras = append(extras, fmt.Sprintf(
			"le chèque de ménage de %s (encaissé que si le ménage n’est pas correctement fait à votre départ)", cleaning))
	}
	if showSecurity {
		extras = append(extras, "le chèque de caution de "+security)
	}

	tail := "."
	switch len(extras) {
	case 1:
		tail = ", en même temps que " + extras[0] + "."
	case 2:
		tail = ", en même temps que " + extras[0] + " et " + extras[1] + "."
	}
	return fmt.Sprintf("Le montant restant de la location, soit %s (sans les services annexes) sera payé le jour de la remise des clés%s", balance, tail)
}

func contactLines(g Gite) []string {
	var lines []string
	if s := strings.TrimSpace(g.Website); s != "" {
		lines = append(lines, s)
	}
	if s := strings.TrimSpace(g.Email); s != "" {
		lines = append(lines, s)
	}
	if phones := joinNonEmpty(" / ", g.Phones...); phones != "" {
		lines = append(lines, "T/ "+phones)
	}
	return lines
}

func signaturePlace(g Gite) string {
	if s := strings.TrimSpace(g.AddressLine2); s != "" {
		return s
	}
	return g.AddressLine1
}

func contactEmail(g Gite) string {
	if s := strings.TrimSpace(g.Email); s != "" {
		return s
	}
	return DefaultContactEmail
}

func splitLines(value string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

func clauseString(clauses map[string]any, key string) string {
	if clauses == nil {
		return ""
	}
	s, ok := clauses[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func optionalDate(d stay.Date) *stay.Date {
	if d.IsZero() {
		return nil
	}
	return &d
}
