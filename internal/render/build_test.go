package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/rentaldocs/internal/money"
	"github.com/smallbiznis/rentaldocs/internal/pricing"
	"github.com/smallbiznis/rentaldocs/internal/stay"
)

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func datePtr(y int, m time.Month, d int) *stay.Date {
	v := stay.NewDate(y, m, d)
	return &v
}

func testTariff() pricing.TariffSheet {
	return pricing.TariffSheet{
		TouristTaxRate:   1.5,
		BeddingPerBed:    12,
		TowelsPerPerson:  8,
		CleaningFlat:     20,
		LateCheckoutFlat: 15,
		PetsPerNight:     5,
		Rules:            pricing.HouseRules{PetsAllowed: true},
	}
}

func testSource(options pricing.OptionSelection) Source {
	tariff := testTariff()
	params := pricing.StayParameters{
		Start:       datePtr(2026, time.March, 1),
		End:         datePtr(2026, time.March, 4),
		NightlyRate: 100,
		Discount:    10,
		Adults:      2,
		Children:    1,
	}
	quote := pricing.NewDepositResolver(0.2).Quote(params, options, tariff, nil)
	return Source{
		Number:                    "LIB-2026-000001",
		TenantName:                "Jeanne Martin",
		Adults:                    2,
		Children:                  1,
		Start:                     params.Start,
		End:                       params.End,
		ArrivalTime:               "17:00",
		DepartureTime:             "12:00",
		NightlyRate:               100,
		Discount:                  10,
		Deposit:                   quote.Deposit,
		DepositDueDate:            stay.NewDate(2026, time.February, 1),
		SecurityDeposit:           300,
		CleaningDeposit:           60,
		ShowSecurityDepositPhrase: true,
		ShowCleaningDepositPhrase: true,
		Options:                   quote.Options,
		Gite: Gite{
			Name:            "Le Liberté",
			AddressLine1:    "12 rue des Chênes",
			AddressLine2:    "Paimpont",
			Website:         "https://gites.example",
			Phones:          []string{"06 00 00 00 01", "", "06 00 00 00 02"},
			Characteristics: "3 chambres\r\n\n  Poêle à bois  ",
			Capacity:        6,
		},
		Tariff:   tariff,
		Totals:   quote.Totals,
		SignedOn: stay.NewDate(2026, time.January, 15),
	}
}

func TestBuildIdentityFields(t *testing.T) {
	in := Build(testSource(pricing.OptionSelection{}))

	assert.Equal(t, "LE LIBERTÉ", in.GiteName)
	assert.Equal(t, "12 rue des Chênes - Paimpont", in.GiteAddress)
	assert.Equal(t, []string{"https://gites.example", "T/ 06 00 00 00 01 / 06 00 00 00 02"}, in.ContactLines)
	assert.Equal(t, []string{"3 chambres", "Poêle à bois"}, in.Characteristics)
	assert.Equal(t, "Paimpont", in.SignaturePlace)
	assert.Equal(t, DefaultContactEmail, in.ContactEmail)
	assert.Equal(t, "01/03/2026", in.StartDate)
	assert.Equal(t, "15/01/2026", in.SignatureDate)
	assert.Equal(t, 3, in.Nights)
}

func TestBuildPreviewDefaults(t *testing.T) {
	src := testSource(pricing.OptionSelection{})
	src.Number = ""
	src.End = nil
	src.Gite.AddressLine2 = ""

	in := Build(src)
	assert.Equal(t, PreviewNumber, in.Number)
	assert.Equal(t, stay.MissingDateLabel, in.EndDate)
	assert.Equal(t, "12 rue des Chênes", in.SignaturePlace)
}

func TestBuildOptionRows(t *testing.T) {
	src := testSource(pricing.OptionSelection{
		Bedding:  &pricing.BeddingOption{Toggle: pricing.Toggle{Enabled: true}, Beds: intPtr(2)},
		Towels:   &pricing.TowelsOption{Toggle: pricing.Toggle{Enabled: true, Offert: true}, Persons: intPtr(1)},
		Cleaning: &pricing.CleaningOption{Toggle: pricing.Toggle{Enabled: true}},
		Pets:     &pricing.PetsOption{Toggle: pricing.Toggle{Enabled: true}, Count: intPtr(2)},
	})
	in := Build(src)

	labels := make([]string, 0, len(in.OptionRows))
	for _, row := range in.OptionRows {
		labels = append(labels, row.Label)
	}
	assert.Equal(t, []string{
		"Draps (2 lit(s) x " + money.FormatEuro(12) + " / séjour)",
		"Linge de toilette (1 pers. x " + money.FormatEuro(8) + " / séjour)",
		"Offre exceptionnelle - Linge de toilette",
		"Ménage fin de séjour",
		"Chiens (2 x 3 nuit(s) x " + money.FormatEuro(5) + ")",
	}, labels)

	assert.Equal(t, money.FormatSigned(8, "+"), in.OptionRows[1].Amount)
	assert.Equal(t, money.FormatSigned(8, "-"), in.OptionRows[2].Amount)
	assert.True(t, in.OptionRows[2].Discount)
	assert.Equal(t, money.FormatSigned(30, "+"), in.OptionRows[4].Amount)

	require.Len(t, in.ClientOptionRows, 1)
	assert.Equal(t, "Départ tardif", in.ClientOptionRows[0].Label)
	assert.Equal(t, "Forfait "+money.FormatEuro(15), in.ClientOptionRows[0].Meta)
	assert.True(t, in.ClientOptionRows[0].Inline)
}

func TestBuildNoOptionSelected(t *testing.T) {
	in := Build(testSource(pricing.OptionSelection{}))

	require.Len(t, in.OptionRows, 1)
	assert.Equal(t, "Options", in.OptionRows[0].Label)
	assert.Equal(t, money.FormatSigned(0, "+"), in.OptionRows[0].Amount)
	assert.Len(t, in.ClientOptionRows, 5)
	assert.Equal(t, "chiens", in.ClientOptionRows[4].Unit)
	assert.Equal(t, 3, in.ClientOptionRows[4].Nights)
}

func TestBuildHidesPetsWhenRefused(t *testing.T) {
	in := Build(testSource(pricing.OptionSelection{
		PetsAllowed: boolPtr(false),
		Pets:        &pricing.PetsOption{Toggle: pricing.Toggle{Enabled: true}, Count: intPtr(1)},
	}))

	for _, row := range in.ClientOptionRows {
		assert.NotEqual(t, "Chiens", row.Label)
	}
	assert.Equal(t, "Options", in.OptionRows[0].Label)
	assert.Equal(t, []string{"Les animaux ne sont pas acceptés."}, in.Notes)
}

func TestBuildNotesAndClauses(t *testing.T) {
	src := testSource(pricing.OptionSelection{
		ThirdPartyNotice: boolPtr(true),
		FirstFireWood:    boolPtr(true),
		Cleaning:         &pricing.CleaningOption{Toggle: pricing.Toggle{Enabled: true}},
		LateCheckout:     &pricing.LateCheckoutOption{Toggle: pricing.Toggle{Enabled: true}},
		Pets:             &pricing.PetsOption{Toggle: pricing.Toggle{Enabled: true}},
	})
	src.Clauses = map[string]any{"texte_additionnel": "  Piscine fermée l'hiver. ", "remise_raison": "fidélité"}
	in := Build(src)

	assert.Equal(t, []string{noteThirdParty, noteFirstFireWood}, in.Notes)
	assert.Equal(t, []string{
		"Animaux acceptés sous réserve de respecter les lieux. Supplément chiens: " + money.FormatEuro(5) + " / nuit.",
		clauseLateCheckout,
		"Piscine fermée l'hiver.",
	}, in.Clauses)
	assert.Equal(t, "fidélité", in.DiscountReason)
	assert.True(t, in.ShowDiscount)
}

func TestBuildFallbackNotesAndClauses(t *testing.T) {
	src := testSource(pricing.OptionSelection{Cleaning: &pricing.CleaningOption{Toggle: pricing.Toggle{Enabled: true}}})
	src.Tariff.Rules = pricing.HouseRules{PetsAllowed: true}
	in := Build(src)

	assert.Equal(t, []string{noNotes}, in.Notes)
	assert.Equal(t, []string{noClauses}, in.Clauses)
}

func TestOnSitePaymentTail(t *testing.T) {
	base := "Le montant restant de la location, soit X (sans les services annexes) sera payé le jour de la remise des clés"
	assert.Equal(t, base+".", onSitePayment("X", "M", "C", false, false))
	assert.Equal(t, base+", en même temps que le chèque de caution de C.", onSitePayment("X", "M", "C", false, true))
	assert.Equal(t,
		base+", en même temps que le chèque de ménage de M (encaissé que si le ménage n’est pas correctement fait à votre départ) et le chèque de caution de C.",
		onSitePayment("X", "M", "C", true, true))
}

func TestBuildInvoice(t *testing.T) {
	src := testSource(pricing.OptionSelection{})
	src.Invoice = true

	in := Build(src)
	assert.False(t, in.ShowGuarantees)
	assert.Equal(t, money.FormatEuro(0), in.SecurityDeposit)
	assert.NotContains(t, in.OnSitePayment, "caution")
	assert.Equal(t, "Montant restant dû : "+money.FormatEuro(src.Totals.BalanceDue), in.PaymentStatusLine)
	assert.Equal(t, "01/02/2026", in.PaymentDueDate)

	src.Paid = true
	in = Build(src)
	assert.Equal(t, "Montant réglé : "+money.FormatEuro(src.Totals.GrandTotal), in.PaymentStatusLine)
	assert.Empty(t, in.PaymentDueDate)
}

func TestBuildTouristTaxInfo(t *testing.T) {
	in := Build(testSource(pricing.OptionSelection{}))
	assert.Equal(t, money.FormatEuro(13.5)+" (soit "+money.FormatEuro(1.5)+" / personne / nuit)", in.TouristTaxInfo)
}

func TestRenderHTML(t *testing.T) {
	r := NewHTMLRenderer()
	html, err := r.RenderHTML(View{
		Input:   Build(testSource(pricing.OptionSelection{})),
		Preview: true,
		Classes: []string{"compact-sections", "bad class\"><script>"},
	})
	require.NoError(t, err)
	assert.Contains(t, html, `<body class="preview compact-sections">`)
	assert.Contains(t, html, "LIB-2026-000001")
	assert.NotContains(t, html, "<script>")
}
