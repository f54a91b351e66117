package pricing

import (
	"github.com/smallbiznis/rentaldocs/internal/money"
	"github.com/smallbiznis/rentaldocs/internal/stay"
)

// StayParameters are the stay inputs of a price computation.
type StayParameters struct {
	Start       *stay.Date
	End         *stay.Date
	NightlyRate float64
	Discount    float64
	Adults      int
	Children    int
}

// OptionsDetail is the billed amount of each option kind.
type OptionsDetail struct {
	Bedding      float64 `json:"draps"`
	Towels       float64 `json:"linge_toilette"`
	Cleaning     float64 `json:"menage"`
	LateCheckout float64 `json:"depart_tardif"`
	Pets         float64 `json:"chiens"`
}

func (d OptionsDetail) Amount(kind OptionKind) float64 {
	switch kind {
	case Bedding:
		return d.Bedding
	case Towels:
		return d.Towels
	case Cleaning:
		return d.Cleaning
	case LateCheckout:
		return d.LateCheckout
	case Pets:
		return d.Pets
	default:
		return 0
	}
}

func (d *OptionsDetail) set(kind OptionKind, v float64) {
	switch kind {
	case Bedding:
		d.Bedding = v
	case Towels:
		d.Towels = v
	case Cleaning:
		d.Cleaning = v
	case LateCheckout:
		d.LateCheckout = v
	case Pets:
		d.Pets = v
	}
}

// Totals is the complete monetary outcome of a stay.
type Totals struct {
	Nights           int           `json:"nights"`
	BaseAmount       float64       `json:"base_amount"`
	NetBeforeOptions float64       `json:"net_before_options"`
	OptionsTotal     float64       `json:"options_total"`
	OptionsDetail    OptionsDetail `json:"options_detail"`
	TouristTax       float64       `json:"tourist_tax"`
	GrandTotal       float64       `json:"grand_total"`
	BalanceDue       float64       `json:"balance_due"`
}

// NightsForPricing never returns less than one night. Callers that must
// refuse inverted ranges check stay.Ordered first.
func NightsForPricing(start, end *stay.Date) int {
	n := stay.Nights(start, end)
	if n < 1 {
		return 1
	}
	return n
}

// BaseAmount is the undiscounted price of a selected option, zero when the
// option is not selected.
func BaseAmount(opt Option, tariff TariffSheet, nights int) float64 {
	if opt == nil || !opt.Selected() {
		return 0
	}
	return money.Round2(opt.amount(tariff.Rate(opt.Kind()), nights))
}

// BilledAmount is what the tenant pays for the option.
func BilledAmount(opt Option, tariff TariffSheet, nights int) float64 {
	if opt == nil || opt.IsComplimentary() {
		return 0
	}
	return BaseAmount(opt, tariff, nights)
}

// ComputeTotals evaluates the money flow of a stay. The evaluation order is
// fixed and every step is rounded to the cent.
func ComputeTotals(params StayParameters, options OptionSelection, tariff TariffSheet, deposit float64) Totals {
	nights := NightsForPricing(params.Start, params.End)

	base := money.Round2(float64(nights) * finite(params.NightlyRate))
	net := money.Round2(base - finite(params.Discount))

	var detail OptionsDetail
	var sum float64
	for _, opt := range options.All() {
		billed := BilledAmount(opt, tariff, nights)
		detail.set(opt.Kind(), billed)
		sum += billed
	}
	optionsTotal := money.Round2(sum)

	guests := nonNegative(params.Adults) + nonNegative(params.Children)
	tax := money.Round2(float64(guests) * float64(nights) * finite(tariff.TouristTaxRate))

	grand := money.Round2(net + optionsTotal)
	balance := money.Round2(grand - finite(deposit))

	return Totals{
		Nights:           nights,
		BaseAmount:       base,
		NetBeforeOptions: net,
		OptionsTotal:     optionsTotal,
		OptionsDetail:    detail,
		TouristTax:       tax,
		GrandTotal:       grand,
		BalanceDue:       balance,
	}
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
