package formpreview

import (
	gitedomain "github.com/smallbiznis/rentaldocs/internal/gite/domain"
	"github.com/smallbiznis/rentaldocs/internal/money"
	"github.com/smallbiznis/rentaldocs/internal/pricing"
	"github.com/smallbiznis/rentaldocs/internal/stay"
)

// DiscountMode is how the form's discount field is read.
type DiscountMode string

const (
	DiscountFixed   DiscountMode = "euro"
	DiscountPercent DiscountMode = "percent"
)

// ResolveDiscount turns the form's discount entry into the euro amount sent
// as remise_montant. Percent applies to base. Unparsable input is 0.
func ResolveDiscount(base float64, mode DiscountMode, value any) float64 {
	v := money.ToFloat(value)
	if mode == DiscountPercent {
		return money.Round2(money.ToFloat(base) * v / 100)
	}
	return money.Round2(v)
}

// StayBase is the nightly rate times the number of nights, the amount a
// percent discount applies to. A form with a missing date prices one night.
func StayBase(start, end string, nightly float64) float64 {
	from, errFrom := stay.ParseOptional(start)
	to, errTo := stay.ParseOptional(end)
	if errFrom != nil || errTo != nil {
		return 0
	}
	return money.Round2(float64(stay.Nights(from, to)) * money.ToFloat(nightly))
}

// RateList is the gîte's nightly-rate catalogue as offered in the form picker.
func RateList(g gitedomain.Gite) []float64 {
	return pricing.NormalizeRates(g.PrixNuitListe)
}
