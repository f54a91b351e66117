package pricing

import (
	"math"

	"github.com/smallbiznis/rentaldocs/internal/money"
)

// DefaultDepositRate applies when neither the gîte nor the configuration sets one.
const DefaultDepositRate = 0.2

// DepositResolver derives the deposit ("arrhes") of a stay.
type DepositResolver struct {
	DefaultRate float64
}

func NewDepositResolver(defaultRate float64) DepositResolver {
	if math.IsNaN(defaultRate) || math.IsInf(defaultRate, 0) || defaultRate < 0 {
		defaultRate = DefaultDepositRate
	}
	return DepositResolver{DefaultRate: defaultRate}
}

// Rate is the deposit rate for the tariff.
func (r DepositResolver) Rate(tariff TariffSheet) float64 {
	if tariff.DepositRate != nil {
		if rate := finite(*tariff.DepositRate); rate >= 0 {
			return rate
		}
	}
	return r.DefaultRate
}

// Resolve returns the rounded explicit deposit when given, otherwise a share
// of the net stay price computed by a single preliminary pass with a zero deposit.
func (r DepositResolver) Resolve(params StayParameters, options OptionSelection, tariff TariffSheet, explicit *float64) float64 {
	if explicit != nil {
		return money.Round2(*explicit)
	}
	preliminary := ComputeTotals(params, options, tariff, 0)
	return money.Round2(preliminary.NetBeforeOptions * r.Rate(tariff))
}

// ResolveDeposit resolves with DefaultDepositRate as the fallback rate.
func ResolveDeposit(params StayParameters, options OptionSelection, tariff TariffSheet, explicit *float64) float64 {
	return NewDepositResolver(DefaultDepositRate).Resolve(params, options, tariff, explicit)
}

// Quote is the shared outcome of preview and commit.
type Quote struct {
	Options OptionSelection
	Rules   HouseRules
	Deposit float64
	Totals  Totals
}

// Quote normalizes the options, resolves the deposit and computes the totals.
func (r DepositResolver) Quote(params StayParameters, options OptionSelection, tariff TariffSheet, explicit *float64) Quote {
	normalized := Normalize(options, tariff.Rules)
	deposit := r.Resolve(params, normalized, tariff, explicit)
	return Quote{
		Options: normalized,
		Rules:   normalized.ResolveRules(tariff.Rules),
		Deposit: deposit,
		Totals:  ComputeTotals(params, normalized, tariff, deposit),
	}
}
