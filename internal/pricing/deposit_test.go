package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDepositExplicit(t *testing.T) {
	explicit := 100.004
	assert.Equal(t, 100.0, ResolveDeposit(fixtureStay(), fixtureOptions(), fixtureTariff(), &explicit))

	zero := 0.0
	assert.Zero(t, ResolveDeposit(fixtureStay(), fixtureOptions(), fixtureTariff(), &zero))
}

func TestResolveDepositUsesDefaultRateOnNet(t *testing.T) {
	// 20% of the 290 net, options excluded.
	assert.Equal(t, 58.0, ResolveDeposit(fixtureStay(), fixtureOptions(), fixtureTariff(), nil))
}

func TestResolveDepositUsesTariffRate(t *testing.T) {
	tariff := fixtureTariff()
	rate := 0.3
	tariff.DepositRate = &rate
	assert.Equal(t, 87.0, ResolveDeposit(fixtureStay(), fixtureOptions(), tariff, nil))
}

func TestNewDepositResolverFallsBack(t *testing.T) {
	assert.Equal(t, DefaultDepositRate, NewDepositResolver(math.NaN()).DefaultRate)
	assert.Equal(t, DefaultDepositRate, NewDepositResolver(-1).DefaultRate)
	assert.Equal(t, 0.25, NewDepositResolver(0.25).DefaultRate)
}

func TestQuoteBalancesAgainstResolvedDeposit(t *testing.T) {
	quote := NewDepositResolver(0.2).Quote(fixtureStay(), fixtureOptions(), fixtureTariff(), nil)
	assert.Equal(t, 58.0, quote.Deposit)
	assert.Equal(t, 372.0, quote.Totals.GrandTotal)
	assert.Equal(t, 314.0, quote.Totals.BalanceDue)
	assert.True(t, quote.Rules.PetsAllowed)
}
