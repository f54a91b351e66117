package pricing

import (
	"math"
	"sort"
)

// HouseRules are the per-property rules a document may override.
type HouseRules struct {
	PetsAllowed      bool `json:"regle_animaux_acceptes"`
	FirstFireWood    bool `json:"regle_bois_premiere_flambee"`
	ThirdPartyNotice bool `json:"regle_tiers_personnes_info"`
}

// TariffSheet is the read-only pricing reference of a gîte.
type TariffSheet struct {
	NightlyRates     []float64
	TouristTaxRate   float64
	BeddingPerBed    float64
	TowelsPerPerson  float64
	CleaningFlat     float64
	LateCheckoutFlat float64
	PetsPerNight     float64
	// DepositRate is nil when the gîte relies on the system default.
	DepositRate     *float64
	SecurityDeposit float64
	CleaningDeposit float64
	ArrivalTime     string
	DepartureTime   string
	Rules           HouseRules
	Capacity        int
}

// Rate returns the unit tariff of an option kind.
func (t TariffSheet) Rate(kind OptionKind) float64 {
	var rate float64
	switch kind {
	case Bedding:
		rate = t.BeddingPerBed
	case Towels:
		rate = t.TowelsPerPerson
	case Cleaning:
		rate = t.CleaningFlat
	case LateCheckout:
		rate = t.LateCheckoutFlat
	case Pets:
		rate = t.PetsPerNight
	}
	return finite(rate)
}

// NormalizeRates deduplicates the nightly-rate catalogue, drops negative or
// non-finite values and sorts ascending.
func NormalizeRates(values []float64) []float64 {
	seen := make(map[float64]struct{}, len(values))
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
