package pricing

// OptionKind identifies one of the priced services a document can carry.
type OptionKind int

const (
	Bedding OptionKind = iota
	Towels
	Cleaning
	LateCheckout
	Pets
)

// Kinds lists every option kind in display order.
var Kinds = [...]OptionKind{Bedding, Towels, Cleaning, LateCheckout, Pets}

func (k OptionKind) String() string {
	switch k {
	case Bedding:
		return "draps"
	case Towels:
		return "linge_toilette"
	case Cleaning:
		return "menage"
	case LateCheckout:
		return "depart_tardif"
	case Pets:
		return "chiens"
	default:
		return "unknown"
	}
}

// Label is the human name printed on documents.
func (k OptionKind) Label() string {
	switch k {
	case Bedding:
		return "Draps"
	case Towels:
		return "Linge de toilette"
	case Cleaning:
		return "Ménage fin de séjour"
	case LateCheckout:
		return "Départ tardif"
	case Pets:
		return "Chiens"
	default:
		return ""
	}
}

// Toggle carries the state shared by every option.
type Toggle struct {
	Enabled bool `json:"enabled"`
	Offert  bool `json:"offert,omitempty"`
}

func (t Toggle) Selected() bool { return t.Enabled }

// IsComplimentary reports a selected option billed at zero.
func (t Toggle) IsComplimentary() bool { return t.Offert }

// Option is implemented only by the five option types of this package.
type Option interface {
	Kind() OptionKind
	Selected() bool
	IsComplimentary() bool
	// amount is the undiscounted line price for the given unit rate.
	amount(rate float64, nights int) float64
}

type BeddingOption struct {
	Toggle
	Beds *int `json:"nb_lits,omitempty"`
}

func (BeddingOption) Kind() OptionKind { return Bedding }

func (o BeddingOption) BedCount() int { return quantity(o.Beds, 0) }

func (o BeddingOption) amount(rate float64, _ int) float64 {
	return rate * float64(o.BedCount())
}

type TowelsOption struct {
	Toggle
	Persons *int `json:"nb_personnes,omitempty"`
}

func (TowelsOption) Kind() OptionKind { return Towels }

func (o TowelsOption) PersonCount() int { return quantity(o.Persons, 0) }

func (o TowelsOption) amount(rate float64, _ int) float64 {
	return rate * float64(o.PersonCount())
}

type CleaningOption struct {
	Toggle
}

func (CleaningOption) Kind() OptionKind { return Cleaning }

func (CleaningOption) amount(rate float64, _ int) float64 { return rate }

type LateCheckoutOption struct {
	Toggle
}

func (LateCheckoutOption) Kind() OptionKind { return LateCheckout }

func (LateCheckoutOption) amount(rate float64, _ int) float64 { return rate }

// PetsOption is billed per pet and per night.
type PetsOption struct {
	Toggle
	Count *int `json:"nb,omitempty"`
}

func (PetsOption) Kind() OptionKind { return Pets }

// PetCount defaults to one pet when the form did not say how many.
func (o PetsOption) PetCount() int { return quantity(o.Count, 1) }

func (o PetsOption) amount(rate float64, nights int) float64 {
	return rate * float64(o.PetCount()) * float64(nights)
}

// OptionSelection is the per-document choice of services plus the house-rule overrides.
type OptionSelection struct {
	Bedding      *BeddingOption      `json:"draps,omitempty"`
	Towels       *TowelsOption       `json:"linge_toilette,omitempty"`
	Cleaning     *CleaningOption     `json:"menage,omitempty"`
	LateCheckout *LateCheckoutOption `json:"depart_tardif,omitempty"`
	Pets         *PetsOption         `json:"chiens,omitempty"`

	PetsAllowed      *bool `json:"regle_animaux_acceptes,omitempty"`
	FirstFireWood    *bool `json:"regle_bois_premiere_flambee,omitempty"`
	ThirdPartyNotice *bool `json:"regle_tiers_personnes_info,omitempty"`
}

// Get returns the option of the given kind, a disabled zero value when absent.
func (s OptionSelection) Get(kind OptionKind) Option {
	switch kind {
	case Bedding:
		if s.Bedding != nil {
			return *s.Bedding
		}
		return BeddingOption{}
	case Towels:
		if s.Towels != nil {
			return *s.Towels
		}
		return TowelsOption{}
	case Cleaning:
		if s.Cleaning != nil {
			return *s.Cleaning
		}
		return CleaningOption{}
	case LateCheckout:
		if s.LateCheckout != nil {
			return *s.LateCheckout
		}
		return LateCheckoutOption{}
	case Pets:
		if s.Pets != nil {
			return *s.Pets
		}
		return PetsOption{}
	default:
		return nil
	}
}

// All returns the five options in display order.
func (s OptionSelection) All() []Option {
	out := make([]Option, 0, len(Kinds))
	for _, kind := range Kinds {
		out = append(out, s.Get(kind))
	}
	return out
}

// AnyEnabled reports whether at least one option is selected.
func (s OptionSelection) AnyEnabled() bool {
	for _, opt := range s.All() {
		if opt.Selected() {
			return true
		}
	}
	return false
}

func quantity(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	if *value < 0 {
		return 0
	}
	return *value
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }
