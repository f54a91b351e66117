package render

import (
	"github.com/smallbiznis/rentaldocs/internal/pricing"
	"github.com/smallbiznis/rentaldocs/internal/stay"
)

// PreviewNumber is printed on documents that have not been committed.
const PreviewNumber = "BROUILLON"

// DefaultContactEmail is printed when the gîte has no email address.
const DefaultContactEmail = "contact@gites-broceliande.com"

// Gite is the display data of a property.
type Gite struct {
	Name            string
	AddressLine1    string
	AddressLine2    string
	OwnersNames     string
	OwnersAddress   string
	Website         string
	Email           string
	Phones          []string
	Characteristics string
	IBAN            string
	BIC             string
	AccountHolder   string
	Capacity        int
}

// Source is everything a document shows. Totals must come from the same
// pricing pass that produced the persisted or previewed numbers.
type Source struct {
	Invoice bool
	Number  string

	TenantName    string
	TenantAddress string
	TenantPhone   string
	Adults        int
	Children      int

	Start         *stay.Date
	End           *stay.Date
	ArrivalTime   string
	DepartureTime string

	NightlyRate    float64
	Discount       float64
	Deposit        float64
	DepositDueDate stay.Date

	SecurityDeposit           float64
	CleaningDeposit           float64
	ShowSecurityDepositPhrase bool
	ShowCleaningDepositPhrase bool

	Options pricing.OptionSelection
	Clauses map[string]any
	Notes   string
	Paid    bool

	Gite     Gite
	Tariff   pricing.TariffSheet
	Totals   pricing.Totals
	SignedOn stay.Date
}

// OptionRow is a line of the price band.
type OptionRow struct {
	Label    string
	Amount   string
	Discount bool
}

// ClientOptionRow is an option the tenant may still take on site.
type ClientOptionRow struct {
	Label  string
	Meta   string
	Inline bool
	// Unit is empty for flat-rate options, which carry no fill-in calculation.
	Unit   string
	Tariff string
	Nights int
}

// Input is the fully formatted view of a contract or an invoice.
type Input struct {
	Invoice bool
	Title   string
	Number  string

	GiteName        string
	GiteAddress     string
	OwnersNames     string
	OwnersAddress   string
	ContactLines    []string
	Characteristics []string

	TenantName    string
	TenantAddress string
	TenantPhone   string
	Adults        int
	Children      int
	Capacity      int

	StartDate     string
	EndDate       string
	ArrivalTime   string
	DepartureTime string
	Nights        int

	NightlyRate    string
	BaseAmount     string
	Discount       string
	ShowDiscount   bool
	DiscountLabel  string
	DiscountReason string
	GrandTotal     string

	OptionRows       []OptionRow
	ClientOptionRows []ClientOptionRow

	TouristTaxInfo string
	Deposit        string
	DepositDueDate string
	Balance        string
	OnSitePayment  string

	ShowGuarantees  bool
	SecurityDeposit string
	CleaningDeposit string

	IBAN          string
	BIC           string
	AccountHolder string

	Notes   []string
	Clauses []string
	Remarks string

	SignaturePlace string
	SignatureDate  string
	ContactEmail   string

	PaymentStatusLine string
	PaymentDueDate    string
}
