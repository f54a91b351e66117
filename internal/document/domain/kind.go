package domain

import "github.com/smallbiznis/rentaldocs/internal/numbering"

// Kind distinguishes contracts from invoices. Both share one table and one
// numbering scheme, only the sequence width and wording differ.
type Kind string

const (
	KindContract Kind = "contract"
	KindInvoice  Kind = "invoice"
)

const (
	DepositNotReceived = "non_recu"
	DepositReceived    = "recu"

	PaymentUnpaid = "non_reglee"
	PaymentPaid   = "reglee"
)

// KindFromPath maps a route segment ("contracts", "invoices") to a Kind.
func KindFromPath(segment string) (Kind, bool) {
	switch segment {
	case "contracts":
		return KindContract, true
	case "invoices":
		return KindInvoice, true
	default:
		return "", false
	}
}

func (k Kind) Valid() bool {
	return k == KindContract || k == KindInvoice
}

func (k Kind) Invoice() bool { return k == KindInvoice }

func (k Kind) String() string { return string(k) }

func (k Kind) Path() string {
	if k == KindInvoice {
		return "invoices"
	}
	return "contracts"
}

func (k Kind) Sequence() numbering.Sequence {
	if k == KindInvoice {
		return numbering.Sequence{Kind: string(KindInvoice), Width: 2}
	}
	return numbering.Sequence{Kind: string(KindContract), Width: 6}
}

// HeaderPrefix prefixes the preview overflow headers.
func (k Kind) HeaderPrefix() string {
	if k == KindInvoice {
		return "X-Invoice"
	}
	return "X-Contract"
}

// FilePrefix is the first word of downloaded file names.
func (k Kind) FilePrefix() string {
	if k == KindInvoice {
		return "facture"
	}
	return "contrat"
}

func (k Kind) NotFoundMessage() string {
	if k == KindInvoice {
		return "Facture introuvable"
	}
	return "Contrat introuvable"
}
