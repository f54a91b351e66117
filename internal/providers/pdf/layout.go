package pdf

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/smallbiznis/rentaldocs/internal/render"
	"github.com/smallbiznis/rentaldocs/internal/renderer"
)

const (
	// contentWidthPX is A4 width minus 12 mm margins, at 96 dpi.
	contentWidthPX = (210.0 - 24.0) * 96.0 / 25.4
	// glyphRatio approximates the average glyph width of the body font.
	glyphRatio = 0.5
	gridSize   = 12
)

type rowKind int

const (
	rowTitle rowKind = iota
	rowBanner
	rowGap
	rowHeading
	rowText
	rowAmount
	rowSignature
)

// row is one printed line group. Heights are derived from the metrics so
// that measuring and drawing agree.
type row struct {
	kind   rowKind
	left   string
	right  string
	strong bool
	muted  bool
	lines  int
}

func (r row) heightPX(m renderer.Metrics) float64 {
	switch r.kind {
	case rowTitle:
		return m.HeaderPX
	case rowGap:
		return m.SectionGapPX
	case rowSignature:
		return m.SignaturePX
	default:
		lines := r.lines
		if lines < 1 {
			lines = 1
		}
		return float64(lines)*m.LineHeightPX + m.RowPaddingPX
	}
}

// charsPerLine is how many glyphs fit a column span at the given font size.
func charsPerLine(cols int, fontPT float64) int {
	glyphPX := fontPT * 96.0 / 72.0 * glyphRatio
	if glyphPX <= 0 {
		return 1
	}
	n := int(contentWidthPX * float64(cols) / gridSize / glyphPX)
	if n < 1 {
		return 1
	}
	return n
}

func wrappedLines(value string, cols int, fontPT float64) int {
	per := charsPerLine(cols, fontPT)
	total := 0
	for _, part := range strings.Split(value, "\n") {
		n := utf8.RuneCountInString(part)
		total += int(math.Max(1, math.Ceil(float64(n)/float64(per))))
	}
	return total
}

type sheet struct {
	metrics renderer.Metrics
	rows    []row
}

func (s *sheet) gap() { s.rows = append(s.rows, row{kind: rowGap}) }

func (s *sheet) heading(title string) {
	s.rows = append(s.rows, row{kind: rowHeading, left: title, strong: true, lines: 1})
}

func (s *sheet) text(value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	s.rows = append(s.rows, row{kind: rowText, left: value, lines: wrappedLines(value, gridSize, s.metrics.FontSizePT)})
}

func (s *sheet) muted(value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	s.rows = append(s.rows, row{kind: rowText, left: value, muted: true, lines: wrappedLines(value, gridSize, s.metrics.FontSizePT)})
}

func (s *sheet) amount(label, value string, strong bool) {
	s.rows = append(s.rows, row{
		kind:   rowAmount,
		left:   label,
		right:  value,
		strong: strong,
		lines:  wrappedLines(label, 9, s.metrics.FontSizePT),
	})
}

func (s *sheet) heightPX() float64 {
	total := 0.0
	for _, r := range s.rows {
		total += r.heightPX(s.metrics)
	}
	return total
}

// firstPage keeps the rows that fit the printable height.
func (s *sheet) firstPage(printablePX float64) []row {
	used := 0.0
	for i, r := range s.rows {
		used += r.heightPX(s.metrics)
		if used > printablePX {
			return s.rows[:i]
		}
	}
	return s.rows
}

// layoutDocument lays the formatted input out the same way the HTML
// template orders its sections.
func layoutDocument(in render.Input, m renderer.Metrics, preview bool) *sheet {
	s := &sheet{metrics: m}
	if preview {
		s.rows = append(s.rows, row{kind: rowBanner, left: "Brouillon - document non contractuel", lines: 1})
	}
	s.rows = append(s.rows, row{kind: rowTitle, left: in.GiteName, right: in.Title + "\nN° " + in.Number})
	s.muted(in.GiteAddress)

	s.gap()
	s.heading("Propriétaires")
	s.text(in.OwnersNames)
	s.text(in.OwnersAddress)
	for _, line := range in.ContactLines {
		s.muted(line)
	}

	s.gap()
	s.heading("Locataire")
	s.text(in.TenantName)
	s.text(in.TenantAddress)
	s.text(in.TenantPhone)
	s.text(fmt.Sprintf("%d adulte(s), %d enfant(s) de 2 à 17 ans (capacité %d)", in.Adults, in.Children, in.Capacity))

	if len(in.Characteristics) > 0 {
		s.gap()
		s.heading("Le gîte")
		for _, c := range in.Characteristics {
			s.text("• " + c)
		}
	}

	s.gap()
	s.heading("Séjour")
	s.text(fmt.Sprintf("Du %s à partir de %s au %s avant %s, soit %d nuit(s).",
		in.StartDate, in.ArrivalTime, in.EndDate, in.DepartureTime, in.Nights))

	s.gap()
	s.heading("Prix")
	s.amount(fmt.Sprintf("%d nuit(s) x %s", in.Nights, in.NightlyRate), in.BaseAmount, false)
	if in.ShowDiscount {
		label := in.DiscountLabel
		if in.DiscountReason != "" {
			label += " (" + in.DiscountReason + ")"
		}
		s.amount(label, in.Discount, false)
	}
	for _, opt := range in.OptionRows {
		s.amount(opt.Label, opt.Amount, false)
	}
	s.amount("Total", in.GrandTotal, true)
	s.muted("Taxe de séjour : " + in.TouristTaxInfo)

	if len(in.ClientOptionRows) > 0 {
		s.gap()
		s.text("Services annexes en option, à régler sur place (à entourer si souhaités) :")
		for _, opt := range in.ClientOptionRows {
			line := "○ " + opt.Label
			if opt.Meta != "" {
				line += " " + opt.Meta
			}
			s.text(line)
		}
	}

	s.gap()
	s.heading("Paiement")
	if in.Invoice {
		s.text(in.PaymentStatusLine)
		if in.PaymentDueDate != "" {
			s.text("À régler avant le " + in.PaymentDueDate)
		}
	} else {
		s.text(fmt.Sprintf("Arrhes de %s à verser avant le %s.", in.Deposit, in.DepositDueDate))
		s.text(in.OnSitePayment)
	}
	bank := "IBAN " + in.IBAN
	if in.BIC != "" {
		bank += " - BIC " + in.BIC
	}
	s.muted(bank + " - " + in.AccountHolder)

	s.gap()
	s.heading("Mentions")
	for _, n := range in.Notes {
		s.text("• " + n)
	}
	s.heading("Clauses")
	for _, c := range in.Clauses {
		s.text("• " + c)
	}
	s.muted(in.Remarks)

	if !in.Invoice {
		s.gap()
		s.text(fmt.Sprintf("Fait à %s, le %s", in.SignaturePlace, in.SignatureDate))
		s.rows = append(s.rows, row{kind: rowSignature, left: "Le propriétaire", right: "Le locataire"})
	}
	s.muted("Contact : " + in.ContactEmail)
	return s
}
