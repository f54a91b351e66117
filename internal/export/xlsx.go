package export

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rentaldocs/internal/document/domain"
	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type column struct {
	title string
	width float64
	value func(d domain.Document) any
}

func amount(v decimal.Decimal) any { return v.InexactFloat64() }

func columns(kind domain.Kind) []column {
	cols := []column{
		{"Numéro", 20, func(d domain.Document) any { return d.Numero }},
		{"Gîte", 24, func(d domain.Document) any {
			if d.Gite == nil {
				return ""
			}
			return d.Gite.Nom
		}},
		{"Locataire", 24, func(d domain.Document) any { return d.LocataireNom }},
		{"Téléphone", 16, func(d domain.Document) any { return d.LocataireTel }},
		{"Début", 12, func(d domain.Document) any { return d.DateDebut.Format() }},
		{"Fin", 12, func(d domain.Document) any { return d.DateFin.Format() }},
		{"Nuits", 8, func(d domain.Document) any { return d.NbNuits }},
		{"Adultes", 8, func(d domain.Document) any { return d.NbAdultes }},
		{"Enfants", 8, func(d domain.Document) any { return d.NbEnfants }},
		{"Prix / nuit", 12, func(d domain.Document) any { return amount(d.PrixParNuit) }},
		{"Remise", 12, func(d domain.Document) any { return amount(d.RemiseMontant) }},
		{"Taxe de séjour", 14, func(d domain.Document) any { return amount(d.TaxeSejourCalculee) }},
		{"Arrhes", 12, func(d domain.Document) any { return amount(d.ArrhesMontant) }},
		{"Solde", 12, func(d domain.Document) any { return amount(d.SoldeMontant) }},
	}
	if kind.Invoice() {
		return append(cols, column{"Statut", 14, func(d domain.Document) any {
			if d.Paid() {
				return "Réglée"
			}
			return "Non réglée"
		}})
	}
	return append(cols,
		column{"Caution", 12, func(d domain.Document) any { return amount(d.CautionMontant) }},
		column{"Chèque ménage", 14, func(d domain.Document) any { return amount(d.ChequeMenageMontant) }},
		column{"Arrhes reçues", 14, func(d domain.Document) any {
			if d.StatutPaiementArrhes == domain.DepositReceived {
				return "Oui"
			}
			return "Non"
		}},
	)
}

func sheetName(kind domain.Kind) string {
	if kind.Invoice() {
		return "Factures"
	}
	return "Contrats"
}

// Documents writes one row per document, in the given order.
func Documents(kind domain.Kind, docs []domain.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(kind)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E8EEF4"}},
	})
	if err != nil {
		return nil, err
	}
	euroFmt := `#,##0.00 "€"`
	euroStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &euroFmt})
	if err != nil {
		return nil, err
	}

	cols := columns(kind)
	for i, c := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, c.title); err != nil {
			return nil, err
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, name, name, c.width)
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	_ = f.SetCellStyle(sheet, "A1", last, headerStyle)

	for r, doc := range docs {
		row := r + 2
		for i, c := range cols {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			value := c.value(doc)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
			if _, ok := value.(float64); ok {
				_ = f.SetCellStyle(sheet, cell, cell, euroStyle)
			}
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename is the attachment name of an export.
func Filename(kind domain.Kind) string {
	return kind.Path() + ".xlsx"
}
