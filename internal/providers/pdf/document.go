package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/rentaldocs/internal/renderer"
)

const (
	marginMM = 12.0
	pxToMM   = 25.4 / 96.0
)

var mutedColor = &props.Color{Red: 110, Green: 110, Blue: 110}

// drawPDF turns laid out rows into PDF bytes.
func drawPDF(rows []row, metrics renderer.Metrics) ([]byte, error) {
	fontPT := metrics.FontSizePT
	cfg := config.NewBuilder().
		WithLeftMargin(marginMM).
		WithTopMargin(marginMM).
		WithRightMargin(marginMM).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} / {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	for _, r := range rows {
		height := r.heightPX(metrics) * pxToMM
		switch r.kind {
		case rowTitle:
			m.AddRow(height,
				text.NewCol(8, r.left, props.Text{Size: fontPT + 7, Style: fontstyle.Bold, Align: align.Left}),
				text.NewCol(4, r.right, props.Text{Size: fontPT + 1, Style: fontstyle.Bold, Align: align.Right}),
			)
		case rowBanner:
			m.AddRow(height, text.NewCol(12, r.left, props.Text{Size: fontPT, Style: fontstyle.Italic, Align: align.Center, Color: mutedColor}))
		case rowGap:
			m.AddRow(height, col.New(12))
		case rowHeading:
			m.AddRow(height, text.NewCol(12, r.left, props.Text{Size: fontPT + 1, Style: fontstyle.Bold}))
		case rowAmount:
			style := fontstyle.Normal
			if r.strong {
				style = fontstyle.Bold
			}
			m.AddRow(height,
				text.NewCol(9, r.left, props.Text{Size: fontPT, Style: style}),
				text.NewCol(3, r.right, props.Text{Size: fontPT, Style: style, Align: align.Right}),
			)
		case rowSignature:
			m.AddRow(height,
				text.NewCol(6, r.left, props.Text{Size: fontPT, Style: fontstyle.Bold}),
				text.NewCol(6, r.right, props.Text{Size: fontPT, Style: fontstyle.Bold, Align: align.Right}),
			)
		default:
			p := props.Text{Size: fontPT}
			if r.muted {
				p.Color = mutedColor
				p.Size = fontPT - 1
			}
			m.AddRow(height, text.NewCol(12, r.left, p))
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}
