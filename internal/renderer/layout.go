package renderer

import (
	"errors"
	"fmt"
	"strings"
)

const (
	a4HeightMM  = 297.0
	marginMM    = 12.0
	mmToPX      = 96.0 / 25.4
	overflowTol = 1.0
)

// PrintableHeightPX is the usable height of an A4 page with 12 mm margins at 96 dpi.
var PrintableHeightPX = (a4HeightMM - 2*marginMM) * mmToPX

var ErrInvalidLayout = errors.New("invalid_layout")

// Metrics size every block of a document page.
type Metrics struct {
	HeaderPX     float64 `mapstructure:"header_px" yaml:"header_px"`
	SectionGapPX float64 `mapstructure:"section_gap_px" yaml:"section_gap_px"`
	LineHeightPX float64 `mapstructure:"line_height_px" yaml:"line_height_px"`
	RowPaddingPX float64 `mapstructure:"row_padding_px" yaml:"row_padding_px"`
	SignaturePX  float64 `mapstructure:"signature_px" yaml:"signature_px"`
	FontSizePT   float64 `mapstructure:"font_size_pt" yaml:"font_size_pt"`
}

func (m Metrics) fields() []float64 {
	return []float64{m.HeaderPX, m.SectionGapPX, m.LineHeightPX, m.RowPaddingPX, m.SignaturePX, m.FontSizePT}
}

// noLargerThan reports whether every metric of m is at most the one of prev.
func (m Metrics) noLargerThan(prev Metrics) bool {
	cur, old := m.fields(), prev.fields()
	for i := range cur {
		if cur[i] > old[i] {
			return false
		}
	}
	return true
}

// Preset is a named compaction step. Metrics are absolute values once the
// step and every step before it are applied.
type Preset struct {
	Name    string
	Metrics Metrics
}

// Layout is the base geometry plus the ordered compaction presets.
type Layout struct {
	Base              Metrics
	Presets           []Preset
	PrintableHeightPX float64
}

// Validate rejects layouts whose presets could grow a page.
func (l Layout) Validate() error {
	if l.PrintableHeightPX <= 0 {
		return fmt.Errorf("%w: printable height must be positive", ErrInvalidLayout)
	}
	for _, v := range l.Base.fields() {
		if v <= 0 {
			return fmt.Errorf("%w: base metrics must be positive", ErrInvalidLayout)
		}
	}
	prev := l.Base
	seen := make(map[string]struct{}, len(l.Presets))
	for _, p := range l.Presets {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("%w: preset without name", ErrInvalidLayout)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: duplicate preset %s", ErrInvalidLayout, name)
		}
		seen[name] = struct{}{}
		for _, v := range p.Metrics.fields() {
			if v <= 0 {
				return fmt.Errorf("%w: preset %s has a non-positive metric", ErrInvalidLayout, name)
			}
		}
		if !p.Metrics.noLargerThan(prev) {
			return fmt.Errorf("%w: preset %s grows the layout", ErrInvalidLayout, name)
		}
		prev = p.Metrics
	}
	return nil
}

// DefaultLayout is used when no rendering configuration is loaded.
func DefaultLayout() Layout {
	base := Metrics{
		HeaderPX:     72,
		SectionGapPX: 14,
		LineHeightPX: 16,
		RowPaddingPX: 6,
		SignaturePX:  84,
		FontSizePT:   9,
	}
	sections := base
	sections.HeaderPX = 60
	sections.SectionGapPX = 8

	density := sections
	density.LineHeightPX = 15
	density.RowPaddingPX = 4

	text := density
	text.LineHeightPX = 14
	text.FontSizePT = 8

	final := text
	final.LineHeightPX = 13
	final.RowPaddingPX = 2
	final.SignaturePX = 56
	final.FontSizePT = 7.5

	return Layout{
		Base: base,
		Presets: []Preset{
			{Name: "compact-sections", Metrics: sections},
			{Name: "compact-density", Metrics: density},
			{Name: "compact-text", Metrics: text},
			{Name: "compact-final", Metrics: final},
		},
		PrintableHeightPX: PrintableHeightPX,
	}
}

// LayoutSource hands out the current layout; implementations may reload it.
type LayoutSource interface {
	Layout() Layout
}

type staticLayout Layout

func (s staticLayout) Layout() Layout { return Layout(s) }

// StaticLayout wraps a fixed layout.
func StaticLayout(l Layout) LayoutSource { return staticLayout(l) }

// Overflows applies the first-page rule with a one pixel tolerance.
func Overflows(heightPX, printablePX float64) bool {
	return heightPX > printablePX+overflowTol
}
