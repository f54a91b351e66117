package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/smallbiznis/rentaldocs/internal/renderer"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// renderingFile mirrors rendering.yml. Preset entries only list the metrics
// they change; each one starts from the previous step.
type renderingFile struct {
	PrintableHeightPX float64           `mapstructure:"printable_height_px"`
	Base              *renderer.Metrics `mapstructure:"base"`
	Presets           []presetOverrides `mapstructure:"presets"`
}

type presetOverrides struct {
	Name         string   `mapstructure:"name"`
	HeaderPX     *float64 `mapstructure:"header_px"`
	SectionGapPX *float64 `mapstructure:"section_gap_px"`
	LineHeightPX *float64 `mapstructure:"line_height_px"`
	RowPaddingPX *float64 `mapstructure:"row_padding_px"`
	SignaturePX  *float64 `mapstructure:"signature_px"`
	FontSizePT   *float64 `mapstructure:"font_size_pt"`
}

func (o presetOverrides) apply(m renderer.Metrics) renderer.Metrics {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&m.HeaderPX, o.HeaderPX)
	set(&m.SectionGapPX, o.SectionGapPX)
	set(&m.LineHeightPX, o.LineHeightPX)
	set(&m.RowPaddingPX, o.RowPaddingPX)
	set(&m.SignaturePX, o.SignaturePX)
	set(&m.FontSizePT, o.FontSizePT)
	return m
}

func (f renderingFile) layout() (renderer.Layout, error) {
	defaults := renderer.DefaultLayout()
	out := renderer.Layout{
		Base:              defaults.Base,
		PrintableHeightPX: defaults.PrintableHeightPX,
	}
	if f.PrintableHeightPX != 0 {
		out.PrintableHeightPX = f.PrintableHeightPX
	}
	if f.Base != nil {
		out.Base = *f.Base
	}
	if len(f.Presets) == 0 {
		out.Presets = defaults.Presets
	} else {
		current := out.Base
		out.Presets = make([]renderer.Preset, 0, len(f.Presets))
		for _, p := range f.Presets {
			current = p.apply(current)
			out.Presets = append(out.Presets, renderer.Preset{Name: strings.TrimSpace(p.Name), Metrics: current})
		}
	}
	if err := out.Validate(); err != nil {
		return renderer.Layout{}, err
	}
	return out, nil
}

// RenderingConfigHolder serves the compaction layout and swaps it when
// rendering.yml changes on disk. Invalid edits keep the previous layout.
type RenderingConfigHolder struct {
	current atomic.Value // holds renderer.Layout
	source  string
}

// NewRenderingConfigHolder loads path, or looks for rendering.yml in the
// usual directories when path is empty. A missing file means built-in defaults.
func NewRenderingConfigHolder(path string, log *zap.Logger) (*RenderingConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.rendering")

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("rendering")
		v.SetConfigType("yml")
		v.AddConfigPath("/var/lib/rentaldocs/config")
		v.AddConfigPath("/etc/rentaldocs")
		v.AddConfigPath(".")
	}

	holder := &RenderingConfigHolder{}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read rendering config: %w", err)
		}
		holder.current.Store(renderer.DefaultLayout())
		holder.source = "defaults"
		log.Info("rendering config not found, using defaults")
		return holder, nil
	}

	layout, err := decodeRendering(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(layout)
	holder.source = v.ConfigFileUsed()

	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeRendering(v)
		if err != nil {
			log.Warn("invalid rendering config ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("rendering config reloaded", zap.String("file", e.Name), zap.Int("presets", len(updated.Presets)))
	})
	v.WatchConfig()

	return holder, nil
}

func decodeRendering(v *viper.Viper) (renderer.Layout, error) {
	var file renderingFile
	if err := v.UnmarshalKey("rendering", &file); err != nil {
		return renderer.Layout{}, fmt.Errorf("decode rendering config: %w", err)
	}
	return file.layout()
}

// Layout implements renderer.LayoutSource.
func (h *RenderingConfigHolder) Layout() renderer.Layout {
	return h.current.Load().(renderer.Layout)
}

// Source is the file in use, or "defaults".
func (h *RenderingConfigHolder) Source() string { return h.source }

var _ renderer.LayoutSource = (*RenderingConfigHolder)(nil)
