package config

import (
	"github.com/smallbiznis/rentaldocs/internal/renderer"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewRenderingConfig,
		func(h *RenderingConfigHolder) renderer.LayoutSource { return h },
	),
)

// NewRenderingConfig builds the holder from RENDERING_CONFIG_PATH.
func NewRenderingConfig(cfg Config, log *zap.Logger) (*RenderingConfigHolder, error) {
	return NewRenderingConfigHolder(cfg.RenderingConfigPath, log)
}
