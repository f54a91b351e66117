package renderer

import "go.uber.org/fx"

var Module = fx.Module("renderer",
	fx.Provide(New),
)
