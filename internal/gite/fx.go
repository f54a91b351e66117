package gite

import (
	"github.com/smallbiznis/rentaldocs/internal/gite/repository"
	"github.com/smallbiznis/rentaldocs/internal/gite/service"
	"go.uber.org/fx"
)

var Module = fx.Module("gite.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
