package document

import (
	"github.com/smallbiznis/rentaldocs/internal/document/repository"
	"github.com/smallbiznis/rentaldocs/internal/document/service"
	"go.uber.org/fx"
)

var Module = fx.Module("document.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
