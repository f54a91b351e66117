package main

import (
	"context"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldocs/internal/artifact"
	"github.com/smallbiznis/rentaldocs/internal/clock"
	"github.com/smallbiznis/rentaldocs/internal/config"
	"github.com/smallbiznis/rentaldocs/internal/gite"
	gitedomain "github.com/smallbiznis/rentaldocs/internal/gite/domain"
	"github.com/smallbiznis/rentaldocs/internal/migration"
	"github.com/smallbiznis/rentaldocs/internal/observability"
	"github.com/smallbiznis/rentaldocs/internal/seed"
	"github.com/smallbiznis/rentaldocs/internal/server"
	"github.com/smallbiznis/rentaldocs/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "seed" {
		fx.New(
			core(),
			artifact.Module,
			gite.Module,
			fx.Invoke(runSeed),
		).Run()
		return
	}

	fx.New(
		core(),
		server.Module,
	).Run()
}

func core() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
	)
}

// runSeed inserts the development gîtes once the database is up, then stops the app.
func runSeed(lc fx.Lifecycle, shutdowner fx.Shutdowner, gites gitedomain.Service, log *zap.Logger) {
	log = log.Named("seed")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			created, err := seed.EnsureGites(ctx, gites, log)
			if err != nil {
				return err
			}
			log.Info("seed complete", zap.Int("created", created))
			return shutdowner.Shutdown()
		},
	})
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
