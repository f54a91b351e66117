package migration

import (
	"github.com/smallbiznis/rentaldocs/internal/config"
	"github.com/smallbiznis/rentaldocs/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Apply),
)

// Apply brings the schema up to date at startup.
func Apply(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
	log = log.Named("migration")
	if !cfg.DBAutoMigrate {
		log.Info("schema migration disabled")
		return nil
	}

	if conn.Dialector.Name() == db.TypePostgres {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		log.Info("sql migrations applied")
		return nil
	}

	if err := AutoMigrate(conn); err != nil {
		return err
	}
	log.Info("schema auto-migrated", zap.String("dialect", conn.Dialector.Name()))
	return nil
}
