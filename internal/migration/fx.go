package migration

import (
	"strings"

	"github.com/chatlens/chatlens/internal/config"
	"github.com/chatlens/chatlens/internal/telemetry/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Versioned SQL migrations target postgres; the other dialects are
		// for local development and get the schema from the models directly.
		if strings.ToLower(cfg.DBType) != "postgres" {
			return conn.AutoMigrate(
				&domain.Event{},
				&domain.UsageRecord{},
				&domain.Metric{},
				&domain.Lead{},
				&domain.Conversation{},
				&domain.Message{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
