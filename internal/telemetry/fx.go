// Package telemetry bundles the forwarder's dependency wiring.
package telemetry

import (
	"github.com/chatlens/chatlens/internal/config"
	"github.com/chatlens/chatlens/internal/telemetry/domain"
	"github.com/chatlens/chatlens/internal/telemetry/intake"
	"github.com/chatlens/chatlens/internal/telemetry/repository"
	"github.com/chatlens/chatlens/internal/telemetry/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("telemetry",
	fx.Provide(
		provideIntake,
		repository.Provide,
		service.NewService,
	),
)

func provideIntake(cfg config.Config, log *zap.Logger) domain.Intake {
	return intake.NewClient(cfg, log)
}
