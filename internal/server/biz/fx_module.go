package biz

import (
	"go.uber.org/fx"
)

var Module = fx.Module("biz",
	fx.Provide(NewAuthService),
	fx.Provide(NewAccessService),
	fx.Provide(NewAnalyticsService),
	fx.Provide(NewActivityService),
	fx.Provide(NewDatasetService),
	fx.Provide(NewProducerService),
	fx.Provide(NewEntryService),
)
