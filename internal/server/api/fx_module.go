package api

import (
	"go.uber.org/fx"
)

var Module = fx.Module("api",
	fx.Provide(NewSystemHandlers),
	fx.Provide(NewTokenHandlers),
	fx.Provide(NewDatasetHandlers),
	fx.Provide(NewProducerHandlers),
	fx.Provide(NewEntryHandlers),
	fx.Provide(NewAnalyticsHandlers),
)
