package dependencies

import (
	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/log"
	"github.com/looplj/datavault/internal/metrics"
	"github.com/looplj/datavault/internal/oracle"
	"github.com/looplj/datavault/internal/pkg/httpclient"
	"github.com/looplj/datavault/internal/server/db"
)

var Module = fx.Module("dependencies",
	fx.Provide(log.New),
	fx.Provide(httpclient.NewHttpClient),
	fx.Provide(db.NewState),
	fx.Provide(oracle.New),
	fx.Provide(metrics.NewInstrumentsFromParams),
)
