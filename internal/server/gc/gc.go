package gc

import (
	"context"

	"github.com/zhenzou/executors"
	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/log"
	"github.com/looplj/datavault/internal/server/biz"
	"github.com/looplj/datavault/internal/server/db"
	"github.com/looplj/datavault/internal/server/dependencies"
)

type Config struct {
	CRON string `json:"cron" yaml:"cron" conf:"cron"`
}

// Worker sweeps expired analytics tokens out of the store and the token cache.
// It only runs when token expiry is enforced; otherwise tokens never expire.
type Worker struct {
	State       *db.State
	AuthService *biz.AuthService
	AuthConfig  biz.AuthConfig
	Executor    executors.ScheduledExecutor
	Config      Config
	CancelFunc  context.CancelFunc
}

type Params struct {
	fx.In

	Config      Config
	AuthConfig  biz.AuthConfig
	State       *db.State
	AuthService *biz.AuthService
}

func NewWorker(params Params) *Worker {
	return &Worker{
		State:       params.State,
		AuthService: params.AuthService,
		AuthConfig:  params.AuthConfig,
		Executor:    dependencies.NewSerialExecutor(),
		Config:      params.Config,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	if !w.AuthConfig.EnforceTokenExpiry || w.Config.CRON == "" {
		log.Info(ctx, "GC worker disabled",
			log.Bool("enforce_token_expiry", w.AuthConfig.EnforceTokenExpiry),
			log.String("cron", w.Config.CRON))

		return nil
	}

	cancelFunc, err := w.Executor.ScheduleFuncAtCronRate(
		w.runCleanup,
		executors.CRONRule{Expr: w.Config.CRON},
	)
	if err != nil {
		return err
	}

	w.CancelFunc = cancelFunc

	log.Info(ctx, "GC worker started", log.String("cron", w.Config.CRON))

	return nil
}

func (w *Worker) Stop(ctx context.Context) error {
	if w.CancelFunc != nil {
		w.CancelFunc()
	}

	return w.Executor.Shutdown(ctx)
}

func (w *Worker) runCleanup(ctx context.Context) {
	removed := w.SweepExpiredTokens(ctx)
	if removed > 0 {
		log.Info(ctx, "Expired analytics tokens removed", log.Int("count", removed))
	}
}

// SweepExpiredTokens removes tokens whose expire_at has passed and returns how many were removed.
func (w *Worker) SweepExpiredTokens(ctx context.Context) int {
	removed := w.State.RemoveExpiredTokens(w.State.Now())
	w.AuthService.EvictTokens(ctx, removed)

	return len(removed)
}
