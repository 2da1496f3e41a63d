package dependencies

import (
	"context"
	"reflect"

	"github.com/zhenzou/executors"

	"github.com/looplj/datavault/internal/log"
)

type ErrorHandler struct{}

func (h *ErrorHandler) CatchError(runnable executors.Runnable, err error) {
	log.Error(context.Background(), "run runnable error", log.Cause(err))
}

type RejectionHandler struct{}

func (h *RejectionHandler) RejectExecution(runnable executors.Runnable, e executors.Executor) error {
	log.Error(context.Background(), "runnable rejection by executor", log.String("runnable", reflect.ValueOf(runnable).String()))
	return nil
}

// NewSerialExecutor runs scheduled jobs one at a time. Each background worker owns one and shuts it down on stop.
func NewSerialExecutor() executors.ScheduledExecutor {
	return executors.NewPoolScheduleExecutor(
		executors.WithMaxConcurrent(1),
		executors.WithMaxBlockingTasks(16),
		executors.WithErrorHandler(&ErrorHandler{}),
		executors.WithRejectionHandler(&RejectionHandler{}),
		executors.WithLogger(log.GetGlobalLogger().AsSlog()),
	)
}
