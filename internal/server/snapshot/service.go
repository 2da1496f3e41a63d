package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/zhenzou/executors"
	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/log"
	"github.com/looplj/datavault/internal/server/db"
	"github.com/looplj/datavault/internal/server/dependencies"
)

const (
	DefaultPrefix = "datavault-snapshot-"
	Ext           = ".dvs"

	nameLayout = "20060102T150405.000000000"
)

var ErrDisabled = errors.New("snapshots are disabled")

type Params struct {
	fx.In

	Config Config
	State  *db.State
}

// Service saves the whole store to a Storage and restores it from the newest snapshot.
type Service struct {
	config  Config
	state   *db.State
	storage Storage

	mu         sync.Mutex
	executor   executors.ScheduledExecutor
	cancelFunc context.CancelFunc
}

func NewService(params Params) (*Service, error) {
	svc := &Service{
		config: params.Config,
		state:  params.State,
	}

	if !params.Config.Enabled {
		return svc, nil
	}

	storage, err := NewStorage(context.Background(), params.Config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot storage: %w", err)
	}

	svc.storage = storage
	svc.executor = dependencies.NewSerialExecutor()

	return svc, nil
}

// NewServiceWithStorage is used by tests to plug an arbitrary backend.
func NewServiceWithStorage(cfg Config, state *db.State, storage Storage) *Service {
	return &Service{
		config:   cfg,
		state:    state,
		storage:  storage,
		executor: dependencies.NewSerialExecutor(),
	}
}

func (svc *Service) prefix() string {
	if svc.config.Prefix != "" {
		return svc.config.Prefix
	}

	return DefaultPrefix
}

func (svc *Service) isSnapshot(name string) bool {
	return strings.HasPrefix(name, svc.prefix()) && strings.HasSuffix(name, Ext)
}

// Save writes a full snapshot and applies retention. It returns the file name.
func (svc *Service) Save(ctx context.Context) (string, error) {
	if svc.storage == nil {
		return "", ErrDisabled
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	snap := svc.state.Export()

	data, err := Encode(snap)
	if err != nil {
		return "", err
	}

	name := svc.prefix() + snap.Timestamp.UTC().Format(nameLayout) + Ext

	if err := svc.storage.Write(ctx, name, data); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	log.Info(ctx, "snapshot saved",
		log.String("name", name),
		log.Int("size", len(data)),
		log.Int("datasets", len(snap.Datasets)))

	if svc.config.Retain > 0 {
		if err := svc.rotate(ctx); err != nil {
			log.Warn(ctx, "failed to rotate snapshots", log.Cause(err))
		}
	}

	return name, nil
}

// List returns snapshot names, oldest first.
func (svc *Service) List(ctx context.Context) ([]string, error) {
	if svc.storage == nil {
		return nil, ErrDisabled
	}

	names, err := svc.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	return lo.Filter(names, func(name string, _ int) bool {
		return svc.isSnapshot(name)
	}), nil
}

// Restore replaces the store with the named snapshot. The store is untouched on error.
func (svc *Service) Restore(ctx context.Context, name string) error {
	if svc.storage == nil {
		return ErrDisabled
	}

	data, err := svc.storage.Read(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}

	snap, err := Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode snapshot %s: %w", name, err)
	}

	svc.state.Import(snap)

	log.Info(ctx, "snapshot restored",
		log.String("name", name),
		log.String("version", snap.Version),
		log.Time("taken_at", snap.Timestamp))

	return nil
}

// RestoreLatest restores the newest snapshot and returns its name, or "" when there is none.
func (svc *Service) RestoreLatest(ctx context.Context) (string, error) {
	names, err := svc.List(ctx)
	if err != nil {
		return "", err
	}

	if len(names) == 0 {
		return "", nil
	}

	latest := names[len(names)-1]

	return latest, svc.Restore(ctx, latest)
}

func (svc *Service) rotate(ctx context.Context) error {
	names, err := svc.List(ctx)
	if err != nil {
		return err
	}

	if len(names) <= svc.config.Retain {
		return nil
	}

	for _, name := range names[:len(names)-svc.config.Retain] {
		if err := svc.storage.Remove(ctx, name); err != nil {
			log.Warn(ctx, "failed to delete old snapshot", log.String("name", name), log.Cause(err))
			continue
		}

		log.Debug(ctx, "deleted old snapshot", log.String("name", name))
	}

	return nil
}

func (svc *Service) Start(ctx context.Context) error {
	if svc.storage == nil {
		log.Info(ctx, "snapshots are disabled")
		return nil
	}

	if svc.config.RestoreOnStart {
		name, err := svc.RestoreLatest(ctx)
		if err != nil {
			return err
		}

		if name == "" {
			log.Info(ctx, "no snapshot to restore, starting empty")
		}
	}

	if svc.config.Cron == "" {
		return nil
	}

	cancelFunc, err := svc.executor.ScheduleFuncAtCronRate(
		svc.runPeriodicSave,
		executors.CRONRule{Expr: svc.config.Cron},
	)
	if err != nil {
		return fmt.Errorf("failed to schedule snapshot: %w", err)
	}

	svc.cancelFunc = cancelFunc

	log.Info(ctx, "periodic snapshot scheduled", log.String("cron", svc.config.Cron))

	return nil
}

func (svc *Service) runPeriodicSave(ctx context.Context) {
	startAt := time.Now()

	if _, err := svc.Save(ctx); err != nil {
		log.Error(ctx, "periodic snapshot failed", log.Cause(err))
		return
	}

	log.Debug(ctx, "periodic snapshot done", log.Duration("cost", time.Since(startAt)))
}

func (svc *Service) Stop(ctx context.Context) error {
	if svc.storage == nil {
		return nil
	}

	if svc.cancelFunc != nil {
		svc.cancelFunc()
		svc.cancelFunc = nil
	}

	if err := svc.executor.Shutdown(ctx); err != nil {
		log.Warn(ctx, "failed to shutdown snapshot executor", log.Cause(err))
	}

	if !svc.config.SaveOnStop {
		return nil
	}

	_, err := svc.Save(ctx)

	return err
}
