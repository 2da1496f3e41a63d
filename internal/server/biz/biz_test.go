package biz

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/oracle"
	"github.com/looplj/datavault/internal/pkg/xtime"
	"github.com/looplj/datavault/internal/server/db"
)

var epoch = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

type fakeOracle struct {
	mu     sync.Mutex
	grants []oracle.Grant
	err    error
	calls  int
	onCall func()
}

func (o *fakeOracle) GetAccessGrant(_ context.Context, _ objects.DatasetID, _ objects.Identity) ([]oracle.Grant, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.calls++

	if o.onCall != nil {
		o.onCall()
	}

	return o.grants, o.err
}

func (o *fakeOracle) set(grants []oracle.Grant, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.grants, o.err = grants, err
}

func (o *fakeOracle) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.calls
}

type testEnv struct {
	clock     *xtime.ManualClock
	state     *db.State
	oracle    *fakeOracle
	auth      *AuthService
	access    *AccessService
	analytics *AnalyticsService
	activity  *ActivityService
	datasets  *DatasetService
	producers *ProducerService
	entries   *EntryService
}

type envOptions struct {
	auth      AuthConfig
	oracleCfg oracle.Config
	datasets  DatasetConfig
	analytics AnalyticsConfig
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	clock := xtime.NewManualClock(epoch)
	state := db.New(db.Config{}, clock)
	fake := &fakeOracle{}

	auth, err := NewAuthService(AuthServiceParams{Config: opts.auth, State: state})
	require.NoError(t, err)

	access, err := NewAccessService(AccessServiceParams{Oracle: fake, OracleConfig: opts.oracleCfg})
	require.NoError(t, err)

	return &testEnv{
		clock:  clock,
		state:  state,
		oracle: fake,
		auth:   auth,
		access: access,
		analytics: NewAnalyticsService(AnalyticsServiceParams{
			Config:        opts.analytics,
			State:         state,
			AuthService:   auth,
			AccessService: access,
		}),
		activity:  NewActivityService(ActivityServiceParams{State: state}),
		datasets:  NewDatasetService(DatasetServiceParams{Config: opts.datasets, State: state, AccessService: access}),
		producers: NewProducerService(ProducerServiceParams{State: state}),
		entries:   NewEntryService(EntryServiceParams{State: state}),
	}
}

func (e *testEnv) createDataset(t *testing.T, owner objects.Identity) objects.DatasetID {
	t.Helper()

	ds, err := e.datasets.CreateDataset(t.Context(), owner, objects.DatasetCreateRequest{Name: "survey"})
	require.NoError(t, err)

	return ds.ID
}

func strPtr(s string) *string {
	return &s
}
