package biz

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/analytics"
	"github.com/looplj/datavault/internal/log"
	"github.com/looplj/datavault/internal/metrics"
	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/server/db"
)

type AnalyticsServiceParams struct {
	fx.In

	Config        AnalyticsConfig
	State         *db.State
	AuthService   *AuthService
	AccessService *AccessService
	Metrics       *metrics.Instruments `optional:"true"`
}

type AnalyticsService struct {
	config  AnalyticsConfig
	state   *db.State
	auth    *AuthService
	access  *AccessService
	metrics *metrics.Instruments
}

func NewAnalyticsService(params AnalyticsServiceParams) *AnalyticsService {
	return &AnalyticsService{
		config:  params.Config,
		state:   params.State,
		auth:    params.AuthService,
		access:  params.AccessService,
		metrics: params.Metrics,
	}
}

func (s *AnalyticsService) gdprThreshold() uint32 {
	if s.config.GDPRThreshold > 0 {
		return s.config.GDPRThreshold
	}

	return DefaultGDPRThreshold
}

func (s *AnalyticsService) sampleSize() int {
	if s.config.SampleSize > 0 {
		return s.config.SampleSize
	}

	return DefaultSampleSize
}

// GetAnalytics authorizes the query against the caller's grant, logs it and runs the pipeline.
// The grant is fetched before the store is read, so the aggregation sees entries written while
// the oracle call was in flight.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, direct objects.Identity, token *string, input objects.QueryInput) (objects.AnalyticsResult, error) {
	caller, grant, err := s.authorize(ctx, direct, token, input.DatasetID)
	if err != nil {
		s.recordOutcome(ctx, err)
		return objects.AnalyticsResult{}, err
	}

	allowed := grant.AllowedSet()
	requested := lo.Uniq(append(append([]objects.DimensionID{}, input.Attributes...), input.Metrics...))

	denied := lo.Filter(requested, func(id objects.DimensionID, _ int) bool {
		_, ok := allowed[id]
		return !ok
	})
	if len(denied) > 0 {
		s.metrics.RecordQuery(ctx, metrics.OutcomeDenied)
		return objects.AnalyticsResult{}, fmt.Errorf("%w: dimensions %v", ErrAttributeAccessDenied, denied)
	}

	threshold := s.gdprThreshold()

	s.state.AppendQuery(objects.QueryRecord{
		Query:         input,
		Identity:      caller,
		State:         objects.QueryStatePending,
		GDPREnabled:   grant.GDPREnabled,
		GDPRThreshold: threshold,
	})

	entries, _ := s.state.ReadEntries(input.DatasetID, nil, nil)

	result := analytics.Run(entries, analytics.Query{
		AttributeDims: input.Attributes,
		MetricDims:    input.Metrics,
		Filters:       input.Filters,
		GDPREnabled:   grant.GDPREnabled,
		GDPRThreshold: threshold,
	})

	s.metrics.RecordQuery(ctx, metrics.OutcomeOK)
	s.metrics.RecordStageSizes(ctx, result.StageSizes)

	if log.DebugEnabled(ctx) {
		log.Debug(ctx, "analytics query done",
			log.Uint32("dataset_id", uint32(input.DatasetID)),
			log.String("identity", caller.String()),
			log.Any("stage_sizes", result.StageSizes))
	}

	return result, nil
}

// DownloadDataset returns every entry projected to the caller's allowed dimensions.
func (s *AnalyticsService) DownloadDataset(ctx context.Context, direct objects.Identity, token *string, datasetID objects.DatasetID) ([]objects.DatasetEntry, error) {
	_, grant, err := s.authorize(ctx, direct, token, datasetID)
	if err != nil {
		return nil, err
	}

	entries, _ := s.state.ReadEntries(datasetID, nil, grant.Allowed)
	if entries == nil {
		entries = []objects.DatasetEntry{}
	}

	return entries, nil
}

// SampleDataset returns the newest entries, unprojected, up to the configured sample size.
func (s *AnalyticsService) SampleDataset(_ context.Context, datasetID objects.DatasetID) []objects.DatasetEntry {
	limit := s.sampleSize()

	entries, _ := s.state.ReadEntries(datasetID, &limit, nil)
	if entries == nil {
		entries = []objects.DatasetEntry{}
	}

	return entries
}

// AuthorizedColumns returns the caller's grant on the dataset.
func (s *AnalyticsService) AuthorizedColumns(ctx context.Context, direct objects.Identity, token *string, datasetID objects.DatasetID) (objects.AccessGrant, error) {
	caller, err := s.auth.ResolveCaller(ctx, direct, token)
	if err != nil {
		return objects.AccessGrant{}, err
	}

	grant := s.access.FetchAccessGrant(ctx, datasetID, caller)
	if grant.Allowed == nil {
		grant.Allowed = []objects.DimensionID{}
	}

	return grant, nil
}

func (s *AnalyticsService) authorize(ctx context.Context, direct objects.Identity, token *string, datasetID objects.DatasetID) (objects.Identity, objects.AccessGrant, error) {
	caller, err := s.auth.ResolveCaller(ctx, direct, token)
	if err != nil {
		return "", objects.AccessGrant{}, err
	}

	grant := s.access.FetchAccessGrant(ctx, datasetID, caller)
	if grant.Empty() {
		return "", objects.AccessGrant{}, ErrNoEntitlement
	}

	return caller, grant, nil
}

func (s *AnalyticsService) recordOutcome(ctx context.Context, err error) {
	switch {
	case errors.Is(err, ErrNoEntitlement):
		s.metrics.RecordQuery(ctx, metrics.OutcomeNoEntitled)
	default:
		s.metrics.RecordQuery(ctx, metrics.OutcomeUnauthorized)
	}
}
