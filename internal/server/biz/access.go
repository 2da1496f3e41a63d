package biz

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"golang.org/x/sync/singleflight"

	"github.com/looplj/datavault/internal/log"
	"github.com/looplj/datavault/internal/metrics"
	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/oracle"
	"github.com/looplj/datavault/internal/pkg/xcache"
)

type AccessServiceParams struct {
	fx.In

	Oracle       oracle.Oracle
	OracleConfig oracle.Config
	Metrics      *metrics.Instruments `optional:"true"`
}

// AccessService folds oracle grant records into one AccessGrant. It never returns an error:
// any oracle failure is reported as an empty grant.
type AccessService struct {
	oracle  oracle.Oracle
	cache   xcache.Cache[objects.AccessGrant]
	metrics *metrics.Instruments
	group   singleflight.Group
}

func NewAccessService(params AccessServiceParams) (*AccessService, error) {
	cache, err := xcache.NewFromConfig[objects.AccessGrant](params.OracleConfig.Cache, "access_grant")
	if err != nil {
		return nil, fmt.Errorf("failed to build grant cache: %w", err)
	}

	return &AccessService{
		oracle:  params.Oracle,
		cache:   cache,
		metrics: params.Metrics,
	}, nil
}

func grantCacheKey(datasetID objects.DatasetID, identity objects.Identity) string {
	return fmt.Sprintf("%d:%s", datasetID, identity)
}

func datasetTag(datasetID objects.DatasetID) string {
	return fmt.Sprintf("dataset:%d", datasetID)
}

// FetchAccessGrant returns the union of allowed dimensions over all records, with the privacy flag
// of the first record.
func (s *AccessService) FetchAccessGrant(ctx context.Context, datasetID objects.DatasetID, identity objects.Identity) objects.AccessGrant {
	key := grantCacheKey(datasetID, identity)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		return cached
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		grants, err := s.oracle.GetAccessGrant(ctx, datasetID, identity)
		if err != nil {
			return nil, err
		}

		grant := FoldGrants(ctx, grants)

		if err := s.cache.Set(ctx, key, grant, xcache.WithTags(datasetTag(datasetID))); err != nil {
			log.Warn(ctx, "failed to cache access grant", log.Cause(err))
		}

		return grant, nil
	})
	if err != nil {
		log.Warn(ctx, "access oracle failed, denying access",
			log.Uint32("dataset_id", uint32(datasetID)),
			log.String("identity", identity.String()),
			log.Cause(err))
		s.metrics.RecordOracleFailure(ctx)

		return objects.AccessGrant{}
	}

	grant, _ := v.(objects.AccessGrant)

	return grant
}

// FoldGrants merges oracle records. Zero records yields an empty grant.
func FoldGrants(ctx context.Context, grants []oracle.Grant) objects.AccessGrant {
	if len(grants) == 0 {
		return objects.AccessGrant{}
	}

	allowed := lo.Uniq(lo.FlatMap(grants, func(g oracle.Grant, _ int) []objects.DimensionID {
		return g.AllowedDimensionIDs
	}))
	slices.Sort(allowed)

	gdpr := grants[0].GDPREnabled

	if lo.SomeBy(grants[1:], func(g oracle.Grant) bool { return g.GDPREnabled != gdpr }) {
		log.Warn(ctx, "access grant records disagree on gdpr flag, using the first record",
			log.Bool("gdpr_enabled", gdpr))
	}

	return objects.AccessGrant{Allowed: allowed, GDPREnabled: gdpr}
}

// InvalidateDataset drops cached grants of the dataset.
func (s *AccessService) InvalidateDataset(ctx context.Context, datasetID objects.DatasetID) {
	if err := s.cache.Invalidate(ctx, xcache.InvalidateTags(datasetTag(datasetID))); err != nil {
		log.Warn(ctx, "failed to invalidate access grants", log.Cause(err))
	}
}
