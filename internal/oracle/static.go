package oracle

import (
	"context"

	"github.com/looplj/datavault/internal/objects"
)

// WildcardIdentity in a static grant matches every caller.
const WildcardIdentity = "*"

type StaticGrant struct {
	DatasetID           objects.DatasetID     `conf:"dataset_id" yaml:"dataset_id" json:"dataset_id"`
	Identity            string                `conf:"identity" yaml:"identity" json:"identity"`
	AllowedDimensionIDs []objects.DimensionID `conf:"allowed_dimension_ids" yaml:"allowed_dimension_ids" json:"allowed_dimension_ids"`
	GDPREnabled         bool                  `conf:"gdpr_enabled" yaml:"gdpr_enabled" json:"gdpr_enabled"`
}

// StaticOracle answers from a fixed grant table, in table order.
type StaticOracle struct {
	grants []StaticGrant
}

func NewStaticOracle(grants []StaticGrant) *StaticOracle {
	return &StaticOracle{grants: grants}
}

func (o *StaticOracle) GetAccessGrant(_ context.Context, datasetID objects.DatasetID, identity objects.Identity) ([]Grant, error) {
	var out []Grant

	for _, g := range o.grants {
		if g.DatasetID != datasetID {
			continue
		}

		if g.Identity != WildcardIdentity && g.Identity != identity.String() {
			continue
		}

		out = append(out, Grant{
			AllowedDimensionIDs: g.AllowedDimensionIDs,
			GDPREnabled:         g.GDPREnabled,
		})
	}

	return out, nil
}
