// Package oracle asks the external access service which dimensions a caller may read on a dataset.
package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/pkg/httpclient"
	"github.com/looplj/datavault/internal/pkg/xcache"
)

const (
	TypeHTTP   = "http"
	TypeStatic = "static"
)

// Grant is one access record as the oracle reports it.
type Grant struct {
	AllowedDimensionIDs []objects.DimensionID `json:"allowed_dimension_ids" msgpack:"allowed_dimension_ids"`
	GDPREnabled         bool                  `json:"gdpr_enabled" msgpack:"gdpr_enabled"`
}

// Oracle returns the raw grant records of an identity on a dataset.
// Zero records is a valid answer and means no access.
type Oracle interface {
	GetAccessGrant(ctx context.Context, datasetID objects.DatasetID, identity objects.Identity) ([]Grant, error)
}

type Config struct {
	Type    string        `conf:"type" yaml:"type" json:"type"`
	BaseURL string        `conf:"base_url" yaml:"base_url" json:"base_url"`
	Token   string        `conf:"token" yaml:"token" json:"token"`
	Timeout time.Duration `conf:"timeout" yaml:"timeout" json:"timeout"`
	Static  []StaticGrant `conf:"static" yaml:"static" json:"static"`
	Cache   xcache.Config `conf:"cache" yaml:"cache" json:"cache"`
}

// New builds the oracle selected by cfg.Type.
func New(cfg Config, client *httpclient.HttpClient) (Oracle, error) {
	switch cfg.Type {
	case TypeHTTP:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("oracle base_url is required for type %q", TypeHTTP)
		}

		return NewHTTPOracle(client, cfg), nil
	case TypeStatic, "":
		return NewStaticOracle(cfg.Static), nil
	default:
		return nil, fmt.Errorf("unknown oracle type %q", cfg.Type)
	}
}
