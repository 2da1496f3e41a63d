package biz

import (
	"time"

	"github.com/looplj/datavault/internal/pkg/xcache"
)

const (
	DefaultTokenLifetime = 3600 * time.Second
	DefaultGDPRThreshold = 5
	DefaultSampleSize    = 30
)

type AuthConfig struct {
	JWTSecret string `conf:"jwt_secret" yaml:"jwt_secret" json:"-"`

	TokenLifetime time.Duration `conf:"token_lifetime" yaml:"token_lifetime" json:"token_lifetime"`

	// EnforceTokenExpiry rejects analytics tokens past their expire_at.
	// Off by default: registered tokens stay valid until replaced.
	EnforceTokenExpiry bool `conf:"enforce_token_expiry" yaml:"enforce_token_expiry" json:"enforce_token_expiry"`

	TokenCache xcache.Config `conf:"token_cache" yaml:"token_cache" json:"token_cache"`
}

type AnalyticsConfig struct {
	GDPRThreshold uint32 `conf:"gdpr_threshold" yaml:"gdpr_threshold" json:"gdpr_threshold"`
	SampleSize    int    `conf:"sample_size" yaml:"sample_size" json:"sample_size"`
}

type DatasetConfig struct {
	EnforceImmutableSchema bool `conf:"enforce_immutable_schema" yaml:"enforce_immutable_schema" json:"enforce_immutable_schema"`
}
