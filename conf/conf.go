package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/looplj/datavault/internal/log"
	"github.com/looplj/datavault/internal/metrics"
	"github.com/looplj/datavault/internal/oracle"
	"github.com/looplj/datavault/internal/pkg/httpclient"
	"github.com/looplj/datavault/internal/server"
	"github.com/looplj/datavault/internal/server/biz"
	"github.com/looplj/datavault/internal/server/db"
	"github.com/looplj/datavault/internal/server/gc"
	"github.com/looplj/datavault/internal/server/snapshot"
)

const EnvPrefix = "DATAVAULT"

type Config struct {
	fx.Out `yaml:"-" json:"-"`

	APIServer  server.Config       `conf:"server" yaml:"server" json:"server"`
	Log        log.Config          `conf:"log" yaml:"log" json:"log"`
	Auth       biz.AuthConfig      `conf:"auth" yaml:"auth" json:"auth"`
	Oracle     oracle.Config       `conf:"oracle" yaml:"oracle" json:"oracle"`
	Analytics  biz.AnalyticsConfig `conf:"analytics" yaml:"analytics" json:"analytics"`
	Entries    db.Config           `conf:"entries" yaml:"entries" json:"entries"`
	Datasets   biz.DatasetConfig   `conf:"datasets" yaml:"datasets" json:"datasets"`
	Snapshot   snapshot.Config     `conf:"snapshot" yaml:"snapshot" json:"snapshot"`
	Metrics    metrics.Config      `conf:"metrics" yaml:"metrics" json:"metrics"`
	HTTPClient httpclient.Config   `conf:"http_client" yaml:"http_client" json:"http_client"`
	GC         gc.Config           `conf:"gc" yaml:"gc" json:"gc"`
}

// Load reads config.yml from the working directory, ./conf or /etc/datavault, then applies
// DATAVAULT_ prefixed environment variables on top. A missing file is not an error.
func Load() (Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("./conf")
	v.AddConfigPath("/etc/datavault")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "conf"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.name", "datavault")
	v.SetDefault("server.base_path", "")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.trace.trace_header", "DV-Trace-Id")
	v.SetDefault("server.trace.request_header", "DV-Request-Id")
	v.SetDefault("server.cors.enabled", false)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.cors.allowed_methods", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors.allowed_headers", []string{"Authorization", "Content-Type", "X-Analytics-Token"})
	v.SetDefault("server.cors.exposed_headers", []string{"DV-Request-Id"})
	v.SetDefault("server.cors.allow_credentials", false)
	v.SetDefault("server.cors.max_age", 12*time.Hour)

	logDefaults := log.DefaultConfig()
	v.SetDefault("log.name", logDefaults.Name)
	v.SetDefault("log.debug", logDefaults.Debug)
	v.SetDefault("log.level", logDefaults.Level)
	v.SetDefault("log.encoding", logDefaults.Encoding)
	v.SetDefault("log.output", logDefaults.Output)
	v.SetDefault("log.file.path", logDefaults.File.Path)
	v.SetDefault("log.file.max_size", logDefaults.File.MaxSize)
	v.SetDefault("log.file.max_age", logDefaults.File.MaxAge)
	v.SetDefault("log.file.max_backups", logDefaults.File.MaxBackups)
	v.SetDefault("log.file.local_time", logDefaults.File.LocalTime)
	v.SetDefault("log.file.compress", logDefaults.File.Compress)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime", biz.DefaultTokenLifetime)
	v.SetDefault("auth.enforce_token_expiry", false)
	v.SetDefault("auth.token_cache.mode", "")
	v.SetDefault("auth.token_cache.memory.expiration", 5*time.Minute)
	v.SetDefault("auth.token_cache.memory.cleanup_interval", 10*time.Minute)
	v.SetDefault("auth.token_cache.redis.addr", "")
	v.SetDefault("auth.token_cache.redis.url", "")

	v.SetDefault("oracle.type", oracle.TypeStatic)
	v.SetDefault("oracle.base_url", "")
	v.SetDefault("oracle.token", "")
	v.SetDefault("oracle.timeout", 10*time.Second)
	v.SetDefault("oracle.cache.mode", "")
	v.SetDefault("oracle.cache.memory.expiration", time.Minute)
	v.SetDefault("oracle.cache.memory.cleanup_interval", 5*time.Minute)
	v.SetDefault("oracle.cache.redis.addr", "")
	v.SetDefault("oracle.cache.redis.url", "")

	v.SetDefault("analytics.gdpr_threshold", biz.DefaultGDPRThreshold)
	v.SetDefault("analytics.sample_size", biz.DefaultSampleSize)

	v.SetDefault("entries.put_policy", string(db.PutPolicyReplace))

	v.SetDefault("datasets.enforce_immutable_schema", false)

	v.SetDefault("snapshot.enabled", false)
	v.SetDefault("snapshot.cron", "")
	v.SetDefault("snapshot.retain", 24)
	v.SetDefault("snapshot.prefix", snapshot.DefaultPrefix)
	v.SetDefault("snapshot.restore_on_start", true)
	v.SetDefault("snapshot.save_on_stop", true)
	v.SetDefault("snapshot.storage.type", snapshot.StorageFS)
	v.SetDefault("snapshot.storage.directory", "data/snapshots")
	v.SetDefault("snapshot.storage.s3.bucket_name", "")
	v.SetDefault("snapshot.storage.s3.endpoint", "")
	v.SetDefault("snapshot.storage.s3.region", "")
	v.SetDefault("snapshot.storage.s3.access_key", "")
	v.SetDefault("snapshot.storage.s3.secret_key", "")
	v.SetDefault("snapshot.storage.gcs.bucket_name", "")
	v.SetDefault("snapshot.storage.gcs.credential", "")
	v.SetDefault("snapshot.storage.webdav.url", "")
	v.SetDefault("snapshot.storage.webdav.username", "")
	v.SetDefault("snapshot.storage.webdav.password", "")
	v.SetDefault("snapshot.storage.webdav.path", "")
	v.SetDefault("snapshot.storage.webdav.insecure_skip_tls", false)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.interval", 30*time.Second)
	v.SetDefault("metrics.exporter.type", metrics.ExporterStdout)
	v.SetDefault("metrics.exporter.endpoint", "")
	v.SetDefault("metrics.exporter.insecure", false)

	v.SetDefault("http_client.timeout", 30*time.Second)
	v.SetDefault("http_client.user_agent", "")

	v.SetDefault("gc.cron", "0 * * * *")
}
