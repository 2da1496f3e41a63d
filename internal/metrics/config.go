package metrics

import "time"

const (
	ExporterStdout   = "stdout"
	ExporterOTLPHTTP = "otlphttp"
	ExporterOTLPGRPC = "otlpgrpc"
)

type Config struct {
	Enabled  bool           `conf:"enabled" yaml:"enabled" json:"enabled"`
	Interval time.Duration  `conf:"interval" yaml:"interval" json:"interval"`
	Exporter ExporterConfig `conf:"exporter" yaml:"exporter" json:"exporter"`
}

type ExporterConfig struct {
	Type     string            `conf:"type" yaml:"type" json:"type"`
	Endpoint string            `conf:"endpoint" yaml:"endpoint" json:"endpoint"`
	Insecure bool              `conf:"insecure" yaml:"insecure" json:"insecure"`
	Headers  map[string]string `conf:"headers" yaml:"headers" json:"headers"`
}
