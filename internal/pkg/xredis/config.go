package xredis

import (
	"time"
)

type Config struct {
	Addr                  string        `conf:"addr" yaml:"addr" json:"addr"`
	URL                   string        `conf:"url" yaml:"url" json:"url"`
	Username              string        `conf:"username" yaml:"username" json:"username"`
	Password              string        `conf:"password" yaml:"password" json:"password"`
	DB                    *int          `conf:"db" yaml:"db" json:"db"`
	TLS                   bool          `conf:"tls" yaml:"tls" json:"tls"`
	TLSInsecureSkipVerify bool          `conf:"tls_insecure_skip_verify" yaml:"tls_insecure_skip_verify" json:"tls_insecure_skip_verify"`
	DialTimeout           time.Duration `conf:"dial_timeout" yaml:"dial_timeout" json:"dial_timeout"`
	Expiration            time.Duration `conf:"expiration" yaml:"expiration" json:"expiration"`
}

// Configured reports whether an address or URL was supplied.
func (c Config) Configured() bool {
	return c.Addr != "" || c.URL != ""
}
