package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/looplj/datavault/conf"
	"github.com/looplj/datavault/internal/log"
	"github.com/looplj/datavault/internal/oracle"
	"github.com/looplj/datavault/internal/server"
	"github.com/looplj/datavault/internal/server/biz"
	"github.com/looplj/datavault/internal/server/snapshot"
)

func validConfig() conf.Config {
	return conf.Config{
		APIServer: server.Config{Port: 8090},
		Log:       log.DefaultConfig(),
		Auth:      biz.AuthConfig{JWTSecret: "secret"},
		Oracle:    oracle.Config{Type: oracle.TypeStatic},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*conf.Config)
		want   []string
	}{
		{name: "valid", mutate: func(*conf.Config) {}},
		{
			name:   "bad port",
			mutate: func(c *conf.Config) { c.APIServer.Port = 70000 },
			want:   []string{"server.port must be between 1 and 65535"},
		},
		{
			name:   "missing jwt secret",
			mutate: func(c *conf.Config) { c.Auth.JWTSecret = "" },
			want:   []string{"auth.jwt_secret cannot be empty"},
		},
		{
			name: "cors without origins",
			mutate: func(c *conf.Config) {
				c.APIServer.CORS.Enabled = true
			},
			want: []string{"server.cors.allowed_origins cannot be empty when CORS is enabled"},
		},
		{
			name:   "http oracle without url",
			mutate: func(c *conf.Config) { c.Oracle.Type = oracle.TypeHTTP },
			want:   []string{"oracle.base_url cannot be empty when oracle.type is http"},
		},
		{
			name: "s3 snapshot without bucket",
			mutate: func(c *conf.Config) {
				c.Snapshot.Enabled = true
				c.Snapshot.Storage.Type = snapshot.StorageS3
			},
			want: []string{"snapshot.storage.s3.bucket_name cannot be empty"},
		},
		{
			name: "disabled snapshot is not checked",
			mutate: func(c *conf.Config) {
				c.Snapshot.Storage.Type = snapshot.StorageWebDAV
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			assert.Equal(t, tt.want, validateConfig(cfg))
		})
	}
}
