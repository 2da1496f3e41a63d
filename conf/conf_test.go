package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/server/db"
	"github.com/looplj/datavault/internal/server/snapshot"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.APIServer.Port)
	assert.Equal(t, "datavault", cfg.APIServer.Name)
	assert.Equal(t, 30*time.Second, cfg.APIServer.RequestTimeout)
	assert.Equal(t, "DV-Trace-Id", cfg.APIServer.Trace.TraceHeader)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, time.Hour, cfg.Auth.TokenLifetime)
	assert.False(t, cfg.Auth.EnforceTokenExpiry)
	assert.Equal(t, "static", cfg.Oracle.Type)
	assert.Equal(t, uint32(5), cfg.Analytics.GDPRThreshold)
	assert.Equal(t, 30, cfg.Analytics.SampleSize)
	assert.Equal(t, db.PutPolicyReplace, cfg.Entries.PutPolicy)
	assert.False(t, cfg.Snapshot.Enabled)
	assert.Equal(t, snapshot.StorageFS, cfg.Snapshot.Storage.Type)
	assert.Equal(t, "0 * * * *", cfg.GC.CRON)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := `
server:
  port: 9100
  request_timeout: 5s
  cors:
    enabled: true
    allowed_origins:
      - https://vault.example.com
auth:
  jwt_secret: s3cret
  enforce_token_expiry: true
oracle:
  type: static
  static:
    - dataset_id: 3
      identity: "*"
      allowed_dimension_ids: [1, 2]
      gdpr_enabled: true
entries:
  put_policy: append
snapshot:
  enabled: true
  retain: 3
  storage:
    type: memory
`
	require.NoError(t, os.Mkdir(filepath.Join(dir, "conf"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conf", "config.yml"), []byte(content), 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.APIServer.Port)
	assert.Equal(t, 5*time.Second, cfg.APIServer.RequestTimeout)
	assert.True(t, cfg.APIServer.CORS.Enabled)
	assert.Equal(t, []string{"https://vault.example.com"}, cfg.APIServer.CORS.AllowedOrigins)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Auth.EnforceTokenExpiry)
	require.Len(t, cfg.Oracle.Static, 1)
	assert.Equal(t, objects.DatasetID(3), cfg.Oracle.Static[0].DatasetID)
	assert.Equal(t, []objects.DimensionID{1, 2}, cfg.Oracle.Static[0].AllowedDimensionIDs)
	assert.True(t, cfg.Oracle.Static[0].GDPREnabled)
	assert.Equal(t, db.PutPolicyAppend, cfg.Entries.PutPolicy)
	assert.True(t, cfg.Snapshot.Enabled)
	assert.Equal(t, 3, cfg.Snapshot.Retain)
	assert.Equal(t, snapshot.StorageMemory, cfg.Snapshot.Storage.Type)
	assert.Equal(t, "data/snapshots", cfg.Snapshot.Storage.Directory)
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATAVAULT_SERVER_PORT", "9200")
	t.Setenv("DATAVAULT_AUTH_TOKEN_LIFETIME", "15m")
	t.Setenv("DATAVAULT_ANALYTICS_GDPR_THRESHOLD", "10")
	t.Setenv("DATAVAULT_SERVER_CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.APIServer.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenLifetime)
	assert.Equal(t, uint32(10), cfg.Analytics.GDPRThreshold)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.APIServer.CORS.AllowedOrigins)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("server: [unterminated"), 0o600))

	_, err := Load()
	require.Error(t, err)
}
