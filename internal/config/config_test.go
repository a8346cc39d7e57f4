package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := LoadWith(Options{Home: home})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".strategos", "strategos.db"), cfg.Database.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "strategos:events", cfg.Events.RedisStream)
	assert.True(t, cfg.DataSources.SQLEnabled)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	home := isolate(t)
	yaml := `
database:
  path: /var/lib/strategos/plans.db
tenant:
  organization_id: org-1
  branch_id: branch-1
log:
  level: info
events:
  redis_addr: localhost:6379
`
	require.NoError(t, os.WriteFile("strategos.yaml", []byte(yaml), 0o644))
	t.Setenv("STRATEGOS_LOG_LEVEL", "debug")
	t.Setenv("STRATEGOS_TENANT_USER_ID", "user-9")

	cfg, err := LoadWith(Options{Home: home})
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/strategos/plans.db", cfg.Database.Path)
	assert.Equal(t, "org-1", cfg.Tenant.OrganizationID)
	assert.Equal(t, "user-9", cfg.Tenant.UserID)
	assert.Equal(t, "debug", cfg.Log.Level, "environment beats the file")
	assert.True(t, cfg.RedisEnabled())
}

func TestLoad_DotEnv(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("STRATEGOS_DATASOURCES_SNAPSHOT_FILE=/tmp/readings.yaml\n"), 0o644))
	t.Setenv("STRATEGOS_DATASOURCES_SNAPSHOT_FILE", "")
	os.Unsetenv("STRATEGOS_DATASOURCES_SNAPSHOT_FILE")

	cfg, err := LoadWith(Options{Home: home})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/readings.yaml", cfg.DataSources.SnapshotFile)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	home := isolate(t)
	_, err := LoadWith(Options{Home: home, ConfigFile: filepath.Join(home, "missing.yaml")})
	require.Error(t, err)
}

func TestLoad_RejectsBadLogLevel(t *testing.T) {
	home := isolate(t)
	t.Setenv("STRATEGOS_LOG_LEVEL", "loud")

	_, err := LoadWith(Options{Home: home})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}
