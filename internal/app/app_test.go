package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haierkeys/ecrit-note-service/internal/dao"
	"github.com/haierkeys/ecrit-note-service/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(body), 0o644))
	return file
}

func TestLoadConfig_DefaultsAndOverrides(t *testing.T) {
	file := writeConfig(t, `
server:
  http-port: ":9100"
tracer:
  enabled: false
cache:
  driver: none
  list-ttl: 2m
`)

	cfg, realpath, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, file, realpath)
	assert.Equal(t, ":9100", cfg.Server.HttpPort)
	assert.Equal(t, "release", cfg.Server.RunMode)
	assert.False(t, cfg.Tracer.Enabled)
	assert.Equal(t, "none", cfg.Cache.Driver)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.True(t, cfg.Database.AutoMigrate)

	svc := cfg.ServiceConfig()
	assert.Equal(t, 2*time.Minute, svc.Cache.ListTTL)
	assert.Equal(t, 10*time.Minute, svc.Cache.NoteTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.GetTokenExpiry())
}

func TestLoadConfig_EnvOverridesSecrets(t *testing.T) {
	file := writeConfig(t, "security:\n  auth-token-key: from-file\n")
	t.Setenv(EnvAuthTokenKey, "from-env")
	t.Setenv(EnvCachePassword, "redis-secret")

	cfg, _, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Security.AuthTokenKey)
	assert.Equal(t, "redis-secret", cfg.Cache.Password)
}

func TestLoadConfig_DotEnvNextToConfig(t *testing.T) {
	file := writeConfig(t, "log:\n  file: \"\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(file), ".env"), []byte(EnvDatabasePassword+"=dotenv-pass\n"), 0o644))
	t.Setenv(EnvDatabasePassword, "")
	require.NoError(t, os.Unsetenv(EnvDatabasePassword))

	cfg, _, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-pass", cfg.Database.Password)
	assert.Equal(t, "", cfg.Log.File)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewApp_WiresServices(t *testing.T) {
	file := writeConfig(t, "database:\n  path: \":memory:\"\n")
	cfg, _, err := LoadConfig(file)
	require.NoError(t, err)

	db, err := dao.NewDBEngineWithConfig(*cfg.DaoDatabaseConfig(), zap.NewNop())
	require.NoError(t, err)

	a, err := NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	assert.NotNil(t, a.CacheSweeper())

	ctx := context.Background()
	n, err := a.NoteService.Create(ctx, "u1", &dto.NoteCreateRequest{Title: "Hello"})
	require.NoError(t, err)
	got, err := a.NoteService.Get(ctx, "u1", n.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Slug)

	require.NoError(t, a.Shutdown(ctx))
	assert.True(t, a.IsShuttingDown())
	assert.NoError(t, a.Shutdown(ctx))
}

func TestNewApp_RejectsUnknownCacheDriver(t *testing.T) {
	file := writeConfig(t, "database:\n  path: \":memory:\"\ncache:\n  driver: memcached\n")
	cfg, _, err := LoadConfig(file)
	require.NoError(t, err)

	db, err := dao.NewDBEngineWithConfig(*cfg.DaoDatabaseConfig(), zap.NewNop())
	require.NoError(t, err)

	_, err = NewApp(cfg, zap.NewNop(), db)
	assert.Error(t, err)
}
