package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Mode)
	assert.Equal(t, "js", cfg.Script.Engine)
	assert.Equal(t, 8, cfg.Script.VMPoolSize)
	assert.Equal(t, 5*time.Second, cfg.Script.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Script.MemoTTL)
	assert.Equal(t, 300*time.Second, cfg.Item.DropLifetime())
	assert.Equal(t, 30*time.Second, cfg.Cache.LocalGCInterval)
	assert.Equal(t, 100000, cfg.Cache.LocalMaxEntries)
	assert.Equal(t, "mmoitems:", cfg.Cache.KeyPrefix)
	assert.Equal(t, 200*time.Millisecond, cfg.Database.SlowQuery)
	assert.Equal(t, 1024, cfg.Audit.BufferSize)
	assert.Equal(t, 100, cfg.Audit.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.Audit.FlushInterval)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
database:
  mode: mysql
  mysql_dsn: "u:p@tcp(localhost:3306)/items"
script:
  engine: expr
  expr_base: "Factor * 2"
item:
  drop_lifetime_s: 60
security:
  allowed_origins: ["https://game.example"]
`))
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Mode)
	assert.Equal(t, "u:p@tcp(localhost:3306)/items", cfg.Database.MySQLDSN)
	assert.Equal(t, "expr", cfg.Script.Engine)
	assert.Equal(t, "Factor * 2", cfg.Script.ExprBase)
	assert.NotEmpty(t, cfg.Script.ExprBonus)
	assert.Equal(t, time.Minute, cfg.Item.DropLifetime())
	assert.Equal(t, []string{"https://game.example"}, cfg.Security.AllowedOrigins)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MMOITEMS_DATABASE_MODE", "mysql")
	t.Setenv("MMOITEMS_SCRIPT_ENGINE", "expr")
	t.Setenv("MMOITEMS_SERVER_PORT", "7001")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.Mode)
	assert.Equal(t, "expr", cfg.Script.Engine)
	assert.Equal(t, 7001, cfg.Server.Port)
}
