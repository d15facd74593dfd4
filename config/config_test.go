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
	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "./data", cfg.Data.Path)
	assert.Equal(t, "sqlite", cfg.Database.Mode)
	assert.Equal(t, time.Hour, cfg.Database.MySQLMaxLife)
	assert.Equal(t, 50*time.Millisecond, cfg.Game.TickInterval())
	assert.True(t, cfg.Game.PercentageModifiers)
	assert.Equal(t, 70.0, cfg.Game.RegenPercent)
	assert.Equal(t, 0.3, cfg.Game.HitDelay)
	assert.Equal(t, "unarmed", cfg.Game.DefaultWeapon)
	assert.Equal(t, 5.0, cfg.AI.ChaseDistance)
	assert.Equal(t, 1.5, cfg.AI.WaypointDwell)
	assert.Equal(t, "db", cfg.Saving.Store)
	assert.Equal(t, 5*time.Minute, cfg.Saving.AutosaveInterval)
	assert.Equal(t, 12*time.Hour, cfg.Security.JWTTTLH)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
game:
  tick_ms: 20
  percentage_modifiers: false
ai:
  chase_distance: 8
saving:
  store: cache
  autosave_interval: 0s
security:
  admin_cidrs: ["127.0.0.1/32"]
`))
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, cfg.Game.TickInterval())
	assert.False(t, cfg.Game.PercentageModifiers)
	assert.Equal(t, 8.0, cfg.AI.ChaseDistance)
	assert.Equal(t, 3.0, cfg.AI.SuspicionTime)
	assert.Equal(t, "cache", cfg.Saving.Store)
	assert.Zero(t, cfg.Saving.AutosaveInterval)
	assert.Equal(t, []string{"127.0.0.1/32"}, cfg.Security.AdminCIDRs)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
