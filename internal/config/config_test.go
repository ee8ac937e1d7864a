package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supervision/internal/model"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	cfg, info, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	assert.False(t, info.Found)
	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "01/2026", cfg.Business.CurrentCycle)
	assert.Len(t, cfg.Business.Weights, 9)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "data"), cfg.DataDir())

	s := cfg.Settings()
	assert.Equal(t, model.SlotAfternoon, s.ActiveSlot)
	assert.Equal(t, 30, s.RiskPercent)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	content := `
[server]
port = 8080

[data]
data_dir = "snapshots"

[log]
level = "DEBUG"

[business]
current_cycle = "03/2026"
active_slot = "manha"
risk_percent = 40

[business.weights]
"03/2026" = 100.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("LOG_TRACING_ENABLED", "true")

	cfg, info, err := LoadConfigWithInfo(path)
	require.NoError(t, err)
	assert.True(t, info.Found)
	assert.True(t, info.PortSpecified)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Log.Tracing)
	assert.Equal(t, filepath.Join(dir, "snapshots"), cfg.DataDir())

	s := cfg.Settings()
	assert.Equal(t, model.SlotMorning, s.ActiveSlot)
	assert.Equal(t, map[string]float64{"03/2026": 100}, s.Weights)

	t.Setenv("SUPERVISION_PORT", "9090")
	cfg, _, err = LoadConfigWithInfo(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("[business]\nrisk_percent = 300\n"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)

	t.Setenv("SUPERVISION_PORT", "abc")
	_, err = LoadConfig(filepath.Join(t.TempDir(), FileName))
	assert.Error(t, err)
}

func TestEnsureDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")

	dir, err := EnsureDataDir(cfg)
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(dir, "uploads"))
}
