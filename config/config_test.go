package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.ini"))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 298.0, cfg.Simulation.AmbientTemperature)
	assert.Equal(t, 0.5, cfg.Grid.StepMM)
	assert.Equal(t, 0.1, cfg.Sweep.SensitivityVariation)
	assert.Equal(t, 100, cfg.Sweep.MaxSamples)
	assert.Equal(t, "", cfg.MaterialsFile)
}

func TestLoadReadsSections(t *testing.T) {
	path := writeFile(t, "config.ini", `
[server]
addr = :8081
rate_burst = 5

[simulation]
workers = 0
default_mode = thin-plate

[grid]
x_min_mm = -20
x_max_mm = 5
step_mm = 1
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Server.RateBurst)
	assert.Equal(t, "thin-plate", cfg.Simulation.DefaultMode)
	assert.Equal(t, 1, cfg.Simulation.Workers, "workers are floored at one")
	assert.Equal(t, -20.0, cfg.Grid.XMinMM)
	assert.Equal(t, 1.0, cfg.Grid.StepMM)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := writeFile(t, "config.ini", "[log]\nlevel = info\n")
	t.Setenv("WELD_SERVER_ADDR", ":7000")
	t.Setenv("WELD_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsBadGrid(t *testing.T) {
	path := writeFile(t, "config.ini", "[grid]\nx_min_mm = 10\nx_max_mm = -10\n")
	_, err := Load(path)
	assert.Error(t, err)

	path = writeFile(t, "step.ini", "[grid]\nstep_mm = 0\n")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsSweepLimit(t *testing.T) {
	path := writeFile(t, "config.ini", "[sweep]\nmax_samples = 0\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "max_samples")
}

func TestLoadRejectsPlateThickerThanGrid(t *testing.T) {
	path := writeFile(t, "config.ini", "[simulation]\nplate_thickness_mm = 12\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "plate_thickness_mm")
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, ".env", "WELD_TEST_ENV_FILE=loaded\n")
	t.Setenv("WELD_TEST_ENV_FILE", "")
	require.NoError(t, os.Unsetenv("WELD_TEST_ENV_FILE"))

	require.NoError(t, LoadEnv(path, filepath.Join(t.TempDir(), "absent.env")))
	assert.Equal(t, "loaded", os.Getenv("WELD_TEST_ENV_FILE"))
}
