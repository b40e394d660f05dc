package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  tick_rate: 30
  workers: 2
ik:
  iterations: 25
log:
  format: json
render:
  backend: wgpu
`), 0o644))

	t.Setenv("OXYRIG_IK_THRESHOLD", "0.05")
	t.Setenv("OXYRIG_ENGINE_WORKERS", "3")
	t.Setenv("OXYRIG_PLAYBACK_LOOP", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30.0, cfg.Engine.TickRate)
	assert.Equal(t, 3, cfg.Engine.Workers, "environment wins over the file")
	assert.Equal(t, 25, cfg.IK.Iterations)
	assert.Equal(t, 0.001, cfg.IK.Epsilon, "unset keys keep their defaults")
	assert.Equal(t, 0.05, cfg.IK.Threshold)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "wgpu", cfg.Render.Backend)
	require.NotNil(t, cfg.Playback.Loop)
	assert.False(t, *cfg.Playback.Loop)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ik:\n  iterations: 0\nrender:\n  backend: vulkan\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "ik.iterations")
	assert.ErrorContains(t, err, "render.backend")
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Engine.Profiling = true
	cfg.IK.Iterations = 40
	loop := true
	cfg.Playback.Loop = &loop

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(cfg, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Engine.TickRate = 0
	cfg.Engine.Workers = -1
	cfg.IK.Epsilon = -1
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	assert.ErrorContains(t, err, "engine.tick_rate")
	assert.ErrorContains(t, err, "engine.workers")
	assert.ErrorContains(t, err, "ik.epsilon")
	assert.ErrorContains(t, err, "log.format")
}
