package main

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/brushtoy/ecs/entity"
	"github.com/milk9111/brushtoy/ecs/system"
	"github.com/milk9111/brushtoy/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usePrefabDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := prefabs.Dir
	prefabs.Dir = dir
	t.Cleanup(func() { prefabs.Dir = prev })
	return dir
}

func TestEmbeddedPrefabsMatchSystemDefaults(t *testing.T) {
	usePrefabDir(t)

	brush, err := prefabs.LoadBrushSpec()
	require.NoError(t, err)
	assert.Equal(t, system.DefaultDeformationConfig(), deformationConfig(brush))

	particles, err := prefabs.LoadParticlesSpec()
	require.NoError(t, err)
	cfg, err := particleConfig(particles)
	require.NoError(t, err)
	assert.Equal(t, system.DefaultParticleConfig(), cfg)

	world, err := prefabs.LoadWorldSpec()
	require.NoError(t, err)
	assert.Equal(t, system.DefaultRenderConfig(), renderConfig(world, particles))
}

func TestParticleConfigOverrides(t *testing.T) {
	dir := usePrefabDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, prefabs.ParticlesFile), []byte(
		"max_particles: 12\nspread: axis_cosine\nlifetime: 30\ncolor: purple\n"), 0o644))

	spec, err := prefabs.LoadParticlesSpec()
	require.NoError(t, err)
	cfg, err := particleConfig(spec)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.MaxParticles)
	assert.Equal(t, entity.SpreadAxisCosine, cfg.Spread)
	assert.Equal(t, 30, cfg.Lifetime)
	assert.Equal(t, 140.0, cfg.Speed, "absent fields keep defaults")

	rc := renderConfig(nil, spec)
	assert.Equal(t, color.NRGBA{R: 0x80, B: 0x80, A: 0xff}, rc.ParticleColor)
}

func TestParticleConfigRejectsUnknownSpread(t *testing.T) {
	_, err := particleConfig(&prefabs.ParticlesSpec{Spread: "sideways"})
	assert.ErrorIs(t, err, entity.ErrUnknownSpread)
}
