package prefabs

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/milk9111/brushtoy/ecs/entity"
	"github.com/milk9111/brushtoy/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useDir(t *testing.T, dir string) {
	t.Helper()
	prev := Dir
	Dir = dir
	t.Cleanup(func() { Dir = prev })
}

func TestEmbeddedDefaults(t *testing.T) {
	useDir(t, t.TempDir())

	brush, err := LoadBrushSpec()
	require.NoError(t, err)
	opts, err := brush.Options()
	require.NoError(t, err)
	assert.Equal(t, shape.KindCircle, opts.Shape)
	assert.Equal(t, color.NRGBA{B: 0xff, A: 0xff}, opts.Fill)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, opts.Stroke)
	assert.Equal(t, 100.0, opts.Mass)
	assert.True(t, opts.Owned)
	assert.Equal(t, DeformationSpec{K: 0.005, Max: 2}, brush.Deformation)

	particles, err := LoadParticlesSpec()
	require.NoError(t, err)
	assert.Equal(t, 100, particles.MaxParticles)
	spread, err := particles.SpreadMode()
	require.NoError(t, err)
	assert.Equal(t, entity.SpreadUniform, spread)

	world, err := LoadWorldSpec()
	require.NoError(t, err)
	assert.Equal(t, 60, world.TPS)
	assert.Equal(t, 10, world.SpaceConfig().Iterations)
}

func TestDiskOverride(t *testing.T) {
	dir := t.TempDir()
	useDir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ParticlesFile), []byte(
		"max_particles: 12\nspread: axis-cosine\nlifetime: 30\ncolor: purple\n"), 0o644))

	spec, err := LoadParticlesSpec()
	require.NoError(t, err)
	assert.Equal(t, 12, spec.MaxParticles)
	assert.Equal(t, 30, spec.Lifetime)
	assert.Zero(t, spec.Speed, "absent fields stay zero")
	spread, err := spec.SpreadMode()
	require.NoError(t, err)
	assert.Equal(t, entity.SpreadAxisCosine, spread)
	assert.Equal(t, color.NRGBA{R: 0x80, B: 0x80, A: 0xff}, spec.Color.NRGBA)

	_, ok := ModTime("prefabs/" + ParticlesFile)
	assert.True(t, ok)
	_, ok = ModTime(BrushFile)
	assert.False(t, ok)
}

func TestBadSpecs(t *testing.T) {
	dir := t.TempDir()
	useDir(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, BrushFile), []byte("fill: not-a-color\n"), 0o644))
	_, err := LoadBrushSpec()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, BrushFile), []byte("shape: HEXAGON\n"), 0o644))
	spec, err := LoadBrushSpec()
	require.NoError(t, err)
	_, err = spec.Options()
	assert.ErrorIs(t, err, shape.ErrUnknownKind)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ParticlesFile), []byte("spread: sideways\n"), 0o644))
	_, err = LoadParticlesSpec()
	assert.ErrorIs(t, err, entity.ErrUnknownSpread)

	_, err = LoadSpec[WorldSpec]("missing.yaml")
	assert.Error(t, err)
}

func TestWatcherReportsSpecWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, WorldFile), []byte("tps: 30\n"), 0o644))

	select {
	case name := <-w.Events:
		assert.Equal(t, WorldFile, name)
	case <-time.After(5 * time.Second):
		t.Fatal("no watcher event")
	}
}
