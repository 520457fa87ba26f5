package entity

import (
	"testing"

	"github.com/milk9111/brushtoy/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpread(t *testing.T) {
	tests := []struct {
		in   string
		want Spread
		err  bool
	}{
		{"", SpreadUniform, false},
		{"uniform", SpreadUniform, false},
		{"axis_cosine", SpreadAxisCosine, false},
		{"axis-cosine", SpreadAxisCosine, false},
		{" Axis_Cosine ", SpreadAxisCosine, false},
		{"sideways", SpreadUniform, true},
		{"axiscosine", SpreadUniform, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSpread(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, ErrUnknownSpread)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			back, err := ParseSpread(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, back)
		})
	}
}

func TestSpawnParticle(t *testing.T) {
	w, solver := newWorld(t)
	e, err := SpawnParticle(w, ParticleOptions{
		Position: physics.Vec{X: 5, Y: 6},
		Velocity: physics.Vec{X: 140},
		Radius:   3,
		Mass:     50,
		Seq:      1,
		Lifetime: 30,
	})
	require.NoError(t, err)
	assert.True(t, w.IsAlive(e))
	assert.Equal(t, 1, solver.BodyCount())

	assert.True(t, Despawn(w, e))
	assert.False(t, w.IsAlive(e))
	assert.Zero(t, solver.BodyCount())
}
