package export

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/entity"
	"github.com/milk9111/brushtoy/physics"
	"github.com/milk9111/brushtoy/physics/physicstest"
	"github.com/milk9111/brushtoy/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		Width:          800,
		Height:         600,
		Background:     color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		PlaneColor:     color.NRGBA{A: 0xff},
		StrokeWidth:    3,
		ParticleColor:  color.NRGBA{R: 0xff, A: 0xff},
		ParticleRadius: 2,
	}
}

func boardWorld(t *testing.T) *ecs.World {
	t.Helper()
	w := ecs.NewWorld()
	w.SetSolver(physicstest.New())
	_, err := entity.SpawnPlanes(w, 800, 600)
	require.NoError(t, err)

	for i, kind := range shape.Kinds() {
		opts := entity.DefaultBrushOptions()
		opts.Shape = kind
		opts.X, opts.Y = float64(150+200*i), 300
		opts.Angle = 0.3 * float64(i)
		_, err := entity.SpawnBrush(w, opts)
		require.NoError(t, err)
	}
	_, err = entity.SpawnParticle(w, entity.ParticleOptions{Position: physics.Vec{X: 400, Y: 100}, Radius: 3, Mass: 1})
	require.NoError(t, err)
	return w
}

func TestWritePDF(t *testing.T) {
	w := boardWorld(t)

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, w, testOptions()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWritePDFWithFillImage(t *testing.T) {
	w := boardWorld(t)
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		img.Set(x, 0, color.NRGBA{G: 0xff, A: 0xff})
	}
	b := entity.Brushes(w)[1]
	require.NoError(t, b.ApplyFillImage("green.png", img, true))

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, w, testOptions()))
	assert.Contains(t, buf.String(), "/Subtype /Image")
}

func TestWritePDFRejectsEmptyPage(t *testing.T) {
	opts := testOptions()
	opts.Width = 0
	assert.Error(t, WritePDF(&bytes.Buffer{}, ecs.NewWorld(), opts))
}

func TestSaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.pdf")
	require.NoError(t, SaveFile(path, boardWorld(t), testOptions()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be cleaned up")
}
