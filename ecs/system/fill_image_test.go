package system

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/milk9111/brushtoy/ecs"
	"github.com/milk9111/brushtoy/ecs/component"
	"github.com/milk9111/brushtoy/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing")

type fakeLoader struct {
	mu     sync.Mutex
	images map[string]image.Image
	calls  []string
	gate   chan struct{}
}

func (l *fakeLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	l.mu.Lock()
	l.calls = append(l.calls, ref)
	img, ok := l.images[ref]
	gate := l.gate
	l.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, errMissing
	}
	return img, nil
}

func solidImage(c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func eventTypes(evts []ecs.Event) []ecs.EventType {
	out := make([]ecs.EventType, 0, len(evts))
	for _, ev := range evts {
		out = append(out, ev.Type)
	}
	return out
}

func TestFillImageFailureChangesNothing(t *testing.T) {
	w, _ := newTestWorld(t)
	b := spawnTestBrush(t, w, "b1", shape.KindCircle, true)
	w.Events().Drain()

	before, ok := b.Frame()
	require.True(t, ok)

	sys := NewFillImageSystem(&fakeLoader{}, nil)
	defer sys.Close()

	require.NoError(t, b.SetFillImage("nope.png"))
	sys.Update(w)
	sys.Wait()
	sys.Update(w)

	after, ok := b.Frame()
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Empty(t, w.Events().Drain())
	assert.False(t, ecs.Has(w, b.Entity(), component.FillImageRequestComponent))
}

func TestFillImageSuccessAppliesOnLaterTick(t *testing.T) {
	w, _ := newTestWorld(t)
	b := spawnTestBrush(t, w, "b1", shape.KindSquare, true)
	w.Events().Drain()

	img := solidImage(color.White)
	loader := &fakeLoader{images: map[string]image.Image{"cat.png": img}}
	sys := NewFillImageSystem(loader, nil)
	defer sys.Close()

	require.NoError(t, b.SetFillImage("  cat.png "))
	sys.Update(w)

	// nothing changes on the tick the load starts
	fr, _ := b.Frame()
	assert.Nil(t, fr.FillImage)

	sys.Wait()
	sys.Update(w)

	fr, _ = b.Frame()
	assert.Equal(t, img, fr.FillImage)
	assert.Equal(t, "cat.png", fr.FillImageRef)

	evts := w.Events().Drain()
	require.Equal(t, []ecs.EventType{ecs.EventFillImageChanged}, eventTypes(evts))
	assert.Equal(t, "cat.png", evts[0].Data.(ecs.BrushEvent).Value)
}

func TestFillImageStaleCompletionDropped(t *testing.T) {
	w, _ := newTestWorld(t)
	b := spawnTestBrush(t, w, "b1", shape.KindCircle, true)
	w.Events().Drain()

	loader := &fakeLoader{
		images: map[string]image.Image{"slow.png": solidImage(color.Black)},
		gate:   make(chan struct{}),
	}
	sys := NewFillImageSystem(loader, nil)
	defer sys.Close()

	require.NoError(t, b.SetFillImage("slow.png"))
	sys.Update(w)

	// a fill color set while loading cancels the image
	require.NoError(t, b.SetFill(color.NRGBA{G: 0xff, A: 0xff}))
	close(loader.gate)
	sys.Wait()
	sys.Update(w)

	fr, _ := b.Frame()
	assert.Nil(t, fr.FillImage)
	assert.Equal(t, color.NRGBA{G: 0xff, A: 0xff}, fr.Fill)
	assert.Equal(t, []ecs.EventType{ecs.EventFillChanged}, eventTypes(w.Events().Drain()))
}

func TestFillImageRemovedBrush(t *testing.T) {
	w, _ := newTestWorld(t)
	b := spawnTestBrush(t, w, "b1", shape.KindCircle, true)

	loader := &fakeLoader{images: map[string]image.Image{"a.png": solidImage(color.White)}}
	sys := NewFillImageSystem(loader, nil)
	defer sys.Close()

	require.NoError(t, b.SetFillImage("a.png"))
	sys.Update(w)
	require.True(t, b.Remove())
	w.Events().Drain()

	sys.Wait()
	assert.NotPanics(t, func() { sys.Update(w) })
	assert.Empty(t, w.Events().Drain())
}

func TestFillImageSpawnIsQuiet(t *testing.T) {
	w, _ := newTestWorld(t)
	loader := &fakeLoader{images: map[string]image.Image{"a.png": solidImage(color.White)}}
	sys := NewFillImageSystem(loader, nil)
	defer sys.Close()

	opts := spawnOptions("b1", shape.KindBox)
	opts.FillImage = "a.png"
	b := mustSpawn(t, w, opts)
	assert.Equal(t, []ecs.EventType{ecs.EventGeometryChanged, ecs.EventBrushSpawned}, eventTypes(w.Events().Drain()))

	sys.Update(w)
	sys.Wait()
	sys.Update(w)

	fr, _ := b.Frame()
	assert.Equal(t, "a.png", fr.FillImageRef)
	assert.Empty(t, w.Events().Drain())
}

func TestFillImageWithoutLoader(t *testing.T) {
	w, _ := newTestWorld(t)
	b := spawnTestBrush(t, w, "b1", shape.KindCircle, true)
	sys := NewFillImageSystem(nil, nil)

	require.NoError(t, b.SetFillImage("a.png"))
	sys.Update(w)
	assert.False(t, ecs.Has(w, b.Entity(), component.FillImageRequestComponent))
}
