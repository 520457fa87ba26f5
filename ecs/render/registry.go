package render

import (
	"image"

	"github.com/cespare/xxhash/v2"
	"github.com/hajimehoshi/ebiten/v2"
)

type texture struct {
	src image.Image
	img *ebiten.Image
}

// Textures converts decoded fill images into GPU images once per reference.
// It must only be used from the draw goroutine.
type Textures struct {
	entries map[uint64]texture
}

func NewTextures() *Textures {
	return &Textures{entries: make(map[uint64]texture)}
}

// Get returns the texture for ref, converting src when it is new or changed.
func (t *Textures) Get(ref string, src image.Image) *ebiten.Image {
	if t == nil || src == nil {
		return nil
	}
	key := xxhash.Sum64String(ref)
	if cached, ok := t.entries[key]; ok && cached.src == src {
		return cached.img
	}
	if img, ok := src.(*ebiten.Image); ok {
		t.entries[key] = texture{src: src, img: img}
		return img
	}
	img := ebiten.NewImageFromImage(src)
	if old, ok := t.entries[key]; ok && old.img != nil {
		if _, shared := old.src.(*ebiten.Image); !shared {
			old.img.Deallocate()
		}
	}
	t.entries[key] = texture{src: src, img: img}
	return img
}

// Retain drops every texture whose reference is not in live.
func (t *Textures) Retain(live map[string]struct{}) {
	if t == nil {
		return
	}
	keep := make(map[uint64]struct{}, len(live))
	for ref := range live {
		keep[xxhash.Sum64String(ref)] = struct{}{}
	}
	for key, tex := range t.entries {
		if _, ok := keep[key]; ok {
			continue
		}
		if _, shared := tex.src.(*ebiten.Image); !shared && tex.img != nil {
			tex.img.Deallocate()
		}
		delete(t.entries, key)
	}
}

func (t *Textures) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
