package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskFor(t *testing.T) {
	cases := []struct {
		name string
		cat  Category
		want Category
	}{
		{"brush", CategoryBrush, CategoryBrush | CategoryPlanes | CategoryParticles},
		{"particles", CategoryParticles, CategoryPlanes | CategoryBrush},
		{"planes", CategoryPlanes, CategoryBrush | CategoryParticles},
		{"none", CategoryNone, CategoryNone},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, MaskFor(c.cat))
		})
	}
}

func TestCategoriesAreDistinctBits(t *testing.T) {
	cats := []Category{CategoryBrush, CategoryPlanes, CategoryParticles}
	var seen Category
	for _, c := range cats {
		assert.Equal(t, 0, int(seen&c), "category %s overlaps", c)
		assert.Equal(t, c, c&-c, "category %s is not a single bit", c)
		seen |= c
	}
}

func TestFilterCollides(t *testing.T) {
	brush := FilterFor(CategoryBrush)
	particle := FilterFor(CategoryParticles)
	plane := FilterFor(CategoryPlanes)

	assert.True(t, brush.Collides(brush))
	assert.True(t, brush.Collides(particle))
	assert.True(t, particle.Collides(plane))
	assert.False(t, particle.Collides(particle), "particles never touch each other")
	assert.False(t, plane.Collides(plane))

	inert := InertFilter(CategoryBrush)
	assert.True(t, inert.Inert())
	assert.False(t, inert.Collides(brush))
	assert.False(t, brush.Collides(inert))
	assert.False(t, inert.Collides(plane))
}
