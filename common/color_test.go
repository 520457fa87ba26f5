package common

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#0000ff", color.NRGBA{B: 0xff, A: 0xff}},
		{"#FF00AA", color.NRGBA{R: 0xff, B: 0xaa, A: 0xff}},
		{"#f0a", color.NRGBA{R: 0xff, B: 0xaa, A: 0xff}},
		{"#11223344", color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}},
		{"red", color.NRGBA{R: 0xff, A: 0xff}},
		{" Blue ", color.NRGBA{B: 0xff, A: 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, in := range []string{"", "#", "#12345", "#zzzzzz", "notacolor"} {
		_, err := ParseColor(in)
		assert.ErrorIs(t, err, ErrInvalidColor, in)
	}
}

func TestHexColorRoundTrip(t *testing.T) {
	for _, in := range []string{"#0000ff", "#ff00aa", "#11223344"} {
		c, err := ParseColor(in)
		require.NoError(t, err)
		assert.Equal(t, in, HexColor(c))
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(0.2, 1, 2))
	assert.Equal(t, 2.0, Clamp(7, 1, 2))
	assert.Equal(t, 1.5, Clamp(1.5, 1, 2))
	assert.Equal(t, 5.0, Lerp(0, 10, 0.5))
}
