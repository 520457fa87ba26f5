package component

import (
	"image"
	"image/color"
)

// Material is the visual identity of a brush. When FillImage is set it
// replaces Fill inside the silhouette.
type Material struct {
	Fill         color.NRGBA
	Stroke       color.NRGBA
	FillImage    image.Image
	FillImageRef string
}

var MaterialComponent = NewComponent[Material]()
