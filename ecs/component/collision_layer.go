package component

import "github.com/milk9111/brushtoy/physics"

// CollisionLayer mirrors the category and mask currently applied to the
// entity's collision shape. An empty Mask means the shape is inert.
type CollisionLayer struct {
	Category physics.Category
	Mask     physics.Category
}

func (l CollisionLayer) Filter() physics.Filter {
	return physics.Filter{Categories: l.Category, Mask: l.Mask}
}

var CollisionLayerComponent = NewComponent[CollisionLayer]()
