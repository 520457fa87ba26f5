package physics

// Category is a collision category bit.
type Category uint32

const (
	CategoryBrush Category = 1 << iota
	CategoryPlanes
	CategoryParticles
)

// CategoryNone is the empty mask of a shape that cannot touch anything.
const CategoryNone Category = 0

func (c Category) String() string {
	switch c {
	case CategoryBrush:
		return "brush"
	case CategoryPlanes:
		return "planes"
	case CategoryParticles:
		return "particles"
	case CategoryNone:
		return "none"
	default:
		return "mixed"
	}
}

// MaskFor returns the categories a shape of category c may generate contacts
// with. Particles never touch each other and planes never touch planes.
func MaskFor(c Category) Category {
	switch c {
	case CategoryBrush:
		return CategoryBrush | CategoryPlanes | CategoryParticles
	case CategoryParticles:
		return CategoryPlanes | CategoryBrush
	case CategoryPlanes:
		return CategoryBrush | CategoryParticles
	default:
		return CategoryNone
	}
}

// Filter is the category/mask pair carried by every shape.
type Filter struct {
	Categories Category
	Mask       Category
}

// FilterFor returns the fully collidable filter for c.
func FilterFor(c Category) Filter {
	return Filter{Categories: c, Mask: MaskFor(c)}
}

// InertFilter returns a filter for c that generates no contacts at all.
func InertFilter(c Category) Filter {
	return Filter{Categories: c, Mask: CategoryNone}
}

// Inert reports whether the filter rejects every contact.
func (f Filter) Inert() bool {
	return f.Mask == CategoryNone
}

// Collides reports whether two filters accept each other. Both masks must
// include the other's category.
func (f Filter) Collides(o Filter) bool {
	return f.Categories&o.Mask != 0 && o.Categories&f.Mask != 0
}
