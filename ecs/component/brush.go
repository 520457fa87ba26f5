package component

// Brush marks an entity as a user-manipulated brush.
type Brush struct {
	// ID is stable for the lifetime of the brush and addresses it on the wire.
	ID string
	// Owned brushes were created locally; only they emit replicated events.
	Owned bool
	// GraceDelay is the time in seconds a freshly built shape stays inert.
	GraceDelay float64
}

var BrushComponent = NewComponent[Brush]()
