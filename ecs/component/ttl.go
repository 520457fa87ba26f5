package component

// TTL is a frame-based time-to-live. Entities carrying it are destroyed
// (solver body first) after Frames update ticks.
type TTL struct {
	Frames int
}

var TTLComponent = NewComponent[TTL]()
