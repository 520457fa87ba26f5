package component

// Particle tags a decorative contact particle. Seq is its spawn number.
type Particle struct {
	Seq uint64
}

var ParticleComponent = NewComponent[Particle]()
