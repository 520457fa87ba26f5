package ecs

// Clock is the virtual simulation clock. It only moves when the physics step
// advances it, which keeps scheduled transitions deterministic under test.
type Clock struct {
	now  float64
	tick uint64
}

// Now returns elapsed simulated seconds.
func (c *Clock) Now() float64 {
	if c == nil {
		return 0
	}
	return c.now
}

// Tick returns the number of completed steps.
func (c *Clock) Tick() uint64 {
	if c == nil {
		return 0
	}
	return c.tick
}

// Advance moves the clock forward by one step of dt seconds.
func (c *Clock) Advance(dt float64) {
	if c == nil || dt < 0 {
		return
	}
	c.now += dt
	c.tick++
}
