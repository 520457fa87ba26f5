// Package physicstest provides a deterministic in-memory physics.Solver for
// tests. Step only integrates velocity; contacts are injected by the test.
package physicstest

import (
	"fmt"

	"github.com/milk9111/brushtoy/physics"
)

type body struct {
	mass   float64
	state  physics.BodyState
	angVel float64
	shapes []physics.ShapeID
}

type shape struct {
	body     physics.BodyID
	def      physics.ShapeDef
	filter   physics.Filter
	vertices []physics.Vec
}

// Solver is a fake physics.Solver.
type Solver struct {
	nextID   uint64
	static   physics.BodyID
	bodies   map[physics.BodyID]*body
	shapes   map[physics.ShapeID]*shape
	pending  []physics.Contact
	contacts []physics.Contact

	// Observe, when set, is called after every mutation that touches the
	// shape set of a body, with that body's shape count.
	Observe func(body physics.BodyID, shapes int)

	Steps   int
	Removed []physics.BodyID
}

var _ physics.Solver = (*Solver)(nil)

func New() *Solver {
	s := &Solver{
		bodies: make(map[physics.BodyID]*body),
		shapes: make(map[physics.ShapeID]*shape),
	}
	s.static = s.newBody(0, physics.Vec{}, 0)
	return s
}

func (s *Solver) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *Solver) newBody(mass float64, pos physics.Vec, angle float64) physics.BodyID {
	id := physics.BodyID(s.id())
	s.bodies[id] = &body{mass: mass, state: physics.BodyState{Position: pos, Angle: angle}}
	return id
}

func (s *Solver) observe(id physics.BodyID) {
	if s.Observe != nil {
		s.Observe(id, len(s.bodies[id].shapes))
	}
}

// InjectContact queues a contact reported by the next Step.
func (s *Solver) InjectContact(c physics.Contact) {
	s.pending = append(s.pending, c)
}

// Vertices returns the live vertex buffer last pushed for a shape.
func (s *Solver) Vertices(id physics.ShapeID) []physics.Vec {
	if sh, ok := s.shapes[id]; ok {
		return append([]physics.Vec(nil), sh.vertices...)
	}
	return nil
}

// Def returns the definition a shape was built from.
func (s *Solver) Def(id physics.ShapeID) (physics.ShapeDef, bool) {
	sh, ok := s.shapes[id]
	if !ok {
		return physics.ShapeDef{}, false
	}
	return sh.def, true
}

// Shapes returns the shapes attached to a body.
func (s *Solver) Shapes(id physics.BodyID) []physics.ShapeID {
	if b, ok := s.bodies[id]; ok {
		return append([]physics.ShapeID(nil), b.shapes...)
	}
	return nil
}

// BodyCount returns the number of dynamic bodies.
func (s *Solver) BodyCount() int {
	return len(s.bodies) - 1
}

func (s *Solver) StaticBody() physics.BodyID {
	return s.static
}

func (s *Solver) CreateBody(mass float64, pos physics.Vec, angle float64) physics.BodyID {
	return s.newBody(mass, pos, angle)
}

func (s *Solver) RemoveBody(id physics.BodyID) {
	b, ok := s.bodies[id]
	if !ok {
		return
	}
	for _, sid := range append([]physics.ShapeID(nil), b.shapes...) {
		s.DetachShape(sid)
	}
	if id == s.static {
		return
	}
	delete(s.bodies, id)
	s.Removed = append(s.Removed, id)
}

func (s *Solver) HasBody(id physics.BodyID) bool {
	_, ok := s.bodies[id]
	return ok
}

func (s *Solver) Body(id physics.BodyID) (physics.BodyState, bool) {
	b, ok := s.bodies[id]
	if !ok {
		return physics.BodyState{}, false
	}
	return b.state, true
}

func (s *Solver) SetVelocity(id physics.BodyID, v physics.Vec) {
	if b, ok := s.bodies[id]; ok {
		b.state.Velocity = v
	}
}

func (s *Solver) SetAngularVelocity(id physics.BodyID, w float64) {
	if b, ok := s.bodies[id]; ok {
		b.angVel = w
	}
}

func (s *Solver) SetTransform(id physics.BodyID, pos physics.Vec, angle float64) {
	if b, ok := s.bodies[id]; ok {
		b.state.Position = pos
		b.state.Angle = angle
	}
}

func (s *Solver) AttachShape(id physics.BodyID, def physics.ShapeDef) (physics.ShapeID, error) {
	b, ok := s.bodies[id]
	if !ok {
		return 0, physics.ErrUnknownBody
	}
	if err := def.Validate(); err != nil {
		return 0, err
	}
	sid := s.add(id, b, def)
	s.observe(id)
	return sid, nil
}

func (s *Solver) add(id physics.BodyID, b *body, def physics.ShapeDef) physics.ShapeID {
	sid := physics.ShapeID(s.id())
	s.shapes[sid] = &shape{
		body:     id,
		def:      def,
		filter:   def.Filter,
		vertices: append([]physics.Vec(nil), def.Vertices...),
	}
	b.shapes = append(b.shapes, sid)
	return sid
}

func (s *Solver) ReplaceShape(old physics.ShapeID, def physics.ShapeDef) (physics.ShapeID, error) {
	sh, ok := s.shapes[old]
	if !ok {
		return 0, physics.ErrUnknownShape
	}
	if err := def.Validate(); err != nil {
		return 0, err
	}
	b := s.bodies[sh.body]
	s.remove(old)
	sid := s.add(sh.body, b, def)
	s.observe(sh.body)
	return sid, nil
}

func (s *Solver) DetachShape(id physics.ShapeID) {
	sh, ok := s.shapes[id]
	if !ok {
		return
	}
	s.remove(id)
	s.observe(sh.body)
}

func (s *Solver) remove(id physics.ShapeID) {
	sh := s.shapes[id]
	delete(s.shapes, id)
	b := s.bodies[sh.body]
	for i, sid := range b.shapes {
		if sid == id {
			b.shapes = append(b.shapes[:i], b.shapes[i+1:]...)
			break
		}
	}
}

func (s *Solver) ShapeCount(id physics.BodyID) int {
	if b, ok := s.bodies[id]; ok {
		return len(b.shapes)
	}
	return 0
}

func (s *Solver) SetFilter(id physics.ShapeID, f physics.Filter) {
	if sh, ok := s.shapes[id]; ok {
		sh.filter = f
	}
}

func (s *Solver) ShapeFilter(id physics.ShapeID) (physics.Filter, bool) {
	sh, ok := s.shapes[id]
	if !ok {
		return physics.Filter{}, false
	}
	return sh.filter, true
}

func (s *Solver) SetVertices(id physics.ShapeID, verts []physics.Vec) error {
	sh, ok := s.shapes[id]
	if !ok {
		return physics.ErrUnknownShape
	}
	if sh.def.Type != physics.ShapePolygon {
		return physics.ErrNotPolygon
	}
	if len(verts) != len(sh.def.Vertices) {
		return fmt.Errorf("set vertices: %w", physics.ErrInvalidShape)
	}
	sh.vertices = append(sh.vertices[:0], verts...)
	return nil
}

func (s *Solver) Step(dt float64) {
	s.Steps++
	for id, b := range s.bodies {
		if id == s.static {
			continue
		}
		b.state.Position = b.state.Position.Add(b.state.Velocity.Scale(dt))
		b.state.Angle += b.angVel * dt
	}
	s.contacts = s.pending
	s.pending = nil
}

func (s *Solver) Contacts() []physics.Contact {
	return append([]physics.Contact(nil), s.contacts...)
}
