package physics

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

const collisionTypeAny cp.CollisionType = 1

// SpaceConfig tunes the Chipmunk space.
type SpaceConfig struct {
	Gravity    Vec
	Iterations int
	Damping    float64
}

type shapeInfo struct {
	shape *cp.Shape
	body  BodyID
	def   ShapeDef
}

// Space implements Solver on top of a Chipmunk2D space.
type Space struct {
	space *cp.Space

	nextID   uint64
	static   BodyID
	bodies   map[BodyID]*cp.Body
	bodyIDs  map[*cp.Body]BodyID
	shapes   map[ShapeID]*shapeInfo
	byBody   map[BodyID][]ShapeID
	moments  map[BodyID]float64
	contacts []Contact

	handlersReady bool
}

var _ Solver = (*Space)(nil)

// NewSpace creates a solver backed by a fresh cp.Space.
func NewSpace(cfg SpaceConfig) *Space {
	space := cp.NewSpace()
	space.Iterations = 10
	if cfg.Iterations > 0 {
		space.Iterations = uint(cfg.Iterations)
	}
	space.SetGravity(cp.Vector{X: cfg.Gravity.X, Y: cfg.Gravity.Y})
	if cfg.Damping > 0 && cfg.Damping <= 1 {
		space.SetDamping(cfg.Damping)
	}

	s := &Space{
		space:   space,
		bodies:  make(map[BodyID]*cp.Body),
		bodyIDs: make(map[*cp.Body]BodyID),
		shapes:  make(map[ShapeID]*shapeInfo),
		byBody:  make(map[BodyID][]ShapeID),
		moments: make(map[BodyID]float64),
	}
	s.static = s.register(space.StaticBody)
	s.ensureHandlers()
	return s
}

// CP exposes the underlying space for debug drawing.
func (s *Space) CP() *cp.Space {
	if s == nil {
		return nil
	}
	return s.space
}

// SetGravity changes the global gravity.
func (s *Space) SetGravity(g Vec) {
	if s == nil {
		return
	}
	s.space.SetGravity(cp.Vector{X: g.X, Y: g.Y})
}

func (s *Space) register(b *cp.Body) BodyID {
	s.nextID++
	id := BodyID(s.nextID)
	s.bodies[id] = b
	s.bodyIDs[b] = id
	return id
}

func (s *Space) StaticBody() BodyID {
	return s.static
}

func (s *Space) CreateBody(mass float64, pos Vec, angle float64) BodyID {
	if mass <= 0 {
		mass = 1
	}
	body := cp.NewBody(mass, cp.MomentForCircle(mass, 0, 1, cp.Vector{}))
	body.SetPosition(toCP(pos))
	body.SetAngle(angle)
	s.space.AddBody(body)
	return s.register(body)
}

func (s *Space) RemoveBody(id BodyID) {
	body, ok := s.bodies[id]
	if !ok {
		return
	}
	for _, sid := range append([]ShapeID(nil), s.byBody[id]...) {
		s.DetachShape(sid)
	}
	delete(s.byBody, id)
	delete(s.moments, id)
	if id == s.static {
		return
	}
	s.space.RemoveBody(body)
	delete(s.bodies, id)
	delete(s.bodyIDs, body)
}

func (s *Space) HasBody(id BodyID) bool {
	_, ok := s.bodies[id]
	return ok
}

func (s *Space) Body(id BodyID) (BodyState, bool) {
	body, ok := s.bodies[id]
	if !ok {
		return BodyState{}, false
	}
	return BodyState{
		Position: fromCP(body.Position()),
		Angle:    body.Angle(),
		Velocity: fromCP(body.Velocity()),
	}, true
}

func (s *Space) SetVelocity(id BodyID, v Vec) {
	if body, ok := s.bodies[id]; ok && id != s.static {
		body.SetVelocity(v.X, v.Y)
	}
}

func (s *Space) SetAngularVelocity(id BodyID, w float64) {
	if body, ok := s.bodies[id]; ok && id != s.static {
		body.SetAngularVelocity(w)
	}
}

func (s *Space) SetTransform(id BodyID, pos Vec, angle float64) {
	if body, ok := s.bodies[id]; ok && id != s.static {
		body.SetPosition(toCP(pos))
		body.SetAngle(angle)
	}
}

func (s *Space) AttachShape(id BodyID, def ShapeDef) (ShapeID, error) {
	body, ok := s.bodies[id]
	if !ok {
		return 0, fmt.Errorf("attach shape: %w", ErrUnknownBody)
	}
	shape, err := s.buildShape(body, def)
	if err != nil {
		return 0, fmt.Errorf("attach shape: %w", err)
	}
	s.space.AddShape(shape)
	s.updateMoment(id, body, def)
	return s.track(shape, id, def), nil
}

func (s *Space) ReplaceShape(old ShapeID, def ShapeDef) (ShapeID, error) {
	info, ok := s.shapes[old]
	if !ok {
		return 0, fmt.Errorf("replace shape: %w", ErrUnknownShape)
	}
	body := s.bodies[info.body]
	shape, err := s.buildShape(body, def)
	if err != nil {
		return 0, fmt.Errorf("replace shape: %w", err)
	}
	s.DetachShape(old)
	s.space.AddShape(shape)
	s.updateMoment(info.body, body, def)
	return s.track(shape, info.body, def), nil
}

func (s *Space) DetachShape(id ShapeID) {
	info, ok := s.shapes[id]
	if !ok {
		return
	}
	s.space.RemoveShape(info.shape)
	delete(s.shapes, id)
	ids := s.byBody[info.body]
	for i, sid := range ids {
		if sid == id {
			s.byBody[info.body] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
}

func (s *Space) ShapeCount(id BodyID) int {
	return len(s.byBody[id])
}

func (s *Space) SetFilter(id ShapeID, f Filter) {
	info, ok := s.shapes[id]
	if !ok {
		return
	}
	info.def.Filter = f
	info.shape.SetFilter(toCPFilter(f))
}

func (s *Space) ShapeFilter(id ShapeID) (Filter, bool) {
	info, ok := s.shapes[id]
	if !ok {
		return Filter{}, false
	}
	return info.def.Filter, true
}

func (s *Space) SetVertices(id ShapeID, verts []Vec) error {
	info, ok := s.shapes[id]
	if !ok {
		return ErrUnknownShape
	}
	poly, ok := info.shape.Class.(*cp.PolyShape)
	if !ok || info.def.Type != ShapePolygon {
		return ErrNotPolygon
	}
	if len(verts) != len(info.def.Vertices) {
		return fmt.Errorf("set vertices: want %d vertices, got %d: %w", len(info.def.Vertices), len(verts), ErrInvalidShape)
	}
	cpVerts := make([]cp.Vector, len(verts))
	for i, v := range verts {
		cpVerts[i] = toCP(v)
	}
	poly.SetVertsUnsafe(len(cpVerts), cpVerts, cp.NewTransformTranslate(cp.Vector{}))
	// the broad phase picks the new bounds up on the next Step
	info.shape.CacheBB()
	live := info.def
	live.Vertices = verts
	s.updateMoment(info.body, s.bodies[info.body], live)
	return nil
}

func (s *Space) Step(dt float64) {
	if dt <= 0 {
		return
	}
	s.contacts = s.contacts[:0]
	s.space.Step(dt)
}

func (s *Space) Contacts() []Contact {
	out := make([]Contact, len(s.contacts))
	copy(out, s.contacts)
	return out
}

func (s *Space) track(shape *cp.Shape, body BodyID, def ShapeDef) ShapeID {
	s.nextID++
	id := ShapeID(s.nextID)
	s.shapes[id] = &shapeInfo{shape: shape, body: body, def: def}
	s.byBody[body] = append(s.byBody[body], id)
	return id
}

func (s *Space) buildShape(body *cp.Body, def ShapeDef) (*cp.Shape, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	var shape *cp.Shape
	switch def.Type {
	case ShapeCircle:
		shape = cp.NewCircle(body, def.Radius, cp.Vector{})
	case ShapePolygon:
		verts := make([]cp.Vector, len(def.Vertices))
		for i, v := range def.Vertices {
			verts[i] = toCP(v)
		}
		shape = cp.NewPolyShapeRaw(body, len(verts), verts, 0)
	case ShapeSegment:
		shape = cp.NewSegment(body, toCP(def.A), toCP(def.B), def.Radius)
	}
	shape.SetFriction(def.Friction)
	shape.SetElasticity(def.Elasticity)
	shape.SetCollisionType(collisionTypeAny)
	shape.SetFilter(toCPFilter(def.Filter))
	return shape, nil
}

// updateMoment keeps a dynamic body's moment of inertia in line with the
// shape it carries, including the live vertices of a deformed polygon.
func (s *Space) updateMoment(id BodyID, body *cp.Body, def ShapeDef) {
	if id == s.static {
		return
	}
	mass := body.Mass()
	var moment float64
	switch def.Type {
	case ShapeCircle:
		moment = cp.MomentForCircle(mass, 0, def.Radius, cp.Vector{})
	case ShapePolygon:
		verts := make([]cp.Vector, len(def.Vertices))
		for i, v := range def.Vertices {
			verts[i] = toCP(v)
		}
		moment = cp.MomentForPoly(mass, len(verts), verts, cp.Vector{}, 0)
	default:
		return
	}
	if moment > 0 && !math.IsInf(moment, 0) {
		body.SetMoment(moment)
		s.moments[id] = moment
	}
}

func (s *Space) ensureHandlers() {
	if s.handlersReady {
		return
	}
	handler := s.space.NewCollisionHandler(collisionTypeAny, collisionTypeAny)
	handler.UserData = s
	handler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		solver, ok := userData.(*Space)
		if !ok || solver == nil {
			return true
		}
		bodyA, bodyB := arb.Bodies()
		idA, okA := solver.bodyIDs[bodyA]
		idB, okB := solver.bodyIDs[bodyB]
		if !okA || !okB {
			return true
		}
		set := arb.ContactPointSet()
		for i := 0; i < set.Count; i++ {
			solver.contacts = append(solver.contacts, Contact{A: idA, B: idB, Point: fromCP(set.Points[i].PointA)})
		}
		return true
	}
	s.handlersReady = true
}

func toCP(v Vec) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func fromCP(v cp.Vector) Vec {
	return Vec{X: v.X, Y: v.Y}
}

func toCPFilter(f Filter) cp.ShapeFilter {
	return cp.NewShapeFilter(cp.NO_GROUP, uint(f.Categories), uint(f.Mask))
}
