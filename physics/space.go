package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

// Space is the Chipmunk2D backed Engine. Contacts are queued by a single
// wildcard collision handler and drained once per update.
type Space struct {
	space *cp.Space

	bodies map[BodyID]*bodyRecord
	shapes map[ShapeID]shapeRecord

	nextBody  BodyID
	nextShape ShapeID

	begins []ContactBegin
	ends   []ContactEnd
}

type bodyRecord struct {
	body   *cp.Body
	shapes []ShapeID
	tag    uint64

	// cp clears forces after every step, so forces applied between updates
	// are kept here and replayed on each substep.
	force  cp.Vector
	torque float64
}

type shapeRecord struct {
	shape *cp.Shape
	body  BodyID
}

// NewSpace returns an empty zero-gravity space. iterations <= 0 keeps the cp
// default.
func NewSpace(iterations int) *Space {
	space := cp.NewSpace()
	if iterations > 0 {
		space.Iterations = uint(iterations)
	}
	space.SetGravity(cp.Vector{})

	s := &Space{
		space:  space,
		bodies: make(map[BodyID]*bodyRecord),
		shapes: make(map[ShapeID]shapeRecord),
	}

	handler := space.NewCollisionHandler(0, 0)
	handler.BeginFunc = s.onBegin
	handler.SeparateFunc = s.onSeparate
	return s
}

// CP exposes the underlying space for debug drawing.
func (s *Space) CP() *cp.Space {
	if s == nil {
		return nil
	}
	return s.space
}

func (s *Space) onBegin(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	a, b := arb.Shapes()
	ida, oka := a.UserData.(ShapeID)
	idb, okb := b.UserData.(ShapeID)
	if !oka || !okb {
		return true
	}
	set := arb.ContactPointSet()
	points := make([]cp.Vector, 0, set.Count)
	for i := 0; i < set.Count; i++ {
		p := set.Points[i]
		points = append(points, p.PointA.Lerp(p.PointB, 0.5))
	}
	s.begins = append(s.begins, ContactBegin{
		ShapeA: ida,
		ShapeB: idb,
		Points: points,
		Normal: arb.Normal(),
	})
	return true
}

func (s *Space) onSeparate(arb *cp.Arbiter, _ *cp.Space, _ interface{}) {
	a, b := arb.Shapes()
	ida, oka := a.UserData.(ShapeID)
	idb, okb := b.UserData.(ShapeID)
	if !oka || !okb {
		return
	}
	s.ends = append(s.ends, ContactEnd{ShapeA: ida, ShapeB: idb})
}

func (s *Space) CreateBody(def BodyDef) BodyID {
	var body *cp.Body
	switch def.Type {
	case Static:
		body = cp.NewStaticBody()
	case Kinematic:
		body = cp.NewKinematicBody()
	default:
		// Mass and moment are replaced once shapes with density are added.
		body = cp.NewBody(1, 1)
	}
	s.nextBody++
	id := s.nextBody
	body.UserData = def.UserData
	body.SetPosition(def.Position)
	body.SetAngle(def.Angle)
	if def.Type != Static {
		body.SetVelocityVector(def.LinearVelocity)
		body.SetAngularVelocity(def.AngularVelocity)
	}
	if def.LinearDamping > 0 || def.AngularDamping > 0 {
		body.SetVelocityUpdateFunc(dampedVelocity(def.LinearDamping, def.AngularDamping))
	}
	s.space.AddBody(body)
	s.bodies[id] = &bodyRecord{body: body, tag: def.UserData}
	return id
}

// dampedVelocity integrates like cp and then applies per-body damping the
// way a Box2D body would: v *= 1 / (1 + dt*damping).
func dampedVelocity(linear, angular float64) cp.BodyVelocityFunc {
	return func(body *cp.Body, gravity cp.Vector, damping, dt float64) {
		cp.BodyUpdateVelocity(body, gravity, damping, dt)
		if linear > 0 {
			body.SetVelocityVector(body.Velocity().Mult(1 / (1 + dt*linear)))
		}
		if angular > 0 {
			body.SetAngularVelocity(body.AngularVelocity() / (1 + dt*angular))
		}
	}
}

// DestroyBody removes the body and its shapes. cp reports separations for
// shapes still touching something, so the end events queued here reference
// shapes that are already invalid.
func (s *Space) DestroyBody(id BodyID) {
	rec, ok := s.bodies[id]
	if !ok {
		return
	}
	for _, sid := range rec.shapes {
		sr, ok := s.shapes[sid]
		delete(s.shapes, sid)
		if ok && sr.shape.Space() != nil {
			s.space.RemoveShape(sr.shape)
		}
	}
	s.space.RemoveBody(rec.body)
	delete(s.bodies, id)
}

func (s *Space) BodyValid(id BodyID) bool {
	_, ok := s.bodies[id]
	return ok
}

func (s *Space) UserData(id BodyID) uint64 {
	if rec, ok := s.bodies[id]; ok {
		return rec.tag
	}
	return 0
}

// BodyCount returns the number of live bodies.
func (s *Space) BodyCount() int {
	return len(s.bodies)
}

func (s *Space) AddBox(body BodyID, def ShapeDef, width, height, radius float64) ShapeID {
	rec := s.mustBody(body)
	return s.addShape(body, rec, cp.NewBox(rec.body, width, height, radius), def)
}

func (s *Space) AddCircle(body BodyID, def ShapeDef, radius float64, offset cp.Vector) ShapeID {
	rec := s.mustBody(body)
	return s.addShape(body, rec, cp.NewCircle(rec.body, radius, offset), def)
}

func (s *Space) AddPolygon(body BodyID, def ShapeDef, verts []cp.Vector, radius float64) ShapeID {
	rec := s.mustBody(body)
	if len(verts) < 3 {
		panic(fmt.Sprintf("physics: polygon needs at least 3 vertices, got %d", len(verts)))
	}
	return s.addShape(body, rec, cp.NewPolyShape(rec.body, len(verts), verts, cp.NewTransformIdentity(), radius), def)
}

func (s *Space) addShape(body BodyID, rec *bodyRecord, shape *cp.Shape, def ShapeDef) ShapeID {
	s.nextShape++
	id := s.nextShape
	shape.UserData = id
	if def.Density > 0 && rec.body.GetType() == cp.BODY_DYNAMIC {
		shape.SetDensity(def.Density)
	}
	shape.SetFriction(def.Friction)
	shape.SetElasticity(def.Elasticity)
	shape.SetSensor(def.Sensor)
	shape.SetFilter(cp.ShapeFilter{
		Group:      def.Filter.Group,
		Categories: def.Filter.Categories,
		Mask:       def.Filter.Mask,
	})
	s.space.AddShape(shape)
	s.shapes[id] = shapeRecord{shape: shape, body: body}
	rec.shapes = append(rec.shapes, id)
	return id
}

func (s *Space) mustBody(id BodyID) *bodyRecord {
	rec, ok := s.bodies[id]
	if !ok {
		panic(fmt.Sprintf("physics: unknown body %d", id))
	}
	return rec
}

func (s *Space) ShapeValid(id ShapeID) bool {
	sr, ok := s.shapes[id]
	return ok && sr.shape.Space() != nil
}

func (s *Space) BodyOf(id ShapeID) BodyID {
	return s.shapes[id].body
}

// Step advances the simulation by dt split into substeps equal steps.
func (s *Space) Step(dt float64, substeps int) {
	if dt <= 0 {
		return
	}
	if substeps < 1 {
		substeps = 1
	}
	h := dt / float64(substeps)
	for i := 0; i < substeps; i++ {
		for _, rec := range s.bodies {
			if rec.force != (cp.Vector{}) || rec.torque != 0 {
				rec.body.SetForce(rec.force)
				rec.body.SetTorque(rec.torque)
			}
		}
		s.space.Step(h)
	}
	for _, rec := range s.bodies {
		rec.force = cp.Vector{}
		rec.torque = 0
	}
}

func (s *Space) SetGravity(g cp.Vector) {
	s.space.SetGravity(g)
}

func (s *Space) Pose(id BodyID) (cp.Vector, float64) {
	rec, ok := s.bodies[id]
	if !ok {
		return cp.Vector{}, 0
	}
	return rec.body.Position(), rec.body.Angle()
}

func (s *Space) Velocity(id BodyID) (cp.Vector, float64) {
	rec, ok := s.bodies[id]
	if !ok {
		return cp.Vector{}, 0
	}
	return rec.body.Velocity(), rec.body.AngularVelocity()
}

func (s *Space) SetPose(id BodyID, pos cp.Vector, angle float64) {
	rec, ok := s.bodies[id]
	if !ok {
		return
	}
	rec.body.SetPosition(pos)
	rec.body.SetAngle(angle)
}

func (s *Space) SetVelocity(id BodyID, linear cp.Vector, angular float64) {
	rec, ok := s.bodies[id]
	if !ok || rec.body.GetType() == cp.BODY_STATIC {
		return
	}
	rec.body.SetVelocityVector(linear)
	rec.body.SetAngularVelocity(angular)
}

// ApplyForce pushes at the center of gravity until the end of the next Step.
func (s *Space) ApplyForce(id BodyID, force cp.Vector) {
	rec, ok := s.bodies[id]
	if !ok || rec.body.GetType() != cp.BODY_DYNAMIC {
		return
	}
	rec.force = rec.force.Add(force)
}

func (s *Space) ApplyTorque(id BodyID, torque float64) {
	rec, ok := s.bodies[id]
	if !ok || rec.body.GetType() != cp.BODY_DYNAMIC {
		return
	}
	rec.torque += torque
}

func (s *Space) Mass(id BodyID) float64 {
	rec, ok := s.bodies[id]
	if !ok || rec.body.GetType() != cp.BODY_DYNAMIC {
		return 0
	}
	return rec.body.Mass()
}

func (s *Space) DrainBeginContacts() []ContactBegin {
	out := s.begins
	s.begins = nil
	return out
}

func (s *Space) DrainEndContacts() []ContactEnd {
	out := s.ends
	s.ends = nil
	return out
}

// InContact reports whether any shapes of a and b currently touch.
func (s *Space) InContact(a, b BodyID) bool {
	ra, ok := s.bodies[a]
	if !ok {
		return false
	}
	rb, ok := s.bodies[b]
	if !ok {
		return false
	}
	found := false
	ra.body.EachArbiter(func(arb *cp.Arbiter) {
		x, y := arb.Bodies()
		if x == rb.body || y == rb.body {
			found = true
		}
	})
	return found
}

var _ Engine = (*Space)(nil)
