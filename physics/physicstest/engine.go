// Package physicstest provides a scriptable physics.Engine for tests.
package physicstest

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/tankgame/physics"
)

// Engine is an in-memory physics.Engine. Bodies integrate their velocity
// and forces on Step but never collide; tests script contacts with Begin
// and End.
type Engine struct {
	bodies map[physics.BodyID]*Body
	shapes map[physics.ShapeID]*Shape

	nextBody  physics.BodyID
	nextShape physics.ShapeID

	begins []physics.ContactBegin
	ends   []physics.ContactEnd

	touching map[[2]physics.ShapeID]struct{}

	Gravity      cp.Vector
	Steps        int
	LastDt       float64
	LastSubsteps int
}

type Body struct {
	Def     physics.BodyDef
	Pos     cp.Vector
	Angle   float64
	Vel     cp.Vector
	AngVel  float64
	Force   cp.Vector
	Torque  float64
	MassVal float64
	Shapes  []physics.ShapeID
}

type Shape struct {
	Body   physics.BodyID
	Def    physics.ShapeDef
	Kind   string
	Width  float64
	Height float64
	Radius float64
	Offset cp.Vector
	Verts  []cp.Vector
}

func New() *Engine {
	return &Engine{
		bodies:   make(map[physics.BodyID]*Body),
		shapes:   make(map[physics.ShapeID]*Shape),
		touching: make(map[[2]physics.ShapeID]struct{}),
	}
}

func (e *Engine) CreateBody(def physics.BodyDef) physics.BodyID {
	e.nextBody++
	e.bodies[e.nextBody] = &Body{
		Def:     def,
		Pos:     def.Position,
		Angle:   def.Angle,
		Vel:     def.LinearVelocity,
		AngVel:  def.AngularVelocity,
		MassVal: 1,
	}
	return e.nextBody
}

// DestroyBody queues an end event for every contact the body's shapes are
// part of, the way a real engine reports separations on removal.
func (e *Engine) DestroyBody(id physics.BodyID) {
	b, ok := e.bodies[id]
	if !ok {
		return
	}
	for _, sid := range b.Shapes {
		for pair := range e.touching {
			if pair[0] == sid || pair[1] == sid {
				delete(e.touching, pair)
				e.ends = append(e.ends, physics.ContactEnd{ShapeA: pair[0], ShapeB: pair[1]})
			}
		}
		delete(e.shapes, sid)
	}
	delete(e.bodies, id)
}

func (e *Engine) BodyValid(id physics.BodyID) bool {
	_, ok := e.bodies[id]
	return ok
}

func (e *Engine) UserData(id physics.BodyID) uint64 {
	if b, ok := e.bodies[id]; ok {
		return b.Def.UserData
	}
	return 0
}

// Body exposes the stored state of a body, or nil.
func (e *Engine) Body(id physics.BodyID) *Body {
	return e.bodies[id]
}

// Shape exposes the stored state of a shape, or nil.
func (e *Engine) Shape(id physics.ShapeID) *Shape {
	return e.shapes[id]
}

func (e *Engine) BodyCount() int {
	return len(e.bodies)
}

func (e *Engine) add(body physics.BodyID, s *Shape) physics.ShapeID {
	b, ok := e.bodies[body]
	if !ok {
		panic(fmt.Sprintf("physicstest: unknown body %d", body))
	}
	s.Body = body
	e.nextShape++
	e.shapes[e.nextShape] = s
	b.Shapes = append(b.Shapes, e.nextShape)
	return e.nextShape
}

func (e *Engine) AddBox(body physics.BodyID, def physics.ShapeDef, width, height, radius float64) physics.ShapeID {
	id := e.add(body, &Shape{Def: def, Kind: "box", Width: width, Height: height, Radius: radius})
	if b := e.bodies[body]; b.Def.Type == physics.Dynamic && def.Density > 0 {
		b.MassVal = e.mass(body)
	}
	return id
}

func (e *Engine) AddCircle(body physics.BodyID, def physics.ShapeDef, radius float64, offset cp.Vector) physics.ShapeID {
	return e.add(body, &Shape{Def: def, Kind: "circle", Radius: radius, Offset: offset})
}

func (e *Engine) AddPolygon(body physics.BodyID, def physics.ShapeDef, verts []cp.Vector, radius float64) physics.ShapeID {
	return e.add(body, &Shape{Def: def, Kind: "polygon", Verts: append([]cp.Vector(nil), verts...), Radius: radius})
}

// mass sums density*area over the box shapes of a body.
func (e *Engine) mass(body physics.BodyID) float64 {
	m := 0.0
	for _, sid := range e.bodies[body].Shapes {
		s := e.shapes[sid]
		if s.Kind == "box" {
			m += s.Def.Density * s.Width * s.Height
		}
	}
	if m == 0 {
		return 1
	}
	return m
}

func (e *Engine) ShapeValid(id physics.ShapeID) bool {
	_, ok := e.shapes[id]
	return ok
}

func (e *Engine) BodyOf(id physics.ShapeID) physics.BodyID {
	if s, ok := e.shapes[id]; ok {
		return s.Body
	}
	return 0
}

func (e *Engine) Step(dt float64, substeps int) {
	e.Steps++
	e.LastDt = dt
	e.LastSubsteps = substeps
	for _, b := range e.bodies {
		if b.Def.Type == physics.Static {
			continue
		}
		if b.Def.Type == physics.Dynamic {
			b.Vel = b.Vel.Add(b.Force.Mult(dt / b.MassVal))
			b.AngVel += b.Torque * dt / b.MassVal
		}
		b.Pos = b.Pos.Add(b.Vel.Mult(dt))
		b.Angle += b.AngVel * dt
		b.Force = cp.Vector{}
		b.Torque = 0
	}
}

func (e *Engine) SetGravity(g cp.Vector) { e.Gravity = g }

func (e *Engine) Pose(id physics.BodyID) (cp.Vector, float64) {
	if b, ok := e.bodies[id]; ok {
		return b.Pos, b.Angle
	}
	return cp.Vector{}, 0
}

func (e *Engine) Velocity(id physics.BodyID) (cp.Vector, float64) {
	if b, ok := e.bodies[id]; ok {
		return b.Vel, b.AngVel
	}
	return cp.Vector{}, 0
}

func (e *Engine) SetPose(id physics.BodyID, pos cp.Vector, angle float64) {
	if b, ok := e.bodies[id]; ok {
		b.Pos, b.Angle = pos, angle
	}
}

func (e *Engine) SetVelocity(id physics.BodyID, linear cp.Vector, angular float64) {
	if b, ok := e.bodies[id]; ok {
		b.Vel, b.AngVel = linear, angular
	}
}

func (e *Engine) ApplyForce(id physics.BodyID, force cp.Vector) {
	if b, ok := e.bodies[id]; ok {
		b.Force = b.Force.Add(force)
	}
}

func (e *Engine) ApplyTorque(id physics.BodyID, torque float64) {
	if b, ok := e.bodies[id]; ok {
		b.Torque += torque
	}
}

func (e *Engine) Mass(id physics.BodyID) float64 {
	if b, ok := e.bodies[id]; ok && b.Def.Type == physics.Dynamic {
		return b.MassVal
	}
	return 0
}

// Begin queues a begin contact between two shapes.
func (e *Engine) Begin(a, b physics.ShapeID, normal cp.Vector, points ...cp.Vector) {
	e.touching[[2]physics.ShapeID{a, b}] = struct{}{}
	e.begins = append(e.begins, physics.ContactBegin{
		ShapeA: a,
		ShapeB: b,
		Points: points,
		Normal: normal,
	})
}

// End queues an end contact between two shapes.
func (e *Engine) End(a, b physics.ShapeID) {
	delete(e.touching, [2]physics.ShapeID{a, b})
	e.ends = append(e.ends, physics.ContactEnd{ShapeA: a, ShapeB: b})
}

func (e *Engine) DrainBeginContacts() []physics.ContactBegin {
	out := e.begins
	e.begins = nil
	return out
}

func (e *Engine) DrainEndContacts() []physics.ContactEnd {
	out := e.ends
	e.ends = nil
	return out
}

func (e *Engine) InContact(a, b physics.BodyID) bool {
	for pair := range e.touching {
		x, y := e.BodyOf(pair[0]), e.BodyOf(pair[1])
		if (x == a && y == b) || (x == b && y == a) {
			return true
		}
	}
	return false
}

var _ physics.Engine = (*Engine)(nil)
