package world

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/ecs/component"
	"github.com/milk9111/tankgame/physics"
)

// PhysicsBridge keeps engine bodies in lockstep with Physics components. A
// body is created when Physics is added and destroyed when it is removed,
// and the body carries its entity in its user data.
type PhysicsBridge struct {
	reg    *ecs.Registry
	engine physics.Engine
	bodies map[ecs.Entity]physics.BodyID
}

func newPhysicsBridge(reg *ecs.Registry, engine physics.Engine) *PhysicsBridge {
	b := &PhysicsBridge{
		reg:    reg,
		engine: engine,
		bodies: make(map[ecs.Entity]physics.BodyID),
	}
	reg.OnConstruct(component.PhysicsComponent.ID(), b.attach)
	reg.OnDestroy(component.PhysicsComponent.ID(), b.detach)
	return b
}

func (b *PhysicsBridge) attach(r *ecs.Registry, e ecs.Entity) {
	p := ecs.MustGet(r, e, component.PhysicsComponent)
	if p.Body.Valid() {
		panic(fmt.Sprintf("world: %s attached to a physics body twice", e))
	}

	def := physics.BodyDef{
		Type:           physics.Static,
		UserData:       uint64(e),
		LinearDamping:  p.LinearDamping,
		AngularDamping: p.AngularDamping,
	}
	if p.Dynamic {
		def.Type = physics.Dynamic
	}
	if t, ok := ecs.Get(r, e, component.TransformComponent); ok {
		def.Position = t.Position
		def.Angle = t.Rotation
	}
	if v, ok := ecs.Get(r, e, component.VelocityComponent); ok {
		def.LinearVelocity = v.Linear
		def.AngularVelocity = v.Angular
	}

	p.Body = b.engine.CreateBody(def)
	b.bodies[e] = p.Body
}

func (b *PhysicsBridge) detach(r *ecs.Registry, e ecs.Entity) {
	p := ecs.MustGet(r, e, component.PhysicsComponent)
	if !p.Body.Valid() {
		panic(fmt.Sprintf("world: %s detached from a physics body twice", e))
	}
	body := p.Body
	p.Body = 0
	delete(b.bodies, e)
	b.engine.DestroyBody(body)
}

// UpdateComponents copies poses and velocities from the engine into the
// Transform and Velocity components of every entity with a body.
func (b *PhysicsBridge) UpdateComponents() {
	for _, pt := range ecs.View2(b.reg, component.PhysicsComponent.Kind(), component.TransformComponent.Kind()) {
		pt.B.Position, pt.B.Rotation = b.engine.Pose(pt.A.Body)
	}
	for _, pv := range ecs.View2(b.reg, component.PhysicsComponent.Kind(), component.VelocityComponent.Kind()) {
		pv.B.Linear, pv.B.Angular = b.engine.Velocity(pv.A.Body)
	}
}

// SetTransform writes the Transform component and the body pose.
func (b *PhysicsBridge) SetTransform(e ecs.Entity, pos cp.Vector, rot float64) {
	t := ecs.MustGet(b.reg, e, component.TransformComponent)
	p := ecs.MustGet(b.reg, e, component.PhysicsComponent)
	t.Position, t.Rotation = pos, rot
	b.engine.SetPose(p.Body, pos, rot)
}

// SetVelocity writes the Velocity component and the body velocity.
func (b *PhysicsBridge) SetVelocity(e ecs.Entity, linear cp.Vector, angular float64) {
	v := ecs.MustGet(b.reg, e, component.VelocityComponent)
	p := ecs.MustGet(b.reg, e, component.PhysicsComponent)
	v.Linear, v.Angular = linear, angular
	b.engine.SetVelocity(p.Body, linear, angular)
}

// PushTransform copies an already changed Transform into the body.
func (b *PhysicsBridge) PushTransform(e ecs.Entity) {
	p, ok := ecs.Get(b.reg, e, component.PhysicsComponent)
	if !ok {
		return
	}
	if t, ok := ecs.Get(b.reg, e, component.TransformComponent); ok {
		b.engine.SetPose(p.Body, t.Position, t.Rotation)
	}
}

// PushVelocity copies an already changed Velocity into the body.
func (b *PhysicsBridge) PushVelocity(e ecs.Entity) {
	p, ok := ecs.Get(b.reg, e, component.PhysicsComponent)
	if !ok {
		return
	}
	if v, ok := ecs.Get(b.reg, e, component.VelocityComponent); ok {
		b.engine.SetVelocity(p.Body, v.Linear, v.Angular)
	}
}

// EntityOf returns the entity owning body, or the null entity.
func (b *PhysicsBridge) EntityOf(body physics.BodyID) ecs.Entity {
	if !b.engine.BodyValid(body) {
		return 0
	}
	return ecs.Entity(b.engine.UserData(body))
}

// Body returns the body of e.
func (b *PhysicsBridge) Body(e ecs.Entity) (physics.BodyID, bool) {
	id, ok := b.bodies[e]
	return id, ok
}

// owns reports whether e is alive and still holds body.
func (b *PhysicsBridge) owns(e ecs.Entity, body physics.BodyID) bool {
	if !b.reg.Alive(e) {
		return false
	}
	p, ok := ecs.Get(b.reg, e, component.PhysicsComponent)
	return ok && p.Body == body
}

func (b *PhysicsBridge) mustBody(e ecs.Entity) physics.BodyID {
	p := ecs.MustGet(b.reg, e, component.PhysicsComponent)
	if !p.Body.Valid() {
		panic(fmt.Sprintf("world: %s has no physics body", e))
	}
	return p.Body
}

func (b *PhysicsBridge) AddBox(e ecs.Entity, def physics.ShapeDef, width, height, radius float64) physics.ShapeID {
	return b.engine.AddBox(b.mustBody(e), def, width, height, radius)
}

func (b *PhysicsBridge) AddCircle(e ecs.Entity, def physics.ShapeDef, radius float64, offset cp.Vector) physics.ShapeID {
	return b.engine.AddCircle(b.mustBody(e), def, radius, offset)
}

func (b *PhysicsBridge) AddPolygon(e ecs.Entity, def physics.ShapeDef, verts []cp.Vector, radius float64) physics.ShapeID {
	return b.engine.AddPolygon(b.mustBody(e), def, verts, radius)
}

// ApplyForce pushes e's body at its center of gravity for the next step.
func (b *PhysicsBridge) ApplyForce(e ecs.Entity, force cp.Vector) {
	if id, ok := b.bodies[e]; ok {
		b.engine.ApplyForce(id, force)
	}
}

func (b *PhysicsBridge) ApplyTorque(e ecs.Entity, torque float64) {
	if id, ok := b.bodies[e]; ok {
		b.engine.ApplyTorque(id, torque)
	}
}

// Mass returns the mass of e's body, zero for static bodies.
func (b *PhysicsBridge) Mass(e ecs.Entity) float64 {
	if id, ok := b.bodies[e]; ok {
		return b.engine.Mass(id)
	}
	return 0
}

// InContact reports whether the bodies of x and y touch.
func (b *PhysicsBridge) InContact(x, y ecs.Entity) bool {
	bx, ok := b.bodies[x]
	if !ok {
		return false
	}
	by, ok := b.bodies[y]
	if !ok {
		return false
	}
	return b.engine.InContact(bx, by)
}

// BodyCount returns the number of bodies created through the bridge that
// still exist.
func (b *PhysicsBridge) BodyCount() int {
	return len(b.bodies)
}
