package world

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/ecs/component"
	"github.com/milk9111/tankgame/physics"
	"github.com/milk9111/tankgame/physics/physicstest"
)

type hull struct{}
type shell struct{}

var (
	hullComponent  = component.NewComponent[hull]()
	shellComponent = component.NewComponent[shell]()
)

func newTestWorld(t *testing.T, opts ...Option) (*World, *physicstest.Engine) {
	t.Helper()
	eng := physicstest.New()
	return New(eng, opts...), eng
}

// spawnBody creates a dynamic entity with a unit box at pos.
func spawnBody(w *World, pos cp.Vector) (ecs.Entity, physics.ShapeID) {
	r := w.Registry()
	e := r.Create()
	ecs.Add(r, e, component.TransformComponent, component.Transform{Position: pos})
	ecs.Add(r, e, component.VelocityComponent, component.Velocity{})
	ecs.Add(r, e, component.PhysicsComponent, component.Physics{Dynamic: true})
	return e, w.Bridge().AddBox(e, physics.DefaultShapeDef(), 1, 1, 0)
}

type beginCall struct {
	self, other   ecs.Entity
	point, normal cp.Vector
}

func TestBridgeAttachDetachSymmetry(t *testing.T) {
	w, eng := newTestWorld(t)
	r := w.Registry()

	e := r.Create()
	ecs.Add(r, e, component.TransformComponent, component.Transform{Position: cp.Vector{X: 1, Y: 2}, Rotation: 0.5})
	ecs.Add(r, e, component.VelocityComponent, component.Velocity{Linear: cp.Vector{X: 3}, Angular: 1})
	p := ecs.Add(r, e, component.PhysicsComponent, component.Physics{Dynamic: true, LinearDamping: 0.2})
	require.True(t, p.Body.Valid())
	id := p.Body

	body := eng.Body(id)
	require.NotNil(t, body)
	assert.Equal(t, physics.Dynamic, body.Def.Type)
	assert.Equal(t, uint64(e), body.Def.UserData)
	assert.Equal(t, 0.2, body.Def.LinearDamping)
	assert.Equal(t, cp.Vector{X: 1, Y: 2}, body.Pos)
	assert.Equal(t, 0.5, body.Angle)
	assert.Equal(t, cp.Vector{X: 3}, body.Vel)
	assert.Equal(t, e, w.Bridge().EntityOf(id))
	assert.Equal(t, 1, w.Bridge().BodyCount())

	require.True(t, ecs.Remove(r, e, component.PhysicsComponent))
	assert.Zero(t, w.Bridge().BodyCount())
	assert.Zero(t, eng.BodyCount())
	assert.False(t, eng.BodyValid(id))
	assert.Equal(t, ecs.Entity(0), w.Bridge().EntityOf(id))

	// Destroying the entity takes the body with it too.
	f, _ := spawnBody(w, cp.Vector{})
	assert.Equal(t, 1, eng.BodyCount())
	r.Destroy(f)
	assert.Zero(t, eng.BodyCount())
	assert.Zero(t, w.Bridge().BodyCount())
}

func TestBridgeStaticWithoutTransform(t *testing.T) {
	w, eng := newTestWorld(t)
	r := w.Registry()
	e := r.Create()
	p := ecs.Add(r, e, component.PhysicsComponent, component.Physics{})

	body := eng.Body(p.Body)
	require.NotNil(t, body)
	assert.Equal(t, physics.Static, body.Def.Type)
	assert.Equal(t, cp.Vector{}, body.Pos)

	// No Transform or Velocity to sync into.
	assert.NotPanics(t, func() { w.Update(1) })
}

func TestBridgeDoubleAttachPanics(t *testing.T) {
	w, _ := newTestWorld(t)
	r := w.Registry()
	e := r.Create()
	assert.Panics(t, func() {
		ecs.Add(r, e, component.PhysicsComponent, component.Physics{Body: 7})
	})
}

func TestBridgeDoubleDetachPanics(t *testing.T) {
	w, _ := newTestWorld(t)
	r := w.Registry()
	e := r.Create()
	p := ecs.Add(r, e, component.PhysicsComponent, component.Physics{Dynamic: true})
	p.Body = 0
	assert.Panics(t, func() { ecs.Remove(r, e, component.PhysicsComponent) })
}

func TestBridgeShapesNeedABody(t *testing.T) {
	w, _ := newTestWorld(t)
	e := w.Registry().Create()
	assert.Panics(t, func() { w.Bridge().AddBox(e, physics.DefaultShapeDef(), 1, 1, 0) })
}

func TestZeroForceStepKeepsTransform(t *testing.T) {
	w := New(physics.NewSpace(10))
	e, _ := spawnBody(w, cp.Vector{})

	for i := 0; i < 30; i++ {
		w.Update(1.0 / 60)
	}

	tr := ecs.MustGet(w.Registry(), e, component.TransformComponent)
	assert.Equal(t, component.Transform{}, *tr)
	w.Close()
}

func TestUpdatePullsPoseAndVelocity(t *testing.T) {
	w, eng := newTestWorld(t, WithSubsteps(2))
	r := w.Registry()
	e, _ := spawnBody(w, cp.Vector{})
	w.Bridge().SetVelocity(e, cp.Vector{X: 2}, 0)

	w.Update(0.5)

	assert.Equal(t, 2, eng.LastSubsteps)
	assert.Equal(t, cp.Vector{}, eng.Gravity)
	tr := ecs.MustGet(r, e, component.TransformComponent)
	assert.InDelta(t, 1.0, tr.Position.X, 1e-9)
	v := ecs.MustGet(r, e, component.VelocityComponent)
	assert.Equal(t, cp.Vector{X: 2}, v.Linear)
}

func TestSetAndPushTransform(t *testing.T) {
	w, eng := newTestWorld(t)
	r := w.Registry()
	e, _ := spawnBody(w, cp.Vector{})
	p := ecs.MustGet(r, e, component.PhysicsComponent)

	w.Bridge().SetTransform(e, cp.Vector{X: 4, Y: 5}, 1)
	assert.Equal(t, cp.Vector{X: 4, Y: 5}, eng.Body(p.Body).Pos)
	assert.Equal(t, cp.Vector{X: 4, Y: 5}, ecs.MustGet(r, e, component.TransformComponent).Position)

	tr := ecs.MustGet(r, e, component.TransformComponent)
	tr.Rotation = 2
	w.Bridge().PushTransform(e)
	assert.Equal(t, 2.0, eng.Body(p.Body).Angle)

	v := ecs.MustGet(r, e, component.VelocityComponent)
	v.Angular = 3
	w.Bridge().PushVelocity(e)
	assert.Equal(t, 3.0, eng.Body(p.Body).AngVel)

	plain := r.Create()
	assert.NotPanics(t, func() {
		w.Bridge().PushTransform(plain)
		w.Bridge().PushVelocity(plain)
	})
}

func TestBridgeForcesAndContactQueries(t *testing.T) {
	w, eng := newTestWorld(t)
	a, sa := spawnBody(w, cp.Vector{})
	b, sb := spawnBody(w, cp.Vector{X: 1})

	w.Bridge().ApplyForce(a, cp.Vector{X: 1})
	w.Bridge().ApplyTorque(a, 2)
	body, _ := w.Bridge().Body(a)
	assert.Equal(t, cp.Vector{X: 1}, eng.Body(body).Force)
	assert.Equal(t, 2.0, eng.Body(body).Torque)
	assert.Equal(t, 1.0, w.Bridge().Mass(a))

	assert.False(t, w.Bridge().InContact(a, b))
	eng.Begin(sa, sb, cp.Vector{X: 1})
	assert.True(t, w.Bridge().InContact(a, b))
	assert.False(t, w.Bridge().InContact(a, w.Registry().Create()))
}

func TestDoubleDispatchHasOppositeNormals(t *testing.T) {
	w, eng := newTestWorld(t)
	r := w.Registry()
	a, sa := spawnBody(w, cp.Vector{})
	b, sb := spawnBody(w, cp.Vector{X: 1})
	ecs.Add(r, a, hullComponent, hull{})
	ecs.Add(r, b, hullComponent, hull{})

	var calls []beginCall
	w.Contacts().OnBegin(func(_ *ecs.Registry, self, other ecs.Entity, point, normal cp.Vector) {
		calls = append(calls, beginCall{self, other, point, normal})
	}, hullComponent.ID())

	eng.Begin(sa, sb, cp.Vector{X: 1}, cp.Vector{X: 0.5, Y: 0}, cp.Vector{X: 0.5, Y: 1})
	w.Update(0)

	require.Len(t, calls, 2)
	assert.Equal(t, beginCall{a, b, cp.Vector{X: 0.5, Y: 0.5}, cp.Vector{X: 1}}, calls[0])
	assert.Equal(t, beginCall{b, a, cp.Vector{X: 0.5, Y: 0.5}, cp.Vector{X: -1}}, calls[1])
}

func TestSingleListenerMatchesOneSide(t *testing.T) {
	w, eng := newTestWorld(t)
	r := w.Registry()
	tank, st := spawnBody(w, cp.Vector{})
	proj, sp := spawnBody(w, cp.Vector{X: 1})
	ecs.Add(r, tank, hullComponent, hull{})
	ecs.Add(r, proj, shellComponent, shell{})

	var calls []beginCall
	var ends [][2]ecs.Entity
	w.Contacts().OnBegin(func(_ *ecs.Registry, self, other ecs.Entity, point, normal cp.Vector) {
		calls = append(calls, beginCall{self, other, point, normal})
	}, shellComponent.ID())
	w.Contacts().OnEnd(func(_ *ecs.Registry, self, other ecs.Entity) {
		ends = append(ends, [2]ecs.Entity{self, other})
	}, shellComponent.ID())

	eng.Begin(st, sp, cp.Vector{X: 1})
	w.Update(0)
	require.Len(t, calls, 1)
	assert.Equal(t, beginCall{proj, tank, cp.Vector{}, cp.Vector{X: -1}}, calls[0], "no points gives the zero point")

	eng.End(st, sp)
	w.Update(0)
	assert.Equal(t, [][2]ecs.Entity{{proj, tank}}, ends)
	assert.Zero(t, w.Contacts().Dropped())
}

func TestDestroyMidContactDropsEndEvent(t *testing.T) {
	w, eng := newTestWorld(t)
	r := w.Registry()
	a, sa := spawnBody(w, cp.Vector{})
	_, sb := spawnBody(w, cp.Vector{X: 1})

	ended := 0
	w.Contacts().AddEndListener(component.Signature{}, func(*ecs.Registry, ecs.Entity, ecs.Entity) { ended++ })

	eng.Begin(sa, sb, cp.Vector{X: 1})
	w.Update(0)

	r.Destroy(a)
	w.Update(0)
	assert.Zero(t, ended)
	assert.Equal(t, 1, w.Contacts().Dropped())

	eng.End(sb, physics.ShapeID(999))
	w.Update(0)
	assert.Equal(t, 2, w.Contacts().Dropped())
}

func TestCallbackDestroyingParticipantAbandonsEvent(t *testing.T) {
	w, eng := newTestWorld(t)
	a, sa := spawnBody(w, cp.Vector{})
	b, sb := spawnBody(w, cp.Vector{X: 1})

	var seen []ecs.Entity
	w.Contacts().AddBeginListener(component.Signature{}, func(r *ecs.Registry, self, other ecs.Entity, _, _ cp.Vector) {
		seen = append(seen, self)
		r.Destroy(other)
	})
	second := 0
	w.Contacts().AddBeginListener(component.Signature{}, func(*ecs.Registry, ecs.Entity, ecs.Entity, cp.Vector, cp.Vector) {
		second++
	})

	eng.Begin(sa, sb, cp.Vector{X: 1})
	w.Update(0)

	assert.Equal(t, []ecs.Entity{a}, seen)
	assert.Zero(t, second)
	assert.False(t, w.Registry().Alive(b))
	assert.Equal(t, 1, w.Contacts().Dropped(), "the end queued by the destroy is stale")
}

func TestDetachInCallbackAbandonsEvent(t *testing.T) {
	w, eng := newTestWorld(t)
	_, sa := spawnBody(w, cp.Vector{})
	_, sb := spawnBody(w, cp.Vector{X: 1})

	calls := 0
	w.Contacts().AddBeginListener(component.Signature{}, func(r *ecs.Registry, self, _ ecs.Entity, _, _ cp.Vector) {
		calls++
		ecs.Remove(r, self, component.PhysicsComponent)
	})

	eng.Begin(sa, sb, cp.Vector{X: 1})
	w.Update(0)
	assert.Equal(t, 1, calls)
}

func TestListenerRemoval(t *testing.T) {
	w, eng := newTestWorld(t)
	_, sa := spawnBody(w, cp.Vector{})
	_, sb := spawnBody(w, cp.Vector{X: 1})
	d := w.Contacts()

	calls := 0
	begin := d.AddBeginListener(component.Signature{}, func(*ecs.Registry, ecs.Entity, ecs.Entity, cp.Vector, cp.Vector) { calls++ })
	end := d.AddEndListener(component.Signature{}, func(*ecs.Registry, ecs.Entity, ecs.Entity) { calls++ })
	assert.False(t, begin.IsEnd())
	assert.True(t, end.IsEnd())

	nb, ne := d.Len()
	assert.Equal(t, 1, nb)
	assert.Equal(t, 1, ne)

	assert.True(t, d.Remove(begin))
	assert.False(t, d.Remove(begin))
	assert.True(t, d.Remove(end))
	assert.False(t, d.Remove(end))
	assert.False(t, d.Remove(ListenerID(12345)))
	assert.False(t, d.Remove(ListenerID(12345)|endListener))

	eng.Begin(sa, sb, cp.Vector{X: 1})
	eng.End(sa, sb)
	w.Update(0)
	assert.Zero(t, calls)
}

func TestListenerIDsWrapBelowEndTag(t *testing.T) {
	w, _ := newTestWorld(t)
	d := w.Contacts()
	d.nextID = endListener - 2

	noop := func(*ecs.Registry, ecs.Entity, ecs.Entity, cp.Vector, cp.Vector) {}
	last := d.AddBeginListener(component.Signature{}, noop)
	wrapped := d.AddBeginListener(component.Signature{}, noop)
	assert.Equal(t, endListener-1, last)
	assert.Equal(t, ListenerID(1), wrapped)
	assert.False(t, wrapped.IsEnd())

	end := d.AddEndListener(component.Signature{}, func(*ecs.Registry, ecs.Entity, ecs.Entity) {})
	assert.Equal(t, ListenerID(2)|endListener, end)

	assert.True(t, d.Remove(last))
	assert.True(t, d.Remove(wrapped))
	assert.True(t, d.Remove(end))
	nb, ne := d.Len()
	assert.Zero(t, nb)
	assert.Zero(t, ne)
}

type recordingSystem struct {
	t        *testing.T
	entity   ecs.Entity
	attached bool
	updates  int
}

func (s *recordingSystem) Attach(w *World) { s.attached = true }

func (s *recordingSystem) Update(w *World, dt float64) {
	s.updates++
	tr := ecs.MustGet(w.Registry(), s.entity, component.TransformComponent)
	assert.InDelta(s.t, dt, tr.Position.X, 1e-9, "transforms are synced before systems run")
	w.Registry().Defer(s.entity)
	assert.True(s.t, w.Registry().Alive(s.entity))
}

func TestUpdateOrder(t *testing.T) {
	sys := &recordingSystem{t: t}
	w, _ := newTestWorld(t, WithSystems(sys))
	assert.True(t, sys.attached)
	assert.Len(t, w.Systems(), 1)

	e, _ := spawnBody(w, cp.Vector{})
	sys.entity = e
	w.Bridge().SetVelocity(e, cp.Vector{X: 1}, 0)

	w.Update(0.25)
	assert.Equal(t, 1, sys.updates)
	assert.False(t, w.Registry().Alive(e), "deferred destruction is flushed after systems")
	assert.Equal(t, uint64(1), w.Frame())
}

type recordingCanvas struct{ calls []string }

func (c *recordingCanvas) DrawMap(*World)          { c.calls = append(c.calls, "map") }
func (c *recordingCanvas) DrawTanks(*World)        { c.calls = append(c.calls, "tanks") }
func (c *recordingCanvas) DrawProjectiles(*World)  { c.calls = append(c.calls, "projectiles") }
func (c *recordingCanvas) DrawParticles(*World)    { c.calls = append(c.calls, "particles") }
func (c *recordingCanvas) DrawPhysicsDebug(*World) { c.calls = append(c.calls, "debug") }

func TestRenderOrder(t *testing.T) {
	w, _ := newTestWorld(t)
	c := &recordingCanvas{}
	w.Render(c)
	assert.Equal(t, []string{"map", "tanks", "projectiles", "particles"}, c.calls)

	w.SetPhysicsDebugDraw(true)
	assert.True(t, w.PhysicsDebugDraw())
	c.calls = nil
	w.Render(c)
	assert.Equal(t, []string{"map", "tanks", "projectiles", "particles", "debug"}, c.calls)
}

type lease struct{ released *int }

func (l *lease) Release() { *l.released++ }

var leaseComponent = component.NewComponent[lease]()

func TestCloseDestroysEverything(t *testing.T) {
	w, eng := newTestWorld(t)
	n := 0
	for i := 0; i < 3; i++ {
		e, _ := spawnBody(w, cp.Vector{X: float64(i)})
		ecs.Add(w.Registry(), e, leaseComponent, lease{released: &n})
	}
	require.NotEmpty(t, w.Session())

	w.Close()
	assert.Equal(t, 3, n)
	assert.Zero(t, w.Registry().Len())
	assert.Zero(t, eng.BodyCount())
}
