// Package world composes the entity registry, the physics engine and the
// gameplay systems into one steppable simulation.
package world

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/physics"
)

const DefaultSubsteps = 4

// System runs once per update after physics and contact dispatch.
type System interface {
	Update(w *World, dt float64)
}

// Attacher is implemented by systems that register listeners or hooks when
// they join a world.
type Attacher interface {
	Attach(w *World)
}

// Canvas draws the world in layers.
type Canvas interface {
	DrawMap(w *World)
	DrawTanks(w *World)
	DrawProjectiles(w *World)
	DrawParticles(w *World)
	DrawPhysicsDebug(w *World)
}

type Option func(*World)

func WithLogger(log *zap.Logger) Option {
	return func(w *World) {
		if log != nil {
			w.log = log
		}
	}
}

// WithSubsteps sets how many substeps each update splits the step into.
func WithSubsteps(n int) Option {
	return func(w *World) {
		if n > 0 {
			w.substeps = n
		}
	}
}

func WithSystems(systems ...System) Option {
	return func(w *World) {
		w.pending = append(w.pending, systems...)
	}
}

type World struct {
	registry *ecs.Registry
	engine   physics.Engine
	bridge   *PhysicsBridge
	contacts *ContactDispatcher

	systems []System
	pending []System

	substeps  int
	debugDraw bool
	frame     uint64

	log     *zap.Logger
	session string
}

func New(engine physics.Engine, opts ...Option) *World {
	w := &World{
		registry: ecs.NewRegistry(),
		engine:   engine,
		substeps: DefaultSubsteps,
		log:      zap.NewNop(),
		session:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With(zap.String("session", w.session))

	engine.SetGravity(cp.Vector{})
	w.bridge = newPhysicsBridge(w.registry, engine)
	w.contacts = newContactDispatcher(w.registry, engine, w.bridge, w.log.Named("contacts"))

	pending := w.pending
	w.pending = nil
	for _, s := range pending {
		w.AddSystem(s)
	}
	w.log.Debug("world created", zap.Int("substeps", w.substeps), zap.Int("systems", len(w.systems)))
	return w
}

func (w *World) Registry() *ecs.Registry      { return w.registry }
func (w *World) Engine() physics.Engine       { return w.engine }
func (w *World) Bridge() *PhysicsBridge       { return w.bridge }
func (w *World) Contacts() *ContactDispatcher { return w.contacts }
func (w *World) Logger() *zap.Logger          { return w.log }
func (w *World) Session() string              { return w.session }
func (w *World) Frame() uint64                { return w.frame }
func (w *World) Systems() []System            { return append([]System(nil), w.systems...) }
func (w *World) SetPhysicsDebugDraw(on bool)  { w.debugDraw = on }
func (w *World) PhysicsDebugDraw() bool       { return w.debugDraw }

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if s == nil {
		return
	}
	w.systems = append(w.systems, s)
	if a, ok := s.(Attacher); ok {
		a.Attach(w)
	}
}

// Update advances the world by dt: step, contacts, component sync, systems,
// then deferred destruction.
func (w *World) Update(dt float64) {
	w.frame++
	w.engine.Step(dt, w.substeps)
	w.contacts.DispatchBegin()
	w.contacts.DispatchEnd()
	w.bridge.UpdateComponents()
	for _, s := range w.systems {
		s.Update(w, dt)
	}
	w.registry.Flush()
}

func (w *World) Render(c Canvas) {
	c.DrawMap(w)
	c.DrawTanks(w)
	c.DrawProjectiles(w)
	c.DrawParticles(w)
	if w.debugDraw {
		c.DrawPhysicsDebug(w)
	}
}

// Close destroys every entity, releasing the assets their components hold.
// It panics if a body outlives its entity.
func (w *World) Close() {
	n := 0
	for _, e := range w.registry.Entities() {
		if w.registry.Destroy(e) {
			n++
		}
	}
	if left := w.bridge.BodyCount(); left != 0 {
		panic(fmt.Sprintf("world: %d physics bodies left after close", left))
	}
	w.log.Debug("world closed", zap.Int("entities", n), zap.Int("dropped_contacts", w.contacts.Dropped()))
}
