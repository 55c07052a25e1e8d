package system

import (
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/tankgame/assets"
	"github.com/milk9111/tankgame/common"
	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/ecs/component"
	"github.com/milk9111/tankgame/ecs/entity"
	"github.com/milk9111/tankgame/world"
)

// ProjectileSystem counts projectile hits, removes spent projectiles and
// keeps live ones flying straight at constant speed.
type ProjectileSystem struct {
	cat   *assets.Catalog
	world *world.World

	begin world.ListenerID
	end   world.ListenerID
}

// NewProjectileSystem returns a projectile system. Impact effects are
// skipped when cat is nil.
func NewProjectileSystem(cat *assets.Catalog) *ProjectileSystem {
	return &ProjectileSystem{cat: cat}
}

func (s *ProjectileSystem) Attach(w *world.World) {
	s.world = w
	s.begin = w.Contacts().OnBegin(s.onBegin, component.ProjectileComponent.ID())
	s.end = w.Contacts().OnEnd(s.onEnd, component.ProjectileComponent.ID())
}

// Detach removes the contact listeners.
func (s *ProjectileSystem) Detach(w *world.World) {
	w.Contacts().Remove(s.begin)
	w.Contacts().Remove(s.end)
	s.world = nil
}

func (s *ProjectileSystem) onBegin(r *ecs.Registry, self, other ecs.Entity, point, _ cp.Vector) {
	p := ecs.MustGet(r, self, component.ProjectileComponent)
	if p.JustSpawned && ecs.Entity(p.Shooter) == other {
		p.InTankSpawn = true
		return
	}

	p.CollisionCount++
	if p.CollisionCount <= p.Type.MaxCollisions || r.Pending(self) {
		return
	}
	r.Defer(self)

	if s.cat == nil || !ecs.Has(r, self, component.ProjectileRenderableComponent) {
		return
	}
	t := component.Transform{Position: point}
	if tr, ok := ecs.Get(r, self, component.TransformComponent); ok {
		t.Rotation = tr.Rotation
	}
	if _, err := entity.SpawnParticle(s.world, s.cat.Impact(p.Type.ParticleType), t, entity.EffectFPS, entity.EffectScale); err != nil {
		s.world.Logger().Warn("impact effect failed", zap.Error(err))
	}
}

func (s *ProjectileSystem) onEnd(r *ecs.Registry, self, other ecs.Entity) {
	p := ecs.MustGet(r, self, component.ProjectileComponent)
	if p.InTankSpawn && ecs.Entity(p.Shooter) == other {
		p.InTankSpawn = false
	}
}

func (s *ProjectileSystem) Update(w *world.World, _ float64) {
	r := w.Registry()
	bridge := w.Bridge()
	for e, v := range ecs.View3(r, component.ProjectileComponent.Kind(), component.TransformComponent.Kind(), component.VelocityComponent.Kind()) {
		p, t, vel := v.A, v.B, v.C
		p.JustSpawned = false

		if p.Type.FixOrientation {
			t.Rotation = common.Heading(vel.Linear)
			bridge.PushTransform(e)
			vel.Angular = 0
			bridge.PushVelocity(e)
		}
		if p.Type.FixVelocity && vel.Linear.Length() > 0 {
			vel.Linear = vel.Linear.Normalize().Mult(p.InitialVelocity)
			bridge.PushVelocity(e)
		}
	}
}
