package system

import (
	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/ecs/component"
	"github.com/milk9111/tankgame/world"
)

// ParticleSystem advances particle animations and removes particles that
// played their last frame.
type ParticleSystem struct{}

func NewParticleSystem() *ParticleSystem {
	return &ParticleSystem{}
}

func (s *ParticleSystem) Update(w *world.World, dt float64) {
	r := w.Registry()
	for e, p := range ecs.View(r, component.ParticleComponent.Kind()) {
		p.AnimationTime += p.FPS * dt
		if p.Frame() >= p.Textures.Get().Len() {
			r.Defer(e)
		}
	}
}
