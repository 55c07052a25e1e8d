package entity

import (
	"fmt"

	"github.com/milk9111/tankgame/asset"
	"github.com/milk9111/tankgame/assets"
	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/ecs/component"
	"github.com/milk9111/tankgame/world"
)

// Particles spawned by gameplay play at this rate and scale.
const (
	EffectFPS   = 10
	EffectScale = 0.5
)

// SpawnParticle plays the texture set in slot once at t.
func SpawnParticle(w *world.World, slot *asset.Slot[assets.ParticleTextures], t component.Transform, fps, scale float64) (ecs.Entity, error) {
	h, err := slot.Acquire()
	if err != nil {
		return 0, fmt.Errorf("particle: %w", err)
	}
	r := w.Registry()
	e := r.Create()
	ecs.Add(r, e, component.TransformComponent, t)
	ecs.Add(r, e, component.ParticleComponent, component.Particle{
		Textures: h,
		FPS:      fps,
		Scale:    scale,
	})
	return e, nil
}
