package entity

import (
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/tankgame/assets"
	"github.com/milk9111/tankgame/common"
	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/ecs/component"
	"github.com/milk9111/tankgame/physics"
	"github.com/milk9111/tankgame/prefabs"
	"github.com/milk9111/tankgame/world"
)

// Hitbox sizes per projectile sprite, in world units at scale 1.
var projectileHitboxes = [prefabs.ProjectileSpriteCount]cp.Vector{
	{X: 0.156, Y: 0.312},
	{X: 0.156, Y: 0.484},
	{X: 0.064, Y: 0.58},
	{X: 0.08, Y: 0.2},
	{X: 0.126, Y: 0.3},
	{X: 0.126, Y: 0.58},
	{X: 0.42, Y: 0.250},
	{X: 0.08, Y: 0.4},
}

const projectileAngularDamping = 0.2

// ProjectileHitbox returns the width and height of a projectile's box.
func ProjectileHitbox(typ prefabs.ProjectileType) (float64, float64) {
	size := projectileHitboxes[0]
	if typ.Sprite.Valid() {
		size = projectileHitboxes[typ.Sprite]
	}
	return size.X * typ.Scale, size.Y * typ.Scale
}

// SpawnProjectile launches a projectile from pos facing rot. It has no
// renderable; see AddProjectileRenderable.
func SpawnProjectile(w *world.World, shooter ecs.Entity, typ prefabs.ProjectileType, pos cp.Vector, rot float64) ecs.Entity {
	r := w.Registry()
	e := r.Create()

	ecs.Add(r, e, component.TransformComponent, component.Transform{Position: pos, Rotation: rot})
	ecs.Add(r, e, component.VelocityComponent, component.Velocity{
		Linear: common.Rotate(cp.Vector{Y: -typ.Velocity}, rot),
	})
	ecs.Add(r, e, component.PhysicsComponent, component.Physics{
		Dynamic:        true,
		AngularDamping: projectileAngularDamping,
	})

	def := physics.ShapeDef{
		Density:    typ.Density,
		Friction:   0.3,
		Elasticity: typ.Restitution,
		Filter: physics.Filter{
			Categories: physics.CategoryProjectile,
			Mask:       physics.CategoryAll,
		},
	}
	if !typ.AllowProjectileCollision {
		def.Filter.Mask &^= physics.CategoryProjectile
	}
	width, height := ProjectileHitbox(typ)
	w.Bridge().AddBox(e, def, width, height, 0)

	ecs.Add(r, e, component.ProjectileComponent, component.Projectile{
		Type:            typ,
		Shooter:         uint64(shooter),
		InitialVelocity: typ.Velocity,
		JustSpawned:     true,
	})
	return e
}

// AddProjectileRenderable gives a projectile its sprite.
func AddProjectileRenderable(w *world.World, cat *assets.Catalog, e ecs.Entity, typ prefabs.ProjectileType) error {
	if !typ.Sprite.Valid() {
		return fmt.Errorf("projectile: invalid sprite %d", typ.Sprite)
	}
	h, err := cat.ProjectileTextures[typ.Sprite].Acquire()
	if err != nil {
		return fmt.Errorf("projectile: %w", err)
	}
	ecs.Add(w.Registry(), e, component.ProjectileRenderableComponent, component.ProjectileRenderable{
		Texture: h,
		Scale:   typ.Scale,
	})
	return nil
}
