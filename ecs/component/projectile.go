package component

import (
	"github.com/milk9111/tankgame/asset"
	"github.com/milk9111/tankgame/assets"
	"github.com/milk9111/tankgame/prefabs"
)

type Projectile struct {
	Type    prefabs.ProjectileType
	Shooter uint64 // ecs.Entity

	InitialVelocity float64
	CollisionCount  int
	JustSpawned     bool
	InTankSpawn     bool
}

var ProjectileComponent = NewComponent[Projectile]()

type ProjectileRenderable struct {
	Texture asset.Handle[assets.Texture]
	Scale   float64
}

func (p *ProjectileRenderable) Release() { p.Texture.Release() }

var ProjectileRenderableComponent = NewComponent[ProjectileRenderable]()
